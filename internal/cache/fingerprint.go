package cache

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"

	"github.com/sells-group/restock/internal/model"
)

// Fingerprint identifies an order set together with its messages. Any change
// to either input yields a different fingerprint.
func Fingerprint(orders []model.ExtractedOrder, messages []model.RawEmail) string {
	d := xxhash.New()
	enc := json.NewEncoder(d)
	// Encoding plain structs and slices cannot fail; the digest never errors.
	_ = enc.Encode(orders)
	_ = enc.Encode(messages)
	return strconv.FormatUint(d.Sum64(), 16)
}

// Key builds the cache key for one view of a fingerprinted order set.
func Key(fingerprint, view, query string) string {
	return fingerprint + "/" + view + "/" + strings.ToLower(strings.TrimSpace(query))
}
