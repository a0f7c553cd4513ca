package loader

import (
	"bufio"
	"context"
	"encoding/json"
	"io"

	"github.com/rotisserie/eris"

	"github.com/sells-group/restock/internal/model"
)

// decodeJSON accepts either a bare array of orders or an object with
// "orders" and "messages" keys. Arrays are decoded element by element.
func decodeJSON(ctx context.Context, r io.Reader) (*Dataset, error) {
	br := bufio.NewReader(r)
	head, err := peekNonSpace(br)
	if err == io.EOF {
		return &Dataset{}, nil
	}
	if err != nil {
		return nil, eris.Wrap(err, "json: peek")
	}

	if head == '{' {
		var ds Dataset
		if err := json.NewDecoder(br).Decode(&ds); err != nil {
			return nil, eris.Wrap(err, "json: decode dataset")
		}
		return &ds, nil
	}

	orders, err := decodeJSONArray[model.ExtractedOrder](ctx, br)
	if err != nil {
		return nil, err
	}
	return &Dataset{Orders: orders}, nil
}

func decodeJSONArray[T any](ctx context.Context, r io.Reader) ([]T, error) {
	decoder := json.NewDecoder(r)

	tok, err := decoder.Token()
	if err != nil {
		return nil, eris.Wrap(err, "json: read opening token")
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '[' {
		return nil, eris.Errorf("json: expected '[', got %v", tok)
	}

	var out []T
	for decoder.More() {
		if ctx.Err() != nil {
			return nil, eris.Wrap(ctx.Err(), "json: context cancelled")
		}
		var item T
		if err := decoder.Decode(&item); err != nil {
			return nil, eris.Wrapf(err, "json: decode element %d", len(out))
		}
		out = append(out, item)
	}

	if _, err := decoder.Token(); err != nil && err != io.EOF {
		return nil, eris.Wrap(err, "json: read closing token")
	}
	return out, nil
}

func peekNonSpace(br *bufio.Reader) (byte, error) {
	for {
		b, err := br.ReadByte()
		if err != nil {
			return 0, err
		}
		switch b {
		case ' ', '\t', '\r', '\n':
			continue
		}
		return b, br.UnreadByte()
	}
}
