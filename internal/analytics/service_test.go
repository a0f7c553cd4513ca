package analytics

import (
	"context"
	"fmt"
	"io"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/restock/internal/cache"
	"github.com/sells-group/restock/internal/journey"
	"github.com/sells-group/restock/internal/loader"
	"github.com/sells-group/restock/internal/metrics"
	"github.com/sells-group/restock/internal/model"
	"github.com/sells-group/restock/internal/store"
)

func testDataset() *loader.Dataset {
	return &loader.Dataset{
		Orders: []model.ExtractedOrder{
			{
				ID: "o1", SourceMessageID: "m1", Supplier: "Acme", OrderDate: "2024-11-01",
				Items: []model.LineItem{
					{Name: "Nitrile Gloves", Quantity: 2, UnitPrice: model.Float(4.5)},
					{Name: "Paper Towels 12 Pack", Quantity: 3},
				},
			},
			{
				ID: "o2", SourceMessageID: "m2", Supplier: "Beta Supply", OrderDate: "2024-11-15",
				Items: []model.LineItem{
					{Name: "nitrile gloves", Quantity: 4},
					{Name: "Paper Towel", Quantity: 1},
				},
			},
		},
		Messages: []model.RawEmail{{ID: "m1", Sender: "orders@acme.com", Subject: "Your Acme order"}},
	}
}

// swapSource counts loads and lets a test replace the dataset.
type swapSource struct {
	mu    sync.Mutex
	ds    *loader.Dataset
	loads int
	err   error
}

func (s *swapSource) Load(context.Context) (*loader.Dataset, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loads++
	return s.ds, s.err
}

func (s *swapSource) set(ds *loader.Dataset) {
	s.mu.Lock()
	s.ds = ds
	s.mu.Unlock()
}

func openCache(t *testing.T) *cache.PebbleCache {
	t.Helper()
	c, err := cache.Open(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func scrape(t *testing.T, r *metrics.Registry) string {
	t.Helper()
	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	return string(body)
}

func profileKeys(profiles []model.ItemVelocityProfile) []string {
	keys := make([]string, len(profiles))
	for i, p := range profiles {
		keys[i] = p.NormalizedName
	}
	return keys
}

func TestService_Profiles(t *testing.T) {
	svc := New(StaticSource{Dataset: testDataset()}, Options{})

	profiles, err := svc.Profiles(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"nitrile gloves", "paper towels", "paper towel"}, profileKeys(profiles))
	assert.Equal(t, 2, profiles[0].OrderCount)
	assert.Equal(t, 6.0, profiles[0].TotalQuantityOrdered)
}

func TestService_EmptySource(t *testing.T) {
	svc := New(StaticSource{}, Options{})
	ctx := context.Background()

	profiles, err := svc.Profiles(ctx)
	require.NoError(t, err)
	assert.Empty(t, profiles)

	items, err := svc.Inventory(ctx)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestService_SourceError(t *testing.T) {
	svc := New(&swapSource{err: eris.New("disk gone")}, Options{})
	_, err := svc.Profiles(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "analytics: load orders")
}

func TestService_CachesResults(t *testing.T) {
	reg := metrics.NewRegistry()
	src := &swapSource{ds: testDataset()}
	svc := New(src, Options{Cache: openCache(t), Metrics: reg})
	ctx := context.Background()

	first, err := svc.Profiles(ctx)
	require.NoError(t, err)
	second, err := svc.Profiles(ctx)
	require.NoError(t, err)
	assert.Equal(t, profileKeys(first), profileKeys(second))
	assert.Equal(t, first[0].DailyBurnRate, second[0].DailyBurnRate)
	assert.Equal(t, 2, src.loads)

	body := scrape(t, reg)
	assert.Contains(t, body, `restock_builds_total{view="profiles"} 1`)
	assert.Contains(t, body, "restock_cache_hits_total 1")
	assert.Contains(t, body, "restock_cache_misses_total 1")
	assert.Contains(t, body, "restock_orders_loaded 2")
}

func TestService_RebuildsWhenOrdersChange(t *testing.T) {
	src := &swapSource{ds: testDataset()}
	svc := New(src, Options{Cache: openCache(t)})
	ctx := context.Background()

	profiles, err := svc.Profiles(ctx)
	require.NoError(t, err)
	require.Len(t, profiles, 3)

	ds := testDataset()
	ds.Orders = ds.Orders[:1]
	src.set(ds)

	profiles, err = svc.Profiles(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"paper towels", "nitrile gloves"}, profileKeys(profiles))
}

func TestService_Similar(t *testing.T) {
	svc := New(StaticSource{Dataset: testDataset()}, Options{SimilarityThreshold: 0.3})
	ctx := context.Background()

	got, err := svc.Similar(ctx, "paper towels")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "paper towel", got[0].Key)
	assert.Equal(t, "paper towel", got[0].Profile.NormalizedName)
	assert.Greater(t, got[0].Distance, 0.0)

	byName, err := svc.Similar(ctx, "Paper Towels 12 Pack")
	require.NoError(t, err)
	assert.Equal(t, got, byName)

	_, err = svc.Similar(ctx, "forklift")
	assert.ErrorIs(t, err, ErrProfileNotFound)
}

func TestService_SimilarLimit(t *testing.T) {
	ds := &loader.Dataset{Orders: []model.ExtractedOrder{{
		ID: "o1", OrderDate: "2024-11-01",
		Items: []model.LineItem{
			{Name: "Paper Towel", Quantity: 1},
			{Name: "Paper Towels", Quantity: 1},
			{Name: "Paper Towelz", Quantity: 1},
		},
	}}}
	svc := New(StaticSource{Dataset: ds}, Options{MaxSimilar: 1})

	got, err := svc.Similar(context.Background(), "paper towel")
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestService_Journey(t *testing.T) {
	svc := New(StaticSource{Dataset: testDataset()}, Options{Cache: openCache(t)})
	ctx := context.Background()

	tree, err := svc.Journey(ctx, journey.ViewChronological, "beta")
	require.NoError(t, err)
	require.Len(t, tree, 1)
	assert.Equal(t, "msg-m2", tree[0].ID)

	cached, err := svc.Journey(ctx, journey.ViewChronological, " BETA ")
	require.NoError(t, err)
	require.Len(t, cached, 1)
	assert.Equal(t, tree[0].ID, cached[0].ID)
	assert.IsType(t, tree[0].Data, cached[0].Data)

	bySupplier, err := svc.Journey(ctx, journey.ViewSupplier, "beta")
	require.NoError(t, err)
	assert.Len(t, bySupplier, 2)

	byItem, err := svc.Journey(ctx, journey.ViewItem, "")
	require.NoError(t, err)
	require.Len(t, byItem, 3)
	assert.Equal(t, model.NodeVelocity, byItem[0].Type)
}

func TestService_InventoryAndSync(t *testing.T) {
	svc := New(StaticSource{Dataset: testDataset()}, Options{})
	ctx := context.Background()

	items, err := svc.Inventory(ctx)
	require.NoError(t, err)
	require.Len(t, items, 3)
	assert.Equal(t, "nitrile gloves", items[0].Key)
	assert.Equal(t, 2, items[0].OrderCount)
	assert.Equal(t, []string{"paper towel"}, items[1].PossibleDuplicates)

	records, err := svc.SyncRecords(ctx)
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, items[0].Name, records[0].Name)
	assert.Equal(t, items[0].RecommendedMin, records[0].MinQuantity)
}

func TestService_ImportReadOnly(t *testing.T) {
	svc := New(StaticSource{}, Options{})
	_, err := svc.Import(context.Background(), "test", testDataset())
	assert.ErrorIs(t, err, ErrReadOnly)
}

func TestService_ImportIntoLedger(t *testing.T) {
	ctx := context.Background()
	st, err := store.Open(ctx, store.DriverSQLite, filepath.Join(t.TempDir(), "ledger.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.Migrate(ctx))

	reg := metrics.NewRegistry()
	svc := New(LedgerSource{Store: st}, Options{Ledger: st, Metrics: reg})

	batch, err := svc.Import(ctx, "upload", testDataset())
	require.NoError(t, err)
	assert.Equal(t, 2, batch.OrderCount)
	assert.Equal(t, 1, batch.MessageCount)
	assert.Contains(t, scrape(t, reg), "restock_orders_imported_total 2")

	profiles, err := svc.Profiles(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"nitrile gloves", "paper towels", "paper towel"}, profileKeys(profiles))
}

func TestLedgerSource_Filter(t *testing.T) {
	ctx := context.Background()
	st, err := store.Open(ctx, store.DriverSQLite, filepath.Join(t.TempDir(), "ledger.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.Migrate(ctx))

	ds := testDataset()
	_, err = st.Import(ctx, "test", ds.Orders, ds.Messages)
	require.NoError(t, err)

	got, err := LedgerSource{Store: st, Filter: store.OrderFilter{Supplier: "acme"}}.Load(ctx)
	require.NoError(t, err)
	require.Len(t, got.Orders, 1)
	assert.Equal(t, "o1", got.Orders[0].ID)
	assert.Len(t, got.Messages, 1)
}

func TestLedgerSource_LoadsEveryOrder(t *testing.T) {
	ctx := context.Background()
	st, err := store.Open(ctx, store.DriverSQLite, filepath.Join(t.TempDir(), "ledger.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.Migrate(ctx))

	const n = 10000
	start := time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)
	orders := make([]model.ExtractedOrder, 0, n+1)
	for i := 0; i < n; i++ {
		orders = append(orders, model.ExtractedOrder{
			ID: fmt.Sprintf("o%05d", i), Supplier: "Acme",
			OrderDate: start.AddDate(0, 0, i).Format("2006-01-02"),
			Items:     []model.LineItem{{Name: "Nitrile Gloves", Quantity: 1}},
		})
	}
	newest := model.ExtractedOrder{
		ID: "newest", Supplier: "Acme",
		OrderDate: start.AddDate(0, 0, n).Format("2006-01-02"),
		Items:     []model.LineItem{{Name: "Squeegee", Quantity: 2}},
	}
	orders = append(orders, newest)
	_, err = st.Import(ctx, "bulk", orders, nil)
	require.NoError(t, err)

	ds, err := LedgerSource{Store: st}.Load(ctx)
	require.NoError(t, err)
	require.Len(t, ds.Orders, n+1)
	assert.Equal(t, "newest", ds.Orders[n].ID)

	profiles, err := New(LedgerSource{Store: st}, Options{}).Profiles(ctx)
	require.NoError(t, err)
	byKey := make(map[string]model.ItemVelocityProfile, len(profiles))
	for _, p := range profiles {
		byKey[p.NormalizedName] = p
	}
	require.Contains(t, byKey, "squeegee")
	require.Contains(t, byKey, "nitrile gloves")
	assert.Equal(t, n, byKey["nitrile gloves"].OrderCount)
}

func TestFileSource(t *testing.T) {
	path := filepath.Join(t.TempDir(), "orders.json")
	require.NoError(t, os.WriteFile(path, []byte(`[{"id":"o1","sourceMessageId":"m1","supplier":"Acme","orderDate":"2024-11-01","items":[{"name":"Tape","quantity":1}]}]`), 0o644))

	ds, err := FileSource{Paths: []string{path}}.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, ds.Orders, 1)
	assert.Equal(t, "Tape", ds.Orders[0].Items[0].Name)
}
