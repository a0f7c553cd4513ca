package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/restock/internal/config"
	"github.com/sells-group/restock/internal/metrics"
)

const ordersCSV = `order_id,message_id,supplier,order_date,item_name,quantity,unit_price
o1,m1,Acme,2024-11-01,Nitrile Gloves,2,4.50
o2,m2,Beta Supply,2024-11-15,nitrile gloves,4,
`

// setupLedger points the global config at a fresh SQLite ledger and writes
// a CSV dataset, returning its path.
func setupLedger(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	cfg = &config.Config{
		Store:     config.StoreConfig{Driver: "sqlite", DatabaseURL: filepath.Join(dir, "ledger.db")},
		Analytics: config.AnalyticsConfig{SimilarityThreshold: 0.3, MaxSimilar: 10},
	}
	path := filepath.Join(dir, "orders.csv")
	require.NoError(t, os.WriteFile(path, []byte(ordersCSV), 0o644))

	t.Cleanup(func() {
		inputFiles = nil
		importSource = ""
	})
	return path
}

func TestImportCmd_RequiresFile(t *testing.T) {
	setupLedger(t)
	importCmd.SetContext(context.Background())

	err := importCmd.RunE(importCmd, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--file is required")
}

func TestImportCmd_BadPath(t *testing.T) {
	setupLedger(t)
	inputFiles = []string{"/nonexistent/orders.csv"}
	importCmd.SetContext(context.Background())

	err := importCmd.RunE(importCmd, nil)
	require.Error(t, err)
}

func TestImportCmd_WritesLedger(t *testing.T) {
	path := setupLedger(t)
	ctx := context.Background()

	inputFiles = []string{path}
	importSource = "weekly"
	importCmd.SetContext(ctx)
	require.NoError(t, importCmd.RunE(importCmd, nil))

	st, err := initStore(ctx)
	require.NoError(t, err)
	defer st.Close() //nolint:errcheck

	batches, err := st.ListBatches(ctx, 10)
	require.NoError(t, err)
	require.Len(t, batches, 1)
	assert.Equal(t, "weekly", batches[0].Source)
	assert.Equal(t, 2, batches[0].OrderCount)

	// Analytics without --file read the ledger.
	inputFiles = nil
	env, err := initEnv(ctx, metrics.NewRegistry())
	require.NoError(t, err)
	defer env.Close()
	require.NotNil(t, env.Store)

	profiles, err := env.Service.Profiles(ctx)
	require.NoError(t, err)
	require.Len(t, profiles, 1)
	assert.Equal(t, 2, profiles[0].OrderCount)
}

func TestBatchesCmd_Empty(t *testing.T) {
	setupLedger(t)

	var out, errOut bytes.Buffer
	batchesCmd.SetOut(&out)
	batchesCmd.SetErr(&errOut)
	batchesCmd.SetContext(context.Background())
	defer batchesCmd.SetOut(nil)
	defer batchesCmd.SetErr(nil)

	require.NoError(t, batchesCmd.RunE(batchesCmd, nil))
	assert.Empty(t, out.String())
	assert.Contains(t, errOut.String(), "No imports found.")
}

func TestInitEnv_FileSourceHasNoLedger(t *testing.T) {
	path := setupLedger(t)
	inputFiles = []string{path}

	env, err := initEnv(context.Background(), metrics.NewRegistry())
	require.NoError(t, err)
	defer env.Close()
	assert.Nil(t, env.Store)

	items, err := env.Service.Inventory(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, 2, items[0].OrderCount)
}

func TestExportCmd_WritesWorkbook(t *testing.T) {
	path := setupLedger(t)
	inputFiles = []string{path}
	exportOut = filepath.Join(t.TempDir(), "inventory.xlsx")
	defer func() { exportOut = "inventory.xlsx" }()

	exportCmd.SetContext(context.Background())
	require.NoError(t, exportCmd.RunE(exportCmd, nil))

	info, err := os.Stat(exportOut)
	require.NoError(t, err)
	assert.Positive(t, info.Size())
}
