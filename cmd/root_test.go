package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommand_HasSubcommands(t *testing.T) {
	names := make(map[string]bool)
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}

	expected := []string{"profiles", "similar", "journey", "inventory", "import", "batches", "export", "migrate", "serve"}
	for _, name := range expected {
		assert.True(t, names[name], "expected subcommand %q not found", name)
	}
}

func TestRootCommand_Metadata(t *testing.T) {
	assert.Equal(t, "restock", rootCmd.Use)
	assert.NotEmpty(t, rootCmd.Short)
	assert.NotEmpty(t, rootCmd.Long)
}

func TestRootCommand_PersistentFlags(t *testing.T) {
	file := rootCmd.PersistentFlags().Lookup("file")
	require.NotNil(t, file)
	assert.Equal(t, "f", file.Shorthand)

	require.NotNil(t, rootCmd.PersistentFlags().Lookup("json"))
}

func TestJourneyCommand_Flags(t *testing.T) {
	view := journeyCmd.Flags().Lookup("view")
	require.NotNil(t, view)
	assert.Equal(t, "chronological", view.DefValue)
	require.NotNil(t, journeyCmd.Flags().Lookup("query"))
}

func TestServeCommand_Flags(t *testing.T) {
	flag := serveCmd.Flags().Lookup("port")
	require.NotNil(t, flag, "serve command should have --port flag")
	assert.Equal(t, "0", flag.DefValue)
}

func TestExportCommand_Flags(t *testing.T) {
	flag := exportCmd.Flags().Lookup("out")
	require.NotNil(t, flag)
	assert.Equal(t, "inventory.xlsx", flag.DefValue)
}

func TestSimilarCommand_RequiresArg(t *testing.T) {
	assert.Error(t, similarCmd.Args(similarCmd, nil))
	assert.NoError(t, similarCmd.Args(similarCmd, []string{"nitrile gloves"}))
}
