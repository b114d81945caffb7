package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/synthline/firmforge/internal/db"
)

func TestNewRootCmd_HasGenerate(t *testing.T) {
	root := NewRootCmd()
	assert.Equal(t, "firmforge", root.Use)

	generate, _, err := root.Find([]string{"generate"})
	require.NoError(t, err)
	assert.Equal(t, "generate", generate.Use)
	for _, flag := range []string{"start", "end", "consultants", "seed", "out", "config", "reports", "verbose"} {
		assert.NotNil(t, generate.Flags().Lookup(flag), "flag --%s missing", flag)
	}
}

func TestGenerate_EndToEnd(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "small.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(
		"horizon_start_year: 2015\nhorizon_end_year: 2015\ninitial_consultants: 30\nclient_count: 15\nseed: 7\n",
	), 0644))
	outPath := filepath.Join(dir, "out", "firm.db")
	reportsDir := filepath.Join(dir, "reports")

	root := NewRootCmd()
	var stdout bytes.Buffer
	root.SetOut(&stdout)
	root.SetErr(&stdout)
	root.SetArgs([]string{"generate", "--config", cfgPath, "--out", outPath, "--reports", reportsDir})
	require.NoError(t, root.Execute())

	database, err := db.OpenDB(outPath)
	require.NoError(t, err)
	defer database.Close()

	var consultants, projects, clients int
	require.NoError(t, database.QueryRow(`SELECT COUNT(*) FROM Consultant`).Scan(&consultants))
	require.NoError(t, database.QueryRow(`SELECT COUNT(*) FROM Project`).Scan(&projects))
	require.NoError(t, database.QueryRow(`SELECT COUNT(*) FROM Client`).Scan(&clients))
	assert.GreaterOrEqual(t, consultants, 30)
	assert.Positive(t, projects)
	assert.Equal(t, 15, clients)

	for _, name := range []string{"indirect_costs.csv", "non_billable_time.csv", "client_feedback.json"} {
		info, err := os.Stat(filepath.Join(reportsDir, name))
		require.NoError(t, err, "report %s missing", name)
		assert.Positive(t, info.Size())
	}

	assert.Contains(t, stdout.String(), "Simulation summary")
	assert.Contains(t, stdout.String(), "2015")
}

func TestGenerate_RejectsBadConfig(t *testing.T) {
	root := NewRootCmd()
	root.SetOut(new(bytes.Buffer))
	root.SetErr(new(bytes.Buffer))
	root.SetArgs([]string{"generate", "--start", "2020", "--end", "2015"})
	require.Error(t, root.Execute())
}
