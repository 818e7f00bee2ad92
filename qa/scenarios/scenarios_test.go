package scenarios

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/balancemkt/core/settlement"
	"github.com/kilianp07/balancemkt/infra/logger"
)

func TestScenario(t *testing.T) {
	files, err := filepath.Glob("*.yaml")
	require.NoError(t, err)
	require.NotEmpty(t, files)
	for _, f := range files {
		sc, err := Load(f)
		require.NoError(t, err, f)
		t.Run(sc.Name, func(t *testing.T) {
			out, err := Run(sc, logger.NopLogger{})
			require.NoError(t, err)
			assert.Empty(t, out.Result.Inconsistencies)
			for _, d := range sc.Check(out) {
				t.Error(d)
			}
		})
	}
}

func TestCheckReportsMismatch(t *testing.T) {
	sc, err := Load("balanced_flat.yaml")
	require.NoError(t, err)
	out, err := Run(sc, nil)
	require.NoError(t, err)

	sc.Expected.Flat = false
	sc.Expected.Charges["b2"] = ExpectedCharge{P1: 1}
	diffs := sc.Check(out)
	assert.Len(t, diffs, 2)
}

func TestRunDynamicStrategy(t *testing.T) {
	sc, err := Load("sloped_market_only.yaml")
	require.NoError(t, err)
	sc.Strategy = "dynamic"
	out, err := Run(sc, nil)
	assert.ErrorIs(t, err, settlement.ErrNotImplemented)
	assert.Equal(t, settlement.KindDynamic, out.Kind)
}

func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()
	empty := filepath.Join(dir, "empty.yaml")
	require.NoError(t, os.WriteFile(empty, []byte("name: empty\n"), 0o644))
	_, err := Load(empty)
	assert.Error(t, err)

	_, err = Load(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)

	sc := &Scenario{Name: "bad", Strategy: "greedy", Brokers: []BrokerDef{{ID: "b1"}}}
	_, err = Run(sc, nil)
	assert.ErrorIs(t, err, settlement.ErrConfiguration)
}
