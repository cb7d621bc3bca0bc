//go:build e2e

package e2e

import (
	"flag"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

var update = flag.Bool("update", false, "update golden files")

// goldenDir returns the path to the testdata/golden directory.
func goldenDir() string {
	return filepath.Join("..", "..", "testdata", "golden")
}

// goldenCases maps a requested count to the golden feature file it renders.
var goldenCases = []struct {
	count  int
	golden string
}{
	{5, "cart_multi_agent.feature"},
}

// TestGolden compares rendered output against golden files. If a golden file
// does not exist, the case is skipped with a message to run with -update.
func TestGolden(t *testing.T) {
	for _, gc := range goldenCases {
		t.Run(gc.golden, func(t *testing.T) {
			golden, err := os.ReadFile(filepath.Join(goldenDir(), gc.golden))
			if os.IsNotExist(err) {
				t.Skipf("golden file %s not found; run with -update to generate", gc.golden)
				return
			}
			require.NoError(t, err)

			res := generate(t, newFakeProvider(t), multiConfig(gc.count))
			if diff := cmp.Diff(string(golden), res.RenderedText); diff != "" {
				t.Errorf("rendered output does not match %s (-golden +got):\n%s", gc.golden, diff)
			}
		})
	}
}

// TestUpdateGolden regenerates golden files from the current pipeline output.
// Run with: go test -tags e2e -run TestUpdateGolden ./internal/e2e/ -update
func TestUpdateGolden(t *testing.T) {
	if !*update {
		t.Skip("skipping golden file update; run with -update flag")
	}

	require.NoError(t, os.MkdirAll(goldenDir(), 0o755))

	for _, gc := range goldenCases {
		res := generate(t, newFakeProvider(t), multiConfig(gc.count))
		require.NoError(t, os.WriteFile(filepath.Join(goldenDir(), gc.golden), []byte(res.RenderedText), 0o644))
		t.Logf("updated %s", gc.golden)
	}
}
