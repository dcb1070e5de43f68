package xlsx

import (
	"testing"

	"inspectorcore/testutil"
)

func TestExportReadsSnapshotsOnly(t *testing.T) {
	testutil.AssertNoDirectImports(t, ".", testutil.Under(
		"inspectorcore/internal/kv",
		"inspectorcore/internal/blob",
		"inspectorcore/internal/infra",
	), "exports are rendered from snapshots")
}
