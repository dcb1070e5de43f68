package domain

import (
	"testing"

	"inspectorcore/testutil"
)

func TestDomainDoesNotImportInternal(t *testing.T) {
	testutil.AssertNoDirectImports(t, ".", testutil.InternalImportForbidden, "domain values are shared by every layer")
}
