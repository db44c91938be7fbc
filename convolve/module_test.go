package convolve

import (
	"runtime/debug"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

// The hwy engine must resolve to a published go-highway release with a
// go.sum entry, not a placeholder pseudo-version.
func TestHighwayModuleIsPinned(t *testing.T) {
	bi, ok := debug.ReadBuildInfo()
	if !ok {
		t.Skip("no build info")
	}
	for _, dep := range bi.Deps {
		if dep.Path != "github.com/ajroetker/go-highway" {
			continue
		}
		assert.False(t, strings.HasSuffix(dep.Version, "-000000000000"), "placeholder version %s", dep.Version)
		assert.Equal(t, "v0.0.12", dep.Version)
		assert.True(t, strings.HasPrefix(dep.Sum, "h1:"), "missing checksum for %s", dep.Version)
		return
	}
	t.Skip("go-highway not recorded in build info")
}
