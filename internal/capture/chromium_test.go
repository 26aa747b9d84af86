package capture

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeDefaults(t *testing.T) {
	o := Options{URL: "http://127.0.0.1:8080/board", OutputPath: "board.png"}
	require.NoError(t, o.normalize())
	assert.Equal(t, DefaultWidth, o.Width)
	assert.Equal(t, DefaultHeight, o.Height)
	assert.Equal(t, DefaultTimeout, o.Timeout)
}

func TestSnapshotRequiresURLAndOutput(t *testing.T) {
	assert.Error(t, SnapshotBoard(context.Background(), Options{OutputPath: "x.png"}))
	assert.Error(t, SnapshotBoard(context.Background(), Options{URL: "http://x"}))
}

func TestAuthHeader(t *testing.T) {
	assert.Empty(t, Options{}.authHeader())
	assert.Equal(t, "Basic YWRtaW46cHc=", Options{Username: "admin", Password: "pw"}.authHeader())
}

func TestAllocatorOptionsAddExecPath(t *testing.T) {
	base := len(Options{}.allocatorOptions())
	assert.Equal(t, base+1, len(Options{ExecPath: "/usr/bin/chromium"}.allocatorOptions()))
}
