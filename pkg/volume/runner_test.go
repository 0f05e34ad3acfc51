package volume

import (
	"context"
	"testing"
	"time"

	"github.com/cuemby/vmmv/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExecRunner_Success(t *testing.T) {
	r := NewExecRunner(0)
	out, err := r.Run(context.Background(), "sh", "-c", "echo vm-100-disk-0 pve")
	require.NoError(t, err)
	assert.Equal(t, "vm-100-disk-0 pve\n", string(out))
}

func TestExecRunner_NonZeroExit(t *testing.T) {
	r := NewExecRunner(0)
	_, err := r.Run(context.Background(), "sh", "-c", "echo volume busy >&2; exit 5")
	require.Error(t, err)
	assert.ErrorIs(t, err, types.ErrToolFailure)
	assert.Contains(t, err.Error(), "volume busy")
}

func TestExecRunner_Timeout(t *testing.T) {
	r := NewExecRunner(50 * time.Millisecond)
	_, err := r.Run(context.Background(), "sleep", "5")
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestExecRunner_MissingBinary(t *testing.T) {
	r := NewExecRunner(0)
	_, err := r.Run(context.Background(), "vmmv-no-such-binary")
	assert.ErrorIs(t, err, types.ErrToolFailure)
}
