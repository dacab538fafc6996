package heap

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRegionValidation(t *testing.T) {
	for _, max := range []int{0, -1} {
		_, err := NewRegion(max)
		assert.Error(t, err, "cap %d should be rejected", max)
	}

	r, err := NewRegion(4096)
	require.NoError(t, err)
	defer r.Close()

	assert.Zero(t, r.Size())
	assert.Equal(t, 4096, r.Cap())
	assert.Equal(t, -1, r.Hi(), "empty region has no last byte")
	assert.Empty(t, r.Bytes())
}

func TestExtendMovesBreak(t *testing.T) {
	r, err := NewRegion(4096)
	require.NoError(t, err)
	defer r.Close()

	off, err := r.Extend(64)
	require.NoError(t, err)
	assert.Zero(t, off, "first extension starts at the base")

	off, err = r.Extend(32)
	require.NoError(t, err)
	assert.Equal(t, 64, off, "second extension starts at the old break")

	assert.Equal(t, 96, r.Size())
	assert.Equal(t, 0, r.Lo())
	assert.Equal(t, 95, r.Hi())
	assert.Len(t, r.Bytes(), 96)
}

func TestExtendRejectsBadSizes(t *testing.T) {
	r, err := NewRegion(4096)
	require.NoError(t, err)
	defer r.Close()

	_, err = r.Extend(0)
	assert.Error(t, err)
	_, err = r.Extend(-8)
	assert.Error(t, err)
}

func TestExtendPastCap(t *testing.T) {
	r, err := NewRegion(128)
	require.NoError(t, err)
	defer r.Close()

	_, err = r.Extend(100)
	require.NoError(t, err)

	_, err = r.Extend(100)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrOutOfMemory)
	assert.Equal(t, 100, r.Size(), "failed extension must not move the break")
}

func TestBytesStableAcrossExtend(t *testing.T) {
	r, err := NewRegion(1 << 16)
	require.NoError(t, err)
	defer r.Close()

	_, err = r.Extend(8)
	require.NoError(t, err)
	first := r.Bytes()
	first[0] = 0xEE

	_, err = r.Extend(1 << 12)
	require.NoError(t, err)

	assert.Equal(t, byte(0xEE), r.Bytes()[0], "earlier writes survive growth")
	assert.Equal(t, &first[0], &r.Bytes()[0], "backing array must not move")
}

func TestCloseReleasesRegion(t *testing.T) {
	r, err := NewRegion(4096)
	require.NoError(t, err)

	_, err = r.Extend(64)
	require.NoError(t, err)

	require.NoError(t, r.Close())
	require.NoError(t, r.Close(), "double close is harmless")

	_, err = r.Extend(64)
	assert.ErrorIs(t, err, ErrClosed)
}
