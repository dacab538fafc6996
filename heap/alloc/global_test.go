package alloc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/heapkit/heapkit/heap/verify"
)

func TestDefaultAllocatorRoundTrip(t *testing.T) {
	require.NoError(t, Init())
	t.Cleanup(func() {
		if std != nil {
			_ = std.r.Close()
			std = nil
		}
	})

	ref, payload, err := Malloc(64)
	require.NoError(t, err)
	require.NotEqual(t, Ref(0), ref)
	payload[0] = 0x42

	ref, payload, err = Realloc(ref, 128)
	require.NoError(t, err)
	assert.Equal(t, byte(0x42), payload[0])

	cref, cpayload, err := Calloc(4, 16)
	require.NoError(t, err)
	assert.Equal(t, make([]byte, 64), cpayload[:64])

	require.NoError(t, FreeBlock(ref))
	require.NoError(t, FreeBlock(cref))
	require.NoError(t, verify.All(std.r.Bytes()))
}

func TestInitReplacesPreviousInstance(t *testing.T) {
	require.NoError(t, Init())
	first := std
	t.Cleanup(func() {
		if std != nil {
			_ = std.r.Close()
			std = nil
		}
	})

	require.NoError(t, Init())
	assert.NotSame(t, first, std, "Init should install a fresh allocator")

	_, _, err := Malloc(32)
	require.NoError(t, err)
}
