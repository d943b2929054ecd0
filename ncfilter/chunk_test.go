package ncfilter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func fixed(name string, n int) DimensionInfo {
	return DimensionInfo{Name: name, Length: n}
}

func unlimited(name string, n int) DimensionInfo {
	return DimensionInfo{Name: name, Length: n, Unlimited: true}
}

func chunkPtr(sizes ...int) *ChunkSpec {
	c := NewChunkSpec(sizes...)
	return &c
}

func TestResolveChunksExplicit(t *testing.T) {
	dims := []DimensionInfo{fixed("y", 100), fixed("x", 100)}

	mode, chunk, err := ResolveChunks(dims, chunkPtr(10, 10), nil, false, 1, 4)
	require.NoError(t, err)
	assert.Equal(t, Chunked, mode)
	assert.Equal(t, []int{10, 10}, chunk.Sizes())
}

func TestResolveChunksSmallVariableIsContiguous(t *testing.T) {
	mode, chunk, err := ResolveChunks([]DimensionInfo{fixed("x", 4)}, nil, nil, false, 1_000_000, 4)
	require.NoError(t, err)
	assert.Equal(t, Contiguous, mode)
	assert.Equal(t, []int{4}, chunk.Sizes())
}

func TestResolveChunksFilterForcesChunked(t *testing.T) {
	mode, _, err := ResolveChunks([]DimensionInfo{fixed("x", 4)}, nil, nil, true, 1_000_000, 4)
	require.NoError(t, err)
	assert.Equal(t, Chunked, mode)
}

func TestResolveChunksUnlimited(t *testing.T) {
	dims := []DimensionInfo{unlimited("time", 3), fixed("x", 50)}

	mode, chunk, err := ResolveChunks(dims, nil, nil, false, 1_000_000, 8)
	require.NoError(t, err)
	assert.Equal(t, Chunked, mode)
	assert.Equal(t, []int{512, 50}, chunk.Sizes())

	_, chunk, err = ResolveChunks(dims, nil, nil, false, 0, 8, WithUnlimitedWindow(80))
	require.NoError(t, err)
	assert.Equal(t, []int{10, 50}, chunk.Sizes())

	// Explicit sizes on an unlimited dimension may exceed its current length.
	_, chunk, err = ResolveChunks(dims, chunkPtr(100, 0), nil, false, 0, 8)
	require.NoError(t, err)
	assert.Equal(t, []int{100, 50}, chunk.Sizes())
}

func TestResolveChunksPrecedence(t *testing.T) {
	dims := []DimensionInfo{fixed("z", 40), fixed("y", 30), fixed("x", 20)}

	_, chunk, err := ResolveChunks(dims, chunkPtr(5, 0, 0), chunkPtr(8, 6, 0), false, 0, 4)
	require.NoError(t, err)
	assert.Equal(t, []int{5, 6, 20}, chunk.Sizes())
}

func TestResolveChunksInheritedIsClamped(t *testing.T) {
	dims := []DimensionInfo{fixed("x", 10)}

	_, chunk, err := ResolveChunks(dims, nil, chunkPtr(64), false, 0, 4)
	require.NoError(t, err)
	assert.Equal(t, []int{10}, chunk.Sizes())
}

func TestResolveChunksZeroLengthDimension(t *testing.T) {
	_, chunk, err := ResolveChunks([]DimensionInfo{fixed("x", 0), fixed("y", 7)}, nil, nil, false, 0, 4)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 7}, chunk.Sizes())
}

func TestResolveChunksScalar(t *testing.T) {
	mode, chunk, err := ResolveChunks(nil, nil, nil, false, 0, 4)
	require.NoError(t, err)
	assert.Equal(t, Contiguous, mode)
	assert.Equal(t, 0, chunk.Rank())
}

func TestResolveChunksBalanced(t *testing.T) {
	dims := []DimensionInfo{unlimited("time", 0), fixed("y", 1000), fixed("x", 1000)}

	mode, chunk, err := ResolveChunks(dims, nil, nil, false, 0, 4, WithBalancedDefaults(4<<20))
	require.NoError(t, err)
	assert.Equal(t, Chunked, mode)
	assert.Equal(t, []int{1, 1000, 1000}, chunk.Sizes())
}

func TestResolveChunksErrors(t *testing.T) {
	dims := []DimensionInfo{fixed("y", 100), fixed("x", 100)}

	tests := []struct {
		name      string
		explicit  *ChunkSpec
		inherited *ChunkSpec
		elemSize  int
		want      error
	}{
		{"explicit rank", chunkPtr(10), nil, 4, ErrDimensionMismatch},
		{"inherited rank", nil, chunkPtr(1, 2, 3), 4, ErrDimensionMismatch},
		{"too large", chunkPtr(101, 10), nil, 4, ErrInvalidChunkSize},
		{"negative", chunkPtr(10, -1), nil, 4, ErrInvalidChunkSize},
		{"element size", nil, nil, 0, ErrInvalidChunkSize},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := ResolveChunks(dims, tt.explicit, tt.inherited, false, 0, tt.elemSize)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestChunkSpec(t *testing.T) {
	sizes := []int{10, 20}
	c := NewChunkSpec(sizes...)
	sizes[0] = 99

	assert.Equal(t, 2, c.Rank())
	assert.Equal(t, 10, c.Size(0))
	assert.Equal(t, "10x20", c.String())
	assert.Equal(t, uint64(800), c.Bytes(4))

	got := c.Sizes()
	got[1] = 0
	assert.Equal(t, 20, c.Size(1))
}

func TestChunkSpecYAML(t *testing.T) {
	type doc struct {
		Chunk *ChunkSpec `yaml:"chunk"`
	}

	out, err := yaml.Marshal(doc{chunkPtr(1, 2, 3)})
	require.NoError(t, err)

	var in doc
	require.NoError(t, yaml.Unmarshal(out, &in))
	require.NotNil(t, in.Chunk)
	assert.Equal(t, []int{1, 2, 3}, in.Chunk.Sizes())

	require.NoError(t, yaml.Unmarshal([]byte("chunk: [4, 5]"), &in))
	assert.Equal(t, []int{4, 5}, in.Chunk.Sizes())
}

func TestParseChunkOverrides(t *testing.T) {
	got, err := ParseChunkOverrides("time/10, /grp/lat/20,lon/,a\\,b/3")
	require.NoError(t, err)

	want := ChunkOverrides{
		{Dim: "time", Size: 10},
		{Dim: "/grp/lat", Size: 20},
		{Dim: "lon"},
		{Dim: "a,b", Size: 3},
	}
	assert.Equal(t, want, got)

	empty, err := ParseChunkOverrides("  ")
	require.NoError(t, err)
	assert.Nil(t, empty)
}

func TestParseChunkOverridesErrors(t *testing.T) {
	for _, text := range []string{"time", "/10", "time/0", "time/x", "time/5,,lat/2"} {
		t.Run(text, func(t *testing.T) {
			_, err := ParseChunkOverrides(text)
			assert.ErrorIs(t, err, ErrInvalidChunkSize)
		})
	}
}

func TestChunkOverridesSpec(t *testing.T) {
	overrides, err := ParseChunkOverrides("time/10,/grp/lat/20,lon/")
	require.NoError(t, err)

	dims := []DimensionInfo{unlimited("time", 5), fixed("/grp/lat", 180), fixed("/grp/lon", 360), fixed("level", 30)}
	spec := overrides.Spec(dims)
	require.NotNil(t, spec)
	assert.Equal(t, []int{10, 20, 360, 0}, spec.Sizes())

	// Path overrides only match the exact path.
	assert.Nil(t, overrides.Spec([]DimensionInfo{fixed("/other/lat", 10)}))
	assert.Nil(t, ChunkOverrides(nil).Spec(dims))
}

func TestChunkSpecCount(t *testing.T) {
	dims := []DimensionInfo{unlimited("time", 10), fixed("lat", 180), fixed("lon", 360)}

	n, err := NewChunkSpec(4, 90, 100).Count(dims)
	require.NoError(t, err)
	assert.Equal(t, uint64(3*2*4), n)

	_, err = NewChunkSpec(4).Count(dims)
	assert.ErrorIs(t, err, ErrDimensionMismatch)
}
