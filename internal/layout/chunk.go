package layout

import (
	"fmt"
	"math"
)

const (
	// DefaultChunkBytes is the byte budget for a balanced default chunk.
	DefaultChunkBytes = 4 * 1024 * 1024

	// DefaultUnlimitedWindow is the byte budget of an unlimited dimension's
	// default chunk length.
	DefaultUnlimitedWindow = 4096

	// MaxChunkBytes is the largest chunk a storage backend can address.
	MaxChunkBytes = math.MaxUint32
)

// Dim describes one dimension of a variable.
type Dim struct {
	Len       int  // Current length; for unlimited dimensions this may grow
	Unlimited bool // Whether the dimension is growable
}

// Elements returns the product of sizes.
func Elements(sizes []int) uint64 {
	n := uint64(1)
	for _, s := range sizes {
		n *= uint64(s)
	}
	return n
}

// ChunkBytes returns the size in bytes of one chunk. Overflow saturates at
// math.MaxUint64.
func ChunkBytes(sizes []int, elemSize int) uint64 {
	total := uint64(elemSize)
	for _, s := range sizes {
		if s == 0 {
			return 0
		}
		if total > math.MaxUint64/uint64(s) {
			return math.MaxUint64
		}
		total *= uint64(s)
	}
	return total
}

// UnlimitedWindow returns the default chunk length of an unlimited
// dimension: as many elements as fit in windowBytes, at least one.
func UnlimitedWindow(windowBytes, elemSize int) int {
	if elemSize <= 0 {
		elemSize = 1
	}
	if n := windowBytes / elemSize; n > 1 {
		return n
	}
	return 1
}

// NumChunks returns how many chunks of length chunk tile a dimension of
// length n.
func NumChunks(n, chunk int) int {
	if chunk <= 0 {
		return 0
	}
	return (n + chunk - 1) / chunk
}

// GridShape returns the number of chunks along every dimension.
func GridShape(dims []Dim, sizes []int) ([]int, error) {
	if len(dims) != len(sizes) {
		return nil, fmt.Errorf("rank mismatch: %d dimensions, %d chunk sizes", len(dims), len(sizes))
	}
	grid := make([]int, len(dims))
	for i, d := range dims {
		grid[i] = NumChunks(d.Len, sizes[i])
	}
	return grid, nil
}

// TrimOverhang shrinks chunk so that chunks tiling a dimension of length n
// overhang its end by less than one element per chunk.
func TrimOverhang(n, chunk int) int {
	chunks := NumChunks(n, chunk)
	if chunks == 0 {
		return chunk
	}
	overhang := chunks*chunk - n
	return chunk - overhang/chunks
}

// Balanced computes default chunk sizes for a variable with no explicit or
// inherited sizes. budgetBytes and windowBytes default to DefaultChunkBytes
// and DefaultUnlimitedWindow when zero.
func Balanced(dims []Dim, elemSize, budgetBytes, windowBytes int) []int {
	if budgetBytes <= 0 {
		budgetBytes = DefaultChunkBytes
	}
	if windowBytes <= 0 {
		windowBytes = DefaultUnlimitedWindow
	}
	if elemSize <= 0 {
		elemSize = 1
	}

	sizes := make([]int, len(dims))
	numValues := 1.0
	numUnlim := 0
	for i, d := range dims {
		if d.Unlimited {
			numUnlim++
			sizes[i] = 1
			continue
		}
		numValues *= float64(d.Len)
	}

	switch {
	case len(dims) == 1 && numUnlim == 1:
		sizes[0] = UnlimitedWindow(min(windowBytes, budgetBytes), elemSize)
	case len(dims) > 1 && numUnlim == len(dims):
		side := int(math.Pow(float64(budgetBytes)/float64(elemSize), 1/float64(len(dims))))
		for i := range sizes {
			sizes[i] = max(side, 1)
		}
	}

	fixed := len(dims) - numUnlim
	for i, d := range dims {
		if d.Unlimited {
			continue
		}
		share := math.Pow(float64(budgetBytes)/(numValues*float64(elemSize)), 1/float64(fixed))
		suggested := share*float64(d.Len) - 0.5
		size := d.Len
		if suggested < float64(d.Len) {
			size = int(suggested)
		}
		sizes[i] = max(size, 1)
	}

	for ChunkBytes(sizes, elemSize) > MaxChunkBytes && !allOnes(sizes) {
		for i := range sizes {
			sizes[i] = max(sizes[i]/2, 1)
		}
	}

	for i, d := range dims {
		if !d.Unlimited {
			sizes[i] = TrimOverhang(d.Len, sizes[i])
		}
	}
	return sizes
}

func allOnes(sizes []int) bool {
	for _, s := range sizes {
		if s != 1 {
			return false
		}
	}
	return true
}
