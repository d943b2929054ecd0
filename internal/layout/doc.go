// Package layout computes chunk geometry for array variables.
//
// It answers the arithmetic questions a chunked storage layout raises: how
// many bytes one chunk occupies, how many chunks tile a dimension, how large
// the default chunk of an unlimited (growable) dimension should be, and what
// a balanced default chunk shape looks like when the caller gives no sizes
// at all.
//
// # Balanced Defaults
//
// [Balanced] gives every fixed dimension an equal share of a byte budget
// (4 MiB by default): the chunk length of dimension i is
//
//	(budget / (elements * elemSize)) ^ (1/fixedDims) * len(i)
//
// rounded down and clamped to [1, len(i)]. Unlimited dimensions get chunk
// length 1 when any fixed dimension exists, a byte window when the variable
// is a single unlimited dimension, and an equal root of the budget when all
// dimensions are unlimited. A chunk larger than 2^32-1 bytes is halved
// along every dimension until it fits, and fixed dimensions are then trimmed
// so the last chunk does not overhang the dimension by more than needed.
package layout
