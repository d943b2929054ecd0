// Package filter implements the byte-level codecs that back registered
// filter descriptors.
//
// A codec is a reversible transform applied to one chunk's raw bytes: Encode
// runs when the chunk is written and Decode undoes it on read. Codecs are
// built from a filter's parameter words by a [Factory]; the storage layer
// that owns the chunks decides when to run them.
//
// # Provided Codecs
//
//   - DEFLATE (ID 1): zlib compression via [Deflate], parameter 0 is the
//     level (0-9, default 6).
//
//   - Shuffle (ID 2): byte shuffling via [Shuffle], parameter 0 is the
//     element size in bytes. Groups byte 0 of every element, then byte 1,
//     and so on, which usually helps a following compressor.
//
//   - Fletcher32 (ID 3): a 32-bit Fletcher checksum appended to the chunk
//     via [Fletcher32Filter]; Decode verifies and strips it.
//
//   - Zstandard (ID 32015): compression via [Zstd] using
//     github.com/klauspost/compress/zstd, parameter 0 is the signed level.
//
// SZIP (ID 4) is recognized by name but has no codec.
//
// # Pipeline
//
// [Pipeline] applies codecs in order on Encode and in reverse order on
// Decode. A filter mask (bit i set = skip codec i) lets individual chunks
// record that a stage was not applied:
//
//	p := filter.NewPipeline(shuffle, deflate)
//	stored, err := p.Encode(raw)
//	raw, err = p.Decode(stored, 0)
package filter
