// Package message encodes and decodes the HDF5 filter pipeline header
// message (type 0x000B).
//
// The filter pipeline message is how a chunked HDF5 dataset records the
// ordered list of filters applied to each chunk, together with each
// filter's parameter words ("client data"). Version 1 pads names and client
// data to 8-byte boundaries and always carries a name length; version 2
// drops the padding and only carries a name for filter IDs of 256 and
// above.
//
// [ParseFilterPipeline] reads both versions. [FilterPipeline.Serialize]
// always writes version 2.
//
// All multi-byte fields are little-endian.
package message
