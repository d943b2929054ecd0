// Package ncfilter decides which compression filters and which chunk shape
// an array variable gets when it is defined or copied between files.
//
// # Filter Specs
//
// A filter spec is text of the form "id,value,value,...", for example
// "1,5" (deflate level 5) or "32015,3" (zstd level 3). Values carry an
// optional type suffix and are converted to 32-bit parameter words; see
// [ParseSpec]. Lists of specs are separated by '|'.
//
//	spec, err := ncfilter.ParseSpec("32768, -17b, 23ub, 77")
//	// spec.ID == 32768, spec.Params == []uint32{0xEF, 23, 77}
//
// # Registry
//
// A [Registry] records which filters each storage format can run, keyed by
// format tag and filter id. [Default] returns the shared registry with the
// builtin filters (deflate, shuffle, fletcher32, szip, zstd) and the HDF5
// and Zarr backends; [NewRegistry] builds independent ones. A registry
// initializes itself on first use and stops working after [Registry.Finalize].
//
// # Variables
//
// [Attach] adds a filter to a [VariableLayout], enforcing the storage rules
// (no filters after data is written, none on scalars or variable-length
// types, no two filters from one exclusivity class). [ResolveChunks] then
// picks the chunk shape and storage mode, and [ResolveFilters] decides
// which filters a copied variable keeps. [Planner] runs the three steps
// for whole variables:
//
//	p := &ncfilter.Planner{
//		Registry:   ncfilter.Default(),
//		Format:     ncfilter.FormatHDF5,
//		Dimensions: dir,
//	}
//	layout, err := p.Plan(v)
//
// The package never compresses data itself; it only produces decisions
// for the storage layer to carry out.
package ncfilter
