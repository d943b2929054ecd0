// Package dtype describes the atomic element types of array variables:
// their names, sizes in bytes and Go equivalents.
//
//	Name    | Size | Go type
//	--------|------|---------
//	byte    | 1    | int8
//	ubyte   | 1    | uint8
//	char    | 1    | byte
//	short   | 2    | int16
//	ushort  | 2    | uint16
//	int     | 4    | int32
//	uint    | 4    | uint32
//	int64   | 8    | int64
//	uint64  | 8    | uint64
//	float   | 4    | float32
//	double  | 8    | float64
//	string  | 8    | string (variable length)
//
// A string element is a reference to data stored elsewhere, so its size is
// the size of the reference and filters cannot apply to it.
package dtype
