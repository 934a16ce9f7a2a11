/*
Package ndimg holds the basics shared by every layer of the N-dimensional image
framework: the leveled logging facade, element data types, sentinel errors,
configuration loading, extent arithmetic and the byte serialization used when
pixel cells are spilled out of memory.

Images themselves live in the image package.  Storage layouts are in storage,
pixel value proxies in types, traversal in cursor, boundary handling in
outofbounds, sub-pixel sampling in interpolation and windowed processing in
algorithm.
*/
package ndimg
