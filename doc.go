/*
Package ndimg is a framework for N-dimensional images whose pixels live in
pluggable container layouts.

Images are built from three parts:

	storage        containers: one contiguous array, fixed-size cells with a
	               bounded resident set and spill store, one slice per 2-d
	               plane, or a memory-mapped file
	types          value proxies reading and writing one pixel of a container
	image          an image binds a container, a proxy kind and calibration

Pixels are visited with the cursors of package cursor.  Localizable cursors
report their position, by-dimension cursors seek and step along any axis, and
region of interest and neighborhood cursors move their parent through a box or
the direct neighbors of a pixel.  Package outofbounds extends by-dimension
cursors beyond the image with constant values or mirrored, periodic or
clamped coordinates.  Package interpolation samples images at real positions.

Windowed computations go through algorithm.ROIAlgorithm, which hands each
output position a region of interest cursor over the surrounding patch and
may run on a multithreading.Pool.  The mean, min, max and convolution filters
are built this way; algorithm/fft adds Fourier transforms and phase
correlation registration.

Package loader fills images from TIFF, PNG and BMP stacks or raw volumes, and
cmd/ndimg exposes the stack on the command line:

	ndimg info stack/*.tif
	ndimg mean --patch 3,3,1 --oob mirror -o mean.tif stack/*.tif
	ndimg smooth --sigma 2 --parallel -o smooth.png in.png
	ndimg register fixed.png moving.png
	ndimg --config ndimg.toml formats

A configuration file selects the container layout, logging and the worker
count; see ndimg.Config.
*/
package ndimg
