// Package imaging is the pixel-level boundary of the augmentation pipeline.
//
// Everything that touches pixel data lives here: decoding files, resizing,
// affine warps, mirror flips, HSL colour conversion, lossy JPEG round trips and
// encoding results back to disk. The rest of the module treats images as opaque
// image.Image values and calls through these functions.
//
// # Coordinate System
//
// All pixel coordinates are 0-based with (0,0) at the top-left corner, X
// increasing rightward and Y increasing downward. Affine matrices map source
// coordinates to destination coordinates in that system.
//
// # Thread Safety
//
// Every function here is stateless and returns a freshly allocated image, so
// calls may run concurrently on different or shared inputs as long as nobody
// mutates an input while it is being read.
//
// # Formats
//
// Decoding supports PNG, JPEG, GIF, BMP, TIFF and WebP (through the imaging
// library's registered decoders plus golang.org/x/image/webp). Encoding
// supports JPEG, PNG and WebP.
package imaging
