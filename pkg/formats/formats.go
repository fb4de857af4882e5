// Package formats reads and writes the file formats used around spline
// geometry: Wavefront OBJ meshes for road templates and generated output,
// and binary heightmaps for terrain.
package formats
