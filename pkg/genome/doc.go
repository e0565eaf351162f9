// Package genome holds the annotated sequence model that the placement
// pipeline consumes.
//
// A [Map] has a length, a topology (circular or linear) and a list of
// [Feature] ranges. Maps are read from JSON with [ReadJSON] or from TOML
// with [ReadTOML]; [ImportFile] picks the decoder from the file extension:
//
//	m, err := genome.ImportFile("pBR322.toml")
//	if err != nil {
//	    return err
//	}
//
// Only map-level problems (non-positive length, unsafe names, unknown strand)
// are reported by [Map.Validate]. Feature ranges that fall outside the map
// are clamped when the feature index is built.
package genome
