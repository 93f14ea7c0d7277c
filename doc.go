//go:generate flatc --go --go-namespace fb -o internal schema/toc.fbs

// Package blend decodes Blender .blend files.
//
// A blend file carries its own type catalog: the layout of every structure
// stored in the file is described by a catalog block inside the file itself.
// Parse reads the header, frames the block stream, loads the catalog, and
// decodes every data block into a tree of typed fields. Blocks whose bytes do
// not match their declared structure are kept as opaque raw data and reported
// as diagnostics instead of failing the parse.
//
// # Quick Start
//
// Parse a file and walk its decoded blocks:
//
//	f, err := blend.Open("scene.blend")
//	if err != nil {
//	    return err
//	}
//	for _, d := range f.Decoded() {
//	    if d.Opaque() {
//	        continue
//	    }
//	    for _, in := range d.Instances {
//	        name, _ := in.Lookup("id.name")
//	        fmt.Println(in.TypeName, name.Array.String())
//	    }
//	}
//
// # Pointers
//
// Pointer fields hold the addresses the writing process used in memory.
// Resolve them through the File:
//
//	mesh, _ := f.DerefStructs(obj.Fields[i])
//
// A null pointer resolves to no target without an error. Opaque targets are
// reinterpreted as structures on demand when their size allows it.
//
// # Table of Contents
//
// MarshalTOC encodes a FlatBuffers table of contents listing every block and
// its offset. LoadTOC and ReadBlockAt use it to read a single block back from
// the file without framing the whole stream.
package blend
