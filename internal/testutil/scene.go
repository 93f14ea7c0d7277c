package testutil

import "github.com/meigma/blend/internal/blendtype"

// Addresses of the blocks written by Scene.
const (
	SceneObject   = 0x1000
	SceneMesh     = 0x2000
	SceneVerts    = 0x3000
	SceneMatArray = 0x4000
	SceneMaterial = 0x5000
	ScenePreview  = 0x6000
)

// Scene returns a builder holding a small object graph:
//
//	OB Object "OBCube" -> data: Mesh, mats: [Material, null]
//	ME Mesh "MECube"   -> mvert: 3 MVert, mat: pointer array [Material, null]
//	MA Material "MAred"
//
// plus two blocks that stay opaque: the mesh's pointer array and a preview
// image. Block indices follow the order above: object 0, mesh 1, verts 2,
// pointer array 3, material 4, preview 5.
func Scene(ptrSize int, endian blendtype.Endian) *Builder {
	b := NewBuilder(ptrSize, endian)
	id := b.Struct("ID", F("char", "name[16]"), F("ID", "*next"))
	mvert := b.Struct("MVert", F("float", "co[3]"), F("short", "flag"))
	mat := b.Struct("Material", F("ID", "id"), F("float", "r"))
	mesh := b.Struct("Mesh",
		F("ID", "id"),
		F("int", "totvert"),
		F("MVert", "*mvert"),
		F("Material", "**mat"),
		F("short", "totcol"),
	)
	obj := b.Struct("Object",
		F("ID", "id"),
		F("Mesh", "*data"),
		F("Material", "*mats[2]"),
		F("float", "loc[3]"),
		F("float", "obmat[4][4]"),
	)
	e := b.Enc

	ob := e().Chars("OBCube", 16).Ptr(0).
		Ptr(SceneMesh).
		Ptr(SceneMaterial).Ptr(0).
		Float32(1).Float32(2).Float32(3)
	for i := range 16 {
		v := float32(0)
		if i%5 == 0 {
			v = 1
		}
		ob.Float32(v)
	}
	b.Block("OB\x00\x00", SceneObject, obj, 1, ob.Bytes())

	b.Block("ME\x00\x00", SceneMesh, mesh, 1, e().Chars("MECube", 16).Ptr(0).
		Int32(3).Ptr(SceneVerts).Ptr(SceneMatArray).Int16(2).Bytes())

	verts := e()
	for i := range 3 {
		verts.Float32(float32(i)).Float32(float32(i) * 10).Float32(-1).Int16(int16(i))
	}
	b.Block("DATA", SceneVerts, mvert, 3, verts.Bytes())

	b.Block("DATA", SceneMatArray, id, 2, e().Ptr(SceneMaterial).Ptr(0).Bytes())
	b.Block("MA\x00\x00", SceneMaterial, mat, 1, e().Chars("MAred", 16).Ptr(0).Float32(0.5).Bytes())
	b.Block("PREV", ScenePreview, id, 1, []byte{0x89, 'P', 'N', 'G', 0, 0, 0})
	return b
}
