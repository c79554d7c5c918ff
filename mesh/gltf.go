package mesh

import (
	"io"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
)

const (
	attrPosition = "POSITION"
	attrNormal   = "NORMAL"
)

// LoadGLTF reads the triangle primitives of the first mesh in a .gltf or .glb file.
func LoadGLTF(name, path string) (*Mesh, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "open gltf")
	}
	return FromGLTF(name, doc)
}

// DecodeGLTF reads a self-contained (binary or embedded buffers) glTF stream.
func DecodeGLTF(name string, r io.Reader) (*Mesh, error) {
	doc := new(gltf.Document)
	if err := gltf.NewDecoder(r).Decode(doc); err != nil {
		return nil, errors.Wrap(err, "decode gltf")
	}
	return FromGLTF(name, doc)
}

func FromGLTF(name string, doc *gltf.Document) (*Mesh, error) {
	if len(doc.Meshes) == 0 {
		return nil, errors.New("gltf document has no meshes")
	}
	gm := doc.Meshes[0]
	m := &Mesh{Name: name}
	missingNormals := false

	for iPrimitive, primitive := range gm.Primitives {
		if primitive.Mode != gltf.PrimitiveTriangles {
			return nil, errors.Errorf("primitive %d: mode %v is not triangles", iPrimitive, primitive.Mode)
		}
		posAccessor, ok := primitive.Attributes[attrPosition]
		if !ok {
			return nil, errors.Errorf("primitive %d has no POSITION", iPrimitive)
		}

		positions, err := modeler.ReadPosition(doc, doc.Accessors[posAccessor], make([][3]float32, 0))
		if err != nil {
			return nil, errors.Wrapf(err, "primitive %d positions", iPrimitive)
		}

		var normals [][3]float32
		if normAccessor, ok := primitive.Attributes[attrNormal]; ok {
			if normals, err = modeler.ReadNormal(doc, doc.Accessors[normAccessor], make([][3]float32, 0)); err != nil {
				return nil, errors.Wrapf(err, "primitive %d normals", iPrimitive)
			}
		} else {
			missingNormals = true
		}

		var indices []uint32
		if primitive.Indices != nil {
			if indices, err = modeler.ReadIndices(doc, doc.Accessors[*primitive.Indices], make([]uint32, 0)); err != nil {
				return nil, errors.Wrapf(err, "primitive %d indices", iPrimitive)
			}
		} else {
			indices = make([]uint32, len(positions))
			for i := range indices {
				indices[i] = uint32(i)
			}
		}

		offset := len(m.Positions)
		if offset+len(positions) > MaxVertices {
			return nil, errors.Errorf("more than %d vertices", MaxVertices)
		}
		for i, pos := range positions {
			m.Positions = append(m.Positions, mgl32.Vec3(pos))
			if normals != nil && i < len(normals) {
				m.Normals = append(m.Normals, mgl32.Vec3(normals[i]))
			} else {
				m.Normals = append(m.Normals, mgl32.Vec3{})
			}
		}
		for _, idx := range indices {
			if int(idx) >= len(positions) {
				return nil, errors.Errorf("primitive %d index %d out of range", iPrimitive, idx)
			}
			m.Indices = append(m.Indices, uint16(offset+int(idx)))
		}
	}

	if missingNormals {
		m.Normals = computeNormals(m.Positions, m.Indices)
	}
	return m, nil
}

// ExportGLB writes the mesh as a single-primitive binary glTF.
func ExportGLB(w io.Writer, m *Mesh) error {
	doc := gltf.NewDocument()

	positions := make([][3]float32, len(m.Positions))
	for i, p := range m.Positions {
		positions[i] = p
	}
	normals := make([][3]float32, len(m.Normals))
	for i, n := range m.Normals {
		normals[i] = n
	}
	indices := make([]uint32, len(m.Indices))
	for i, idx := range m.Indices {
		indices[i] = uint32(idx)
	}

	indicesAccessor := modeler.WriteIndices(doc, indices)
	doc.Meshes = append(doc.Meshes, &gltf.Mesh{
		Name: m.Name,
		Primitives: []*gltf.Primitive{
			{
				Indices: &indicesAccessor,
				Attributes: map[string]uint32{
					attrPosition: modeler.WritePosition(doc, positions),
					attrNormal:   modeler.WriteNormal(doc, normals),
				},
			},
		},
	})

	node := uint32(len(doc.Nodes))
	meshIndex := uint32(len(doc.Meshes) - 1)
	doc.Nodes = append(doc.Nodes, &gltf.Node{Name: m.Name, Mesh: &meshIndex})
	doc.Scenes[0].Nodes = append(doc.Scenes[0].Nodes, node)

	encoder := gltf.NewEncoder(w)
	encoder.AsBinary = true
	return encoder.Encode(doc)
}
