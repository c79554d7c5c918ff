package mesh

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
)

const quadOBJ = `# a unit quad facing +Z
o quad
v -1 -1 0
v  1 -1 0
v  1  1 0
v -1  1 0
vt 0 0
vn 0 0 1
s off
f 1/1/1 2/1/1 3/1/1 4/1/1
`

func TestParseOBJQuad(t *testing.T) {
	m, err := ParseOBJ("quad", strings.NewReader(quadOBJ))
	if err != nil {
		t.Fatal(err)
	}
	if err := m.Validate(); err != nil {
		t.Fatal(err)
	}
	if len(m.Positions) != 4 {
		t.Errorf("got %d vertices; expected 4", len(m.Positions))
	}
	expectedIndices := []uint16{0, 1, 2, 0, 2, 3}
	if len(m.Indices) != len(expectedIndices) {
		t.Fatalf("indices %v; expected %v", m.Indices, expectedIndices)
	}
	for i := range expectedIndices {
		if m.Indices[i] != expectedIndices[i] {
			t.Errorf("indices %v; expected %v", m.Indices, expectedIndices)
			break
		}
	}
	for i, n := range m.Normals {
		if n != (mgl32.Vec3{0, 0, 1}) {
			t.Errorf("normal %d = %v", i, n)
		}
	}
}

func TestParseOBJSharesCorners(t *testing.T) {
	const src = `
v 0 0 0
v 1 0 0
v 0 1 0
v 1 1 0
vn 0 0 1
vn 0 0 -1
f 1//1 2//1 3//1
f 2//1 4//1 3//1
f 3//2 2//2 1//2
`
	m, err := ParseOBJ("shared", strings.NewReader(src))
	if err != nil {
		t.Fatal(err)
	}
	// 4 corners with the front normal, 3 with the back one
	if len(m.Positions) != 7 {
		t.Errorf("got %d unique vertices; expected 7", len(m.Positions))
	}
	if len(m.Indices) != 9 {
		t.Errorf("got %d indices; expected 9", len(m.Indices))
	}
}

func TestParseOBJNegativeIndicesAndComputedNormals(t *testing.T) {
	const src = `
v 0 0 0
v 1 0 0
v 0 1 0
f -3 -2 -1
`
	m, err := ParseOBJ("tri", strings.NewReader(src))
	if err != nil {
		t.Fatal(err)
	}
	if len(m.Indices) != 3 || m.Indices[0] != 0 || m.Indices[2] != 2 {
		t.Fatalf("indices %v", m.Indices)
	}
	for i, n := range m.Normals {
		if !n.ApproxEqualThreshold(mgl32.Vec3{0, 0, 1}, 1e-6) {
			t.Errorf("computed normal %d = %v; expected +Z", i, n)
		}
	}
}

var badOBJTests = []struct {
	name string
	src  string
}{
	{"index out of range", "v 0 0 0\nv 1 0 0\nv 0 1 0\nf 1 2 4\n"},
	{"zero index", "v 0 0 0\nv 1 0 0\nv 0 1 0\nf 0 1 2\n"},
	{"bad float", "v 0 x 0\n"},
	{"short vertex", "v 0 0\n"},
	{"degenerate face", "v 0 0 0\nv 1 0 0\nf 1 2\n"},
	{"missing normal", "v 0 0 0\nv 1 0 0\nv 0 1 0\nf 1//1 2//1 3//1\n"},
	{"too many vertices", distinctCornersOBJ(MaxVertices + 1)},
}

// distinctCornersOBJ builds triangles over n distinct positions sharing one normal,
// padding the last triangle with the first position.
func distinctCornersOBJ(n int) string {
	var b strings.Builder
	for i := 0; i < n; i++ {
		fmt.Fprintf(&b, "v %d 0 0\n", i)
	}
	b.WriteString("vn 0 0 1\n")
	for i := 1; i <= n; i += 3 {
		b.WriteString("f")
		for j := i; j < i+3; j++ {
			idx := j
			if idx > n {
				idx = 1
			}
			fmt.Fprintf(&b, " %d//1", idx)
		}
		b.WriteString("\n")
	}
	return b.String()
}

func TestParseOBJMaxVertices(t *testing.T) {
	m, err := ParseOBJ("full", strings.NewReader(distinctCornersOBJ(MaxVertices)))
	if err != nil {
		t.Fatal(err)
	}
	if len(m.Positions) != MaxVertices {
		t.Errorf("%d vertices; expected %d", len(m.Positions), MaxVertices)
	}
	if err := m.Validate(); err != nil {
		t.Error(err)
	}
}

func TestFromGLTFVertexLimitAcrossPrimitives(t *testing.T) {
	primitive := func(doc *gltf.Document, count int) *gltf.Primitive {
		positions := make([][3]float32, count)
		for i := range positions {
			positions[i] = [3]float32{float32(i), 0, 0}
		}
		return &gltf.Primitive{
			Attributes: map[string]uint32{attrPosition: modeler.WritePosition(doc, positions)},
		}
	}

	for _, test := range []struct {
		first, second int
		fail          bool
	}{
		{MaxVertices / 2, MaxVertices / 2, false},
		{MaxVertices/2 + 1, MaxVertices / 2, true},
	} {
		doc := gltf.NewDocument()
		doc.Meshes = append(doc.Meshes, &gltf.Mesh{
			Primitives: []*gltf.Primitive{primitive(doc, test.first), primitive(doc, test.second)},
		})
		_, err := FromGLTF("split", doc)
		if test.fail && err == nil {
			t.Errorf("%d+%d vertices: expected error", test.first, test.second)
		} else if !test.fail && err != nil {
			t.Errorf("%d+%d vertices: %v", test.first, test.second, err)
		}
	}
}

func TestParseOBJErrors(t *testing.T) {
	for _, test := range badOBJTests {
		if _, err := ParseOBJ(test.name, strings.NewReader(test.src)); err == nil {
			t.Errorf("%s: expected error", test.name)
		}
	}
}

func TestLoadAll(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "quad.obj")
	if err := os.WriteFile(good, []byte(quadOBJ), 0644); err != nil {
		t.Fatal(err)
	}

	meshes, err := LoadAll(map[string]string{"box": good, "monkey": good})
	if err != nil {
		t.Fatal(err)
	}
	if len(meshes) != 2 || meshes["box"].Name != "box" || meshes["monkey"].Name != "monkey" {
		t.Errorf("unexpected meshes %v", meshes)
	}

	if _, err := LoadAll(map[string]string{"box": good, "monkey": filepath.Join(dir, "missing.obj")}); err == nil {
		t.Error("expected error for missing file")
	}
	if _, err := LoadAll(map[string]string{"box": filepath.Join(dir, "quad.fbx")}); err == nil {
		t.Error("expected error for unsupported format")
	}
}

func TestExportGLBRoundTrip(t *testing.T) {
	src, err := ParseOBJ("quad", strings.NewReader(quadOBJ))
	if err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	if err := ExportGLB(&buf, src); err != nil {
		t.Fatal(err)
	}

	m, err := DecodeGLTF("quad", &buf)
	if err != nil {
		t.Fatal(err)
	}
	if err := m.Validate(); err != nil {
		t.Fatal(err)
	}
	if len(m.Positions) != len(src.Positions) || len(m.Indices) != len(src.Indices) {
		t.Fatalf("round trip lost data: %d/%d vertices, %d/%d indices",
			len(m.Positions), len(src.Positions), len(m.Indices), len(src.Indices))
	}
	for i := range m.Positions {
		if m.Positions[i] != src.Positions[i] || m.Normals[i] != src.Normals[i] {
			t.Errorf("vertex %d: %v %v; expected %v %v", i, m.Positions[i], m.Normals[i], src.Positions[i], src.Normals[i])
		}
	}
}
