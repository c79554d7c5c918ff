// Package mesh loads triangle meshes (positions, normals, 16-bit indices) from OBJ and glTF files.
package mesh

import (
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"
)

// MaxVertices is the most unique vertices a mesh may have with uint16 indices.
const MaxVertices = math.MaxUint16 + 1

type Mesh struct {
	Name      string
	Positions []mgl32.Vec3
	Normals   []mgl32.Vec3
	Indices   []uint16
}

func (m *Mesh) Validate() error {
	if len(m.Positions) == 0 {
		return errors.Errorf("mesh %q has no vertices", m.Name)
	}
	if len(m.Normals) != len(m.Positions) {
		return errors.Errorf("mesh %q has %d normals for %d vertices", m.Name, len(m.Normals), len(m.Positions))
	}
	if len(m.Indices)%3 != 0 {
		return errors.Errorf("mesh %q index count %d is not a multiple of 3", m.Name, len(m.Indices))
	}
	for i, idx := range m.Indices {
		if int(idx) >= len(m.Positions) {
			return errors.Errorf("mesh %q index %d references vertex %d of %d", m.Name, i, idx, len(m.Positions))
		}
	}
	return nil
}

// Load parses a mesh file, picking the format by extension.
func Load(name, path string) (*Mesh, error) {
	var m *Mesh
	var err error

	switch strings.ToLower(filepath.Ext(path)) {
	case ".obj":
		var f *os.File
		if f, err = os.Open(path); err != nil {
			return nil, errors.Wrapf(err, "open %q", path)
		}
		defer f.Close()
		m, err = ParseOBJ(name, f)
	case ".gltf", ".glb":
		m, err = LoadGLTF(name, path)
	default:
		return nil, errors.Errorf("unsupported mesh format %q", path)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "mesh %q (%s)", name, path)
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return m, nil
}

// LoadAll loads every mesh of the map or fails on the first one that can't be parsed.
func LoadAll(paths map[string]string) (map[string]*Mesh, error) {
	names := make([]string, 0, len(paths))
	for name := range paths {
		names = append(names, name)
	}
	sort.Strings(names)

	meshes := make(map[string]*Mesh, len(paths))
	for _, name := range names {
		m, err := Load(name, paths[name])
		if err != nil {
			return nil, err
		}
		meshes[name] = m
	}
	return meshes, nil
}

// computeNormals fills vertex normals by summing the (area weighted) normals of adjacent triangles.
func computeNormals(positions []mgl32.Vec3, indices []uint16) []mgl32.Vec3 {
	normals := make([]mgl32.Vec3, len(positions))
	for i := 0; i+2 < len(indices); i += 3 {
		a, b, c := indices[i], indices[i+1], indices[i+2]
		n := positions[b].Sub(positions[a]).Cross(positions[c].Sub(positions[a]))
		normals[a] = normals[a].Add(n)
		normals[b] = normals[b].Add(n)
		normals[c] = normals[c].Add(n)
	}
	for i, n := range normals {
		if n.Len() > 0 {
			normals[i] = n.Normalize()
		}
	}
	return normals
}
