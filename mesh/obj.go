package mesh

import (
	"bufio"
	"io"
	"strconv"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"
)

type objCorner struct {
	position, normal int
}

type objParser struct {
	positions []mgl32.Vec3
	normals   []mgl32.Vec3

	mesh     *Mesh
	unpacked map[objCorner]uint16
	noNormal bool
}

// ParseOBJ reads a Wavefront OBJ stream. Every unique position/normal pair becomes one vertex,
// polygons are triangulated as fans.
func ParseOBJ(name string, r io.Reader) (*Mesh, error) {
	p := &objParser{
		mesh:     &Mesh{Name: name},
		unpacked: make(map[objCorner]uint16),
	}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for line := 1; scanner.Scan(); line++ {
		if err := p.parseLine(scanner.Text()); err != nil {
			return nil, errors.Wrapf(err, "line %d", line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "read")
	}

	if p.noNormal {
		p.mesh.Normals = computeNormals(p.mesh.Positions, p.mesh.Indices)
	}
	return p.mesh, nil
}

func (p *objParser) parseLine(line string) error {
	if i := strings.IndexByte(line, '#'); i >= 0 {
		line = line[:i]
	}
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil
	}

	switch fields[0] {
	case "v":
		v, err := parseVec3(fields[1:])
		if err != nil {
			return errors.Wrap(err, "vertex")
		}
		p.positions = append(p.positions, v)
	case "vn":
		v, err := parseVec3(fields[1:])
		if err != nil {
			return errors.Wrap(err, "normal")
		}
		p.normals = append(p.normals, v)
	case "f":
		return p.parseFace(fields[1:])
	}
	// vt, o, g, s, usemtl, mtllib carry nothing we render
	return nil
}

func parseVec3(fields []string) (v mgl32.Vec3, err error) {
	if len(fields) < 3 {
		return v, errors.Errorf("expected 3 components, got %d", len(fields))
	}
	for i := 0; i < 3; i++ {
		f, err := strconv.ParseFloat(fields[i], 32)
		if err != nil {
			return v, err
		}
		v[i] = float32(f)
	}
	return v, nil
}

func (p *objParser) parseFace(corners []string) error {
	if len(corners) < 3 {
		return errors.Errorf("face with %d corners", len(corners))
	}
	indices := make([]uint16, len(corners))
	for i, c := range corners {
		idx, err := p.corner(c)
		if err != nil {
			return errors.Wrapf(err, "corner %q", c)
		}
		indices[i] = idx
	}
	for i := 1; i+1 < len(indices); i++ {
		p.mesh.Indices = append(p.mesh.Indices, indices[0], indices[i], indices[i+1])
	}
	return nil
}

// resolveIndex converts a 1-based (or negative, relative) OBJ reference.
func resolveIndex(s string, count int) (int, error) {
	i, err := strconv.Atoi(s)
	if err != nil {
		return 0, err
	}
	switch {
	case i > 0 && i <= count:
		return i - 1, nil
	case i < 0 && -i <= count:
		return count + i, nil
	}
	return 0, errors.Errorf("index %d out of range [1, %d]", i, count)
}

func (p *objParser) corner(s string) (uint16, error) {
	parts := strings.Split(s, "/")

	var c objCorner
	var err error
	if c.position, err = resolveIndex(parts[0], len(p.positions)); err != nil {
		return 0, errors.Wrap(err, "position")
	}
	c.normal = -1
	if len(parts) >= 3 && parts[2] != "" {
		if c.normal, err = resolveIndex(parts[2], len(p.normals)); err != nil {
			return 0, errors.Wrap(err, "normal")
		}
	} else {
		p.noNormal = true
	}

	if idx, ok := p.unpacked[c]; ok {
		return idx, nil
	}
	if len(p.mesh.Positions) >= MaxVertices {
		return 0, errors.Errorf("more than %d unique vertices", MaxVertices)
	}

	idx := uint16(len(p.mesh.Positions))
	p.unpacked[c] = idx
	p.mesh.Positions = append(p.mesh.Positions, p.positions[c.position])
	if c.normal >= 0 {
		p.mesh.Normals = append(p.mesh.Normals, p.normals[c.normal])
	} else {
		p.mesh.Normals = append(p.mesh.Normals, mgl32.Vec3{})
	}
	return idx, nil
}
