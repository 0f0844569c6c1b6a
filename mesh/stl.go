//
// Copyright (c) 2026 Osmose Engineering
//

package mesh

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
)

// Triangle is one face of a loaded mesh.
type Triangle [3]Point

// TriMesh is an STL-backed Source. Queries are brute force over the
// triangle list; there is no acceleration structure, which is adequate for
// the one-time eager load and the per-layer query volumes the slicer
// produces.
type TriMesh struct {
	Triangles []Triangle

	min, max Point
}

// Sub/dot/cross helpers on Point keep the geometry below readable.
func sub(a, b Point) Point { return Point{a.X - b.X, a.Y - b.Y, a.Z - b.Z} }

func dot(a, b Point) float64 { return a.X*b.X + a.Y*b.Y + a.Z*b.Z }

func cross(a, b Point) Point {
	return Point{
		X: a.Y*b.Z - a.Z*b.Y,
		Y: a.Z*b.X - a.X*b.Z,
		Z: a.X*b.Y - a.Y*b.X,
	}
}
func scale(a Point, s float64) Point { return Point{a.X * s, a.Y * s, a.Z * s} }

func add(a, b Point) Point { return Point{a.X + b.X, a.Y + b.Y, a.Z + b.Z} }

// LoadSTL reads a binary or ASCII STL file into a TriMesh. The mesh is
// used as-is: inside/outside classification is best-effort ray parity, so
// small holes degrade gracefully rather than failing the load.
func LoadSTL(path string) (Source, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("mesh %s: %w", path, err)
		}
		return nil, fmt.Errorf("read mesh %s: %w", path, err)
	}

	var tris []Triangle
	if looksASCII(data) {
		tris, err = parseASCIISTL(data)
	} else {
		tris, err = parseBinarySTL(data)
	}
	if err != nil {
		return nil, fmt.Errorf("parse mesh %s: %w", path, err)
	}
	if len(tris) == 0 {
		return nil, fmt.Errorf("mesh %s: no triangles", path)
	}

	return NewTriMesh(tris), nil
}

// NewTriMesh wraps a triangle list and computes its bounds.
func NewTriMesh(tris []Triangle) *TriMesh {
	m := &TriMesh{
		Triangles: tris,
		min:       Point{math.Inf(1), math.Inf(1), math.Inf(1)},
		max:       Point{math.Inf(-1), math.Inf(-1), math.Inf(-1)},
	}
	for _, t := range tris {
		for _, v := range t {
			m.min.X = math.Min(m.min.X, v.X)
			m.min.Y = math.Min(m.min.Y, v.Y)
			m.min.Z = math.Min(m.min.Z, v.Z)
			m.max.X = math.Max(m.max.X, v.X)
			m.max.Y = math.Max(m.max.Y, v.Y)
			m.max.Z = math.Max(m.max.Z, v.Z)
		}
	}
	return m
}

func looksASCII(data []byte) bool {
	head := data
	if len(head) > 512 {
		head = head[:512]
	}
	trimmed := bytes.TrimLeft(head, " \t\r\n")
	return bytes.HasPrefix(trimmed, []byte("solid")) && bytes.Contains(head, []byte("facet"))
}

func parseBinarySTL(data []byte) ([]Triangle, error) {
	if len(data) < 84 {
		return nil, fmt.Errorf("binary STL truncated: %d bytes", len(data))
	}
	count := binary.LittleEndian.Uint32(data[80:84])
	const record = 50 // 12 normal floats + 3 vertices + attribute count
	if len(data) < 84+int(count)*record {
		return nil, fmt.Errorf("binary STL declares %d triangles, data short", count)
	}

	tris := make([]Triangle, count)
	off := 84
	for i := range tris {
		// Skip the stored normal; it is recomputed where needed.
		v := off + 12
		for j := 0; j < 3; j++ {
			tris[i][j] = Point{
				X: float64(math.Float32frombits(binary.LittleEndian.Uint32(data[v : v+4]))),
				Y: float64(math.Float32frombits(binary.LittleEndian.Uint32(data[v+4 : v+8]))),
				Z: float64(math.Float32frombits(binary.LittleEndian.Uint32(data[v+8 : v+12]))),
			}
			v += 12
		}
		off += record
	}
	return tris, nil
}

func parseASCIISTL(data []byte) ([]Triangle, error) {
	var tris []Triangle
	var verts []Point

	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) != 4 || fields[0] != "vertex" {
			continue
		}
		var p Point
		var err error
		if p.X, err = strconv.ParseFloat(fields[1], 64); err != nil {
			return nil, fmt.Errorf("bad vertex: %q", scanner.Text())
		}
		if p.Y, err = strconv.ParseFloat(fields[2], 64); err != nil {
			return nil, fmt.Errorf("bad vertex: %q", scanner.Text())
		}
		if p.Z, err = strconv.ParseFloat(fields[3], 64); err != nil {
			return nil, fmt.Errorf("bad vertex: %q", scanner.Text())
		}
		verts = append(verts, p)
		if len(verts) == 3 {
			tris = append(tris, Triangle{verts[0], verts[1], verts[2]})
			verts = verts[:0]
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return tris, nil
}

// Bounds implements Source.
func (m *TriMesh) Bounds() (min, max Point) {
	return m.min, m.max
}

// SignedDistance implements Source: unsigned distance to the nearest
// triangle, negated when a parity ray cast says the point is enclosed.
func (m *TriMesh) SignedDistance(p Point) float64 {
	best := math.Inf(1)
	for i := range m.Triangles {
		d := pointTriangleDistSq(p, &m.Triangles[i])
		if d < best {
			best = d
		}
	}
	dist := math.Sqrt(best)
	if m.contains(p) {
		return -dist
	}
	return dist
}

// rayDir is a fixed irregular direction so that axis-aligned facets are
// crossed transversally during parity counting.
var rayDir = Point{0.8017837257372732, 0.5345224838248488, 0.2672612419124244}

func (m *TriMesh) contains(p Point) bool {
	hits := 0
	for i := range m.Triangles {
		if rayIntersects(p, rayDir, &m.Triangles[i]) {
			hits++
		}
	}
	return hits%2 == 1
}

// rayIntersects is Moller-Trumbore for a ray from origin o along d.
func rayIntersects(o, d Point, tri *Triangle) bool {
	const eps = 1e-12

	e1 := sub(tri[1], tri[0])
	e2 := sub(tri[2], tri[0])
	pv := cross(d, e2)
	det := dot(e1, pv)
	if math.Abs(det) < eps {
		return false
	}
	inv := 1 / det
	tv := sub(o, tri[0])
	u := dot(tv, pv) * inv
	if u < 0 || u > 1 {
		return false
	}
	qv := cross(tv, e1)
	v := dot(d, qv) * inv
	if v < 0 || u+v > 1 {
		return false
	}
	t := dot(e2, qv) * inv
	return t > eps
}

// pointTriangleDistSq returns the squared distance from p to the closest
// point on the triangle (Ericson, Real-Time Collision Detection).
func pointTriangleDistSq(p Point, tri *Triangle) float64 {
	a, b, c := tri[0], tri[1], tri[2]

	ab := sub(b, a)
	ac := sub(c, a)
	ap := sub(p, a)

	d1 := dot(ab, ap)
	d2 := dot(ac, ap)
	if d1 <= 0 && d2 <= 0 {
		return distSq(p, a)
	}

	bp := sub(p, b)
	d3 := dot(ab, bp)
	d4 := dot(ac, bp)
	if d3 >= 0 && d4 <= d3 {
		return distSq(p, b)
	}

	vc := d1*d4 - d3*d2
	if vc <= 0 && d1 >= 0 && d3 <= 0 {
		v := d1 / (d1 - d3)
		return distSq(p, add(a, scale(ab, v)))
	}

	cp := sub(p, c)
	d5 := dot(ab, cp)
	d6 := dot(ac, cp)
	if d6 >= 0 && d5 <= d6 {
		return distSq(p, c)
	}

	vb := d5*d2 - d1*d6
	if vb <= 0 && d2 >= 0 && d6 <= 0 {
		w := d2 / (d2 - d6)
		return distSq(p, add(a, scale(ac, w)))
	}

	va := d3*d6 - d5*d4
	if va <= 0 && (d4-d3) >= 0 && (d5-d6) >= 0 {
		w := (d4 - d3) / ((d4 - d3) + (d5 - d6))
		return distSq(p, add(b, scale(sub(c, b), w)))
	}

	denom := 1 / (va + vb + vc)
	v := vb * denom
	w := vc * denom
	q := add(a, add(scale(ab, v), scale(ac, w)))
	return distSq(p, q)
}

func distSq(a, b Point) float64 {
	d := sub(a, b)
	return dot(d, d)
}
