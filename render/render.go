//
// Copyright (c) 2026 Osmose Engineering
//

// Package render tessellates scalar fields into triangle meshes via
// marching cubes and writes them out as binary STL.
package render

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"

	"github.com/deadsy/sdfx/render"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"

	implicit "github.com/osmose-engineering/implicit-geometry"
)

// DefaultMeshCells controls marching cubes tessellation resolution.
const DefaultMeshCells = 200

// fieldSDF3 adapts a Field to the sdf.SDF3 interface.
type fieldSDF3 struct {
	field  implicit.Field
	bounds implicit.Bounds
}

func (f *fieldSDF3) Evaluate(p v3.Vec) float64 {
	return f.field.Evaluate(implicit.Vec3{X: p.X, Y: p.Y, Z: p.Z})
}

func (f *fieldSDF3) BoundingBox() sdf.Box3 {
	return sdf.Box3{
		Min: v3.Vec{X: f.bounds.XMin, Y: f.bounds.YMin, Z: f.bounds.ZMin},
		Max: v3.Vec{X: f.bounds.XMax, Y: f.bounds.YMax, Z: f.bounds.ZMax},
	}
}

// Tessellate runs marching cubes on the field over bounds. meshCells
// is the number of cells along the longest axis; values below 1 use
// the default.
func Tessellate(field implicit.Field, bounds implicit.Bounds, meshCells int) ([]render.Triangle3, error) {
	if err := bounds.Validate(); err != nil {
		return nil, err
	}
	if meshCells < 1 {
		meshCells = DefaultMeshCells
	}

	renderer := render.NewMarchingCubesUniform(meshCells)
	triangles := render.ToTriangles(&fieldSDF3{field: field, bounds: bounds}, renderer)
	if len(triangles) == 0 {
		return nil, fmt.Errorf("surface does not intersect the bounds: %w", implicit.ErrEmptyInput)
	}
	return triangles, nil
}

// WriteSTL writes triangles as a binary STL stream.
func WriteSTL(writer io.Writer, triangles []render.Triangle3) (err error) {
	var header [80]byte
	copy(header[:], "implicit-geometry binary stl")
	if _, err = writer.Write(header[:]); err != nil {
		return
	}
	if err = binary.Write(writer, binary.LittleEndian, uint32(len(triangles))); err != nil {
		return
	}

	var record [50]byte
	for _, tri := range triangles {
		n := tri.Normal()
		putVec(record[0:], n.X, n.Y, n.Z)
		for j := 0; j < 3; j++ {
			putVec(record[12+12*j:], tri[j].X, tri[j].Y, tri[j].Z)
		}
		// attribute byte count stays zero
		if _, err = writer.Write(record[:]); err != nil {
			return
		}
	}
	return
}

func putVec(buf []byte, x, y, z float64) {
	binary.LittleEndian.PutUint32(buf[0:], math.Float32bits(float32(x)))
	binary.LittleEndian.PutUint32(buf[4:], math.Float32bits(float32(y)))
	binary.LittleEndian.PutUint32(buf[8:], math.Float32bits(float32(z)))
}

// ExportSTL tessellates the field and writes the result to path. The
// file is staged alongside the destination and renamed into place once
// the write completes.
func ExportSTL(path string, field implicit.Field, bounds implicit.Bounds, meshCells int) (err error) {
	triangles, err := Tessellate(field, bounds, meshCells)
	if err != nil {
		return
	}

	temp, err := os.CreateTemp(filepath.Dir(path), "stl-export-*")
	if err != nil {
		return
	}
	defer func() {
		if err != nil {
			temp.Close()
			os.Remove(temp.Name())
		}
	}()

	if err = WriteSTL(temp, triangles); err != nil {
		return
	}
	if err = temp.Close(); err != nil {
		return
	}
	err = os.Rename(temp.Name(), path)
	return
}
