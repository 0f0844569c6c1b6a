//
// Copyright (c) 2026 Osmose Engineering
//

package implicit

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/osmose-engineering/implicit-geometry/mesh"
)

// NodeType tags a graph node. The tag strings are wire contract and
// case-sensitive.
type NodeType string

const (
	NodeCube      = NodeType("Cube")
	NodeBox       = NodeType("Box")
	NodeSphere    = NodeType("Sphere")
	NodeCylinder  = NodeType("Cylinder")
	NodeTorus     = NodeType("Torus")
	NodeTransform = NodeType("Transform")
	NodeUnion     = NodeType("Union")
	NodeIntersect = NodeType("Intersect")
	NodeSubtract  = NodeType("Subtract")
	NodeLattice   = NodeType("Lattice")
	NodeMesh      = NodeType("Mesh")
)

// Node is one graph element: id, type tag, type-specific parameters, and
// the ordered ids of its inputs (empty for leaves).
type Node struct {
	ID     string          `json:"id"`
	Type   NodeType        `json:"type"`
	Params json.RawMessage `json:"params,omitempty"`
	Inputs []string        `json:"inputs,omitempty"`
}

type boundsJSON struct {
	XMin float64 `json:"xmin"`
	XMax float64 `json:"xmax"`
	YMin float64 `json:"ymin"`
	YMax float64 `json:"ymax"`
	ZMin float64 `json:"zmin"`
	ZMax float64 `json:"zmax"`
}

func (b *boundsJSON) bounds() Bounds {
	return Bounds{XMin: b.XMin, XMax: b.XMax, YMin: b.YMin, YMax: b.YMax, ZMin: b.ZMin, ZMax: b.ZMax}
}

func boundsToJSON(b Bounds) *boundsJSON {
	return &boundsJSON{XMin: b.XMin, XMax: b.XMax, YMin: b.YMin, YMax: b.YMax, ZMin: b.ZMin, ZMax: b.ZMax}
}

// Metadata is the header block of a graph-form document.
type Metadata struct {
	FormatVersion string      `json:"format_version,omitempty"`
	Units         string      `json:"units,omitempty"`
	Bounds        *boundsJSON `json:"bounds,omitempty"`
}

// FlatSDF is the single nested descriptor of a flat-form document. Boolean
// kinds reference other documents by path instead of embedding nodes.
type FlatSDF struct {
	Kind string `json:"kind"`

	Center     []float64 `json:"center,omitempty"`
	Radius     float64   `json:"radius,omitempty"`
	Halfwidths []float64 `json:"halfwidths,omitempty"`
	AxisPoint  []float64 `json:"axis_point,omitempty"`
	AxisDir    []float64 `json:"axis_dir,omitempty"`
	RingRadius float64   `json:"ring_radius,omitempty"`
	TubeRadius float64   `json:"tube_radius,omitempty"`

	CellSize  float64 `json:"cell_size,omitempty"`
	Thickness float64 `json:"thickness,omitempty"`

	SeedCount int   `json:"seed_count,omitempty"`
	Seed      int64 `json:"seed,omitempty"`

	Inputs []string `json:"inputs,omitempty"`
	Path   string   `json:"path,omitempty"`
}

// Document is a deserialized .ifg file in either of its two schema
// variants: node-graph (Metadata + Nodes + optional explicit Root) or flat
// (Format + Bounds + SDF).
type Document struct {
	Metadata *Metadata `json:"metadata,omitempty"`
	Nodes    []Node    `json:"nodes,omitempty"`
	Root     string    `json:"root,omitempty"`

	Format    string      `json:"format,omitempty"`
	FlatBound *boundsJSON `json:"bounds,omitempty"`
	SDF       *FlatSDF    `json:"sdf,omitempty"`

	dir        string      // directory of the source file, for relative references
	flatMeshes *mesh.Cache // cache handed to Compile, threaded through flat references
}

// LoadDocument reads and validates a .ifg document. Relative paths inside
// the document (boolean inputs, mesh files) resolve against the
// document's own directory.
func LoadDocument(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, MissingAssetError(path)
		}
		return nil, fmt.Errorf("read document: %w", err)
	}

	var doc Document
	if err = json.Unmarshal(data, &doc); err != nil {
		return nil, MalformedDocumentError(fmt.Sprintf("%s: %v", path, err))
	}
	doc.dir = filepath.Dir(path)

	if _, err = doc.Bounds(); err != nil {
		return nil, err
	}
	return &doc, nil
}

// WriteFile serializes the document as indented JSON.
func (d *Document) WriteFile(path string) error {
	data, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0644)
}

// NewFlatDocument builds a flat-form document around a single
// descriptor.
func NewFlatDocument(bounds Bounds, sdf *FlatSDF) *Document {
	return &Document{
		Format:    "implicit",
		FlatBound: boundsToJSON(bounds),
		SDF:       sdf,
	}
}

// IsGraph reports whether the document is in node-graph form.
func (d *Document) IsGraph() bool {
	return len(d.Nodes) > 0
}

// Bounds returns the document's sampling region, validating the
// min <= max invariant. Bounds are required; they are never inferred or
// repaired here.
func (d *Document) Bounds() (Bounds, error) {
	var bj *boundsJSON
	if d.IsGraph() {
		if d.Metadata != nil {
			bj = d.Metadata.Bounds
		}
	} else {
		bj = d.FlatBound
	}
	if bj == nil {
		return Bounds{}, MalformedDocumentError("document has no bounds")
	}
	b := bj.bounds()
	if err := b.Validate(); err != nil {
		return Bounds{}, err
	}
	return b, nil
}

// MeshRoot reports whether the document's root is a bare mesh reference,
// and the mesh path if so. The slicer uses this to pick the cross-section
// fast path.
func (d *Document) MeshRoot() (path string, ok bool) {
	if d.IsGraph() {
		node, err := d.rootNode()
		if err != nil || node.Type != NodeMesh {
			return "", false
		}
		var params meshParams
		if json.Unmarshal(node.Params, &params) != nil || params.Filename == "" {
			return "", false
		}
		return d.resolvePath(params.Filename), true
	}
	if d.SDF != nil && d.SDF.Kind == "mesh" && d.SDF.Path != "" {
		return d.resolvePath(d.SDF.Path), true
	}
	return "", false
}

func (d *Document) resolvePath(p string) string {
	if filepath.IsAbs(p) || d.dir == "" {
		return p
	}
	return filepath.Join(d.dir, p)
}

func (d *Document) rootNode() (*Node, error) {
	if len(d.Nodes) == 0 {
		return nil, MalformedDocumentError("document has no nodes")
	}
	if d.Root == "" {
		// Wire compatibility: without an explicit root the last node
		// in document order is the evaluation root.
		return &d.Nodes[len(d.Nodes)-1], nil
	}
	for i := range d.Nodes {
		if d.Nodes[i].ID == d.Root {
			return &d.Nodes[i], nil
		}
	}
	return nil, MalformedDocumentError(fmt.Sprintf("root node '%s' not found", d.Root))
}

// Compile resolves the document into a callable Field. Mesh nodes load
// eagerly through the supplied cache so evaluation itself never touches
// the filesystem.
func (d *Document) Compile(meshes *mesh.Cache) (Field, error) {
	if _, err := d.Bounds(); err != nil {
		return nil, err
	}
	if d.IsGraph() {
		c := &graphCompiler{doc: d, meshes: meshes, building: map[string]bool{}, built: map[string]Field{}}
		root, err := d.rootNode()
		if err != nil {
			return nil, err
		}
		return c.compile(root.ID)
	}
	if d.SDF == nil {
		return nil, MalformedDocumentError("document has neither nodes nor an sdf descriptor")
	}
	d.flatMeshes = meshes
	return d.compileFlat(map[string]bool{})
}

type graphCompiler struct {
	doc      *Document
	meshes   *mesh.Cache
	building map[string]bool
	built    map[string]Field
}

func (c *graphCompiler) node(id string) (*Node, error) {
	for i := range c.doc.Nodes {
		if c.doc.Nodes[i].ID == id {
			return &c.doc.Nodes[i], nil
		}
	}
	return nil, MalformedDocumentError(fmt.Sprintf("node '%s' referenced but not defined", id))
}

func (c *graphCompiler) compile(id string) (Field, error) {
	if f, ok := c.built[id]; ok {
		return f, nil
	}
	if c.building[id] {
		return nil, CyclicGraphError(id)
	}
	c.building[id] = true
	defer delete(c.building, id)

	node, err := c.node(id)
	if err != nil {
		return nil, err
	}

	field, err := c.compileNode(node)
	if err != nil {
		return nil, fmt.Errorf("node '%s': %w", id, err)
	}
	c.built[id] = field
	return field, nil
}

func (c *graphCompiler) inputs(node *Node, min int) ([]Field, error) {
	if len(node.Inputs) < min {
		return nil, MalformedDocumentError(
			fmt.Sprintf("node '%s' (%s) needs %d inputs, has %d", node.ID, node.Type, min, len(node.Inputs)))
	}
	fields := make([]Field, len(node.Inputs))
	for i, in := range node.Inputs {
		f, err := c.compile(in)
		if err != nil {
			return nil, err
		}
		fields[i] = f
	}
	return fields, nil
}

type cubeParams struct {
	Size float64 `json:"size"`
}

type sphereParams struct {
	Radius float64   `json:"radius"`
	Center []float64 `json:"center,omitempty"`
}

type boxParams struct {
	Center     []float64 `json:"center"`
	Halfwidths []float64 `json:"halfwidths"`
}

type cylinderParams struct {
	Radius float64 `json:"radius"`
	Height float64 `json:"height"`
}

type torusParams struct {
	Center     []float64 `json:"center,omitempty"`
	RingRadius float64   `json:"ring_radius"`
	TubeRadius float64   `json:"tube_radius"`
}

type transformParams struct {
	Translate []float64 `json:"translate,omitempty"`
	Scale     float64   `json:"scale,omitempty"`
}

type latticeParams struct {
	Pattern   string          `json:"pattern,omitempty"`
	CellSize  json.RawMessage `json:"cell_size"`
	Thickness float64         `json:"thickness"`
}

type meshParams struct {
	Filename string `json:"filename"`
}

func vec3Of(v []float64) Vec3 {
	if len(v) < 3 {
		return Vec3{}
	}
	return Vec3{X: v[0], Y: v[1], Z: v[2]}
}

func decodeParams(node *Node, into interface{}) error {
	if len(node.Params) == 0 {
		return MalformedDocumentError(fmt.Sprintf("node '%s' (%s) has no params", node.ID, node.Type))
	}
	if err := json.Unmarshal(node.Params, into); err != nil {
		return MalformedDocumentError(fmt.Sprintf("node '%s': %v", node.ID, err))
	}
	return nil
}

// cellVec accepts the scalar and 3-vector spellings of cell_size.
func cellVec(raw json.RawMessage) (Vec3, error) {
	var scalar float64
	if err := json.Unmarshal(raw, &scalar); err == nil {
		return Vec3{scalar, scalar, scalar}, nil
	}
	var triple []float64
	if err := json.Unmarshal(raw, &triple); err == nil && len(triple) == 3 {
		return Vec3{triple[0], triple[1], triple[2]}, nil
	}
	return Vec3{}, MalformedDocumentError("cell_size must be a number or a 3-element array")
}

func (c *graphCompiler) compileNode(node *Node) (Field, error) {
	switch node.Type {
	case NodeCube:
		var p cubeParams
		if err := decodeParams(node, &p); err != nil {
			return nil, err
		}
		return NewCube(p.Size)

	case NodeSphere:
		var p sphereParams
		if err := decodeParams(node, &p); err != nil {
			return nil, err
		}
		return NewSphere(vec3Of(p.Center), p.Radius)

	case NodeBox:
		var p boxParams
		if err := decodeParams(node, &p); err != nil {
			return nil, err
		}
		return NewBox(vec3Of(p.Center), vec3Of(p.Halfwidths))

	case NodeCylinder:
		var p cylinderParams
		if err := decodeParams(node, &p); err != nil {
			return nil, err
		}
		return NewCappedCylinder(p.Radius, p.Height)

	case NodeTorus:
		var p torusParams
		if err := decodeParams(node, &p); err != nil {
			return nil, err
		}
		return NewTorus(vec3Of(p.Center), p.RingRadius, p.TubeRadius)

	case NodeTransform:
		var p transformParams
		if err := decodeParams(node, &p); err != nil {
			return nil, err
		}
		in, err := c.inputs(node, 1)
		if err != nil {
			return nil, err
		}
		scale := p.Scale
		if scale == 0 {
			scale = 1
		}
		return NewTranslate(in[0], vec3Of(p.Translate), scale)

	case NodeUnion:
		in, err := c.inputs(node, 2)
		if err != nil {
			return nil, err
		}
		return NewUnion(in...)

	case NodeIntersect:
		in, err := c.inputs(node, 2)
		if err != nil {
			return nil, err
		}
		return NewIntersect(in...)

	case NodeSubtract:
		in, err := c.inputs(node, 2)
		if err != nil {
			return nil, err
		}
		return NewSubtract(in[0], in[1]), nil

	case NodeLattice:
		var p latticeParams
		if err := decodeParams(node, &p); err != nil {
			return nil, err
		}
		cell, err := cellVec(p.CellSize)
		if err != nil {
			return nil, err
		}
		pattern := LatticePattern(p.Pattern)
		if pattern == "" {
			pattern = PatternGyroid
		}
		return NewShell(pattern, cell, p.Thickness)

	case NodeMesh:
		var p meshParams
		if err := decodeParams(node, &p); err != nil {
			return nil, err
		}
		if p.Filename == "" {
			return nil, MalformedDocumentError(fmt.Sprintf("node '%s': mesh filename missing", node.ID))
		}
		return c.doc.meshField(c.meshes, p.Filename)
	}
	return nil, UnsupportedNodeTypeError(string(node.Type))
}

// meshField wraps a loaded mesh Source as a Field.
type meshField struct {
	src mesh.Source
}

func (m *meshField) Evaluate(p Vec3) float64 {
	return m.src.SignedDistance(mesh.Point{X: p.X, Y: p.Y, Z: p.Z})
}

func (d *Document) meshField(meshes *mesh.Cache, path string) (Field, error) {
	if meshes == nil {
		return nil, MalformedDocumentError("document references a mesh but no mesh cache was supplied")
	}
	resolved := d.resolvePath(path)
	src, err := meshes.Source(resolved)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, MissingAssetError(resolved)
		}
		return nil, err
	}
	return &meshField{src: src}, nil
}

// compileFlat dispatches on the flat descriptor's kind. Boolean kinds load
// their operands from referenced document files; visiting guards against
// a file that (transitively) references itself.
func (d *Document) compileFlat(visiting map[string]bool) (Field, error) {
	s := d.SDF
	bounds, err := d.Bounds()
	if err != nil {
		return nil, err
	}

	switch s.Kind {
	case "sphere":
		return NewSphere(vec3Of(s.Center), s.Radius)
	case "box":
		return NewBox(vec3Of(s.Center), vec3Of(s.Halfwidths))
	case "cylinder":
		return NewCylinder(vec3Of(s.AxisPoint), vec3Of(s.AxisDir), s.Radius)
	case "torus":
		return NewTorus(vec3Of(s.Center), s.RingRadius, s.TubeRadius)
	case "gyroid":
		return NewGyroid(s.CellSize, s.Thickness)
	case "schwarz_p":
		return NewSchwarzP(s.CellSize, s.Thickness)
	case "diamond":
		return NewDiamond(s.CellSize, s.Thickness)
	case "voronoi_foam":
		if s.SeedCount < 2 {
			return nil, invalidParameter("seed_count", "foam needs at least 2 seed points")
		}
		seeds := GenerateFoamSeeds(bounds, s.SeedCount, s.Seed)
		return NewVoronoiFoam(seeds, s.Thickness)
	case "mesh":
		if s.Path == "" {
			return nil, MalformedDocumentError("mesh descriptor has no path")
		}
		return d.meshField(d.flatMeshes, s.Path)
	case "union", "intersect", "subtract":
		return d.compileFlatBoolean(visiting)
	}
	return nil, UnsupportedNodeTypeError(s.Kind)
}

func (d *Document) compileFlatBoolean(visiting map[string]bool) (Field, error) {
	s := d.SDF
	if len(s.Inputs) < 2 {
		return nil, MalformedDocumentError(fmt.Sprintf("'%s' needs at least 2 inputs, has %d", s.Kind, len(s.Inputs)))
	}
	if s.Kind == "subtract" && len(s.Inputs) != 2 {
		return nil, MalformedDocumentError("'subtract' needs exactly 2 inputs")
	}

	operands := make([]Field, len(s.Inputs))
	for i, ref := range s.Inputs {
		path := d.resolvePath(ref)
		abs, err := filepath.Abs(path)
		if err != nil {
			abs = path
		}
		if visiting[abs] {
			return nil, CyclicGraphError(path)
		}
		visiting[abs] = true

		child, err := LoadDocument(path)
		if err != nil {
			return nil, err
		}
		child.flatMeshes = d.flatMeshes
		if child.IsGraph() {
			operands[i], err = child.Compile(d.flatMeshes)
		} else {
			operands[i], err = child.compileFlat(visiting)
		}
		if err != nil {
			return nil, fmt.Errorf("input '%s': %w", ref, err)
		}
		delete(visiting, abs)
	}

	switch s.Kind {
	case "union":
		return NewUnion(operands...)
	case "intersect":
		return NewIntersect(operands...)
	default:
		return NewSubtract(operands[0], operands[1]), nil
	}
}
