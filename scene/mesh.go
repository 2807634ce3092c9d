package scene

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/mathiasusvendsendmjx/chat-gpt-fuck-rundt/core"
)

// Mesh holds CPU-side vertex/index data.
// GPU upload is managed by the renderer backend.
type Mesh struct {
	Name     string
	Vertices []core.Vertex
	Indices  []uint32

	// Cached local-space bounds (computed by CreateMeshFromData).
	LocalAABB    AABB
	LocalSphere  Sphere
	HasLocalAABB bool

	// Material is the loader-assigned material. Nodes may override it.
	Material *Material

	// GPUData is set by the renderer backend.
	GPUData interface{}
}

// CreateMeshFromData builds a Mesh and pre-computes its local-space bounds.
func CreateMeshFromData(name string, vertices []core.Vertex, indices []uint32) *Mesh {
	m := &Mesh{
		Name:     name,
		Vertices: vertices,
		Indices:  indices,
	}
	if len(vertices) > 0 {
		m.LocalAABB = computeLocalAABB(vertices)
		m.LocalSphere = computeLocalSphere(vertices, m.LocalAABB.Center())
		m.HasLocalAABB = true
	}
	return m
}

// TriangleCount returns the number of indexed (or implicit) triangles.
func (m *Mesh) TriangleCount() int {
	if len(m.Indices) > 0 {
		return len(m.Indices) / 3
	}
	return len(m.Vertices) / 3
}

// Triangle returns the local-space corners of triangle i.
func (m *Mesh) Triangle(i int) (a, b, c mgl32.Vec3) {
	if len(m.Indices) > 0 {
		return m.Vertices[m.Indices[i*3]].Position,
			m.Vertices[m.Indices[i*3+1]].Position,
			m.Vertices[m.Indices[i*3+2]].Position
	}
	return m.Vertices[i*3].Position, m.Vertices[i*3+1].Position, m.Vertices[i*3+2].Position
}

func computeLocalAABB(vertices []core.Vertex) AABB {
	out := AABB{Min: vertices[0].Position, Max: vertices[0].Position}
	for _, v := range vertices[1:] {
		out = out.Extend(v.Position)
	}
	return out
}

// computeLocalSphere centers the sphere on the box and takes the farthest vertex.
func computeLocalSphere(vertices []core.Vertex, center mgl32.Vec3) Sphere {
	var r2 float32
	for _, v := range vertices {
		d := v.Position.Sub(center)
		if l := d.Dot(d); l > r2 {
			r2 = l
		}
	}
	return Sphere{Center: center, Radius: sqrt32(r2)}
}

// CreateCube builds a unit-normal cube centered on the origin.
func CreateCube(size float32) *Mesh {
	s := size / 2
	faces := []struct {
		normal  mgl32.Vec3
		corners [4]mgl32.Vec3
	}{
		{mgl32.Vec3{0, 0, 1}, [4]mgl32.Vec3{{-s, -s, s}, {s, -s, s}, {s, s, s}, {-s, s, s}}},
		{mgl32.Vec3{0, 0, -1}, [4]mgl32.Vec3{{s, -s, -s}, {-s, -s, -s}, {-s, s, -s}, {s, s, -s}}},
		{mgl32.Vec3{0, 1, 0}, [4]mgl32.Vec3{{-s, s, s}, {s, s, s}, {s, s, -s}, {-s, s, -s}}},
		{mgl32.Vec3{0, -1, 0}, [4]mgl32.Vec3{{-s, -s, -s}, {s, -s, -s}, {s, -s, s}, {-s, -s, s}}},
		{mgl32.Vec3{1, 0, 0}, [4]mgl32.Vec3{{s, -s, s}, {s, -s, -s}, {s, s, -s}, {s, s, s}}},
		{mgl32.Vec3{-1, 0, 0}, [4]mgl32.Vec3{{-s, -s, -s}, {-s, -s, s}, {-s, s, s}, {-s, s, -s}}},
	}
	uvs := [4]mgl32.Vec2{{0, 0}, {1, 0}, {1, 1}, {0, 1}}

	vertices := make([]core.Vertex, 0, 24)
	indices := make([]uint32, 0, 36)
	for _, f := range faces {
		base := uint32(len(vertices))
		for i, p := range f.corners {
			vertices = append(vertices, core.Vertex{Position: p, Normal: f.normal, UV: uvs[i], Color: core.ColorWhite})
		}
		indices = append(indices, base, base+1, base+2, base+2, base+3, base)
	}
	return CreateMeshFromData("Cube", vertices, indices)
}

// CreatePlane builds a horizontal quad of the given size at y = 0, facing up.
func CreatePlane(size float32) *Mesh {
	s := size / 2
	up := mgl32.Vec3{0, 1, 0}
	vertices := []core.Vertex{
		{Position: mgl32.Vec3{-s, 0, s}, Normal: up, UV: mgl32.Vec2{0, 0}, Color: core.ColorWhite},
		{Position: mgl32.Vec3{s, 0, s}, Normal: up, UV: mgl32.Vec2{1, 0}, Color: core.ColorWhite},
		{Position: mgl32.Vec3{s, 0, -s}, Normal: up, UV: mgl32.Vec2{1, 1}, Color: core.ColorWhite},
		{Position: mgl32.Vec3{-s, 0, -s}, Normal: up, UV: mgl32.Vec2{0, 1}, Color: core.ColorWhite},
	}
	return CreateMeshFromData("Plane", vertices, []uint32{0, 1, 2, 2, 3, 0})
}
