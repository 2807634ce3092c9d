// Package pick casts rays from the camera into the scene graph.
package pick

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/mathiasusvendsendmjx/chat-gpt-fuck-rundt/scene"
)

// Ray represents a ray in 3D space. Direction is unit length.
type Ray struct {
	Origin    mgl32.Vec3
	Direction mgl32.Vec3
}

func (r Ray) At(t float32) mgl32.Vec3 {
	return r.Origin.Add(r.Direction.Mul(t))
}

// Limits bound the accepted hit distance along a ray.
type Limits struct {
	Near, Far float32
}

// DefaultLimits match the interaction range of the walk.
var DefaultLimits = Limits{Near: 0.1, Far: 100}

func (l Limits) accepts(t float32) bool {
	return t >= l.Near && t <= l.Far
}

// Hit stores the result of a ray intersection test.
type Hit struct {
	Node     *scene.Node
	Distance float32
	Point    mgl32.Vec3
	Normal   mgl32.Vec3
	FaceIdx  int
}

// ScreenToRay converts a screen-space position (pixels, origin top-left) to a
// world-space ray leaving the camera.
func ScreenToRay(x, y, width, height float32, camera *scene.Camera) Ray {
	ndcX := (2.0*x)/width - 1.0
	ndcY := 1.0 - (2.0*y)/height
	return NDCToRay(ndcX, ndcY, camera)
}

// NDCToRay converts normalized device coordinates to a world-space ray.
func NDCToRay(ndcX, ndcY float32, camera *scene.Camera) Ray {
	invVP := camera.GetViewProjectionMatrix().Inv()
	near := invVP.Mul4x1(mgl32.Vec4{ndcX, ndcY, -1, 1})
	far := invVP.Mul4x1(mgl32.Vec4{ndcX, ndcY, 1, 1})
	p0 := near.Vec3().Mul(1 / near.W())
	p1 := far.Vec3().Mul(1 / far.W())
	return Ray{Origin: camera.Position, Direction: p1.Sub(p0).Normalize()}
}

// AimRay returns the interaction ray: from the screen center while the
// pointer is locked, from the cursor otherwise.
func AimRay(camera *scene.Camera, locked bool, cursorX, cursorY, width, height float32) Ray {
	if locked || width <= 0 || height <= 0 {
		return NDCToRay(0, 0, camera)
	}
	return ScreenToRay(cursorX, cursorY, width, height, camera)
}

// Spheres tests the ray against the world bounding sphere of every node,
// each radius multiplied by inflate, and returns the nearest hit inside lim.
// Nodes without a mesh are skipped.
func Spheres(ray Ray, nodes []*scene.Node, inflate float32, lim Limits) (Hit, bool) {
	best := Hit{Distance: math.MaxFloat32}
	found := false
	for _, n := range nodes {
		if n == nil || n.Mesh == nil || !n.Mesh.HasLocalAABB {
			continue
		}
		s := scene.WorldSphere(n.Mesh, n.GetWorldMatrix())
		s.Radius *= inflate
		t, ok := RaySphere(ray, s, lim)
		if ok && t < best.Distance {
			best = Hit{Node: n, Distance: t, Point: ray.At(t)}
			found = true
		}
	}
	return best, found
}

// RaySphere returns the first intersection distance inside lim. A ray that
// starts inside the sphere reports the exit point.
func RaySphere(ray Ray, s scene.Sphere, lim Limits) (float32, bool) {
	oc := ray.Origin.Sub(s.Center)
	b := oc.Dot(ray.Direction)
	c := oc.Dot(oc) - s.Radius*s.Radius
	disc := b*b - c
	if disc < 0 {
		return 0, false
	}
	sq := float32(math.Sqrt(float64(disc)))
	if t := -b - sq; lim.accepts(t) {
		return t, true
	}
	if t := -b + sq; lim.accepts(t) {
		return t, true
	}
	return 0, false
}

// Meshes tests a ray against the triangles of the given nodes and returns the
// closest hit inside lim. World AABBs are used as a broad phase.
func Meshes(ray Ray, nodes []*scene.Node, lim Limits) (Hit, bool) {
	closest := Hit{Distance: math.MaxFloat32}
	found := false
	for _, node := range nodes {
		if node.Mesh == nil || !node.Mesh.HasLocalAABB {
			continue
		}
		box := scene.ComputeAABB(node.Mesh, node.GetWorldMatrix())
		t, hit := RayAABB(ray, box)
		if !hit || t > closest.Distance || t > lim.Far {
			continue
		}
		if h, ok := rayMeshIntersect(ray, node, lim); ok && h.Distance < closest.Distance {
			closest = h
			found = true
		}
	}
	return closest, found
}

// RayAABB tests ray-AABB intersection (slab method). The returned distance is
// the entry point, or 0 when the origin is inside the box.
func RayAABB(ray Ray, box scene.AABB) (float32, bool) {
	tmin := float32(math.Inf(-1))
	tmax := float32(math.Inf(1))
	for a := 0; a < 3; a++ {
		inv := 1.0 / ray.Direction[a]
		t1 := (box.Min[a] - ray.Origin[a]) * inv
		t2 := (box.Max[a] - ray.Origin[a]) * inv
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		tmin = max(tmin, t1)
		tmax = min(tmax, t2)
	}
	if tmax < 0 || tmin > tmax {
		return 0, false
	}
	return max(tmin, 0), true
}

// rayMeshIntersect performs per-triangle intersection using Möller–Trumbore.
func rayMeshIntersect(ray Ray, node *scene.Node, lim Limits) (Hit, bool) {
	mesh := node.Mesh
	world := node.GetWorldMatrix()
	closest := Hit{Distance: math.MaxFloat32}
	found := false

	for i := 0; i < mesh.TriangleCount(); i++ {
		a, b, c := mesh.Triangle(i)
		v0 := mgl32.TransformCoordinate(a, world)
		v1 := mgl32.TransformCoordinate(b, world)
		v2 := mgl32.TransformCoordinate(c, world)

		t, hit := MollerTrumbore(ray, v0, v1, v2)
		if hit && lim.accepts(t) && t < closest.Distance {
			closest = Hit{
				Node:     node,
				Distance: t,
				Point:    ray.At(t),
				Normal:   v1.Sub(v0).Cross(v2.Sub(v0)).Normalize(),
				FaceIdx:  i,
			}
			found = true
		}
	}
	return closest, found
}

// MollerTrumbore implements the Möller–Trumbore ray-triangle intersection.
// Both triangle windings are accepted.
func MollerTrumbore(ray Ray, v0, v1, v2 mgl32.Vec3) (float32, bool) {
	const epsilon = 0.0000001

	edge1 := v1.Sub(v0)
	edge2 := v2.Sub(v0)
	h := ray.Direction.Cross(edge2)
	a := edge1.Dot(h)

	if a > -epsilon && a < epsilon {
		return 0, false // parallel
	}

	f := 1.0 / a
	s := ray.Origin.Sub(v0)
	u := f * s.Dot(h)
	if u < 0.0 || u > 1.0 {
		return 0, false
	}

	q := s.Cross(edge1)
	v := f * ray.Direction.Dot(q)
	if v < 0.0 || u+v > 1.0 {
		return 0, false
	}

	t := f * edge2.Dot(q)
	return t, t > epsilon
}
