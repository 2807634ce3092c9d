package scene

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Plane represents a half-space: ax + by + cz + d = 0
// Normal (a, b, c) points into the "inside" of the frustum.
type Plane struct {
	Normal mgl32.Vec3
	D      float32
}

// DistanceTo returns the signed distance from a point to the plane.
// Positive means on the "inside" (same side as Normal).
func (p Plane) DistanceTo(pt mgl32.Vec3) float32 {
	return p.Normal.Dot(pt) + p.D
}

// Frustum holds the six clip planes of a view frustum.
type Frustum struct {
	Planes [6]Plane // Left, Right, Bottom, Top, Near, Far
}

// FrustumFromVP extracts the six frustum planes from a view-projection matrix
// (Gribb/Hartmann). mgl32 matrices are column-major like GLSL, so the rows
// used by the extraction are vp.Row(i).
func FrustumFromVP(vp mgl32.Mat4) Frustum {
	r0, r1, r2, r3 := vp.Row(0), vp.Row(1), vp.Row(2), vp.Row(3)

	var f Frustum
	f.Planes[0] = normalizePlane(r3.Add(r0))
	f.Planes[1] = normalizePlane(r3.Sub(r0))
	f.Planes[2] = normalizePlane(r3.Add(r1))
	f.Planes[3] = normalizePlane(r3.Sub(r1))
	f.Planes[4] = normalizePlane(r3.Add(r2))
	f.Planes[5] = normalizePlane(r3.Sub(r2))
	return f
}

func normalizePlane(v mgl32.Vec4) Plane {
	n := v.Vec3()
	l := n.Len()
	if l == 0 {
		return Plane{}
	}
	return Plane{Normal: n.Mul(1 / l), D: v.W() / l}
}

// AABB is an axis-aligned bounding box.
type AABB struct {
	Min, Max mgl32.Vec3
}

func (box AABB) Center() mgl32.Vec3 {
	return box.Min.Add(box.Max).Mul(0.5)
}

func (box AABB) Size() mgl32.Vec3 {
	return box.Max.Sub(box.Min)
}

// Extend grows the box to contain p.
func (box AABB) Extend(p mgl32.Vec3) AABB {
	for i := 0; i < 3; i++ {
		if p[i] < box.Min[i] {
			box.Min[i] = p[i]
		}
		if p[i] > box.Max[i] {
			box.Max[i] = p[i]
		}
	}
	return box
}

// Union returns the smallest box containing both boxes.
func (box AABB) Union(o AABB) AABB {
	return box.Extend(o.Min).Extend(o.Max)
}

// IntersectsFrustum returns false if the AABB is completely outside the frustum.
// Uses the "p-vertex" test: for each plane, the corner most aligned with the
// plane normal must be inside.
func (box AABB) IntersectsFrustum(f *Frustum) bool {
	for i := 0; i < 6; i++ {
		p := f.Planes[i]
		var pv mgl32.Vec3
		for a := 0; a < 3; a++ {
			pv[a] = box.Max[a]
			if p.Normal[a] < 0 {
				pv[a] = box.Min[a]
			}
		}
		if p.DistanceTo(pv) < 0 {
			return false
		}
	}
	return true
}

// Sphere is a bounding sphere.
type Sphere struct {
	Center mgl32.Vec3
	Radius float32
}

// ComputeAABB computes the world-space AABB for a mesh transformed by worldMatrix.
func ComputeAABB(mesh *Mesh, worldMatrix mgl32.Mat4) AABB {
	if mesh.HasLocalAABB {
		return transformAABB(mesh.LocalAABB, worldMatrix)
	}
	return AABB{}
}

// WorldSphere transforms the mesh's local bounding sphere. The radius is
// scaled by the largest axis scale so the sphere stays conservative.
func WorldSphere(mesh *Mesh, worldMatrix mgl32.Mat4) Sphere {
	c := mgl32.TransformCoordinate(mesh.LocalSphere.Center, worldMatrix)
	sx := worldMatrix.Col(0).Vec3().Len()
	sy := worldMatrix.Col(1).Vec3().Len()
	sz := worldMatrix.Col(2).Vec3().Len()
	s := max(sx, sy, sz)
	return Sphere{Center: c, Radius: mesh.LocalSphere.Radius * s}
}

// transformAABB transforms a local AABB by a world matrix by testing all 8 corners.
func transformAABB(local AABB, m mgl32.Mat4) AABB {
	mn, mx := local.Min, local.Max
	corners := [8]mgl32.Vec3{
		{mn[0], mn[1], mn[2]},
		{mx[0], mn[1], mn[2]},
		{mn[0], mx[1], mn[2]},
		{mx[0], mx[1], mn[2]},
		{mn[0], mn[1], mx[2]},
		{mx[0], mn[1], mx[2]},
		{mn[0], mx[1], mx[2]},
		{mx[0], mx[1], mx[2]},
	}
	first := mgl32.TransformCoordinate(corners[0], m)
	out := AABB{Min: first, Max: first}
	for i := 1; i < 8; i++ {
		out = out.Extend(mgl32.TransformCoordinate(corners[i], m))
	}
	return out
}

func sqrt32(v float32) float32 {
	return float32(math.Sqrt(float64(v)))
}
