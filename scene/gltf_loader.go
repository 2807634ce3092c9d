package scene

import (
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
	"go.uber.org/zap"

	"github.com/mathiasusvendsendmjx/chat-gpt-fuck-rundt/core"
)

const (
	extUnlit            = "KHR_materials_unlit"
	extEmissiveStrength = "KHR_materials_emissive_strength"
)

// GLTFResult holds the nodes and textures loaded from a .glb / .gltf file.
// Upload every texture in Textures before the first draw.
type GLTFResult struct {
	Roots    []*Node
	Textures []*Texture
}

// Root wraps all top-level nodes under one named node.
func (r *GLTFResult) Root(name string) *Node {
	root := NewNode(name)
	for _, n := range r.Roots {
		root.AddChild(n)
	}
	return root
}

// LoadGLTF opens a .glb or .gltf file and returns a scene graph.
// Mesh geometry, materials, base-colour textures and the node hierarchy are
// populated. Materials flagged KHR_materials_unlit load as Unlit; everything
// else loads as Lit with the file's emissive factor.
func LoadGLTF(path string, log *zap.Logger) (*GLTFResult, error) {
	if log == nil {
		log = zap.NewNop()
	}
	log = log.With(zap.String("file", filepath.Base(path)))

	doc, err := gltf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("gltf open %q: %w", path, err)
	}
	dir := filepath.Dir(path)
	result := &GLTFResult{}

	// ── 1. Textures ───────────────────────────────────────────────────────────
	texCache := make([]*Texture, len(doc.Textures))
	for i, gt := range doc.Textures {
		if gt.Source == nil {
			continue
		}
		img := doc.Images[*gt.Source]

		var tex *Texture
		if img.BufferView != nil {
			raw, err := modeler.ReadBufferView(doc, doc.BufferViews[*img.BufferView])
			if err != nil {
				log.Warn("image bufferview", zap.Int("image", *gt.Source), zap.Error(err))
				continue
			}
			name := img.Name
			if name == "" {
				name = fmt.Sprintf("gltf_img_%d", *gt.Source)
			}
			tex, err = decodeImageBytes(name, raw)
			if err != nil {
				log.Warn("image decode", zap.Int("image", *gt.Source), zap.Error(err))
				continue
			}
		} else if img.URI != "" && !img.IsEmbeddedResource() {
			tex, err = LoadTexture(filepath.Join(dir, img.URI))
			if err != nil {
				log.Warn("image file", zap.Int("image", *gt.Source), zap.String("uri", img.URI), zap.Error(err))
				continue
			}
		}

		if tex != nil {
			texCache[i] = tex
			result.Textures = append(result.Textures, tex)
		}
	}

	// ── 2. Materials ─────────────────────────────────────────────────────────
	matCache := make([]*Material, len(doc.Materials))
	for i, gm := range doc.Materials {
		matCache[i] = convertMaterial(gm, texCache)
	}

	// ── 3. Mesh primitives ────────────────────────────────────────────────────
	meshPrims := make([][]*Mesh, len(doc.Meshes))
	for mi, gm := range doc.Meshes {
		for pi, prim := range gm.Primitives {
			m, err := loadGLTFPrimitive(doc, gm.Name, pi, *prim)
			if err != nil {
				log.Warn("skipping primitive", zap.Int("mesh", mi), zap.Int("prim", pi), zap.Error(err))
				continue
			}
			if prim.Material != nil && *prim.Material < len(matCache) {
				m.Material = matCache[*prim.Material]
			} else {
				m.Material = DefaultMaterial()
			}
			meshPrims[mi] = append(meshPrims[mi], m)
		}
	}

	// ── 4. Nodes ──────────────────────────────────────────────────────────────
	nodes := make([]*Node, len(doc.Nodes))
	for i, gn := range doc.Nodes {
		name := gn.Name
		if name == "" {
			name = fmt.Sprintf("node_%d", i)
		}
		n := NewNode(name)

		t := gn.TranslationOrDefault()
		n.SetPosition(mgl32.Vec3{float32(t[0]), float32(t[1]), float32(t[2])})

		sc := gn.ScaleOrDefault()
		n.SetScale(mgl32.Vec3{float32(sc[0]), float32(sc[1]), float32(sc[2])})

		r := gn.RotationOrDefault() // [x, y, z, w]
		n.SetRotation(mgl32.Quat{W: float32(r[3]), V: mgl32.Vec3{float32(r[0]), float32(r[1]), float32(r[2])}})

		if gn.Mesh != nil && *gn.Mesh < len(meshPrims) {
			prims := meshPrims[*gn.Mesh]
			switch len(prims) {
			case 0:
			case 1:
				n.Mesh = prims[0]
				n.Material = prims[0].Material
			default:
				// One child node per primitive, each with its own material.
				for pi, p := range prims {
					child := NewNode(fmt.Sprintf("%s_prim%d", name, pi))
					child.Mesh = p
					child.Material = p.Material
					n.AddChild(child)
				}
			}
		}
		nodes[i] = n
	}

	for i, gn := range doc.Nodes {
		for _, childIdx := range gn.Children {
			if childIdx < len(nodes) && nodes[childIdx] != nil {
				nodes[i].AddChild(nodes[childIdx])
			}
		}
	}

	// ── 5. Root nodes ─────────────────────────────────────────────────────────
	if doc.Scene != nil && *doc.Scene < len(doc.Scenes) {
		for _, rootIdx := range doc.Scenes[*doc.Scene].Nodes {
			if rootIdx < len(nodes) && nodes[rootIdx] != nil {
				result.Roots = append(result.Roots, nodes[rootIdx])
			}
		}
	} else {
		for _, n := range nodes {
			if n != nil && n.Parent == nil {
				result.Roots = append(result.Roots, n)
			}
		}
	}

	log.Debug("gltf loaded",
		zap.Int("nodes", len(nodes)),
		zap.Int("materials", len(matCache)),
		zap.Int("textures", len(result.Textures)))
	return result, nil
}

func convertMaterial(gm *gltf.Material, texCache []*Texture) *Material {
	mat := DefaultMaterial()
	mat.Name = gm.Name

	if pbr := gm.PBRMetallicRoughness; pbr != nil {
		cf := pbr.BaseColorFactorOrDefault()
		mat.Albedo = core.Color{
			R: float32(cf[0]), G: float32(cf[1]),
			B: float32(cf[2]), A: float32(cf[3]),
		}
		if pbr.BaseColorTexture != nil {
			idx := pbr.BaseColorTexture.Index
			if idx < len(texCache) && texCache[idx] != nil {
				mat.AlbedoTexture = texCache[idx]
			}
		}
		// roughness → shininess, metallic → specular intensity
		roughness := float32(pbr.RoughnessFactorOrDefault())
		metallic := float32(pbr.MetallicFactorOrDefault())
		mat.Shininess = (1.0-roughness)*(1.0-roughness)*128.0 + 1.0
		s := metallic * 0.7
		mat.Specular = core.Color{R: s, G: s, B: s, A: 1}
	}

	if _, ok := gm.Extensions[extUnlit]; ok {
		mat.Kind = Unlit
		return mat
	}

	ef := gm.EmissiveFactor
	mat.Emissive = core.Color{R: float32(ef[0]), G: float32(ef[1]), B: float32(ef[2]), A: 1}
	mat.EmissiveIntensity = 1
	if raw, ok := gm.Extensions[extEmissiveStrength].(json.RawMessage); ok {
		var ext struct {
			EmissiveStrength *float64 `json:"emissiveStrength"`
		}
		if json.Unmarshal(raw, &ext) == nil && ext.EmissiveStrength != nil {
			mat.EmissiveIntensity = float32(*ext.EmissiveStrength)
		}
	}
	return mat
}

// loadGLTFPrimitive converts one glTF mesh primitive into a Mesh.
func loadGLTFPrimitive(doc *gltf.Document, meshName string, primIdx int, prim gltf.Primitive) (*Mesh, error) {
	name := fmt.Sprintf("%s_p%d", meshName, primIdx)
	if meshName == "" {
		name = fmt.Sprintf("prim_%d", primIdx)
	}

	posIdx, ok := prim.Attributes["POSITION"]
	if !ok {
		return nil, fmt.Errorf("no POSITION attribute")
	}
	positions, err := modeler.ReadPosition(doc, doc.Accessors[posIdx], nil)
	if err != nil {
		return nil, fmt.Errorf("positions: %w", err)
	}

	var normals [][3]float32
	var uvs [][2]float32

	if idx, ok := prim.Attributes["NORMAL"]; ok {
		normals, _ = modeler.ReadNormal(doc, doc.Accessors[idx], nil)
	}
	if idx, ok := prim.Attributes["TEXCOORD_0"]; ok {
		uvs, _ = modeler.ReadTextureCoord(doc, doc.Accessors[idx], nil)
	}

	verts := make([]core.Vertex, len(positions))
	for i, p := range positions {
		v := core.Vertex{
			Position: mgl32.Vec3{p[0], p[1], p[2]},
			Normal:   mgl32.Vec3{0, 1, 0},
			Color:    core.ColorWhite,
		}
		if i < len(normals) {
			v.Normal = mgl32.Vec3(normals[i])
		}
		if i < len(uvs) {
			v.UV = mgl32.Vec2(uvs[i])
		}
		verts[i] = v
	}

	var indices []uint32
	if prim.Indices != nil {
		indices, err = modeler.ReadIndices(doc, doc.Accessors[*prim.Indices], nil)
		if err != nil {
			return nil, fmt.Errorf("indices: %w", err)
		}
	}

	return CreateMeshFromData(name, verts, indices), nil
}
