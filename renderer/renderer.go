// Package renderer draws a scene.Scene through the OpenGL backend, either in
// a single plain pass or as the two-target bloom pipeline.
package renderer

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/mathiasusvendsendmjx/chat-gpt-fuck-rundt/bloom"
	"github.com/mathiasusvendsendmjx/chat-gpt-fuck-rundt/core"
	"github.com/mathiasusvendsendmjx/chat-gpt-fuck-rundt/internal/logger"
	"github.com/mathiasusvendsendmjx/chat-gpt-fuck-rundt/internal/opengl"
	"github.com/mathiasusvendsendmjx/chat-gpt-fuck-rundt/scene"
)

// RenderEngine is the high-level renderer that drives the OpenGL backend.
type RenderEngine struct {
	gl    *opengl.Renderer
	log   *zap.Logger
	Scene *scene.Scene

	FrustumCulling bool

	width, height int

	// Per-frame stats (populated by each scene pass)
	lastObjects   int
	lastTriangles int
	lastCulled    int
}

// NewRenderEngine initializes GL on the current context. width and height
// are the framebuffer size in pixels.
func NewRenderEngine(s *scene.Scene, width, height int, log *zap.Logger) (*RenderEngine, error) {
	log = logger.OrNop(log).Named("renderer")
	glRenderer, err := opengl.NewRenderer()
	if err != nil {
		return nil, fmt.Errorf("failed to create OpenGL renderer: %w", err)
	}
	glRenderer.SetViewport(width, height)
	log.Info("render engine initialized", zap.String("gl", glRenderer.Version()))

	return &RenderEngine{
		gl:             glRenderer,
		log:            log,
		Scene:          s,
		FrustumCulling: true,
		width:          width,
		height:         height,
	}, nil
}

// UploadTextures sends decoded textures to the GPU. Failures are logged and
// the texture is drawn untextured.
func (re *RenderEngine) UploadTextures(texs []*scene.Texture) {
	for _, t := range texs {
		if err := opengl.UploadTexture(t); err != nil {
			re.log.Warn("texture upload failed", zap.Error(err))
		}
	}
}

// Draw renders the scene straight to the default framebuffer. It is the
// fallback when the bloom pipeline is unavailable.
func (re *RenderEngine) Draw() {
	re.gl.SetViewport(re.width, re.height)
	opengl.BindDefaultFramebuffer()
	re.drawScene(re.skyColor())
}

func (re *RenderEngine) skyColor() core.Color {
	if re.Scene == nil {
		return core.ColorBlack
	}
	return re.Scene.SkyColor
}

// drawScene draws every visible mesh node with the material it carries now.
func (re *RenderEngine) drawScene(clear core.Color) {
	s := re.Scene
	if s == nil || s.Camera == nil {
		return
	}
	cam := s.Camera
	re.gl.BeginFrame(clear, s.Sun, s.Ambient, cam.Position)

	vp := cam.GetViewProjectionMatrix()
	frustum := scene.FrustumFromVP(vp)

	objects, triangles, culled := 0, 0, 0
	for _, node := range s.GetVisibleNodes() {
		model := node.GetWorldMatrix()
		if re.FrustumCulling {
			aabb := scene.ComputeAABB(node.Mesh, model)
			if !aabb.IntersectsFrustum(&frustum) {
				culled++
				continue
			}
		}
		re.gl.DrawMesh(node.Mesh, node.GetMaterial(), vp.Mul4(model), model)
		objects++
		triangles += node.Mesh.TriangleCount()
	}

	re.lastObjects = objects
	re.lastTriangles = triangles
	re.lastCulled = culled
}

// Resize updates the viewport and the camera aspect ratio.
func (re *RenderEngine) Resize(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	re.width, re.height = width, height
	re.gl.SetViewport(width, height)
	if re.Scene != nil && re.Scene.Camera != nil {
		re.Scene.Camera.UpdateAspectRatio(float32(width), float32(height))
	}
}

// DrawStats returns stats from the most recent scene pass.
func (re *RenderEngine) DrawStats() (objects, triangles, culled int) {
	return re.lastObjects, re.lastTriangles, re.lastCulled
}

func (re *RenderEngine) Destroy() {
	re.gl.Destroy()
}

// ── Bloom pipeline ────────────────────────────────────────────────────────────

type bloomPipeline struct {
	re      *RenderEngine
	targets *opengl.BloomTargets
}

// BloomFactory returns a factory for bloom.New that builds the two-target
// pipeline at the engine's current size.
func (re *RenderEngine) BloomFactory() bloom.PipelineFactory {
	return func() (bloom.Pipeline, error) {
		return NewBloomPipeline(re)
	}
}

// NewBloomPipeline allocates the HDR targets and blur programs.
func NewBloomPipeline(re *RenderEngine) (bloom.Pipeline, error) {
	if re == nil {
		return nil, errors.New("nil render engine")
	}
	t, err := opengl.NewBloomTargets(re.width, re.height)
	if err != nil {
		return nil, fmt.Errorf("bloom targets: %w", err)
	}
	return &bloomPipeline{re: re, targets: t}, nil
}

func (p *bloomPipeline) RenderBloom() {
	p.targets.BindGlow()
	p.re.drawScene(core.ColorBlack)
	p.targets.BlurGlow()
}

func (p *bloomPipeline) RenderComposite() {
	p.targets.BindBase()
	p.re.drawScene(p.re.skyColor())
	p.targets.Composite()
}

func (p *bloomPipeline) Resize(width, height int) {
	if err := p.targets.Resize(width, height); err != nil {
		p.re.log.Error("bloom resize failed", zap.Error(err))
	}
}

func (p *bloomPipeline) SetParams(params bloom.Params) {
	p.targets.Threshold = params.Threshold
	p.targets.Strength = params.Strength
	p.targets.Radius = params.Radius
	p.targets.Exposure = params.Exposure
}

func (p *bloomPipeline) Close() {
	p.targets.Destroy()
}
