package opengl

import (
	"fmt"

	gl "github.com/go-gl/gl/v4.1-core/gl"
)

// target is an HDR color + depth render target.
type target struct {
	FBO      uint32
	ColorTex uint32
	DepthRB  uint32
}

// BloomTargets owns the two scene render targets and the blur chain:
// glow scene → bright pass → ping-pong separable Gaussian blur, and
// base scene + blurred glow → default framebuffer.
type BloomTargets struct {
	Width  int32
	Height int32

	base target
	glow target

	bloomFBO [2]uint32
	bloomTex [2]uint32
	bloomW   int32
	bloomH   int32

	quadVAO uint32 // empty VAO for the fullscreen triangle

	compositeProg uint32
	expLoc        int32
	bloomStrLoc   int32

	brightProg      uint32
	brightThreshLoc int32

	blurProg   uint32
	blurDirLoc int32

	Threshold float32 // luminance cut-off of the bright pass
	Strength  float32 // additive bloom multiplier
	Radius    float32 // widens the blur step per pass
	Exposure  float32
	Passes    int // number of H+V blur pairs
}

// ppVertSrc: fullscreen triangle via gl_VertexID (no VBO needed).
const ppVertSrc = `
#version 410 core
out vec2 fragUV;
void main() {
    const vec2 pos[3] = vec2[3](
        vec2(-1.0, -1.0),
        vec2( 3.0, -1.0),
        vec2(-1.0,  3.0)
    );
    gl_Position = vec4(pos[gl_VertexID], 0.0, 1.0);
    fragUV      = pos[gl_VertexID] * 0.5 + 0.5;
}
` + "\x00"

// ppCompositeFragSrc: base + bloom, exposure, gamma 2.2.
const ppCompositeFragSrc = `
#version 410 core
in  vec2 fragUV;
out vec4 outColor;

uniform sampler2D baseTex;  // unit 0
uniform sampler2D bloomTex; // unit 1
uniform float     exposure;
uniform float     bloomStrength;

void main() {
    vec3 hdr = texture(baseTex, fragUV).rgb
             + texture(bloomTex, fragUV).rgb * bloomStrength;
    vec3 mapped = clamp(hdr * exposure, 0.0, 1.0);
    outColor = vec4(pow(mapped, vec3(1.0 / 2.2)), 1.0);
}
` + "\x00"

// ppBrightFragSrc: keeps pixels whose luminance reaches the threshold.
const ppBrightFragSrc = `
#version 410 core
in  vec2 fragUV;
out vec4 outColor;

uniform sampler2D hdrBuffer;
uniform float     threshold;

void main() {
    vec3  color = texture(hdrBuffer, fragUV).rgb;
    float luma  = dot(color, vec3(0.2126, 0.7152, 0.0722));
    outColor = vec4(color * step(threshold, luma), 1.0);
}
` + "\x00"

// ppBlurFragSrc: single-axis 5-tap Gaussian blur.
const ppBlurFragSrc = `
#version 410 core
in  vec2 fragUV;
out vec4 outColor;

uniform sampler2D blurTex;
uniform vec2      texelDir;

void main() {
    const float w[5] = float[](0.0625, 0.25, 0.375, 0.25, 0.0625);
    vec3 result = vec3(0.0);
    for (int i = -2; i <= 2; i++) {
        result += texture(blurTex, fragUV + float(i) * texelDir).rgb * w[i + 2];
    }
    outColor = vec4(result, 1.0);
}
` + "\x00"

// NewBloomTargets compiles the post-process programs and allocates both
// scene targets at width×height.
func NewBloomTargets(width, height int) (*BloomTargets, error) {
	bt := &BloomTargets{
		Threshold: 0.5,
		Strength:  1,
		Radius:    0.2,
		Exposure:  1,
		Passes:    4,
	}

	prog, err := newProgram(ppVertSrc, ppCompositeFragSrc)
	if err != nil {
		return nil, fmt.Errorf("composite shader: %w", err)
	}
	bt.compositeProg = prog
	bt.expLoc = uniform(prog, "exposure")
	bt.bloomStrLoc = uniform(prog, "bloomStrength")
	gl.UseProgram(prog)
	gl.Uniform1i(uniform(prog, "baseTex"), 0)
	gl.Uniform1i(uniform(prog, "bloomTex"), 1)

	bp, err := newProgram(ppVertSrc, ppBrightFragSrc)
	if err != nil {
		bt.Destroy()
		return nil, fmt.Errorf("bright-pass shader: %w", err)
	}
	bt.brightProg = bp
	bt.brightThreshLoc = uniform(bp, "threshold")
	gl.UseProgram(bp)
	gl.Uniform1i(uniform(bp, "hdrBuffer"), 0)

	blp, err := newProgram(ppVertSrc, ppBlurFragSrc)
	if err != nil {
		bt.Destroy()
		return nil, fmt.Errorf("blur shader: %w", err)
	}
	bt.blurProg = blp
	bt.blurDirLoc = uniform(blp, "texelDir")
	gl.UseProgram(blp)
	gl.Uniform1i(uniform(blp, "blurTex"), 0)

	gl.GenVertexArrays(1, &bt.quadVAO)

	if err := bt.alloc(width, height); err != nil {
		bt.Destroy()
		return nil, err
	}
	return bt, nil
}

// ── Target lifecycle ──────────────────────────────────────────────────────────

func newTarget(w, h int32) (target, error) {
	var t target
	gl.GenTextures(1, &t.ColorTex)
	gl.BindTexture(gl.TEXTURE_2D, t.ColorTex)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA16F, w, h, 0, gl.RGBA, gl.HALF_FLOAT, nil)
	setLinearClamp()
	gl.BindTexture(gl.TEXTURE_2D, 0)

	gl.GenRenderbuffers(1, &t.DepthRB)
	gl.BindRenderbuffer(gl.RENDERBUFFER, t.DepthRB)
	gl.RenderbufferStorage(gl.RENDERBUFFER, gl.DEPTH_COMPONENT24, w, h)
	gl.BindRenderbuffer(gl.RENDERBUFFER, 0)

	gl.GenFramebuffers(1, &t.FBO)
	gl.BindFramebuffer(gl.FRAMEBUFFER, t.FBO)
	gl.FramebufferTexture2D(gl.FRAMEBUFFER, gl.COLOR_ATTACHMENT0, gl.TEXTURE_2D, t.ColorTex, 0)
	gl.FramebufferRenderbuffer(gl.FRAMEBUFFER, gl.DEPTH_ATTACHMENT, gl.RENDERBUFFER, t.DepthRB)
	status := gl.CheckFramebufferStatus(gl.FRAMEBUFFER)
	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
	if status != gl.FRAMEBUFFER_COMPLETE {
		t.free()
		return target{}, fmt.Errorf("HDR framebuffer incomplete (0x%X)", status)
	}
	return t, nil
}

func (t *target) free() {
	if t.FBO != 0 {
		gl.DeleteFramebuffers(1, &t.FBO)
		t.FBO = 0
	}
	if t.ColorTex != 0 {
		gl.DeleteTextures(1, &t.ColorTex)
		t.ColorTex = 0
	}
	if t.DepthRB != 0 {
		gl.DeleteRenderbuffers(1, &t.DepthRB)
		t.DepthRB = 0
	}
}

func setLinearClamp() {
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
}

func (bt *BloomTargets) alloc(width, height int) error {
	bt.Width, bt.Height = int32(width), int32(height)

	var err error
	if bt.base, err = newTarget(bt.Width, bt.Height); err != nil {
		return fmt.Errorf("base target: %w", err)
	}
	if bt.glow, err = newTarget(bt.Width, bt.Height); err != nil {
		return fmt.Errorf("bloom target: %w", err)
	}

	bt.bloomW = max(bt.Width/2, 1)
	bt.bloomH = max(bt.Height/2, 1)
	for i := 0; i < 2; i++ {
		gl.GenTextures(1, &bt.bloomTex[i])
		gl.BindTexture(gl.TEXTURE_2D, bt.bloomTex[i])
		gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA16F,
			bt.bloomW, bt.bloomH, 0, gl.RGBA, gl.HALF_FLOAT, nil)
		setLinearClamp()
		gl.BindTexture(gl.TEXTURE_2D, 0)

		gl.GenFramebuffers(1, &bt.bloomFBO[i])
		gl.BindFramebuffer(gl.FRAMEBUFFER, bt.bloomFBO[i])
		gl.FramebufferTexture2D(gl.FRAMEBUFFER, gl.COLOR_ATTACHMENT0,
			gl.TEXTURE_2D, bt.bloomTex[i], 0)
		gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
	}
	return nil
}

func (bt *BloomTargets) free() {
	bt.base.free()
	bt.glow.free()
	for i := 0; i < 2; i++ {
		if bt.bloomFBO[i] != 0 {
			gl.DeleteFramebuffers(1, &bt.bloomFBO[i])
			bt.bloomFBO[i] = 0
		}
		if bt.bloomTex[i] != 0 {
			gl.DeleteTextures(1, &bt.bloomTex[i])
			bt.bloomTex[i] = 0
		}
	}
}

// Resize recreates every target at the new pixel size.
func (bt *BloomTargets) Resize(width, height int) error {
	bt.free()
	return bt.alloc(width, height)
}

// Destroy frees all GPU resources owned by this object.
func (bt *BloomTargets) Destroy() {
	bt.free()
	for _, p := range []*uint32{&bt.compositeProg, &bt.brightProg, &bt.blurProg} {
		if *p != 0 {
			gl.DeleteProgram(*p)
			*p = 0
		}
	}
	if bt.quadVAO != 0 {
		gl.DeleteVertexArrays(1, &bt.quadVAO)
		bt.quadVAO = 0
	}
}

// ── Passes ────────────────────────────────────────────────────────────────────

// BindGlow makes the bloom scene target current.
func (bt *BloomTargets) BindGlow() {
	gl.BindFramebuffer(gl.FRAMEBUFFER, bt.glow.FBO)
	gl.Viewport(0, 0, bt.Width, bt.Height)
}

// BindBase makes the base scene target current.
func (bt *BloomTargets) BindBase() {
	gl.BindFramebuffer(gl.FRAMEBUFFER, bt.base.FBO)
	gl.Viewport(0, 0, bt.Width, bt.Height)
}

// BlurGlow runs the bright pass and the blur chain over the glow target.
// The result ends up in bloomTex[0].
func (bt *BloomTargets) BlurGlow() {
	gl.Disable(gl.DEPTH_TEST)
	gl.BindVertexArray(bt.quadVAO)

	gl.BindFramebuffer(gl.FRAMEBUFFER, bt.bloomFBO[0])
	gl.Viewport(0, 0, bt.bloomW, bt.bloomH)
	gl.UseProgram(bt.brightProg)
	gl.Uniform1f(bt.brightThreshLoc, bt.Threshold)
	gl.ActiveTexture(gl.TEXTURE0)
	gl.BindTexture(gl.TEXTURE_2D, bt.glow.ColorTex)
	gl.DrawArrays(gl.TRIANGLES, 0, 3)

	// Each pair does H (src→dst) then V (dst→src), so the result returns to
	// bloomTex[0] after every pair.
	src, dst := 0, 1
	gl.UseProgram(bt.blurProg)
	for i := 0; i < bt.Passes*2; i++ {
		spread := 1 + bt.Radius*float32(i/2)
		gl.BindFramebuffer(gl.FRAMEBUFFER, bt.bloomFBO[dst])
		if i%2 == 0 {
			gl.Uniform2f(bt.blurDirLoc, spread/float32(bt.bloomW), 0)
		} else {
			gl.Uniform2f(bt.blurDirLoc, 0, spread/float32(bt.bloomH))
		}
		gl.BindTexture(gl.TEXTURE_2D, bt.bloomTex[src])
		gl.DrawArrays(gl.TRIANGLES, 0, 3)
		src, dst = dst, src
	}

	gl.BindVertexArray(0)
	gl.Enable(gl.DEPTH_TEST)
}

// Composite draws base + bloom into the default framebuffer.
func (bt *BloomTargets) Composite() {
	gl.Disable(gl.DEPTH_TEST)
	gl.BindVertexArray(bt.quadVAO)

	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
	gl.Viewport(0, 0, bt.Width, bt.Height)
	gl.UseProgram(bt.compositeProg)
	gl.Uniform1f(bt.expLoc, bt.Exposure)
	gl.Uniform1f(bt.bloomStrLoc, bt.Strength)
	gl.ActiveTexture(gl.TEXTURE0)
	gl.BindTexture(gl.TEXTURE_2D, bt.base.ColorTex)
	gl.ActiveTexture(gl.TEXTURE1)
	gl.BindTexture(gl.TEXTURE_2D, bt.bloomTex[0])
	gl.DrawArrays(gl.TRIANGLES, 0, 3)

	gl.ActiveTexture(gl.TEXTURE0)
	gl.BindVertexArray(0)
	gl.Enable(gl.DEPTH_TEST)
}

// BindDefaultFramebuffer makes the window framebuffer current.
func BindDefaultFramebuffer() {
	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
}
