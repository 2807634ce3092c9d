package opengl

import (
	"fmt"
	"strings"
	"unsafe"

	gl "github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/mathiasusvendsendmjx/chat-gpt-fuck-rundt/core"
	"github.com/mathiasusvendsendmjx/chat-gpt-fuck-rundt/scene"
)

// GPUMesh holds the OpenGL buffer objects for an uploaded mesh.
type GPUMesh struct {
	VAO        uint32
	VBO        uint32
	EBO        uint32
	IndexCount int32
	HasIndices bool
}

// Renderer draws scene meshes with a single Blinn-Phong program. Unlit
// materials skip lighting; emission is added on top of lit shading.
type Renderer struct {
	program uint32

	mvpLoc   int32
	modelLoc int32

	lightDirLoc       int32
	lightColorLoc     int32
	lightIntensityLoc int32
	ambientColorLoc   int32
	cameraPosLoc      int32

	matAlbedoLoc    int32
	matSpecularLoc  int32
	matShininessLoc int32
	matEmissiveLoc  int32
	unlitLoc        int32

	albedoTexLoc  int32
	hasTextureLoc int32

	gpuMeshes map[*scene.Mesh]*GPUMesh
	fallback  *scene.Material

	viewportW int32
	viewportH int32
}

const vertSrc = `
#version 410 core
layout(location = 0) in vec3 inPosition;
layout(location = 1) in vec3 inNormal;
layout(location = 2) in vec2 inUV;
layout(location = 3) in vec4 inColor;

uniform mat4 mvp;
uniform mat4 model;

out vec4 fragColor;
out vec3 fragNormal;
out vec2 fragUV;
out vec3 fragWorldPos;

void main() {
    vec4 worldPos = model * vec4(inPosition, 1.0);
    gl_Position   = mvp * vec4(inPosition, 1.0);
    fragColor     = inColor;
    fragNormal    = mat3(model) * inNormal;
    fragUV        = inUV;
    fragWorldPos  = worldPos.xyz;
}
` + "\x00"

// fragSrc writes linear HDR color; tone mapping happens in the composite.
const fragSrc = `
#version 410 core
in vec4 fragColor;
in vec3 fragNormal;
in vec2 fragUV;
in vec3 fragWorldPos;

out vec4 outColor;

uniform vec3  lightDir;
uniform vec3  lightColor;
uniform float lightIntensity;
uniform vec3  ambientColor;
uniform vec3  cameraPos;

uniform vec3  matAlbedo;
uniform vec3  matSpecular;
uniform float matShininess;
uniform vec3  matEmissive; // already scaled by intensity
uniform bool  unlit;

uniform sampler2D albedoTex;
uniform bool      hasTexture;

void main() {
    vec3 base = matAlbedo * fragColor.rgb;
    if (hasTexture) {
        base *= texture(albedoTex, fragUV).rgb;
    }
    if (unlit) {
        outColor = vec4(base, 1.0);
        return;
    }

    vec3 N = normalize(fragNormal);
    vec3 L = normalize(-lightDir);
    vec3 V = normalize(cameraPos - fragWorldPos);
    vec3 H = normalize(L + V);

    float diff = max(dot(N, L), 0.0);
    float spec = diff > 0.0 ? pow(max(dot(N, H), 0.0), matShininess) : 0.0;

    vec3 color = ambientColor * base
               + lightColor * lightIntensity * (diff * base + spec * matSpecular)
               + matEmissive;
    outColor = vec4(color, 1.0);
}
` + "\x00"

// NewRenderer initializes the GL function pointers and compiles the mesh
// program. The GL context must be current on the calling thread.
func NewRenderer() (*Renderer, error) {
	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize OpenGL: %w", err)
	}

	prog, err := newProgram(vertSrc, fragSrc)
	if err != nil {
		return nil, fmt.Errorf("main shader compile: %w", err)
	}

	gl.Enable(gl.DEPTH_TEST)
	gl.DepthFunc(gl.LESS)

	r := &Renderer{
		program: prog,

		mvpLoc:   uniform(prog, "mvp"),
		modelLoc: uniform(prog, "model"),

		lightDirLoc:       uniform(prog, "lightDir"),
		lightColorLoc:     uniform(prog, "lightColor"),
		lightIntensityLoc: uniform(prog, "lightIntensity"),
		ambientColorLoc:   uniform(prog, "ambientColor"),
		cameraPosLoc:      uniform(prog, "cameraPos"),

		matAlbedoLoc:    uniform(prog, "matAlbedo"),
		matSpecularLoc:  uniform(prog, "matSpecular"),
		matShininessLoc: uniform(prog, "matShininess"),
		matEmissiveLoc:  uniform(prog, "matEmissive"),
		unlitLoc:        uniform(prog, "unlit"),

		albedoTexLoc:  uniform(prog, "albedoTex"),
		hasTextureLoc: uniform(prog, "hasTexture"),

		gpuMeshes: make(map[*scene.Mesh]*GPUMesh),
		fallback:  scene.DefaultMaterial(),
	}

	gl.UseProgram(prog)
	gl.Uniform1i(r.albedoTexLoc, 0)

	return r, nil
}

// Version returns the driver's GL version string.
func (r *Renderer) Version() string {
	return gl.GoStr(gl.GetString(gl.VERSION))
}

// SetViewport resizes the default framebuffer viewport.
func (r *Renderer) SetViewport(width, height int) {
	r.viewportW = int32(width)
	r.viewportH = int32(height)
	gl.Viewport(0, 0, int32(width), int32(height))
}

// Viewport returns the size last passed to SetViewport.
func (r *Renderer) Viewport() (int32, int32) {
	return r.viewportW, r.viewportH
}

// BeginFrame clears the bound framebuffer and uploads per-frame uniforms.
func (r *Renderer) BeginFrame(sky core.Color, sun scene.Light, ambient core.Color, camPos mgl32.Vec3) {
	gl.ClearColor(sky.R, sky.G, sky.B, 1)
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)
	gl.Enable(gl.DEPTH_TEST)

	gl.UseProgram(r.program)
	dir := sun.Direction
	if dir.Len() == 0 {
		dir = mgl32.Vec3{0, -1, 0}
	}
	dir = dir.Normalize()
	gl.Uniform3f(r.lightDirLoc, dir.X(), dir.Y(), dir.Z())
	gl.Uniform3f(r.lightColorLoc, sun.Color.R, sun.Color.G, sun.Color.B)
	gl.Uniform1f(r.lightIntensityLoc, sun.Intensity)
	gl.Uniform3f(r.ambientColorLoc, ambient.R, ambient.G, ambient.B)
	gl.Uniform3f(r.cameraPosLoc, camPos.X(), camPos.Y(), camPos.Z())
}

// DrawMesh draws mesh with mat. A nil mat falls back to the default material.
func (r *Renderer) DrawMesh(mesh *scene.Mesh, mat *scene.Material, mvp, model mgl32.Mat4) {
	gpu := r.ensureUploaded(mesh)
	if gpu == nil {
		return
	}

	gl.UseProgram(r.program)
	gl.UniformMatrix4fv(r.mvpLoc, 1, false, &mvp[0])
	gl.UniformMatrix4fv(r.modelLoc, 1, false, &model[0])

	if mat == nil {
		mat = r.fallback
	}
	r.applyMaterial(mat)

	gl.BindVertexArray(gpu.VAO)
	if gpu.HasIndices {
		gl.DrawElements(gl.TRIANGLES, gpu.IndexCount, gl.UNSIGNED_INT, nil)
	} else {
		gl.DrawArrays(gl.TRIANGLES, 0, int32(len(mesh.Vertices)))
	}
	gl.BindVertexArray(0)
}

func (r *Renderer) applyMaterial(mat *scene.Material) {
	gl.Uniform3f(r.matAlbedoLoc, mat.Albedo.R, mat.Albedo.G, mat.Albedo.B)
	gl.Uniform3f(r.matSpecularLoc, mat.Specular.R, mat.Specular.G, mat.Specular.B)
	gl.Uniform1f(r.matShininessLoc, mat.Shininess)

	em := mat.EmissiveRadiance()
	gl.Uniform3f(r.matEmissiveLoc, em.R, em.G, em.B)

	if mat.Kind == scene.Unlit {
		gl.Uniform1i(r.unlitLoc, 1)
	} else {
		gl.Uniform1i(r.unlitLoc, 0)
	}

	if tex := mat.AlbedoTexture; tex != nil && tex.GLID != 0 {
		gl.ActiveTexture(gl.TEXTURE0)
		gl.BindTexture(gl.TEXTURE_2D, tex.GLID)
		gl.Uniform1i(r.hasTextureLoc, 1)
	} else {
		gl.Uniform1i(r.hasTextureLoc, 0)
	}
}

// ReleaseMesh frees the GPU buffers of mesh.
func (r *Renderer) ReleaseMesh(mesh *scene.Mesh) {
	if gpu, ok := r.gpuMeshes[mesh]; ok {
		gl.DeleteVertexArrays(1, &gpu.VAO)
		gl.DeleteBuffers(1, &gpu.VBO)
		if gpu.HasIndices {
			gl.DeleteBuffers(1, &gpu.EBO)
		}
		delete(r.gpuMeshes, mesh)
		mesh.GPUData = nil
	}
}

// Destroy releases all GPU resources.
func (r *Renderer) Destroy() {
	for mesh := range r.gpuMeshes {
		r.ReleaseMesh(mesh)
	}
	if r.program != 0 {
		gl.DeleteProgram(r.program)
		r.program = 0
	}
}

func (r *Renderer) ensureUploaded(mesh *scene.Mesh) *GPUMesh {
	if gpu, ok := r.gpuMeshes[mesh]; ok {
		return gpu
	}
	if len(mesh.Vertices) == 0 {
		return nil
	}

	stride := int32(unsafe.Sizeof(core.Vertex{}))

	gpu := &GPUMesh{
		IndexCount: int32(len(mesh.Indices)),
		HasIndices: len(mesh.Indices) > 0,
	}

	gl.GenVertexArrays(1, &gpu.VAO)
	gl.GenBuffers(1, &gpu.VBO)
	gl.BindVertexArray(gpu.VAO)

	gl.BindBuffer(gl.ARRAY_BUFFER, gpu.VBO)
	gl.BufferData(gl.ARRAY_BUFFER,
		len(mesh.Vertices)*int(stride),
		gl.Ptr(mesh.Vertices),
		gl.STATIC_DRAW)

	var v core.Vertex
	posOff := int(unsafe.Offsetof(v.Position))
	normOff := int(unsafe.Offsetof(v.Normal))
	uvOff := int(unsafe.Offsetof(v.UV))
	colorOff := int(unsafe.Offsetof(v.Color))

	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointer(0, 3, gl.FLOAT, false, stride, gl.PtrOffset(posOff))

	gl.EnableVertexAttribArray(1)
	gl.VertexAttribPointer(1, 3, gl.FLOAT, false, stride, gl.PtrOffset(normOff))

	gl.EnableVertexAttribArray(2)
	gl.VertexAttribPointer(2, 2, gl.FLOAT, false, stride, gl.PtrOffset(uvOff))

	gl.EnableVertexAttribArray(3)
	gl.VertexAttribPointer(3, 4, gl.FLOAT, false, stride, gl.PtrOffset(colorOff))

	if gpu.HasIndices {
		gl.GenBuffers(1, &gpu.EBO)
		gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, gpu.EBO)
		gl.BufferData(gl.ELEMENT_ARRAY_BUFFER,
			len(mesh.Indices)*4,
			gl.Ptr(mesh.Indices),
			gl.STATIC_DRAW)
	}

	gl.BindVertexArray(0)

	r.gpuMeshes[mesh] = gpu
	mesh.GPUData = gpu
	return gpu
}

// ── Shader helpers ────────────────────────────────────────────────────────────

func uniform(prog uint32, name string) int32 {
	return gl.GetUniformLocation(prog, gl.Str(name+"\x00"))
}

func newProgram(vertSrc, fragSrc string) (uint32, error) {
	vert, err := compileShader(vertSrc, gl.VERTEX_SHADER)
	if err != nil {
		return 0, fmt.Errorf("vertex: %w", err)
	}
	frag, err := compileShader(fragSrc, gl.FRAGMENT_SHADER)
	if err != nil {
		gl.DeleteShader(vert)
		return 0, fmt.Errorf("fragment: %w", err)
	}

	prog := gl.CreateProgram()
	gl.AttachShader(prog, vert)
	gl.AttachShader(prog, frag)
	gl.LinkProgram(prog)
	gl.DeleteShader(vert)
	gl.DeleteShader(frag)

	var status int32
	gl.GetProgramiv(prog, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		var logLen int32
		gl.GetProgramiv(prog, gl.INFO_LOG_LENGTH, &logLen)
		log := strings.Repeat("\x00", int(logLen+1))
		gl.GetProgramInfoLog(prog, logLen, nil, gl.Str(log))
		gl.DeleteProgram(prog)
		return 0, fmt.Errorf("link failed: %v", log)
	}
	return prog, nil
}

func compileShader(src string, shaderType uint32) (uint32, error) {
	shader := gl.CreateShader(shaderType)
	csrc, free := gl.Strs(src)
	gl.ShaderSource(shader, 1, csrc, nil)
	free()
	gl.CompileShader(shader)

	var status int32
	gl.GetShaderiv(shader, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		var logLen int32
		gl.GetShaderiv(shader, gl.INFO_LOG_LENGTH, &logLen)
		log := strings.Repeat("\x00", int(logLen+1))
		gl.GetShaderInfoLog(shader, logLen, nil, gl.Str(log))
		gl.DeleteShader(shader)
		return 0, fmt.Errorf("compile failed: %v", log)
	}
	return shader, nil
}
