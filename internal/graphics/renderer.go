package graphics

import (
	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"

	"voxelstream/internal/config"
	"voxelstream/internal/player"
	"voxelstream/internal/profiling"
	"voxelstream/internal/world"
)

var skyColor = mgl32.Vec3{0.53, 0.81, 0.92}

const translucentAlpha = 0.7

// Renderer draws the scene from the player's eye.
type Renderer struct {
	shader  *Shader
	overlay *overlay
	camera  *Camera
	scene   *Scene
	fogEnd  float32

	// DrawnChunks counts meshes that passed culling in the last frame.
	DrawnChunks int
}

// NewRenderer configures GL state and compiles the chunk shader. gl.Init
// must already have been called on this thread.
func NewRenderer(scene *Scene, width, height int) (*Renderer, error) {
	// Configure OpenGL
	gl.Enable(gl.DEPTH_TEST)
	// Enable back-face culling (meshing emits CCW front faces)
	gl.Enable(gl.CULL_FACE)
	gl.CullFace(gl.BACK)
	gl.FrontFace(gl.CCW)
	gl.BlendFunc(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA)

	shader, err := LoadShader("chunk.vert", "chunk.frag")
	if err != nil {
		return nil, err
	}

	ov, err := newOverlay()
	if err != nil {
		shader.Delete()
		return nil, err
	}

	r := &Renderer{
		shader:  shader,
		overlay: ov,
		camera:  NewCamera(width, height),
		scene:   scene,
	}
	r.SetViewRadius(world.DefaultOptions().StreamRadius)
	return r, nil
}

// SetViewRadius places the fog so terrain fades out at the streaming edge.
func (r *Renderer) SetViewRadius(chunks int) {
	r.fogEnd = float32((chunks + 1) * world.ChunkSizeX)
}

// Resize updates the viewport after the framebuffer changed size.
func (r *Renderer) Resize(width, height int) {
	gl.Viewport(0, 0, int32(width), int32(height))
	r.camera.SetViewport(width, height)
}

// Clear fills the frame with the sky colour. It is used while no player
// has been placed yet.
func (r *Renderer) Clear() {
	gl.ClearColor(skyColor[0], skyColor[1], skyColor[2], 1.0)
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)
}

// Render clears the frame and draws every visible chunk, opaque pass first.
func (r *Renderer) Render(p *player.Player) {
	defer profiling.Track("graphics.Render")()

	r.Clear()

	if config.IsWireframeMode() {
		gl.PolygonMode(gl.FRONT_AND_BACK, gl.LINE)
	} else {
		gl.PolygonMode(gl.FRONT_AND_BACK, gl.FILL)
	}

	view := p.ViewMatrix()
	projection := r.camera.ProjectionMatrix()
	frustum := NewFrustum(projection.Mul4(view))

	r.shader.Use()
	r.shader.SetMatrix4("view", view)
	r.shader.SetMatrix4("projection", projection)
	r.shader.SetVector3("fogColor", skyColor)
	r.shader.SetFloat("fogStart", r.fogEnd*0.6)
	r.shader.SetFloat("fogEnd", r.fogEnd)

	visible := make([]*chunkMesh, 0, len(r.scene.meshes))
	for _, cm := range r.scene.meshes {
		lo, hi := cm.source.Bounds()
		if frustum.Intersects(lo, hi) {
			visible = append(visible, cm)
		}
	}
	r.DrawnChunks = len(visible)

	r.shader.SetFloat("alpha", 1)
	for _, cm := range visible {
		draw(cm.opaque)
	}

	// Water is drawn after all opaque geometry without writing depth.
	gl.Enable(gl.BLEND)
	gl.DepthMask(false)
	gl.Disable(gl.CULL_FACE)
	r.shader.SetFloat("alpha", translucentAlpha)
	for _, cm := range visible {
		draw(cm.translucent)
	}
	gl.Enable(gl.CULL_FACE)
	gl.DepthMask(true)
	gl.Disable(gl.BLEND)

	r.overlay.render(p.Target(), projection.Mul4(view), r.camera.AspectRatio)

	gl.BindVertexArray(0)
}

func draw(b gpuBuffer) {
	if b.vertexCount == 0 {
		return
	}
	gl.BindVertexArray(b.vao)
	gl.DrawArrays(gl.TRIANGLES, 0, b.vertexCount)
}

// Dispose releases the shaders and overlay buffers.
func (r *Renderer) Dispose() {
	r.overlay.dispose()
	r.shader.Delete()
}
