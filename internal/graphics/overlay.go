package graphics

import (
	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"

	"voxelstream/internal/physics"
	"voxelstream/internal/profiling"
)

var crosshairVertices = []float32{
	-0.02, 0.0, 0,
	0.02, 0.0, 0,
	0.0, -0.02, 0,
	0.0, 0.02, 0,
}

// Unit cube edges with the block's minimum corner at the origin.
var cubeEdgeVertices = []float32{
	// Bottom face
	0, 0, 0, 1, 0, 0,
	1, 0, 0, 1, 0, 1,
	1, 0, 1, 0, 0, 1,
	0, 0, 1, 0, 0, 0,

	// Top face
	0, 1, 0, 1, 1, 0,
	1, 1, 0, 1, 1, 1,
	1, 1, 1, 0, 1, 1,
	0, 1, 1, 0, 1, 0,

	// Connecting edges
	0, 0, 0, 0, 1, 0,
	1, 0, 0, 1, 1, 0,
	1, 0, 1, 1, 1, 1,
	0, 0, 1, 0, 1, 1,
}

var (
	crosshairColor = mgl32.Vec3{1, 1, 1}
	outlineColor   = mgl32.Vec3{0, 0, 0}
)

// overlay draws the crosshair and the outline of the targeted block.
type overlay struct {
	shader    *Shader
	crosshair gpuBuffer
	outline   gpuBuffer
}

func newOverlay() (*overlay, error) {
	shader, err := LoadShader("overlay.vert", "overlay.frag")
	if err != nil {
		return nil, err
	}
	return &overlay{
		shader:    shader,
		crosshair: uploadLines(crosshairVertices),
		outline:   uploadLines(cubeEdgeVertices),
	}, nil
}

func uploadLines(vertices []float32) gpuBuffer {
	b := gpuBuffer{vertexCount: int32(len(vertices) / 3)}
	gl.GenVertexArrays(1, &b.vao)
	gl.BindVertexArray(b.vao)

	gl.GenBuffers(1, &b.vbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, b.vbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(vertices)*4, gl.Ptr(vertices), gl.STATIC_DRAW)

	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointerWithOffset(0, 3, gl.FLOAT, false, 3*4, 0)
	return b
}

func (o *overlay) render(target physics.RaycastResult, viewProj mgl32.Mat4, aspectRatio float32) {
	defer profiling.Track("graphics.renderOverlay")()

	o.shader.Use()
	gl.PolygonMode(gl.FRONT_AND_BACK, gl.FILL)
	gl.LineWidth(1.0)

	if target.Hit {
		p := target.HitPosition
		// Slightly oversized so the lines are not hidden by the block faces.
		model := mgl32.Translate3D(float32(p[0])-0.005, float32(p[1])-0.005, float32(p[2])-0.005).
			Mul4(mgl32.Scale3D(1.01, 1.01, 1.01))
		o.shader.SetMatrix4("mvp", viewProj.Mul4(model))
		o.shader.SetVector3("color", outlineColor)
		gl.BindVertexArray(o.outline.vao)
		gl.DrawArrays(gl.LINES, 0, o.outline.vertexCount)
	}

	gl.Disable(gl.DEPTH_TEST)
	o.shader.SetMatrix4("mvp", mgl32.Scale3D(1/aspectRatio, 1, 1))
	o.shader.SetVector3("color", crosshairColor)
	gl.BindVertexArray(o.crosshair.vao)
	gl.DrawArrays(gl.LINES, 0, o.crosshair.vertexCount)
	gl.Enable(gl.DEPTH_TEST)
}

func (o *overlay) dispose() {
	o.crosshair.delete()
	o.outline.delete()
	o.shader.Delete()
}
