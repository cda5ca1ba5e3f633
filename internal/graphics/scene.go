package graphics

import (
	"log/slog"
	"unsafe"

	"github.com/go-gl/gl/v4.1-core/gl"

	"voxelstream/internal/meshing"
	"voxelstream/internal/world"
)

// gpuBuffer is one uploaded vertex stream.
type gpuBuffer struct {
	vao         uint32
	vbo         uint32
	vertexCount int32
}

func (b *gpuBuffer) delete() {
	if b.vbo != 0 {
		gl.DeleteBuffers(1, &b.vbo)
	}
	if b.vao != 0 {
		gl.DeleteVertexArrays(1, &b.vao)
	}
	*b = gpuBuffer{}
}

// chunkMesh is a chunk's geometry resident on the GPU.
type chunkMesh struct {
	source      *meshing.Mesh
	opaque      gpuBuffer
	translucent gpuBuffer
}

// Scene keeps chunk meshes on the GPU. Every method must run on the GL thread.
type Scene struct {
	meshes map[*meshing.Mesh]*chunkMesh
	log    *slog.Logger
}

func NewScene(logger *slog.Logger) *Scene {
	return &Scene{
		meshes: make(map[*meshing.Mesh]*chunkMesh),
		log:    logger.With("component", "scene"),
	}
}

// Add implements world.Scene by uploading the mesh's vertex data.
func (s *Scene) Add(g world.Geometry) {
	m, ok := g.(*meshing.Mesh)
	if !ok {
		s.log.Warn("ignoring unsupported geometry", "type", g)
		return
	}
	if _, dup := s.meshes[m]; dup {
		return
	}
	s.meshes[m] = &chunkMesh{
		source:      m,
		opaque:      upload(m.Opaque),
		translucent: upload(m.Translucent),
	}
}

// Remove implements world.Scene by releasing the mesh's GPU buffers.
func (s *Scene) Remove(g world.Geometry) {
	m, ok := g.(*meshing.Mesh)
	if !ok {
		return
	}
	cm, ok := s.meshes[m]
	if !ok {
		return
	}
	cm.opaque.delete()
	cm.translucent.delete()
	delete(s.meshes, m)
}

// Len returns the number of resident meshes.
func (s *Scene) Len() int {
	return len(s.meshes)
}

// Dispose releases everything still resident.
func (s *Scene) Dispose() {
	for m := range s.meshes {
		s.Remove(m)
	}
}

func upload(vertices []float32) gpuBuffer {
	if len(vertices) == 0 {
		return gpuBuffer{}
	}
	var b gpuBuffer
	gl.GenVertexArrays(1, &b.vao)
	gl.BindVertexArray(b.vao)

	gl.GenBuffers(1, &b.vbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, b.vbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(vertices)*int(unsafe.Sizeof(float32(0))), gl.Ptr(vertices), gl.STATIC_DRAW)

	stride := int32(meshing.VertexStride * 4)
	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointerWithOffset(0, 3, gl.FLOAT, false, stride, 0)
	gl.EnableVertexAttribArray(1)
	gl.VertexAttribPointerWithOffset(1, 3, gl.FLOAT, false, stride, 3*4)
	gl.EnableVertexAttribArray(2)
	gl.VertexAttribPointerWithOffset(2, 3, gl.FLOAT, false, stride, 6*4)

	gl.BindVertexArray(0)
	b.vertexCount = int32(len(vertices) / meshing.VertexStride)
	return b
}
