package component

import "github.com/mcgl/engine/internal/core/ecs"

// ChunkSize is the edge length of a cubic chunk in blocks.
const ChunkSize = 16

// Chunk holds one cube of world-generation block data. Few entities carry a
// chunk and each is large, so it lives in a growable store.
type Chunk struct {
	ecs.LargeComponent

	Origin [3]int32 // chunk coordinates, not blocks
	Blocks []uint8  // ChunkSize^3 block ids, x-major
	Dirty  bool
}

func NewChunk(x, y, z int32) Chunk {
	return Chunk{
		Origin: [3]int32{x, y, z},
		Blocks: make([]uint8, ChunkSize*ChunkSize*ChunkSize),
	}
}

func chunkIndex(x, y, z int) int {
	return (x*ChunkSize+y)*ChunkSize + z
}

// At returns the block at local coordinates, or 0 outside the chunk.
func (c *Chunk) At(x, y, z int) uint8 {
	if !inChunk(x, y, z) {
		return 0
	}
	return c.Blocks[chunkIndex(x, y, z)]
}

// Set writes a block and marks the chunk dirty. Out of range writes are
// ignored.
func (c *Chunk) Set(x, y, z int, block uint8) {
	if !inChunk(x, y, z) {
		return
	}
	c.Blocks[chunkIndex(x, y, z)] = block
	c.Dirty = true
}

func inChunk(x, y, z int) bool {
	return x >= 0 && x < ChunkSize && y >= 0 && y < ChunkSize && z >= 0 && z < ChunkSize
}
