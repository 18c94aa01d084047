package world

import (
	"crypto/sha256"
	"encoding/binary"
	"sort"
)

const chunkSize = 16

type ChunkKey struct {
	CX int
	CY int
	CZ int
}

type Chunk struct {
	CX, CY, CZ int
	Blocks     []uint16 // len = 16*16*16

	dirty bool
	hash  [32]byte
}

func (c *Chunk) index(x, y, z int) int {
	// x fastest, then z, then y
	return x + z*chunkSize + y*chunkSize*chunkSize
}

func (c *Chunk) Get(x, y, z int) uint16 {
	return c.Blocks[c.index(x, y, z)]
}

func (c *Chunk) Set(x, y, z int, b uint16) {
	i := c.index(x, y, z)
	if c.Blocks[i] == b {
		return
	}
	c.Blocks[i] = b
	c.dirty = true
}

func (c *Chunk) Digest() [32]byte {
	if c.dirty || c.hash == ([32]byte{}) {
		h := sha256.New()
		var tmp [2]byte
		for _, v := range c.Blocks {
			binary.LittleEndian.PutUint16(tmp[:], v)
			h.Write(tmp[:])
		}
		copy(c.hash[:], h.Sum(nil))
		c.dirty = false
	}
	return c.hash
}

type ChunkStore struct {
	gen       *TerrainGen
	height    int
	boundaryR int
	// Accessed only from the world loop goroutine.
	chunks map[ChunkKey]*Chunk
}

func NewChunkStore(gen *TerrainGen, height, boundaryR int) *ChunkStore {
	return &ChunkStore{
		gen:       gen,
		height:    height,
		boundaryR: boundaryR,
		chunks:    map[ChunkKey]*Chunk{},
	}
}

func (s *ChunkStore) inBounds(pos Vec3i) bool {
	if pos.Y < 0 || pos.Y >= s.height {
		return false
	}
	if s.boundaryR > 0 {
		if pos.X < -s.boundaryR || pos.X > s.boundaryR || pos.Z < -s.boundaryR || pos.Z > s.boundaryR {
			return false
		}
	}
	return true
}

func (s *ChunkStore) LoadedChunkKeys() []ChunkKey {
	keys := make([]ChunkKey, 0, len(s.chunks))
	for k := range s.chunks {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].CX != keys[j].CX {
			return keys[i].CX < keys[j].CX
		}
		if keys[i].CY != keys[j].CY {
			return keys[i].CY < keys[j].CY
		}
		return keys[i].CZ < keys[j].CZ
	})
	return keys
}

// GetBlock returns the palette id at pos; positions outside the world are air.
func (s *ChunkStore) GetBlock(pos Vec3i) uint16 {
	if !s.inBounds(pos) {
		return s.gen.Air
	}
	ch := s.getOrGenChunk(floorDiv(pos.X, chunkSize), floorDiv(pos.Y, chunkSize), floorDiv(pos.Z, chunkSize))
	return ch.Get(mod(pos.X, chunkSize), mod(pos.Y, chunkSize), mod(pos.Z, chunkSize))
}

func (s *ChunkStore) SetBlock(pos Vec3i, b uint16) bool {
	if !s.inBounds(pos) {
		return false
	}
	ch := s.getOrGenChunk(floorDiv(pos.X, chunkSize), floorDiv(pos.Y, chunkSize), floorDiv(pos.Z, chunkSize))
	ch.Set(mod(pos.X, chunkSize), mod(pos.Y, chunkSize), mod(pos.Z, chunkSize), b)
	return true
}

func (s *ChunkStore) getOrGenChunk(cx, cy, cz int) *Chunk {
	k := ChunkKey{CX: cx, CY: cy, CZ: cz}
	if ch, ok := s.chunks[k]; ok {
		return ch
	}
	ch := &Chunk{
		CX:     cx,
		CY:     cy,
		CZ:     cz,
		Blocks: make([]uint16, chunkSize*chunkSize*chunkSize),
	}
	s.gen.Fill(ch)
	ch.dirty = true
	s.chunks[k] = ch
	return ch
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

func mod(a, b int) int {
	m := a % b
	if m < 0 {
		m += b
	}
	return m
}
