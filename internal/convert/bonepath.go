package convert

import (
	"hash/crc32"
	"strings"

	"github.com/Faultbox/sceneconv/internal/scene"
)

// PathHash returns the engine's checksum of a path: CRC-32 (IEEE) of its
// UTF-8 bytes.
func PathHash(path string) uint32 {
	return crc32.ChecksumIEEE([]byte(path))
}

// HashEntry is one hash to path mapping.
type HashEntry struct {
	Hash uint32
	Path string
}

// HashIndex maps path checksums back to paths. The first path inserted for
// a hash wins.
type HashIndex struct {
	paths map[uint32]string
	order []uint32
}

// NewHashIndex returns an empty index.
func NewHashIndex() *HashIndex {
	return &HashIndex{paths: make(map[uint32]string)}
}

// BuildIndex indexes every frame of tree in pre-order.
func BuildIndex(tree *scene.Tree) *HashIndex {
	ix := NewHashIndex()
	if tree.Root() != scene.NoFrame {
		ix.AddSubtree(tree, tree.Root())
	}
	return ix
}

// AddSubtree indexes from and its descendants in pre-order.
func (ix *HashIndex) AddSubtree(tree *scene.Tree, from scene.FrameID) {
	for _, id := range tree.Subtree(from) {
		ix.Add(tree.Path(id))
	}
}

// Add indexes path and every suffix left after stripping leading segments.
func (ix *HashIndex) Add(path string) {
	for {
		ix.insert(path)
		i := strings.IndexByte(path, '/')
		if i < 0 {
			return
		}
		path = path[i+1:]
	}
}

func (ix *HashIndex) insert(path string) {
	h := PathHash(path)
	if _, ok := ix.paths[h]; ok {
		return
	}
	ix.paths[h] = path
	ix.order = append(ix.order, h)
}

// Resolve returns the path recorded for hash.
func (ix *HashIndex) Resolve(hash uint32) (string, bool) {
	p, ok := ix.paths[hash]
	return p, ok
}

// Len returns the number of indexed hashes.
func (ix *HashIndex) Len() int { return len(ix.order) }

// Entries returns all mappings in insertion order.
func (ix *HashIndex) Entries() []HashEntry {
	out := make([]HashEntry, len(ix.order))
	for i, h := range ix.order {
		out[i] = HashEntry{Hash: h, Path: ix.paths[h]}
	}
	return out
}
