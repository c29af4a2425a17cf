package octree

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math/bits"
)

var (
	ErrCorruptOctree = errors.New("octree: corrupt octree data")
)

// Sanity cap on decoded node counts; a well formed tree of depth d has at
// most 8^d nodes and real chunks are far sparser.
const maxNodeCount = 1 << 28

// The packed wire format: a little-endian header {maxDepth u32, nodeCount
// u32} followed by nodeCount nodes {childBase u32, occupancy mask in the low
// 8 bits of a u32, material u32}.
const (
	headerSize = 8
	nodeSize   = 12
)

// Encode writes the packed representation of a tree.
func Encode(w io.Writer, t *Octree) error {
	bw := bufio.NewWriter(w)

	var scratch [nodeSize]byte
	binary.LittleEndian.PutUint32(scratch[0:4], uint32(t.MaxDepth))
	binary.LittleEndian.PutUint32(scratch[4:8], uint32(len(t.Nodes)))
	if _, err := bw.Write(scratch[:headerSize]); err != nil {
		return err
	}

	for _, n := range t.Nodes {
		binary.LittleEndian.PutUint32(scratch[0:4], n.ChildBase)
		binary.LittleEndian.PutUint32(scratch[4:8], uint32(n.Mask))
		binary.LittleEndian.PutUint32(scratch[8:12], n.Material)
		if _, err := bw.Write(scratch[:nodeSize]); err != nil {
			return err
		}
	}

	return bw.Flush()
}

// Decode reads a packed tree and validates that every stored child reference
// stays inside the node array.
func Decode(r io.Reader) (*Octree, error) {
	br := bufio.NewReader(r)

	var scratch [nodeSize]byte
	if _, err := io.ReadFull(br, scratch[:headerSize]); err != nil {
		return nil, fmt.Errorf("octree: reading header: %w", err)
	}

	maxDepth := binary.LittleEndian.Uint32(scratch[0:4])
	nodeCount := binary.LittleEndian.Uint32(scratch[4:8])
	if maxDepth == 0 || maxDepth > 16 || nodeCount == 0 || nodeCount > maxNodeCount {
		return nil, ErrCorruptOctree
	}

	nodes := make([]Node, nodeCount)
	for i := range nodes {
		if _, err := io.ReadFull(br, scratch[:nodeSize]); err != nil {
			return nil, fmt.Errorf("octree: reading node %d: %w", i, err)
		}

		mask := binary.LittleEndian.Uint32(scratch[4:8])
		if mask > 0xff {
			return nil, ErrCorruptOctree
		}

		nodes[i] = Node{
			ChildBase: binary.LittleEndian.Uint32(scratch[0:4]),
			Mask:      uint8(mask),
			Material:  binary.LittleEndian.Uint32(scratch[8:12]),
		}
	}

	for _, n := range nodes {
		if n.Mask == 0 {
			continue
		}
		last := uint64(n.ChildBase) + uint64(bits.OnesCount8(n.Mask))
		if last > uint64(nodeCount) {
			return nil, ErrCorruptOctree
		}
	}

	return &Octree{MaxDepth: int32(maxDepth), Nodes: nodes}, nil
}
