package store

import (
	"fmt"

	"github.com/ssargent/factoryconfig/pkg/codec"
)

// BlockStore is the ordered collection of generic blocks held in memory.
// Blocks are only ever appended; lookups return the first block of a type in
// insertion order.
type BlockStore struct {
	blocks   []*codec.GenericBlock
	capacity int
}

// NewBlockStore returns an empty store that refuses blocks whose payload is
// larger than capacity bytes. A capacity of zero disables the check.
func NewBlockStore(capacity int) *BlockStore {
	return &BlockStore{capacity: capacity}
}

// Append adds b at the tail. Duplicate types are not rejected.
func (s *BlockStore) Append(b *codec.GenericBlock) error {
	if b == nil {
		return fmt.Errorf("store: nil block")
	}
	if int(b.Header.Size) != len(b.Data) {
		return fmt.Errorf("store: block %s declares %d bytes but holds %d", b.Header.Type, b.Header.Size, len(b.Data))
	}
	if s.capacity > 0 && int(b.Header.Size) > s.capacity {
		return fmt.Errorf("%w: %s of %d bytes, capacity %d", ErrBlockTooLarge, b.Header.Type, b.Header.Size, s.capacity)
	}
	s.blocks = append(s.blocks, b)
	return nil
}

// Find returns the first block of type t.
func (s *BlockStore) Find(t codec.BlockType) (*codec.GenericBlock, bool) {
	for _, b := range s.blocks {
		if b.Header.Type == t {
			return b, true
		}
	}
	return nil, false
}

// GetOrCreate returns the first block of type t, appending one built from
// defaultPayload when none exists. The store grows as a side effect.
func (s *BlockStore) GetOrCreate(t codec.BlockType, defaultPayload []byte) (*codec.GenericBlock, error) {
	if b, ok := s.Find(t); ok {
		return b, nil
	}
	b, err := codec.NewBlock(t, defaultPayload)
	if err != nil {
		return nil, err
	}
	if err := s.Append(b); err != nil {
		return nil, err
	}
	return b, nil
}

// Len returns the number of blocks held.
func (s *BlockStore) Len() int {
	return len(s.blocks)
}

// Blocks returns the blocks in insertion order. The slice is a copy; the
// blocks are shared.
func (s *BlockStore) Blocks() []*codec.GenericBlock {
	out := make([]*codec.GenericBlock, len(s.blocks))
	copy(out, s.blocks)
	return out
}

// Capacity returns the payload size limit.
func (s *BlockStore) Capacity() int {
	return s.capacity
}
