// Package merkle provides the merkle root and inclusion proof support used to
// commit a block header to the transactions it carries.
package merkle

import (
	"bytes"
	"crypto/sha256"
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common/hexutil"
)

// ErrNoValues is returned when a tree is requested over an empty set.
var ErrNoValues = errors.New("cannot construct tree with no content")

// Hashable represents the behavior concrete data must exhibit to be used in
// the merkle tree.
type Hashable interface {
	Hash() ([]byte, error)
}

// =============================================================================

// Tree represents the levels of a merkle tree. Level zero holds the leaf
// hashes and the last level holds the single root hash. A level with an odd
// number of hashes has its last hash paired with itself.
type Tree[T Hashable] struct {
	values []T
	levels [][][]byte
}

// NewTree constructs a new merkle tree over the specified values. Inner nodes
// are hashed with sha256.
func NewTree[T Hashable](values []T) (*Tree[T], error) {
	if len(values) == 0 {
		return nil, ErrNoValues
	}

	t := Tree[T]{
		values: append([]T(nil), values...),
	}

	leafs := make([][]byte, len(values))
	for i, value := range values {
		h, err := value.Hash()
		if err != nil {
			return nil, fmt.Errorf("hashing leaf %d: %w", i, err)
		}
		leafs[i] = h
	}

	t.levels = [][][]byte{leafs}
	for level := leafs; len(level) > 1; {
		next := make([][]byte, 0, (len(level)+1)/2)
		for i := 0; i < len(level); i += 2 {
			right := i + 1
			if right == len(level) {
				right = i
			}
			next = append(next, t.pair(level[i], level[right]))
		}
		t.levels = append(t.levels, next)
		level = next
	}

	return &t, nil
}

// Root returns the merkle root hash.
func (t *Tree[T]) Root() []byte {
	return t.levels[len(t.levels)-1][0]
}

// RootHex converts the merkle root byte hash to a hex encoded string.
func (t *Tree[T]) RootHex() string {
	return hexutil.Encode(t.Root())
}

// Values returns a copy of the values the tree was built from.
func (t *Tree[T]) Values() []T {
	return append([]T(nil), t.values...)
}

// Proof returns the set of sibling hashes and the order of concatenating those
// hashes for proving the value at the specified index is in the tree. An order
// of 0 says the proof hash comes first, 1 says it comes second.
func (t *Tree[T]) Proof(index int) ([][]byte, []int64, error) {
	if index < 0 || index >= len(t.values) {
		return nil, nil, fmt.Errorf("index %d out of range [0,%d)", index, len(t.values))
	}

	var proof [][]byte
	var order []int64

	for _, level := range t.levels[:len(t.levels)-1] {
		if index%2 == 0 {
			sibling := index + 1
			if sibling == len(level) {
				sibling = index
			}
			proof = append(proof, level[sibling])
			order = append(order, 1)
		} else {
			proof = append(proof, level[index-1])
			order = append(order, 0)
		}
		index /= 2
	}

	return proof, order, nil
}

// VerifyProof walks the proof from the hash of the data up to the root and
// reports whether the calculated root matches the root of this tree.
func (t *Tree[T]) VerifyProof(data T, proof [][]byte, order []int64) error {
	if len(proof) != len(order) {
		return errors.New("proof and order lengths differ")
	}

	h, err := data.Hash()
	if err != nil {
		return err
	}

	for i, p := range proof {
		switch order[i] {
		case 0:
			h = t.pair(p, h)
		default:
			h = t.pair(h, p)
		}
	}

	if !bytes.Equal(h, t.Root()) {
		return errors.New("merkle root is not equivalent to the merkle root calculated on the critical path")
	}

	return nil
}

// =============================================================================

// pair hashes the concatenation of two child hashes.
func (t *Tree[T]) pair(left []byte, right []byte) []byte {
	h := sha256.New()
	h.Write(left)
	h.Write(right)
	return h.Sum(nil)
}
