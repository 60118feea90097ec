package state

import (
	"fmt"

	"github.com/ardanlabs/utxochain/foundation/blockchain/branch"
	"github.com/ardanlabs/utxochain/foundation/blockchain/database"
)

// HeadBlock returns a copy of the block at the head of the chain.
func (s *State) HeadBlock() database.Block {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.branches.Head().Block
}

// HeadHeight returns the height of the head. Genesis is at height 1.
func (s *State) HeadHeight() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.branches.MaxHeight()
}

// HeadUTXOPool returns a copy of the unspent outputs at the head, safe to
// mutate while building a new block.
func (s *State) HeadUTXOPool() *database.UTXOPool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.branches.HeadUTXOPool()
}

// HeadPendingTransactions returns the transactions still eligible for the
// next block on the head.
func (s *State) HeadPendingTransactions() []database.PendingTx {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.branches.HeadPending()
}

// TransactionPool returns a copy of every transaction in the mempool.
func (s *State) TransactionPool() []database.PendingTx {
	return s.mempool.Copy()
}

// QueryMempoolLength returns the current length of the mempool.
func (s *State) QueryMempoolLength() int {
	return s.mempool.Count()
}

// QueryBranches returns every retained block ordered by height.
func (s *State) QueryBranches() []branch.Node {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.branches.Nodes()
}

// QueryBalances returns the unspent value held by every address at the head.
func (s *State) QueryBalances() map[database.Address]uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.branches.HeadUTXOPool().Balances()
}

// CutOffAge returns the maximum reorganization depth of the chain.
func (s *State) CutOffAge() uint64 {
	return s.branches.CutOffAge()
}

// QueryTxProof searches the retained blocks on the head branch for the
// transaction and returns the block carrying it with the merkle proof of
// its inclusion.
func (s *State) QueryTxProof(id string) (database.Block, database.TxProof, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for hash := s.branches.Head().Hash; ; {
		n, exists := s.branches.Lookup(hash)
		if !exists {
			break
		}

		if proof, err := n.Block.Proof(id); err == nil {
			return n.Block, proof, nil
		}
		hash = n.ParentHash
	}

	return database.Block{}, database.TxProof{}, fmt.Errorf("%w: %s", ErrTxNotFound, id)
}
