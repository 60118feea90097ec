// Package mempool maintains the mempool for the blockchain.
package mempool

import (
	"sort"
	"sync"

	"github.com/ardanlabs/utxochain/foundation/blockchain/database"
)

// Mempool represents a cache of transactions submitted to the node that have
// not been finalized by the chain yet, keyed by the transaction id.
type Mempool struct {
	pool map[string]database.PendingTx
	mu   sync.RWMutex
}

// New constructs a new mempool.
func New() *Mempool {
	return &Mempool{
		pool: make(map[string]database.PendingTx),
	}
}

// Count returns the current number of transaction in the pool.
func (mp *Mempool) Count() int {
	mp.mu.RLock()
	defer mp.mu.RUnlock()

	return len(mp.pool)
}

// Upsert adds a transaction to the mempool. Adding a transaction that is
// already in the pool is a no-op and keeps the original receive time. It
// reports whether the transaction was added and the size of the pool.
func (mp *Mempool) Upsert(tx database.PendingTx) (bool, int) {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	id := tx.ID()
	if _, exists := mp.pool[id]; exists {
		return false, len(mp.pool)
	}

	mp.pool[id] = tx

	return true, len(mp.pool)
}

// Delete removes a transaction from the mempool. Removing a transaction that
// is not in the pool is not an error.
func (mp *Mempool) Delete(id string) {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	delete(mp.pool, id)
}

// Contains reports whether the transaction is in the pool.
func (mp *Mempool) Contains(id string) bool {
	mp.mu.RLock()
	defer mp.mu.RUnlock()

	_, exists := mp.pool[id]
	return exists
}

// Copy returns an independent copy of the transactions in the pool in the
// order they were received.
func (mp *Mempool) Copy() []database.PendingTx {
	mp.mu.RLock()
	txs := make([]database.PendingTx, 0, len(mp.pool))
	for _, tx := range mp.pool {
		tx.Tx = tx.Tx.Clone()
		txs = append(txs, tx)
	}
	mp.mu.RUnlock()

	sort.Slice(txs, func(i, j int) bool {
		if txs[i].TimeStamp == txs[j].TimeStamp {
			return txs[i].ID() < txs[j].ID()
		}
		return txs[i].TimeStamp < txs[j].TimeStamp
	})

	return txs
}
