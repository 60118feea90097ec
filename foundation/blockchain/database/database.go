// Package database handles the records of the blockchain: blocks, transactions
// and the in memory database of unspent transaction outputs.
package database

import (
	"fmt"
	"sort"

	"github.com/ardanlabs/utxochain/foundation/blockchain/signature"
	"github.com/dolthub/swiss"
)

// UTXO identifies an unspent transaction output by the hash of the transaction
// that produced it and its index in that transaction's outputs.
type UTXO struct {
	TxHash string `json:"tx_hash"`
	Index  uint32 `json:"index"`
}

// String implements the fmt.Stringer interface for logging.
func (u UTXO) String() string {
	return fmt.Sprintf("%s:%d", u.TxHash, u.Index)
}

// =============================================================================

// UTXOPool is the set of unspent outputs that can be claimed by the next
// transaction. A pool is never shared between branches of the chain, use
// Copy to hand one out. The zero value is an empty pool.
type UTXOPool struct {
	utxos *swiss.Map[UTXO, Output]
}

// defaultPoolSize is the initial capacity of a new pool.
const defaultPoolSize = 64

// NewUTXOPool constructs an empty pool.
func NewUTXOPool() *UTXOPool {
	return &UTXOPool{
		utxos: swiss.NewMap[UTXO, Output](defaultPoolSize),
	}
}

// Copy returns an independent copy of the pool.
func (p *UTXOPool) Copy() *UTXOPool {
	size := uint32(defaultPoolSize)
	if n := p.Len(); n > defaultPoolSize {
		size = uint32(n)
	}

	cpy := UTXOPool{utxos: swiss.NewMap[UTXO, Output](size)}
	p.iter(func(u UTXO, out Output) {
		cpy.utxos.Put(u, out)
	})

	return &cpy
}

// Add records the output as unspent.
func (p *UTXOPool) Add(u UTXO, out Output) {
	if p.utxos == nil {
		p.utxos = swiss.NewMap[UTXO, Output](defaultPoolSize)
	}

	p.utxos.Put(u, out)
}

// Remove marks the output as spent. Removing an unknown output is a no-op.
func (p *UTXOPool) Remove(u UTXO) {
	if p.utxos == nil {
		return
	}

	p.utxos.Delete(u)
}

// Contains reports whether the output is unspent.
func (p *UTXOPool) Contains(u UTXO) bool {
	_, exists := p.Output(u)
	return exists
}

// Output returns the unspent output for the specified UTXO.
func (p *UTXOPool) Output(u UTXO) (Output, bool) {
	if p.utxos == nil {
		return Output{}, false
	}

	return p.utxos.Get(u)
}

// Len returns the number of unspent outputs.
func (p *UTXOPool) Len() int {
	if p.utxos == nil {
		return 0
	}

	return p.utxos.Count()
}

// UTXOs returns all the unspent outputs ordered by transaction hash
// and index.
func (p *UTXOPool) UTXOs() []UTXO {
	list := make([]UTXO, 0, p.Len())
	p.iter(func(u UTXO, _ Output) {
		list = append(list, u)
	})

	sort.Slice(list, func(i, j int) bool {
		if list[i].TxHash == list[j].TxHash {
			return list[i].Index < list[j].Index
		}
		return list[i].TxHash < list[j].TxHash
	})

	return list
}

// Equal reports whether both pools hold the same unspent outputs.
func (p *UTXOPool) Equal(other *UTXOPool) bool {
	if p.Len() != other.Len() {
		return false
	}

	equal := true
	p.iter(func(u UTXO, out Output) {
		if o, exists := other.Output(u); !exists || o != out {
			equal = false
		}
	})

	return equal
}

// ApplyTx spends the outputs claimed by the transaction and records the
// outputs it produces. No validation is performed, callers are expected to
// have validated the transaction against this pool first.
func (p *UTXOPool) ApplyTx(tx Tx) {
	for _, in := range tx.Inputs {
		p.Remove(in.UTXO())
	}

	id := tx.ID()
	for i, out := range tx.Outputs {
		p.Add(UTXO{TxHash: id, Index: uint32(i)}, out)
	}
}

// Balances sums the unspent value held by every address.
func (p *UTXOPool) Balances() map[Address]uint64 {
	balances := make(map[Address]uint64)
	p.iter(func(_ UTXO, out Output) {
		balances[out.Address] += out.Value
	})

	return balances
}

// Hash returns a unique hash for the content of the pool. Two pools with the
// same unspent outputs produce the same hash.
func (p *UTXOPool) Hash() string {
	type entry struct {
		UTXO   UTXO   `json:"utxo"`
		Output Output `json:"output"`
	}

	utxos := p.UTXOs()
	entries := make([]entry, len(utxos))
	for i, u := range utxos {
		out, _ := p.Output(u)
		entries[i] = entry{UTXO: u, Output: out}
	}

	return signature.Hash(entries)
}

func (p *UTXOPool) iter(fn func(u UTXO, out Output)) {
	if p.utxos == nil {
		return
	}

	p.utxos.Iter(func(u UTXO, out Output) bool {
		fn(u, out)
		return false
	})
}
