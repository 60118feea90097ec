package branch

import (
	"errors"
	"fmt"

	"github.com/ardanlabs/utxochain/foundation/blockchain/database"
)

// Insert adds the block on top of its parent and returns the block hash. The
// block is admitted only when every transaction is valid against the unspent
// outputs of its branch. On any error the pool is left unchanged.
func (p *Pool) Insert(block database.Block) (string, error) {
	hash := block.Hash()

	p.evHandler("branch: Insert: started: prevBlk[%s]: newBlk[%s]: numTrans[%d]", block.Header.PrevBlockHash, hash, len(block.Trans))

	if block.IsGenesis() {
		return "", ErrDuplicateGenesis
	}

	if _, exists := p.nodes[hash]; exists {
		return "", fmt.Errorf("%w: %s", ErrDuplicateBlock, hash)
	}

	parent, exists := p.nodes[block.Header.PrevBlockHash]
	if !exists {
		if p.tombstones.Contains(block.Header.PrevBlockHash) {
			return "", fmt.Errorf("%w: parent %s was pruned", ErrTooOld, block.Header.PrevBlockHash)
		}
		return "", fmt.Errorf("%w: %s", ErrUnknownParent, block.Header.PrevBlockHash)
	}

	height := parent.height + 1
	if maxHeight := p.head.height; maxHeight > p.cutOffAge && height <= maxHeight-p.cutOffAge {
		return "", fmt.Errorf("%w: height %d, max height %d, cut off age %d", ErrTooOld, height, maxHeight, p.cutOffAge)
	}

	if err := block.ValidateTransRoot(); err != nil {
		return "", errors.Join(ErrInvalidBlock, err)
	}

	utxos, err := p.deriveUTXOs(parent.utxos, block)
	if err != nil {
		p.evHandler("branch: Insert: REJECTED: newBlk[%s]: %s", hash, err)
		return "", err
	}

	// A pending transaction leaves the branch when the block carries it or
	// when the block spends an output it claims.
	confirmed, spent := claimsOf(block.Trans)

	pending := make(map[string]database.PendingTx, len(parent.pending))
	for id, tx := range parent.pending {
		if _, exists := confirmed[id]; exists {
			continue
		}
		if claimsAny(tx.Tx, spent) {
			continue
		}
		pending[id] = tx
	}

	p.seq++
	n := node{
		block:     block.Clone(),
		hash:      hash,
		parent:    parent.hash,
		height:    height,
		seq:       p.seq,
		utxos:     utxos,
		pending:   pending,
		confirmed: confirmed,
		spent:     spent,
		state:     newLifecycle(hash, p.evHandler),
	}

	p.nodes[hash] = &n
	p.transition(&n, eventRetain)
	p.setHead(p.selectHead())

	p.evHandler("branch: Insert: completed: newBlk[%s]: height[%d]: head[%s]: utxos[%d]: pending[%d]", hash, height, p.head.hash, utxos.Len(), len(pending))

	return hash, nil
}

// Derive recomputes the unspent outputs that result from applying the block
// to the specified retained parent. The pool is not modified.
func (p *Pool) Derive(parentHash string, block database.Block) (*database.UTXOPool, error) {
	parent, exists := p.nodes[parentHash]
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrUnknownParent, parentHash)
	}

	return p.deriveUTXOs(parent.utxos, block)
}

// deriveUTXOs applies the transactions of the block in order to a copy of the
// parent's unspent outputs. Each transaction is validated against the outputs
// produced so far, so a block may spend outputs created earlier in the same
// block. The coinbase outputs are added last and never validated.
func (p *Pool) deriveUTXOs(parent *database.UTXOPool, block database.Block) (*database.UTXOPool, error) {
	utxos := parent.Copy()

	for i, tx := range block.Trans {
		if err := p.validator.ValidateTx(utxos, tx); err != nil {
			return nil, fmt.Errorf("%w: tx[%d][%s]: %w", ErrInvalidTransaction, i, tx.ID(), err)
		}
		utxos.ApplyTx(tx)
	}

	addOutputs(utxos, block.Coinbase)

	return utxos, nil
}
