package branch

import (
	"github.com/ardanlabs/utxochain/foundation/blockchain/database"
)

// Prune drops every retained block whose height is at or below the head's
// height minus the cut off age. Branches that forked off the head's ancestry
// at or below that height are dropped with them since they can never become
// the head again. The dropped blocks on the head's ancestry are final and are
// returned in height order.
func (p *Pool) Prune() []database.Block {
	if p.head.height <= p.cutOffAge {
		return nil
	}

	threshold := p.head.height - p.cutOffAge
	if threshold <= p.floor {
		return nil
	}

	pivot := p.ancestor(p.head, threshold)
	if pivot == nil {
		return nil
	}

	var final []database.Block
	for n := pivot; n != nil; n = p.nodes[n.parent] {
		final = append(final, n.block.Clone())
	}
	for i, j := 0, len(final)-1; i < j; i, j = i+1, j-1 {
		final[i], final[j] = final[j], final[i]
	}

	var drop []string
	for hash, n := range p.nodes {
		if n.height > threshold && p.ancestor(n, threshold) == pivot {
			continue
		}
		drop = append(drop, hash)
	}

	for _, hash := range drop {
		p.transition(p.nodes[hash], eventPrune)
		delete(p.nodes, hash)
		p.tombstones.Add(hash)
	}

	p.floor = threshold
	p.setHead(p.selectHead())

	p.evHandler("branch: Prune: threshold[%d]: dropped[%d]: final[%d]: retained[%d]", threshold, len(drop), len(final), len(p.nodes))

	return final
}

// AddPending records the transaction as pending on every retained block
// whose ancestry has neither confirmed it nor spent an output it claims.
func (p *Pool) AddPending(tx database.PendingTx) int {
	id := tx.ID()

	var added int
	for _, n := range p.nodes {
		if _, exists := n.pending[id]; exists {
			continue
		}

		if p.confirmedBy(n, id) || p.spentBy(n, tx.Tx) {
			continue
		}

		n.pending[id] = database.PendingTx{Tx: tx.Tx.Clone(), TimeStamp: tx.TimeStamp}
		added++
	}

	p.evHandler("branch: AddPending: tx[%s]: branches[%d]", tx, added)

	return added
}

// =============================================================================

// ancestor walks up from the node to its ancestor at the specified height.
// Nil is returned when that ancestor is no longer retained.
func (p *Pool) ancestor(n *node, height uint64) *node {
	for n != nil && n.height > height {
		n = p.nodes[n.parent]
	}

	if n == nil || n.height != height {
		return nil
	}

	return n
}

// confirmedBy reports whether the node or any of its retained ancestors
// carries the transaction.
func (p *Pool) confirmedBy(n *node, id string) bool {
	for ; n != nil; n = p.nodes[n.parent] {
		if _, exists := n.confirmed[id]; exists {
			return true
		}
	}

	return false
}

// spentBy reports whether the node or any of its retained ancestors spent an
// output the transaction claims.
func (p *Pool) spentBy(n *node, tx database.Tx) bool {
	for ; n != nil; n = p.nodes[n.parent] {
		if claimsAny(tx, n.spent) {
			return true
		}
	}

	return false
}
