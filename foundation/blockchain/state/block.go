package state

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/ardanlabs/utxochain/foundation/blockchain/branch"
	"github.com/ardanlabs/utxochain/foundation/blockchain/database"
	"github.com/jellydator/ttlcache/v3"
)

// AddBlock validates the block against the branch it extends and, if that
// passes, adds it to the chain. The transactions the block confirms leave the
// mempool, branches that did not confirm them keep them pending. Branches
// that fell out of the cut off window are pruned, and any transaction that
// claims an output spent by a block that became final is evicted. A rejected
// block leaves the chain unchanged.
func (s *State) AddBlock(block database.Block) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.evHandler("state: AddBlock: started: prevBlk[%s]: newBlk[%s]: numTrans[%d]", block.Header.PrevBlockHash, block.Hash(), len(block.Trans))

	if _, err := s.branches.Insert(block); err != nil {
		prometheusBlocksRejected.WithLabelValues(branch.Reason(err)).Inc()
		s.evHandler("state: AddBlock: REJECTED: newBlk[%s]: %s", block.Hash(), err)
		return err
	}
	prometheusBlocksAccepted.Inc()

	for _, tx := range block.Trans {
		s.mempool.Delete(tx.ID())
	}

	spent := make(map[database.UTXO]struct{})
	for _, final := range s.branches.Prune() {
		s.evHandler("state: AddBlock: final: blk[%s]: numTrans[%d]", final.Hash(), len(final.Trans))
		prometheusBlocksFinal.Inc()

		for _, tx := range final.Trans {
			id := tx.ID()
			s.mempool.Delete(id)
			s.finalized.Set(id, struct{}{}, ttlcache.DefaultTTL)

			for _, in := range tx.Inputs {
				spent[in.UTXO()] = struct{}{}
			}
		}
	}

	if len(spent) > 0 {
		s.evictConflicts(spent)
	}

	s.observe()
	s.blockEvent(block)

	s.evHandler("state: AddBlock: completed: head[%s]: height[%d]: mempool[%d]", s.branches.Head().Hash, s.branches.MaxHeight(), s.mempool.Count())

	return nil
}

// AssembleBlock builds a candidate block on top of the head. Transactions
// pending on the head branch are picked in the order of the select strategy
// and kept only if they validate against the unspent outputs built so far.
// Picking repeats while progress is made so a transaction spending the
// output of another pending transaction can follow it into the block. The
// block is not added to the chain.
func (s *State) AssembleBlock(beneficiary database.Address, reward uint64) (database.Block, error) {
	s.mu.RLock()
	head := s.branches.Head()
	utxos := s.branches.HeadUTXOPool()
	pending := s.branches.HeadPending()
	s.mu.RUnlock()

	s.evHandler("state: AssembleBlock: started: head[%s]: pending[%d]", head.Hash, len(pending))

	start := time.Now()
	defer func() {
		prometheusAssembleDuration.Observe(time.Since(start).Seconds())
	}()

	candidates := s.selector(pending, utxos, -1)

	var trans []database.Tx
	for progress := true; progress && len(trans) < s.transPerBlock; {
		progress = false

		var rest []database.PendingTx
		for _, tx := range candidates {
			if len(trans) == s.transPerBlock {
				break
			}

			if err := s.validator.ValidateTx(utxos, tx.Tx); err != nil {
				rest = append(rest, tx)
				continue
			}

			utxos.ApplyTx(tx.Tx)
			trans = append(trans, tx.Tx)
			progress = true
		}

		candidates = rest
	}

	block, err := database.NewBlock(head.Hash, database.NewCoinbase(beneficiary, reward), trans)
	if err != nil {
		return database.Block{}, err
	}

	s.evHandler("state: AssembleBlock: completed: newBlk[%s]: numTrans[%d]: skipped[%d]", block.Hash(), len(trans), len(candidates))

	return block, nil
}

// =============================================================================

// evictConflicts removes every mempool transaction claiming an output that a
// final block already spent. Such a transaction can never be confirmed.
func (s *State) evictConflicts(spent map[database.UTXO]struct{}) {
	for _, tx := range s.mempool.Copy() {
		for _, in := range tx.Inputs {
			if _, exists := spent[in.UTXO()]; !exists {
				continue
			}

			s.mempool.Delete(tx.ID())
			s.evHandler("state: AddBlock: evicted: tx[%s]: claim[%s] spent by a final block", tx, in.UTXO())
			break
		}
	}
}

// blockEvent provides a specific event about a new block in the chain for
// application specific support.
func (s *State) blockEvent(block database.Block) {
	blockHeaderJSON, err := json.Marshal(block.Header)
	if err != nil {
		blockHeaderJSON = []byte(fmt.Sprintf("%q", err.Error()))
	}

	blockTransJSON, err := json.Marshal(block.Trans)
	if err != nil {
		blockTransJSON = []byte(fmt.Sprintf("%q", err.Error()))
	}

	s.evHandler(`viewer: block: {"hash":%q,"header":%s,"trans":%s}`, block.Hash(), string(blockHeaderJSON), string(blockTransJSON))
}
