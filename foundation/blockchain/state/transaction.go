package state

import "github.com/ardanlabs/utxochain/foundation/blockchain/database"

// AddTransaction accepts a transaction for inclusion in a future block. No
// validation takes place here, a transaction is checked against a branch
// when a block carrying it is assembled or added. Adding a transaction that
// is already in the mempool, or that a final block recently carried, is a
// no-op.
func (s *State) AddTransaction(tx database.Tx) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.finalized.Has(tx.ID()) {
		prometheusTxIgnored.WithLabelValues("finalized").Inc()
		s.evHandler("state: AddTransaction: finalized: tx[%s]", tx)
		return
	}

	pending := database.NewPendingTx(tx.Clone())

	added, count := s.mempool.Upsert(pending)
	if !added {
		prometheusTxIgnored.WithLabelValues("duplicate").Inc()
		s.evHandler("state: AddTransaction: duplicate: tx[%s]", tx)
		return
	}
	prometheusTxAccepted.Inc()
	prometheusMempoolSize.WithLabelValues(s.chain).Set(float64(count))

	branches := s.branches.AddPending(pending)

	s.evHandler("state: AddTransaction: tx[%s]: mempool[%d]: branches[%d]", tx, count, branches)
}
