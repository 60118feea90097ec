package selector

import (
	"sort"

	"github.com/ardanlabs/utxochain/foundation/blockchain/database"
)

// feeSelect returns the transactions paying the best fee against the pool.
// A transaction whose inputs can't be resolved against the pool, such as one
// spending the output of another pending transaction, is placed after all
// the resolvable ones so its parent gets a chance to be selected first.
var feeSelect = func(transactions []database.PendingTx, pool *database.UTXOPool, howMany int) []database.PendingTx {
	type ranked struct {
		tx       database.PendingTx
		fee      uint64
		resolved bool
	}

	list := make([]ranked, len(transactions))
	for i, tx := range transactions {
		fee, resolved := tx.Fee(pool)
		list[i] = ranked{tx: tx, fee: fee, resolved: resolved}
	}

	sort.SliceStable(list, func(i, j int) bool {
		switch {
		case list[i].resolved != list[j].resolved:
			return list[i].resolved
		case list[i].fee != list[j].fee:
			return list[i].fee > list[j].fee
		}
		return byTimeStamp{list[i].tx, list[j].tx}.Less(0, 1)
	})

	txs := make([]database.PendingTx, len(list))
	for i, r := range list {
		txs[i] = r.tx
	}

	return take(txs, howMany)
}
