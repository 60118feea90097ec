package selector

import (
	"sort"

	"github.com/ardanlabs/utxochain/foundation/blockchain/database"
)

// oldestSelect returns the transactions that have been waiting the longest.
var oldestSelect = func(transactions []database.PendingTx, pool *database.UTXOPool, howMany int) []database.PendingTx {
	txs := append([]database.PendingTx(nil), transactions...)
	sort.Sort(byTimeStamp(txs))

	return take(txs, howMany)
}
