// Package selector provides different transaction selecting algorithms.
package selector

import (
	"fmt"
	"strings"

	"github.com/ardanlabs/utxochain/foundation/blockchain/database"
)

// List of different select strategies.
const (
	StrategyOldest = "oldest"
	StrategyFee    = "fee"
)

// Map of different select strategies with functions.
var strategies = map[string]Func{
	StrategyOldest: oldestSelect,
	StrategyFee:    feeSelect,
}

// Func defines a function that takes a set of pending transactions and the
// pool of unspent outputs they would be applied to, and selects howMany of
// them in an order based on the functions strategy. Receiving -1 for howMany
// must return all the transactions in the strategies ordering. The selected
// transactions are not validated, that is the job of the caller.
type Func func(transactions []database.PendingTx, pool *database.UTXOPool, howMany int) []database.PendingTx

// Retrieve returns the specified select strategy function.
func Retrieve(strategy string) (Func, error) {
	fn, exists := strategies[strings.ToLower(strategy)]
	if !exists {
		return nil, fmt.Errorf("strategy %q does not exist", strategy)
	}
	return fn, nil
}

// =============================================================================

// take returns the first howMany transactions, or all of them for -1.
func take(txs []database.PendingTx, howMany int) []database.PendingTx {
	if howMany < 0 || howMany > len(txs) {
		howMany = len(txs)
	}

	return txs[:howMany]
}

// byTimeStamp provides sorting support by the time the transaction was
// received, oldest first. The transaction id breaks ties so the order is
// always the same.
type byTimeStamp []database.PendingTx

// Len returns the number of transactions in the list.
func (bt byTimeStamp) Len() int {
	return len(bt)
}

// Less helps to sort the list by timestamp in ascending order.
func (bt byTimeStamp) Less(i, j int) bool {
	if bt[i].TimeStamp == bt[j].TimeStamp {
		return bt[i].ID() < bt[j].ID()
	}
	return bt[i].TimeStamp < bt[j].TimeStamp
}

// Swap moves transactions in the order of the timestamp value.
func (bt byTimeStamp) Swap(i, j int) {
	bt[i], bt[j] = bt[j], bt[i]
}
