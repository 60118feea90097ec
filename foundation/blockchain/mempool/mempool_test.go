package mempool_test

import (
	"sync"
	"testing"

	"github.com/ardanlabs/utxochain/foundation/blockchain/database"
	"github.com/ardanlabs/utxochain/foundation/blockchain/mempool"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

const bob = database.Address("0xF01813E4B85e178A83e29B8E7bF26BD830a25f32")

func pending(value uint64, ts uint64) database.PendingTx {
	return database.PendingTx{
		Tx:        database.NewCoinbase(bob, value),
		TimeStamp: ts,
	}
}

func Test_CRUD(t *testing.T) {
	type table struct {
		name string
		txs  []database.PendingTx
	}

	tt := []table{
		{
			name: "basic",
			txs:  []database.PendingTx{pending(10, 3), pending(20, 1), pending(30, 2), pending(40, 4)},
		},
	}

	t.Log("Given the need to validate mempool api.")
	{
		for testID, tst := range tt {
			t.Logf("\tTest %d:\tWhen handling a set of transaction.", testID)
			{
				f := func(t *testing.T) {
					mp := mempool.New()

					for _, tx := range tst.txs {
						added, _ := mp.Upsert(tx)
						if !added {
							t.Fatalf("\t%s\tTest %d:\tShould be able to add new transaction: %s", failed, testID, tx)
						}
						t.Logf("\t%s\tTest %d:\tShould be able to add new transaction: %s", success, testID, tx)
					}

					dup := tst.txs[0]
					dup.TimeStamp = 0
					if added, count := mp.Upsert(dup); added || count != len(tst.txs) {
						t.Fatalf("\t%s\tTest %d:\tShould ignore a duplicate transaction.", failed, testID)
					}
					t.Logf("\t%s\tTest %d:\tShould ignore a duplicate transaction.", success, testID)

					txs := mp.Copy()
					for i, exp := range []uint64{1, 2, 3, 4} {
						if txs[i].TimeStamp != exp {
							t.Logf("\t%s\tTest %d:\tgot: %d", failed, testID, txs[i].TimeStamp)
							t.Logf("\t%s\tTest %d:\texp: %d", failed, testID, exp)
							t.Fatalf("\t%s\tTest %d:\tShould get back the transactions in received order.", failed, testID)
						}
					}
					t.Logf("\t%s\tTest %d:\tShould get back the transactions in received order.", success, testID)

					txs[0].Outputs[0].Value = 9999
					if mp.Copy()[0].Outputs[0].Value == 9999 {
						t.Fatalf("\t%s\tTest %d:\tShould get back an independent copy.", failed, testID)
					}
					t.Logf("\t%s\tTest %d:\tShould get back an independent copy.", success, testID)

					mp.Delete(tst.txs[1].ID())
					mp.Delete("0xunknown")
					if mp.Count() != 3 || mp.Contains(tst.txs[1].ID()) {
						t.Fatalf("\t%s\tTest %d:\tShould be able to remove a transaction.", failed, testID)
					}
					t.Logf("\t%s\tTest %d:\tShould be able to remove a transaction.", success, testID)
				}

				t.Run(tst.name, f)
			}
		}
	}
}

func Test_Concurrent(t *testing.T) {
	mp := mempool.New()

	var wg sync.WaitGroup
	for i := range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			mp.Upsert(pending(uint64(i), uint64(i)))
			mp.Copy()
		}()
	}
	wg.Wait()

	if mp.Count() != 50 {
		t.Fatalf("\t%s\tShould be able to add transactions concurrently, got %d.", failed, mp.Count())
	}
	t.Logf("\t%s\tShould be able to add transactions concurrently.", success)
}
