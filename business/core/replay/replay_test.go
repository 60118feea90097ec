package replay_test

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/ardanlabs/utxochain/business/core/replay"
	"github.com/ardanlabs/utxochain/foundation/blockchain/database"
	"github.com/ardanlabs/utxochain/foundation/blockchain/signature"
	"github.com/ardanlabs/utxochain/foundation/blockchain/state"
	"github.com/ethereum/go-ethereum/crypto"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

const (
	alicePK = "fae85851bdf5c9f49923722ce38f3c1defcfd3619ef5453230a58ad805499959"
	bobPK   = "aed31b6b5a3d0b6ed2fbc0b4e4f6b3a0b9e8c2d71b8b6e9a3b0c4b5a6d7e8f90"
)

func ifErrFailNow(t *testing.T, err error) {
	if err != nil {
		t.Error(err)
		t.FailNow()
	}
}

func Test_Apply(t *testing.T) {
	alice, err := crypto.HexToECDSA(alicePK)
	ifErrFailNow(t, err)
	bob, err := crypto.HexToECDSA(bobPK)
	ifErrFailNow(t, err)

	aliceAddr := database.PublicKeyToAddress(alice.PublicKey)
	bobAddr := database.PublicKeyToAddress(bob.PublicKey)

	genesis, err := database.NewBlock(signature.ZeroHash, database.NewCoinbase(aliceAddr, 100), nil)
	ifErrFailNow(t, err)

	newBlock := func(parent string, trans ...database.Tx) database.Block {
		block, err := database.NewBlock(parent, database.NewCoinbase(aliceAddr, 10), trans)
		ifErrFailNow(t, err)
		return block
	}

	tx, err := database.NewTx(
		[]database.UTXO{{TxHash: genesis.Coinbase.ID(), Index: 0}},
		[]database.Output{{Value: 100, Address: bobAddr}},
	)
	ifErrFailNow(t, err)
	tx, err = tx.SignAll(alice)
	ifErrFailNow(t, err)

	b1 := newBlock(genesis.Hash(), tx)
	orphan := newBlock(newBlock(b1.Hash()).Hash())
	b2 := newBlock(b1.Hash())
	b3 := newBlock(b2.Hash())
	stale := newBlock(genesis.Hash())
	spent := newBlock(b3.Hash(), tx)

	var script bytes.Buffer
	enc := replay.NewEncoder(&script)
	ifErrFailNow(t, enc.Tx(tx))
	for _, block := range []database.Block{b1, b1, orphan, b2, b3, stale, spent} {
		ifErrFailNow(t, enc.Block(block))
	}

	t.Log("Given the need to replay a script of operations.")
	{
		t.Logf("\tTest 0:\tWhen the script mixes good and bad blocks.")
		{
			st, err := state.New(state.Config{Genesis: genesis, CutOffAge: 2})
			ifErrFailNow(t, err)

			var events int
			ev := func(v string, args ...any) { events++ }

			sum, err := replay.Apply(context.Background(), st, replay.NewDecoder(&script), ev)
			if err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould be able to apply the script: %s", failed, err)
			}
			t.Logf("\t%s\tTest 0:\tShould be able to apply the script.", success)

			if sum.Transactions != 1 || sum.Accepted != 3 {
				t.Logf("\t\tTest 0:\tgot: %+v", sum)
				t.Fatalf("\t%s\tTest 0:\tShould count the accepted operations.", failed)
			}
			t.Logf("\t%s\tTest 0:\tShould count the accepted operations.", success)

			exp := map[string]int{
				"duplicate_block":     1,
				"unknown_parent":      1,
				"too_old":             1,
				"invalid_transaction": 1,
			}
			for reason, n := range exp {
				if sum.Rejected[reason] != n {
					t.Logf("\t\tTest 0:\tgot: %v", sum.Rejected)
					t.Fatalf("\t%s\tTest 0:\tShould count the %s rejections.", failed, reason)
				}
			}
			t.Logf("\t%s\tTest 0:\tShould count the rejections by reason.", success)

			if sum.Head != b3.Hash() || sum.Height != 4 {
				t.Logf("\t\tTest 0:\tgot: %s %d", sum.Head, sum.Height)
				t.Fatalf("\t%s\tTest 0:\tShould report the head.", failed)
			}
			t.Logf("\t%s\tTest 0:\tShould report the head.", success)

			if events != 7 {
				t.Fatalf("\t%s\tTest 0:\tShould raise an event per block: got %d", failed, events)
			}
			t.Logf("\t%s\tTest 0:\tShould raise an event per block.", success)
		}

		t.Logf("\tTest 1:\tWhen the script holds an unknown operation.")
		{
			st, err := state.New(state.Config{Genesis: genesis})
			ifErrFailNow(t, err)

			dec := replay.NewDecoder(strings.NewReader(`{"op":"mine"}`))
			if _, err := replay.Apply(context.Background(), st, dec, nil); !errors.Is(err, replay.ErrUnknownOp) {
				t.Fatalf("\t%s\tTest 1:\tShould stop with an unknown operation: %v", failed, err)
			}
			t.Logf("\t%s\tTest 1:\tShould stop with an unknown operation.", success)

			dec = replay.NewDecoder(strings.NewReader(`{"op":`))
			if _, err := replay.Apply(context.Background(), st, dec, nil); err == nil {
				t.Fatalf("\t%s\tTest 1:\tShould stop on bad json.", failed)
			}
			t.Logf("\t%s\tTest 1:\tShould stop on bad json.", success)

			dec = replay.NewDecoder(strings.NewReader(`{"op":"tx","tx":{"outputs":[]}} {"op":"mine"}`))
			if _, err := dec.Next(); err != nil {
				t.Fatalf("\t%s\tTest 1:\tShould decode the first operation: %v", failed, err)
			}
			if _, err := dec.Next(); err == nil || !strings.Contains(err.Error(), "op 2:") {
				t.Fatalf("\t%s\tTest 1:\tShould number operations, not lines: %v", failed, err)
			}
			t.Logf("\t%s\tTest 1:\tShould number operations, not lines.", success)
		}

		t.Logf("\tTest 2:\tWhen the context is cancelled.")
		{
			st, err := state.New(state.Config{Genesis: genesis})
			ifErrFailNow(t, err)

			ctx, cancel := context.WithCancel(context.Background())
			cancel()

			var script bytes.Buffer
			ifErrFailNow(t, replay.NewEncoder(&script).Block(b1))

			sum, err := replay.Apply(ctx, st, replay.NewDecoder(&script), nil)
			if !errors.Is(err, context.Canceled) {
				t.Fatalf("\t%s\tTest 2:\tShould stop: %v", failed, err)
			}
			t.Logf("\t%s\tTest 2:\tShould stop.", success)

			if sum.Height != 1 || sum.Head != genesis.Hash() {
				t.Fatalf("\t%s\tTest 2:\tShould not apply anything.", failed)
			}
			t.Logf("\t%s\tTest 2:\tShould not apply anything.", success)
		}
	}
}
