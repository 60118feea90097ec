// Package scenario drives a chain with signed transfers between a set of
// accounts and records every operation as a replay script.
package scenario

import (
	"crypto/ecdsa"
	"errors"
	"fmt"
	"sort"

	"github.com/ardanlabs/utxochain/business/core/replay"
	"github.com/ardanlabs/utxochain/foundation/blockchain/database"
	"github.com/ardanlabs/utxochain/foundation/blockchain/genesis"
	"github.com/ardanlabs/utxochain/foundation/blockchain/state"
)

// EventHandler defines a function that is called when events
// occur while building a scenario.
type EventHandler func(v string, args ...any)

// Config represents the settings for building a scenario.
type Config struct {
	Genesis   genesis.Genesis
	Keys      map[string]*ecdsa.PrivateKey
	Miner     string
	Blocks    int
	ForkAt    int
	Stale     bool
	EvHandler EventHandler
}

// Report describes the script that was written.
type Report struct {
	Transactions int    `json:"transactions"`
	Blocks       int    `json:"blocks"`
	Forks        int    `json:"forks"`
	Stale        int    `json:"stale"`
	Head         string `json:"head"`
	Height       uint64 `json:"height"`
}

// Build runs the scenario against a fresh chain and writes every operation
// to the encoder. In every round each account sends half of one of its
// unspent outputs to the next account and the miner assembles a block on
// the head. At round ForkAt a competing empty block is proposed next to the
// new head. With Stale set a block extending genesis is proposed last.
func Build(cfg Config, enc *replay.Encoder) (Report, error) {
	ev := func(v string, args ...any) {
		if cfg.EvHandler != nil {
			cfg.EvHandler(v, args...)
		}
	}

	names := make([]string, 0, len(cfg.Keys))
	addrs := make(map[string]database.Address, len(cfg.Keys))
	for name, pk := range cfg.Keys {
		names = append(names, name)
		addrs[name] = database.PublicKeyToAddress(pk.PublicKey)
	}
	sort.Strings(names)

	if len(names) < 2 {
		return Report{}, errors.New("at least two accounts are required")
	}

	miner, exists := addrs[cfg.Miner]
	if !exists {
		return Report{}, fmt.Errorf("miner %q has no key", cfg.Miner)
	}

	genesisBlock, err := cfg.Genesis.Block()
	if err != nil {
		return Report{}, err
	}

	st, err := state.New(state.Config{
		Genesis:       genesisBlock,
		CutOffAge:     cfg.Genesis.CutOffAge,
		TransPerBlock: int(cfg.Genesis.TransPerBlock),
		EvHandler:     state.EventHandler(ev),
	})
	if err != nil {
		return Report{}, err
	}

	var rpt Report
	claimed := make(map[database.UTXO]struct{})

	for round := 1; round <= cfg.Blocks; round++ {
		pool := st.HeadUTXOPool()

		for i, name := range names {
			claim, out, ok := owned(pool, addrs[name], claimed)
			if !ok || out.Value < 2 {
				continue
			}

			send := out.Value / 2
			outputs := []database.Output{
				{Value: send, Address: addrs[names[(i+1)%len(names)]]},
				{Value: out.Value - send, Address: addrs[name]},
			}

			tx, err := database.NewTx([]database.UTXO{claim}, outputs)
			if err != nil {
				return Report{}, err
			}

			if tx, err = tx.SignAll(cfg.Keys[name]); err != nil {
				return Report{}, err
			}
			claimed[claim] = struct{}{}

			st.AddTransaction(tx)
			if err := enc.Tx(tx); err != nil {
				return Report{}, err
			}
			rpt.Transactions++
		}

		block, err := st.AssembleBlock(miner, cfg.Genesis.MiningReward)
		if err != nil {
			return Report{}, err
		}

		if err := st.AddBlock(block); err != nil {
			return Report{}, fmt.Errorf("round %d: %w", round, err)
		}
		if err := enc.Block(block); err != nil {
			return Report{}, err
		}
		rpt.Blocks++

		if round == cfg.ForkAt {
			fork, err := database.NewBlock(block.Header.PrevBlockHash, database.NewCoinbase(miner, cfg.Genesis.MiningReward), nil)
			if err != nil {
				return Report{}, err
			}

			if err := st.AddBlock(fork); err != nil {
				return Report{}, fmt.Errorf("round %d: fork: %w", round, err)
			}
			if err := enc.Block(fork); err != nil {
				return Report{}, err
			}
			rpt.Forks++

			ev("scenario: Build: round[%d]: fork[%s]: head[%s]", round, fork.Hash(), block.Hash())
		}
	}

	if cfg.Stale {
		stale, err := database.NewBlock(genesisBlock.Hash(), database.NewCoinbase(miner, cfg.Genesis.MiningReward), nil)
		if err != nil {
			return Report{}, err
		}

		if err := st.AddBlock(stale); err != nil {
			ev("scenario: Build: stale[%s]: %s", stale.Hash(), err)
		}
		if err := enc.Block(stale); err != nil {
			return Report{}, err
		}
		rpt.Stale++
	}

	rpt.Head = st.HeadBlock().Hash()
	rpt.Height = st.HeadHeight()

	return rpt, nil
}

// owned finds the first unspent output of the address that has not been
// claimed yet.
func owned(pool *database.UTXOPool, addr database.Address, claimed map[database.UTXO]struct{}) (database.UTXO, database.Output, bool) {
	for _, u := range pool.UTXOs() {
		if _, exists := claimed[u]; exists {
			continue
		}

		out, _ := pool.Output(u)
		if out.Address == addr {
			return u, out, true
		}
	}

	return database.UTXO{}, database.Output{}, false
}
