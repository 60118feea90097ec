package commands

import (
	"fmt"
	"sort"

	"github.com/ardanlabs/utxochain/foundation/blockchain/genesis"
)

// Genesis shows the genesis block and the starting balances.
func Genesis(cfg Config) error {
	gen, err := genesis.Load(cfg.GenesisFile)
	if err != nil {
		return err
	}

	block, err := gen.Block()
	if err != nil {
		return err
	}

	fmt.Printf("GenesisBlockHash: %s\n", block.Hash())
	fmt.Printf("ChainID: %d  CutOffAge: %d  TransPerBlock: %d  MiningReward: %d\n\n", gen.ChainID, gen.CutOffAge, gen.TransPerBlock, gen.MiningReward)

	addrs := make([]string, 0, len(gen.Balances))
	for addr := range gen.Balances {
		addrs = append(addrs, addr)
	}
	sort.Strings(addrs)

	for _, addr := range addrs {
		fmt.Printf("Address: %s  Balance: %d\n", addr, gen.Balances[addr])
	}

	return nil
}
