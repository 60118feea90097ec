package cmd

import (
	"encoding/json"
	"os"
	"time"

	"github.com/ardanlabs/utxochain/foundation/blockchain/database"
	"github.com/ardanlabs/utxochain/foundation/blockchain/genesis"
	"github.com/ardanlabs/utxochain/foundation/validate"
	"github.com/spf13/cobra"
)

var (
	chainID       uint16
	cutOffAge     uint64
	transPerBlock uint16
	miningReward  uint64
	balance       uint64
)

// genesisCmd represents the genesis command
var genesisCmd = &cobra.Command{
	Use:   "genesis",
	Short: "Write a genesis file funding every key in the accounts folder",
	RunE: func(cmd *cobra.Command, args []string) error {
		keys, names, err := loadKeys()
		if err != nil {
			return err
		}

		gen := genesis.Genesis{
			Date:          time.Now().UTC().Truncate(time.Second),
			ChainID:       chainID,
			CutOffAge:     cutOffAge,
			TransPerBlock: transPerBlock,
			MiningReward:  miningReward,
			Balances:      make(map[string]uint64, len(names)),
		}
		for _, name := range names {
			gen.Balances[string(database.PublicKeyToAddress(keys[name].PublicKey))] = balance
		}

		if err := validate.Check(gen); err != nil {
			return err
		}

		data, err := json.MarshalIndent(gen, "", "  ")
		if err != nil {
			return err
		}

		return os.WriteFile(genesisPath, append(data, '\n'), 0644)
	},
}

func init() {
	rootCmd.AddCommand(genesisCmd)
	genesisCmd.Flags().Uint16Var(&chainID, "chain-id", 1, "Unique id of the chain.")
	genesisCmd.Flags().Uint64Var(&cutOffAge, "cut-off-age", 10, "How many blocks below the head a branch can still be extended.")
	genesisCmd.Flags().Uint16Var(&transPerBlock, "trans-per-block", 10, "Maximum number of transactions in a block.")
	genesisCmd.Flags().Uint64Var(&miningReward, "reward", 50, "Reward paid to the beneficiary of a block.")
	genesisCmd.Flags().Uint64Var(&balance, "balance", 1000, "Starting balance of every account.")
}
