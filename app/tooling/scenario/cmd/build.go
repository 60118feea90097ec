package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/ardanlabs/utxochain/business/core/replay"
	"github.com/ardanlabs/utxochain/business/core/scenario"
	"github.com/ardanlabs/utxochain/foundation/blockchain/genesis"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var (
	minerName string
	blocks    int
	forkAt    int
	stale     bool
	outPath   string
)

// buildCmd represents the build command
var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Write a replay script of signed transfers and blocks",
	RunE: func(cmd *cobra.Command, args []string) error {
		log, err := newLogger()
		if err != nil {
			return err
		}
		defer log.Sync()

		gen, err := genesis.Load(genesisPath)
		if err != nil {
			return err
		}

		keys, _, err := loadKeys()
		if err != nil {
			return err
		}

		f, err := os.Create(outPath)
		if err != nil {
			return err
		}
		defer f.Close()

		traceID := uuid.NewString()
		ev := func(v string, args ...any) {
			log.Debugw(fmt.Sprintf(v, args...), "traceid", traceID)
		}

		rpt, err := scenario.Build(scenario.Config{
			Genesis:   gen,
			Keys:      keys,
			Miner:     minerName,
			Blocks:    blocks,
			ForkAt:    forkAt,
			Stale:     stale,
			EvHandler: ev,
		}, replay.NewEncoder(f))
		if err != nil {
			return err
		}

		data, err := json.MarshalIndent(rpt, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(data))

		log.Infow("build", "status", "completed", "script", outPath, "head", rpt.Head, "height", rpt.Height)

		return nil
	},
}

func init() {
	rootCmd.AddCommand(buildCmd)
	buildCmd.Flags().StringVarP(&minerName, "miner", "m", "miner1", "Name of the account receiving the block rewards.")
	buildCmd.Flags().IntVarP(&blocks, "blocks", "b", 15, "Number of blocks to build on the head.")
	buildCmd.Flags().IntVar(&forkAt, "fork-at", 3, "Round that also proposes a competing block, 0 disables it.")
	buildCmd.Flags().BoolVar(&stale, "stale", true, "Propose a block extending genesis at the end.")
	buildCmd.Flags().StringVarP(&outPath, "out", "o", "zblock/script.jsonl", "Path of the script to write.")
}
