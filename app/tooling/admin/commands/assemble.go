package commands

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ardanlabs/utxochain/foundation/blockchain/database"
	"github.com/ardanlabs/utxochain/foundation/nameservice"
	"go.uber.org/zap"
)

// Assemble replays a script and shows the block that would be built next on
// the head, paying the mining reward to the beneficiary.
func Assemble(ctx context.Context, log *zap.SugaredLogger, cfg Config, path string, beneficiary string) error {
	st, gen, _, err := replayFile(ctx, log, cfg, path)
	if err != nil {
		return err
	}

	ns, err := nameservice.New(cfg.NameFolder)
	if err != nil {
		return err
	}

	addr, exists := ns.Address(beneficiary)
	if !exists {
		if addr, err = database.ToAddress(beneficiary); err != nil {
			return fmt.Errorf("beneficiary: %w", err)
		}
	}

	block, err := st.AssembleBlock(addr, gen.MiningReward)
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(block, "", "  ")
	if err != nil {
		return err
	}

	fmt.Printf("BlockHash: %s\n%s\n", block.Hash(), data)

	return nil
}
