package commands

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// Branches replays a script and shows every retained block.
func Branches(ctx context.Context, log *zap.SugaredLogger, cfg Config, path string) error {
	st, _, _, err := replayFile(ctx, log, cfg, path)
	if err != nil {
		return err
	}

	for _, n := range st.QueryBranches() {
		head := ""
		if n.Head {
			head = "  <- head"
		}
		fmt.Printf("Height: %3d  Block: %s  Parent: %s  Trans: %d  UTXOs: %d  Pending: %d  State: %s%s\n",
			n.Height, n.Hash, n.ParentHash, len(n.Block.Trans), n.UTXOs, n.Pending, n.State, head)
	}

	return nil
}
