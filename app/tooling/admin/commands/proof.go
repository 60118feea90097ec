package commands

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"
)

// Proof replays a script and shows the merkle proof that the transaction is
// carried by a block on the head branch.
func Proof(ctx context.Context, log *zap.SugaredLogger, cfg Config, path string, txID string) error {
	if txID == "" {
		return errors.New("transaction id is required")
	}

	st, _, _, err := replayFile(ctx, log, cfg, path)
	if err != nil {
		return err
	}

	block, proof, err := st.QueryTxProof(txID)
	if err != nil {
		return err
	}

	tx := block.Values()[proof.Index]
	if err := block.VerifyProof(tx, proof); err != nil {
		return fmt.Errorf("verifying proof: %w", err)
	}

	data, err := json.MarshalIndent(proof, "", "  ")
	if err != nil {
		return err
	}

	fmt.Printf("BlockHash: %s\nTransRoot: %s\n%s\n", block.Hash(), block.Header.TransRoot, data)

	return nil
}
