package commands

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"
)

// Replay applies a script and shows the summary.
func Replay(ctx context.Context, log *zap.SugaredLogger, cfg Config, path string) error {
	_, _, sum, err := replayFile(ctx, log, cfg, path)
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(sum, "", "  ")
	if err != nil {
		return err
	}

	fmt.Println(string(data))

	return nil
}
