// Package commands contains the functionality for the set of commands
// currently supported by the admin tool.
package commands

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/ardanlabs/utxochain/business/core/replay"
	"github.com/ardanlabs/utxochain/foundation/blockchain/genesis"
	"github.com/ardanlabs/utxochain/foundation/blockchain/state"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrHelp provides context that help was given.
var ErrHelp = errors.New("provided help")

// Config carries the settings shared by every command.
type Config struct {
	GenesisFile    string
	SelectStrategy string
	TombstoneSize  uint
	NameFolder     string
}

// newState loads the genesis file and constructs a chain holding only the
// genesis block.
func newState(log *zap.SugaredLogger, cfg Config) (*state.State, genesis.Genesis, error) {
	gen, err := genesis.Load(cfg.GenesisFile)
	if err != nil {
		return nil, genesis.Genesis{}, err
	}

	block, err := gen.Block()
	if err != nil {
		return nil, genesis.Genesis{}, err
	}

	traceID := uuid.NewString()
	ev := func(v string, args ...any) {
		log.Debugw(fmt.Sprintf(v, args...), "traceid", traceID)
	}

	st, err := state.New(state.Config{
		Genesis:        block,
		CutOffAge:      gen.CutOffAge,
		TransPerBlock:  int(gen.TransPerBlock),
		SelectStrategy: cfg.SelectStrategy,
		TombstoneSize:  cfg.TombstoneSize,
		EvHandler:      ev,
	})
	if err != nil {
		return nil, genesis.Genesis{}, err
	}

	return st, gen, nil
}

// replayFile constructs a chain and applies the script at path to it.
func replayFile(ctx context.Context, log *zap.SugaredLogger, cfg Config, path string) (*state.State, genesis.Genesis, replay.Summary, error) {
	if path == "" {
		return nil, genesis.Genesis{}, replay.Summary{}, errors.New("script path is required")
	}

	st, gen, err := newState(log, cfg)
	if err != nil {
		return nil, genesis.Genesis{}, replay.Summary{}, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, genesis.Genesis{}, replay.Summary{}, err
	}
	defer f.Close()

	ev := func(v string, args ...any) {
		log.Infow(fmt.Sprintf(v, args...))
	}

	sum, err := replay.Apply(ctx, st, replay.NewDecoder(f), ev)
	if err != nil {
		return nil, genesis.Genesis{}, replay.Summary{}, err
	}

	return st, gen, sum, nil
}
