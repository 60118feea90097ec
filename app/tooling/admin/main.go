// This program performs administrative tasks for the chain: it inspects the
// genesis file and replays operation scripts to report on the result.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/ardanlabs/conf/v3"
	"github.com/ardanlabs/utxochain/app/tooling/admin/commands"
	"github.com/ardanlabs/utxochain/foundation/logger"
	"go.uber.org/zap"
)

// build is the git version of this program. It is set using build flags in the makefile.
var build = "develop"

func main() {

	// Construct the application logger.
	log, err := logger.New("ADMIN", "stderr")
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	defer log.Sync()

	// Perform the startup and shutdown sequence.
	if err := run(log); err != nil {
		log.Errorw("startup", "ERROR", err)
		log.Sync()
		os.Exit(1)
	}
}

func run(log *zap.SugaredLogger) error {

	// =========================================================================
	// Configuration

	cfg := struct {
		conf.Version
		Args  conf.Args
		Chain struct {
			GenesisFile    string `conf:"default:zblock/genesis.json"`
			SelectStrategy string `conf:"default:oldest"`
			TombstoneSize  uint   `conf:"default:1024"`
		}
		NameService struct {
			Folder string `conf:"default:zblock/accounts/"`
		}
	}{
		Version: conf.Version{
			Build: build,
			Desc:  "copyright information here",
		},
	}

	const prefix = "ADMIN"
	help, err := conf.Parse(prefix, &cfg)
	if err != nil {
		if errors.Is(err, conf.ErrHelpWanted) {
			fmt.Println(help)
			return nil
		}
		return fmt.Errorf("parsing config: %w", err)
	}

	out, err := conf.String(&cfg)
	if err != nil {
		return fmt.Errorf("generating config for output: %w", err)
	}
	log.Infow("startup", "config", out)

	// =========================================================================
	// Commands

	ccfg := commands.Config{
		GenesisFile:    cfg.Chain.GenesisFile,
		SelectStrategy: cfg.Chain.SelectStrategy,
		TombstoneSize:  cfg.Chain.TombstoneSize,
		NameFolder:     cfg.NameService.Folder,
	}

	if err := processCommands(context.Background(), cfg.Args, log, ccfg); err != nil {
		if errors.Is(err, commands.ErrHelp) {
			return nil
		}
		return err
	}

	return nil
}

// processCommands handles the execution of the commands specified on
// the command line.
func processCommands(ctx context.Context, args conf.Args, log *zap.SugaredLogger, cfg commands.Config) error {
	switch args.Num(0) {
	case "genesis":
		if err := commands.Genesis(cfg); err != nil {
			return fmt.Errorf("showing genesis: %w", err)
		}

	case "replay":
		if err := commands.Replay(ctx, log, cfg, args.Num(1)); err != nil {
			return fmt.Errorf("replaying script: %w", err)
		}

	case "bals":
		if err := commands.Balances(ctx, log, cfg, args.Num(1), args.Num(2)); err != nil {
			return fmt.Errorf("getting balances: %w", err)
		}

	case "branches":
		if err := commands.Branches(ctx, log, cfg, args.Num(1)); err != nil {
			return fmt.Errorf("getting branches: %w", err)
		}

	case "assemble":
		if err := commands.Assemble(ctx, log, cfg, args.Num(1), args.Num(2)); err != nil {
			return fmt.Errorf("assembling block: %w", err)
		}

	case "proof":
		if err := commands.Proof(ctx, log, cfg, args.Num(1), args.Num(2)); err != nil {
			return fmt.Errorf("proving transaction: %w", err)
		}

	default:
		fmt.Println("genesis:            show the genesis block and balances")
		fmt.Println("replay <script>:    replay a script and show the summary")
		fmt.Println("bals <script> [n]:  replay a script and show the head balances")
		fmt.Println("branches <script>:  replay a script and show the retained blocks")
		fmt.Println("assemble <script> <beneficiary>: replay a script and assemble the next block")
		fmt.Println("proof <script> <txid>: replay a script and prove a transaction is on the head branch")
		fmt.Println("provide a command to get more help.")
		return commands.ErrHelp
	}

	return nil
}
