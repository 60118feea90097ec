// Package cmd contains the scenario app commands.
package cmd

import (
	"crypto/ecdsa"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ardanlabs/utxochain/foundation/logger"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	accountsPath string
	genesisPath  string
)

const (
	keyExtension = ".ecdsa"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:           "scenario",
	Short:         "Generate keys, genesis and operation scripts",
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "ERROR:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&accountsPath, "accounts-path", "p", "zblock/accounts/", "Path to the directory with private keys.")
	rootCmd.PersistentFlags().StringVarP(&genesisPath, "genesis", "g", "zblock/genesis.json", "Path to the genesis file.")
}

// newLogger constructs the logger for a command. Logs go to stderr so the
// command output can be redirected.
func newLogger() (*zap.SugaredLogger, error) {
	return logger.New("SCENARIO", "stderr")
}

// loadKeys reads every private key in the accounts folder keyed by name.
func loadKeys() (map[string]*ecdsa.PrivateKey, []string, error) {
	entries, err := os.ReadDir(accountsPath)
	if err != nil {
		return nil, nil, err
	}

	keys := make(map[string]*ecdsa.PrivateKey)
	var names []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), keyExtension) {
			continue
		}

		pk, err := crypto.LoadECDSA(filepath.Join(accountsPath, entry.Name()))
		if err != nil {
			return nil, nil, fmt.Errorf("loading %s: %w", entry.Name(), err)
		}

		name := strings.TrimSuffix(entry.Name(), keyExtension)
		keys[name] = pk
		names = append(names, name)
	}
	sort.Strings(names)

	if len(names) == 0 {
		return nil, nil, fmt.Errorf("no keys found in %s", accountsPath)
	}

	return keys, names, nil
}
