package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/ardanlabs/utxochain/foundation/blockchain/database"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/spf13/cobra"
)

// keysCmd represents the keys command
var keysCmd = &cobra.Command{
	Use:   "keys <name>...",
	Short: "Generate a key pair for every name that does not have one",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := os.MkdirAll(accountsPath, 0755); err != nil {
			return err
		}

		for _, name := range args {
			path := filepath.Join(accountsPath, name+keyExtension)

			if _, err := os.Stat(path); !errors.Is(err, fs.ErrNotExist) {
				fmt.Printf("exists:    %s\n", path)
				continue
			}

			privateKey, err := crypto.GenerateKey()
			if err != nil {
				return err
			}

			if err := crypto.SaveECDSA(path, privateKey); err != nil {
				return err
			}

			fmt.Printf("generated: %s  %s\n", path, database.PublicKeyToAddress(privateKey.PublicKey))
		}

		return nil
	},
}

func init() {
	rootCmd.AddCommand(keysCmd)
}
