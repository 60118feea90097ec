// Package nameservice reads a folder of private key files and creates a name
// service lookup for the addresses they control.
package nameservice

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/ardanlabs/utxochain/foundation/blockchain/database"
	"github.com/ethereum/go-ethereum/crypto"
)

// NameService maintains a map of addresses for name lookup.
type NameService struct {
	names map[database.Address]string
	addrs map[string]database.Address
}

// New constructs a name service with the addresses of every .ecdsa key file
// found under the root folder. The file name without extension is the name.
func New(root string) (*NameService, error) {
	ns := NameService{
		names: make(map[database.Address]string),
		addrs: make(map[string]database.Address),
	}

	fn := func(fileName string, d fs.DirEntry, err error) error {
		if err != nil {
			return fmt.Errorf("walkdir failure: %w", err)
		}

		if d.IsDir() || filepath.Ext(fileName) != ".ecdsa" {
			return nil
		}

		privateKey, err := crypto.LoadECDSA(fileName)
		if err != nil {
			return fmt.Errorf("loading %s: %w", fileName, err)
		}

		addr := database.PublicKeyToAddress(privateKey.PublicKey)
		name := strings.TrimSuffix(filepath.Base(fileName), ".ecdsa")

		ns.names[addr] = name
		ns.addrs[name] = addr

		return nil
	}

	if err := filepath.WalkDir(root, fn); err != nil {
		return nil, fmt.Errorf("walking directory: %w", err)
	}

	return &ns, nil
}

// Lookup returns the name for the specified address. The address itself is
// returned when there is no name for it.
func (ns *NameService) Lookup(addr database.Address) string {
	if a, err := database.ToAddress(string(addr)); err == nil {
		addr = a
	}

	name, exists := ns.names[addr]
	if !exists {
		return string(addr)
	}
	return name
}

// Address returns the address for the specified name.
func (ns *NameService) Address(name string) (database.Address, bool) {
	addr, exists := ns.addrs[name]
	return addr, exists
}

// Copy returns a copy of the map of names and addresses.
func (ns *NameService) Copy() map[database.Address]string {
	cpy := make(map[database.Address]string, len(ns.names))
	for addr, name := range ns.names {
		cpy[addr] = name
	}
	return cpy
}
