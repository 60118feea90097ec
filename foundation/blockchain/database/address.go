package database

import (
	"crypto/ecdsa"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// Address represents the hex-encoded account address that owns an output.
// Only the holder of the private key behind the address can spend it.
type Address string

// ToAddress converts a hex-encoded string to an address in its checksum
// form and validates the hex-encoded string is formatted correctly.
func ToAddress(hex string) (Address, error) {
	if !common.IsHexAddress(hex) {
		return "", fmt.Errorf("invalid address format %q", hex)
	}

	return Address(common.HexToAddress(hex).String()), nil
}

// PublicKeyToAddress converts the public key to an address value.
func PublicKeyToAddress(pk ecdsa.PublicKey) Address {
	return Address(crypto.PubkeyToAddress(pk).String())
}

// IsAddress verifies whether the underlying data represents a valid
// hex-encoded address.
func (a Address) IsAddress() bool {
	return common.IsHexAddress(string(a))
}
