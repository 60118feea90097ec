// Package validator provides the default rules for deciding whether a
// transaction can be applied to a pool of unspent outputs.
package validator

import (
	"errors"
	"fmt"

	"github.com/ardanlabs/utxochain/foundation/blockchain/database"
)

// Set of rules a transaction can break.
var (
	ErrNoInputs          = errors.New("transaction claims no outputs")
	ErrMissingOutput     = errors.New("claimed output is not unspent")
	ErrDoubleClaim       = errors.New("output claimed more than once")
	ErrBadSignature      = errors.New("input signature does not match output owner")
	ErrBadAddress        = errors.New("output address is not properly formatted")
	ErrOverflow          = errors.New("value overflow")
	ErrInsufficientInput = errors.New("outputs exceed inputs")
)

// TxHandler applies the default rules. The zero value is ready for use.
type TxHandler struct{}

// New constructs a transaction handler.
func New() TxHandler {
	return TxHandler{}
}

// ValidateTx checks the transaction against the pool. The transaction is
// valid when every claimed output is unspent and owned by the signer of its
// input, no output is claimed twice, and the claimed value covers the value
// paid out. The pool is never modified.
func (TxHandler) ValidateTx(pool *database.UTXOPool, tx database.Tx) error {
	if len(tx.Inputs) == 0 {
		return ErrNoInputs
	}

	claimed := make(map[database.UTXO]struct{}, len(tx.Inputs))

	var in uint64
	for i, input := range tx.Inputs {
		u := input.UTXO()

		out, exists := pool.Output(u)
		if !exists {
			return fmt.Errorf("input %d: %w: %s", i, ErrMissingOutput, u)
		}

		if _, exists := claimed[u]; exists {
			return fmt.Errorf("input %d: %w: %s", i, ErrDoubleClaim, u)
		}
		claimed[u] = struct{}{}

		signer, err := tx.SignerAddress(i)
		if err != nil {
			return fmt.Errorf("input %d: %w: %s", i, ErrBadSignature, err)
		}
		if !sameAddress(signer, out.Address) {
			return fmt.Errorf("input %d: %w: signer %s, owner %s", i, ErrBadSignature, signer, out.Address)
		}

		if in+out.Value < in {
			return fmt.Errorf("input %d: %w", i, ErrOverflow)
		}
		in += out.Value
	}

	for i, out := range tx.Outputs {
		if !out.Address.IsAddress() {
			return fmt.Errorf("output %d: %w: %q", i, ErrBadAddress, out.Address)
		}
	}

	out, ok := tx.OutputValue()
	if !ok {
		return fmt.Errorf("outputs: %w", ErrOverflow)
	}

	if out > in {
		return fmt.Errorf("%w: in %d, out %d", ErrInsufficientInput, in, out)
	}

	return nil
}

// sameAddress compares two addresses ignoring the checksum casing.
func sameAddress(a, b database.Address) bool {
	x, err := database.ToAddress(string(a))
	if err != nil {
		return false
	}

	y, err := database.ToAddress(string(b))
	if err != nil {
		return false
	}

	return x == y
}
