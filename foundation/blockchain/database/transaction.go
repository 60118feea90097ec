package database

import (
	"crypto/ecdsa"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/ardanlabs/utxochain/foundation/blockchain/signature"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/google/uuid"
)

// Input claims an unspent output produced by a previous transaction. The
// signature proves the claimer owns the address the output was sent to.
type Input struct {
	PrevTxHash  string        `json:"prev_tx_hash"` // Bitcoin: Hash of the transaction that produced the output.
	OutputIndex uint32        `json:"output_index"` // Bitcoin: Index of the output inside that transaction.
	Signature   hexutil.Bytes `json:"signature"`    // Ethereum: [R|S|V] signature with the ardan recovery id.
}

// UTXO returns the unspent output this input is claiming.
func (in Input) UTXO() UTXO {
	return UTXO{TxHash: in.PrevTxHash, Index: in.OutputIndex}
}

// Output is a value paid to an address.
type Output struct {
	Value   uint64  `json:"value"`
	Address Address `json:"address"`
}

// =============================================================================

// Tx is a transfer of value that spends a set of unspent outputs and produces
// a new set of outputs. A transaction with no inputs is a coinbase.
type Tx struct {
	Inputs  []Input  `json:"inputs"`
	Outputs []Output `json:"outputs"`
	Nonce   string   `json:"nonce,omitempty"` // Keeps otherwise identical transactions unique.
}

// NewTx constructs an unsigned transaction that claims the specified outputs.
func NewTx(claims []UTXO, outputs []Output) (Tx, error) {
	for i, out := range outputs {
		if !out.Address.IsAddress() {
			return Tx{}, fmt.Errorf("output %d: address %q is not properly formatted", i, out.Address)
		}
	}

	inputs := make([]Input, len(claims))
	for i, u := range claims {
		inputs[i] = Input{PrevTxHash: u.TxHash, OutputIndex: u.Index}
	}

	tx := Tx{
		Inputs:  inputs,
		Outputs: append([]Output(nil), outputs...),
	}

	return tx, nil
}

// NewCoinbase constructs the reward transaction for a block. A random nonce
// keeps two rewards of the same value to the same address distinct.
func NewCoinbase(beneficiary Address, reward uint64) Tx {
	return Tx{
		Outputs: []Output{{Value: reward, Address: beneficiary}},
		Nonce:   uuid.NewString(),
	}
}

// IsCoinbase reports whether the transaction creates value without claiming
// any outputs.
func (tx Tx) IsCoinbase() bool {
	return len(tx.Inputs) == 0
}

// Sign uses the specified private key to sign the input at the specified
// index. A new transaction value is returned so the original is unchanged.
func (tx Tx) Sign(index int, privateKey *ecdsa.PrivateKey) (Tx, error) {
	if index < 0 || index >= len(tx.Inputs) {
		return Tx{}, fmt.Errorf("input index %d out of range [0,%d)", index, len(tx.Inputs))
	}

	sig, err := signature.Sign(tx.signingData(index), privateKey)
	if err != nil {
		return Tx{}, err
	}

	signed := tx.Clone()
	signed.Inputs[index].Signature = sig

	return signed, nil
}

// SignAll signs every input with the same private key. This is the common
// case of a single owner spending several of its outputs.
func (tx Tx) SignAll(privateKey *ecdsa.PrivateKey) (Tx, error) {
	signed := tx
	for i := range tx.Inputs {
		var err error
		if signed, err = signed.Sign(i, privateKey); err != nil {
			return Tx{}, err
		}
	}

	return signed, nil
}

// SignerAddress extracts the address that signed the input at the
// specified index.
func (tx Tx) SignerAddress(index int) (Address, error) {
	if index < 0 || index >= len(tx.Inputs) {
		return "", fmt.Errorf("input index %d out of range [0,%d)", index, len(tx.Inputs))
	}

	addr, err := signature.FromAddress(tx.signingData(index), tx.Inputs[index].Signature)
	if err != nil {
		return "", err
	}

	return Address(addr), nil
}

// ID returns the unique hash that identifies the transaction. The signatures
// are part of the hash.
func (tx Tx) ID() string {
	return signature.Hash(tx)
}

// Hash implements the merkle Hashable interface for providing a hash
// of a transaction.
func (tx Tx) Hash() ([]byte, error) {
	return hex.DecodeString(strings.TrimPrefix(tx.ID(), "0x"))
}

// OutputValue returns the sum of all the output values. The second value is
// false when the sum overflows.
func (tx Tx) OutputValue() (uint64, bool) {
	var sum uint64
	for _, out := range tx.Outputs {
		if sum+out.Value < sum {
			return 0, false
		}
		sum += out.Value
	}

	return sum, true
}

// Fee returns the difference between the value claimed and the value paid
// out, resolving the claimed outputs against the specified pool. The second
// value is false when an input can't be resolved or the outputs exceed the
// inputs.
func (tx Tx) Fee(pool *UTXOPool) (uint64, bool) {
	var in uint64
	for _, input := range tx.Inputs {
		out, exists := pool.Output(input.UTXO())
		if !exists || in+out.Value < in {
			return 0, false
		}
		in += out.Value
	}

	out, ok := tx.OutputValue()
	if !ok || out > in {
		return 0, false
	}

	return in - out, true
}

// String implements the fmt.Stringer interface for logging.
func (tx Tx) String() string {
	id := tx.ID()
	return fmt.Sprintf("%s:in[%d]:out[%d]", id[:10], len(tx.Inputs), len(tx.Outputs))
}

// =============================================================================

// signingData is the value signed for a single input. It commits to every
// claimed output, every produced output, and the position of the input.
type signingData struct {
	Claims  []UTXO   `json:"claims"`
	Outputs []Output `json:"outputs"`
	Nonce   string   `json:"nonce"`
	Index   int      `json:"index"`
}

func (tx Tx) signingData(index int) signingData {
	claims := make([]UTXO, len(tx.Inputs))
	for i, in := range tx.Inputs {
		claims[i] = in.UTXO()
	}

	return signingData{
		Claims:  claims,
		Outputs: tx.Outputs,
		Nonce:   tx.Nonce,
		Index:   index,
	}
}

// Clone returns a copy of the transaction that shares no slices. A nil slice
// stays nil so the copy hashes to the same id.
func (tx Tx) Clone() Tx {
	c := Tx{
		Nonce: tx.Nonce,
	}

	if tx.Outputs != nil {
		c.Outputs = make([]Output, len(tx.Outputs))
		copy(c.Outputs, tx.Outputs)
	}

	if tx.Inputs != nil {
		c.Inputs = make([]Input, len(tx.Inputs))
		for i, in := range tx.Inputs {
			c.Inputs[i] = Input{
				PrevTxHash:  in.PrevTxHash,
				OutputIndex: in.OutputIndex,
				Signature:   append(hexutil.Bytes(nil), in.Signature...),
			}
		}
	}

	return c
}

// =============================================================================

// PendingTx represents a transaction waiting in a mempool to be confirmed by
// a block. This includes the time the transaction was received.
type PendingTx struct {
	Tx
	TimeStamp uint64 `json:"timestamp"` // The time in milliseconds the transaction was received.
}

// NewPendingTx stamps the transaction with the current time.
func NewPendingTx(tx Tx) PendingTx {
	return PendingTx{
		Tx:        tx,
		TimeStamp: uint64(time.Now().UTC().UnixMilli()),
	}
}
