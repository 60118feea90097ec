// Package replay reads and writes scripts of chain operations and applies
// them to a chain. A script is a stream of JSON values, one operation per
// line, that either submits a transaction or proposes a block.
package replay

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/ardanlabs/utxochain/foundation/blockchain/branch"
	"github.com/ardanlabs/utxochain/foundation/blockchain/database"
)

// Set of operations a script can hold.
const (
	OpTx    = "tx"
	OpBlock = "block"
)

// ErrUnknownOp is returned when a script holds an operation that is not
// supported or is missing its payload.
var ErrUnknownOp = errors.New("unknown operation")

// Op is a single step of a script.
type Op struct {
	Op    string          `json:"op"`
	Tx    *database.Tx    `json:"tx,omitempty"`
	Block *database.Block `json:"block,omitempty"`
}

// =============================================================================

// Decoder reads operations from a script.
type Decoder struct {
	dec   *json.Decoder
	count int // operations decoded so far
}

// NewDecoder constructs a decoder reading from r.
func NewDecoder(r io.Reader) *Decoder {
	return &Decoder{dec: json.NewDecoder(r)}
}

// Next returns the next operation. io.EOF is returned at the end of the
// script.
func (d *Decoder) Next() (Op, error) {
	var op Op
	if err := d.dec.Decode(&op); err != nil {
		if errors.Is(err, io.EOF) {
			return Op{}, io.EOF
		}
		return Op{}, fmt.Errorf("op %d: decoding: %w", d.count+1, err)
	}
	d.count++

	switch {
	case op.Op == OpTx && op.Tx != nil:
	case op.Op == OpBlock && op.Block != nil:
	default:
		return Op{}, fmt.Errorf("op %d: %w: %q", d.count, ErrUnknownOp, op.Op)
	}

	return op, nil
}

// Encoder writes operations to a script.
type Encoder struct {
	enc *json.Encoder
}

// NewEncoder constructs an encoder writing to w.
func NewEncoder(w io.Writer) *Encoder {
	return &Encoder{enc: json.NewEncoder(w)}
}

// Tx writes a transaction submission.
func (e *Encoder) Tx(tx database.Tx) error {
	return e.enc.Encode(Op{Op: OpTx, Tx: &tx})
}

// Block writes a block proposal.
func (e *Encoder) Block(block database.Block) error {
	return e.enc.Encode(Op{Op: OpBlock, Block: &block})
}

// =============================================================================

// Chain is the behavior required to apply a script.
type Chain interface {
	AddBlock(block database.Block) error
	AddTransaction(tx database.Tx)
	HeadBlock() database.Block
	HeadHeight() uint64
}

// EventHandler defines a function that is called when events
// occur while applying a script.
type EventHandler func(v string, args ...any)

// Summary reports what happened while applying a script.
type Summary struct {
	Transactions int            `json:"transactions"`
	Accepted     int            `json:"accepted"`
	Rejected     map[string]int `json:"rejected"`
	Head         string         `json:"head"`
	Height       uint64         `json:"height"`
}

// Apply feeds every operation of the script to the chain. A rejected block
// is counted by reason and never stops the replay. Decoding errors and
// cancellation do, returning the summary so far.
func Apply(ctx context.Context, ch Chain, dec *Decoder, ev EventHandler) (Summary, error) {
	if ev == nil {
		ev = func(v string, args ...any) {}
	}

	sum := Summary{
		Rejected: make(map[string]int),
	}

	finish := func(err error) (Summary, error) {
		sum.Head = ch.HeadBlock().Hash()
		sum.Height = ch.HeadHeight()
		return sum, err
	}

	for {
		if err := ctx.Err(); err != nil {
			return finish(err)
		}

		op, err := dec.Next()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return finish(nil)
			}
			return finish(err)
		}

		switch op.Op {
		case OpTx:
			ch.AddTransaction(*op.Tx)
			sum.Transactions++

		case OpBlock:
			if err := ch.AddBlock(*op.Block); err != nil {
				reason := branch.Reason(err)
				sum.Rejected[reason]++
				ev("replay: Apply: block[%s]: REJECTED: %s: %s", op.Block.Hash(), reason, err)
				continue
			}
			sum.Accepted++
			ev("replay: Apply: block[%s]: ACCEPTED", op.Block.Hash())
		}
	}
}
