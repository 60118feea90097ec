package database_test

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/ardanlabs/utxochain/foundation/blockchain/database"
	"github.com/ardanlabs/utxochain/foundation/blockchain/signature"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/require"
)

const (
	alicePK = "fae85851bdf5c9f49923722ce38f3c1defcfd3619ef5453230a58ad805499959"
	bobPK   = "aed31b6b5a3d0b6ed2fbc0b4e4f6b3a0b9e8c2d71b8b6e9a3b0c4b5a6d7e8f90"
)

func address(t *testing.T, hexKey string) database.Address {
	t.Helper()

	pk, err := crypto.HexToECDSA(hexKey)
	require.NoError(t, err)

	return database.PublicKeyToAddress(pk.PublicKey)
}

func TestSignInputs(t *testing.T) {
	alice := address(t, alicePK)
	bob := address(t, bobPK)

	coinbase := database.NewCoinbase(alice, 100)
	require.True(t, coinbase.IsCoinbase())

	tx, err := database.NewTx(
		[]database.UTXO{{TxHash: coinbase.ID(), Index: 0}},
		[]database.Output{{Value: 60, Address: bob}, {Value: 40, Address: alice}},
	)
	require.NoError(t, err)
	require.False(t, tx.IsCoinbase())

	pk, err := crypto.HexToECDSA(alicePK)
	require.NoError(t, err)

	signed, err := tx.SignAll(pk)
	require.NoError(t, err)
	require.Empty(t, tx.Inputs[0].Signature, "signing must not mutate the original")
	require.NotEqual(t, tx.ID(), signed.ID(), "signatures are part of the id")

	signer, err := signed.SignerAddress(0)
	require.NoError(t, err)
	require.Equal(t, alice, signer)

	_, err = signed.Sign(1, pk)
	require.Error(t, err)

	_, err = database.NewTx(nil, []database.Output{{Value: 1, Address: "bill"}})
	require.Error(t, err)
}

func TestUTXOPool(t *testing.T) {
	alice := address(t, alicePK)
	bob := address(t, bobPK)

	coinbase := database.NewCoinbase(alice, 100)

	pool := database.NewUTXOPool()
	pool.ApplyTx(coinbase)
	require.Equal(t, 1, pool.Len())

	claim := database.UTXO{TxHash: coinbase.ID(), Index: 0}
	require.True(t, pool.Contains(claim))

	cpy := pool.Copy()
	require.True(t, pool.Equal(cpy))
	require.Equal(t, pool.Hash(), cpy.Hash())

	tx, err := database.NewTx([]database.UTXO{claim}, []database.Output{{Value: 70, Address: bob}})
	require.NoError(t, err)

	fee, ok := tx.Fee(pool)
	require.True(t, ok)
	require.Equal(t, uint64(30), fee)

	cpy.ApplyTx(tx)
	require.False(t, cpy.Contains(claim))
	require.True(t, pool.Contains(claim), "a copy must never alias the original")
	require.False(t, pool.Equal(cpy))
	require.NotEqual(t, pool.Hash(), cpy.Hash())

	require.Equal(t, map[database.Address]uint64{bob: 70}, cpy.Balances())
	require.Equal(t, []database.UTXO{{TxHash: tx.ID(), Index: 0}}, cpy.UTXOs())

	_, ok = tx.Fee(cpy)
	require.False(t, ok, "claimed output is gone")

	cpy.Remove(claim)
	require.Equal(t, 1, cpy.Len())

	var zero database.UTXOPool
	zero.Add(claim, database.Output{Value: 1, Address: alice})
	require.Equal(t, 1, zero.Len())
}

func TestBlock(t *testing.T) {
	alice := address(t, alicePK)

	genesis, err := database.NewBlock(signature.ZeroHash, database.NewCoinbase(alice, 100), nil)
	require.NoError(t, err)
	require.True(t, genesis.IsGenesis())
	require.NoError(t, genesis.ValidateTransRoot())

	block, err := database.NewBlock(genesis.Hash(), database.NewCoinbase(alice, 50), nil)
	require.NoError(t, err)
	require.False(t, block.IsGenesis())
	require.Len(t, block.Values(), 1)

	data, err := json.Marshal(block)
	require.NoError(t, err)

	var decoded database.Block
	require.NoError(t, json.Unmarshal(data, &decoded))
	require.Equal(t, block.Hash(), decoded.Hash())
	require.NoError(t, decoded.ValidateTransRoot())

	decoded.Coinbase.Outputs[0].Value = 5000
	err = decoded.ValidateTransRoot()
	require.True(t, errors.Is(err, database.ErrTransRootMismatch))
}

func TestProof(t *testing.T) {
	alice := address(t, alicePK)
	bob := address(t, bobPK)

	coinbase := database.NewCoinbase(alice, 100)
	genesis, err := database.NewBlock(signature.ZeroHash, coinbase, nil)
	require.NoError(t, err)

	tx, err := database.NewTx(
		[]database.UTXO{{TxHash: coinbase.ID(), Index: 0}},
		[]database.Output{{Value: 100, Address: bob}},
	)
	require.NoError(t, err)
	other := database.NewCoinbase(bob, 1)

	block, err := database.NewBlock(genesis.Hash(), database.NewCoinbase(alice, 10), []database.Tx{tx, other})
	require.NoError(t, err)

	proof, err := block.Proof(tx.ID())
	require.NoError(t, err)
	require.Equal(t, 1, proof.Index)
	require.Len(t, proof.Hashes, 2)
	require.NoError(t, block.VerifyProof(tx, proof))

	require.Error(t, block.VerifyProof(other, proof), "the proof is bound to its transaction")

	_, err = block.Proof("0xmissing")
	require.ErrorIs(t, err, database.ErrTxNotInBlock)
}
