package state

import (
	"testing"

	"github.com/ardanlabs/utxochain/foundation/blockchain/database"
	"github.com/ardanlabs/utxochain/foundation/blockchain/signature"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestInitPrometheusMetrics(t *testing.T) {
	initPrometheusMetrics()
	initPrometheusMetrics()

	families, err := prometheus.DefaultGatherer.Gather()
	require.NoError(t, err)

	names := make(map[string]bool)
	for _, family := range families {
		names[family.GetName()] = true
	}

	require.True(t, names["utxochain_state_blocks_accepted"])
	require.True(t, names["utxochain_state_tx_accepted"])
}

func TestBlockMetrics(t *testing.T) {
	genesis, err := database.NewBlock(signature.ZeroHash, database.NewCoinbase("0xdd6B972ffcc631a62CAE1BB9d80b7ff429c8ebA4", 100), nil)
	require.NoError(t, err)

	st, err := New(Config{Genesis: genesis})
	require.NoError(t, err)

	accepted := testutil.ToFloat64(prometheusBlocksAccepted)
	unknown := testutil.ToFloat64(prometheusBlocksRejected.WithLabelValues("unknown_parent"))

	block, err := st.AssembleBlock("0xdd6B972ffcc631a62CAE1BB9d80b7ff429c8ebA4", 10)
	require.NoError(t, err)
	require.NoError(t, st.AddBlock(block))

	orphan, err := database.NewBlock("0x01", database.NewCoinbase("0xdd6B972ffcc631a62CAE1BB9d80b7ff429c8ebA4", 10), nil)
	require.NoError(t, err)
	require.Error(t, st.AddBlock(orphan))

	require.Equal(t, accepted+1, testutil.ToFloat64(prometheusBlocksAccepted))
	require.Equal(t, unknown+1, testutil.ToFloat64(prometheusBlocksRejected.WithLabelValues("unknown_parent")))
	require.Equal(t, float64(2), testutil.ToFloat64(prometheusHeadHeight.WithLabelValues(genesis.Hash())))
	require.Equal(t, float64(2), testutil.ToFloat64(prometheusBranches.WithLabelValues(genesis.Hash())))
}

func TestGaugesPerChain(t *testing.T) {
	first, err := database.NewBlock(signature.ZeroHash, database.NewCoinbase("0xdd6B972ffcc631a62CAE1BB9d80b7ff429c8ebA4", 100), nil)
	require.NoError(t, err)
	second, err := database.NewBlock(signature.ZeroHash, database.NewCoinbase("0xdd6B972ffcc631a62CAE1BB9d80b7ff429c8ebA4", 100), nil)
	require.NoError(t, err)

	st, err := New(Config{Genesis: first})
	require.NoError(t, err)

	block, err := st.AssembleBlock("0xdd6B972ffcc631a62CAE1BB9d80b7ff429c8ebA4", 10)
	require.NoError(t, err)
	require.NoError(t, st.AddBlock(block))

	_, err = New(Config{Genesis: second})
	require.NoError(t, err)

	require.Equal(t, float64(2), testutil.ToFloat64(prometheusHeadHeight.WithLabelValues(first.Hash())))
	require.Equal(t, float64(1), testutil.ToFloat64(prometheusHeadHeight.WithLabelValues(second.Hash())))
}
