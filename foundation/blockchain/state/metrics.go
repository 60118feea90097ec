package state

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// The gauges are labeled by genesis hash so every chain in the process
// reports its own series.
var (
	prometheusBlocksAccepted   prometheus.Counter
	prometheusBlocksRejected   *prometheus.CounterVec
	prometheusBlocksFinal      prometheus.Counter
	prometheusHeadHeight       *prometheus.GaugeVec
	prometheusBranches         *prometheus.GaugeVec
	prometheusMempoolSize      *prometheus.GaugeVec
	prometheusTxAccepted       prometheus.Counter
	prometheusTxIgnored        *prometheus.CounterVec
	prometheusAssembleDuration prometheus.Histogram
)

var prometheusMetricsInitOnce sync.Once

// initPrometheusMetrics registers the metrics once no matter how many
// states are constructed in the process.
func initPrometheusMetrics() {
	prometheusMetricsInitOnce.Do(_initPrometheusMetrics)
}

func _initPrometheusMetrics() {
	prometheusBlocksAccepted = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "utxochain",
			Subsystem: "state",
			Name:      "blocks_accepted",
			Help:      "Number of blocks added to a branch",
		},
	)

	prometheusBlocksRejected = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "utxochain",
			Subsystem: "state",
			Name:      "blocks_rejected",
			Help:      "Number of blocks rejected by reason",
		},
		[]string{"reason"},
	)

	prometheusBlocksFinal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "utxochain",
			Subsystem: "state",
			Name:      "blocks_final",
			Help:      "Number of blocks pruned from the head's ancestry",
		},
	)

	prometheusHeadHeight = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "utxochain",
			Subsystem: "state",
			Name:      "head_height",
			Help:      "Height of the current head",
		},
		[]string{"chain"},
	)

	prometheusBranches = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "utxochain",
			Subsystem: "state",
			Name:      "retained_blocks",
			Help:      "Number of blocks retained in the branch pool",
		},
		[]string{"chain"},
	)

	prometheusMempoolSize = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "utxochain",
			Subsystem: "state",
			Name:      "mempool_size",
			Help:      "Number of transactions in the mempool",
		},
		[]string{"chain"},
	)

	prometheusTxAccepted = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "utxochain",
			Subsystem: "state",
			Name:      "tx_accepted",
			Help:      "Number of transactions added to the mempool",
		},
	)

	prometheusTxIgnored = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "utxochain",
			Subsystem: "state",
			Name:      "tx_ignored",
			Help:      "Number of transactions not added to the mempool by reason",
		},
		[]string{"reason"},
	)

	prometheusAssembleDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "utxochain",
			Subsystem: "state",
			Name:      "assemble_block_seconds",
			Help:      "Histogram of calls to AssembleBlock",
			Buckets:   prometheus.DefBuckets,
		},
	)
}
