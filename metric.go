package mintseed

import (
	"github.com/prometheus/client_golang/prometheus"
)

const (
	MetricNameSpace = "mintseed"
)

var (
	mintResultCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: MetricNameSpace,
			Name:      "mint_result_total",
			Help:      "terminal outcomes of mint requests",
		},
		[]string{"result"},
	)

	issuedSupply = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: MetricNameSpace,
			Name:      "issued_supply",
			Help:      "assets minted under the collection tree",
		},
	)
)

func init() {
	prometheus.MustRegister(
		mintResultCounter,
		issuedSupply,
	)
}

func metricMintResult(result string) {
	mintResultCounter.WithLabelValues(result).Inc()
}

func metricIssuedSupply(count uint64) {
	issuedSupply.Set(float64(count))
}
