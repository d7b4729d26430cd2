package engine

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type riskMetrics struct {
	ticksProcessed prometheus.Counter
	rulesTriggered *prometheus.CounterVec
	sellAmount     *prometheus.CounterVec
	openTrades     prometheus.Gauge
}

func newRiskMetrics(reg prometheus.Registerer) *riskMetrics {
	f := promauto.With(reg)
	return &riskMetrics{
		ticksProcessed: f.NewCounter(prometheus.CounterOpts{
			Namespace: "algotrader",
			Subsystem: "risk",
			Name:      "ticks_processed_total",
			Help:      "Total number of price ticks evaluated",
		}),
		rulesTriggered: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "algotrader",
			Subsystem: "risk",
			Name:      "rules_triggered_total",
			Help:      "Total number of risk rules that triggered a sell",
		}, []string{"kind", "risk_type"}),
		sellAmount: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "algotrader",
			Subsystem: "risk",
			Name:      "sell_amount_total",
			Help:      "Target symbol amount sold by risk rules",
		}, []string{"symbol"}),
		openTrades: f.NewGauge(prometheus.GaugeOpts{
			Namespace: "algotrader",
			Subsystem: "risk",
			Name:      "open_trades",
			Help:      "Number of trades currently managed",
		}),
	}
}
