package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	GateRejections = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "growtech",
		Name:      "gate_rejections_total",
		Help:      "Protected page visits turned away by the role gate.",
	}, []string{"role"})

	APICalls = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "growtech",
		Name:      "api_calls_total",
		Help:      "Calls to the external API by endpoint and outcome.",
	}, []string{"endpoint", "outcome"})
)

const (
	OutcomeOK        = "ok"
	OutcomeServer    = "server_error"
	OutcomeTransport = "transport_error"
)
