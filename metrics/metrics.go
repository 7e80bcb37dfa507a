package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	dispatches    = prometheus.NewCounterVec(prometheus.CounterOpts{Name: "slackstorm_dispatch_total", Help: "Snippet dispatches by outcome"}, []string{"result"})
	relayRequests = prometheus.NewCounterVec(prometheus.CounterOpts{Name: "slackstorm_relay_requests_total", Help: "Relay requests by status code"}, []string{"code"})
)

func init() {
	prometheus.MustRegister(dispatches, relayRequests)
}

func Handler() http.Handler { return promhttp.Handler() }

func IncDispatch(result string) { dispatches.WithLabelValues(result).Inc() }

func IncRelayRequest(code string) { relayRequests.WithLabelValues(code).Inc() }
