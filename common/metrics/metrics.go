package metrics

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcome labels the result of an operation.
type Outcome string

const (
	Success Outcome = "success"
	Error   Outcome = "error"
)

func (o Outcome) String() string {
	return string(o)
}

// OutcomeOf maps a nil error to Success.
func OutcomeOf(err error) Outcome {
	if err != nil {
		return Error
	}
	return Success
}

var (
	once sync.Once

	httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Histogram of served request durations in seconds.",
			Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.5, 1, 2.5, 5},
		},
		[]string{"method", "route", "status"},
	)
	ledgerOperations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ledger_operations_total",
			Help: "Number of stake, withdraw, deposit and donation operations.",
		},
		[]string{"operation", "outcome"},
	)
	rewardTransfers = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "donation_reward_transfers_total",
			Help: "Number of on-chain donation rewards sent.",
		},
		[]string{"outcome"},
	)
	websocketClients = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "websocket_clients",
			Help: "Number of connected donation update subscribers.",
		},
	)
	validatorRounds = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "validator_rounds_total",
			Help: "Number of ledger consistency rounds.",
		},
		[]string{"outcome"},
	)
)

// Init registers the collectors with the default registry. Safe to call repeatedly.
func Init() {
	once.Do(func() {
		prometheus.MustRegister(
			httpRequestDuration,
			ledgerOperations,
			rewardTransfers,
			websocketClients,
			validatorRounds,
		)
	})
}

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}

func ObserveHTTPRequest(method, route string, status int, elapsed time.Duration) {
	httpRequestDuration.WithLabelValues(method, route, strconv.Itoa(status)).Observe(elapsed.Seconds())
}

func RecordLedgerOperation(operation string, err error) {
	ledgerOperations.WithLabelValues(operation, OutcomeOf(err).String()).Inc()
}

func RecordRewardTransfer(err error) {
	rewardTransfers.WithLabelValues(OutcomeOf(err).String()).Inc()
}

func AddWebsocketClients(delta float64) {
	websocketClients.Add(delta)
}

func RecordValidatorRound(ok bool) {
	outcome := Success
	if !ok {
		outcome = Error
	}
	validatorRounds.WithLabelValues(outcome.String()).Inc()
}
