package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	lockAcquisitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "roomstay",
			Name:      "lock_acquisitions_total",
			Help:      "Room lock acquisition attempts by result.",
		},
		[]string{"result"},
	)

	lockConversions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "roomstay",
			Name:      "lock_conversions_total",
			Help:      "Lock-to-booking conversions by result.",
		},
		[]string{"result"},
	)

	locksSwept = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "roomstay",
			Name:      "locks_swept_total",
			Help:      "Expired locks reaped by the background sweep.",
		},
	)

	priceResolutions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "roomstay",
			Name:      "price_resolutions_total",
			Help:      "Nightly price resolutions by cache outcome.",
		},
		[]string{"source"},
	)

	eventTransitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "roomstay",
			Name:      "event_transitions_total",
			Help:      "Pricing-event lifecycle transitions by target state.",
		},
		[]string{"to"},
	)

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "roomstay",
			Name:      "http_requests_total",
			Help:      "HTTP requests by endpoint.",
		},
		[]string{"endpoint"},
	)
)

// Register registers Prometheus metrics. Safe to call multiple times.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(
			lockAcquisitions,
			lockConversions,
			locksSwept,
			priceResolutions,
			eventTransitions,
			httpRequests,
		)
	})
}

func IncLockAcquisition(result string) {
	lockAcquisitions.WithLabelValues(result).Inc()
}

func IncLockConversion(result string) {
	lockConversions.WithLabelValues(result).Inc()
}

func AddLocksSwept(n int64) {
	if n > 0 {
		locksSwept.Add(float64(n))
	}
}

func IncPriceResolution(source string) {
	priceResolutions.WithLabelValues(source).Inc()
}

func IncEventTransition(to string) {
	eventTransitions.WithLabelValues(to).Inc()
}

func IncHTTP(endpoint string) {
	httpRequests.WithLabelValues(endpoint).Inc()
}
