package cart

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	mutationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_cart_mutations_total",
			Help: "Total number of cart mutations by operation.",
		},
		[]string{"operation"},
	)

	persistErrorsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "storefront_cart_persist_errors_total",
			Help: "Total number of failed cart writes to durable storage.",
		},
	)
)
