package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

func init() {
	register(
		subscriptionsCreatedTotal,
		subscriptionsCancelledTotal,
		subscriptionsRenewedTotal,
		subscriptionsExpiredTotal,
	)
}

var (
	subscriptionsCreatedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "subscriptions_created_total",
			Help: "Total number of subscriptions created.",
		},
	)

	subscriptionsCancelledTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "subscriptions_cancelled_total",
			Help: "Total number of subscriptions cancelled.",
		},
	)

	subscriptionsRenewedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "subscriptions_renewed_total",
			Help: "Total number of subscriptions auto-renewed by the sweep.",
		},
	)

	subscriptionsExpiredTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "subscriptions_expired_total",
			Help: "Total number of subscriptions expired by the sweep.",
		},
	)
)

func IncSubscriptionsCreated()          { subscriptionsCreatedTotal.Inc() }
func IncSubscriptionsCancelled()        { subscriptionsCancelledTotal.Inc() }
func IncSubscriptionsRenewed(count int) { subscriptionsRenewedTotal.Add(float64(count)) }
func IncSubscriptionsExpired(count int) { subscriptionsExpiredTotal.Add(float64(count)) }
