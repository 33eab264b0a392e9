// Package health reports whether the entity cache and its supporting
// components are in good shape.
//
// A Checker inspects one component and returns a Result with a Status of
// healthy, degraded, or unhealthy. StoreChecker watches the share of failed
// entries in a store.Store, QueueChecker the backlog of an action queue, and
// TransportChecker the request slots of a transport.HTTP:
//
//	agg := health.NewAggregator(health.AggregatorConfig{})
//	sc, err := health.NewStoreChecker(s, health.StoreCheckerConfig{})
//	agg.Register(sc)
//	agg.Register(health.NewQueueChecker(q, health.QueueCheckerConfig{}))
//
//	report := agg.Run(ctx)
//	if report.Status == health.StatusUnhealthy {
//		// ...
//	}
//
// Handler serves a report as JSON.
package health
