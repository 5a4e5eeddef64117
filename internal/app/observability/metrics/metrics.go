package metrics

import (
	"log"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

// AppMetrics holds the application's metric instruments.
type AppMetrics struct {
	TripGenerationsTotal metric.Int64Counter
	TripEditsTotal       metric.Int64Counter
	ManualInsertsTotal   metric.Int64Counter
	PaymentsTotal        metric.Int64Counter
	GenerationDuration   metric.Float64Histogram
	StoreWriteDuration   metric.Float64Histogram
}

var (
	appMetrics *AppMetrics
	once       sync.Once
)

// InitAppMetrics initializes the global metrics instruments ONLY ONCE.
// It gets the Meter from the globally configured MeterProvider.
func InitAppMetrics() {
	once.Do(func() {
		meter := otel.GetMeterProvider().Meter("voyager")
		var err error
		m := &AppMetrics{}

		m.TripGenerationsTotal, err = meter.Int64Counter(
			"trip_generations_total",
			metric.WithDescription("Total number of trip generations committed"),
			metric.WithUnit("{trip}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create trip_generations_total: %v", err)
		}

		m.TripEditsTotal, err = meter.Int64Counter(
			"trip_edits_total",
			metric.WithDescription("Total number of AI edits applied to trips"),
			metric.WithUnit("{edit}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create trip_edits_total: %v", err)
		}

		m.ManualInsertsTotal, err = meter.Int64Counter(
			"manual_inserts_total",
			metric.WithDescription("Total number of manual activity insertions"),
			metric.WithUnit("{activity}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create manual_inserts_total: %v", err)
		}

		m.PaymentsTotal, err = meter.Int64Counter(
			"payments_total",
			metric.WithDescription("Total number of payment intents created for gated requests"),
			metric.WithUnit("{payment}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create payments_total: %v", err)
		}

		m.GenerationDuration, err = meter.Float64Histogram(
			"generation_duration_seconds",
			metric.WithDescription("Duration of generative model calls in seconds"),
			metric.WithUnit("s"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create generation_duration_seconds: %v", err)
		}

		m.StoreWriteDuration, err = meter.Float64Histogram(
			"store_write_duration_seconds",
			metric.WithDescription("Duration of trip store snapshot writes in seconds"),
			metric.WithUnit("s"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create store_write_duration_seconds: %v", err)
		}

		log.Println("Application metrics instruments initialized.")
		appMetrics = m
	})
}

// Get returns the globally initialized AppMetrics instance.
// Panics if InitAppMetrics was not called first.
func Get() *AppMetrics {
	if appMetrics == nil {
		panic("metrics instruments not initialized. Call metrics.InitAppMetrics() first.")
	}
	return appMetrics
}
