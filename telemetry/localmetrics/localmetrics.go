package localmetrics

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

var (
	saveCounter     metric.Int64Counter
	getCounter      metric.Int64Counter
	notFoundCounter metric.Int64Counter
	listCounter     metric.Int64Counter
	deleteCounter   metric.Int64Counter
	storedGauge     metric.Int64Gauge
)

func init() {
	// instruments from the global meter follow a provider installed later
	_ = New()
}

// New (re)creates all instruments from the current global meter provider.
func New() error {
	meter := otel.Meter("telemetry/localmetrics")

	var err error
	saveCounter, err = meter.Int64Counter("memorylove.save.count",
		metric.WithDescription("Number of saved memories"),
		metric.WithUnit("count"))
	if err != nil {
		return err
	}

	getCounter, err = meter.Int64Counter("memorylove.get.count",
		metric.WithDescription("Number of memory lookups"),
		metric.WithUnit("count"))
	if err != nil {
		return err
	}

	notFoundCounter, err = meter.Int64Counter("memorylove.notfound.count",
		metric.WithDescription("Number of lookups for unknown memories"),
		metric.WithUnit("count"))
	if err != nil {
		return err
	}

	listCounter, err = meter.Int64Counter("memorylove.list.count",
		metric.WithDescription("Number of list requests"),
		metric.WithUnit("count"))
	if err != nil {
		return err
	}

	deleteCounter, err = meter.Int64Counter("memorylove.delete.count",
		metric.WithDescription("Number of delete requests"),
		metric.WithUnit("count"))
	if err != nil {
		return err
	}

	storedGauge, err = meter.Int64Gauge("memorylove.stored.gauge",
		metric.WithDescription("Number of stored memories"),
		metric.WithUnit("count"))
	if err != nil {
		return err
	}

	return nil
}

func SaveCounter() metric.Int64Counter {
	return saveCounter
}

func GetCounter() metric.Int64Counter {
	return getCounter
}

func NotFoundCounter() metric.Int64Counter {
	return notFoundCounter
}

func ListCounter() metric.Int64Counter {
	return listCounter
}

func DeleteCounter() metric.Int64Counter {
	return deleteCounter
}

func StoredGauge() metric.Int64Gauge {
	return storedGauge
}
