package influx

import (
	"context"
	"fmt"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"

	"waffle-cron/internal/domain/model"
	"waffle-cron/internal/domain/ports"
)

const measurement = "task_run"

// DBParams provides various configuration options for influxDB.
type DBParams struct {
	URL    string
	Org    string
	Token  string
	Bucket string
}

// RunMetrics writes one point per finished run to influxDB.
//
// References:
//   - https://docs.influxdata.com/influxdb/cloud/api-guide/client-libraries/go/
type RunMetrics struct {
	dbClient    influxdb2.Client
	writeClient api.WriteAPIBlocking
}

var _ ports.MetricsSink = (*RunMetrics)(nil)

// NewRunMetrics creates the influxDB client.
func NewRunMetrics(params DBParams) *RunMetrics {
	dbClient := influxdb2.NewClient(params.URL, params.Token)

	return &RunMetrics{
		dbClient:    dbClient,
		writeClient: dbClient.WriteAPIBlocking(params.Org, params.Bucket),
	}
}

// Observe stores the run's duration and exit status.
func (m *RunMetrics) Observe(ctx context.Context, run model.RunRecord) error {
	point := influxdb2.NewPoint(measurement,
		map[string]string{
			"task":    run.Task,
			"outcome": string(run.Outcome),
		},
		map[string]interface{}{
			"elapsed_seconds": run.Elapsed().TotalSeconds(),
			"exit_code":       run.ExitCode,
		},
		run.FinishedAt)

	if err := m.writeClient.WritePoint(ctx, point); err != nil {
		return fmt.Errorf("influxdb-run-metrics: failed to write to DB: %w", err)
	}

	return nil
}

// Close releases the influxDB client.
func (m *RunMetrics) Close() error {
	m.dbClient.Close()

	return nil
}

// NoopMetrics is a non-operational metrics sink.
type NoopMetrics struct{}

// Observe is non-operational.
func (NoopMetrics) Observe(_ context.Context, _ model.RunRecord) error {
	return nil
}
