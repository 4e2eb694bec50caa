package cmd

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/zostay/go-mailfix/message"
	"github.com/zostay/go-mailfix/message/header"
	"github.com/zostay/go-mailfix/pipeline"
	"github.com/zostay/go-mailfix/plugins/fixupdate"
)

// envelope holds the envelope flags shared by the commands that run messages
// through the pipeline.
type envelope struct {
	arrival  string
	mailFrom string
	rcptTo   []string
}

// runner runs messages through a pipeline with the fixup_date plugin loaded.
type runner struct {
	pipeline *pipeline.Pipeline
	registry *prometheus.Registry
	arrival  time.Time
	env      envelope
}

// newRunner builds the pipeline and loads the plugins.
func newRunner(env envelope) (*runner, error) {
	r := &runner{
		pipeline: pipeline.New(logger),
		registry: prometheus.NewRegistry(),
		env:      env,
	}

	if env.arrival != "" {
		at, err := header.ParseTime(env.arrival)
		if err != nil {
			return nil, fmt.Errorf("bad --arrival: %w", err)
		}
		r.arrival = at
	}

	metrics, err := fixupdate.NewMetrics(r.registry)
	if err != nil {
		return nil, err
	}

	fixupdate.New(r.pipeline, fixupdate.WithMetrics(metrics))

	return r, nil
}

// process runs one message through the pipeline on a connection of its own.
func (r *runner) process(ctx context.Context, source string, in io.Reader) (*message.Opaque, error) {
	conn := pipeline.NewConnection(source, logger)
	txn := conn.BeginTransaction()

	if err := txn.SetMailFrom(r.env.mailFrom); err != nil {
		return nil, fmt.Errorf("bad --mail-from: %w", err)
	}

	for _, rcpt := range r.env.rcptTo {
		if err := txn.AddRcptTo(rcpt); err != nil {
			return nil, fmt.Errorf("bad --rcpt-to: %w", err)
		}
	}

	// recorded before PhaseData, so it wins over the plugin's clock
	if !r.arrival.IsZero() {
		txn.SetArrivalTime(r.arrival)
	}

	return r.pipeline.Receive(ctx, conn, in)
}

// writeMetrics writes the collected metrics to the configured text file.
func (r *runner) writeMetrics() error {
	if cfg.Metrics.Textfile == "" {
		return nil
	}

	return prometheus.WriteToTextfile(cfg.Metrics.Textfile, r.registry)
}
