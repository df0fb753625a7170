package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	coremetrics "github.com/kilianp07/schedulegen/core/metrics"
)

// PromSink records run metrics on its own registry and writes them to a
// node_exporter textfile on Flush.
type PromSink struct {
	reg       *prometheus.Registry
	path      string
	proposals *prometheus.CounterVec
	releases  *prometheus.CounterVec
	skipped   *prometheus.CounterVec
	amount    *prometheus.CounterVec
	rejected  *prometheus.CounterVec
	lastRun   prometheus.Gauge
}

// NewPromSink registers the run metrics. path is the textfile written by Flush.
func NewPromSink(path string) (*PromSink, error) {
	return NewPromSinkWithRegistry(path, prometheus.NewRegistry())
}

// NewPromSinkWithRegistry registers metrics on the provided registry.
func NewPromSinkWithRegistry(path string, reg *prometheus.Registry) (*PromSink, error) {
	s := &PromSink{
		reg:  reg,
		path: path,
		proposals: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "schedulegen_proposals_total",
			Help: "Number of proposal files generated",
		}, []string{"mode"}),
		releases: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "schedulegen_releases_total",
			Help: "Number of releases across generated proposals",
		}, []string{"mode"}),
		skipped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "schedulegen_folded_releases_total",
			Help: "Number of planned releases folded into the first release",
		}, []string{"mode"}),
		amount: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "schedulegen_amount_gtu_total",
			Help: "Amount scheduled across generated proposals, in GTU",
		}, []string{"mode"}),
		rejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "schedulegen_rows_rejected_total",
			Help: "Number of input rows rejected by validation",
		}, []string{"reason"}),
		lastRun: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "schedulegen_last_run_timestamp_seconds",
			Help: "Time of the last flushed run",
		}),
	}
	for _, c := range []prometheus.Collector{s.proposals, s.releases, s.skipped, s.amount, s.rejected, s.lastRun} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// RecordProposal counts one generated proposal.
func (s *PromSink) RecordProposal(ev coremetrics.ProposalEvent) error {
	s.proposals.WithLabelValues(ev.Mode).Inc()
	s.releases.WithLabelValues(ev.Mode).Add(float64(ev.Releases))
	s.skipped.WithLabelValues(ev.Mode).Add(float64(ev.Skipped))
	s.amount.WithLabelValues(ev.Mode).Add(float64(ev.Micro) / 1e6)
	return nil
}

// RecordRejected counts a rejected row.
func (s *PromSink) RecordRejected(reason string) error {
	s.rejected.WithLabelValues(reason).Inc()
	return nil
}

// Flush writes the registry to the textfile.
func (s *PromSink) Flush() error {
	s.lastRun.SetToCurrentTime()
	return prometheus.WriteToTextfile(s.path, s.reg)
}

// New returns a PromSink when path is set and a NopSink otherwise.
func New(path string) (coremetrics.RunSink, error) {
	if path == "" {
		return coremetrics.NopSink{}, nil
	}
	return NewPromSink(path)
}
