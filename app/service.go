package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/kilianp07/schedulegen/config"
	"github.com/kilianp07/schedulegen/core/address"
	"github.com/kilianp07/schedulegen/core/amount"
	coremetrics "github.com/kilianp07/schedulegen/core/metrics"
	"github.com/kilianp07/schedulegen/core/proposal"
	"github.com/kilianp07/schedulegen/core/schedule"
	"github.com/kilianp07/schedulegen/infra/input"
	"github.com/kilianp07/schedulegen/infra/journal"
	"github.com/kilianp07/schedulegen/infra/logger"
	"github.com/kilianp07/schedulegen/infra/metrics"
	"github.com/kilianp07/schedulegen/infra/output"
	"github.com/kilianp07/schedulegen/pkg/export"
)

// Options describes one batch run.
type Options struct {
	InputPath string
	Mode      schedule.Mode
	// Now is the reference time for the cutoff and the expiry. Zero means time.Now.
	Now time.Time
	// Cutoff overrides the cutoff derived from Now when set.
	Cutoff time.Time
	// DryRun prints proposals to Stdout instead of writing files.
	DryRun bool
	Stdout io.Writer
}

// Summary reports what a run produced.
type Summary struct {
	RunID   string
	Mode    schedule.Mode
	Files   []string
	Rows    int
	Skipped int
	Total   decimal.Decimal
	Cutoff  time.Time
	// FirstRelease is the earliest release of every proposal in the run.
	FirstRelease time.Time
	Expiry       time.Time
}

// Service converts input spreadsheets into proposal files.
type Service struct {
	cfg       *config.Config
	log       logger.Logger
	validator address.Validator
	parser    *amount.Parser
	journal   journal.Store
	sink      coremetrics.RunSink
}

// Option customizes a Service.
type Option func(*Service)

// WithLogger replaces the service logger.
func WithLogger(l logger.Logger) Option { return func(s *Service) { s.log = l } }

// WithValidator replaces the address validator.
func WithValidator(v address.Validator) Option { return func(s *Service) { s.validator = v } }

// WithJournal replaces the journal store opened from the configuration.
func WithJournal(j journal.Store) Option { return func(s *Service) { s.journal = j } }

// WithSink replaces the metrics sink built from the configuration.
func WithSink(m coremetrics.RunSink) Option { return func(s *Service) { s.sink = m } }

// New creates a Service from the configuration.
func New(cfg *config.Config, opts ...Option) (*Service, error) {
	format, err := cfg.Input.Format()
	if err != nil {
		return nil, &ConfigError{Err: err}
	}
	parser, err := amount.NewParser(format)
	if err != nil {
		return nil, &ConfigError{Err: err}
	}
	s := &Service{
		cfg:       cfg,
		log:       logger.New("service"),
		validator: address.Default,
		parser:    parser,
	}
	for _, o := range opts {
		o(s)
	}
	if s.journal == nil {
		store, err := journal.Open(cfg.Journal)
		if err != nil {
			return nil, &IOError{Path: cfg.Journal.Path, Err: err}
		}
		s.journal = store
	}
	if s.sink == nil {
		sink, err := metrics.New(cfg.Metrics.Textfile)
		if err != nil {
			return nil, fmt.Errorf("metrics: %w", err)
		}
		s.sink = sink
	}
	return s, nil
}

// Close releases the journal.
func (s *Service) Close() error { return s.journal.Close() }

// Plan computes the run-wide schedule for mode at now.
func (s *Service) Plan(mode schedule.Mode, now, cutoff time.Time) (proposal.Plan, error) {
	cfg, err := s.cfg.Schedule.Resolve()
	if err != nil {
		return proposal.Plan{}, &ConfigError{Err: err}
	}
	if cutoff.IsZero() {
		cutoff, err = s.cfg.Schedule.CutoffAt(now)
		if err != nil {
			return proposal.Plan{}, &ConfigError{Err: err}
		}
	}
	plan, err := proposal.NewPlan(mode, cfg, cutoff, now.Add(s.cfg.Output.Expiry))
	if err != nil {
		return proposal.Plan{}, &ConfigError{Err: err}
	}
	return plan, nil
}

// Run processes the input row by row. The first invalid row aborts the run;
// files written for earlier rows are kept.
func (s *Service) Run(ctx context.Context, opts Options) (Summary, error) {
	now := opts.Now
	if now.IsZero() {
		now = time.Now()
	}
	plan, err := s.Plan(opts.Mode, now, opts.Cutoff)
	if err != nil {
		return Summary{}, err
	}
	sum := Summary{
		RunID:        uuid.NewString(),
		Mode:         opts.Mode,
		Skipped:      plan.Effective.Skipped,
		Cutoff:       plan.Cutoff,
		FirstRelease: plan.Effective.Dates[0],
		Expiry:       plan.Expiry,
	}
	log := s.log.With(map[string]any{"run_id": sum.RunID, "mode": opts.Mode.String()})
	log.Infow("run started", map[string]any{
		"input":    opts.InputPath,
		"cutoff":   sum.Cutoff.Format(time.RFC3339),
		"first":    sum.FirstRelease.Format(time.RFC3339),
		"expiry":   sum.Expiry.Format(time.RFC3339),
		"releases": len(plan.Effective.Dates),
		"skipped":  plan.Effective.Skipped,
	})
	defer func() {
		if err := s.sink.Flush(); err != nil {
			log.Warnf("metrics flush: %v", err)
		}
	}()

	reader := input.Reader{Delimiter: s.cfg.Input.Comma(), SkipHeader: s.cfg.Input.SkipHeader}
	rows, err := reader.ReadFile(opts.InputPath)
	if err != nil {
		var perr *input.ParseError
		if errors.As(err, &perr) {
			return sum, &FormatError{Line: perr.Line, Err: perr.Err}
		}
		return sum, &IOError{Path: opts.InputPath, Err: err}
	}
	if len(rows) == 0 {
		return sum, &FormatError{Value: opts.InputPath, Err: ErrNoRows}
	}

	writer := output.Writer{
		Dir:       s.cfg.Output.Dir,
		Prefix:    output.Prefix(opts.InputPath),
		Overwrite: s.cfg.Output.Overwrite,
	}
	stdout := opts.Stdout
	if stdout == nil {
		stdout = os.Stdout
	}
	var manifest []export.ManifestEntry
	for _, row := range rows {
		if err := ctx.Err(); err != nil {
			return sum, err
		}
		tr, err := s.transfer(row, opts.Mode)
		if err != nil {
			s.reject(log, err)
			return sum, err
		}
		prop, err := proposal.Assemble(tr, plan)
		if err != nil {
			ferr := &FormatError{Row: row.Number, Value: s.raw(row), Err: err}
			s.reject(log, ferr)
			return sum, ferr
		}
		total, err := prop.Total()
		if err != nil {
			return sum, &FormatError{Row: row.Number, Value: s.raw(row), Err: err}
		}

		path := "-"
		if opts.DryRun {
			if err := output.Encode(stdout, prop); err != nil {
				return sum, &IOError{Path: "stdout", Err: err}
			}
		} else {
			path, err = writer.Write(row.Number, prop)
			if err != nil {
				return sum, &IOError{Path: writer.Path(row.Number), Err: err}
			}
			sum.Files = append(sum.Files, path)
			rec := journal.Record{
				RunID:     sum.RunID,
				Timestamp: now.UTC(),
				Input:     opts.InputPath,
				Row:       row.Number,
				File:      path,
				Sender:    tr.Sender,
				Receiver:  tr.Receiver,
				Mode:      opts.Mode.String(),
				Total:     total.MicroString(),
				Releases:  len(prop.Releases),
				Skipped:   plan.Effective.Skipped,
			}
			if err := s.journal.Append(ctx, rec); err != nil {
				return sum, &IOError{Path: s.cfg.Journal.Path, Err: err}
			}
		}
		if err := s.sink.RecordProposal(coremetrics.ProposalEvent{
			Mode:     opts.Mode.String(),
			Releases: len(prop.Releases),
			Skipped:  plan.Effective.Skipped,
			Micro:    total.Micro(),
		}); err != nil {
			log.Warnf("record metrics: %v", err)
		}
		sum.Rows++
		sum.Total = sum.Total.Add(total.Decimal())
		manifest = append(manifest, export.ManifestEntry{
			Row:          row.Number,
			File:         path,
			Sender:       tr.Sender,
			Receiver:     tr.Receiver,
			TotalGTU:     total.String(),
			Releases:     len(prop.Releases),
			FirstRelease: prop.Releases[0].Time(),
		})
		log.Debugw("proposal generated", map[string]any{"row": row.Number, "file": path, "total": total.String()})
	}

	if path := s.cfg.Output.Manifest; path != "" && !opts.DryRun {
		if err := writeManifest(path, manifest); err != nil {
			return sum, &IOError{Path: path, Err: err}
		}
	}
	log.Infow("run finished", map[string]any{"rows": sum.Rows, "total_gtu": sum.Total.String()})
	return sum, nil
}

func (s *Service) transfer(row input.Row, mode schedule.Mode) (proposal.Transfer, error) {
	if len(row.Fields) != mode.Columns() {
		return proposal.Transfer{}, &FormatError{
			Row:   row.Number,
			Value: s.raw(row),
			Err:   fmt.Errorf("%w: %s mode expects %d, got %d", ErrColumnCount, mode, mode.Columns(), len(row.Fields)),
		}
	}
	tr := proposal.Transfer{Row: row.Number, Sender: row.Fields[0], Receiver: row.Fields[1]}
	for _, f := range []struct{ name, value string }{{"sender", tr.Sender}, {"receiver", tr.Receiver}} {
		if !s.validator.Valid(f.value) {
			return proposal.Transfer{}, &FormatError{Row: row.Number, Field: f.name, Value: f.value, Err: ErrInvalidAddress}
		}
	}
	names := []string{"amount"}
	if mode == schedule.ModeMulti {
		names = []string{"initial amount", "remaining amount"}
	}
	for i, name := range names {
		raw := row.Fields[2+i]
		a, err := s.parser.Parse(raw)
		if err != nil {
			return proposal.Transfer{}, &FormatError{Row: row.Number, Field: name, Value: raw, Err: err}
		}
		tr.Amounts = append(tr.Amounts, a)
	}
	return tr, nil
}

// raw rebuilds the row text for error messages.
func (s *Service) raw(row input.Row) string {
	return strings.Join(row.Fields, string(s.cfg.Input.Comma()))
}

func (s *Service) reject(log logger.Logger, err error) {
	var ferr *FormatError
	if !errors.As(err, &ferr) {
		return
	}
	log.Errorf("%v", ferr)
	if err := s.sink.RecordRejected(ferr.Reason()); err != nil {
		log.Warnf("record metrics: %v", err)
	}
}

func writeManifest(path string, entries []export.ManifestEntry) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := export.WriteManifest(f, entries); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// Records lists journal entries matching q.
func (s *Service) Records(ctx context.Context, q journal.Query) ([]journal.Record, error) {
	recs, err := s.journal.Query(ctx, q)
	if err != nil {
		return nil, &IOError{Path: s.cfg.Journal.Path, Err: err}
	}
	return recs, nil
}
