package report

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/de-tools/trade-atlas/pkg/metrics"
	"github.com/de-tools/trade-atlas/pkg/models/domain"
	"github.com/de-tools/trade-atlas/pkg/services/trade"
	"github.com/de-tools/trade-atlas/pkg/store/classification"
	"github.com/de-tools/trade-atlas/pkg/store/duckdb/history"
	"github.com/de-tools/trade-atlas/pkg/store/rows"
	"github.com/de-tools/trade-atlas/pkg/store/source"
)

// Generator produces one complete summary per call.
type Generator interface {
	Generate(ctx context.Context) (*domain.Summary, error)
	Coverage() *domain.Coverage
	Criteria() trade.Criteria
}

type Options struct {
	Input          string
	Classification string
	Criteria       trade.Criteria
	Coverage       *domain.Coverage
	Workers        int
	Sources        source.Registry
	// History and Metrics are optional.
	History history.Store
	Metrics *metrics.Recorder
}

type Service struct {
	opts Options
}

func NewService(opts Options) (*Service, error) {
	if opts.Input == "" {
		return nil, fmt.Errorf("input location cannot be empty")
	}
	if opts.Classification == "" {
		return nil, fmt.Errorf("classification location cannot be empty")
	}
	if opts.Coverage == nil {
		return nil, fmt.Errorf("coverage cannot be nil")
	}
	if opts.Sources == nil {
		opts.Sources = source.NewDefaultRegistry()
	}
	return &Service{opts: opts}, nil
}

func (s *Service) Coverage() *domain.Coverage { return s.opts.Coverage }

func (s *Service) Criteria() trade.Criteria { return s.opts.Criteria }

// Generate runs one full pass over the input. Each call builds a fresh
// pipeline, so a Service can be reused while every pass stays one-shot.
func (s *Service) Generate(ctx context.Context) (*domain.Summary, error) {
	started := time.Now()
	summary, err := s.generate(ctx)
	elapsed := time.Since(started)

	if s.opts.Metrics != nil {
		switch {
		case err == nil:
			s.opts.Metrics.ObserveRun(metrics.OutcomeSuccess, elapsed, &summary.Stats)
		case errors.Is(err, context.DeadlineExceeded):
			s.opts.Metrics.ObserveRun(metrics.OutcomeTimeout, elapsed, nil)
		default:
			s.opts.Metrics.ObserveRun(metrics.OutcomeFailure, elapsed, nil)
		}
	}
	if err != nil {
		return nil, err
	}

	if s.opts.History != nil {
		if herr := s.opts.History.Add(ctx, s.opts.Input, summary); herr != nil {
			zerolog.Ctx(ctx).Warn().Err(herr).Str("run_id", summary.RunID).Msg("failed to record run history")
		}
	}
	return summary, nil
}

func (s *Service) generate(ctx context.Context) (*domain.Summary, error) {
	logger := zerolog.Ctx(ctx)

	input, err := s.opts.Sources.Open(ctx, s.opts.Input)
	if err != nil {
		return nil, fmt.Errorf("open input %s: %w", s.opts.Input, err)
	}
	defer input.Close()

	lookup, err := s.loadClassification(ctx)
	if err != nil {
		return nil, err
	}
	logger.Debug().Int("codes", lookup.Len()).Str("location", s.opts.Classification).Msg("classification loaded")

	reader, err := rows.NewReader(input)
	if err != nil {
		return nil, fmt.Errorf("read input %s: %w", s.opts.Input, err)
	}

	pipeline, err := trade.NewPipeline(trade.Options{
		Criteria:  s.opts.Criteria,
		Coverage:  s.opts.Coverage,
		Describer: lookup,
		Workers:   s.opts.Workers,
	})
	if err != nil {
		return nil, fmt.Errorf("create pipeline: %w", err)
	}

	summary, err := pipeline.Run(ctx, reader)
	if err != nil {
		return nil, fmt.Errorf("aggregate %s: %w", s.opts.Input, err)
	}
	return summary, nil
}

func (s *Service) loadClassification(ctx context.Context) (*classification.Table, error) {
	r, err := s.opts.Sources.Open(ctx, s.opts.Classification)
	if err != nil {
		return nil, fmt.Errorf("open classification %s: %w", s.opts.Classification, err)
	}
	defer r.Close()

	table, err := classification.Load(r, s.opts.Criteria.CodeDigits)
	if err != nil {
		return nil, fmt.Errorf("load classification %s: %w", s.opts.Classification, err)
	}
	return table, nil
}
