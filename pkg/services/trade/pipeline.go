package trade

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync/atomic"
	"time"

	"github.com/de-tools/trade-atlas/pkg/models/domain"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

const (
	defaultBatchSize = 1024
	// ctxCheckInterval is how many rows the serial pass reads between
	// cancellation checks.
	ctxCheckInterval = 4096
)

var ErrPipelineUsed = errors.New("pipeline has already run")

type State int32

const (
	StateIdle State = iota
	StateStreaming
	StateFinalizing
	StateDone
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateStreaming:
		return "streaming"
	case StateFinalizing:
		return "finalizing"
	case StateDone:
		return "done"
	default:
		return fmt.Sprintf("state(%d)", int32(s))
	}
}

// RowSource yields decoded rows one at a time and returns io.EOF once the
// input is exhausted. Any other error aborts the pass.
type RowSource interface {
	Next() (domain.Row, error)
}

type Options struct {
	Criteria  Criteria
	Coverage  *domain.Coverage
	Describer Describer
	// Workers > 1 enables partition-and-merge: rows are handed out in batches
	// to workers that each own a private ledger.
	Workers   int
	BatchSize int
}

// Pipeline is a one-shot streaming pass: Idle -> Streaming -> Finalizing -> Done.
type Pipeline struct {
	filter    Filter
	coverage  *domain.Coverage
	describer Describer
	workers   int
	batchSize int
	state     atomic.Int32
}

func NewPipeline(opts Options) (*Pipeline, error) {
	if opts.Coverage == nil {
		return nil, fmt.Errorf("coverage cannot be nil")
	}
	if opts.Criteria.CodeDigits <= 0 {
		return nil, fmt.Errorf("code digits must be positive, got %d", opts.Criteria.CodeDigits)
	}
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	if opts.BatchSize < 1 {
		opts.BatchSize = defaultBatchSize
	}
	return &Pipeline{
		filter:    NewFilter(opts.Criteria),
		coverage:  opts.Coverage,
		describer: opts.Describer,
		workers:   opts.Workers,
		batchSize: opts.BatchSize,
	}, nil
}

func (p *Pipeline) State() State {
	return State(p.state.Load())
}

// Run consumes src to exhaustion and builds one report per configured bucket.
// On error or cancellation no summary is returned; partial totals are never
// exposed.
func (p *Pipeline) Run(ctx context.Context, src RowSource) (*domain.Summary, error) {
	if !p.state.CompareAndSwap(int32(StateIdle), int32(StateStreaming)) {
		return nil, ErrPipelineUsed
	}
	defer p.state.Store(int32(StateDone))

	summary := &domain.Summary{
		RunID:      uuid.NewString(),
		YearPrefix: p.filter.criteria.YearPrefix,
		Category:   p.filter.criteria.Category,
		StartedAt:  time.Now(),
	}
	logger := zerolog.Ctx(ctx).With().Str("run_id", summary.RunID).Logger()
	logger.Debug().Int("workers", p.workers).Msg("streaming rows")

	var (
		ledger *Ledger
		stats  domain.RunStats
		err    error
	)
	if p.workers == 1 {
		ledger, stats, err = p.stream(ctx, src)
	} else {
		ledger, stats, err = p.streamParallel(ctx, src)
	}
	if err != nil {
		return nil, err
	}

	p.state.Store(int32(StateFinalizing))
	summary.Reports = p.finalize(ledger)
	summary.Stats = stats
	summary.FinishedAt = time.Now()

	logger.Info().
		Int64("rows_seen", stats.RowsSeen).
		Int64("rows_accepted", stats.RowsAccepted).
		Int64("rows_recorded", stats.RowsRecorded).
		Int64("rows_rejected", stats.RowsRejected).
		Int64("invalid_values", stats.InvalidValues).
		Int64("unknown_country", stats.UnknownCountry).
		Int64("unknown_account", stats.UnknownAccount).
		Dur("elapsed", summary.FinishedAt.Sub(summary.StartedAt)).
		Msg("pass completed")

	return summary, nil
}

func (p *Pipeline) stream(ctx context.Context, src RowSource) (*Ledger, domain.RunStats, error) {
	part := p.newPartition()
	for n := 0; ; n++ {
		if n%ctxCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return nil, domain.RunStats{}, err
			}
		}
		row, err := src.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, domain.RunStats{}, err
		}
		part.consume(p.filter, row)
	}
	if err := ctx.Err(); err != nil {
		return nil, domain.RunStats{}, err
	}
	return part.ledger, part.stats, nil
}

func (p *Pipeline) streamParallel(ctx context.Context, src RowSource) (*Ledger, domain.RunStats, error) {
	g, gctx := errgroup.WithContext(ctx)
	batches := make(chan []domain.Row, p.workers)

	parts := make([]*partition, p.workers)
	for i := range parts {
		part := p.newPartition()
		parts[i] = part
		g.Go(func() error {
			for batch := range batches {
				for _, row := range batch {
					part.consume(p.filter, row)
				}
			}
			return nil
		})
	}

	g.Go(func() error {
		defer close(batches)
		send := func(batch []domain.Row) error {
			select {
			case batches <- batch:
				return nil
			case <-gctx.Done():
				return gctx.Err()
			}
		}

		batch := make([]domain.Row, 0, p.batchSize)
		for {
			row, err := src.Next()
			if errors.Is(err, io.EOF) {
				break
			}
			if err != nil {
				return err
			}
			batch = append(batch, row)
			if len(batch) == p.batchSize {
				if err := send(batch); err != nil {
					return err
				}
				batch = make([]domain.Row, 0, p.batchSize)
			}
		}
		if len(batch) > 0 {
			return send(batch)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, domain.RunStats{}, err
	}
	if err := ctx.Err(); err != nil {
		return nil, domain.RunStats{}, err
	}

	merged := NewLedger(p.coverage.Keys())
	var stats domain.RunStats
	for _, part := range parts {
		merged.Merge(part.ledger)
		stats = addStats(stats, part.stats)
	}
	return merged, stats, nil
}

func (p *Pipeline) finalize(ledger *Ledger) []domain.TradeReport {
	keys := p.coverage.Keys()
	reports := make([]domain.TradeReport, 0, len(keys))
	for _, key := range keys {
		b, _ := ledger.Bucket(key)
		reports = append(reports, BuildReport(key, p.coverage.Label(key), b, p.describer))
	}
	return reports
}

// partition is the mutable state owned by a single consumer of rows.
type partition struct {
	coverage *domain.Coverage
	ledger   *Ledger
	bloc     *BlocAggregator
	stats    domain.RunStats
}

func (p *Pipeline) newPartition() *partition {
	ledger := NewLedger(p.coverage.Keys())
	return &partition{
		coverage: p.coverage,
		ledger:   ledger,
		bloc:     NewBlocAggregator(ledger, p.coverage),
	}
}

func (pt *partition) consume(filter Filter, row domain.Row) {
	pt.stats.RowsSeen++
	if !filter.Accept(row) {
		pt.stats.RowsRejected++
		return
	}
	amount, ok := ParseAmount(row.Value)
	if !ok {
		pt.stats.InvalidValues++
		return
	}
	pt.stats.RowsAccepted++

	if !pt.coverage.Tracks(row.CountryCode) {
		pt.stats.UnknownCountry++
		return
	}
	key := domain.BucketKey(row.CountryCode)
	account := domain.ParseAccount(row.Account)
	if !pt.ledger.record(key, account, row.Code, amount) {
		pt.stats.UnknownAccount++
		return
	}
	pt.bloc.record(key, account, row.Code, amount)
	pt.stats.RowsRecorded++
}

func addStats(a, b domain.RunStats) domain.RunStats {
	return domain.RunStats{
		RowsSeen:       a.RowsSeen + b.RowsSeen,
		RowsAccepted:   a.RowsAccepted + b.RowsAccepted,
		RowsRejected:   a.RowsRejected + b.RowsRejected,
		InvalidValues:  a.InvalidValues + b.InvalidValues,
		UnknownCountry: a.UnknownCountry + b.UnknownCountry,
		UnknownAccount: a.UnknownAccount + b.UnknownAccount,
		RowsRecorded:   a.RowsRecorded + b.RowsRecorded,
	}
}
