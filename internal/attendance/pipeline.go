package attendance

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"attendcli/internal/errors"
	"attendcli/internal/infrastructure"
)

// Options is the configuration surface the core pipeline consumes. It is
// passed explicitly into Run so the pipeline stays a pure function of
// (tables, options); nothing is read from ambient state.
type Options struct {
	// AllowNameFallback permits using a normalized display name as the
	// identity when email is missing or blank. Less reliable: students
	// sharing a name, or inconsistent spellings, can miscount.
	AllowNameFallback bool
	// IncludeDiagnostics controls whether the per-file column detection
	// table is emitted. It does not affect the core computation.
	IncludeDiagnostics bool
}

// DefaultOptions returns the documented defaults: no name fallback,
// diagnostics included.
func DefaultOptions() Options {
	return Options{AllowNameFallback: false, IncludeDiagnostics: true}
}

// Pipeline runs the full reconciliation: normalize each file, merge,
// deduplicate, aggregate. A run either returns every derived table or
// fails fast with one error; no partial results.
type Pipeline struct {
	logger     *slog.Logger
	normalizer *Normalizer
	aggregator *Aggregator
	tracer     trace.Tracer
	metrics    *infrastructure.PipelineMetrics
}

// NewPipeline creates a pipeline. Tracing uses the globally registered
// tracer provider; metrics are optional.
func NewPipeline(logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{
		logger:     logger,
		normalizer: NewNormalizer(logger),
		aggregator: NewAggregator(logger),
		tracer:     otel.Tracer("attendcli/attendance"),
	}
}

// WithMetrics attaches pipeline instruments; returns the pipeline for
// call chaining.
func (p *Pipeline) WithMetrics(m *infrastructure.PipelineMetrics) *Pipeline {
	p.metrics = m
	return p
}

// fileResult pairs one file's normalized table with its diagnostic record,
// slotted by upload index so the merge order is deterministic.
type fileResult struct {
	std  *StandardTable
	diag FileDiagnostic
}

// Run executes the pipeline over the uploaded tables in order. Per-file
// normalization runs concurrently, one goroutine per file; results are
// recombined in upload order before deduplication, since the dedup
// tie-break depends on stable ordering.
func (p *Pipeline) Run(ctx context.Context, tables []RawTable, opts Options) (*ResultSet, error) {
	start := time.Now()
	ctx, span := p.tracer.Start(ctx, "attendance.pipeline.run",
		trace.WithAttributes(
			attribute.Int("files", len(tables)),
			attribute.Bool("allow_name_fallback", opts.AllowNameFallback),
		))
	defer span.End()

	result, err := p.run(ctx, tables, opts)

	if p.metrics != nil {
		outcome := "success"
		if err != nil {
			outcome = "error"
		}
		p.metrics.RunsTotal.Add(ctx, 1,
			metric.WithAttributes(attribute.String("outcome", outcome)))
		p.metrics.RunDuration.Record(ctx, time.Since(start).Seconds())
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		p.logger.ErrorContext(ctx, "reconciliation run failed",
			slog.String("error", err.Error()),
			slog.Duration("elapsed", time.Since(start)))
		return nil, err
	}

	span.SetStatus(codes.Ok, "")
	p.logger.InfoContext(ctx, "reconciliation run complete",
		slog.Int("files", len(tables)),
		slog.Int("students", len(result.Summary)),
		slog.Int("class_days", len(result.PerDay)),
		slog.Duration("elapsed", time.Since(start)))

	return result, nil
}

func (p *Pipeline) run(ctx context.Context, tables []RawTable, opts Options) (*ResultSet, error) {
	if len(tables) == 0 {
		return nil, errors.NewNoDataError("No input files provided.")
	}

	results, err := p.normalizeAll(ctx, tables, opts)
	if err != nil {
		return nil, err
	}

	records := p.mergeAndParse(ctx, results)
	if len(records) == 0 {
		return nil, errors.NewNoDataError("No valid attendance records found after parsing timestamps.")
	}

	daily := p.deduplicate(ctx, records)

	result, err := p.aggregate(ctx, daily)
	if err != nil {
		return nil, err
	}

	if opts.IncludeDiagnostics {
		diags := make([]FileDiagnostic, 0, len(results))
		for _, r := range results {
			diags = append(diags, r.diag)
		}
		result.Diagnostics = diags
	}

	return result, nil
}

// normalizeAll standardizes every file concurrently. The first failing
// file aborts the run; results keep upload order.
func (p *Pipeline) normalizeAll(ctx context.Context, tables []RawTable, opts Options) ([]fileResult, error) {
	ctx, span := p.tracer.Start(ctx, "attendance.normalize")
	defer span.End()

	results := make([]fileResult, len(tables))
	g, gctx := errgroup.WithContext(ctx)

	for i, table := range tables {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			std, diag, err := p.normalizer.Standardize(table, opts.AllowNameFallback)
			if err != nil {
				return err
			}
			results[i] = fileResult{std: std, diag: diag}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	if p.metrics != nil {
		p.metrics.FilesProcessed.Add(ctx, int64(len(tables)))
	}
	return results, nil
}

// mergeAndParse concatenates the normalized tables in upload order, parses
// timestamps and derives class dates. Rows with unparseable timestamps
// drop silently; forms exports routinely contain a few malformed rows and
// they must not abort a multi-file merge.
func (p *Pipeline) mergeAndParse(ctx context.Context, results []fileResult) []NormalizedRecord {
	ctx, span := p.tracer.Start(ctx, "attendance.merge")
	defer span.End()

	var total, dropped int
	var records []NormalizedRecord
	for _, r := range results {
		for _, row := range r.std.Rows {
			total++
			ts, ok := ParseTimestamp(row.RawTime)
			if !ok {
				dropped++
				continue
			}
			records = append(records, NormalizedRecord{
				Timestamp:   ts,
				Email:       row.Email,
				DisplayName: row.DisplayName,
				StudentKey:  row.StudentKey,
				ClassDate:   TruncateToDay(ts),
			})
		}
	}

	span.SetAttributes(
		attribute.Int("rows_total", total),
		attribute.Int("rows_dropped", dropped),
	)
	if dropped > 0 {
		p.logger.WarnContext(ctx, "dropped rows with unparseable timestamps",
			slog.Int("dropped", dropped),
			slog.Int("total", total))
	}
	if p.metrics != nil {
		p.metrics.RowsIn.Add(ctx, int64(total))
	}

	return records
}

func (p *Pipeline) deduplicate(ctx context.Context, records []NormalizedRecord) []NormalizedRecord {
	ctx, span := p.tracer.Start(ctx, "attendance.deduplicate")
	defer span.End()

	daily := Deduplicate(records)

	span.SetAttributes(
		attribute.Int("rows_in", len(records)),
		attribute.Int("rows_out", len(daily)),
	)
	if p.metrics != nil {
		p.metrics.RowsDeduped.Add(ctx, int64(len(daily)))
	}
	return daily
}

func (p *Pipeline) aggregate(ctx context.Context, daily []NormalizedRecord) (*ResultSet, error) {
	_, span := p.tracer.Start(ctx, "attendance.aggregate")
	defer span.End()

	return p.aggregator.Aggregate(daily)
}
