// Package service runs matching passes: it loads the two tables, resolves
// their columns, matches responses into the roster, derives SCORE and
// writes the result.
package service

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/okian/gradematch/internal/adapters/table"
	"github.com/okian/gradematch/internal/domain/columns"
	"github.com/okian/gradematch/internal/domain/matching"
	"github.com/okian/gradematch/internal/domain/model"
	"github.com/okian/gradematch/internal/domain/scoring"
	"github.com/okian/gradematch/internal/domain/similarity"
	"github.com/okian/gradematch/pkg/logger"
	"github.com/okian/gradematch/pkg/metrics"
)

// DefaultOutputName is the result file written next to the roster.
const DefaultOutputName = "hasil_pencocokan.xlsx"

// Hooks receive the user-facing progress of a run. Both are optional.
type Hooks struct {
	LineLogger func(string)
	Progress   func(int)
}

// Request describes one file-based run.
type Request struct {
	ResponsesPath string
	RosterPath    string
	OutputPath    string // defaults to the output name in the roster's directory
	Hooks
}

// Report summarises a finished run.
type Report struct {
	RunID      string           `json:"runId"`
	OutputPath string           `json:"outputPath,omitempty"`
	Responses  int              `json:"responses"`
	RosterSize int              `json:"rosterSize"`
	Schema     columns.Schema   `json:"schema"`
	Match      matching.Summary `json:"match"`
	Scores     scoring.Summary  `json:"scores"`
	Duration   time.Duration    `json:"duration"`
}

// Result is an in-memory run outcome ready to be serialized.
type Result struct {
	Report
	Columns []string
	Roster  *model.Roster
}

// Service orchestrates matching runs. Runs share no state besides counters,
// so one Service may serve concurrent requests.
type Service struct {
	mu sync.RWMutex

	resolver       columns.Resolver
	similarity     similarity.Func
	fuzzyThreshold float64
	passThreshold  float64
	fallbackScore  float64
	outputName     string

	// Stats
	runs     int64
	failures int64
	last     *Report

	logger logger.Logger
}

// New constructs a Service with default thresholds and keyword detection.
func New(opts ...Option) *Service {
	s := &Service{
		similarity:     similarity.TokenSetRatio,
		fuzzyThreshold: matching.DefaultFuzzyThreshold,
		passThreshold:  scoring.DefaultPassThreshold,
		fallbackScore:  scoring.DefaultFallbackScore,
		outputName:     DefaultOutputName,
		logger:         logger.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.resolver == nil {
		s.resolver = columns.NewKeywordResolver(columns.WithLogger(s.logger))
	}
	return s
}

// Run reads both files, processes them and writes the result workbook.
func (s *Service) Run(ctx context.Context, req Request) (Report, error) {
	if req.ResponsesPath == "" || req.RosterPath == "" {
		return Report{}, fmt.Errorf("%w: responses and roster paths are required", ErrMissingInput)
	}
	out := req.OutputPath
	if out == "" {
		out = s.DefaultOutput(req.RosterPath)
	}

	s.line(ctx, req.Hooks, "reading files")
	responses, err := table.ReadFile(req.ResponsesPath)
	if err != nil {
		return Report{}, s.fail(ctx, fmt.Errorf("read responses: %w", err))
	}
	roster, err := table.ReadFile(req.RosterPath)
	if err != nil {
		return Report{}, s.fail(ctx, fmt.Errorf("read roster: %w", err))
	}

	res, err := s.process(ctx, responses, roster, req.Hooks)
	if err != nil {
		return Report{}, s.fail(ctx, err)
	}

	w := table.NewWriter(table.WithPassThreshold(s.passThreshold), table.WithLogger(s.logger))
	if err := w.WriteFile(ctx, out, res.Columns, res.Roster); err != nil {
		return Report{}, s.fail(ctx, fmt.Errorf("write result: %w", err))
	}
	res.OutputPath = out

	s.line(ctx, req.Hooks, "done, saved to "+out)
	if req.Progress != nil {
		req.Progress(100)
	}
	s.succeed(ctx, &res.Report)
	return res.Report, nil
}

// Process runs the pass over already loaded tables without touching disk.
func (s *Service) Process(ctx context.Context, responses, roster model.Table, hooks Hooks) (*Result, error) {
	res, err := s.process(ctx, responses, roster, hooks)
	if err != nil {
		return nil, s.fail(ctx, err)
	}
	if hooks.Progress != nil {
		hooks.Progress(100)
	}
	s.succeed(ctx, &res.Report)
	return res, nil
}

// Detect resolves the column schema of two files without matching.
func (s *Service) Detect(ctx context.Context, responsesPath, rosterPath string) (columns.Schema, error) {
	responses, err := table.ReadFile(responsesPath)
	if err != nil {
		return columns.Schema{}, fmt.Errorf("read responses: %w", err)
	}
	roster, err := table.ReadFile(rosterPath)
	if err != nil {
		return columns.Schema{}, fmt.Errorf("read roster: %w", err)
	}
	return s.resolver.Resolve(ctx, responses, roster)
}

// DefaultOutput returns the output path used when a run names none.
func (s *Service) DefaultOutput(rosterPath string) string {
	dir := filepath.Dir(rosterPath)
	if abs, err := filepath.Abs(rosterPath); err == nil {
		dir = filepath.Dir(abs)
	}
	return filepath.Join(dir, s.outputName)
}

// PassThreshold returns the configured passing slot value.
func (s *Service) PassThreshold() float64 {
	return s.passThreshold
}

func (s *Service) process(ctx context.Context, responses, roster model.Table, hooks Hooks) (*Result, error) {
	start := time.Now()
	res := &Result{Report: Report{RunID: uuid.NewString()}}

	schema, err := s.resolver.Resolve(ctx, responses, roster)
	if err != nil {
		return nil, fmt.Errorf("resolve columns: %w", err)
	}
	records, err := columns.BuildResponses(schema, responses)
	if err != nil {
		return nil, err
	}
	arena, err := columns.BuildRoster(schema, roster)
	if err != nil {
		return nil, err
	}
	metrics.UpdateRosterRecords(arena.Len())

	s.line(ctx, hooks, "matching students")
	m := matching.New(
		matching.WithSimilarity(s.similarity),
		matching.WithFuzzyThreshold(s.fuzzyThreshold),
		matching.WithLineLogger(func(msg string) {
			s.logger.Warn(ctx, msg, logger.String("run_id", res.RunID))
			if hooks.LineLogger != nil {
				hooks.LineLogger(msg)
			}
		}),
		matching.WithProgress(hooks.Progress),
		matching.WithLogger(s.logger),
	)
	msum, err := m.Match(ctx, records, arena)
	if err != nil {
		return nil, err
	}

	s.line(ctx, hooks, "computing SCORE column")
	d := scoring.NewDeriver(
		scoring.WithPassThreshold(s.passThreshold),
		scoring.WithFallbackScore(s.fallbackScore),
		scoring.WithLogger(s.logger),
	)
	ssum, err := d.Apply(ctx, arena)
	if err != nil {
		return nil, err
	}

	res.Responses = len(records)
	res.RosterSize = arena.Len()
	res.Schema = schema
	res.Match = msum
	res.Scores = ssum
	res.Duration = time.Since(start)
	res.Columns = table.OutputColumns(roster)
	res.Roster = arena
	return res, nil
}

// line sends a progress line to the hook and mirrors it into the log.
func (s *Service) line(ctx context.Context, hooks Hooks, msg string) {
	s.logger.Info(ctx, msg)
	if hooks.LineLogger != nil {
		hooks.LineLogger(msg)
	}
}

func (s *Service) succeed(ctx context.Context, r *Report) {
	metrics.RecordRun(metrics.OutcomeSuccess, r.Duration.Seconds())

	s.mu.Lock()
	s.runs++
	s.last = r
	s.mu.Unlock()

	s.logger.Info(ctx, "run finished",
		logger.String("run_id", r.RunID),
		logger.Int("responses", r.Responses),
		logger.Int("matched", r.Match.Matched()),
		logger.Int("unmatched", len(r.Match.Unmatched)),
		logger.Duration("duration", r.Duration),
	)
}

func (s *Service) fail(ctx context.Context, err error) error {
	metrics.RecordRun(metrics.OutcomeFailure, 0)

	s.mu.Lock()
	s.runs++
	s.failures++
	s.mu.Unlock()

	s.logger.Error(ctx, "run failed", logger.Error(err))
	return err
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]interface{}{
		"runs":           s.runs,
		"failedRuns":     s.failures,
		"fuzzyThreshold": s.fuzzyThreshold,
		"passThreshold":  s.passThreshold,
		"fallbackScore":  s.fallbackScore,
	}
	if s.last != nil {
		stats["lastRun"] = map[string]interface{}{
			"runId":      s.last.RunID,
			"responses":  s.last.Responses,
			"rosterSize": s.last.RosterSize,
			"matched":    s.last.Match.Matched(),
			"unmatched":  len(s.last.Match.Unmatched),
			"dropped":    s.last.Match.Dropped,
		}
	}
	return stats
}
