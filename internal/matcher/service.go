// internal/matcher/service.go
package matcher

import (
	"context"
	"errors"
	"sync"
	"time"

	apperrors "phalanx-matcher/internal/common/errors"
	"phalanx-matcher/internal/common/logger"
	"phalanx-matcher/internal/common/metrics"
	"phalanx-matcher/internal/common/observability"
	"phalanx-matcher/internal/matching"
	"phalanx-matcher/internal/models"
	"phalanx-matcher/internal/repository"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// RuleOnlyNote accompanies rule-only results.
const RuleOnlyNote = "Rule-based matching only (semantic score disabled). Max possible score: 0.60"

type FounderReader interface {
	GetByID(ctx context.Context, id string) (*models.Founder, error)
}

type FunderLister interface {
	ListActive(ctx context.Context) ([]models.Funder, error)
}

type MatchSaver interface {
	SaveBatch(ctx context.Context, founderID string, candidates []matching.Candidate) ([]models.Match, error)
}

// Params narrows a match request.
type Params struct {
	Limit       int
	MinScore    float64
	QualityTier models.QualityTier
}

// Result is a ranked match list for one founder.
type Result struct {
	Founder     *models.Founder
	Matches     []matching.Candidate
	GeneratedAt time.Time
	Note        string
}

// Deps wires the collaborators of a Service. Obs and Saver are optional.
type Deps struct {
	Scorer   *matching.Scorer
	Founders FounderReader
	Funders  FunderLister
	Source   CandidateSource
	Saver    MatchSaver
	Obs      *observability.Observability
	Logger   logger.Logger

	// CandidateMultiplier widens the nearest-neighbour query so filtering
	// still leaves Limit results.
	CandidateMultiplier int
}

// Service runs the hybrid and rule-only matching flows end to end.
type Service struct {
	deps   Deps
	logger logger.Logger
	wg     sync.WaitGroup
}

func NewService(deps Deps) *Service {
	if deps.CandidateMultiplier < 1 {
		deps.CandidateMultiplier = 2
	}
	return &Service{
		deps:   deps,
		logger: deps.Logger.WithFields(map[string]interface{}{"component": "matcher"}),
	}
}

func (s *Service) Scorer() *matching.Scorer {
	return s.deps.Scorer
}

// LoadFounder fetches an active founder, mapping storage errors onto
// application error codes.
func (s *Service) LoadFounder(ctx context.Context, founderID string) (*models.Founder, error) {
	founder, err := s.deps.Founders.GetByID(ctx, founderID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewFounderNotFoundError(founderID)
		}
		return nil, apperrors.NewQueryExecutionFailedError("get_founder", err)
	}
	return founder, nil
}

// Match scores the nearest funders of a founder and returns the ranked
// list. The founder must have an embedding. Matches are persisted in the
// background when a saver is configured.
func (s *Service) Match(ctx context.Context, founderID string, p Params) (*Result, error) {
	start := time.Now()
	ctx, span := s.startSpan(ctx, "matcher.Match", attribute.String("founderId", founderID))
	var err error
	defer func() { observability.EndSpan(span, err) }()

	founder, err := s.LoadFounder(ctx, founderID)
	if err != nil {
		return nil, err
	}
	if !founder.HasEmbedding() {
		err = apperrors.NewEmbeddingMissingError(founderID)
		return nil, err
	}

	similar, err := s.deps.Source.FindCandidates(ctx, founder, p.Limit*s.deps.CandidateMultiplier)
	if err != nil {
		err = apperrors.NewSearchQueryFailedError("find_similar_funders", err)
		return nil, err
	}

	inputs := make([]matching.CandidateInput, len(similar))
	for i, sf := range similar {
		score := sf.SemanticScore
		inputs[i] = matching.CandidateInput{Funder: sf.Funder, SemanticScore: &score}
	}

	ranked, err := s.RankInputs(ctx, founder, inputs, p)
	if err != nil {
		return nil, err
	}

	s.persistAsync(founder.ID, ranked)
	s.record(ctx, "hybrid", len(ranked), start)

	return &Result{Founder: founder, Matches: ranked, GeneratedAt: time.Now().UTC()}, nil
}

// MatchRules scores every active funder with the semantic branch forced to
// zero. No embedding is needed.
func (s *Service) MatchRules(ctx context.Context, founderID string, p Params) (*Result, error) {
	start := time.Now()
	ctx, span := s.startSpan(ctx, "matcher.MatchRules", attribute.String("founderId", founderID))
	var err error
	defer func() { observability.EndSpan(span, err) }()

	founder, err := s.LoadFounder(ctx, founderID)
	if err != nil {
		return nil, err
	}

	funders, err := s.deps.Funders.ListActive(ctx)
	if err != nil {
		err = apperrors.NewQueryExecutionFailedError("list_funders", err)
		return nil, err
	}

	zero := 0.0
	inputs := make([]matching.CandidateInput, len(funders))
	for i, f := range funders {
		inputs[i] = matching.CandidateInput{Funder: f, SemanticScore: &zero}
	}

	ranked, err := s.RankInputs(ctx, founder, inputs, p)
	if err != nil {
		return nil, err
	}

	s.record(ctx, "rules", len(ranked), start)
	return &Result{Founder: founder, Matches: ranked, GeneratedAt: time.Now().UTC(), Note: RuleOnlyNote}, nil
}

// RankInputs scores inputs, ranks them and applies the optional tier
// filter after ranking.
func (s *Service) RankInputs(ctx context.Context, founder *models.Founder, inputs []matching.CandidateInput, p Params) ([]matching.Candidate, error) {
	timer := time.Now()
	candidates, err := s.deps.Scorer.ScoreCandidates(ctx, founder, inputs)
	if err != nil {
		if matching.IsInvalidInput(err) {
			return nil, apperrors.NewInvalidInputError(err.Error())
		}
		return nil, apperrors.NewInternalError(err)
	}
	for _, c := range candidates {
		metrics.MatchesScored.WithLabelValues(string(c.Breakdown.QualityTier)).Inc()
		matching.ValidateBreakdownWithLogger(c.Breakdown, s.logger)
	}

	ranked := matching.Rank(candidates, p.MinScore, p.Limit)
	if p.QualityTier != "" {
		ranked = matching.FilterByTier(ranked, p.QualityTier)
	}

	metrics.MatchScoringDuration.WithLabelValues(modeFor(inputs)).Observe(time.Since(timer).Seconds())
	return ranked, nil
}

func (s *Service) persistAsync(founderID string, ranked []matching.Candidate) {
	if s.deps.Saver == nil || len(ranked) == 0 {
		return
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if _, err := s.deps.Saver.SaveBatch(ctx, founderID, ranked); err != nil {
			s.logger.Error("failed to save matches", map[string]interface{}{
				"founderId": founderID,
				"count":     len(ranked),
				"error":     err,
			})
		}
	}()
}

// Wait blocks until background saves have finished.
func (s *Service) Wait() {
	s.wg.Wait()
}

func (s *Service) startSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	if s.deps.Obs == nil {
		return ctx, noop.Span{}
	}
	return s.deps.Obs.StartSpan(ctx, name, attrs...)
}

func (s *Service) record(ctx context.Context, mode string, returned int, start time.Time) {
	if s.deps.Obs != nil {
		s.deps.Obs.RecordMatchRequest(ctx, mode, returned, time.Since(start))
	}
	s.logger.Info("matches ranked", map[string]interface{}{
		"mode":       mode,
		"returned":   returned,
		"durationMs": time.Since(start).Milliseconds(),
	})
}

func modeFor(inputs []matching.CandidateInput) string {
	for _, in := range inputs {
		if in.SemanticScore == nil || *in.SemanticScore != 0 {
			return "hybrid"
		}
	}
	return "rules"
}
