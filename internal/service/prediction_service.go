package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/scoresight/internal/features"
	"github.com/yourusername/scoresight/internal/heuristic"
	"github.com/yourusername/scoresight/internal/logger"
	"github.com/yourusername/scoresight/internal/metrics"
	"github.com/yourusername/scoresight/internal/models"
)

// PredictionService runs the full pipeline: decode, derive, dispatch, package.
// It holds no per-request state and is safe for concurrent use.
type PredictionService struct {
	scorer     *heuristic.Scorer
	dispatcher *Dispatcher
	packager   *Packager
	logger     *logger.PredictionLogger
}

// NewPredictionService creates a new prediction service
func NewPredictionService(scorer *heuristic.Scorer, source ModelSource, packager *Packager, log *logrus.Logger) *PredictionService {
	if packager == nil {
		packager = NewPackager(nil)
	}
	return &PredictionService{
		scorer:     scorer,
		dispatcher: NewDispatcher(source),
		packager:   packager,
		logger:     logger.NewPredictionLogger(log),
	}
}

// Predict produces the display record for target from raw statistics.
// Input errors (missing keys, negative counts, bad form tokens) are returned;
// model failures never are.
func (s *PredictionService) Predict(ctx context.Context, target models.Target, raw models.RawStatInput) (*models.PredictionResult, error) {
	requestID := uuid.NewString()
	start := time.Now()

	set, heuristicFn, err := s.prepare(target, raw)
	if err != nil {
		s.reject(requestID, target, err)
		return nil, err
	}

	dispatched, err := s.dispatcher.Predict(ctx, target, set, heuristicFn)
	if err != nil {
		s.reject(requestID, target, err)
		return nil, err
	}

	if dispatched.Source == models.SourceHeuristic {
		metrics.RecordFallback(string(target), dispatched.FallbackReason)
		if dispatched.FallbackReason != ReasonUnavailable {
			s.logger.LogModelFallback(requestID, string(target), dispatched.FallbackReason, dispatched.ModelErr)
		}
	}

	result := s.packager.Package(target, dispatched)

	elapsed := time.Since(start)
	metrics.RecordPrediction(string(target), string(result.Source), result.Confidence, elapsed.Seconds())
	s.logger.LogPrediction(requestID, string(target), string(result.Source), result.Value,
		result.Confidence, result.Category, float64(elapsed.Microseconds())/1000)

	return result, nil
}

func (s *PredictionService) reject(requestID string, target models.Target, err error) {
	metrics.RecordRejectedInput(string(target))
	s.logger.LogRejectedInput(requestID, string(target), err)
}

// prepare decodes raw into the target's typed stats and returns the model
// feature set with the matching heuristic
func (s *PredictionService) prepare(target models.Target, raw models.RawStatInput) (features.Set, HeuristicFunc, error) {
	switch target {
	case models.TargetGoals, models.TargetAssists:
		var player models.PlayerStats
		if err := models.DecodeRawStats(raw, &player); err != nil {
			return nil, nil, err
		}
		project := s.scorer.ProjectGoals
		if target == models.TargetAssists {
			project = s.scorer.ProjectAssists
		}
		return features.DerivePlayer(player), func() (Estimate, error) {
			return Estimate{Value: project(player)}, nil
		}, nil

	case models.TargetChampion:
		var season models.SeasonStats
		if err := models.DecodeRawStats(raw, &season); err != nil {
			return nil, nil, err
		}
		return features.DeriveSeason(season), func() (Estimate, error) {
			if v, ok := s.scorer.ChampionAnchor(season); ok {
				s.anchorHit(target, v)
			}
			return Estimate{Value: s.scorer.ChampionProbability(season)}, nil
		}, nil

	case models.TargetMatch:
		var matchup models.MatchupStats
		if err := models.DecodeRawStats(raw, &matchup); err != nil {
			return nil, nil, err
		}
		set, err := features.DeriveMatchup(matchup)
		if err != nil {
			return nil, nil, err
		}
		return set, func() (Estimate, error) {
			probs, err := s.scorer.MatchWinner(matchup)
			if err != nil {
				return Estimate{}, err
			}
			return Estimate{Value: probs.Max(), Match: &probs}, nil
		}, nil

	case models.TargetPoints:
		var goals models.GoalStats
		if err := models.DecodeRawStats(raw, &goals); err != nil {
			return nil, nil, err
		}
		return features.DeriveGoals(goals), func() (Estimate, error) {
			if v, ok := s.scorer.PointsAnchor(goals); ok {
				s.anchorHit(target, v)
			}
			return Estimate{Value: s.scorer.TotalPoints(goals)}, nil
		}, nil

	default:
		return nil, nil, fmt.Errorf("%w: %q", models.ErrUnknownTarget, target)
	}
}

func (s *PredictionService) anchorHit(target models.Target, v float64) {
	metrics.RecordAnchorHit(string(target))
	s.logger.LogAnchorHit(string(target), v)
}
