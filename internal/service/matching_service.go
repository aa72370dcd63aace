// Package service contains the business logic between HTTP handlers and repositories.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/SCGamer30/jam-match-sub001/internal/ai"
	"github.com/SCGamer30/jam-match-sub001/internal/cache"
	"github.com/SCGamer30/jam-match-sub001/internal/matching"
	"github.com/SCGamer30/jam-match-sub001/internal/middleware"
	"github.com/SCGamer30/jam-match-sub001/internal/models"
	"github.com/SCGamer30/jam-match-sub001/internal/repository"
)

// MatchingService runs compatibility calculations, AI analysis, and band formation.
type MatchingService struct {
	userRepo  repository.UserRepository
	scoreRepo repository.ScoreRepository
	bandRepo  repository.BandRepository
	msgRepo   repository.MessageRepository
	engine    *matching.Engine
	analyzer  *ai.Analyzer
}

// NewMatchingService returns a new MatchingService. analyzer may be nil when
// no Gemini API key is configured; AI analysis then reports an upstream error.
func NewMatchingService(
	userRepo repository.UserRepository,
	scoreRepo repository.ScoreRepository,
	bandRepo repository.BandRepository,
	msgRepo repository.MessageRepository,
	engine *matching.Engine,
	analyzer *ai.Analyzer,
) *MatchingService {
	return &MatchingService{
		userRepo:  userRepo,
		scoreRepo: scoreRepo,
		bandRepo:  bandRepo,
		msgRepo:   msgRepo,
		engine:    engine,
		analyzer:  analyzer,
	}
}

// Match is a score row paired with the counterpart's profile, shaped for
// the matches listing.
type Match struct {
	User  *models.User               `json:"user"`
	Score *models.CompatibilityScore `json:"score"`
}

// CalculateForUser recomputes the caller's compatibility scores against every
// other completed profile, then attempts band formation. Existing AI scores
// survive recalculation; only the algorithmic side is refreshed.
func (s *MatchingService) CalculateForUser(ctx context.Context, userID uint) ([]models.CompatibilityScore, *models.Band, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, nil, err
	}
	if !user.ProfileCompleted {
		return nil, nil, models.NewValidationError("Complete your profile before calculating matches")
	}

	candidates, err := s.userRepo.ListCompleted(ctx, userID)
	if err != nil {
		return nil, nil, err
	}

	scores := make([]models.CompatibilityScore, 0, len(candidates))
	for i := range candidates {
		candidate := &candidates[i]

		score, err := s.scorePair(ctx, user, candidate)
		if err != nil {
			middleware.MatchCalculations.WithLabelValues("error").Inc()
			return nil, nil, err
		}
		middleware.MatchCalculations.WithLabelValues("ok").Inc()
		middleware.FinalScoreDistribution.Observe(float64(score.FinalScore))
		scores = append(scores, *score)
	}

	band, err := s.TryFormBand(ctx)
	if err != nil {
		// Band formation failure should not void the freshly computed
		// scores; report it and return what we have.
		middleware.Logger.ErrorContext(ctx, "band formation failed", slog.String("error", err.Error()))
		return scores, nil, nil
	}

	return scores, band, nil
}

// scorePair computes, persists, and caches the score row for a pair.
func (s *MatchingService) scorePair(ctx context.Context, u1, u2 *models.User) (*models.CompatibilityScore, error) {
	breakdown := matching.Score(u1, u2)

	// Carry forward any AI assessment from a previous run.
	existing, err := s.scoreRepo.GetByPair(ctx, u1.ID, u2.ID)
	if err != nil {
		return nil, err
	}

	score := &models.CompatibilityScore{
		User1ID:          u1.ID,
		User2ID:          u2.ID,
		AlgorithmicScore: breakdown.Algorithmic,
		LocationScore:    breakdown.LocationScore,
		GenreScore:       breakdown.GenreScore,
		ExperienceScore:  breakdown.ExperienceScore,
		CalculatedAt:     time.Now(),
	}
	if existing != nil && existing.AIScore != nil {
		aiScore := *existing.AIScore
		score.AIScore = &aiScore
		score.AIReasoning = existing.AIReasoning
	}
	score.FinalScore = matching.FinalScore(score.AlgorithmicScore, score.AIScore)
	score.Reasoning = matching.Reasoning(u1, u2, breakdown, score.FinalScore)

	if err := s.scoreRepo.Upsert(ctx, score); err != nil {
		return nil, err
	}
	_ = cache.CacheScore(ctx, score.User1ID, score.User2ID, score)
	return score, nil
}

// Matches returns the caller's scored counterparts ordered best-first.
func (s *MatchingService) Matches(ctx context.Context, userID uint, limit int) ([]Match, error) {
	if _, err := s.userRepo.GetByID(ctx, userID); err != nil {
		return nil, err
	}

	scores, err := s.scoreRepo.GetForUser(ctx, userID, limit)
	if err != nil {
		return nil, err
	}

	matches := make([]Match, 0, len(scores))
	for i := range scores {
		score := scores[i]
		counterpart := score.User2
		if score.User2ID == userID {
			counterpart = score.User1
		}
		if counterpart == nil {
			continue
		}
		matches = append(matches, Match{User: counterpart, Score: &score})
	}
	return matches, nil
}

// AIAnalysis runs the Gemini assessment for a pair and folds the result into
// the stored score. The algorithmic result is left untouched on failure.
func (s *MatchingService) AIAnalysis(ctx context.Context, user1ID, user2ID uint) (*models.CompatibilityScore, error) {
	if user1ID == user2ID {
		return nil, models.NewValidationError("Cannot analyze a user against themselves")
	}

	u1, err := s.userRepo.GetByID(ctx, user1ID)
	if err != nil {
		return nil, err
	}
	u2, err := s.userRepo.GetByID(ctx, user2ID)
	if err != nil {
		return nil, err
	}
	if !u1.ProfileCompleted || !u2.ProfileCompleted {
		return nil, models.NewValidationError("Both profiles must be completed before AI analysis")
	}

	if s.analyzer == nil {
		return nil, models.NewUpstreamError("AI analysis", fmt.Errorf("no Gemini API key configured"))
	}

	start := time.Now()
	assessment, err := s.analyzer.Analyze(ctx, u1, u2)
	if err != nil {
		middleware.AIAnalysisLatency.WithLabelValues("error").Observe(time.Since(start).Seconds())
		return nil, models.NewUpstreamError("AI analysis", err)
	}
	middleware.AIAnalysisLatency.WithLabelValues("ok").Observe(time.Since(start).Seconds())

	breakdown := matching.Score(u1, u2)
	aiScore := assessment.Score
	score := &models.CompatibilityScore{
		User1ID:          u1.ID,
		User2ID:          u2.ID,
		AlgorithmicScore: breakdown.Algorithmic,
		LocationScore:    breakdown.LocationScore,
		GenreScore:       breakdown.GenreScore,
		ExperienceScore:  breakdown.ExperienceScore,
		AIScore:          &aiScore,
		AIReasoning:      assessment.Reasoning,
		CalculatedAt:     time.Now(),
	}
	score.FinalScore = matching.FinalScore(score.AlgorithmicScore, score.AIScore)
	score.Reasoning = matching.Reasoning(u1, u2, breakdown, score.FinalScore)

	if err := s.scoreRepo.Upsert(ctx, score); err != nil {
		return nil, err
	}
	_ = cache.CacheScore(ctx, score.User1ID, score.User2ID, score)
	return score, nil
}

// TryFormBand assembles the best available quartet from unbanded completed
// profiles. Returns nil without error when no qualifying quartet exists.
func (s *MatchingService) TryFormBand(ctx context.Context) (*models.Band, error) {
	pool, err := s.userRepo.ListCompleted(ctx, 0)
	if err != nil {
		return nil, err
	}

	free := make([]*models.User, 0, len(pool))
	for i := range pool {
		banded, err := s.bandRepo.IsUserBanded(ctx, pool[i].ID)
		if err != nil {
			return nil, err
		}
		if !banded {
			free = append(free, &pool[i])
		}
	}
	if len(free) < 4 {
		return nil, nil
	}

	scores, err := s.scoreRepo.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	pairScores := make(map[[2]uint]int, len(scores))
	for _, sc := range scores {
		pairScores[pairKey(sc.User1ID, sc.User2ID)] = sc.FinalScore
	}

	proposal := s.engine.FormBand(free, func(a, b uint) (int, bool) {
		v, ok := pairScores[pairKey(a, b)]
		return v, ok
	})
	if proposal == nil {
		return nil, nil
	}

	band := &models.Band{
		Name:          bandName(proposal),
		DrummerID:     proposal.Drummer.ID,
		GuitaristID:   proposal.Guitarist.ID,
		BassistID:     proposal.Bassist.ID,
		SingerID:      proposal.Singer.ID,
		Status:        models.BandStatusActive,
		AvgScore:      proposal.AvgScore,
		FormationDate: time.Now(),
	}
	if err := s.bandRepo.Create(ctx, band); err != nil {
		return nil, err
	}
	middleware.BandsFormed.Inc()

	// Kick off the band chat with a system announcement.
	announcement := &models.Message{
		BandID:      band.ID,
		Content:     fmt.Sprintf("%s has been formed! Say hi to your new bandmates.", band.Name),
		MessageType: models.MessageTypeSystem,
	}
	if err := s.msgRepo.Create(ctx, announcement); err != nil {
		middleware.Logger.ErrorContext(ctx, "failed to create band announcement", slog.String("error", err.Error()))
	}

	return s.bandRepo.GetByID(ctx, band.ID)
}

// bandName derives a name from the quartet's most common genre.
func bandName(p *matching.Proposal) string {
	counts := map[string]int{}
	for _, member := range p.Members() {
		for _, g := range member.Genres {
			counts[g]++
		}
	}
	best, bestCount := "", 0
	for g, n := range counts {
		if n > bestCount || (n == bestCount && g < best) {
			best, bestCount = g, n
		}
	}
	if best == "" {
		return "The JamMatch Collective"
	}
	return fmt.Sprintf("The %s Collective", best)
}

func pairKey(a, b uint) [2]uint {
	if a > b {
		a, b = b, a
	}
	return [2]uint{a, b}
}
