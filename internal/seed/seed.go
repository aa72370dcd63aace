package seed

import (
	"context"
	"fmt"
	"log"
	"time"

	"gorm.io/gorm"

	"github.com/SCGamer30/jam-match-sub001/internal/matching"
	"github.com/SCGamer30/jam-match-sub001/internal/models"
	"github.com/SCGamer30/jam-match-sub001/internal/repository"
)

// Options configures the seeder.
type Options struct {
	NumUsers     int
	ShouldClean  bool
	MinBandScore int
}

// Run populates the database with demo musicians, their pairwise scores,
// and a formed band when the pool supports one.
func Run(db *gorm.DB, opts Options) error {
	ctx := context.Background()

	if opts.NumUsers <= 0 {
		opts.NumUsers = 20
	}
	if opts.MinBandScore <= 0 {
		opts.MinBandScore = 60
	}

	if opts.ShouldClean {
		log.Println("Cleaning existing data...")
		for _, table := range []string{"messages", "bands", "compatibility_scores", "users"} {
			if err := db.Exec("DELETE FROM " + table).Error; err != nil {
				return fmt.Errorf("clean %s: %w", table, err)
			}
		}
	}

	factory := NewFactory(db)

	log.Printf("Creating %d musicians...", opts.NumUsers)
	users := make([]*models.User, 0, opts.NumUsers)
	for i := 0; i < opts.NumUsers; i++ {
		user, err := factory.CreateUser()
		if err != nil {
			return fmt.Errorf("create user: %w", err)
		}
		users = append(users, user)
	}

	log.Println("Computing pairwise compatibility scores...")
	scoreRepo := repository.NewScoreRepository(db)
	for i := 0; i < len(users); i++ {
		for j := i + 1; j < len(users); j++ {
			breakdown := matching.Score(users[i], users[j])
			final := matching.FinalScore(breakdown.Algorithmic, nil)
			score := &models.CompatibilityScore{
				User1ID:          users[i].ID,
				User2ID:          users[j].ID,
				AlgorithmicScore: breakdown.Algorithmic,
				LocationScore:    breakdown.LocationScore,
				GenreScore:       breakdown.GenreScore,
				ExperienceScore:  breakdown.ExperienceScore,
				FinalScore:       final,
				Reasoning:        matching.Reasoning(users[i], users[j], breakdown, final),
				CalculatedAt:     time.Now(),
			}
			if err := scoreRepo.Upsert(ctx, score); err != nil {
				return fmt.Errorf("upsert score: %w", err)
			}
		}
	}

	log.Println("Attempting band formation...")
	scores, err := scoreRepo.GetAll(ctx)
	if err != nil {
		return err
	}
	pairScores := make(map[[2]uint]int, len(scores))
	for _, sc := range scores {
		a, b := sc.User1ID, sc.User2ID
		if a > b {
			a, b = b, a
		}
		pairScores[[2]uint{a, b}] = sc.FinalScore
	}

	engine := matching.NewEngine(opts.MinBandScore)
	proposal := engine.FormBand(users, func(a, b uint) (int, bool) {
		if a > b {
			a, b = b, a
		}
		v, ok := pairScores[[2]uint{a, b}]
		return v, ok
	})
	if proposal == nil {
		log.Println("No quartet met the band formation threshold")
		return nil
	}

	band, err := factory.CreateBand(proposal.Drummer, proposal.Guitarist, proposal.Bassist, proposal.Singer, proposal.AvgScore)
	if err != nil {
		return fmt.Errorf("create band: %w", err)
	}
	log.Printf("Formed band %q (avg score %d)", band.Name, band.AvgScore)

	// System announcement plus a short opening conversation
	if _, err := factory.CreateMessage(band, nil, func(m *models.Message) {
		m.Content = fmt.Sprintf("%s has been formed! Say hi to your new bandmates.", band.Name)
	}); err != nil {
		return err
	}
	for _, member := range proposal.Members() {
		if _, err := factory.CreateMessage(band, member); err != nil {
			return err
		}
	}

	log.Println("Seeding complete")
	return nil
}
