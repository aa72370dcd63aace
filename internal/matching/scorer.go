// Package matching implements the compatibility scoring engine and the band
// formation logic built on top of it.
package matching

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/SCGamer30/jam-match-sub001/internal/models"
)

const (
	pointsPerSharedGenre = 10
	genreScoreCap        = 30
	experienceSameScore  = 20
	experienceCloseScore = 10
	experienceFarScore   = 5
	locationMatchScore   = 50
	locationOtherScore   = 10
	maxScore             = 100

	// aiWeight is the share of the final score contributed by the AI
	// assessment when one is present.
	aiWeight = 0.3
)

// Breakdown is the deterministic scoring result for a pair of profiles.
type Breakdown struct {
	LocationScore   int
	GenreScore      int
	ExperienceScore int
	Algorithmic     int
	SharedGenres    []string
	SameLocation    bool
}

// Score computes the algorithmic compatibility breakdown between two users.
// Both profiles must already have passed ValidateProfile.
func Score(u1, u2 *models.User) Breakdown {
	b := Breakdown{
		SharedGenres: sharedGenres(u1.Genres, u2.Genres),
	}

	// Genre overlap: 10 points per shared genre, capped.
	b.GenreScore = len(b.SharedGenres) * pointsPerSharedGenre
	if b.GenreScore > genreScoreCap {
		b.GenreScore = genreScoreCap
	}

	// Experience closeness over the ordered levels.
	switch diff := absInt(u1.Experience.Rank() - u2.Experience.Rank()); diff {
	case 0:
		b.ExperienceScore = experienceSameScore
	case 1:
		b.ExperienceScore = experienceCloseScore
	default:
		b.ExperienceScore = experienceFarScore
	}

	// Location proximity: exact (case-insensitive) city match, otherwise
	// assume different cities within range.
	b.SameLocation = strings.EqualFold(strings.TrimSpace(u1.Location), strings.TrimSpace(u2.Location))
	if b.SameLocation {
		b.LocationScore = locationMatchScore
	} else {
		b.LocationScore = locationOtherScore
	}

	b.Algorithmic = Clamp(b.GenreScore + b.ExperienceScore + b.LocationScore)
	return b
}

// FinalScore blends the algorithmic score with an optional AI score.
// Without an AI score the final score equals the algorithmic score.
func FinalScore(algorithmic int, aiScore *int) int {
	if aiScore == nil {
		return Clamp(algorithmic)
	}
	blended := (1-aiWeight)*float64(Clamp(algorithmic)) + aiWeight*float64(Clamp(*aiScore))
	return Clamp(int(math.Round(blended)))
}

// Reasoning renders the human-readable explanation for a scored pair.
func Reasoning(u1, u2 *models.User, b Breakdown, finalScore int) string {
	shared := "None"
	if len(b.SharedGenres) > 0 {
		shared = strings.Join(b.SharedGenres, ", ")
	}
	location := "Different locations"
	if b.SameLocation {
		location = "Same city"
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Compatibility analysis for %s and %s:\n", u1.Name, u2.Name)
	fmt.Fprintf(&sb, "- Shared musical genres: %s\n", shared)
	fmt.Fprintf(&sb, "- Experience levels: %s and %s\n", u1.Experience, u2.Experience)
	fmt.Fprintf(&sb, "- Location compatibility: %s\n", location)
	fmt.Fprintf(&sb, "- Overall compatibility score: %d/100", finalScore)
	return sb.String()
}

// Clamp bounds a score to [0,100].
func Clamp(v int) int {
	if v < 0 {
		return 0
	}
	if v > maxScore {
		return maxScore
	}
	return v
}

func sharedGenres(a, b models.StringList) []string {
	set := make(map[string]struct{}, len(a))
	for _, g := range a {
		set[strings.ToLower(strings.TrimSpace(g))] = struct{}{}
	}
	var shared []string
	seen := make(map[string]struct{})
	for _, g := range b {
		key := strings.ToLower(strings.TrimSpace(g))
		if _, ok := set[key]; !ok {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		shared = append(shared, key)
	}
	sort.Strings(shared)
	return shared
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
