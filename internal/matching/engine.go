package matching

import (
	"math"
	"sort"

	"github.com/SCGamer30/jam-match-sub001/internal/models"
)

// rosterCap limits how many candidates per role the exhaustive quartet
// search considers. Candidates are taken in ascending ID order so the
// result is deterministic.
const rosterCap = 12

// PairScore looks up the final compatibility score for a user pair.
// The second return value is false when no score exists for the pair.
type PairScore func(a, b uint) (int, bool)

// Proposal is a fully staffed band candidate produced by the engine.
type Proposal struct {
	Drummer   *models.User
	Guitarist *models.User
	Bassist   *models.User
	Singer    *models.User
	AvgScore  int
}

// Members returns the proposal's users in slot order.
func (p *Proposal) Members() []*models.User {
	return []*models.User{p.Drummer, p.Guitarist, p.Bassist, p.Singer}
}

// Engine assembles bands from scored candidate pools.
type Engine struct {
	minScore int
}

// NewEngine returns an Engine that only proposes bands whose average
// pairwise score meets minScore.
func NewEngine(minScore int) *Engine {
	return &Engine{minScore: Clamp(minScore)}
}

// FormBand searches the candidate pool for the quartet with the highest
// average pairwise compatibility. Candidates must have completed profiles;
// users with the "other" primary role never fill a slot. Returns nil when
// any slot cannot be filled or the best quartet scores below the threshold.
func (e *Engine) FormBand(candidates []*models.User, score PairScore) *Proposal {
	byRole := map[models.PrimaryRole][]*models.User{}
	for _, u := range candidates {
		if u == nil || !u.ProfileCompleted {
			continue
		}
		switch u.PrimaryRole {
		case models.RoleDrummer, models.RoleGuitarist, models.RoleBassist, models.RoleSinger:
			byRole[u.PrimaryRole] = append(byRole[u.PrimaryRole], u)
		}
	}

	for role, pool := range byRole {
		sort.Slice(pool, func(i, j int) bool { return pool[i].ID < pool[j].ID })
		if len(pool) > rosterCap {
			byRole[role] = pool[:rosterCap]
		}
	}

	drummers := byRole[models.RoleDrummer]
	guitarists := byRole[models.RoleGuitarist]
	bassists := byRole[models.RoleBassist]
	singers := byRole[models.RoleSinger]
	if len(drummers) == 0 || len(guitarists) == 0 || len(bassists) == 0 || len(singers) == 0 {
		return nil
	}

	var best *Proposal
	bestAvg := math.Inf(-1)

	for _, d := range drummers {
		for _, g := range guitarists {
			for _, bs := range bassists {
				for _, s := range singers {
					avg, ok := quartetAverage(score, d.ID, g.ID, bs.ID, s.ID)
					if !ok || avg <= bestAvg {
						continue
					}
					bestAvg = avg
					best = &Proposal{Drummer: d, Guitarist: g, Bassist: bs, Singer: s}
				}
			}
		}
	}

	if best == nil {
		return nil
	}
	best.AvgScore = Clamp(int(math.Round(bestAvg)))
	if best.AvgScore < e.minScore {
		return nil
	}
	return best
}

// quartetAverage averages the six pairwise scores of a quartet. It fails
// when any pair is unscored.
func quartetAverage(score PairScore, ids ...uint) (float64, bool) {
	var sum, pairs int
	for i := 0; i < len(ids); i++ {
		for j := i + 1; j < len(ids); j++ {
			v, ok := score(ids[i], ids[j])
			if !ok {
				return 0, false
			}
			sum += v
			pairs++
		}
	}
	if pairs == 0 {
		return 0, false
	}
	return float64(sum) / float64(pairs), true
}
