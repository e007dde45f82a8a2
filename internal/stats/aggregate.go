// Package stats reduces a window of match records into the derived numbers
// shown on a report. Everything here is a pure function of its input.
package stats

import (
	"math"
	"sort"

	"soloq-tracker/internal/constants"
	"soloq-tracker/internal/domain"
)

// Aggregate expects records most-recent-first. An empty window yields nil
// for every derived field.
func Aggregate(records []domain.MatchRecord) domain.AggregateStats {
	if len(records) == 0 {
		return domain.AggregateStats{}
	}

	results := make([]domain.Outcome, len(records))
	for i, r := range records {
		results[i] = outcome(r)
	}

	var kills, deaths, assists int
	for _, r := range records {
		kills += r.Kills
		deaths += r.Deaths
		assists += r.Assists
	}

	n := float64(len(records))
	kda := KDA(kills, deaths, assists)

	return domain.AggregateStats{
		RecentResults: results,
		Streak:        HeadStreak(results),
		KDA:           &kda,
		AvgKills:      ptr(round(float64(kills)/n, 1)),
		AvgDeaths:     ptr(round(float64(deaths)/n, 1)),
		AvgAssists:    ptr(round(float64(assists)/n, 1)),
		TopChampions:  TopChampions(records, constants.TopChampionsLimit),
	}
}

// HeadStreak measures the run of identical outcomes starting at the most
// recent match. Runs shorter than the threshold are not a streak.
func HeadStreak(results []domain.Outcome) *domain.Streak {
	if len(results) == 0 {
		return nil
	}

	count := 1
	for count < len(results) && results[count] == results[0] {
		count++
	}

	if count < constants.StreakThreshold {
		return nil
	}
	return &domain.Streak{Count: count, Kind: results[0]}
}

// KDA is (kills+assists)/deaths rounded to two decimals. With zero deaths the
// ratio is undefined and the kill+assist sum is reported instead.
func KDA(kills, deaths, assists int) float64 {
	if deaths == 0 {
		return float64(kills + assists)
	}
	return round(float64(kills+assists)/float64(deaths), 2)
}

type championTally struct {
	name   string
	games  int
	wins   int
	losses int
}

// TopChampions ranks champions by games played, ties broken by name
// ascending, and keeps the first limit entries.
func TopChampions(records []domain.MatchRecord, limit int) []domain.TopChampion {
	byName := make(map[string]*championTally)
	for _, r := range records {
		if r.ChampionName == "" {
			continue
		}
		t, ok := byName[r.ChampionName]
		if !ok {
			t = &championTally{name: r.ChampionName}
			byName[r.ChampionName] = t
		}
		t.games++
		if r.Win {
			t.wins++
		} else {
			t.losses++
		}
	}

	tallies := make([]*championTally, 0, len(byName))
	for _, t := range byName {
		tallies = append(tallies, t)
	}
	sort.Slice(tallies, func(i, j int) bool {
		if tallies[i].games != tallies[j].games {
			return tallies[i].games > tallies[j].games
		}
		return tallies[i].name < tallies[j].name
	})

	if len(tallies) > limit {
		tallies = tallies[:limit]
	}

	top := make([]domain.TopChampion, 0, len(tallies))
	for _, t := range tallies {
		top = append(top, domain.TopChampion{
			Name:           t.name,
			Games:          ptr(t.games),
			Wins:           ptr(t.wins),
			Losses:         ptr(t.losses),
			WinRatePercent: 100 * t.wins / t.games,
		})
	}
	return top
}

func outcome(r domain.MatchRecord) domain.Outcome {
	if r.Win {
		return domain.OutcomeWin
	}
	return domain.OutcomeLoss
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}

func ptr[T any](v T) *T {
	return &v
}
