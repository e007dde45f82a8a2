package stats

import (
	"testing"

	"soloq-tracker/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func results(s string) []domain.Outcome {
	out := make([]domain.Outcome, len(s))
	for i, c := range s {
		out[i] = domain.Outcome(string(c))
	}
	return out
}

func TestHeadStreak(t *testing.T) {
	tests := []struct {
		name     string
		results  string
		expected *domain.Streak
	}{
		{name: "empty", results: "", expected: nil},
		{name: "single game", results: "W", expected: nil},
		{name: "two wins is not a streak", results: "WWL", expected: nil},
		{name: "exactly three wins", results: "WWWL", expected: &domain.Streak{Count: 3, Kind: domain.OutcomeWin}},
		{name: "loss streak", results: "LLLLW", expected: &domain.Streak{Count: 4, Kind: domain.OutcomeLoss}},
		{name: "only head run counts", results: "WLLLLL", expected: nil},
		{name: "whole window", results: "LLLLLLLLLL", expected: &domain.Streak{Count: 10, Kind: domain.OutcomeLoss}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, HeadStreak(results(tt.results)))
		})
	}
}

func TestStreakLabel(t *testing.T) {
	assert.Equal(t, "Win Streak", domain.Streak{Count: 3, Kind: domain.OutcomeWin}.Label())
	assert.Equal(t, "Loss Streak", domain.Streak{Count: 5, Kind: domain.OutcomeLoss}.Label())
}

func TestKDA(t *testing.T) {
	tests := []struct {
		name                   string
		kills, deaths, assists int
		expected               float64
	}{
		{name: "zero deaths is kill plus assist sum", kills: 7, deaths: 0, assists: 5, expected: 12},
		{name: "all zero", kills: 0, deaths: 0, assists: 0, expected: 0},
		{name: "exact ratio", kills: 10, deaths: 5, assists: 10, expected: 4},
		{name: "rounded to two decimals", kills: 10, deaths: 3, assists: 0, expected: 3.33},
		{name: "rounds half up", kills: 1, deaths: 8, assists: 0, expected: 0.13},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, KDA(tt.kills, tt.deaths, tt.assists))
		})
	}
}

func TestTopChampions(t *testing.T) {
	records := []domain.MatchRecord{
		{ChampionName: "Ahri", Win: true},
		{ChampionName: "Ahri", Win: false},
		{ChampionName: "Ahri", Win: true},
		{ChampionName: "Zed", Win: true},
		{ChampionName: "Zed", Win: false},
		{ChampionName: "Annie", Win: false},
		{ChampionName: "Annie", Win: true},
		{ChampionName: "Lux", Win: true},
	}

	top := TopChampions(records, 3)
	require.Len(t, top, 3)

	assert.Equal(t, "Ahri", top[0].Name)
	assert.Equal(t, 3, *top[0].Games)
	assert.Equal(t, 2, *top[0].Wins)
	assert.Equal(t, 1, *top[0].Losses)
	assert.Equal(t, 66, top[0].WinRatePercent)

	// Annie and Zed tie on games; name ascending decides.
	assert.Equal(t, "Annie", top[1].Name)
	assert.Equal(t, "Zed", top[2].Name)
	assert.Equal(t, 50, top[2].WinRatePercent)
}

func TestTopChampionsSkipsUnnamedAndShortLists(t *testing.T) {
	records := []domain.MatchRecord{
		{ChampionName: "", Win: true},
		{ChampionName: "Jinx", Win: false},
	}

	top := TopChampions(records, 3)
	require.Len(t, top, 1)
	assert.Equal(t, "Jinx", top[0].Name)
	assert.Equal(t, 0, top[0].WinRatePercent)
}

func TestAggregateEmptyWindowIsUnknown(t *testing.T) {
	agg := Aggregate(nil)

	assert.Nil(t, agg.RecentResults)
	assert.Nil(t, agg.Streak)
	assert.Nil(t, agg.KDA)
	assert.Nil(t, agg.AvgKills)
	assert.Nil(t, agg.AvgDeaths)
	assert.Nil(t, agg.AvgAssists)
	assert.Empty(t, agg.TopChampions)
}

func TestAggregate(t *testing.T) {
	records := []domain.MatchRecord{
		{MatchID: "m1", Win: true, Kills: 10, Deaths: 2, Assists: 5, ChampionName: "Ahri"},
		{MatchID: "m2", Win: true, Kills: 3, Deaths: 4, Assists: 8, ChampionName: "Ahri"},
		{MatchID: "m3", Win: true, Kills: 6, Deaths: 1, Assists: 2, ChampionName: "Syndra"},
		{MatchID: "m4", Win: false, Kills: 1, Deaths: 7, Assists: 3, ChampionName: "Ahri"},
	}

	agg := Aggregate(records)

	assert.Equal(t, results("WWWL"), agg.RecentResults)
	require.NotNil(t, agg.Streak)
	assert.Equal(t, 3, agg.Streak.Count)
	assert.Equal(t, domain.OutcomeWin, agg.Streak.Kind)

	require.NotNil(t, agg.KDA)
	// (20 + 18) / 14
	assert.Equal(t, 2.71, *agg.KDA)
	assert.Equal(t, 5.0, *agg.AvgKills)
	assert.Equal(t, 3.5, *agg.AvgDeaths)
	assert.Equal(t, 4.5, *agg.AvgAssists)

	require.Len(t, agg.TopChampions, 2)
	assert.Equal(t, "Ahri", agg.TopChampions[0].Name)
	assert.Equal(t, 66, agg.TopChampions[0].WinRatePercent)
	assert.Equal(t, "Syndra", agg.TopChampions[1].Name)
	assert.Equal(t, 100, agg.TopChampions[1].WinRatePercent)
}
