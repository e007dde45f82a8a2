package service

import (
	"context"
	"time"

	"soloq-tracker/internal/api"
	"soloq-tracker/internal/constants"
	"soloq-tracker/internal/domain"

	"github.com/rs/zerolog"
)

// RiotAPI is the subset of the Riot client the report pipeline calls.
type RiotAPI interface {
	HasCredential() bool
	GetAccount(ctx context.Context, gameName, tagLine string) (*api.AccountDTO, error)
	GetSummoner(ctx context.Context, puuid string) (*api.SummonerDTO, error)
	GetLeagueEntries(ctx context.Context, puuid string) (*[]api.LeagueEntryDTO, error)
	GetMatchIDs(ctx context.Context, puuid string, queue, count int) (*[]string, error)
	GetMatch(ctx context.Context, matchID string) (*api.MatchDTO, error)
	GetTopMastery(ctx context.Context, puuid string, count int) (*[]api.ChampionMasteryDTO, error)
	GetActiveGame(ctx context.Context, puuid string) (bool, error)
}

type MatchFetcher struct {
	riot   RiotAPI
	logger zerolog.Logger
}

func NewMatchFetcher(riot RiotAPI, logger zerolog.Logger) *MatchFetcher {
	return &MatchFetcher{riot: riot, logger: logger}
}

// Fetch returns the player's record for one match. Any failure is logged and
// reported as absent so a single bad match never fails the report.
func (f *MatchFetcher) Fetch(ctx context.Context, matchID, puuid string) (*domain.MatchRecord, bool) {
	match, err := f.riot.GetMatch(ctx, matchID)
	if err != nil {
		f.logger.Warn().Err(err).Str("match_id", matchID).Msg("failed to fetch match")
		return nil, false
	}

	record, ok := toMatchRecord(match, matchID, puuid)
	if !ok {
		f.logger.Warn().Str("match_id", matchID).Str("puuid", puuid).Msg("player not found among match participants")
		return nil, false
	}
	return record, true
}

func toMatchRecord(match *api.MatchDTO, matchID, puuid string) (*domain.MatchRecord, bool) {
	for _, p := range match.Info.Participants {
		if p.PUUID != puuid {
			continue
		}

		return &domain.MatchRecord{
			MatchID:      matchID,
			Win:          p.Win,
			Kills:        p.Kills,
			Deaths:       p.Deaths,
			Assists:      p.Assists,
			ChampionID:   p.ChampionID,
			ChampionName: p.ChampionName,
			CreatedAt:    time.UnixMilli(match.Info.GameCreation),
			Duration:     gameDuration(match.Info),
			CS:           p.TotalMinionsKilled + p.NeutralMinionsKilled,
			Gold:         p.GoldEarned,
			Damage:       p.TotalDamageDealtToChampions,
			Vision:       p.VisionScore,
			Items:        items(p),
		}, true
	}
	return nil, false
}

// Matches played before gameEndTimestamp existed report gameDuration in
// milliseconds; newer ones in seconds.
func gameDuration(info api.MatchInfoDTO) time.Duration {
	if info.GameEndTimestamp > 0 {
		return time.Duration(info.GameDuration) * time.Second
	}
	return time.Duration(info.GameDuration) * time.Millisecond
}

func items(p api.ParticipantDTO) []int {
	slots := [constants.MaxItemSlots]int{p.Item0, p.Item1, p.Item2, p.Item3, p.Item4, p.Item5, p.Item6}
	out := make([]int, 0, constants.MaxItemSlots)
	for _, id := range slots {
		if id > 0 {
			out = append(out, id)
		}
	}
	return out
}
