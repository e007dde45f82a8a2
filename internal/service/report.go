package service

import (
	"context"
	"fmt"
	"time"

	"soloq-tracker/internal/api"
	"soloq-tracker/internal/config"
	"soloq-tracker/internal/constants"
	"soloq-tracker/internal/domain"
	"soloq-tracker/internal/fallback"
	"soloq-tracker/internal/stats"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

const primarySource = "riot-api"

type ReportService struct {
	riot     RiotAPI
	matches  *MatchFetcher
	resolver *fallback.Resolver
	cfg      *config.Config
	logger   zerolog.Logger
}

func NewReportService(riot RiotAPI, matches *MatchFetcher, resolver *fallback.Resolver, cfg *config.Config, logger zerolog.Logger) *ReportService {
	return &ReportService{riot: riot, matches: matches, resolver: resolver, cfg: cfg, logger: logger}
}

// primaryData collects stage A results. Each field is written by exactly one
// goroutine and read only after Wait.
type primaryData struct {
	summoner *domain.SummonerProfile
	ranked   []domain.RankedEntry
	rankedOK bool
	matchIDs []string
	mastery  []api.ChampionMasteryDTO
	inGame   *bool
}

func (s *ReportService) BuildReport(ctx context.Context, id domain.PlayerIdentity) (*domain.PlayerReport, error) {
	id = id.Normalize()
	if !id.Valid() {
		return nil, domain.ErrInvalidInput
	}

	ctx, cancel := context.WithTimeout(ctx, constants.RequestTimeout)
	defer cancel()

	log := s.logger.With().Str("name", id.Name).Str("tag", id.Tag).Logger()

	if s.cfg.PrimaryDisabled {
		log.Info().Msg("primary source disabled, building report from fallback sources")
		return s.fallbackOnly(ctx, id), nil
	}

	if !s.riot.HasCredential() {
		return nil, domain.ErrConfiguration
	}

	started := time.Now()
	log.Info().Msg("building player report")

	account, err := s.riot.GetAccount(ctx, id.Name, id.Tag)
	if err != nil {
		if api.IsNotFound(err) {
			log.Info().Msg("account not found")
			return nil, fmt.Errorf("%w: %s#%s", domain.ErrNotFound, id.Name, id.Tag)
		}
		log.Error().Err(err).Msg("failed to resolve account")
		return nil, fmt.Errorf("failed to resolve account: %w", err)
	}
	handle := domain.AccountHandle{PUUID: account.PUUID, GameName: account.GameName, TagLine: account.TagLine}
	log = log.With().Str("puuid", handle.PUUID).Logger()

	data := s.fetchPrimary(ctx, handle.PUUID, log)
	records := s.fetchMatches(ctx, handle.PUUID, data.matchIDs)
	agg := stats.Aggregate(records)

	base := primaryPartial(data, agg)
	sources := make(map[string]string)
	for _, field := range base.Known() {
		sources[field] = primarySource
	}
	if missing := base.Missing(); len(missing) > 0 {
		log.Debug().Strs("missing", missing).Msg("primary data incomplete, consulting fallback")
		s.resolver.Fill(ctx, id, &base, sources)
	}

	report := s.compose(id, handle, data, records, agg, base, sources)

	log.Info().
		Int("match_ids", len(data.matchIDs)).
		Int("matches", len(records)).
		Dur("elapsed", time.Since(started)).
		Msg("player report built")

	return report, nil
}

// fetchPrimary runs the independent per-player lookups concurrently. A
// failing lookup leaves its field unknown and never cancels its siblings.
func (s *ReportService) fetchPrimary(ctx context.Context, puuid string, log zerolog.Logger) primaryData {
	apiCtx, cancel := context.WithTimeout(ctx, constants.ExternalAPITimeout)
	defer cancel()

	var data primaryData
	var g errgroup.Group

	g.Go(func() error {
		summoner, err := s.riot.GetSummoner(apiCtx, puuid)
		if err != nil {
			log.Warn().Err(err).Msg("failed to fetch summoner")
			return nil
		}
		data.summoner = &domain.SummonerProfile{PUUID: summoner.PUUID, Level: summoner.SummonerLevel, ProfileIconID: summoner.ProfileIconID}
		return nil
	})

	g.Go(func() error {
		entries, err := s.riot.GetLeagueEntries(apiCtx, puuid)
		if err != nil {
			log.Warn().Err(err).Msg("failed to fetch ranked entries")
			return nil
		}
		data.ranked = toRankedEntries(*entries)
		data.rankedOK = true
		return nil
	})

	g.Go(func() error {
		if s.cfg.MatchWindow == 0 {
			return nil
		}
		ids, err := s.riot.GetMatchIDs(apiCtx, puuid, s.cfg.MatchQueue, s.cfg.MatchWindow)
		if err != nil {
			log.Warn().Err(err).Msg("failed to fetch match ids")
			return nil
		}
		data.matchIDs = *ids
		return nil
	})

	g.Go(func() error {
		mastery, err := s.riot.GetTopMastery(apiCtx, puuid, constants.MasteryLimit)
		if err != nil {
			log.Warn().Err(err).Msg("failed to fetch champion mastery")
			return nil
		}
		data.mastery = *mastery
		return nil
	})

	g.Go(func() error {
		inGame, err := s.riot.GetActiveGame(apiCtx, puuid)
		if err != nil {
			log.Warn().Err(err).Msg("failed to fetch live game status")
			return nil
		}
		data.inGame = &inGame
		return nil
	})

	_ = g.Wait()
	return data
}

// fetchMatches loads up to the configured window of matches with bounded
// concurrency. Each result lands in the slot of its id so the upstream
// most-recent-first order survives; failed fetches are dropped.
func (s *ReportService) fetchMatches(ctx context.Context, puuid string, ids []string) []domain.MatchRecord {
	if len(ids) > s.cfg.MatchWindow {
		ids = ids[:s.cfg.MatchWindow]
	}
	if len(ids) == 0 {
		return nil
	}

	apiCtx, cancel := context.WithTimeout(ctx, constants.ExternalAPITimeout)
	defer cancel()

	slots := make([]*domain.MatchRecord, len(ids))
	var g errgroup.Group
	g.SetLimit(constants.MatchFetchConcurrency)

	for i, matchID := range ids {
		g.Go(func() error {
			if record, ok := s.matches.Fetch(apiCtx, matchID, puuid); ok {
				slots[i] = record
			}
			return nil
		})
	}
	_ = g.Wait()

	records := make([]domain.MatchRecord, 0, len(slots))
	for _, r := range slots {
		if r != nil {
			records = append(records, *r)
		}
	}
	return records
}

func (s *ReportService) fallbackOnly(ctx context.Context, id domain.PlayerIdentity) *domain.PlayerReport {
	var base fallback.Partial
	sources := make(map[string]string)
	s.resolver.Fill(ctx, id, &base, sources)

	return &domain.PlayerReport{
		Name:          id.Name,
		Tag:           id.Tag,
		Level:         base.Level,
		Tier:          base.Tier,
		Rank:          base.Rank,
		LP:            base.LP,
		Wins:          base.Wins,
		Losses:        base.Losses,
		RecentResults: []domain.Outcome{},
		KDA:           base.KDA,
		TopChampions:  nonNil(base.TopChampions),
		RecentGames:   []domain.RecentGame{},
		Mastery:       []domain.MasteryEntry{},
		OpggURL:       fallback.ProfileURL(s.cfg.OpggBaseURL, id),
		Sources:       sources,
	}
}

func primaryPartial(data primaryData, agg domain.AggregateStats) fallback.Partial {
	var p fallback.Partial

	if data.summoner != nil {
		level := data.summoner.Level
		p.Level = &level
	}

	if data.rankedOK {
		if solo, ok := domain.SoloEntry(data.ranked); ok {
			p.Tier = &solo.Tier
			p.Rank = &solo.Division
			p.LP = &solo.LeaguePoints
			p.Wins = &solo.Wins
			p.Losses = &solo.Losses
		} else {
			p.Unranked()
		}
	}

	p.KDA = agg.KDA
	p.TopChampions = agg.TopChampions
	return p
}

func (s *ReportService) compose(id domain.PlayerIdentity, handle domain.AccountHandle, data primaryData, records []domain.MatchRecord, agg domain.AggregateStats, merged fallback.Partial, sources map[string]string) *domain.PlayerReport {
	report := &domain.PlayerReport{
		Name:          id.Name,
		Tag:           id.Tag,
		PUUID:         handle.PUUID,
		Level:         merged.Level,
		Tier:          merged.Tier,
		Rank:          merged.Rank,
		LP:            merged.LP,
		Wins:          merged.Wins,
		Losses:        merged.Losses,
		RecentResults: nonNil(agg.RecentResults),
		KDA:           merged.KDA,
		AvgKills:      agg.AvgKills,
		AvgDeaths:     agg.AvgDeaths,
		AvgAssists:    agg.AvgAssists,
		TopChampions:  nonNil(merged.TopChampions),
		RecentGames:   recentGames(records),
		Mastery:       masteryEntries(data.mastery, records),
		InGame:        data.inGame,
		OpggURL:       fallback.ProfileURL(s.cfg.OpggBaseURL, id),
		Sources:       sources,
	}

	if handle.GameName != "" {
		report.Name = handle.GameName
	}
	if handle.TagLine != "" {
		report.Tag = handle.TagLine
	}
	if data.summoner != nil {
		icon := data.summoner.ProfileIconID
		report.ProfileIconID = &icon
	}
	if agg.Streak != nil {
		report.Streak = &domain.StreakView{Count: agg.Streak.Count, Kind: agg.Streak.Kind, Label: agg.Streak.Label()}
	}

	return report
}

func toRankedEntries(entries []api.LeagueEntryDTO) []domain.RankedEntry {
	out := make([]domain.RankedEntry, 0, len(entries))
	for _, e := range entries {
		out = append(out, domain.RankedEntry{
			Queue:        queueKind(e.QueueType),
			Tier:         e.Tier,
			Division:     e.Rank,
			LeaguePoints: e.LeaguePoints,
			Wins:         e.Wins,
			Losses:       e.Losses,
		})
	}
	return out
}

func queueKind(queueType string) domain.QueueKind {
	switch queueType {
	case "RANKED_SOLO_5x5":
		return domain.QueueSolo
	case "RANKED_FLEX_SR":
		return domain.QueueFlex
	default:
		return domain.QueueOther
	}
}

func recentGames(records []domain.MatchRecord) []domain.RecentGame {
	games := make([]domain.RecentGame, 0, len(records))
	for _, r := range records {
		result := domain.OutcomeLoss
		if r.Win {
			result = domain.OutcomeWin
		}
		games = append(games, domain.RecentGame{
			MatchID:   r.MatchID,
			Result:    result,
			Champion:  r.ChampionName,
			Kills:     r.Kills,
			Deaths:    r.Deaths,
			Assists:   r.Assists,
			CS:        r.CS,
			Gold:      r.Gold,
			Damage:    r.Damage,
			Vision:    r.Vision,
			Items:     nonNil(r.Items),
			CreatedAt: r.CreatedAt.UnixMilli(),
			DurationS: int64(r.Duration / time.Second),
		})
	}
	return games
}

// masteryEntries names champions from the match window when it contains
// them; the mastery endpoint only returns ids.
func masteryEntries(mastery []api.ChampionMasteryDTO, records []domain.MatchRecord) []domain.MasteryEntry {
	names := make(map[int]string)
	for _, r := range records {
		if r.ChampionName != "" {
			names[r.ChampionID] = r.ChampionName
		}
	}

	entries := make([]domain.MasteryEntry, 0, len(mastery))
	for _, m := range mastery {
		entries = append(entries, domain.MasteryEntry{
			ChampionID:     m.ChampionID,
			ChampionName:   names[m.ChampionID],
			ChampionLevel:  m.ChampionLevel,
			ChampionPoints: m.ChampionPoints,
		})
	}
	return entries
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
