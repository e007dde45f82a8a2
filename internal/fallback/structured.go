package fallback

import (
	"bytes"
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"soloq-tracker/internal/api"
	"soloq-tracker/internal/config"
	"soloq-tracker/internal/constants"
	"soloq-tracker/internal/domain"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const soloQueueGameType = "SOLORANKED"

// StructuredSource queries a JSON summoner API shaped like op.gg's internal
// one. Only fields present in the answer are returned.
type StructuredSource struct {
	http *api.Client
	url  string
}

func NewStructuredSource(http *api.Client, cfg *config.Config) *StructuredSource {
	return &StructuredSource{http: http, url: cfg.FallbackAPIURL}
}

func (s *StructuredSource) Name() string {
	return "structured-api"
}

type summonerQuery struct {
	GameName string `json:"game_name"`
	TagLine  string `json:"tag_line"`
	Region   string `json:"region"`
}

type structuredResponse struct {
	Data profileData `json:"data"`
}

// profileData is shared by the structured API and the __NEXT_DATA__ blob
// embedded in the profile page.
type profileData struct {
	Summoner *struct {
		Level *int `json:"level"`
	} `json:"summoner"`
	LeagueStats   []leagueStat    `json:"league_stats"`
	ChampionStats []championStat  `json:"champion_stats"`
	KDA           *flexibleNumber `json:"kda"`
}

type leagueStat struct {
	QueueInfo struct {
		ID       int    `json:"id"`
		GameType string `json:"game_type"`
	} `json:"queue_info"`
	TierInfo *struct {
		Tier     *string         `json:"tier"`
		Division *flexibleString `json:"division"`
		LP       *int            `json:"lp"`
	} `json:"tier_info"`
	Win  *int `json:"win"`
	Lose *int `json:"lose"`
}

type championStat struct {
	Name string `json:"name"`
	Play int    `json:"play"`
	Win  int    `json:"win"`
	Lose int    `json:"lose"`
}

// flexibleString accepts both a JSON string and a JSON number.
type flexibleString string

func (f *flexibleString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = flexibleString(s)
		return nil
	}
	if string(b) == "null" {
		return nil
	}
	*f = flexibleString(string(b))
	return nil
}

// flexibleNumber accepts a JSON number or a numeric string.
type flexibleNumber float64

func (f *flexibleNumber) UnmarshalJSON(b []byte) error {
	raw := strings.Trim(string(bytes.TrimSpace(b)), `"`)
	if raw == "" || raw == "null" {
		return nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return fmt.Errorf("invalid number %q: %w", raw, err)
	}
	*f = flexibleNumber(v)
	return nil
}

func (s *StructuredSource) Lookup(ctx context.Context, id domain.PlayerIdentity) (Partial, error) {
	var resp structuredResponse
	query := summonerQuery{GameName: id.Name, TagLine: id.Tag, Region: constants.OpggRegion}
	if err := s.http.PostJSON(ctx, s.url, map[string]string{"Accept": "application/json"}, query, &resp); err != nil {
		return Partial{}, fmt.Errorf("structured lookup failed: %w", err)
	}
	return resp.Data.toPartial(), nil
}

func (d profileData) toPartial() Partial {
	var p Partial

	if d.Summoner != nil && d.Summoner.Level != nil {
		p.Level = d.Summoner.Level
	}

	if d.LeagueStats != nil {
		solo, ok := d.soloQueue()
		switch {
		case !ok:
			p.Unranked()
		case solo.TierInfo == nil || solo.TierInfo.Tier == nil || *solo.TierInfo.Tier == "":
			p.Unranked()
		default:
			p.Tier = ptr(strings.ToUpper(*solo.TierInfo.Tier))
			if solo.TierInfo.Division != nil {
				p.Rank = ptr(normalizeDivision(string(*solo.TierInfo.Division)))
			}
			p.LP = solo.TierInfo.LP
			p.Wins = solo.Win
			p.Losses = solo.Lose
		}
	}

	if d.KDA != nil {
		p.KDA = ptr(float64(*d.KDA))
	}

	var champions []championStat
	for _, c := range d.ChampionStats {
		if c.Name != "" && c.Play > 0 {
			champions = append(champions, c)
		}
	}
	sort.SliceStable(champions, func(i, j int) bool {
		if champions[i].Play != champions[j].Play {
			return champions[i].Play > champions[j].Play
		}
		return champions[i].Name < champions[j].Name
	})
	if len(champions) > constants.TopChampionsLimit {
		champions = champions[:constants.TopChampionsLimit]
	}
	for _, c := range champions {
		p.TopChampions = append(p.TopChampions, domain.TopChampion{
			Name:           c.Name,
			Games:          ptr(c.Play),
			Wins:           ptr(c.Win),
			Losses:         ptr(c.Lose),
			WinRatePercent: 100 * c.Win / c.Play,
		})
	}

	return p
}

func (d profileData) soloQueue() (leagueStat, bool) {
	for _, ls := range d.LeagueStats {
		if ls.QueueInfo.ID == constants.SoloQueueID || ls.QueueInfo.GameType == soloQueueGameType {
			return ls, true
		}
	}
	return leagueStat{}, false
}
