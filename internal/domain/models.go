package domain

import (
	"strings"
	"time"
)

type PlayerIdentity struct {
	Name string
	Tag  string
}

func (p PlayerIdentity) Normalize() PlayerIdentity {
	return PlayerIdentity{
		Name: strings.TrimSpace(p.Name),
		Tag:  strings.TrimPrefix(strings.TrimSpace(p.Tag), "#"),
	}
}

func (p PlayerIdentity) Valid() bool {
	return p.Name != "" && p.Tag != ""
}

type AccountHandle struct {
	PUUID    string
	GameName string
	TagLine  string
}

type SummonerProfile struct {
	PUUID         string
	Level         int
	ProfileIconID int
}

type QueueKind string

const (
	QueueSolo  QueueKind = "SOLO"
	QueueFlex  QueueKind = "FLEX"
	QueueOther QueueKind = "OTHER"
)

type RankedEntry struct {
	Queue        QueueKind
	Tier         string
	Division     string
	LeaguePoints int
	Wins         int
	Losses       int
}

// SoloEntry returns the SOLO queue entry, if any.
func SoloEntry(entries []RankedEntry) (RankedEntry, bool) {
	for _, e := range entries {
		if e.Queue == QueueSolo {
			return e, true
		}
	}
	return RankedEntry{}, false
}

type MatchRecord struct {
	MatchID      string
	Win          bool
	Kills        int
	Deaths       int
	Assists      int
	ChampionID   int
	ChampionName string
	CreatedAt    time.Time
	Duration     time.Duration
	CS           int
	Gold         int
	Damage       int
	Vision       int
	Items        []int
}

type Outcome string

const (
	OutcomeWin  Outcome = "W"
	OutcomeLoss Outcome = "L"
)

type Streak struct {
	Count int
	Kind  Outcome
}

func (s Streak) Label() string {
	if s.Kind == OutcomeWin {
		return "Win Streak"
	}
	return "Loss Streak"
}

type TopChampion struct {
	Name           string `json:"name"`
	Games          *int   `json:"games"`
	Wins           *int   `json:"wins"`
	Losses         *int   `json:"losses"`
	WinRatePercent int    `json:"winRatePercent"`
}

type AggregateStats struct {
	RecentResults []Outcome
	Streak        *Streak
	KDA           *float64
	AvgKills      *float64
	AvgDeaths     *float64
	AvgAssists    *float64
	TopChampions  []TopChampion
}

type MasteryEntry struct {
	ChampionID     int    `json:"championId"`
	ChampionName   string `json:"championName,omitempty"`
	ChampionLevel  int    `json:"championLevel"`
	ChampionPoints int    `json:"championPoints"`
}

type RecentGame struct {
	MatchID   string  `json:"matchId"`
	Result    Outcome `json:"result"`
	Champion  string  `json:"champion"`
	Kills     int     `json:"kills"`
	Deaths    int     `json:"deaths"`
	Assists   int     `json:"assists"`
	CS        int     `json:"cs"`
	Gold      int     `json:"gold"`
	Damage    int     `json:"damage"`
	Vision    int     `json:"vision"`
	Items     []int   `json:"items"`
	CreatedAt int64   `json:"gameCreation"`
	DurationS int64   `json:"gameDuration"`
}

type StreakView struct {
	Count int     `json:"count"`
	Kind  Outcome `json:"kind"`
	Label string  `json:"label"`
}

// PlayerReport is the composed response. Nil pointers serialize as null and
// mean "unknown", never zero.
type PlayerReport struct {
	Name          string            `json:"name"`
	Tag           string            `json:"tag"`
	PUUID         string            `json:"puuid,omitempty"`
	Level         *int              `json:"level"`
	ProfileIconID *int              `json:"profileIconId"`
	Tier          *string           `json:"tier"`
	Rank          *string           `json:"rank"`
	LP            *int              `json:"lp"`
	Wins          *int              `json:"wins"`
	Losses        *int              `json:"losses"`
	RecentResults []Outcome         `json:"recentResults"`
	Streak        *StreakView       `json:"streak"`
	KDA           *float64          `json:"kda"`
	AvgKills      *float64          `json:"avgKills"`
	AvgDeaths     *float64          `json:"avgDeaths"`
	AvgAssists    *float64          `json:"avgAssists"`
	TopChampions  []TopChampion     `json:"topChampions"`
	RecentGames   []RecentGame      `json:"recentGames"`
	Mastery       []MasteryEntry    `json:"mastery"`
	InGame        *bool             `json:"inGame"`
	OpggURL       string            `json:"opggUrl"`
	Sources       map[string]string `json:"sources"`
}
