package api

import (
	"context"
	"fmt"
	"net/url"

	"soloq-tracker/internal/config"
)

// RiotClient is the typed view over the Riot endpoints the report needs.
// Account and match calls go to the regional route, everything else to the
// platform host.
type RiotClient struct {
	http        *Client
	apiKey      string
	platformURL string
	regionalURL string
}

func NewRiotClient(http *Client, cfg *config.Config) *RiotClient {
	return &RiotClient{
		http:        http,
		apiKey:      cfg.RiotAPIKey,
		platformURL: cfg.PlatformURL,
		regionalURL: cfg.RegionalURL,
	}
}

func (c *RiotClient) HasCredential() bool {
	return c.apiKey != ""
}

func (c *RiotClient) GetAccount(ctx context.Context, gameName, tagLine string) (*AccountDTO, error) {
	u := fmt.Sprintf("%s/riot/account/v1/accounts/by-riot-id/%s/%s", c.regionalURL, url.PathEscape(gameName), url.PathEscape(tagLine))
	return doRequest[AccountDTO](ctx, c, u)
}

func (c *RiotClient) GetSummoner(ctx context.Context, puuid string) (*SummonerDTO, error) {
	u := fmt.Sprintf("%s/lol/summoner/v4/summoners/by-puuid/%s", c.platformURL, url.PathEscape(puuid))
	return doRequest[SummonerDTO](ctx, c, u)
}

func (c *RiotClient) GetLeagueEntries(ctx context.Context, puuid string) (*[]LeagueEntryDTO, error) {
	u := fmt.Sprintf("%s/lol/league/v4/entries/by-puuid/%s", c.platformURL, url.PathEscape(puuid))
	return doRequest[[]LeagueEntryDTO](ctx, c, u)
}

func (c *RiotClient) GetMatchIDs(ctx context.Context, puuid string, queue, count int) (*[]string, error) {
	q := url.Values{}
	q.Set("start", "0")
	q.Set("count", fmt.Sprint(count))
	if queue > 0 {
		q.Set("queue", fmt.Sprint(queue))
	}
	u := fmt.Sprintf("%s/lol/match/v5/matches/by-puuid/%s/ids?%s", c.regionalURL, url.PathEscape(puuid), q.Encode())
	return doRequest[[]string](ctx, c, u)
}

func (c *RiotClient) GetMatch(ctx context.Context, matchID string) (*MatchDTO, error) {
	u := fmt.Sprintf("%s/lol/match/v5/matches/%s", c.regionalURL, url.PathEscape(matchID))
	return doRequest[MatchDTO](ctx, c, u)
}

func (c *RiotClient) GetTopMastery(ctx context.Context, puuid string, count int) (*[]ChampionMasteryDTO, error) {
	u := fmt.Sprintf("%s/lol/champion-mastery/v4/champion-masteries/by-puuid/%s/top?count=%d", c.platformURL, url.PathEscape(puuid), count)
	return doRequest[[]ChampionMasteryDTO](ctx, c, u)
}

// GetActiveGame reports whether the player is currently in a game. The
// spectator endpoint answers 404 when they are not.
func (c *RiotClient) GetActiveGame(ctx context.Context, puuid string) (bool, error) {
	u := fmt.Sprintf("%s/lol/spectator/v5/active-games/by-summoner/%s", c.platformURL, url.PathEscape(puuid))
	if _, err := doRequest[CurrentGameDTO](ctx, c, u); err != nil {
		if IsNotFound(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func doRequest[T any](ctx context.Context, client *RiotClient, u string) (*T, error) {
	var result T
	headers := map[string]string{"X-Riot-Token": client.apiKey}
	if err := client.http.GetJSON(ctx, u, headers, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

type AccountDTO struct {
	PUUID    string `json:"puuid"`
	GameName string `json:"gameName"`
	TagLine  string `json:"tagLine"`
}

type SummonerDTO struct {
	PUUID         string `json:"puuid"`
	ProfileIconID int    `json:"profileIconId"`
	RevisionDate  int64  `json:"revisionDate"`
	SummonerLevel int    `json:"summonerLevel"`
}

type LeagueEntryDTO struct {
	LeagueID     string `json:"leagueId"`
	QueueType    string `json:"queueType"`
	Tier         string `json:"tier"`
	Rank         string `json:"rank"`
	LeaguePoints int    `json:"leaguePoints"`
	Wins         int    `json:"wins"`
	Losses       int    `json:"losses"`
	HotStreak    bool   `json:"hotStreak"`
}

type MatchDTO struct {
	Metadata MatchMetadataDTO `json:"metadata"`
	Info     MatchInfoDTO     `json:"info"`
}

type MatchMetadataDTO struct {
	MatchID      string   `json:"matchId"`
	Participants []string `json:"participants"`
}

type MatchInfoDTO struct {
	GameCreation     int64            `json:"gameCreation"`
	GameDuration     int64            `json:"gameDuration"`
	GameEndTimestamp int64            `json:"gameEndTimestamp"`
	GameMode         string           `json:"gameMode"`
	QueueID          int              `json:"queueId"`
	Participants     []ParticipantDTO `json:"participants"`
}

type ParticipantDTO struct {
	PUUID                       string `json:"puuid"`
	ChampionID                  int    `json:"championId"`
	ChampionName                string `json:"championName"`
	TeamID                      int    `json:"teamId"`
	Win                         bool   `json:"win"`
	Kills                       int    `json:"kills"`
	Deaths                      int    `json:"deaths"`
	Assists                     int    `json:"assists"`
	TotalMinionsKilled          int    `json:"totalMinionsKilled"`
	NeutralMinionsKilled        int    `json:"neutralMinionsKilled"`
	GoldEarned                  int    `json:"goldEarned"`
	TotalDamageDealtToChampions int    `json:"totalDamageDealtToChampions"`
	VisionScore                 int    `json:"visionScore"`
	Item0                       int    `json:"item0"`
	Item1                       int    `json:"item1"`
	Item2                       int    `json:"item2"`
	Item3                       int    `json:"item3"`
	Item4                       int    `json:"item4"`
	Item5                       int    `json:"item5"`
	Item6                       int    `json:"item6"`
}

type ChampionMasteryDTO struct {
	ChampionID     int `json:"championId"`
	ChampionLevel  int `json:"championLevel"`
	ChampionPoints int `json:"championPoints"`
}

type CurrentGameDTO struct {
	GameID        int64  `json:"gameId"`
	GameMode      string `json:"gameMode"`
	GameStartTime int64  `json:"gameStartTime"`
}
