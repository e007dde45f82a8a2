package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"soloq-tracker/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRiotTestClient(t *testing.T, handler http.HandlerFunc) *RiotClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg := &config.Config{RiotAPIKey: "RGAPI-test", PlatformURL: srv.URL, RegionalURL: srv.URL}
	return NewRiotClient(newTestClient(), cfg)
}

func TestRiotGetAccountEscapesRiotID(t *testing.T) {
	riot := newRiotTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "RGAPI-test", r.Header.Get("X-Riot-Token"))
		assert.Equal(t, "/riot/account/v1/accounts/by-riot-id/Hide on bush/KR1", r.URL.Path)
		w.Write([]byte(`{"puuid":"p-1","gameName":"Hide on bush","tagLine":"KR1"}`))
	})

	account, err := riot.GetAccount(context.Background(), "Hide on bush", "KR1")

	require.NoError(t, err)
	assert.Equal(t, "p-1", account.PUUID)
	assert.Equal(t, "Hide on bush", account.GameName)
}

func TestRiotGetMatchIDsQuery(t *testing.T) {
	riot := newRiotTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/lol/match/v5/matches/by-puuid/p-1/ids", r.URL.Path)
		assert.Equal(t, "0", r.URL.Query().Get("start"))
		assert.Equal(t, "10", r.URL.Query().Get("count"))
		assert.Equal(t, "420", r.URL.Query().Get("queue"))
		w.Write([]byte(`["EUW1_2","EUW1_1"]`))
	})

	ids, err := riot.GetMatchIDs(context.Background(), "p-1", 420, 10)

	require.NoError(t, err)
	assert.Equal(t, []string{"EUW1_2", "EUW1_1"}, *ids)
}

func TestRiotGetLeagueEntries(t *testing.T) {
	riot := newRiotTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/lol/league/v4/entries/by-puuid/p-1", r.URL.Path)
		w.Write([]byte(`[{"queueType":"RANKED_SOLO_5x5","tier":"GOLD","rank":"II","leaguePoints":55,"wins":10,"losses":8}]`))
	})

	entries, err := riot.GetLeagueEntries(context.Background(), "p-1")

	require.NoError(t, err)
	require.Len(t, *entries, 1)
	assert.Equal(t, "GOLD", (*entries)[0].Tier)
	assert.Equal(t, 55, (*entries)[0].LeaguePoints)
}

func TestRiotGetTopMastery(t *testing.T) {
	riot := newRiotTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/lol/champion-mastery/v4/champion-masteries/by-puuid/p-1/top", r.URL.Path)
		assert.Equal(t, "3", r.URL.Query().Get("count"))
		w.Write([]byte(`[{"championId":103,"championLevel":7,"championPoints":250000}]`))
	})

	mastery, err := riot.GetTopMastery(context.Background(), "p-1", 3)

	require.NoError(t, err)
	assert.Equal(t, []ChampionMasteryDTO{{ChampionID: 103, ChampionLevel: 7, ChampionPoints: 250000}}, *mastery)
}

func TestRiotGetActiveGame(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		expected bool
		wantErr  bool
	}{
		{name: "in game", status: http.StatusOK, expected: true},
		{name: "not in game", status: http.StatusNotFound, expected: false},
		{name: "upstream failure", status: http.StatusInternalServerError, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			riot := newRiotTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/lol/spectator/v5/active-games/by-summoner/p-1", r.URL.Path)
				w.WriteHeader(tt.status)
				w.Write([]byte(`{"gameId":1}`))
			})

			inGame, err := riot.GetActiveGame(context.Background(), "p-1")

			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, inGame)
		})
	}
}

func TestRiotHasCredential(t *testing.T) {
	assert.True(t, NewRiotClient(newTestClient(), &config.Config{RiotAPIKey: "k"}).HasCredential())
	assert.False(t, NewRiotClient(newTestClient(), &config.Config{}).HasCredential())
}
