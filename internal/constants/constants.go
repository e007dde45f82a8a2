package constants

import "time"

const (
	ExternalAPITimeout = 10 * time.Second
	RequestTimeout     = 30 * time.Second
	ShutdownTimeout    = 5 * time.Second
)

const (
	MaxRateLimitAttempts = 3
	DefaultRetryAfter    = 1 * time.Second
	MaxRetryAfter        = 10 * time.Second
	MaxTransientRetries  = 2
	TransientBackoff     = 250 * time.Millisecond
)

const (
	SoloQueueID           = 420
	DefaultMatchWindow    = 10
	MaxMatchWindow        = 20
	MatchFetchConcurrency = 10
	TopChampionsLimit     = 3
	MasteryLimit          = 3
	StreakThreshold       = 3
	MaxItemSlots          = 7
)

const (
	DefaultPlatformURL = "https://euw1.api.riotgames.com"
	DefaultRegionalURL = "https://europe.api.riotgames.com"
	DefaultOpggBaseURL = "https://www.op.gg"
	DefaultFallbackURL = "https://lol-api-summoner.op.gg/api/v1/summoners/query"
	OpggRegion         = "euw"
)

const (
	UpstreamMaxConnsPerHost = 100
	UpstreamIdleConnTTL     = 1 * time.Minute
	MaxErrorBodyBytes       = 512
)
