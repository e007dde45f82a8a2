package domain

import "errors"

var (
	ErrInvalidInput  = errors.New("missing name or tag")
	ErrNotFound      = errors.New("summoner not found")
	ErrConfiguration = errors.New("RIOT_API_KEY not configured")
)
