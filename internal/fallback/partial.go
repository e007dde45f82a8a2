package fallback

import (
	"strconv"
	"strings"

	"soloq-tracker/internal/domain"
)

const (
	FieldLevel        = "level"
	FieldTier         = "tier"
	FieldRank         = "rank"
	FieldLP           = "lp"
	FieldWins         = "wins"
	FieldLosses       = "losses"
	FieldKDA          = "kda"
	FieldTopChampions = "topChampions"
)

// Partial is the subset of report fields a data source can supply. A nil
// field is unknown.
type Partial struct {
	Level        *int
	Tier         *string
	Rank         *string
	LP           *int
	Wins         *int
	Losses       *int
	KDA          *float64
	TopChampions []domain.TopChampion
}

// Missing lists the fields that are still unknown.
func (p *Partial) Missing() []string {
	var missing []string
	if p.Level == nil {
		missing = append(missing, FieldLevel)
	}
	if p.Tier == nil {
		missing = append(missing, FieldTier)
	}
	if p.Rank == nil {
		missing = append(missing, FieldRank)
	}
	if p.LP == nil {
		missing = append(missing, FieldLP)
	}
	if p.Wins == nil {
		missing = append(missing, FieldWins)
	}
	if p.Losses == nil {
		missing = append(missing, FieldLosses)
	}
	if p.KDA == nil {
		missing = append(missing, FieldKDA)
	}
	if len(p.TopChampions) == 0 {
		missing = append(missing, FieldTopChampions)
	}
	return missing
}

// Known lists the fields that carry a value.
func (p *Partial) Known() []string {
	missing := make(map[string]bool)
	for _, f := range p.Missing() {
		missing[f] = true
	}
	var known []string
	for _, f := range allFields {
		if !missing[f] {
			known = append(known, f)
		}
	}
	return known
}

var allFields = []string{FieldLevel, FieldTier, FieldRank, FieldLP, FieldWins, FieldLosses, FieldKDA, FieldTopChampions}

// fillFrom copies every field that is unknown in p and known in from, and
// returns the names of the fields it filled.
func (p *Partial) fillFrom(from Partial) []string {
	var filled []string
	if p.Level == nil && from.Level != nil {
		p.Level = from.Level
		filled = append(filled, FieldLevel)
	}
	if p.Tier == nil && from.Tier != nil {
		p.Tier = from.Tier
		filled = append(filled, FieldTier)
	}
	if p.Rank == nil && from.Rank != nil {
		p.Rank = from.Rank
		filled = append(filled, FieldRank)
	}
	if p.LP == nil && from.LP != nil {
		p.LP = from.LP
		filled = append(filled, FieldLP)
	}
	if p.Wins == nil && from.Wins != nil {
		p.Wins = from.Wins
		filled = append(filled, FieldWins)
	}
	if p.Losses == nil && from.Losses != nil {
		p.Losses = from.Losses
		filled = append(filled, FieldLosses)
	}
	if p.KDA == nil && from.KDA != nil {
		p.KDA = from.KDA
		filled = append(filled, FieldKDA)
	}
	if len(p.TopChampions) == 0 && len(from.TopChampions) > 0 {
		p.TopChampions = from.TopChampions
		filled = append(filled, FieldTopChampions)
	}
	return filled
}

// Unranked sets the ranked fields to the explicit unranked state.
func (p *Partial) Unranked() {
	p.Tier = ptr("UNRANKED")
	p.Rank = ptr("")
	p.LP = ptr(0)
	p.Wins = ptr(0)
	p.Losses = ptr(0)
}

var romanDivisions = map[string]string{"1": "I", "2": "II", "3": "III", "4": "IV"}

// normalizeDivision maps the numeric divisions used by op.gg to the roman
// numerals the Riot API returns.
func normalizeDivision(d string) string {
	d = strings.TrimSpace(d)
	if roman, ok := romanDivisions[d]; ok {
		return roman
	}
	return strings.ToUpper(d)
}

func atoiPtr(s string) *int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return nil
	}
	return &n
}

func ptr[T any](v T) *T {
	return &v
}
