// Package fallback fills report fields the primary API could not provide
// from secondary sources, in a fixed priority order.
package fallback

import (
	"context"

	"soloq-tracker/internal/domain"

	"github.com/rs/zerolog"
)

// Source is one named fallback data source.
type Source interface {
	Name() string
	Lookup(ctx context.Context, id domain.PlayerIdentity) (Partial, error)
}

type Resolver struct {
	sources []Source
	logger  zerolog.Logger
}

func NewResolver(logger zerolog.Logger, sources ...Source) *Resolver {
	return &Resolver{sources: sources, logger: logger}
}

func NewDefaultResolver(logger zerolog.Logger, structured *StructuredSource, page *PageSource) *Resolver {
	return NewResolver(logger, structured, page)
}

// Fill consults sources in order until base has no unknown fields. It never
// overwrites a known field. provenance receives field -> source name for
// every field it fills.
func (r *Resolver) Fill(ctx context.Context, id domain.PlayerIdentity, base *Partial, provenance map[string]string) {
	for _, src := range r.sources {
		missing := base.Missing()
		if len(missing) == 0 {
			return
		}

		log := r.logger.With().Str("source", src.Name()).Logger()
		log.Debug().Strs("missing", missing).Msg("consulting fallback source")

		partial, err := src.Lookup(ctx, id)
		if err != nil {
			log.Warn().Err(err).Str("name", id.Name).Str("tag", id.Tag).Msg("fallback source failed")
			continue
		}

		filled := base.fillFrom(partial)
		for _, field := range filled {
			provenance[field] = src.Name()
		}
		log.Info().Strs("filled", filled).Msg("fallback source applied")
	}

	if missing := base.Missing(); len(missing) > 0 {
		r.logger.Debug().Strs("missing", missing).Msg("fields left unknown after fallback")
	}
}
