package translate

import (
	"context"

	"github.com/rs/zerolog"
)

// Translator converts text between two language codes.
type Translator interface {
	Translate(ctx context.Context, text, source, target string) (string, error)
}

// Provider chains the offline daemon and the online fallback. It never
// fails: when both translators are down the original text passes through
// unchanged, flagged as a fallback, so synthesis can still proceed.
type Provider struct {
	offline Translator
	online  Translator
	logger  zerolog.Logger
}

// NewProvider wires the offline-first, online-second chain. Either
// translator may be nil.
func NewProvider(offline, online Translator, logger zerolog.Logger) *Provider {
	return &Provider{offline: offline, online: online, logger: logger}
}

// Translate returns the translated text and whether the result fell back
// to the original because no translator was available.
func (p *Provider) Translate(ctx context.Context, text, source, target string) (string, bool) {
	if source == target {
		return text, false
	}

	if p.offline != nil && !isNilTranslator(p.offline) {
		out, err := p.offline.Translate(ctx, text, source, target)
		if err == nil {
			return out, false
		}
		p.logger.Warn().Err(err).Str("source", source).Str("target", target).
			Msg("offline translation failed, trying online fallback")
	}

	if p.online != nil {
		out, err := p.online.Translate(ctx, text, source, target)
		if err == nil {
			return out, false
		}
		p.logger.Warn().Err(err).Str("source", source).Str("target", target).
			Msg("online translation failed")
	}

	p.logger.Warn().Str("source", source).Str("target", target).
		Msg("translation unavailable, using original text")
	return text, true
}

// isNilTranslator guards against a typed-nil *OfflineClient stored in the
// interface.
func isNilTranslator(t Translator) bool {
	c, ok := t.(*OfflineClient)
	return ok && c == nil
}
