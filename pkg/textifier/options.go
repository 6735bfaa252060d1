package textifier

import (
	"errors"
	"fmt"
	"strings"

	"wikitextifier/pkg/model"
)

// ErrInvalidFormat is returned for an unrecognized format selector.
var ErrInvalidFormat = errors.New("invalid format")

// Format selects the output rendering.
type Format string

const (
	FormatJSON    Format = "json"
	FormatText    Format = "text"
	FormatTriplet Format = "triplet"
)

// ParseFormat maps a query-parameter value onto a Format. The empty
// string means the default (json).
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "json":
		return FormatJSON, nil
	case "text":
		return FormatText, nil
	case "triplet":
		return FormatTriplet, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidFormat, s)
}

// Options carries the per-request rendering switches.
type Options struct {
	Format Format

	// ExternalIDs keeps external-id claims, rendered as their raw
	// identifier strings. When false those claims are dropped entirely.
	ExternalIDs bool

	// References includes reference groups in json and triplet output.
	References bool

	// AllRanks disables the deprecated-claim filtering in json and text
	// output. Triplet output always carries every rank.
	AllRanks bool

	// Properties, when non-empty, restricts output to these claim
	// properties.
	Properties []model.EntityID

	// FallbackLang, when set, replaces the configured fallback languages
	// for this request.
	FallbackLang string
}

// DefaultOptions returns the option defaults for an inbound request.
func DefaultOptions() Options {
	return Options{Format: FormatJSON, ExternalIDs: true}
}

func (o Options) wantsProperty(id model.EntityID) bool {
	if len(o.Properties) == 0 {
		return true
	}
	for _, p := range o.Properties {
		if p == id {
			return true
		}
	}
	return false
}
