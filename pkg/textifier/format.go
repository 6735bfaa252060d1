package textifier

import (
	"encoding/json"
	"fmt"
	"strings"

	"wikitextifier/pkg/model"
)

// FormatItem renders one resolved item in the requested format. The
// formatters are pure: same input, same output.
func FormatItem(r *model.ResolvedItem, opts Options) (string, error) {
	switch opts.Format {
	case FormatJSON:
		return formatJSON(r, opts)
	case FormatText:
		return formatText(r, opts)
	case FormatTriplet:
		return formatTriplet(r, opts)
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidFormat, string(opts.Format))
}

// FormatItems renders one or more resolved items. A single item renders
// bare; multiple items combine per format: a json object keyed by
// entity ID, blank-line-separated paragraphs for text, newline-joined
// lines for triplet.
func FormatItems(items []*model.ResolvedItem, opts Options) (string, error) {
	if len(items) == 1 {
		return FormatItem(items[0], opts)
	}

	if opts.Format == FormatJSON {
		combined := &orderedObject{}
		for _, r := range items {
			combined.set(string(r.Item.ID), entityObject(r, opts))
		}
		b, err := json.Marshal(combined)
		if err != nil {
			return "", err
		}
		return string(b), nil
	}

	parts := make([]string, 0, len(items))
	for _, r := range items {
		s, err := FormatItem(r, opts)
		if err != nil {
			return "", err
		}
		parts = append(parts, s)
	}

	sep := "\n"
	if opts.Format == FormatText {
		sep = "\n\n"
	}
	return strings.Join(parts, sep), nil
}

// ContentType returns the response media type for a format.
func ContentType(f Format) string {
	if f == FormatJSON {
		return "application/json"
	}
	return "text/plain; charset=utf-8"
}
