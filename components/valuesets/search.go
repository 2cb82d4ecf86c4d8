package valuesets

import (
	"sort"
	"strings"

	"github.com/goliatone/go-qform/pkg/options"
)

// Search filters entries by label, prefix matches first. Disabled entries
// are never returned.
func Search(entries []options.Entry, query string, limit int, opts Options) []options.Entry {
	limit = clampLimit(limit, opts)
	if limit == 0 {
		return nil
	}

	enabled := make([]options.Entry, 0, len(entries))
	for _, entry := range entries {
		if !entry.Disabled {
			enabled = append(enabled, entry)
		}
	}

	query = strings.TrimSpace(query)
	if query == "" {
		if opts.EmptySearchMode != EmptySearchTop {
			return nil
		}
		if len(enabled) > limit {
			enabled = enabled[:limit]
		}
		return enabled
	}

	q := strings.ToLower(query)
	matches := make([]matchedEntry, 0, 16)
	for _, entry := range enabled {
		label := strings.ToLower(entry.Label)
		if !strings.Contains(label, q) {
			continue
		}
		matches = append(matches, matchedEntry{
			entry:    entry,
			label:    label,
			isPrefix: strings.HasPrefix(label, q),
		})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].isPrefix != matches[j].isPrefix {
			return matches[i].isPrefix
		}
		return matches[i].label < matches[j].label
	})

	if len(matches) > limit {
		matches = matches[:limit]
	}
	out := make([]options.Entry, 0, len(matches))
	for _, match := range matches {
		out = append(out, match.entry)
	}
	return out
}

type matchedEntry struct {
	entry    options.Entry
	label    string
	isPrefix bool
}
