// Package leaderboard parses the raw CSV dumps produced by the Kaggle CLI and
// normalizes raw scores onto a bounded scale.
package leaderboard

import (
	"strconv"
	"strings"
	"time"
)

// pageTokenSentinel prefixes a trailing pagination line the CLI emits on
// multi-page dumps; it is not data.
const pageTokenSentinel = "Next Page Token"

// Entry is one parsed leaderboard row. Numeric fields that were missing or
// unparseable are defaulted to zero; DefaultedFields counts how many were,
// so degraded rows stay observable instead of silently patched.
type Entry struct {
	Rank             int
	DisplayName      string
	TeamName         string
	RawScore         float64
	SubmissionCount  int
	LastSubmissionAt *time.Time
	DefaultedFields  int
}

// Header aliases, tried in order. The CLI has shipped several column layouts
// over time and external data must degrade per-field, never abort the sync.
var (
	rankAliases     = []string{"rank", "#"}
	identityAliases = []string{"teamname", "team", "username"}
	scoreAliases    = []string{"score", "publicscore"}
	entriesAliases  = []string{"entries", "submissions"}
	lastSubAliases  = []string{"lastsubmission", "lastsubmissiondate"}
)

var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// Parse converts raw delimited text into leaderboard entries. Lines without a
// delimiter and pagination sentinel lines are discarded; the first surviving
// line is the header. Fewer than two surviving lines yields an empty result,
// not an error; the caller decides whether that is a failure.
func Parse(raw string) []Entry {
	var lines []string
	for _, line := range strings.Split(strings.TrimSpace(raw), "\n") {
		if !strings.Contains(line, ",") || strings.HasPrefix(line, pageTokenSentinel) {
			continue
		}
		lines = append(lines, line)
	}
	if len(lines) < 2 {
		return nil
	}

	header := Fields(lines[0])
	for i, h := range header {
		header[i] = strings.ToLower(h)
	}

	entries := make([]Entry, 0, len(lines)-1)
	for i, line := range lines[1:] {
		values := Fields(line)
		if len(values) < 2 {
			continue
		}

		fields := make(map[string]string, len(header))
		for j, name := range header {
			if j < len(values) {
				fields[name] = values[j]
			}
		}

		entry := Entry{}

		rank, ok := parseIntField(fields, rankAliases)
		if !ok {
			// Fall back to the row's 1-based position.
			rank = i + 1
			entry.DefaultedFields++
		}
		entry.Rank = rank

		identity, _ := firstField(fields, identityAliases)
		entry.DisplayName = identity
		team, _ := firstField(fields, []string{"teamname", "team"})
		entry.TeamName = team

		score, ok := parseFloatField(fields, scoreAliases)
		if !ok {
			entry.DefaultedFields++
		}
		entry.RawScore = score

		count, ok := parseIntField(fields, entriesAliases)
		if !ok {
			entry.DefaultedFields++
		}
		entry.SubmissionCount = count

		if raw, ok := firstField(fields, lastSubAliases); ok {
			if ts, ok := parseTimestamp(raw); ok {
				entry.LastSubmissionAt = &ts
			} else {
				entry.DefaultedFields++
			}
		}

		entries = append(entries, entry)
	}

	return entries
}

// Fields splits one CSV line honoring quoted values: a delimiter inside an
// open quote is data, and quote characters themselves are never retained.
func Fields(line string) []string {
	var result []string
	var current strings.Builder
	inQuotes := false

	for _, r := range line {
		switch {
		case r == '"':
			inQuotes = !inQuotes
		case r == ',' && !inQuotes:
			result = append(result, strings.TrimSpace(current.String()))
			current.Reset()
		default:
			current.WriteRune(r)
		}
	}
	result = append(result, strings.TrimSpace(current.String()))

	return result
}

// firstField returns the first non-empty value among the aliases.
func firstField(fields map[string]string, aliases []string) (string, bool) {
	for _, alias := range aliases {
		if v := fields[alias]; v != "" {
			return v, true
		}
	}
	return "", false
}

func parseIntField(fields map[string]string, aliases []string) (int, bool) {
	raw, ok := firstField(fields, aliases)
	if !ok {
		return 0, false
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return n, true
}

func parseFloatField(fields map[string]string, aliases []string) (float64, bool) {
	raw, ok := firstField(fields, aliases)
	if !ok {
		return 0, false
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

func parseTimestamp(raw string) (time.Time, bool) {
	for _, layout := range timestampLayouts {
		if ts, err := time.Parse(layout, raw); err == nil {
			return ts, true
		}
	}
	return time.Time{}, false
}
