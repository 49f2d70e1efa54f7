package kaggle

import (
	"context"
	"fmt"
	"strings"
	"time"

	"datasprint/leaderboard/internal/leaderboard"
)

// CompetitionDetails describes a competition as reported by the CLI's search
// listing, used when importing a competition by slug.
type CompetitionDetails struct {
	Slug        string
	URL         string
	Title       string
	Description string
	Deadline    time.Time
}

// LookupCompetition searches the external catalog for a competition slug and
// returns its details, or an error when the slug matches nothing.
func (c *Client) LookupCompetition(ctx context.Context, slug string) (*CompetitionDetails, error) {
	args := []string{
		"competitions",
		"list",
		"--search",
		strings.TrimSpace(slug),
		"--csv",
	}

	out, err := c.run(ctx, args)
	if err != nil {
		return nil, err
	}

	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) < 2 {
		return nil, fmt.Errorf("competition not found: %s", slug)
	}

	// First data row is the best match. Columns: ref, deadline, category, ...
	values := leaderboard.Fields(lines[1])
	if len(values) == 0 || values[0] == "" {
		return nil, fmt.Errorf("competition not found: %s", slug)
	}

	ref := values[0]
	refSlug := ref
	if idx := strings.LastIndex(ref, "/"); idx >= 0 {
		refSlug = ref[idx+1:]
	}

	details := &CompetitionDetails{
		Slug:  refSlug,
		URL:   ref,
		Title: titleFromSlug(refSlug),
	}

	if len(values) > 1 {
		if deadline, err := time.Parse("2006-01-02 15:04:05", values[1]); err == nil {
			details.Deadline = deadline
		}
	}
	if len(values) > 2 {
		details.Description = fmt.Sprintf("Imported from Kaggle (%s)", values[2])
	}

	return details, nil
}

// titleFromSlug turns "titanic-survival" into "Titanic Survival".
func titleFromSlug(slug string) string {
	words := strings.Split(slug, "-")
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
