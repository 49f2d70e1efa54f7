package leaderboard

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_StandardLayout(t *testing.T) {
	raw := `teamName,teamId,submissionDate,score,entries
Alice,101,2024-03-01 12:00:00,0.95,4
Bob,102,2024-03-02 08:30:00,0.91,7
`

	entries := Parse(raw)
	require.Len(t, entries, 2, "Should parse both data rows")

	assert.Equal(t, 1, entries[0].Rank, "Rank should fall back to row position")
	assert.Equal(t, "Alice", entries[0].DisplayName)
	assert.Equal(t, 0.95, entries[0].RawScore)
	assert.Equal(t, 4, entries[0].SubmissionCount)

	assert.Equal(t, 2, entries[1].Rank)
	assert.Equal(t, "Bob", entries[1].DisplayName)
}

func TestParse_ExplicitRankColumn(t *testing.T) {
	raw := `rank,teamName,score,entries
3,Carol,0.88,2
1,Dave,0.99,5
`

	entries := Parse(raw)
	require.Len(t, entries, 2)

	assert.Equal(t, 3, entries[0].Rank, "Explicit rank column should win over position")
	assert.Equal(t, 1, entries[1].Rank)
	assert.Zero(t, entries[0].DefaultedFields, "Fully populated row should default nothing")
}

func TestParse_QuotedCommaInName(t *testing.T) {
	raw := `teamName,score,entries
"Smith, J.",0.75,1
`

	entries := Parse(raw)
	require.Len(t, entries, 1)
	assert.Equal(t, "Smith, J.", entries[0].DisplayName, "Comma inside quotes is part of the name")
	assert.Equal(t, 0.75, entries[0].RawScore, "Columns after the quoted field should stay aligned")
}

func TestParse_HeaderOnly(t *testing.T) {
	entries := Parse("teamName,score,entries\n")
	assert.Empty(t, entries, "Header with no data rows yields no entries")
}

func TestParse_EmptyAndGarbageInput(t *testing.T) {
	assert.Empty(t, Parse(""), "Empty input yields no entries")
	assert.Empty(t, Parse("Warning: deprecated flag\nanother line without delimiter"),
		"Lines without the delimiter are not data")
}

func TestParse_FiltersPageTokenSentinel(t *testing.T) {
	raw := `teamName,score,entries
Alice,0.95,4
Next Page Token, abc123
`

	entries := Parse(raw)
	require.Len(t, entries, 1, "Pagination sentinel line must be discarded")
	assert.Equal(t, "Alice", entries[0].DisplayName)
}

func TestParse_AliasFallbacks(t *testing.T) {
	raw := `#,username,publicScore,submissions
1,ml_wizard,0.81,9
`

	entries := Parse(raw)
	require.Len(t, entries, 1)
	assert.Equal(t, 1, entries[0].Rank)
	assert.Equal(t, "ml_wizard", entries[0].DisplayName)
	assert.Equal(t, 0.81, entries[0].RawScore)
	assert.Equal(t, 9, entries[0].SubmissionCount)
}

func TestParse_DefaultedFieldsCounted(t *testing.T) {
	raw := `teamName,score,entries,lastSubmission
Alice,not-a-number,,garbage-date
`

	entries := Parse(raw)
	require.Len(t, entries, 1)

	assert.Zero(t, entries[0].RawScore, "Unparseable score defaults to zero")
	assert.Zero(t, entries[0].SubmissionCount, "Missing entries count defaults to zero")
	assert.Nil(t, entries[0].LastSubmissionAt, "Unparseable timestamp stays nil")
	// rank, score, entries, lastSubmission all degraded
	assert.Equal(t, 4, entries[0].DefaultedFields, "Each degraded field should be counted once")
}

func TestParse_LastSubmissionTimestamp(t *testing.T) {
	raw := `teamName,score,entries,lastSubmission
Alice,0.5,2,2024-06-15 10:30:00
`

	entries := Parse(raw)
	require.Len(t, entries, 1)
	require.NotNil(t, entries[0].LastSubmissionAt)
	assert.Equal(t, 2024, entries[0].LastSubmissionAt.Year())
	assert.Equal(t, 15, entries[0].LastSubmissionAt.Day())
}

func TestFields_QuoteHandling(t *testing.T) {
	values := Fields(`a,"b,c",  d  ,"e"`)
	assert.Equal(t, []string{"a", "b,c", "d", "e"}, values,
		"Quotes are stripped, embedded delimiters kept, whitespace trimmed")
}
