package bot

import (
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMatchName(t *testing.T) {
	tests := []struct {
		in         string
		home, away string
		err        error
	}{
		{in: "Chelsea vs Manchester United", home: "Chelsea", away: "Manchester United"},
		{in: "  Real Madrid VS  Barcelona ", home: "Real Madrid", away: "Barcelona"},
		{in: "Chelsea v Arsenal", err: errNoVs},
		{in: "Chelsea vs Arsenal vs Spurs", err: errTeams},
		{in: "Chelsea-vs-Arsenal", err: errNoVs},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			home, away, err := ParseMatchName(tt.in)
			if tt.err != nil {
				assert.ErrorIs(t, err, tt.err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.home, home)
			assert.Equal(t, tt.away, away)
		})
	}
}

func TestParseKickoff(t *testing.T) {
	loc := time.FixedZone("UTC+3", 3*3600)
	got, err := ParseKickoff(" 2025-11-05 20:00 ", loc)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 11, 5, 20, 0, 0, 0, loc), got)

	for _, bad := range []string{"2025-11-05", "05/11/2025 20:00", "2025-13-01 20:00", "tomorrow"} {
		_, err := ParseKickoff(bad, loc)
		assert.ErrorIs(t, err, errDateFormat, bad)
	}
}

func TestValidateLengths(t *testing.T) {
	_, err := ValidateStadium("  ab ")
	assert.ErrorIs(t, err, errStadiumShort)
	got, err := ValidateStadium(" Old Trafford ")
	require.NoError(t, err)
	assert.Equal(t, "Old Trafford", got)

	_, err = ValidatePreview(strings.Repeat("x", 49))
	assert.ErrorIs(t, err, errPreviewShort)
	_, err = ValidatePreview(strings.Repeat("é", 50))
	assert.NoError(t, err)
}

func TestParseStreamURLs(t *testing.T) {
	urls, invalid, truncated := ParseStreamURLs("SKIP")
	assert.Empty(t, urls)
	assert.NotNil(t, urls)
	assert.Empty(t, invalid)
	assert.False(t, truncated)

	urls, invalid, _ = ParseStreamURLs("https://example.com/stream1\n\n http://localhost:8080/live \nhttp://10.0.0.1/x?y=1")
	assert.Empty(t, invalid)
	assert.Equal(t, []string{"https://example.com/stream1", "http://localhost:8080/live", "http://10.0.0.1/x?y=1"}, urls)

	urls, invalid, _ = ParseStreamURLs("https://ok.example.com\nftp://nope.example\nnot a url")
	assert.Nil(t, urls)
	assert.Equal(t, []string{"ftp://nope.example", "not a url"}, invalid)

	urls, _, truncated = ParseStreamURLs("https://a.com\nhttps://b.com\nhttps://c.com\nhttps://d.com\nhttps://e.com")
	assert.True(t, truncated)
	assert.Equal(t, []string{"https://a.com", "https://b.com", "https://c.com", "https://d.com"}, urls)
}

func TestResolveImageName(t *testing.T) {
	const suggested = "chelsea-arsenal-poster.jpg"
	for in, want := range map[string]string{
		"":                       suggested,
		"OK":                     suggested,
		"yes":                    suggested,
		"confirm":                suggested,
		"-":                      suggested,
		"custom":                 "custom.jpg",
		"custom.PNG":             "custom.PNG",
		"poster.webp":            "poster.webp",
		"assets/img/poster.jpeg": "poster.jpeg",
		"derby-day":              "derby-day.jpg",
	} {
		assert.Equal(t, want, ResolveImageName(in, suggested), in)
	}
}

func TestParseStatus(t *testing.T) {
	got, err := ParseStatus(" LIVE ")
	require.NoError(t, err)
	assert.Equal(t, "live", got)

	_, err = ParseStatus("postponed")
	assert.ErrorIs(t, err, errUnknownStatus)
}

func TestChunkText(t *testing.T) {
	assert.Nil(t, chunkText("", firstChunk, nextChunk))
	assert.Equal(t, []string{"abc"}, chunkText("abc", firstChunk, nextChunk))

	s := strings.Repeat("ü", 3800+3900+10)
	chunks := chunkText(s, firstChunk, nextChunk)
	require.Len(t, chunks, 3)
	assert.Equal(t, 3800, utf8.RuneCountInString(chunks[0]))
	assert.Equal(t, 3900, utf8.RuneCountInString(chunks[1]))
	assert.Equal(t, 10, utf8.RuneCountInString(chunks[2]))
	assert.Equal(t, s, strings.Join(chunks, ""))
}

func TestEscapeMarkdown(t *testing.T) {
	assert.Equal(t, "St\\_James \\*Park\\* \\`x\\` \\[1]", escapeMarkdown("St_James *Park* `x` [1]"))
}

func TestKeyboards(t *testing.T) {
	rows := leagueKeyboard()
	require.Len(t, rows, 4)
	assert.Equal(t, "league_Premier League", rows[0][0].Data)
	assert.Equal(t, "league_Others", rows[3][0].Data)
	assert.Contains(t, rows[3][0].Text, "ISL")

	fields := fieldKeyboard()
	require.Len(t, fields, 3)
	assert.Equal(t, "field_streams", fields[0][0].Data)
	assert.Equal(t, "field_status", fields[2][1].Data)
}
