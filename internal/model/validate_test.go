package model

import (
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidStreamURL(t *testing.T) {
	for _, u := range []string{
		"https://example.com/stream1",
		"http://localhost:8080/live",
		"http://10.0.0.1/x?y=1",
		"https://t.me/somechannel",
	} {
		assert.True(t, ValidStreamURL(u), u)
	}
	for _, u := range []string{
		"javascript:alert(1)",
		"ftp://example.com/file",
		"https://",
		"example.com/stream",
		"https://exa mple.com",
	} {
		assert.False(t, ValidStreamURL(u), u)
	}
}

func TestRegisterValidations(t *testing.T) {
	v := validator.New()
	require.NoError(t, RegisterValidations(v))

	m := Match{
		HomeTeam:   "Chelsea",
		AwayTeam:   "Arsenal",
		Kickoff:    time.Date(2025, 11, 5, 20, 0, 0, 0, time.UTC),
		League:     "Premier League",
		LeagueSlug: "premier-league",
		Stadium:    "Stamford Bridge",
		Preview:    "Chelsea and Arsenal meet in a London derby with the title race on the line.",
		StreamURLs: []string{"https://example.com/live"},
		ImageFile:  "chelsea-arsenal-poster.jpg",
	}
	require.NoError(t, v.Struct(&m))

	m.StreamURLs = append(m.StreamURLs, "ftp://example.com/x")
	err := v.Struct(&m)
	require.Error(t, err)
	var verrs validator.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.Equal(t, StreamURLTag, verrs[0].Tag())
}
