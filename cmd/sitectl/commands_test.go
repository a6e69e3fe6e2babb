package main

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"MatchPublisher/internal/model"
	"MatchPublisher/internal/render"
	"MatchPublisher/internal/repository"
	"MatchPublisher/internal/service"
	"MatchPublisher/internal/site"
	"MatchPublisher/internal/utils/logging"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testIndex = `<main>
            <div class="matches-grid" id="matchesGrid">
                    <article class="glass-card match-card">
                        <a href="2025-01-01-old-vs-match.html" class="match-link">Old</a>
                    </article>
                </div>
</main>
`

const slug = "2025-11-05-chelsea-vs-manchester-united"

func memApp(t *testing.T) *app {
	t.Helper()
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, site.IndexFile, []byte(testIndex), 0o644))

	logger := logging.Discard()
	st := site.New(fs, "", "", "https://example.test", logger)
	r := render.New("https://example.test")
	logs := repository.NewMemoryPublishLog(0)
	a := &app{
		publisher:  service.NewPublishService(st, r, logs, time.UTC, logger),
		reconciler: service.NewReconcileService(st, r, logs, time.UTC, logger),
		logs:       logs,
	}
	_, err := a.publisher.Publish(context.Background(), &model.Match{
		HomeTeam:   "Chelsea",
		AwayTeam:   "Manchester United",
		Kickoff:    time.Date(2025, 11, 5, 20, 0, 0, 0, time.UTC),
		League:     "Premier League",
		LeagueSlug: "premier-league",
		Stadium:    "Stamford Bridge",
		Preview:    strings.Repeat("Chelsea host United in a clash that matters. ", 3),
		ImageFile:  "chelsea-manchester-united-poster.jpg",
	}, 1)
	require.NoError(t, err)
	return a
}

func run(t *testing.T, a *app, args ...string) (string, error) {
	t.Helper()
	var gotPath string
	root := newRootCmd(func(path string) (*app, error) {
		gotPath = path
		return a, nil
	})
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(append([]string{"--config", "test.yaml"}, args...))
	err := root.Execute()
	assert.Equal(t, "test.yaml", gotPath)
	return out.String(), err
}

func TestListCommand(t *testing.T) {
	out, err := run(t, memApp(t), "list")
	require.NoError(t, err)
	assert.Contains(t, out, slug)
	assert.Contains(t, out, "Premier League")
}

func TestCheckAndRegenerate(t *testing.T) {
	a := memApp(t)

	out, err := run(t, a, "check")
	require.Error(t, err)
	assert.Contains(t, out, "orphan cards (1)")
	assert.Contains(t, out, "2025-01-01-old-vs-match")

	out, err = run(t, a, "regenerate", "all")
	require.NoError(t, err)
	assert.Contains(t, out, "regenerated 1 homepage cards")
	assert.Contains(t, out, "regenerated 1 match pages")

	out, err = run(t, a, "check")
	require.NoError(t, err)
	assert.Contains(t, out, "site is consistent")
}

func TestRegenerateUnknownTarget(t *testing.T) {
	_, err := run(t, memApp(t), "regenerate", "sitemap")
	assert.Error(t, err)
}

func TestDeleteCommand(t *testing.T) {
	a := memApp(t)
	out, err := run(t, a, "delete", slug)
	require.NoError(t, err)
	assert.Contains(t, out, "deleted "+slug+": page=true entries=1 cards=1")

	_, err = run(t, a, "delete", slug)
	assert.True(t, errors.Is(err, site.ErrNotFound))

	out, err = run(t, a, "logs")
	require.NoError(t, err)
	assert.Contains(t, out, "delete")
	assert.Contains(t, out, "add")
}

func TestOpenFailure(t *testing.T) {
	root := newRootCmd(func(string) (*app, error) { return nil, errors.New("boom") })
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	root.SetArgs([]string{"list"})
	assert.EqualError(t, root.Execute(), "boom")
}
