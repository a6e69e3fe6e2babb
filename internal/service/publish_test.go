package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"MatchPublisher/internal/interfaces"
	"MatchPublisher/internal/model"
	"MatchPublisher/internal/render"
	"MatchPublisher/internal/repository"
	"MatchPublisher/internal/site"
	"MatchPublisher/internal/utils/logging"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fixtureIndex = `<main>
            <div class="matches-grid" id="matchesGrid">
                    <!-- Match Card -->
                    <article class="glass-card match-card">
                        <a href="2025-01-01-old-vs-match.html" class="match-link">Old</a>
                    </article>
                </div>

            <!-- Pagination -->
</main>
`

const fixtureSitemap = `<?xml version="1.0" encoding="UTF-8"?>
<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">
</urlset>
`

type fixture struct {
	fs        afero.Fs
	site      *site.Site
	logs      *logsSpy
	publisher *PublishService
	reconcile *ReconcileService
}

// logsSpy 包装内存实现，便于断言写入的动作
type logsSpy struct {
	inner   interfaces.PublishLogRepository
	actions []model.PublishAction
}

func (l *logsSpy) Append(ctx context.Context, log *model.PublishLog) error {
	l.actions = append(l.actions, log.Action)
	return l.inner.Append(ctx, log)
}

func (l *logsSpy) ListRecent(ctx context.Context, limit int) ([]*model.PublishLog, error) {
	return l.inner.ListRecent(ctx, limit)
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	return newFixtureOn(t, afero.NewMemMapFs())
}

func newFixtureOn(t *testing.T, fs afero.Fs) *fixture {
	t.Helper()
	require.NoError(t, afero.WriteFile(fs, site.IndexFile, []byte(fixtureIndex), 0o644))
	require.NoError(t, afero.WriteFile(fs, site.SitemapFile, []byte(fixtureSitemap), 0o644))

	logger := logging.Discard()
	st := site.New(fs, "", "generated", "https://example.test", logger)
	r := render.New("https://example.test")
	logs := &logsSpy{inner: repository.NewMemoryPublishLog(0)}

	p := NewPublishService(st, r, logs, time.UTC, logger)
	p.now = func() time.Time { return time.Date(2025, 11, 1, 12, 0, 0, 0, time.UTC) }
	return &fixture{
		fs:        fs,
		site:      st,
		logs:      logs,
		publisher: p,
		reconcile: NewReconcileService(st, r, logs, time.UTC, logger),
	}
}

func (f *fixture) read(t *testing.T, name string) string {
	t.Helper()
	data, err := afero.ReadFile(f.fs, name)
	require.NoError(t, err)
	return string(data)
}

func sampleMatch() *model.Match {
	return &model.Match{
		Name:       "Chelsea vs Manchester United",
		HomeTeam:   "Chelsea",
		AwayTeam:   "Manchester United",
		Kickoff:    time.Date(2025, 11, 5, 20, 0, 0, 0, time.UTC),
		League:     "Premier League",
		LeagueSlug: "premier-league",
		Stadium:    "Stamford Bridge",
		Preview:    strings.Repeat("Chelsea host United in a clash that matters. ", 3),
		StreamURLs: []string{"https://example.com/stream1"},
		ImageFile:  "chelsea-manchester-united-poster.jpg",
	}
}

const sampleSlug = "2025-11-05-chelsea-vs-manchester-united"

func TestPublish(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	res, err := f.publisher.Publish(ctx, sampleMatch(), 42)
	require.NoError(t, err)
	assert.Empty(t, res.Warnings)
	assert.Equal(t, sampleSlug, res.Entry.Slug)
	assert.Equal(t, "event-1761998400", res.Entry.ID)
	assert.Contains(t, res.EntryJSON, `"slug": "`+sampleSlug+`"`)

	assert.Equal(t, res.Page, f.read(t, sampleSlug+".html"))
	assert.Equal(t, res.Page, f.read(t, "generated/html_files/"+sampleSlug+".html"))

	entries, err := f.site.LoadCatalog()
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, sampleSlug, entries[0].Slug)

	index := f.read(t, site.IndexFile)
	assert.Less(t, strings.Index(index, sampleSlug+".html"), strings.Index(index, "2025-01-01-old-vs-match.html"))

	sitemap := f.read(t, site.SitemapFile)
	assert.Contains(t, sitemap, "<loc>https://example.test/"+sampleSlug+".html</loc>")
	assert.Contains(t, sitemap, "<lastmod>2025-11-05</lastmod>")

	assert.Equal(t, []model.PublishAction{model.ActionAdd}, f.logs.actions)
}

func TestPublishRejectsInvalidMatch(t *testing.T) {
	f := newFixture(t)
	m := sampleMatch()
	m.Preview = "too short"

	_, err := f.publisher.Publish(context.Background(), m, 1)
	require.ErrorIs(t, err, ErrInvalid)
	assert.Contains(t, err.Error(), "Preview")

	exists, err := afero.Exists(f.fs, sampleSlug+".html")
	require.NoError(t, err)
	assert.False(t, exists)
	assert.Empty(t, f.logs.actions)
}

func TestPublishWarnsWhenAnchorsMissing(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, afero.WriteFile(f.fs, site.IndexFile, []byte("<html></html>"), 0o644))
	require.NoError(t, f.fs.Remove(site.SitemapFile))

	res, err := f.publisher.Publish(context.Background(), sampleMatch(), 1)
	require.NoError(t, err)
	require.Len(t, res.Warnings, 2)
	assert.Contains(t, res.Warnings[0], "matches grid not found")
	assert.Contains(t, res.Warnings[1], "sitemap.xml not found")

	entries, err := f.site.LoadCatalog()
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestPublishRejectsNonHTTPStreams(t *testing.T) {
	f := newFixture(t)
	m := sampleMatch()
	m.StreamURLs = []string{"https://example.com/ok", "ftp://example.com/file"}

	_, err := f.publisher.Publish(context.Background(), m, 1)
	require.ErrorIs(t, err, ErrInvalid)
	assert.Contains(t, err.Error(), "streamurl")
}

func TestPublishWithoutIndexFile(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.fs.Remove(site.IndexFile))

	res, err := f.publisher.Publish(context.Background(), sampleMatch(), 1)
	require.NoError(t, err)
	require.NotEmpty(t, res.Warnings)
	assert.Contains(t, res.Warnings[0], "index.html not found")

	entries, err := f.site.LoadCatalog()
	require.NoError(t, err)
	assert.Len(t, entries, 1)
	assert.Equal(t, []model.PublishAction{model.ActionAdd}, f.logs.actions)
}

// brokenIndexFs 写入 index.html 时失败（模拟磁盘/权限错误）
type brokenIndexFs struct {
	afero.Fs
	broken bool
}

func (b *brokenIndexFs) Rename(oldname, newname string) error {
	if b.broken && newname == site.IndexFile {
		return errors.New("disk full")
	}
	return b.Fs.Rename(oldname, newname)
}

func TestPublishFailureLeavesCatalogUntouched(t *testing.T) {
	fs := &brokenIndexFs{Fs: afero.NewMemMapFs(), broken: true}
	f := newFixtureOn(t, fs)
	ctx := context.Background()

	_, err := f.publisher.Publish(ctx, sampleMatch(), 1)
	require.Error(t, err)
	entries, err := f.site.LoadCatalog()
	require.NoError(t, err)
	assert.Empty(t, entries)
	assert.Empty(t, f.logs.actions)

	fs.broken = false
	_, err = f.publisher.Publish(ctx, sampleMatch(), 1)
	require.NoError(t, err)
	entries, err = f.site.LoadCatalog()
	require.NoError(t, err)
	assert.Len(t, entries, 1)
	assert.Equal(t, 1, strings.Count(f.read(t, site.IndexFile), sampleSlug+".html"))
}

func TestUpdateFailureLeavesCatalogUntouched(t *testing.T) {
	fs := &brokenIndexFs{Fs: afero.NewMemMapFs()}
	f := newFixtureOn(t, fs)
	ctx := context.Background()
	_, err := f.publisher.Publish(ctx, sampleMatch(), 1)
	require.NoError(t, err)
	before := f.read(t, site.CatalogFile)

	fs.broken = true
	stadium := "Wembley Stadium"
	_, err = f.publisher.Update(ctx, sampleSlug, model.EntryPatch{Stadium: &stadium}, 1)
	require.Error(t, err)
	assert.Equal(t, before, f.read(t, site.CatalogFile))
	assert.Equal(t, []model.PublishAction{model.ActionAdd}, f.logs.actions)
}

func TestDeleteIsInverseOfPublish(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.publisher.Publish(ctx, sampleMatch(), 1)
	require.NoError(t, err)

	res, err := f.publisher.Delete(ctx, sampleSlug, 1)
	require.NoError(t, err)
	assert.True(t, res.PageRemoved)
	assert.Equal(t, 1, res.EntriesRemoved)
	assert.Equal(t, 1, res.CardsRemoved)
	assert.True(t, res.SitemapRemoved)

	assert.Equal(t, fixtureIndex, f.read(t, site.IndexFile))
	assert.Equal(t, fixtureSitemap, f.read(t, site.SitemapFile))
	exists, err := afero.Exists(f.fs, sampleSlug+".html")
	require.NoError(t, err)
	assert.False(t, exists)
	entries, err := f.site.LoadCatalog()
	require.NoError(t, err)
	assert.Empty(t, entries)

	assert.Equal(t, []model.PublishAction{model.ActionAdd, model.ActionDelete}, f.logs.actions)
}

func TestDeleteRemovesDuplicates(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.publisher.Publish(ctx, sampleMatch(), 1)
	require.NoError(t, err)
	res, err := f.publisher.Publish(ctx, sampleMatch(), 1)
	require.NoError(t, err)
	assert.Contains(t, res.Warnings[0], "replaced")

	del, err := f.publisher.Delete(ctx, sampleSlug, 1)
	require.NoError(t, err)
	assert.Equal(t, 2, del.EntriesRemoved)
	assert.Equal(t, 1, del.CardsRemoved)
}

func TestDeleteUnknownSlug(t *testing.T) {
	f := newFixture(t)

	res, err := f.publisher.Delete(context.Background(), "2020-01-01-nobody-vs-noone", 1)
	require.ErrorIs(t, err, site.ErrNotFound)
	assert.True(t, res.Nothing())

	_, err = f.publisher.Delete(context.Background(), "../index", 1)
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestUpdate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.publisher.Publish(ctx, sampleMatch(), 1)
	require.NoError(t, err)

	stadium := "Wembley Stadium"
	kickoff := "2025-11-06 18:30"
	status := model.StatusLive
	streams := []string{"https://a.example.com/live", "https://b.example.com/live"}
	res, err := f.publisher.Update(ctx, sampleSlug, model.EntryPatch{
		Stadium:    &stadium,
		Kickoff:    &kickoff,
		Status:     &status,
		StreamURLs: &streams,
	}, 7)
	require.NoError(t, err)

	assert.Equal(t, sampleSlug, res.Entry.Slug, "slug is kept when the date moves")
	assert.Equal(t, "2025-11-06", res.Entry.Date)
	assert.Equal(t, "18:30", res.Entry.Time)
	assert.Equal(t, model.StatusLive, res.Entry.Status)
	assert.Equal(t, 2, res.Entry.Streams)

	page := f.read(t, sampleSlug+".html")
	assert.Contains(t, page, "Wembley Stadium")
	assert.Contains(t, page, "p/2-live.html?url=https%3A%2F%2Fb.example.com%2Flive")

	index := f.read(t, site.IndexFile)
	assert.Equal(t, 1, strings.Count(index, sampleSlug+".html"))
	assert.Contains(t, index, "Wembley Stadium")

	e, err := f.site.FindEntry(sampleSlug)
	require.NoError(t, err)
	assert.Equal(t, "Wembley Stadium", e.Stadium)
	assert.Equal(t, sampleMatch().Preview, e.Preview)

	assert.Equal(t, []model.PublishAction{model.ActionAdd, model.ActionUpdate}, f.logs.actions)
}

func TestUpdateValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.publisher.Publish(ctx, sampleMatch(), 1)
	require.NoError(t, err)
	before := f.read(t, site.CatalogFile)

	_, err = f.publisher.Update(ctx, sampleSlug, model.EntryPatch{}, 1)
	assert.ErrorIs(t, err, ErrInvalid)

	bad := "2025/11/06"
	_, err = f.publisher.Update(ctx, sampleSlug, model.EntryPatch{Kickoff: &bad}, 1)
	assert.ErrorIs(t, err, ErrInvalid)

	status := "postponed"
	_, err = f.publisher.Update(ctx, sampleSlug, model.EntryPatch{Status: &status}, 1)
	assert.ErrorIs(t, err, ErrInvalid)

	streams := []string{"javascript:alert(1)", "ftp://x"}
	_, err = f.publisher.Update(ctx, sampleSlug, model.EntryPatch{StreamURLs: &streams}, 1)
	assert.ErrorIs(t, err, ErrInvalid)
	assert.Contains(t, err.Error(), "streamurl")

	assert.Equal(t, before, f.read(t, site.CatalogFile))
	assert.NotContains(t, f.read(t, sampleSlug+".html"), "javascript")

	stadium := "Anfield"
	_, err = f.publisher.Update(ctx, "2020-01-01-x-vs-y", model.EntryPatch{Stadium: &stadium}, 1)
	assert.ErrorIs(t, err, site.ErrNotFound)
}

func TestListAndGet(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.publisher.Publish(ctx, sampleMatch(), 1)
	require.NoError(t, err)
	second := sampleMatch()
	second.HomeTeam, second.AwayTeam, second.Name = "Arsenal", "Spurs", ""
	_, err = f.publisher.Publish(ctx, second, 1)
	require.NoError(t, err)

	list, err := f.publisher.List(ctx, 1)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "2025-11-05-arsenal-vs-spurs", list[0].Slug)

	e, err := f.publisher.Get(ctx, sampleSlug)
	require.NoError(t, err)
	assert.Equal(t, "Chelsea vs Manchester United", e.Title)
}
