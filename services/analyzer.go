package services

import (
	"context"
	"fmt"
	"slices"
	"strconv"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"farcaster-analyzer/config"
	"farcaster-analyzer/models"
	"farcaster-analyzer/utils"
)

// Version is reported in the report metadata.
const Version = "2.1.0"

const (
	SectionPlatform = "platform_overview"
	SectionTrending = "trending_analysis"
	SectionUsers    = "user_ecosystem"
	SectionContent  = "content_ecosystem"
	SectionTokenNFT = "token_nft_ecosystem"
	SectionHealth   = "network_health"
)

const sampleLimit = 10

var (
	platformSearchTerm = "farcaster"
	contentSearchTerms = []string{"crypto", "defi", "base", "ethereum", "web3"}
	tokenSearchTerms   = []string{"token", "crypto price", "defi", "trading"}
	nftSearchTerms     = []string{"nft", "collectible", "art", "mint"}
	platformUserFIDs   = []int64{1, 2, 3, 4, 5}
)

// Source is the upstream query interface the analyzer reads from. Every
// call returns the decoded JSON body.
type Source interface {
	Trending(ctx context.Context, limit int, window string) (any, error)
	SearchCasts(ctx context.Context, query string, limit int) (any, error)
	BulkUsers(ctx context.Context, fids []int64) (any, error)
}

// statsSource is implemented by sources that count their own failures.
type statsSource interface {
	Stats() (requests, failures int64)
}

// Observer receives per-section measurements.
type Observer interface {
	ObserveSection(section string, elapsed time.Duration, failed bool)
	ObserveCasts(section string, n int)
}

// Analyzer runs every analysis section and assembles the aggregate report.
type Analyzer struct {
	source   Source
	cfg      *config.Config
	logger   *utils.Logger
	observer Observer
	now      func() time.Time

	mu     sync.Mutex
	sample []models.Cast
}

type AnalyzerOption func(*Analyzer)

// WithObserver attaches section metrics.
func WithObserver(o Observer) AnalyzerOption {
	return func(a *Analyzer) { a.observer = o }
}

// WithClock overrides the wall clock (freshness and metadata timestamps).
func WithClock(now func() time.Time) AnalyzerOption {
	return func(a *Analyzer) { a.now = now }
}

func NewAnalyzer(source Source, cfg *config.Config, logger *utils.Logger, opts ...AnalyzerOption) *Analyzer {
	a := &Analyzer{source: source, cfg: cfg, logger: logger, now: time.Now}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Analyze runs the sections in fixed order (or concurrently when the
// config asks for it) and returns the finished, read-only report. A
// failing section leaves an error marker in its slot; the rest still run.
func (a *Analyzer) Analyze(ctx context.Context, hours int) *models.AggregateReport {
	window := config.WindowFor(hours)
	a.keepSample(nil)
	report := &models.AggregateReport{
		Metadata: models.Metadata{
			RunID:               uuid.NewString(),
			Timestamp:           a.now().Format(time.RFC3339),
			AnalysisPeriodHours: hours,
			TimeWindow:          window,
			AnalyzerVersion:     Version,
		},
	}

	a.logger.Info("[analyzer] Run %s: %d hours (window %s), parallel=%t",
		report.Metadata.RunID, hours, window, a.cfg.Parallel)

	steps := []func(){
		func() { report.PlatformOverview = runSection(a, ctx, SectionPlatform, a.platformOverview) },
		func() {
			report.TrendingAnalysis = runSection(a, ctx, SectionTrending, func(ctx context.Context) (models.TrendingAnalysis, error) {
				return a.trendingAnalysis(ctx, window)
			})
		},
		func() { report.UserEcosystem = runSection(a, ctx, SectionUsers, a.userEcosystem) },
		func() { report.ContentEcosystem = runSection(a, ctx, SectionContent, a.contentEcosystem) },
		func() { report.TokenNFTEcosystem = runSection(a, ctx, SectionTokenNFT, a.tokenNFTEcosystem) },
		func() { report.NetworkHealth = runSection(a, ctx, SectionHealth, a.networkHealth) },
	}

	if a.cfg.Parallel {
		// every step fetches its own snapshot and writes only its own slot
		var g errgroup.Group
		for _, step := range steps {
			step := step
			g.Go(func() error {
				step()
				return nil
			})
		}
		_ = g.Wait()
	} else {
		for _, step := range steps {
			step()
		}
	}

	report.Recommendations = Recommend(report)
	a.logger.Info("[analyzer] Run %s finished with %d recommendations", report.Metadata.RunID, len(report.Recommendations))
	return report
}

// runSection executes one section and converts an error or panic into the
// section's diagnostic.
func runSection[T any](a *Analyzer, ctx context.Context, name string, fn func(context.Context) (T, error)) (section models.Section[T]) {
	start := time.Now()
	a.logger.Info("[analyzer] Analyzing %s...", name)

	defer func() {
		if p := recover(); p != nil {
			a.logger.Error("[analyzer] %s panicked: %v", name, p)
			section = models.Failed[T](fmt.Sprint(p))
		}
		if section.Failed() {
			a.logger.Warn("[analyzer] %s failed: %s", name, section.Error())
		}
		if a.observer != nil {
			a.observer.ObserveSection(name, time.Since(start), section.Failed())
		}
	}()

	if err := ctx.Err(); err != nil {
		return models.Failed[T](err.Error())
	}
	v, err := fn(ctx)
	if err != nil {
		return models.Failed[T](err.Error())
	}
	return models.OK(v)
}

// fetch reads one upstream response. Failures are logged and read as an
// empty body.
func (a *Analyzer) fetch(what string, raw any, err error) any {
	if err != nil {
		a.logger.Warn("[analyzer] %s failed, treating as empty: %v", what, err)
		return map[string]any{}
	}
	return raw
}

func (a *Analyzer) trending(ctx context.Context, window string) []models.Cast {
	raw, err := a.source.Trending(ctx, sampleLimit, window)
	return Sanitize(Lookup(a.fetch("trending", raw, err), "casts"))
}

func (a *Analyzer) search(ctx context.Context, query string) []models.Cast {
	raw, err := a.source.SearchCasts(ctx, query, sampleLimit)
	return Sanitize(Lookup(a.fetch("search "+strconv.Quote(query), raw, err), "result", "casts"))
}

// TrendingSample returns the sanitized trending casts the last run's
// trending section analyzed, or nil when that section did not complete.
func (a *Analyzer) TrendingSample() []models.Cast {
	a.mu.Lock()
	defer a.mu.Unlock()
	return slices.Clone(a.sample)
}

func (a *Analyzer) keepSample(casts []models.Cast) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.sample = casts
}

// searchAll runs the queries through a rate-spaced pool and returns the
// sanitized casts per query, in query order.
func (a *Analyzer) searchAll(ctx context.Context, queries []string) [][]models.Cast {
	results := make([][]models.Cast, len(queries))
	pool := utils.NewWorkerPool(a.cfg.MaxConcurrency, a.cfg.SearchDelayMs)

	for i, q := range queries {
		i, q := i, q
		pool.Submit(func() {
			if ctx.Err() != nil {
				results[i] = []models.Cast{}
				return
			}
			results[i] = a.search(ctx, q)
			a.logger.Debug("[analyzer] search %q returned %d casts", q, len(results[i]))
		})
	}
	pool.Wait()
	return results
}

func (a *Analyzer) observeCasts(section string, n int) {
	if a.observer != nil {
		a.observer.ObserveCasts(section, n)
	}
}

func (a *Analyzer) platformOverview(ctx context.Context) (models.PlatformOverview, error) {
	casts := a.trending(ctx, "")
	search := a.search(ctx, platformSearchTerm)

	raw, err := a.source.BulkUsers(ctx, platformUserFIDs)
	users := SanitizeUsers(Lookup(a.fetch("user lookup", raw, err), "users"))

	a.observeCasts(SectionPlatform, len(casts))

	type channelTally struct {
		summary models.ChannelSummary
		authors AuthorSet
	}
	var order []string
	tallies := map[string]*channelTally{}
	active := map[string]struct{}{}

	for _, c := range casts {
		if c.Channel == nil {
			continue
		}
		id := c.ChannelID()
		t, ok := tallies[id]
		if !ok {
			t = &channelTally{
				summary: models.ChannelSummary{
					ID:          id,
					Name:        c.Channel.Name,
					Description: truncateRunes(c.Channel.Description, 100),
				},
				authors: AuthorSet{},
			}
			tallies[id] = t
			order = append(order, id)
		}
		t.summary.CastsCount++
		if fid := c.FID(); fid != 0 {
			t.authors[fid] = struct{}{}
		}
		if c.Likes() > 0 {
			active[id] = struct{}{}
		}
	}

	top := make([]models.ChannelSummary, 0, min(len(order), topChannels))
	for _, id := range order[:min(len(order), topChannels)] {
		t := tallies[id]
		t.summary.UniqueAuthors = len(t.authors)
		top = append(top, t.summary)
	}

	return models.PlatformOverview{
		ChannelsCount:       len(tallies),
		ActiveChannels:      len(active),
		TrendingCastsSample: len(casts),
		SampleCastsCount:    len(casts),
		SearchSampleCasts:   len(search),
		UsersAnalyzed:       len(users),
		TopChannels:         top,
		AnalysisTimestamp:   a.now().Format(time.RFC3339),
	}, nil
}

func (a *Analyzer) trendingAnalysis(ctx context.Context, window string) (models.TrendingAnalysis, error) {
	casts := a.trending(ctx, window)
	a.observeCasts(SectionTrending, len(casts))
	a.keepSample(casts)

	top := make([]models.TopCast, 0, min(len(casts), sampleLimit))
	for _, c := range casts[:min(len(casts), sampleLimit)] {
		author := c.Username()
		if author == "" {
			author = "unknown"
		}
		top = append(top, models.TopCast{
			Text:    truncateRunes(c.Text, 150),
			Author:  author,
			Likes:   c.Likes(),
			Recasts: c.Recasts(),
			Replies: c.ReplyCount(),
			Channel: c.ChannelName("general"),
		})
	}

	return models.TrendingAnalysis{
		TotalTrendingCasts: len(casts),
		ContentThemes:      ExtractThemes(casts),
		EngagementPatterns: ExtractEngagement(casts),
		TrendingTopics:     ExtractTopics(casts),
		TopCasts:           top,
	}, nil
}

func (a *Analyzer) userEcosystem(ctx context.Context) (models.UserEcosystem, error) {
	casts := a.trending(ctx, "")
	a.observeCasts(SectionUsers, len(casts))

	top, unique := BuildLeaderboard(casts)
	return models.UserEcosystem{
		TotalUniqueUsers:         unique,
		TotalUniqueUsersAnalyzed: unique,
		TotalCastsAnalyzed:       len(casts),
		TopInfluencers:           top,
		UserEngagementStats:      EngagementStats(top),
		ChannelDiversity:         ChannelDiversity(top),
	}, nil
}

func (a *Analyzer) contentEcosystem(ctx context.Context) (models.ContentEcosystem, error) {
	var all []models.Cast
	for _, casts := range a.searchAll(ctx, contentSearchTerms) {
		all = append(all, casts...)
	}
	unique := DedupeByHash(all)
	a.logger.Info("[analyzer] Content sample: %d casts, %d after dedupe", len(all), len(unique))
	a.observeCasts(SectionContent, len(unique))

	return models.ContentEcosystem{
		TotalCastsAnalyzed:      len(unique),
		DuplicatesRemoved:       len(all) - len(unique),
		ContentPatterns:         ExtractContentPatterns(unique),
		TemporalPatterns:        ExtractTemporal(unique),
		SentimentAnalysis:       ExtractSentiment(unique),
		EngagementByContentType: ExtractEngagementByType(unique),
		ChannelDistribution:     ExtractChannelDistribution(unique),
	}, nil
}

func (a *Analyzer) tokenNFTEcosystem(ctx context.Context) (models.TokenNFTEcosystem, error) {
	queries := append(append([]string{}, tokenSearchTerms...), nftSearchTerms...)
	results := a.searchAll(ctx, queries)

	var tokenCasts, nftCasts []models.Cast
	for i, casts := range results {
		if i < len(tokenSearchTerms) {
			tokenCasts = append(tokenCasts, casts...)
		} else {
			nftCasts = append(nftCasts, casts...)
		}
	}
	a.observeCasts(SectionTokenNFT, len(tokenCasts)+len(nftCasts))

	tokenAuthors := AuthorsOf(tokenCasts)
	nftAuthors := AuthorsOf(nftCasts)

	return models.TokenNFTEcosystem{
		TokenDiscussions: models.TokenDiscussions{
			TotalCasts:      len(tokenCasts),
			UniqueAuthors:   len(tokenAuthors),
			TrendingTokens:  ExtractTokens(tokenCasts),
			MarketSentiment: ExtractMarketSentiment(tokenCasts),
		},
		NFTDiscussions: models.NFTDiscussions{
			TotalCasts:    len(nftCasts),
			UniqueAuthors: len(nftAuthors),
			TrendingNFTs:  ExtractNFTs(nftCasts),
		},
		CrossEcosystemInsights: CrossEcosystem(tokenAuthors, nftAuthors),
		EcosystemHealthScore:   EcosystemHealth(len(tokenCasts)+len(nftCasts), len(AuthorsOf(tokenCasts, nftCasts))),
	}, nil
}

type probeTarget struct {
	name string
	call func(ctx context.Context) (any, error)
}

func (a *Analyzer) networkHealth(ctx context.Context) (models.NetworkHealth, error) {
	probes := make([]models.EndpointProbe, 0, 3)
	for _, target := range []probeTarget{
		{"trending", func(ctx context.Context) (any, error) { return a.source.Trending(ctx, 5, "") }},
		{"bulk", func(ctx context.Context) (any, error) { return a.source.BulkUsers(ctx, []int64{1, 2, 3}) }},
		{"search", func(ctx context.Context) (any, error) { return a.source.SearchCasts(ctx, "test", 5) }},
	} {
		probes = append(probes, a.probe(ctx, target))
	}

	casts := a.trending(ctx, "")
	a.observeCasts(SectionHealth, len(casts))

	activity := 0
	if len(casts) > 0 {
		activity = min(100, ExtractEngagement(casts).TotalEngagement/10)
	}

	h := models.NetworkHealth{
		APIResponsiveness:    probes,
		ContentFreshness:     ContentFreshness(casts, a.now()),
		NetworkActivityScore: activity,
		AnalysisTimestamp:    a.now().Format(time.RFC3339),
	}
	if s, ok := a.source.(statsSource); ok {
		requests, failures := s.Stats()
		h.ErrorRate = percent(int(failures), int(requests))
	}
	return h, nil
}

func (a *Analyzer) probe(ctx context.Context, target probeTarget) models.EndpointProbe {
	start := time.Now()
	raw, err := target.call(ctx)
	elapsed := round2(float64(time.Since(start).Microseconds()) / 1000)

	p := models.EndpointProbe{Endpoint: target.name, ResponseTimeMs: elapsed}
	if err != nil {
		p.Status = "unhealthy"
		p.Error = err.Error()
		return p
	}

	body, _ := raw.(map[string]any)
	p.Success = len(body) > 0
	switch {
	case elapsed < 500:
		p.Status = "excellent"
	case elapsed < 1000:
		p.Status = "good"
	default:
		p.Status = "slow"
	}
	return p
}

// ContentFreshness reports how old the sample's casts are relative to now.
// Timestamps without a zone are read as UTC.
func ContentFreshness(casts []models.Cast, now time.Time) models.ContentFreshness {
	if len(casts) == 0 {
		return models.ContentFreshness{NoData: true, Message: "no recent casts found"}
	}

	var ages []float64
	for _, c := range casts {
		t, ok := ParseTimestamp(c.TimestampString())
		if !ok {
			continue
		}
		ages = append(ages, now.Sub(t).Minutes())
	}
	if len(ages) == 0 {
		return models.ContentFreshness{NoData: true, Message: models.NoValidTimestamps}
	}

	sum, newest, oldest := 0.0, ages[0], ages[0]
	for _, age := range ages {
		sum += age
		newest = min(newest, age)
		oldest = max(oldest, age)
	}
	avg := sum / float64(len(ages))

	f := models.ContentFreshness{
		AvgContentAgeMinutes: round2(avg),
		NewestContentMinutes: round2(newest),
		OldestContentMinutes: round2(oldest),
	}
	switch {
	case avg < 30:
		f.FreshnessRating = "excellent"
	case avg < 60:
		f.FreshnessRating = "good"
	default:
		f.FreshnessRating = "stale"
	}
	return f
}

func truncateRunes(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	return string([]rune(s)[:limit]) + "..."
}
