package services

import (
	"bytes"
	"strings"
	"testing"

	"github.com/fatih/color"
	jsoniter "github.com/json-iterator/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"farcaster-analyzer/models"
)

func sampleReport() *models.AggregateReport {
	casts := []models.Cast{
		authoredCast(1, "alice", 1234000, 2, "dev"),
		authoredCast(2, "bob", 567, 3, "art"),
	}
	top, unique := BuildLeaderboard(casts)

	return &models.AggregateReport{
		Metadata: models.Metadata{
			RunID:               "run-1",
			Timestamp:           "2025-01-01T12:00:00Z",
			AnalysisPeriodHours: 24,
			TimeWindow:          "24h",
			AnalyzerVersion:     Version,
		},
		PlatformOverview: models.OK(models.PlatformOverview{
			ChannelsCount:    2,
			ActiveChannels:   2,
			SampleCastsCount: 2,
			TopChannels: []models.ChannelSummary{
				{ID: "dev", Name: "dev", CastsCount: 1, UniqueAuthors: 1, Description: "builders"},
			},
		}),
		TrendingAnalysis: models.OK(models.TrendingAnalysis{
			TotalTrendingCasts: 2,
			ContentThemes:      ExtractThemes([]models.Cast{textCast("gm"), textCast("defi")}),
			EngagementPatterns: ExtractEngagement(casts),
			TrendingTopics:     []models.TopicMention{{Topic: "based", Mentions: 1}},
			TopCasts:           []models.TopCast{{Text: "gm", Author: "alice", Likes: 1234000, Channel: "dev"}},
		}),
		UserEcosystem: models.OK(models.UserEcosystem{
			TotalUniqueUsers:         unique,
			TotalUniqueUsersAnalyzed: unique,
			TotalCastsAnalyzed:       len(casts),
			TopInfluencers:           top,
			UserEngagementStats:      EngagementStats(top),
			ChannelDiversity:         ChannelDiversity(top),
		}),
		ContentEcosystem: models.Failed[models.ContentEcosystem]("search exploded"),
		TokenNFTEcosystem: models.OK(models.TokenNFTEcosystem{
			TokenDiscussions: models.TokenDiscussions{
				TotalCasts:     4,
				TrendingTokens: []models.TokenMention{{Symbol: "ETH", Mentions: 3}},
			},
			CrossEcosystemInsights: models.CrossEcosystem{OverlapPercentage: 33.33},
			EcosystemHealthScore:   12,
		}),
		NetworkHealth: models.OK(models.NetworkHealth{
			APIResponsiveness: []models.EndpointProbe{
				{Endpoint: "trending", ResponseTimeMs: 120.5, Success: true, Status: "excellent"},
			},
			ContentFreshness:     models.ContentFreshness{AvgContentAgeMinutes: 42, FreshnessRating: "good"},
			NetworkActivityScore: 80,
		}),
		Recommendations: []string{"Excellent network activity - ecosystem is thriving"},
	}
}

func TestRenderIsIdempotent(t *testing.T) {
	r := sampleReport()
	assert.Equal(t, Render(r), Render(r))
}

func TestRenderDoesNotMutateReport(t *testing.T) {
	r := sampleReport()
	before, err := jsoniter.Marshal(r)
	require.NoError(t, err)

	Render(r)

	after, err := jsoniter.Marshal(r)
	require.NoError(t, err)
	assert.Equal(t, string(before), string(after))
}

func TestRenderSectionOrder(t *testing.T) {
	text := Render(sampleReport())

	last := -1
	for _, h := range sectionHeaders {
		idx := strings.Index(text, h)
		require.GreaterOrEqual(t, idx, 0, "missing header %q", h)
		assert.Greater(t, idx, last, "header %q out of order", h)
		last = idx
	}
}

func TestRenderFormatting(t *testing.T) {
	text := Render(sampleReport())

	assert.Contains(t, text, "  - Total Likes: 1,234,567")
	assert.Contains(t, text, "  - Defi Finance: 1 casts")
	assert.Contains(t, text, "  - Social: 1 casts")
	assert.Contains(t, text, "  - Overlap Percentage: 33.3%")
	assert.Contains(t, text, "  1. ETH: 3 mentions")
	assert.Contains(t, text, "trending: 120.5ms (excellent)")
	assert.Contains(t, text, "Content Freshness: good (42.0 min avg age)")
	assert.Contains(t, text, "1. Excellent network activity - ecosystem is thriving")
}

func TestRenderFailedSection(t *testing.T) {
	text := Render(sampleReport())

	contentAt := strings.Index(text, headerContent)
	require.GreaterOrEqual(t, contentAt, 0)
	assert.Contains(t, text[contentAt:], "• Error: search exploded")
}

func TestRenderEmptyReport(t *testing.T) {
	text := Render(&models.AggregateReport{})
	assert.Equal(t, 6, strings.Count(text, "• Error: section not run"))
}

func TestPrintWritesEveryLine(t *testing.T) {
	prev := color.NoColor
	color.NoColor = true
	defer func() { color.NoColor = prev }()

	text := Render(sampleReport())
	var buf bytes.Buffer
	require.NoError(t, Print(&buf, text))
	assert.Equal(t, text, buf.String())
}
