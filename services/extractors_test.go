package services

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"farcaster-analyzer/models"
)

func textCast(text string) models.Cast {
	return models.Cast{Text: text}
}

func likedCast(text string, likes int) models.Cast {
	return models.Cast{Text: text, Reactions: &models.Reactions{LikesCount: likes}}
}

func stampedCast(ts string) models.Cast {
	return models.Cast{Timestamp: &ts}
}

func channelCast(name string) models.Cast {
	if name == "" {
		return models.Cast{}
	}
	return models.Cast{Channel: &models.Channel{ID: name, Name: name}}
}

func TestExtractorsAreTotalOnEmptyInput(t *testing.T) {
	for _, input := range [][]models.Cast{nil, {}, {{}}} {
		themes := ExtractThemes(input)
		assert.Equal(t, len(input), themes.Total())

		assert.NotNil(t, ExtractTopics(input))
		assert.NotNil(t, ExtractTokens(input))
		assert.NotNil(t, ExtractNFTs(input))

		e := ExtractEngagement(input)
		assert.Zero(t, e.TotalEngagement)
		assert.Zero(t, e.AvgLikesPerCast)
		assert.Zero(t, e.AvgRecastsPerCast)
		assert.Zero(t, e.AvgRepliesPerCast)

		temporal := ExtractTemporal(input)
		assert.True(t, temporal.NoData)
		assert.NotNil(t, temporal.HourlyActivity)

		s := ExtractSentiment(input)
		assert.Equal(t, models.SentimentNeutral, s.OverallSentiment)

		m := ExtractMarketSentiment(input)
		assert.Equal(t, "neutral", m.OverallSentiment)
		assert.Zero(t, m.ConfidencePercentage)

		d := ExtractChannelDistribution(input)
		assert.NotNil(t, d.TopChannels)

		ExtractContentPatterns(input)
		ExtractEngagementByType(input)
	}
}

func TestGmFrensScenario(t *testing.T) {
	casts := Sanitize([]any{map[string]any{
		"text":      "gm frens #based",
		"author":    map[string]any{"fid": 1.0},
		"reactions": map[string]any{"likes_count": 10.0, "recasts_count": 2.0},
		"replies":   map[string]any{"count": 1.0},
	}})
	require.Len(t, casts, 1)

	themes := ExtractThemes(casts)
	assert.Equal(t, 1, themes.Social)
	assert.Equal(t, 1, themes.Total())

	assert.Equal(t, []models.TopicMention{{Topic: "based", Mentions: 1}}, ExtractTopics(casts))

	e := ExtractEngagement(casts)
	assert.Equal(t, 10, e.TotalLikes)
	assert.Equal(t, 2, e.TotalRecasts)
	assert.Equal(t, 1, e.TotalReplies)
	assert.Equal(t, 13, e.TotalEngagement)

	s := ExtractSentiment(casts)
	assert.Equal(t, 1, s.Neutral)
	assert.Equal(t, models.SentimentNeutral, s.OverallSentiment)
}

func TestThemePriority(t *testing.T) {
	tests := []struct {
		text string
		want string
	}{
		{"defi yields and a new game", models.ThemeDefiFinance},
		{"play this game, mint the nft", models.ThemeNFTArt},
		{"buy the dip on ethereum", models.ThemeTrading},
		{"layer2 scaling for web3 gaming", models.ThemeTechnology},
		{"our community plays games", models.ThemeSocial},
		{"metaverse gaming night", models.ThemeGaming},
		{"Digital Art week", models.ThemeNFTArt},
		{"just had lunch", models.ThemeOther},
		{"#based", models.ThemeOther},
		{"", models.ThemeOther},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			assert.Equal(t, tt.want, classifyTheme(tt.text))
		})
	}
}

func TestExtractTopicsTiesKeepFirstSeenOrder(t *testing.T) {
	casts := []models.Cast{
		textCast("#Beta then #alpha"),
		textCast("#alpha and #gamma"),
		textCast("no tags"),
	}

	assert.Equal(t, []models.TopicMention{
		{Topic: "alpha", Mentions: 2},
		{Topic: "beta", Mentions: 1},
		{Topic: "gamma", Mentions: 1},
	}, ExtractTopics(casts))
}

func TestExtractTopicsTopTen(t *testing.T) {
	var casts []models.Cast
	for _, tag := range strings.Fields("a b c d e f g h i j k l") {
		casts = append(casts, textCast("#"+tag))
	}
	assert.Len(t, ExtractTopics(casts), 10)
}

func TestExtractEngagementAverages(t *testing.T) {
	casts := []models.Cast{
		{Reactions: &models.Reactions{LikesCount: 1, RecastsCount: 1}},
		{Reactions: &models.Reactions{LikesCount: 2}, Replies: &models.Replies{Count: 1}},
		{},
	}

	e := ExtractEngagement(casts)
	assert.Equal(t, 3, e.TotalLikes)
	assert.Equal(t, 1.0, e.AvgLikesPerCast)
	assert.Equal(t, 0.33, e.AvgRecastsPerCast)
	assert.Equal(t, 0.33, e.AvgRepliesPerCast)
	assert.Equal(t, 5, e.TotalEngagement)
}

func TestParseTimestamp(t *testing.T) {
	tests := []struct {
		in       string
		ok       bool
		wantHour int
	}{
		{"2024-01-01T10:15:00Z", true, 10},
		{"2024-01-01T10:15:00.123Z", true, 10},
		{"2024-01-01T03:30:00+02:00", true, 3},
		{"2024-01-01T22:00:00", true, 22},
		{"2024-01-01T22:00:00.5", true, 22},
		{"2024-01-01 07:00:00", true, 7},
		{"2025-01-01 23:59:59Z", true, 23},
		{"2025-01-01 23:59:59.25+01:00", true, 23},
		{"2024-01-01T07:05", true, 7},
		{"2024-01-01", true, 0},
		{"yesterday", false, 0},
		{"", false, 0},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			ts, ok := ParseTimestamp(tt.in)
			assert.Equal(t, tt.ok, ok)
			if ok {
				assert.Equal(t, tt.wantHour, ts.Hour())
			}
		})
	}
}

func TestExtractTemporal(t *testing.T) {
	casts := []models.Cast{
		stampedCast("2024-01-01T10:15:00Z"),
		stampedCast("2024-01-01T10:45:00Z"),
		stampedCast("2024-01-01 03:00:00"),
		stampedCast("2024-01-01T03:30:00+02:00"),
		stampedCast("garbage"),
		{},
	}

	p := ExtractTemporal(casts)
	assert.False(t, p.NoData)
	assert.Equal(t, map[int]int{3: 2, 10: 2}, p.HourlyActivity)
	assert.Equal(t, 3, p.PeakHour, "ties go to the lowest hour")
	assert.Equal(t, 2, p.PeakHourCasts)
	assert.Equal(t, 2, p.TotalHoursActive)
	assert.Equal(t, 0, p.ActivityScore)
	assert.Equal(t, 1, p.SkippedTimestamps)
}

func TestExtractTemporalActivityScore(t *testing.T) {
	var casts []models.Cast
	for i := 0; i < 12; i++ {
		casts = append(casts, stampedCast("2024-01-01T05:00:00Z"), stampedCast("2024-01-01T06:00:00Z"))
	}
	casts = append(casts, stampedCast("2024-01-01T06:30:00Z"))

	p := ExtractTemporal(casts)
	assert.Equal(t, 6, p.PeakHour)
	assert.Equal(t, 13, p.PeakHourCasts)
	assert.Equal(t, 2*25/24, p.ActivityScore)
}

func TestExtractTemporalOnlyUnparsable(t *testing.T) {
	p := ExtractTemporal([]models.Cast{stampedCast("not a time")})

	assert.True(t, p.NoData)
	assert.Equal(t, models.NoValidTimestamps, p.Message)
	assert.Equal(t, 1, p.SkippedTimestamps)
	assert.Empty(t, p.HourlyActivity)
}

func TestExtractSentiment(t *testing.T) {
	s := ExtractSentiment([]models.Cast{
		textCast("bullish, moon, great"),
		textCast("bad crash"),
		textCast("up and down"),
	})
	assert.Equal(t, 1, s.Positive)
	assert.Equal(t, 1, s.Negative)
	assert.Equal(t, 1, s.Neutral)
	assert.Equal(t, models.SentimentNeutral, s.OverallSentiment)

	s = ExtractSentiment([]models.Cast{
		textCast("love it"),
		textCast("best day"),
		textCast("hello"),
	})
	assert.Equal(t, models.SentimentPositive, s.OverallSentiment)

	s = ExtractSentiment([]models.Cast{textCast("worst"), textCast("hate"), textCast("hi")})
	assert.Equal(t, models.SentimentNegative, s.OverallSentiment)
}

func TestExtractSentimentMatchesWholeWords(t *testing.T) {
	s := ExtractSentiment([]models.Cast{textCast("upgrade your downloads")})
	assert.Equal(t, 1, s.Neutral)
}

func TestExtractMarketSentiment(t *testing.T) {
	m := ExtractMarketSentiment([]models.Cast{
		textCast("buy and go long"),
		textCast("time to sell"),
	})

	assert.Equal(t, "bullish", m.OverallSentiment)
	assert.Equal(t, 2, m.BullishSignals)
	assert.Equal(t, 1, m.BearishSignals)
	assert.Equal(t, 3, m.TotalSignals)
	assert.Equal(t, 33.33, m.ConfidencePercentage)

	m = ExtractMarketSentiment([]models.Cast{textCast("pump then dump")})
	assert.Equal(t, "neutral", m.OverallSentiment)
	assert.Zero(t, m.ConfidencePercentage)
}

func TestExtractTokens(t *testing.T) {
	casts := []models.Cast{
		textCast("$eth to the moon"),
		textCast("ETH and $DEGEN"),
		textCast("buying $PEPE and SOL"),
		textCast("$THE end, $OK"),
	}

	assert.Equal(t, []models.TokenMention{
		{Symbol: "ETH", Mentions: 3},
		{Symbol: "DEGEN", Mentions: 2},
		{Symbol: "PEPE", Mentions: 1},
		{Symbol: "SOL", Mentions: 1},
	}, ExtractTokens(casts))
}

func TestExtractTokensTopFifteen(t *testing.T) {
	var casts []models.Cast
	for _, sym := range strings.Fields("AAA BBB CCC DDD EEE FFF GGG HHH III JJJ KKK LLL MMM NNN OOO PPP QQQ") {
		casts = append(casts, textCast("$"+sym))
	}
	assert.Len(t, ExtractTokens(casts), 15)
}

func TestExtractNFTs(t *testing.T) {
	casts := []models.Cast{
		textCast("mint cool cats now"),
		textCast("Mint Cool Cats now!"),
		textCast("#NFTart is art"),
		textCast("nft 1234"),
		textCast("art ab"),
		textCast("nothing to see"),
	}

	assert.Equal(t, []models.NFTMention{
		{Name: "Cool Cats Now", Mentions: 2},
		{Name: "Nftart", Mentions: 1},
	}, ExtractNFTs(casts))
}

func TestExtractNFTsTitlesHashtagParts(t *testing.T) {
	got := ExtractNFTs([]models.Cast{textCast("look at #cool_nft and #my_nft_drop")})
	assert.Equal(t, []models.NFTMention{
		{Name: "Cool_Nft", Mentions: 1},
		{Name: "My_Nft_Drop", Mentions: 1},
	}, got)
}

func TestExtractNFTsUsesFirstKeywordOnly(t *testing.T) {
	got := ExtractNFTs([]models.Cast{textCast("new collection drop tonight")})
	assert.Equal(t, []models.NFTMention{{Name: "Drop Tonight", Mentions: 1}}, got)
}

func TestExtractContentPatterns(t *testing.T) {
	medium := "is this live? http://x.io"
	medium += strings.Repeat("a", 60-len(medium))
	casts := []models.Cast{
		textCast("short #tag @bob"),
		textCast(medium),
		textCast(strings.Repeat("x", 200)),
	}

	p := ExtractContentPatterns(casts)
	assert.Equal(t, models.LengthDistribution{Short: 1, Medium: 1, Long: 1}, p.ContentLengthDistribution)
	assert.Equal(t, 1, p.CastsWithHashtags)
	assert.Equal(t, 1, p.CastsWithMentions)
	assert.Equal(t, 1, p.CastsWithLinks)
	assert.Equal(t, 1, p.CastsWithQuestions)
	assert.Equal(t, round1(float64(15+60+200)/3), p.AvgCastLength)
}

func TestExtractEngagementByType(t *testing.T) {
	got := ExtractEngagementByType([]models.Cast{
		likedCast("what is this?", 4),
		likedCast("announcing v2", 10),
		likedCast("how do you think", 3),
		likedCast("gm", 1),
		likedCast("hello", 2),
	})

	assert.Equal(t, models.EngagementByType{
		Questions:     4,
		Announcements: 10,
		Discussions:   3,
		Statements:    1.5,
	}, got)
}

func TestExtractChannelDistribution(t *testing.T) {
	d := ExtractChannelDistribution([]models.Cast{
		channelCast("dev"),
		channelCast("dev"),
		channelCast(""),
		channelCast("art"),
	})

	assert.Equal(t, 3, d.TotalChannels)
	assert.Equal(t, []models.ChannelCount{
		{Name: "dev", Casts: 2},
		{Name: "general", Casts: 1},
		{Name: "art", Casts: 1},
	}, d.TopChannels)
	assert.Equal(t, 50.0, d.ChannelConcentration)
}
