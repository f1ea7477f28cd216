package models

import (
	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Section holds the outcome of one analysis section: either its block or
// the diagnostic that replaced it. It serialises as the block itself, or as
// {"error": "..."} when the section failed.
type Section[T any] struct {
	Value *T
	Err   string
}

// OK wraps a successfully computed block.
func OK[T any](v T) Section[T] {
	return Section[T]{Value: &v}
}

// Failed records a section-level diagnostic.
func Failed[T any](msg string) Section[T] {
	return Section[T]{Err: msg}
}

// Failed reports whether the section holds a diagnostic instead of data.
func (s Section[T]) Failed() bool {
	return s.Err != "" || s.Value == nil
}

// Error returns the diagnostic message ("" when the section succeeded).
func (s Section[T]) Error() string {
	if s.Err == "" && s.Value == nil {
		return "section not run"
	}
	return s.Err
}

func (s Section[T]) MarshalJSON() ([]byte, error) {
	if s.Failed() {
		return json.Marshal(map[string]string{"error": s.Error()})
	}
	return json.Marshal(s.Value)
}

// AggregateReport is the root document assembled by the analyzer. It is
// read-only once Analyze returns.
type AggregateReport struct {
	Metadata          Metadata                   `json:"metadata"`
	PlatformOverview  Section[PlatformOverview]  `json:"platform_overview"`
	TrendingAnalysis  Section[TrendingAnalysis]  `json:"trending_analysis"`
	UserEcosystem     Section[UserEcosystem]     `json:"user_ecosystem"`
	ContentEcosystem  Section[ContentEcosystem]  `json:"content_ecosystem"`
	TokenNFTEcosystem Section[TokenNFTEcosystem] `json:"token_nft_ecosystem"`
	NetworkHealth     Section[NetworkHealth]     `json:"network_health"`
	Recommendations   []string                   `json:"recommendations"`
}

type Metadata struct {
	RunID               string `json:"run_id"`
	Timestamp           string `json:"timestamp"`
	AnalysisPeriodHours int    `json:"analysis_period_hours"`
	TimeWindow          string `json:"time_window"`
	AnalyzerVersion     string `json:"analyzer_version"`
}

// ── Platform ─────────────────────────────────────────────────────────────

type PlatformOverview struct {
	ChannelsCount       int              `json:"channels_count"`
	ActiveChannels      int              `json:"active_channels"`
	TrendingCastsSample int              `json:"trending_casts_sample"`
	SampleCastsCount    int              `json:"sample_casts_count"`
	SearchSampleCasts   int              `json:"search_sample_casts"`
	UsersAnalyzed       int              `json:"users_analyzed"`
	TopChannels         []ChannelSummary `json:"top_channels"`
	AnalysisTimestamp   string           `json:"analysis_timestamp"`
}

type ChannelSummary struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	CastsCount    int    `json:"casts_count"`
	UniqueAuthors int    `json:"unique_authors"`
	Description   string `json:"description"`
}

// ── Trending ─────────────────────────────────────────────────────────────

type TrendingAnalysis struct {
	TotalTrendingCasts int                `json:"total_trending_casts"`
	ContentThemes      ThemeCounts        `json:"content_themes"`
	EngagementPatterns EngagementPatterns `json:"engagement_patterns"`
	TrendingTopics     []TopicMention     `json:"trending_topics"`
	TopCasts           []TopCast          `json:"top_casts"`
}

// Theme bucket names, in classification priority order.
const (
	ThemeDefiFinance = "defi_finance"
	ThemeNFTArt      = "nft_art"
	ThemeTrading     = "trading"
	ThemeTechnology  = "technology"
	ThemeSocial      = "social"
	ThemeGaming      = "gaming"
	ThemeOther       = "other"
)

// ThemeCounts has one field per bucket so every bucket is always present.
type ThemeCounts struct {
	DefiFinance int `json:"defi_finance"`
	NFTArt      int `json:"nft_art"`
	Trading     int `json:"trading"`
	Technology  int `json:"technology"`
	Social      int `json:"social"`
	Gaming      int `json:"gaming"`
	Other       int `json:"other"`
}

type ThemeCount struct {
	Theme string
	Casts int
}

// Add increments the named bucket; unknown names land in Other.
func (t *ThemeCounts) Add(theme string) {
	switch theme {
	case ThemeDefiFinance:
		t.DefiFinance++
	case ThemeNFTArt:
		t.NFTArt++
	case ThemeTrading:
		t.Trading++
	case ThemeTechnology:
		t.Technology++
	case ThemeSocial:
		t.Social++
	case ThemeGaming:
		t.Gaming++
	default:
		t.Other++
	}
}

// Buckets lists every bucket in priority order.
func (t ThemeCounts) Buckets() []ThemeCount {
	return []ThemeCount{
		{ThemeDefiFinance, t.DefiFinance},
		{ThemeNFTArt, t.NFTArt},
		{ThemeTrading, t.Trading},
		{ThemeTechnology, t.Technology},
		{ThemeSocial, t.Social},
		{ThemeGaming, t.Gaming},
		{ThemeOther, t.Other},
	}
}

// Total is the number of classified casts.
func (t ThemeCounts) Total() int {
	n := 0
	for _, b := range t.Buckets() {
		n += b.Casts
	}
	return n
}

type EngagementPatterns struct {
	TotalLikes        int     `json:"total_likes"`
	TotalRecasts      int     `json:"total_recasts"`
	TotalReplies      int     `json:"total_replies"`
	AvgLikesPerCast   float64 `json:"avg_likes_per_cast"`
	AvgRecastsPerCast float64 `json:"avg_recasts_per_cast"`
	AvgRepliesPerCast float64 `json:"avg_replies_per_cast"`
	TotalEngagement   int     `json:"total_engagement"`
}

type TopicMention struct {
	Topic    string `json:"topic"`
	Mentions int    `json:"mentions"`
}

type TopCast struct {
	Text    string `json:"text"`
	Author  string `json:"author"`
	Likes   int    `json:"likes"`
	Recasts int    `json:"recasts"`
	Replies int    `json:"replies"`
	Channel string `json:"channel"`
}

// ── Users ────────────────────────────────────────────────────────────────

type UserEcosystem struct {
	TotalUniqueUsers         int              `json:"total_unique_users"`
	TotalUniqueUsersAnalyzed int              `json:"total_unique_users_analyzed"`
	TotalCastsAnalyzed       int              `json:"total_casts_analyzed"`
	TopInfluencers           []UserActivity   `json:"top_influencers"`
	UserEngagementStats      EngagementStats  `json:"user_engagement_stats"`
	ChannelDiversity         ChannelDiversity `json:"channel_diversity"`
}

// UserActivity is the finalized per-author tally.
type UserActivity struct {
	FID             int64    `json:"fid"`
	Username        string   `json:"username"`
	CastsCount      int      `json:"casts_count"`
	TotalLikes      int      `json:"total_likes"`
	TotalRecasts    int      `json:"total_recasts"`
	TotalReplies    int      `json:"total_replies"`
	Channels        []string `json:"channels"`
	TotalEngagement int      `json:"total_engagement"`
}

// EngagementStats is computed over the truncated leaderboard only, so the
// average and the high/medium/low split describe the top-N sample.
type EngagementStats struct {
	SampleSize              int                    `json:"sample_size"`
	TotalEngagementAllUsers int                    `json:"total_engagement_all_users"`
	AvgEngagementPerUser    float64                `json:"avg_engagement_per_user"`
	MaxEngagement           int                    `json:"max_engagement"`
	EngagementDistribution  EngagementDistribution `json:"engagement_distribution"`
}

type EngagementDistribution struct {
	High   int `json:"high"`
	Medium int `json:"medium"`
	Low    int `json:"low"`
}

type ChannelDiversity struct {
	UniqueChannels     int      `json:"unique_channels"`
	ChannelsList       []string `json:"channels_list"`
	AvgChannelsPerUser float64  `json:"avg_channels_per_user"`
}

// ── Content ──────────────────────────────────────────────────────────────

type ContentEcosystem struct {
	TotalCastsAnalyzed      int                 `json:"total_casts_analyzed"`
	DuplicatesRemoved       int                 `json:"duplicates_removed"`
	ContentPatterns         ContentPatterns     `json:"content_patterns"`
	TemporalPatterns        TemporalPatterns    `json:"temporal_patterns"`
	SentimentAnalysis       SentimentBreakdown  `json:"sentiment_analysis"`
	EngagementByContentType EngagementByType    `json:"engagement_by_content_type"`
	ChannelDistribution     ChannelDistribution `json:"channel_distribution"`
}

type ContentPatterns struct {
	AvgCastLength             float64            `json:"avg_cast_length"`
	CastsWithHashtags         int                `json:"casts_with_hashtags"`
	CastsWithMentions         int                `json:"casts_with_mentions"`
	CastsWithLinks            int                `json:"casts_with_links"`
	CastsWithQuestions        int                `json:"casts_with_questions"`
	ContentLengthDistribution LengthDistribution `json:"content_length_distribution"`
}

type LengthDistribution struct {
	Short  int `json:"short"`
	Medium int `json:"medium"`
	Long   int `json:"long"`
}

// NoValidTimestamps is the message carried by a TemporalPatterns block
// that had nothing to bucket.
const NoValidTimestamps = "no valid timestamps found"

type TemporalPatterns struct {
	NoData            bool        `json:"no_data"`
	Message           string      `json:"message,omitempty"`
	HourlyActivity    map[int]int `json:"hourly_activity"`
	PeakHour          int         `json:"peak_hour"`
	PeakHourCasts     int         `json:"peak_hour_casts"`
	TotalHoursActive  int         `json:"total_hours_active"`
	ActivityScore     int         `json:"activity_score"`
	SkippedTimestamps int         `json:"skipped_timestamps"`
}

const (
	SentimentPositive = "positive"
	SentimentNegative = "negative"
	SentimentNeutral  = "neutral"
)

type SentimentBreakdown struct {
	Positive         int    `json:"positive"`
	Negative         int    `json:"negative"`
	Neutral          int    `json:"neutral"`
	OverallSentiment string `json:"overall_sentiment"`
}

// EngagementByType holds the average likes per content type.
type EngagementByType struct {
	Questions     float64 `json:"questions"`
	Statements    float64 `json:"statements"`
	Announcements float64 `json:"announcements"`
	Discussions   float64 `json:"discussions"`
}

type ChannelDistribution struct {
	TotalChannels        int            `json:"total_channels"`
	TopChannels          []ChannelCount `json:"top_channels"`
	ChannelConcentration float64        `json:"channel_concentration"`
}

type ChannelCount struct {
	Name  string `json:"name"`
	Casts int    `json:"casts"`
}

// ── Token / NFT ──────────────────────────────────────────────────────────

type TokenNFTEcosystem struct {
	TokenDiscussions       TokenDiscussions `json:"token_discussions"`
	NFTDiscussions         NFTDiscussions   `json:"nft_discussions"`
	CrossEcosystemInsights CrossEcosystem   `json:"cross_ecosystem_insights"`
	EcosystemHealthScore   int              `json:"ecosystem_health_score"`
}

type TokenDiscussions struct {
	TotalCasts      int             `json:"total_casts"`
	UniqueAuthors   int             `json:"unique_authors"`
	TrendingTokens  []TokenMention  `json:"trending_tokens"`
	MarketSentiment MarketSentiment `json:"market_sentiment"`
}

type TokenMention struct {
	Symbol   string `json:"symbol"`
	Mentions int    `json:"mentions"`
}

type MarketSentiment struct {
	OverallSentiment     string  `json:"overall_sentiment"`
	ConfidencePercentage float64 `json:"confidence_percentage"`
	BullishSignals       int     `json:"bullish_signals"`
	BearishSignals       int     `json:"bearish_signals"`
	TotalSignals         int     `json:"total_signals"`
}

type NFTDiscussions struct {
	TotalCasts    int          `json:"total_casts"`
	UniqueAuthors int          `json:"unique_authors"`
	TrendingNFTs  []NFTMention `json:"trending_nfts"`
}

type NFTMention struct {
	Name     string `json:"name"`
	Mentions int    `json:"mentions"`
}

type CrossEcosystem struct {
	OverlappingAuthors        int     `json:"overlapping_authors"`
	TotalUniqueAuthors        int     `json:"total_unique_authors"`
	OverlapPercentage         float64 `json:"overlap_percentage"`
	TokenOnlyAuthors          int     `json:"token_only_authors"`
	NFTOnlyAuthors            int     `json:"nft_only_authors"`
	EcosystemInteractionScore float64 `json:"ecosystem_interaction_score"`
}

// ── Network health ───────────────────────────────────────────────────────

type NetworkHealth struct {
	APIResponsiveness    []EndpointProbe  `json:"api_responsiveness"`
	ContentFreshness     ContentFreshness `json:"content_freshness"`
	NetworkActivityScore int              `json:"network_activity_score"`
	ErrorRate            float64          `json:"error_rate"`
	AnalysisTimestamp    string           `json:"analysis_timestamp"`
}

type EndpointProbe struct {
	Endpoint       string  `json:"endpoint"`
	ResponseTimeMs float64 `json:"response_time_ms"`
	Success        bool    `json:"success"`
	Status         string  `json:"status"`
	Error          string  `json:"error,omitempty"`
}

type ContentFreshness struct {
	NoData               bool    `json:"no_data"`
	Message              string  `json:"message,omitempty"`
	AvgContentAgeMinutes float64 `json:"avg_content_age_minutes"`
	NewestContentMinutes float64 `json:"newest_content_minutes"`
	OldestContentMinutes float64 `json:"oldest_content_minutes"`
	FreshnessRating      string  `json:"freshness_rating,omitempty"`
}

// PublishResult is what the publish step reports back to the CLI.
type PublishResult struct {
	Success   bool   `json:"success"`
	CastHash  string `json:"cast_hash,omitempty"`
	CastText  string `json:"cast_text"`
	Error     string `json:"error,omitempty"`
	Timestamp string `json:"timestamp,omitempty"`
}
