package services

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"farcaster-analyzer/models"
)

const (
	reportTitle = "🌐 FARCASTER ECOSYSTEM ANALYSIS REPORT"

	headerPlatform        = "📊 PLATFORM OVERVIEW"
	headerTrending        = "📈 TRENDING ANALYSIS"
	headerTopCasts        = "🔥 TOP TRENDING CASTS"
	headerUsers           = "👥 USER ECOSYSTEM"
	headerContent         = "📝 CONTENT ECOSYSTEM"
	headerTokenNFT        = "🪙 TOKEN & NFT ECOSYSTEM"
	headerHealth          = "🏥 NETWORK HEALTH"
	headerRecommendations = "💡 ECOSYSTEM RECOMMENDATIONS"
)

var sectionHeaders = []string{
	headerPlatform, headerTrending, headerTopCasts, headerUsers,
	headerContent, headerTokenNFT, headerHealth, headerRecommendations,
}

// reportWriter accumulates report lines with English number grouping.
type reportWriter struct {
	b *strings.Builder
	p *message.Printer
}

func (w *reportWriter) line(format string, args ...any) {
	w.p.Fprintf(w.b, format, args...)
	w.b.WriteByte('\n')
}

func (w *reportWriter) blank() {
	w.b.WriteByte('\n')
}

func (w *reportWriter) header(title string) {
	w.line("%s", title)
	w.line("%s", strings.Repeat("-", 30))
}

// Render formats a finished report as plain text. It reads the report and
// never changes or recomputes it, so rendering the same report twice gives
// the same bytes.
func Render(r *models.AggregateReport) string {
	w := &reportWriter{b: &strings.Builder{}, p: message.NewPrinter(language.English)}

	w.line("%s", reportTitle)
	w.line("%s", strings.Repeat("=", 60))
	w.line("Run ID: %s", r.Metadata.RunID)
	w.line("Analysis Timestamp: %s", r.Metadata.Timestamp)
	w.line("Analysis Period: %d hours (window %s)", r.Metadata.AnalysisPeriodHours, r.Metadata.TimeWindow)
	w.blank()

	renderPlatform(w, r.PlatformOverview)
	renderTrending(w, r.TrendingAnalysis)
	renderUsers(w, r.UserEcosystem)
	renderContent(w, r.ContentEcosystem)
	renderTokenNFT(w, r.TokenNFTEcosystem)
	renderHealth(w, r.NetworkHealth)

	w.header(headerRecommendations)
	for i, rec := range r.Recommendations {
		w.line("%d. %s", i+1, rec)
	}
	w.blank()

	w.line("🤖 Generated by farcaster-analyzer v%s", r.Metadata.AnalyzerVersion)
	w.line("#Farcaster #Web3 #Social #Crypto #Ecosystem #Analysis")
	return w.b.String()
}

func renderFailure[T any](w *reportWriter, s models.Section[T]) bool {
	if !s.Failed() {
		return false
	}
	w.line("• Error: %s", s.Error())
	w.blank()
	return true
}

func renderPlatform(w *reportWriter, s models.Section[models.PlatformOverview]) {
	w.header(headerPlatform)
	if renderFailure(w, s) {
		return
	}
	p := s.Value

	w.line("• Total Channels: %d", p.ChannelsCount)
	w.line("• Active Channels: %d", p.ActiveChannels)
	w.line("• Sample Casts Analyzed: %d", p.SampleCastsCount)
	w.line("• Search Sample Casts: %d", p.SearchSampleCasts)
	w.line("• Users Analyzed: %d", p.UsersAnalyzed)
	if len(p.TopChannels) > 0 {
		w.line("• Top Channels:")
		for i, ch := range p.TopChannels[:min(5, len(p.TopChannels))] {
			w.line("  %d. #%s (%d casts, %d authors)", i+1, ch.Name, ch.CastsCount, ch.UniqueAuthors)
			if ch.Description != "" {
				w.line("     %s", ch.Description)
			}
		}
	}
	w.blank()
}

func renderTrending(w *reportWriter, s models.Section[models.TrendingAnalysis]) {
	w.header(headerTrending)
	if renderFailure(w, s) {
		return
	}
	t := s.Value

	w.line("• Total Trending Casts: %d", t.TotalTrendingCasts)
	if t.ContentThemes.Total() > 0 {
		title := cases.Title(language.English)
		w.line("• Content Themes:")
		for _, b := range t.ContentThemes.Buckets() {
			if b.Casts > 0 {
				w.line("  - %s: %d casts", title.String(strings.ReplaceAll(b.Theme, "_", " ")), b.Casts)
			}
		}
	}

	e := t.EngagementPatterns
	w.line("• Engagement Metrics:")
	w.line("  - Total Likes: %d", e.TotalLikes)
	w.line("  - Total Recasts: %d", e.TotalRecasts)
	w.line("  - Total Replies: %d", e.TotalReplies)
	w.line("  - Avg Likes/Cast: %.1f", e.AvgLikesPerCast)
	w.line("  - Avg Recasts/Cast: %.1f", e.AvgRecastsPerCast)
	w.line("  - Avg Replies/Cast: %.1f", e.AvgRepliesPerCast)

	if len(t.TrendingTopics) > 0 {
		w.line("• Trending Topics:")
		for i, topic := range t.TrendingTopics {
			w.line("  %d. #%s: %d mentions", i+1, topic.Topic, topic.Mentions)
		}
	}
	w.blank()

	if len(t.TopCasts) > 0 {
		w.header(headerTopCasts)
		for i, c := range t.TopCasts[:min(5, len(t.TopCasts))] {
			w.line("%d. @%s in /%s (%d❤️, %d🔄, %d💬)", i+1, c.Author, c.Channel, c.Likes, c.Recasts, c.Replies)
			w.line("   %q", c.Text)
		}
		w.blank()
	}
}

func renderUsers(w *reportWriter, s models.Section[models.UserEcosystem]) {
	w.header(headerUsers)
	if renderFailure(w, s) {
		return
	}
	u := s.Value

	w.line("• Total Unique Users Analyzed: %d", u.TotalUniqueUsersAnalyzed)
	w.line("• Casts Analyzed: %d", u.TotalCastsAnalyzed)
	if len(u.TopInfluencers) > 0 {
		w.line("• Top Influencers by Engagement:")
		for i, inf := range u.TopInfluencers[:min(8, len(u.TopInfluencers))] {
			w.line("  %d. @%s - %d engagement, %d likes, %d casts",
				i+1, inf.Username, inf.TotalEngagement, inf.TotalLikes, inf.CastsCount)
		}
	}

	st := u.UserEngagementStats
	w.line("• Engagement Among Top %d Users:", st.SampleSize)
	w.line("  - Average: %.1f", st.AvgEngagementPerUser)
	w.line("  - Max: %d", st.MaxEngagement)
	w.line("  - High/Medium/Low: %d/%d/%d",
		st.EngagementDistribution.High, st.EngagementDistribution.Medium, st.EngagementDistribution.Low)

	d := u.ChannelDiversity
	w.line("• Channel Diversity: %d channels, %.1f per user", d.UniqueChannels, d.AvgChannelsPerUser)
	w.blank()
}

func renderContent(w *reportWriter, s models.Section[models.ContentEcosystem]) {
	w.header(headerContent)
	if renderFailure(w, s) {
		return
	}
	c := s.Value

	w.line("• Total Casts Analyzed: %d", c.TotalCastsAnalyzed)
	w.line("• Duplicates Removed: %d", c.DuplicatesRemoved)

	p := c.ContentPatterns
	w.line("• Content Patterns:")
	w.line("  - Average Cast Length: %.1f characters", p.AvgCastLength)
	w.line("  - Casts with Hashtags: %d", p.CastsWithHashtags)
	w.line("  - Casts with Mentions: %d", p.CastsWithMentions)
	w.line("  - Casts with Links: %d", p.CastsWithLinks)
	w.line("  - Casts with Questions: %d", p.CastsWithQuestions)
	w.line("  - Content Length Distribution:")
	w.line("    • Short (<50 chars): %d", p.ContentLengthDistribution.Short)
	w.line("    • Medium (50-200 chars): %d", p.ContentLengthDistribution.Medium)
	w.line("    • Long (>200 chars): %d", p.ContentLengthDistribution.Long)

	t := c.TemporalPatterns
	if t.NoData {
		w.line("• Temporal Patterns: %s", t.Message)
	} else {
		w.line("• Peak Activity Hour: %02d:00 (%d casts)", t.PeakHour, t.PeakHourCasts)
		w.line("• Hours with Activity: %d", t.TotalHoursActive)
		w.line("• Activity Score: %d", t.ActivityScore)
	}

	sa := c.SentimentAnalysis
	w.line("• Sentiment: %s (positive %d, negative %d, neutral %d)",
		sa.OverallSentiment, sa.Positive, sa.Negative, sa.Neutral)

	bt := c.EngagementByContentType
	w.line("• Avg Likes by Content Type:")
	w.line("  - Questions: %.1f", bt.Questions)
	w.line("  - Announcements: %.1f", bt.Announcements)
	w.line("  - Discussions: %.1f", bt.Discussions)
	w.line("  - Statements: %.1f", bt.Statements)

	cd := c.ChannelDistribution
	w.line("• Channels: %d (top channel share %.1f%%)", cd.TotalChannels, cd.ChannelConcentration)
	for i, ch := range cd.TopChannels[:min(5, len(cd.TopChannels))] {
		w.line("  %d. /%s: %d casts", i+1, ch.Name, ch.Casts)
	}
	w.blank()
}

func renderTokenNFT(w *reportWriter, s models.Section[models.TokenNFTEcosystem]) {
	w.header(headerTokenNFT)
	if renderFailure(w, s) {
		return
	}
	tn := s.Value

	td := tn.TokenDiscussions
	w.line("• Token Discussions: %d casts", td.TotalCasts)
	w.line("• Unique Token Authors: %d", td.UniqueAuthors)
	if len(td.TrendingTokens) > 0 {
		w.line("• Trending Token Symbols:")
		for i, tok := range td.TrendingTokens[:min(5, len(td.TrendingTokens))] {
			w.line("  %d. %s: %d mentions", i+1, tok.Symbol, tok.Mentions)
		}
	}
	ms := td.MarketSentiment
	w.line("• Market Sentiment: %s (%.1f%% confidence, %d bullish / %d bearish)",
		ms.OverallSentiment, ms.ConfidencePercentage, ms.BullishSignals, ms.BearishSignals)

	nd := tn.NFTDiscussions
	w.line("• NFT Discussions: %d casts", nd.TotalCasts)
	w.line("• Unique NFT Authors: %d", nd.UniqueAuthors)
	if len(nd.TrendingNFTs) > 0 {
		w.line("• Trending NFT Topics:")
		for i, nft := range nd.TrendingNFTs[:min(5, len(nd.TrendingNFTs))] {
			w.line("  %d. %s: %d mentions", i+1, nft.Name, nft.Mentions)
		}
	}

	x := tn.CrossEcosystemInsights
	w.line("• Cross-Ecosystem Insights:")
	w.line("  - Authors in Both Token & NFT: %d", x.OverlappingAuthors)
	w.line("  - Overlap Percentage: %.1f%%", x.OverlapPercentage)
	w.line("  - Token-Only Authors: %d", x.TokenOnlyAuthors)
	w.line("  - NFT-Only Authors: %d", x.NFTOnlyAuthors)
	w.line("  - Interaction Score: %.1f%%", x.EcosystemInteractionScore)
	w.line("• Ecosystem Health Score: %d/100", tn.EcosystemHealthScore)
	w.blank()
}

func renderHealth(w *reportWriter, s models.Section[models.NetworkHealth]) {
	w.header(headerHealth)
	if renderFailure(w, s) {
		return
	}
	h := s.Value

	if len(h.APIResponsiveness) > 0 {
		w.line("• API Responsiveness:")
		for _, probe := range h.APIResponsiveness {
			icon := "❌"
			switch probe.Status {
			case "excellent", "good":
				icon = "✅"
			case "slow":
				icon = "⚠️"
			}
			w.line("  %s %s: %.1fms (%s)", icon, probe.Endpoint, probe.ResponseTimeMs, probe.Status)
		}
	}

	f := h.ContentFreshness
	if f.NoData {
		w.line("• Content Freshness: %s", f.Message)
	} else {
		icon := "🔴"
		switch f.FreshnessRating {
		case "excellent":
			icon = "🟢"
		case "good":
			icon = "🟡"
		}
		w.line("%s Content Freshness: %s (%.1f min avg age)", icon, f.FreshnessRating, f.AvgContentAgeMinutes)
	}
	w.line("• Network Activity Score: %d/100", h.NetworkActivityScore)
	w.line("• Upstream Error Rate: %.1f%%", h.ErrorRate)
	w.blank()
}

// Print writes rendered report text to out, colouring section headers.
// Colour is dropped automatically when stdout is not a terminal.
func Print(out io.Writer, text string) error {
	title := color.New(color.FgMagenta, color.Bold)
	header := color.New(color.FgYellow, color.Bold)

	bw := bufio.NewWriter(out)
	for _, ln := range strings.Split(strings.TrimRight(text, "\n"), "\n") {
		var err error
		switch {
		case ln == reportTitle:
			_, err = title.Fprintln(bw, ln)
		case contains(sectionHeaders, ln):
			_, err = header.Fprintln(bw, ln)
		default:
			_, err = fmt.Fprintln(bw, ln)
		}
		if err != nil {
			return err
		}
	}
	return bw.Flush()
}
