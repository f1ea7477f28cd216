package services

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"farcaster-analyzer/models"
)

// Publisher posts a cast and returns its hash.
type Publisher interface {
	Publish(ctx context.Context, signerUUID, text string) (string, error)
}

// ComposeSummary builds the short cast text for a finished report, bounded
// to maxChars runes. Failed sections show as "n/a".
func ComposeSummary(r *models.AggregateReport, maxChars int) string {
	channels, trending, users, tokens := "n/a", "n/a", "n/a", "n/a"
	if !r.PlatformOverview.Failed() {
		channels = strconv.Itoa(r.PlatformOverview.Value.ChannelsCount)
	}
	if !r.TrendingAnalysis.Failed() {
		trending = strconv.Itoa(r.TrendingAnalysis.Value.TotalTrendingCasts)
	}
	if !r.UserEcosystem.Failed() {
		users = strconv.Itoa(r.UserEcosystem.Value.TotalUniqueUsersAnalyzed)
	}
	if !r.TokenNFTEcosystem.Failed() {
		tokens = strconv.Itoa(r.TokenNFTEcosystem.Value.TokenDiscussions.TotalCasts)
	}

	var b strings.Builder
	b.WriteString("🌐 Farcaster Ecosystem Analysis Report\n\n")
	fmt.Fprintf(&b, "📊 Platform: %s channels\n", channels)
	fmt.Fprintf(&b, "📈 Trending: %s casts\n", trending)
	fmt.Fprintf(&b, "👥 Users: %s active\n", users)
	fmt.Fprintf(&b, "🪙 Token/NFT: %s discussions\n\n", tokens)
	b.WriteString("#Farcaster #Web3 #Ecosystem #Analysis")

	text := b.String()
	if maxChars <= 0 || utf8.RuneCountInString(text) <= maxChars {
		return text
	}
	runes := []rune(text)
	if maxChars <= 3 {
		return string(runes[:maxChars])
	}
	return string(runes[:maxChars-3]) + "..."
}

// PublishSummary composes the summary and posts it with the given signer.
func PublishSummary(ctx context.Context, p Publisher, signerUUID string, r *models.AggregateReport, maxChars int) models.PublishResult {
	text := ComposeSummary(r, maxChars)
	result := models.PublishResult{CastText: text, Timestamp: r.Metadata.Timestamp}

	hash, err := p.Publish(ctx, signerUUID, text)
	if err != nil {
		result.Error = err.Error()
		return result
	}
	result.Success = true
	result.CastHash = hash
	return result
}
