package services

import (
	"fmt"

	"farcaster-analyzer/models"
)

const defaultRecommendation = "Ecosystem analysis completed successfully"

type recommendationRule struct {
	fires func(r *models.AggregateReport) bool
	text  string
}

// recommendationRules is evaluated top to bottom against a finished report.
// A rule whose section failed never fires.
var recommendationRules = []recommendationRule{
	{
		fires: func(r *models.AggregateReport) bool {
			return !r.PlatformOverview.Failed() && r.PlatformOverview.Value.ChannelsCount > 15
		},
		text: "Strong channel diversity indicates healthy ecosystem segmentation",
	},
	{
		fires: func(r *models.AggregateReport) bool {
			return !r.TrendingAnalysis.Failed() && r.TrendingAnalysis.Value.TotalTrendingCasts > 30
		},
		text: "High trending content volume suggests active community engagement",
	},
	{
		fires: func(r *models.AggregateReport) bool {
			return !r.UserEcosystem.Failed() && r.UserEcosystem.Value.TotalUniqueUsers > 50
		},
		text: "Diverse and active user base indicates ecosystem vitality",
	},
	{
		fires: func(r *models.AggregateReport) bool {
			return !r.ContentEcosystem.Failed() && r.ContentEcosystem.Value.TotalCastsAnalyzed > 100
		},
		text: "Rich content ecosystem with substantial user-generated content",
	},
	{
		fires: func(r *models.AggregateReport) bool {
			return !r.TokenNFTEcosystem.Failed() && r.TokenNFTEcosystem.Value.TokenDiscussions.TotalCasts > 50
		},
		text: "Active token discussion community shows strong DeFi interest",
	},
	{
		fires: func(r *models.AggregateReport) bool {
			return activityScore(r) > 70
		},
		text: "Excellent network activity - ecosystem is thriving",
	},
	{
		fires: func(r *models.AggregateReport) bool {
			score := activityScore(r)
			return score > 40 && score <= 70
		},
		text: "Good network activity with room for growth",
	},
	{
		fires: func(r *models.AggregateReport) bool {
			score := activityScore(r)
			return score >= 0 && score <= 40
		},
		text: "Monitor network activity for potential engagement opportunities",
	},
}

// activityScore is -1 when the network health section is unavailable.
func activityScore(r *models.AggregateReport) int {
	if r.NetworkHealth.Failed() {
		return -1
	}
	return r.NetworkHealth.Value.NetworkActivityScore
}

// Recommend runs the rule table over a finished report. A panic while
// evaluating becomes a single diagnostic entry; an empty result becomes
// the default message.
func Recommend(r *models.AggregateReport) (recs []string) {
	recs = []string{}
	defer func() {
		if p := recover(); p != nil {
			recs = append(recs, fmt.Sprintf("Analysis error: %v", p))
		}
	}()

	for _, rule := range recommendationRules {
		if rule.fires(r) {
			recs = append(recs, rule.text)
		}
	}
	if len(recs) == 0 {
		recs = append(recs, defaultRecommendation)
	}
	return recs
}
