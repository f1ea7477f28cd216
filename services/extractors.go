package services

import (
	"math"
	"regexp"
	"sort"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"farcaster-analyzer/models"
)

var (
	// wordRegexp splits text into lowercase words for keyword matching.
	wordRegexp = regexp.MustCompile(`[\p{L}\p{N}]+`)
	// hashtagRegexp captures the tag after '#'.
	hashtagRegexp = regexp.MustCompile(`#([\p{L}\p{N}_]+)`)
	// dollarTokenRegexp captures $SYMBOL mentions in uppercased text.
	dollarTokenRegexp = regexp.MustCompile(`\$([A-Z]{2,10})`)
	// bareTokenRegexp captures standalone 2–10 letter uppercase words.
	bareTokenRegexp = regexp.MustCompile(`\b[A-Z]{2,10}\b`)
)

const (
	topTopics   = 10
	topTokens   = 15
	topNFTs     = 10
	topChannels = 10
)

// themeRule pairs a bucket with the keywords that select it.
type themeRule struct {
	theme    string
	keywords []string
}

// themeRules is evaluated in order; the first rule with a hit wins.
var themeRules = []themeRule{
	{models.ThemeDefiFinance, []string{"defi", "yield", "liquidity", "staking", "farming", "protocol", "dao", "finance"}},
	{models.ThemeNFTArt, []string{"nft", "art", "collectible", "mint", "rarible", "opensea", "foundation", "digital art"}},
	{models.ThemeTrading, []string{"buy", "sell", "trade", "price", "market", "bull", "bear", "trading"}},
	{models.ThemeTechnology, []string{"blockchain", "crypto", "ethereum", "base", "layer2", "scaling", "web3"}},
	{models.ThemeSocial, []string{"community", "social", "network", "friends", "connect", "farcaster", "gm", "frens"}},
	{models.ThemeGaming, []string{"game", "gaming", "play", "metaverse", "virtual"}},
}

var (
	positiveWords = []string{"bullish", "moon", "pump", "up", "good", "great", "excellent", "amazing", "love", "best", "win"}
	negativeWords = []string{"bearish", "dump", "down", "bad", "terrible", "awful", "hate", "worst", "lose", "crash"}

	bullishWords = []string{"bullish", "moon", "pump", "up", "buy", "long", "bull", "green", "profit"}
	bearishWords = []string{"bearish", "dump", "down", "sell", "short", "bear", "red", "loss", "crash"}

	announcementWords = []string{"announcing", "launching", "new", "update", "breaking"}
	discussionWords   = []string{"what", "how", "why", "think", "opinion"}

	nftKeywords = []string{"nft", "collectible", "art", "mint", "collection", "drop", "rarible", "opensea", "foundation", "nfts"}
)

var knownTokens = setOf(
	"ETH", "BTC", "USDC", "USDT", "DAI", "WBTC", "WETH", "UNI", "AAVE", "LINK",
	"COMP", "MKR", "SNX", "SUSHI", "YFI", "BAL", "REN", "BAT", "OMG", "ZRX",
	"LRC", "REP", "STORJ", "ANT", "MLN", "FUN", "GNO", "RDN", "RPL",
	"BASE", "DEGEN", "BEAN", "TN100X", "BUILD", "HIGHER", "NORMIE", "BRETT",
	"TIA", "STRK", "ZKS", "IMX", "ARB", "OP", "MATIC", "AVAX", "SOL", "DOT",
)

// tokenStopWords are common English words that slip through either token pass.
var tokenStopWords = setOf(
	"THE", "AND", "FOR", "ARE", "BUT", "NOT", "YOU", "ALL", "CAN", "HER",
	"WAS", "ONE", "OUR", "HAD", "BY", "HOT", "SOME", "WHAT", "THERE", "WHEN",
	"YOUR", "HOW", "EACH", "WHICH", "THEIR", "TIME", "WILL", "ABOUT", "WOULD",
	"COULD", "OTHER",
)

// ExtractThemes assigns every cast to exactly one theme bucket.
func ExtractThemes(casts []models.Cast) models.ThemeCounts {
	var counts models.ThemeCounts
	for _, c := range casts {
		counts.Add(classifyTheme(c.Text))
	}
	return counts
}

func classifyTheme(text string) string {
	words := wordsOf(text)
	for _, rule := range themeRules {
		if words.containsAny(rule.keywords) {
			return rule.theme
		}
	}
	return models.ThemeOther
}

// ExtractTopics returns the most mentioned hashtags.
func ExtractTopics(casts []models.Cast) []models.TopicMention {
	var tags orderedCounter
	for _, c := range casts {
		for _, m := range hashtagRegexp.FindAllStringSubmatch(strings.ToLower(c.Text), -1) {
			tags.add(m[1])
		}
	}

	top := tags.top(topTopics)
	out := make([]models.TopicMention, 0, len(top))
	for _, kc := range top {
		out = append(out, models.TopicMention{Topic: kc.key, Mentions: kc.count})
	}
	return out
}

// ExtractEngagement sums reactions and replies across the sample.
func ExtractEngagement(casts []models.Cast) models.EngagementPatterns {
	var p models.EngagementPatterns
	for _, c := range casts {
		p.TotalLikes += c.Likes()
		p.TotalRecasts += c.Recasts()
		p.TotalReplies += c.ReplyCount()
	}
	p.TotalEngagement = p.TotalLikes + p.TotalRecasts + p.TotalReplies

	if n := len(casts); n > 0 {
		p.AvgLikesPerCast = round2(float64(p.TotalLikes) / float64(n))
		p.AvgRecastsPerCast = round2(float64(p.TotalRecasts) / float64(n))
		p.AvgRepliesPerCast = round2(float64(p.TotalReplies) / float64(n))
	}
	return p
}

// timestampLayouts are tried in order. Layouts without a zone parse as UTC.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

// ParseTimestamp accepts RFC 3339 (Z or offset, T or space separator) and
// naive ISO-8601 values.
func ParseTimestamp(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// ExtractTemporal buckets casts by hour of day as written in the timestamp.
func ExtractTemporal(casts []models.Cast) models.TemporalPatterns {
	p := models.TemporalPatterns{HourlyActivity: map[int]int{}}

	var hours [24]int
	total := 0
	for _, c := range casts {
		if c.Timestamp == nil {
			continue
		}
		t, ok := ParseTimestamp(*c.Timestamp)
		if !ok {
			p.SkippedTimestamps++
			continue
		}
		hours[t.Hour()]++
		total++
	}

	if total == 0 {
		p.NoData = true
		p.Message = models.NoValidTimestamps
		return p
	}

	p.PeakHour = -1
	for h, n := range hours {
		if n == 0 {
			continue
		}
		p.HourlyActivity[h] = n
		// strict comparison keeps the lowest hour on ties
		if p.PeakHour < 0 || n > p.PeakHourCasts {
			p.PeakHour = h
			p.PeakHourCasts = n
		}
	}
	p.TotalHoursActive = len(p.HourlyActivity)
	p.ActivityScore = p.TotalHoursActive * total / 24
	return p
}

// ExtractSentiment classifies each cast by counting positive and negative
// keywords; a strict majority decides.
func ExtractSentiment(casts []models.Cast) models.SentimentBreakdown {
	var s models.SentimentBreakdown
	for _, c := range casts {
		words := wordsOf(c.Text)
		pos := words.countPresent(positiveWords)
		neg := words.countPresent(negativeWords)
		switch {
		case pos > neg:
			s.Positive++
		case neg > pos:
			s.Negative++
		default:
			s.Neutral++
		}
	}

	s.OverallSentiment = models.SentimentNeutral
	switch {
	case s.Positive > s.Negative && s.Positive > s.Neutral:
		s.OverallSentiment = models.SentimentPositive
	case s.Negative > s.Positive && s.Negative > s.Neutral:
		s.OverallSentiment = models.SentimentNegative
	}
	return s
}

// ExtractMarketSentiment tallies bullish and bearish signals across token casts.
func ExtractMarketSentiment(casts []models.Cast) models.MarketSentiment {
	var m models.MarketSentiment
	for _, c := range casts {
		words := wordsOf(c.Text)
		m.BullishSignals += words.countPresent(bullishWords)
		m.BearishSignals += words.countPresent(bearishWords)
	}
	m.TotalSignals = m.BullishSignals + m.BearishSignals

	m.OverallSentiment = "neutral"
	switch {
	case m.BullishSignals > m.BearishSignals:
		m.OverallSentiment = "bullish"
		m.ConfidencePercentage = percent(m.BullishSignals-m.BearishSignals, m.TotalSignals)
	case m.BearishSignals > m.BullishSignals:
		m.OverallSentiment = "bearish"
		m.ConfidencePercentage = percent(m.BearishSignals-m.BullishSignals, m.TotalSignals)
	}
	return m
}

// ExtractTokens counts token symbol mentions. A "$ETH" mention is seen by
// both the sigil pass and the bare-word pass and counts twice.
func ExtractTokens(casts []models.Cast) []models.TokenMention {
	var mentions orderedCounter
	for _, c := range casts {
		text := strings.ToUpper(c.Text)

		for _, m := range dollarTokenRegexp.FindAllStringSubmatch(text, -1) {
			symbol := m[1]
			if _, known := knownTokens[symbol]; known || len(symbol) >= 3 {
				mentions.add(symbol)
			}
		}
		for _, word := range bareTokenRegexp.FindAllString(text, -1) {
			if _, known := knownTokens[word]; known {
				mentions.add(word)
			}
		}
	}

	top := mentions.without(tokenStopWords).top(topTokens)
	out := make([]models.TokenMention, 0, len(top))
	for _, kc := range top {
		out = append(out, models.TokenMention{Symbol: kc.key, Mentions: kc.count})
	}
	return out
}

// ExtractNFTs guesses collection names from the words following the first
// NFT keyword in a cast, plus any hashtag mentioning "nft".
func ExtractNFTs(casts []models.Cast) []models.NFTMention {
	title := cases.Title(language.Und)
	var mentions orderedCounter

	for _, c := range casts {
		lower := strings.ToLower(c.Text)
		words := strings.Fields(lower)

		for i, w := range words {
			if !contains(nftKeywords, w) {
				continue
			}
			end := min(i+4, len(words))
			name := strings.Trim(strings.Join(words[i+1:end], " "), ".,!?")
			if utf8.RuneCountInString(name) > 2 && !allDigits(name) {
				mentions.add(title.String(name))
			}
			break
		}

		for _, m := range hashtagRegexp.FindAllStringSubmatch(lower, -1) {
			if strings.Contains(m[1], "nft") {
				mentions.add(titleWords(title, m[1]))
			}
		}
	}

	top := mentions.top(topNFTs)
	out := make([]models.NFTMention, 0, len(top))
	for _, kc := range top {
		out = append(out, models.NFTMention{Name: kc.key, Mentions: kc.count})
	}
	return out
}

// ExtractContentPatterns measures length and markup features of the sample.
func ExtractContentPatterns(casts []models.Cast) models.ContentPatterns {
	var p models.ContentPatterns
	if len(casts) == 0 {
		return p
	}

	totalLen := 0
	for _, c := range casts {
		n := utf8.RuneCountInString(c.Text)
		totalLen += n
		switch {
		case n < 50:
			p.ContentLengthDistribution.Short++
		case n < 200:
			p.ContentLengthDistribution.Medium++
		default:
			p.ContentLengthDistribution.Long++
		}

		if strings.Contains(c.Text, "#") {
			p.CastsWithHashtags++
		}
		if strings.Contains(c.Text, "@") {
			p.CastsWithMentions++
		}
		if strings.Contains(c.Text, "http") {
			p.CastsWithLinks++
		}
		if strings.Contains(c.Text, "?") {
			p.CastsWithQuestions++
		}
	}
	p.AvgCastLength = round1(float64(totalLen) / float64(len(casts)))
	return p
}

// ExtractEngagementByType averages likes per content type. Questions win
// over announcements, which win over discussions; the rest are statements.
func ExtractEngagementByType(casts []models.Cast) models.EngagementByType {
	var questions, statements, announcements, discussions []int
	for _, c := range casts {
		likes := c.Likes()
		words := wordsOf(c.Text)
		switch {
		case strings.Contains(c.Text, "?"):
			questions = append(questions, likes)
		case words.containsAny(announcementWords):
			announcements = append(announcements, likes)
		case words.containsAny(discussionWords):
			discussions = append(discussions, likes)
		default:
			statements = append(statements, likes)
		}
	}

	return models.EngagementByType{
		Questions:     average(questions),
		Statements:    average(statements),
		Announcements: average(announcements),
		Discussions:   average(discussions),
	}
}

// ExtractChannelDistribution counts casts per channel name ("general" when
// the cast has none).
func ExtractChannelDistribution(casts []models.Cast) models.ChannelDistribution {
	var channels orderedCounter
	for _, c := range casts {
		channels.add(c.ChannelName("general"))
	}

	d := models.ChannelDistribution{
		TotalChannels: channels.len(),
		TopChannels:   []models.ChannelCount{},
	}
	top := channels.top(topChannels)
	for _, kc := range top {
		d.TopChannels = append(d.TopChannels, models.ChannelCount{Name: kc.key, Casts: kc.count})
	}
	if len(top) > 0 {
		d.ChannelConcentration = percent(top[0].count, len(casts))
	}
	return d
}

// ── helpers ──────────────────────────────────────────────────────────────

// wordSet is the lowercased words of one text, padded for phrase lookups.
type wordSet string

func wordsOf(text string) wordSet {
	words := wordRegexp.FindAllString(strings.ToLower(text), -1)
	return wordSet(" " + strings.Join(words, " ") + " ")
}

func (w wordSet) has(keyword string) bool {
	return strings.Contains(string(w), " "+keyword+" ")
}

func (w wordSet) containsAny(keywords []string) bool {
	for _, k := range keywords {
		if w.has(k) {
			return true
		}
	}
	return false
}

// countPresent counts how many distinct keywords appear at least once.
func (w wordSet) countPresent(keywords []string) int {
	n := 0
	for _, k := range keywords {
		if w.has(k) {
			n++
		}
	}
	return n
}

// titleWords title-cases every underscore-separated part of a hashtag.
func titleWords(title cases.Caser, tag string) string {
	parts := strings.Split(tag, "_")
	for i, p := range parts {
		parts[i] = title.String(p)
	}
	return strings.Join(parts, "_")
}

type keyCount struct {
	key   string
	count int
}

// orderedCounter counts keys and remembers the order they were first seen,
// so equal counts come out in first-seen order.
type orderedCounter struct {
	index  map[string]int
	counts []keyCount
}

func (c *orderedCounter) add(key string) {
	if c.index == nil {
		c.index = make(map[string]int)
	}
	if i, ok := c.index[key]; ok {
		c.counts[i].count++
		return
	}
	c.index[key] = len(c.counts)
	c.counts = append(c.counts, keyCount{key: key, count: 1})
}

func (c *orderedCounter) len() int {
	return len(c.counts)
}

func (c *orderedCounter) without(drop map[string]struct{}) *orderedCounter {
	out := &orderedCounter{}
	for _, kc := range c.counts {
		if _, skip := drop[kc.key]; skip {
			continue
		}
		out.counts = append(out.counts, kc)
	}
	return out
}

// top returns at most n entries by descending count.
func (c *orderedCounter) top(n int) []keyCount {
	sorted := make([]keyCount, len(c.counts))
	copy(sorted, c.counts)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].count > sorted[j].count
	})
	if len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}

func setOf(items ...string) map[string]struct{} {
	s := make(map[string]struct{}, len(items))
	for _, it := range items {
		s[it] = struct{}{}
	}
	return s
}

func contains(list []string, s string) bool {
	for _, it := range list {
		if it == s {
			return true
		}
	}
	return false
}

func allDigits(s string) bool {
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return s != ""
}

func average(values []int) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0
	for _, v := range values {
		sum += v
	}
	return round2(float64(sum) / float64(len(values)))
}

// percent returns part/whole*100 rounded to 2 decimals, 0 when whole is 0.
func percent(part, whole int) float64 {
	if whole == 0 {
		return 0
	}
	return round2(float64(part) / float64(whole) * 100)
}

func round1(f float64) float64 {
	return math.Round(f*10) / 10
}

func round2(f float64) float64 {
	return math.Round(f*100) / 100
}
