package services

import (
	"sort"
	"strconv"

	"farcaster-analyzer/models"
)

const leaderboardSize = 15

// userTally accumulates one author's activity while the sample is streamed.
type userTally struct {
	fid      int64
	username string
	casts    int
	likes    int
	recasts  int
	replies  int
	channels map[string]struct{}
}

// Leaderboard groups casts by author fid. Authors are kept in first-seen
// order so the final stable sort breaks ties deterministically.
type Leaderboard struct {
	order   []int64
	tallies map[int64]*userTally
}

func NewLeaderboard() *Leaderboard {
	return &Leaderboard{tallies: make(map[int64]*userTally)}
}

// Add folds one cast into its author's tally. Casts without a fid are ignored.
func (b *Leaderboard) Add(c models.Cast) {
	fid := c.FID()
	if fid == 0 {
		return
	}

	t, ok := b.tallies[fid]
	if !ok {
		username := c.Username()
		if username == "" {
			username = "user_" + strconv.FormatInt(fid, 10)
		}
		t = &userTally{fid: fid, username: username, channels: map[string]struct{}{}}
		b.tallies[fid] = t
		b.order = append(b.order, fid)
	}

	t.casts++
	t.likes += c.Likes()
	t.recasts += c.Recasts()
	t.replies += c.ReplyCount()
	if name := c.ChannelName(""); name != "" {
		t.channels[name] = struct{}{}
	}
}

// Len is the number of distinct authors seen.
func (b *Leaderboard) Len() int {
	return len(b.order)
}

// Finalize converts every tally into a UserActivity with sorted channels
// and computed engagement, in first-seen order.
func (b *Leaderboard) Finalize() []models.UserActivity {
	out := make([]models.UserActivity, 0, len(b.order))
	for _, fid := range b.order {
		t := b.tallies[fid]
		channels := make([]string, 0, len(t.channels))
		for name := range t.channels {
			channels = append(channels, name)
		}
		sort.Strings(channels)

		out = append(out, models.UserActivity{
			FID:             t.fid,
			Username:        t.username,
			CastsCount:      t.casts,
			TotalLikes:      t.likes,
			TotalRecasts:    t.recasts,
			TotalReplies:    t.replies,
			Channels:        channels,
			TotalEngagement: t.likes + t.recasts + t.replies,
		})
	}
	return out
}

// Top finalizes the board and returns the n most engaged authors.
func (b *Leaderboard) Top(n int) []models.UserActivity {
	users := b.Finalize()
	sort.SliceStable(users, func(i, j int) bool {
		return users[i].TotalEngagement > users[j].TotalEngagement
	})
	if len(users) > n {
		users = users[:n]
	}
	return users
}

// BuildLeaderboard returns the top authors of a sample and how many
// distinct authors it had.
func BuildLeaderboard(casts []models.Cast) (top []models.UserActivity, uniqueUsers int) {
	board := NewLeaderboard()
	for _, c := range casts {
		board.Add(c)
	}
	return board.Top(leaderboardSize), board.Len()
}

// EngagementStats describes the truncated leaderboard it is given, not the
// full author population: the average and the high/medium/low split are
// relative to the top-N sample only.
func EngagementStats(users []models.UserActivity) models.EngagementStats {
	s := models.EngagementStats{SampleSize: len(users)}
	if len(users) == 0 {
		return s
	}

	for _, u := range users {
		s.TotalEngagementAllUsers += u.TotalEngagement
		if u.TotalEngagement > s.MaxEngagement {
			s.MaxEngagement = u.TotalEngagement
		}
	}
	avg := float64(s.TotalEngagementAllUsers) / float64(len(users))
	s.AvgEngagementPerUser = round2(avg)

	for _, u := range users {
		e := float64(u.TotalEngagement)
		switch {
		case e > avg*1.5:
			s.EngagementDistribution.High++
		case e < avg*0.5:
			s.EngagementDistribution.Low++
		default:
			s.EngagementDistribution.Medium++
		}
	}
	return s
}

// ChannelDiversity summarises the channels the given authors posted in.
func ChannelDiversity(users []models.UserActivity) models.ChannelDiversity {
	all := map[string]struct{}{}
	memberships := 0
	for _, u := range users {
		memberships += len(u.Channels)
		for _, ch := range u.Channels {
			all[ch] = struct{}{}
		}
	}

	names := make([]string, 0, len(all))
	for ch := range all {
		names = append(names, ch)
	}
	sort.Strings(names)

	d := models.ChannelDiversity{UniqueChannels: len(names), ChannelsList: names}
	if len(names) > 10 {
		d.ChannelsList = names[:10]
	}
	if len(users) > 0 {
		d.AvgChannelsPerUser = round2(float64(memberships) / float64(len(users)))
	}
	return d
}

// AuthorSet is a set of author fids.
type AuthorSet map[int64]struct{}

// AuthorsOf collects the fids of the casts that have one.
func AuthorsOf(casts ...[]models.Cast) AuthorSet {
	set := AuthorSet{}
	for _, group := range casts {
		for _, c := range group {
			if fid := c.FID(); fid != 0 {
				set[fid] = struct{}{}
			}
		}
	}
	return set
}

// CrossEcosystem measures how much the token and NFT author sets overlap.
func CrossEcosystem(token, nft AuthorSet) models.CrossEcosystem {
	overlap := 0
	for fid := range token {
		if _, ok := nft[fid]; ok {
			overlap++
		}
	}
	union := len(token) + len(nft) - overlap

	return models.CrossEcosystem{
		OverlappingAuthors:        overlap,
		TotalUniqueAuthors:        union,
		OverlapPercentage:         percent(overlap, union),
		TokenOnlyAuthors:          len(token) - overlap,
		NFTOnlyAuthors:            len(nft) - overlap,
		EcosystemInteractionScore: percent(overlap, max(len(token), len(nft), 1)),
	}
}

// EcosystemHealth scores activity and author diversity, 50 points each.
// The result is always within [0, 100].
func EcosystemHealth(totalCasts, distinctAuthors int) int {
	activity := min(50, max(0, totalCasts)/10)
	diversity := min(50, max(0, distinctAuthors)/2)
	return activity + diversity
}
