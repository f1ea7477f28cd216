package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"farcaster-analyzer/models"
)

func authoredCast(fid int64, username string, likes, recasts int, channel string) models.Cast {
	c := models.Cast{
		Author:    &models.Author{FID: fid, Username: username},
		Reactions: &models.Reactions{LikesCount: likes, RecastsCount: recasts},
	}
	if channel != "" {
		c.Channel = &models.Channel{ID: channel, Name: channel}
	}
	return c
}

func TestBuildLeaderboard(t *testing.T) {
	casts := []models.Cast{
		authoredCast(1, "alice", 5, 0, "dev"),
		authoredCast(2, "", 10, 0, ""),
		authoredCast(1, "alice", 5, 1, "art"),
		authoredCast(3, "carol", 11, 0, "dev"),
		authoredCast(0, "ghost", 100, 0, ""),
		{Text: "no author", Reactions: &models.Reactions{LikesCount: 50}},
	}

	top, unique := BuildLeaderboard(casts)
	assert.Equal(t, 3, unique)
	require.Len(t, top, 3)

	assert.EqualValues(t, 1, top[0].FID, "equal engagement keeps first-seen order")
	assert.Equal(t, 11, top[0].TotalEngagement)
	assert.Equal(t, 2, top[0].CastsCount)
	assert.Equal(t, []string{"art", "dev"}, top[0].Channels)

	assert.EqualValues(t, 3, top[1].FID)
	assert.Equal(t, "user_2", top[2].Username)
	assert.Equal(t, []string{}, top[2].Channels)
}

func TestBuildLeaderboardTruncates(t *testing.T) {
	var casts []models.Cast
	for fid := int64(1); fid <= 20; fid++ {
		casts = append(casts, authoredCast(fid, "", int(fid), 0, ""))
	}

	top, unique := BuildLeaderboard(casts)
	assert.Equal(t, 20, unique)
	require.Len(t, top, 15)
	assert.EqualValues(t, 20, top[0].FID)
	assert.EqualValues(t, 6, top[14].FID)
}

func TestLeaderboardFinalizeIsRepeatable(t *testing.T) {
	board := NewLeaderboard()
	board.Add(authoredCast(7, "x", 1, 0, "b"))
	board.Add(authoredCast(7, "x", 1, 0, "a"))

	assert.Equal(t, board.Finalize(), board.Finalize())
}

func TestEngagementStats(t *testing.T) {
	users := []models.UserActivity{
		{FID: 1, TotalEngagement: 100},
		{FID: 2, TotalEngagement: 50},
		{FID: 3, TotalEngagement: 10},
	}

	s := EngagementStats(users)
	assert.Equal(t, 3, s.SampleSize)
	assert.Equal(t, 160, s.TotalEngagementAllUsers)
	assert.Equal(t, 53.33, s.AvgEngagementPerUser)
	assert.Equal(t, 100, s.MaxEngagement)
	assert.Equal(t, models.EngagementDistribution{High: 1, Medium: 1, Low: 1}, s.EngagementDistribution)
}

func TestEngagementStatsEmpty(t *testing.T) {
	assert.Equal(t, models.EngagementStats{}, EngagementStats(nil))
}

func TestChannelDiversity(t *testing.T) {
	d := ChannelDiversity([]models.UserActivity{
		{Channels: []string{"b", "a"}},
		{Channels: []string{"b", "c"}},
		{Channels: []string{}},
	})

	assert.Equal(t, 3, d.UniqueChannels)
	assert.Equal(t, []string{"a", "b", "c"}, d.ChannelsList)
	assert.Equal(t, 1.33, d.AvgChannelsPerUser)

	empty := ChannelDiversity(nil)
	assert.Zero(t, empty.AvgChannelsPerUser)
	assert.Empty(t, empty.ChannelsList)
}

func TestCrossEcosystem(t *testing.T) {
	token := AuthorsOf([]models.Cast{
		authoredCast(1, "", 0, 0, ""),
		authoredCast(2, "", 0, 0, ""),
		authoredCast(3, "", 0, 0, ""),
		{},
	})
	nft := AuthorsOf([]models.Cast{
		authoredCast(3, "", 0, 0, ""),
		authoredCast(4, "", 0, 0, ""),
	})

	assert.Equal(t, models.CrossEcosystem{
		OverlappingAuthors:        1,
		TotalUniqueAuthors:        4,
		OverlapPercentage:         25,
		TokenOnlyAuthors:          2,
		NFTOnlyAuthors:            1,
		EcosystemInteractionScore: 33.33,
	}, CrossEcosystem(token, nft))
}

func TestCrossEcosystemEmpty(t *testing.T) {
	assert.Equal(t, models.CrossEcosystem{}, CrossEcosystem(AuthorSet{}, AuthorSet{}))
}

func TestEcosystemHealth(t *testing.T) {
	tests := []struct {
		casts, authors int
		want           int
	}{
		{0, 0, 0},
		{25, 7, 5},
		{500, 100, 100},
		{10000, 10000, 100},
		{-10, -3, 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, EcosystemHealth(tt.casts, tt.authors))
	}

	for casts := -50; casts <= 2000; casts += 37 {
		for authors := -10; authors <= 500; authors += 13 {
			score := EcosystemHealth(casts, authors)
			assert.GreaterOrEqual(t, score, 0)
			assert.LessOrEqual(t, score, 100)
		}
	}
}
