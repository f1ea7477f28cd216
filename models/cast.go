package models

// Cast is one Farcaster post after sanitizing. Nested objects are optional:
// a nil pointer means the upstream payload did not carry that object, and the
// accessor methods below return the documented zero default.
type Cast struct {
	Hash      string     `json:"hash,omitempty"`
	Text      string     `json:"text"`
	Author    *Author    `json:"author,omitempty"`
	Reactions *Reactions `json:"reactions,omitempty"`
	Replies   *Replies   `json:"replies,omitempty"`
	Channel   *Channel   `json:"channel,omitempty"`
	Timestamp *string    `json:"timestamp,omitempty"`
}

type Author struct {
	FID         int64  `json:"fid"`
	Username    string `json:"username,omitempty"`
	DisplayName string `json:"display_name,omitempty"`
}

type Reactions struct {
	LikesCount   int `json:"likes_count"`
	RecastsCount int `json:"recasts_count"`
}

type Replies struct {
	Count int `json:"count"`
}

type Channel struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// FID returns the author fid, or 0 when the cast has no author.
func (c Cast) FID() int64 {
	if c.Author == nil {
		return 0
	}
	return c.Author.FID
}

// Username returns the author handle, or "" when unknown.
func (c Cast) Username() string {
	if c.Author == nil {
		return ""
	}
	return c.Author.Username
}

// Likes defaults to 0.
func (c Cast) Likes() int {
	if c.Reactions == nil {
		return 0
	}
	return c.Reactions.LikesCount
}

// Recasts defaults to 0.
func (c Cast) Recasts() int {
	if c.Reactions == nil {
		return 0
	}
	return c.Reactions.RecastsCount
}

// ReplyCount defaults to 0.
func (c Cast) ReplyCount() int {
	if c.Replies == nil {
		return 0
	}
	return c.Replies.Count
}

// Engagement is likes + recasts + replies.
func (c Cast) Engagement() int {
	return c.Likes() + c.Recasts() + c.ReplyCount()
}

// ChannelName returns the channel name, or fallback when the cast is not in a channel.
func (c Cast) ChannelName(fallback string) string {
	if c.Channel == nil || c.Channel.Name == "" {
		return fallback
	}
	return c.Channel.Name
}

// ChannelID returns the channel id, or "" outside a channel.
func (c Cast) ChannelID() string {
	if c.Channel == nil {
		return ""
	}
	return c.Channel.ID
}

// TimestampString returns the raw timestamp, or "" when absent.
func (c Cast) TimestampString() string {
	if c.Timestamp == nil {
		return ""
	}
	return *c.Timestamp
}

// User is the subset of a Neynar user object the analyzer looks at.
type User struct {
	FID      int64  `json:"fid"`
	Username string `json:"username"`
}
