package services

import (
	"strconv"
	"strings"

	"github.com/spf13/cast"

	"farcaster-analyzer/models"
	"farcaster-analyzer/utils"
)

// Sanitize turns an arbitrary decoded JSON value into casts. Only a list
// yields anything; list entries that are not objects are dropped. The
// result is a best-effort sample, not a count of what upstream holds.
func Sanitize(raw any) []models.Cast {
	items, ok := raw.([]any)
	if !ok {
		return []models.Cast{}
	}

	casts := make([]models.Cast, 0, len(items))
	for _, item := range items {
		m, ok := asObject(item)
		if !ok {
			continue
		}
		casts = append(casts, castFromObject(m))
	}
	return casts
}

// SanitizeUsers keeps the object entries of a user list.
func SanitizeUsers(raw any) []models.User {
	items, ok := raw.([]any)
	if !ok {
		return []models.User{}
	}

	users := make([]models.User, 0, len(items))
	for _, item := range items {
		m, ok := asObject(item)
		if !ok {
			continue
		}
		users = append(users, models.User{
			FID:      cast.ToInt64(first(m, "fid", "id")),
			Username: cast.ToString(first(m, "username", "handle")),
		})
	}
	return users
}

// Lookup walks nested objects by key and returns nil as soon as a step is
// missing or not an object.
func Lookup(raw any, path ...string) any {
	cur := raw
	for _, key := range path {
		m, ok := asObject(cur)
		if !ok {
			return nil
		}
		cur = m[key]
	}
	return cur
}

// DedupeByHash keeps the first cast for every hash. Casts without a hash
// cannot be identified and are dropped as well.
func DedupeByHash(casts []models.Cast) []models.Cast {
	seen := utils.NewHashSet()
	unique := make([]models.Cast, 0, len(casts))
	for _, c := range casts {
		if c.Hash == "" || !seen.Add(c.Hash) {
			continue
		}
		unique = append(unique, c)
	}
	return unique
}

func castFromObject(m map[string]any) models.Cast {
	c := models.Cast{
		Hash: cast.ToString(m["hash"]),
		Text: cast.ToString(m["text"]),
	}

	if author, ok := asObject(m["author"]); ok {
		c.Author = &models.Author{
			FID:         cast.ToInt64(first(author, "fid", "id")),
			Username:    cast.ToString(first(author, "username", "handle")),
			DisplayName: cast.ToString(author["display_name"]),
		}
	}

	if reactions, ok := asObject(m["reactions"]); ok {
		c.Reactions = &models.Reactions{
			LikesCount:   counter(first(reactions, "likes_count", "likes")),
			RecastsCount: counter(first(reactions, "recasts_count", "recasts")),
		}
	}

	if replies, ok := asObject(m["replies"]); ok {
		c.Replies = &models.Replies{Count: counter(replies["count"])}
	}

	if channel, ok := asObject(m["channel"]); ok {
		c.Channel = &models.Channel{
			ID:          cast.ToString(channel["id"]),
			Name:        cast.ToString(channel["name"]),
			Description: cast.ToString(channel["description"]),
		}
	}

	if ts, present := m["timestamp"]; present && ts != nil {
		s := cast.ToString(ts)
		c.Timestamp = &s
	}

	return c
}

func asObject(v any) (map[string]any, bool) {
	switch m := v.(type) {
	case map[string]any:
		return m, true
	case map[any]any:
		return cast.ToStringMap(m), true
	default:
		return nil, false
	}
}

// first returns the value of the first key present and non-null.
func first(m map[string]any, keys ...string) any {
	for _, k := range keys {
		if v, ok := m[k]; ok && v != nil {
			return v
		}
	}
	return nil
}

// counter coerces an engagement counter; anything unusable or negative is 0.
// Numeric strings are read as decimal, so "08" is 8.
func counter(v any) int {
	if s, ok := v.(string); ok {
		n, err := strconv.Atoi(strings.TrimSpace(s))
		if err != nil || n < 0 {
			return 0
		}
		return n
	}
	n, err := cast.ToIntE(v)
	if err != nil || n < 0 {
		return 0
	}
	return n
}
