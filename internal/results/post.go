package results

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Post is the canonical shape of one scraped social-media post. Raw
// platform payloads (Instagram, TikTok) are normalized into this shape
// before they reach the filter/sort engine; the engine never sees raw
// platform records.
type Post struct {
	OwnerUsername string  `json:"ownerUsername" bson:"owner_username"`
	Caption       string  `json:"caption" bson:"caption"`
	Date          string  `json:"date" bson:"date"`
	Timestamp     string  `json:"timestamp" bson:"timestamp"`
	ViewsCount    int     `json:"viewsCount" bson:"views_count"`
	PlaysCount    int     `json:"playsCount" bson:"plays_count"`
	LikesCount    int     `json:"likesCount" bson:"likes_count"`
	CommentsCount int     `json:"commentsCount" bson:"comments_count"`
	SharesCount   int     `json:"sharesCount" bson:"shares_count"`
	Engagement    float64 `json:"engagement" bson:"engagement"`
	Duration      string  `json:"duration,omitempty" bson:"duration,omitempty"`
	URL           string  `json:"url" bson:"url"`
	VideoURL      string  `json:"videoUrl,omitempty" bson:"video_url,omitempty"`
}

// displayDateLayout is the locale date format shown in the dashboard and
// accepted by the "posts newer than" filter.
const displayDateLayout = "02.01.2006"

// timestampLayouts are tried in order when parsing a post's publish time.
// Scraped payloads carry anything from RFC 3339 to bare locale dates.
var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	displayDateLayout,
	"1/2/2006",
}

// PublishedAt returns the post's publish time, trying the timestamp field
// first and falling back to the display date. The second return value is
// false when neither field parses; callers treat such posts as having no
// usable date rather than failing the whole batch.
func (p Post) PublishedAt() (time.Time, bool) {
	for _, raw := range []string{p.Timestamp, p.Date} {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		for _, layout := range timestampLayouts {
			if t, err := time.Parse(layout, raw); err == nil {
				return t, true
			}
		}
	}
	return time.Time{}, false
}

// EngagementRate computes (likes + comments) / views * 100. Posts with no
// recorded views report a rate of zero; the upstream data sometimes omits
// view counts entirely and a division by zero must not leak Inf into
// filtering or display.
func (p Post) EngagementRate() float64 {
	if p.ViewsCount == 0 {
		return 0
	}
	return float64(p.LikesCount+p.CommentsCount) / float64(p.ViewsCount) * 100
}

// flexInt decodes a JSON value that may arrive as a number, a numeric
// string, or null. Platform scrapers are not consistent about counter
// types, and a missing or malformed counter must default to zero instead
// of rejecting the record.
type flexInt int

func (f *flexInt) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		*f = 0
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			*f = 0
			return nil
		}
		// Scraped counters carry locale thousand separators, so "12.500"
		// and "1,250" are both whole counts, never decimals.
		s = strings.TrimSpace(s)
		s = strings.ReplaceAll(s, ".", "")
		s = strings.ReplaceAll(s, ",", "")
		n, err := strconv.ParseFloat(s, 64)
		if err != nil {
			*f = 0
			return nil
		}
		*f = flexInt(int(n))
		return nil
	}
	var n float64
	if err := json.Unmarshal(data, &n); err != nil {
		*f = 0
		return nil
	}
	*f = flexInt(int(n))
	return nil
}

// InstagramRawPost mirrors the flat record shape returned by the hosted
// Instagram scraper. Counter fields appear under two generations of key
// names depending on the actor version.
type InstagramRawPost struct {
	OwnerUsername  string  `json:"ownerUsername"`
	Caption        string  `json:"caption"`
	Timestamp      string  `json:"timestamp"`
	Date           string  `json:"date"`
	ViewsCount     flexInt `json:"viewsCount"`
	VideoViewCount flexInt `json:"videoViewCount"`
	PlaysCount     flexInt `json:"playsCount"`
	VideoPlayCount flexInt `json:"videoPlayCount"`
	LikesCount     flexInt `json:"likesCount"`
	CommentsCount  flexInt `json:"commentsCount"`
	SharesCount    flexInt `json:"sharesCount"`
	URL            string  `json:"url"`
	VideoURL       string  `json:"videoUrl"`
	DisplayURL     string  `json:"displayUrl"`
	Duration       string  `json:"videoDuration"`
}

// TikTokRawPost mirrors the record shape returned by the hosted TikTok
// scraper. The author lives under a nested meta object and the publish
// time is a unix timestamp.
type TikTokRawPost struct {
	AuthorMeta struct {
		Name string `json:"name"`
	} `json:"authorMeta"`
	Text         string  `json:"text"`
	CreateTime   flexInt `json:"createTime"`
	PlayCount    flexInt `json:"playCount"`
	DiggCount    flexInt `json:"diggCount"`
	CommentCount flexInt `json:"commentCount"`
	ShareCount   flexInt `json:"shareCount"`
	WebVideoURL  string  `json:"webVideoUrl"`
	VideoMeta    struct {
		Duration flexInt `json:"duration"`
	} `json:"videoMeta"`
}

// NormalizeInstagram converts a raw Instagram record to the canonical Post
// shape, resolving alternate counter keys and deriving the engagement rate.
func NormalizeInstagram(raw InstagramRawPost) Post {
	p := Post{
		OwnerUsername: raw.OwnerUsername,
		Caption:       raw.Caption,
		Timestamp:     raw.Timestamp,
		Date:          raw.Date,
		ViewsCount:    firstCount(raw.ViewsCount, raw.VideoViewCount),
		PlaysCount:    firstCount(raw.PlaysCount, raw.VideoPlayCount),
		LikesCount:    int(raw.LikesCount),
		CommentsCount: int(raw.CommentsCount),
		SharesCount:   int(raw.SharesCount),
		Duration:      raw.Duration,
		URL:           raw.URL,
		VideoURL:      raw.VideoURL,
	}
	if p.VideoURL == "" {
		p.VideoURL = raw.DisplayURL
	}
	if p.Date == "" {
		if t, ok := p.PublishedAt(); ok {
			p.Date = t.Format(displayDateLayout)
		}
	}
	p.Engagement = p.EngagementRate()
	return p
}

// NormalizeTikTok converts a raw TikTok record to the canonical Post shape.
// TikTok reports plays only, so plays double as the views counter.
func NormalizeTikTok(raw TikTokRawPost, fallbackUsername string) Post {
	p := Post{
		OwnerUsername: raw.AuthorMeta.Name,
		Caption:       raw.Text,
		PlaysCount:    int(raw.PlayCount),
		ViewsCount:    int(raw.PlayCount),
		LikesCount:    int(raw.DiggCount),
		CommentsCount: int(raw.CommentCount),
		SharesCount:   int(raw.ShareCount),
		URL:           raw.WebVideoURL,
		VideoURL:      raw.WebVideoURL,
	}
	if p.OwnerUsername == "" {
		p.OwnerUsername = fallbackUsername
	}
	if raw.CreateTime > 0 {
		t := time.Unix(int64(raw.CreateTime), 0).UTC()
		p.Timestamp = t.Format(time.RFC3339)
		p.Date = t.Format(displayDateLayout)
	}
	if d := int(raw.VideoMeta.Duration); d > 0 {
		p.Duration = fmt.Sprintf("%d:%02d", d/60, d%60)
	}
	p.Engagement = p.EngagementRate()
	return p
}

func firstCount(counts ...flexInt) int {
	for _, c := range counts {
		if c != 0 {
			return int(c)
		}
	}
	return 0
}
