package results

import (
	"encoding/json"
	"testing"
	"time"
)

func TestNormalizeInstagram(t *testing.T) {
	payload := `{
		"ownerUsername": "creator",
		"caption": "new reel",
		"timestamp": "2024-05-20T10:30:00.000Z",
		"videoViewCount": "12.500",
		"videoPlayCount": 14000,
		"likesCount": "1,250",
		"commentsCount": 80,
		"url": "https://www.instagram.com/p/abc123/",
		"videoUrl": "https://cdn.example.com/v.mp4"
	}`
	var raw InstagramRawPost
	if err := json.Unmarshal([]byte(payload), &raw); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	post := NormalizeInstagram(raw)

	if post.OwnerUsername != "creator" || post.Caption != "new reel" {
		t.Fatalf("identity fields wrong: %+v", post)
	}
	if post.ViewsCount != 12500 {
		t.Fatalf("alternate view key not resolved: %d", post.ViewsCount)
	}
	if post.PlaysCount != 14000 {
		t.Fatalf("alternate play key not resolved: %d", post.PlaysCount)
	}
	if post.LikesCount != 1250 {
		t.Fatalf("string counter not parsed: %d", post.LikesCount)
	}
	if post.Date == "" {
		t.Fatal("display date not derived from timestamp")
	}
	want := float64(1250+80) / 12500 * 100
	if post.Engagement != want {
		t.Fatalf("engagement = %v, want %v", post.Engagement, want)
	}
}

func TestNormalizeInstagramMissingCountersDefaultToZero(t *testing.T) {
	var raw InstagramRawPost
	if err := json.Unmarshal([]byte(`{"ownerUsername":"x","likesCount":"n/a"}`), &raw); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	post := NormalizeInstagram(raw)
	if post.ViewsCount != 0 || post.LikesCount != 0 || post.CommentsCount != 0 {
		t.Fatalf("missing or malformed counters must be zero: %+v", post)
	}
	if post.Engagement != 0 {
		t.Fatalf("zero-view engagement must be zero, got %v", post.Engagement)
	}
}

func TestNormalizeTikTok(t *testing.T) {
	created := time.Date(2024, 5, 20, 9, 0, 0, 0, time.UTC)
	payload := `{
		"authorMeta": {"name": "dancer"},
		"text": "trend",
		"createTime": ` + jsonInt(created.Unix()) + `,
		"playCount": 90000,
		"diggCount": 4500,
		"commentCount": 300,
		"shareCount": 120,
		"webVideoUrl": "https://www.tiktok.com/@dancer/video/1",
		"videoMeta": {"duration": 95}
	}`
	var raw TikTokRawPost
	if err := json.Unmarshal([]byte(payload), &raw); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	post := NormalizeTikTok(raw, "fallback")

	if post.OwnerUsername != "dancer" {
		t.Fatalf("author not taken from nested meta: %q", post.OwnerUsername)
	}
	if post.ViewsCount != 90000 || post.PlaysCount != 90000 {
		t.Fatalf("plays must double as views: %+v", post)
	}
	if post.Duration != "1:35" {
		t.Fatalf("duration = %q, want 1:35", post.Duration)
	}
	if post.Date != created.Format("02.01.2006") {
		t.Fatalf("display date = %q", post.Date)
	}
	if ts, ok := post.PublishedAt(); !ok || !ts.Equal(created) {
		t.Fatalf("timestamp round-trip failed: %v %v", ts, ok)
	}
}

func TestNormalizeTikTokFallbackUsername(t *testing.T) {
	post := NormalizeTikTok(TikTokRawPost{}, "queried")
	if post.OwnerUsername != "queried" {
		t.Fatalf("missing author must fall back to the queried username, got %q", post.OwnerUsername)
	}
}

func TestPublishedAtLayouts(t *testing.T) {
	tests := []struct {
		timestamp string
		date      string
		ok        bool
	}{
		{"2024-05-20T10:30:00Z", "", true},
		{"2024-05-20", "", true},
		{"", "20.05.2024", true},
		{"", "5/20/2024", true},
		{"garbage", "also garbage", false},
		{"", "", false},
	}
	for _, tt := range tests {
		p := Post{Timestamp: tt.timestamp, Date: tt.date}
		if _, ok := p.PublishedAt(); ok != tt.ok {
			t.Fatalf("PublishedAt(%q, %q) ok = %v, want %v", tt.timestamp, tt.date, ok, tt.ok)
		}
	}
}

func TestFlexIntSeparators(t *testing.T) {
	tests := []struct {
		raw  string
		want int
	}{
		{`"12.500"`, 12500},
		{`"1,250"`, 1250},
		{`"1.250.000"`, 1250000},
		{`"980"`, 980},
		{`14000`, 14000},
		{`14000.9`, 14000},
		{`null`, 0},
		{`"n/a"`, 0},
	}
	for _, tt := range tests {
		var f flexInt
		if err := json.Unmarshal([]byte(tt.raw), &f); err != nil {
			t.Fatalf("unmarshal %s: %v", tt.raw, err)
		}
		if int(f) != tt.want {
			t.Fatalf("flexInt(%s) = %d, want %d", tt.raw, int(f), tt.want)
		}
	}
}

func jsonInt(n int64) string {
	b, _ := json.Marshal(n)
	return string(b)
}
