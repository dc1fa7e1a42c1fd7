package services

import (
	"context"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
)

func TestMetaContent(t *testing.T) {
	page := `<html><head>
		<meta property="og:title" content="A post"/>
		<meta property="og:video:secure_url" content="https://cdn.example.com/v.mp4"/>
		<meta property="og:image" content="https://cdn.example.com/i.jpg"/>
	</head><body></body></html>`

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page))
	if err != nil {
		t.Fatalf("failed to parse test page: %v", err)
	}

	if got := metaContent(doc, "og:title"); got != "A post" {
		t.Errorf("og:title = %q", got)
	}
	if got := metaContent(doc, "og:video", "og:video:secure_url"); got != "https://cdn.example.com/v.mp4" {
		t.Errorf("expected fallback property to match, got %q", got)
	}
	if got := metaContent(doc, "og:missing"); got != "" {
		t.Errorf("missing property should be empty, got %q", got)
	}
}

func TestResolveRejectsUnknownHost(t *testing.T) {
	svc := NewMediaService()

	if _, err := svc.Resolve(context.Background(), "https://evil.example.com/post"); err == nil {
		t.Error("expected rejection for non-allowlisted host")
	}
	if _, err := svc.Resolve(context.Background(), "ftp://www.instagram.com/p/abc"); err == nil {
		t.Error("expected rejection for non-http scheme")
	}
	if _, err := svc.Resolve(context.Background(), "://bad"); err == nil {
		t.Error("expected rejection for unparseable url")
	}
}
