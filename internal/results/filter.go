package results

import (
	"strconv"
	"strings"
	"time"
)

// Criteria holds the user-supplied filter thresholds. Every field is a raw
// string straight from the dashboard inputs; an empty field is a no-op and
// does not constrain results.
type Criteria struct {
	PostsNewerThan string `json:"postsNewerThan" form:"newer_than"`
	MinViews       string `json:"minViews" form:"min_views"`
	MinPlays       string `json:"minPlays" form:"min_plays"`
	MinLikes       string `json:"minLikes" form:"min_likes"`
	MinComments    string `json:"minComments" form:"min_comments"`
	MinEngagement  string `json:"minEngagement" form:"min_engagement"`
}

// IsZero reports whether no criteria field is set.
func (c Criteria) IsZero() bool {
	return c.PostsNewerThan == "" && c.MinViews == "" && c.MinPlays == "" &&
		c.MinLikes == "" && c.MinComments == "" && c.MinEngagement == ""
}

// ParseLocalizedInt parses a numeric threshold typed with locale thousand
// separators, so "1.000" means one thousand. Periods are stripped before
// integer parsing.
func ParseLocalizedInt(s string) (int, error) {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, ".", "")
	return strconv.Atoi(s)
}

// Filter returns the posts satisfying every active criterion, in input
// order. It is pure: the input slice and its records are never modified,
// and a malformed field inside one record only fails the predicate that
// reads it. A criterion whose own value does not parse is ignored, matching
// how an unusable dashboard input simply stops constraining results.
func Filter(posts []Post, c Criteria) []Post {
	var (
		filterDate    time.Time
		dateActive    bool
		minViews      = threshold(c.MinViews)
		minPlays      = threshold(c.MinPlays)
		minLikes      = threshold(c.MinLikes)
		minComments   = threshold(c.MinComments)
		minEngagement = threshold(c.MinEngagement)
	)
	if c.PostsNewerThan != "" {
		if d, err := time.Parse(displayDateLayout, c.PostsNewerThan); err == nil {
			filterDate, dateActive = d, true
		}
	}

	out := make([]Post, 0, len(posts))
	for _, post := range posts {
		if dateActive {
			// A post whose date cannot be parsed fails the date
			// predicate instead of aborting the pass.
			postDate, ok := post.PublishedAt()
			if !ok || !postDate.After(filterDate) {
				continue
			}
		}
		if minViews != nil && post.ViewsCount < *minViews {
			continue
		}
		if minPlays != nil && post.PlaysCount < *minPlays {
			continue
		}
		if minLikes != nil && post.LikesCount < *minLikes {
			continue
		}
		if minComments != nil && post.CommentsCount < *minComments {
			continue
		}
		if minEngagement != nil && post.EngagementRate() < float64(*minEngagement) {
			continue
		}
		out = append(out, post)
	}
	return out
}

// threshold parses an optional numeric criterion. nil means inactive,
// either because the field is empty or because it does not parse.
func threshold(s string) *int {
	if s == "" {
		return nil
	}
	n, err := ParseLocalizedInt(s)
	if err != nil {
		return nil
	}
	return &n
}
