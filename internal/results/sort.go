package results

import (
	"sort"
	"strings"
)

// Direction is a sort direction. The empty value means unsorted.
type Direction string

const (
	DirectionNone Direction = ""
	DirectionAsc  Direction = "asc"
	DirectionDesc Direction = "desc"
)

// SortConfig names the active column and direction.
type SortConfig struct {
	Key       string    `json:"key" form:"sort_key"`
	Direction Direction `json:"direction" form:"sort_dir"`
}

// numericKeys are the columns compared numerically. Everything else is
// compared as a case-sensitive string, except the synthetic "date" key
// which compares by parsed publish time.
var numericKeys = map[string]func(Post) float64{
	"viewsCount":    func(p Post) float64 { return float64(p.ViewsCount) },
	"playsCount":    func(p Post) float64 { return float64(p.PlaysCount) },
	"likesCount":    func(p Post) float64 { return float64(p.LikesCount) },
	"commentsCount": func(p Post) float64 { return float64(p.CommentsCount) },
	"sharesCount":   func(p Post) float64 { return float64(p.SharesCount) },
	"engagement":    func(p Post) float64 { return p.Engagement },
}

func stringKey(p Post, key string) string {
	switch key {
	case "ownerUsername":
		return p.OwnerUsername
	case "caption":
		return p.Caption
	case "duration":
		return p.Duration
	case "url":
		return p.URL
	default:
		return ""
	}
}

// Sort returns a sorted copy of posts. Direction none returns the input
// order unchanged. The sort is stable so that repeated identical sorts and
// tie-breaking are reproducible in the dashboard.
func Sort(posts []Post, cfg SortConfig) []Post {
	out := make([]Post, len(posts))
	copy(out, posts)

	if cfg.Direction == DirectionNone || cfg.Key == "" {
		return out
	}

	less := lessFunc(cfg.Key)
	if cfg.Direction == DirectionDesc {
		inner := less
		less = func(a, b Post) bool { return inner(b, a) }
	}
	sort.SliceStable(out, func(i, j int) bool { return less(out[i], out[j]) })
	return out
}

func lessFunc(key string) func(a, b Post) bool {
	if num, ok := numericKeys[key]; ok {
		return func(a, b Post) bool { return num(a) < num(b) }
	}
	if key == "date" {
		return func(a, b Post) bool {
			at, aok := a.PublishedAt()
			bt, bok := b.PublishedAt()
			if !aok || !bok {
				// Undated posts sink to the end; ties keep input order.
				return aok && !bok
			}
			return at.Before(bt)
		}
	}
	return func(a, b Post) bool {
		return strings.Compare(stringKey(a, key), stringKey(b, key)) < 0
	}
}

// SortState is the column-click state machine behind the table headers.
// Clicking the active column advances asc -> desc -> none -> asc; clicking
// a different column activates it ascending and clears the previous one.
// Only one column is ever active.
type SortState struct {
	Key       string
	Direction Direction
}

// Click records a header click on the named column and returns the
// resulting config.
func (s *SortState) Click(key string) SortConfig {
	direction := DirectionAsc
	if s.Key == key {
		switch s.Direction {
		case DirectionAsc:
			direction = DirectionDesc
		case DirectionDesc:
			direction = DirectionNone
		}
	}
	s.Key = key
	s.Direction = direction
	return SortConfig{Key: s.Key, Direction: s.Direction}
}

// Config returns the current sort configuration.
func (s *SortState) Config() SortConfig {
	return SortConfig{Key: s.Key, Direction: s.Direction}
}
