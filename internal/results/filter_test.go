package results

import (
	"reflect"
	"testing"
)

func samplePosts() []Post {
	return []Post{
		{OwnerUsername: "alice", Caption: "first", Timestamp: "2024-01-10", ViewsCount: 1200, PlaysCount: 1300, LikesCount: 10, CommentsCount: 5},
		{OwnerUsername: "bob", Caption: "second", Timestamp: "2024-06-01", ViewsCount: 800, PlaysCount: 900, LikesCount: 50, CommentsCount: 20},
		{OwnerUsername: "carol", Caption: "third", Timestamp: "2024-03-15", ViewsCount: 5000, PlaysCount: 5100, LikesCount: 200, CommentsCount: 40},
	}
}

func TestFilterEmptyCriteriaIsIdentity(t *testing.T) {
	posts := samplePosts()
	got := Filter(posts, Criteria{})
	if !reflect.DeepEqual(got, posts) {
		t.Fatalf("empty criteria changed the result set: got %v", got)
	}
}

func TestFilterDoesNotMutateInput(t *testing.T) {
	posts := samplePosts()
	snapshot := samplePosts()
	Filter(posts, Criteria{MinViews: "1000"})
	if !reflect.DeepEqual(posts, snapshot) {
		t.Fatal("input slice was mutated")
	}
}

func TestFilterMinViewsWithThousandSeparator(t *testing.T) {
	// "1.000" is a localized one thousand, not 1.
	got := Filter(samplePosts(), Criteria{MinViews: "1.000"})
	if len(got) != 2 {
		t.Fatalf("expected 2 posts with >= 1000 views, got %d", len(got))
	}
	if got[0].OwnerUsername != "alice" || got[1].OwnerUsername != "carol" {
		t.Fatalf("unexpected posts or order: %v", got)
	}
}

func TestFilterNumericThresholds(t *testing.T) {
	tests := []struct {
		name     string
		criteria Criteria
		want     []string
	}{
		{"min likes", Criteria{MinLikes: "50"}, []string{"bob", "carol"}},
		{"min comments", Criteria{MinComments: "40"}, []string{"carol"}},
		{"min plays", Criteria{MinPlays: "1.000"}, []string{"alice", "carol"}},
		{"combined", Criteria{MinViews: "1.000", MinComments: "40"}, []string{"carol"}},
		{"unsatisfiable", Criteria{MinViews: "1.000.000"}, []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Filter(samplePosts(), tt.criteria)
			names := make([]string, 0, len(got))
			for _, p := range got {
				names = append(names, p.OwnerUsername)
			}
			if !reflect.DeepEqual(names, tt.want) {
				t.Fatalf("got %v, want %v", names, tt.want)
			}
		})
	}
}

func TestFilterMonotonicInThreshold(t *testing.T) {
	posts := samplePosts()
	thresholds := []string{"0", "500", "800", "1.200", "5.000", "10.000"}
	prev := len(posts) + 1
	for _, th := range thresholds {
		n := len(Filter(posts, Criteria{MinViews: th}))
		if n > prev {
			t.Fatalf("raising threshold to %s grew the result set: %d -> %d", th, prev, n)
		}
		prev = n
	}
}

func TestFilterDatePredicate(t *testing.T) {
	got := Filter(samplePosts(), Criteria{PostsNewerThan: "01.03.2024"})
	if len(got) != 2 {
		t.Fatalf("expected 2 posts after 01.03.2024, got %d", len(got))
	}
	for _, p := range got {
		if p.OwnerUsername == "alice" {
			t.Fatal("post from January survived a March cutoff")
		}
	}
}

func TestFilterDateIsStrictlyAfter(t *testing.T) {
	posts := []Post{{OwnerUsername: "edge", Timestamp: "2024-03-15"}}
	if got := Filter(posts, Criteria{PostsNewerThan: "15.03.2024"}); len(got) != 0 {
		t.Fatal("post dated exactly on the cutoff must be excluded")
	}
	if got := Filter(posts, Criteria{PostsNewerThan: "14.03.2024"}); len(got) != 1 {
		t.Fatal("post one day after the cutoff must be kept")
	}
}

func TestFilterUnparseableRecordDateFailsOnlyDatePredicate(t *testing.T) {
	posts := []Post{
		{OwnerUsername: "undated", Timestamp: "not a date", ViewsCount: 9000},
		{OwnerUsername: "dated", Timestamp: "2024-06-01", ViewsCount: 9000},
	}
	// With a date filter active the undated record is excluded.
	got := Filter(posts, Criteria{PostsNewerThan: "01.01.2024"})
	if len(got) != 1 || got[0].OwnerUsername != "dated" {
		t.Fatalf("expected only the dated post, got %v", got)
	}
	// Without one, the undated record still passes numeric predicates.
	got = Filter(posts, Criteria{MinViews: "1.000"})
	if len(got) != 2 {
		t.Fatalf("undated post must not be dropped by a views filter, got %v", got)
	}
}

func TestFilterUnparseableCriteriaAreIgnored(t *testing.T) {
	posts := samplePosts()
	got := Filter(posts, Criteria{PostsNewerThan: "yesterday", MinViews: "lots"})
	if !reflect.DeepEqual(got, posts) {
		t.Fatalf("malformed criteria must act as no-ops, got %v", got)
	}
}

func TestFilterEngagement(t *testing.T) {
	posts := []Post{{OwnerUsername: "a", ViewsCount: 1000, LikesCount: 40, CommentsCount: 10}}
	if r := posts[0].EngagementRate(); r != 5.0 {
		t.Fatalf("engagement rate = %v, want 5.0", r)
	}
	if got := Filter(posts, Criteria{MinEngagement: "5"}); len(got) != 1 {
		t.Fatal("engagement 5.0 must pass a threshold of 5")
	}
	if got := Filter(posts, Criteria{MinEngagement: "6"}); len(got) != 0 {
		t.Fatal("engagement 5.0 must fail a threshold of 6")
	}
}

func TestFilterEngagementZeroViews(t *testing.T) {
	// No views means no meaningful ratio; the post fails any positive
	// engagement threshold instead of passing on a division by zero.
	posts := []Post{{OwnerUsername: "ghost", ViewsCount: 0, LikesCount: 500, CommentsCount: 100}}
	if r := posts[0].EngagementRate(); r != 0 {
		t.Fatalf("zero-view engagement = %v, want 0", r)
	}
	if got := Filter(posts, Criteria{MinEngagement: "1"}); len(got) != 0 {
		t.Fatal("zero-view post must fail a positive engagement threshold")
	}
	if got := Filter(posts, Criteria{MinViews: "0"}); len(got) != 1 {
		t.Fatal("zero-view post must still pass unrelated predicates")
	}
}

func TestFilterEmptyInput(t *testing.T) {
	got := Filter(nil, Criteria{MinViews: "100"})
	if len(got) != 0 {
		t.Fatalf("expected empty result, got %v", got)
	}
}

func TestParseLocalizedInt(t *testing.T) {
	tests := []struct {
		in      string
		want    int
		wantErr bool
	}{
		{"1000", 1000, false},
		{"1.000", 1000, false},
		{"1.000.000", 1000000, false},
		{" 25 ", 25, false},
		{"0", 0, false},
		{"", 0, true},
		{"abc", 0, true},
	}
	for _, tt := range tests {
		got, err := ParseLocalizedInt(tt.in)
		if (err != nil) != tt.wantErr {
			t.Fatalf("ParseLocalizedInt(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
		}
		if err == nil && got != tt.want {
			t.Fatalf("ParseLocalizedInt(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestPaginate(t *testing.T) {
	posts := make([]Post, 60)
	for i := range posts {
		posts[i].ViewsCount = i
	}
	page1 := Paginate(posts, 1, 25)
	if len(page1) != 25 || page1[0].ViewsCount != 0 {
		t.Fatalf("unexpected first page: len=%d", len(page1))
	}
	page3 := Paginate(posts, 3, 25)
	if len(page3) != 10 || page3[0].ViewsCount != 50 {
		t.Fatalf("unexpected last page: len=%d", len(page3))
	}
	if got := Paginate(posts, 4, 25); len(got) != 0 {
		t.Fatalf("page past the end must be empty, got len=%d", len(got))
	}
	if got := Paginate(posts, 0, 0); len(got) != DefaultPageSize {
		t.Fatalf("defaults not applied, got len=%d", len(got))
	}
}
