package results

import (
	"reflect"
	"testing"
)

func sortFixture() []Post {
	return []Post{
		{OwnerUsername: "alice", Timestamp: "2024-06-01", ViewsCount: 800, Engagement: 8.75},
		{OwnerUsername: "bob", Timestamp: "2024-01-10", ViewsCount: 1200, Engagement: 1.25},
		{OwnerUsername: "carol", Timestamp: "2024-03-15", ViewsCount: 800, Engagement: 4.8},
	}
}

func TestSortNoneKeepsInputOrder(t *testing.T) {
	posts := sortFixture()
	got := Sort(posts, SortConfig{Key: "viewsCount", Direction: DirectionNone})
	if !reflect.DeepEqual(got, posts) {
		t.Fatalf("direction none must keep input order, got %v", got)
	}
}

func TestSortReturnsCopy(t *testing.T) {
	posts := sortFixture()
	snapshot := sortFixture()
	Sort(posts, SortConfig{Key: "viewsCount", Direction: DirectionDesc})
	if !reflect.DeepEqual(posts, snapshot) {
		t.Fatal("input slice was reordered")
	}
}

func TestSortNumericAscDesc(t *testing.T) {
	asc := Sort(sortFixture(), SortConfig{Key: "viewsCount", Direction: DirectionAsc})
	if asc[0].ViewsCount != 800 || asc[2].ViewsCount != 1200 {
		t.Fatalf("ascending views order wrong: %v", asc)
	}
	desc := Sort(sortFixture(), SortConfig{Key: "viewsCount", Direction: DirectionDesc})
	if desc[0].ViewsCount != 1200 {
		t.Fatalf("descending views order wrong: %v", desc)
	}
}

func TestSortIsStable(t *testing.T) {
	// alice and carol tie on views; their input order must survive both
	// directions.
	asc := Sort(sortFixture(), SortConfig{Key: "viewsCount", Direction: DirectionAsc})
	if asc[0].OwnerUsername != "alice" || asc[1].OwnerUsername != "carol" {
		t.Fatalf("tie order not preserved ascending: %v", asc)
	}
	desc := Sort(sortFixture(), SortConfig{Key: "viewsCount", Direction: DirectionDesc})
	if desc[1].OwnerUsername != "alice" || desc[2].OwnerUsername != "carol" {
		t.Fatalf("tie order not preserved descending: %v", desc)
	}
}

func TestSortByDate(t *testing.T) {
	got := Sort(sortFixture(), SortConfig{Key: "date", Direction: DirectionAsc})
	want := []string{"bob", "carol", "alice"}
	for i, name := range want {
		if got[i].OwnerUsername != name {
			t.Fatalf("date sort order wrong at %d: got %s, want %s", i, got[i].OwnerUsername, name)
		}
	}
}

func TestSortByDateUndatedSinkToEnd(t *testing.T) {
	posts := append(sortFixture(), Post{OwnerUsername: "undated", Timestamp: "???"})
	got := Sort(posts, SortConfig{Key: "date", Direction: DirectionAsc})
	if got[len(got)-1].OwnerUsername != "undated" {
		t.Fatalf("undated post must sort last, got %v", got)
	}
}

func TestSortByString(t *testing.T) {
	got := Sort(sortFixture(), SortConfig{Key: "ownerUsername", Direction: DirectionDesc})
	if got[0].OwnerUsername != "carol" || got[2].OwnerUsername != "alice" {
		t.Fatalf("string sort order wrong: %v", got)
	}
}

func TestSortByEngagement(t *testing.T) {
	got := Sort(sortFixture(), SortConfig{Key: "engagement", Direction: DirectionDesc})
	if got[0].Engagement != 8.75 || got[2].Engagement != 1.25 {
		t.Fatalf("engagement sort order wrong: %v", got)
	}
}

func TestSortStateCycle(t *testing.T) {
	var state SortState
	posts := sortFixture()

	first := state.Click("viewsCount")
	if first.Direction != DirectionAsc {
		t.Fatalf("first click = %q, want asc", first.Direction)
	}
	second := state.Click("viewsCount")
	if second.Direction != DirectionDesc {
		t.Fatalf("second click = %q, want desc", second.Direction)
	}
	third := state.Click("viewsCount")
	if third.Direction != DirectionNone {
		t.Fatalf("third click = %q, want none", third.Direction)
	}
	if got := Sort(posts, third); !reflect.DeepEqual(got, posts) {
		t.Fatal("third click must restore the pre-sort order")
	}
	fourth := state.Click("viewsCount")
	if fourth.Direction != DirectionAsc {
		t.Fatalf("cycle must wrap back to asc, got %q", fourth.Direction)
	}
}

func TestSortStateSwitchingColumnsResetsToAsc(t *testing.T) {
	var state SortState
	state.Click("viewsCount")
	state.Click("viewsCount") // viewsCount now desc

	cfg := state.Click("likesCount")
	if cfg.Key != "likesCount" || cfg.Direction != DirectionAsc {
		t.Fatalf("new column must start ascending, got %+v", cfg)
	}
	if state.Config().Key != "likesCount" {
		t.Fatal("previous column must no longer be active")
	}
}
