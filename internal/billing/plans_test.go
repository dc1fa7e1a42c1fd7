package billing

import "testing"

func TestResolveNilSnapshotIsFreeTier(t *testing.T) {
	for _, usage := range []int{0, 3, 10000} {
		ent := Resolve(nil, usage)
		if ent.Tier != TierFree {
			t.Fatalf("nil snapshot resolved to %q", ent.Tier)
		}
		if ent.MaxResults != 5 || ent.MaxSearches != 3 || ent.BulkSearch {
			t.Fatalf("free limits wrong: %+v", ent)
		}
	}
}

func TestResolveUnknownPriceFallsBackToFree(t *testing.T) {
	ent := Resolve(&Snapshot{Subscribed: true, PriceID: "unrecognized-id"}, 0)
	if ent.Tier != TierFree || ent.MaxResults != 5 || ent.MaxSearches != 3 || ent.BulkSearch {
		t.Fatalf("unknown price must fail safe to free limits: %+v", ent)
	}
}

func TestResolveInactiveSubscriptionIsFree(t *testing.T) {
	// A known price on a non-active subscription grants nothing.
	ent := Resolve(&Snapshot{Subscribed: false, PriceID: "price_1Qdt4NGX13ZRG2XiMWXryAm9", Canceled: true}, 0)
	if ent.Tier != TierFree {
		t.Fatalf("inactive subscription resolved to %q", ent.Tier)
	}
	if !ent.Canceled {
		t.Fatal("canceled flag must be carried through")
	}
}

func TestResolveTiers(t *testing.T) {
	tests := []struct {
		priceID     string
		tier        Tier
		maxResults  int
		maxSearches int
		bulk        bool
	}{
		{"price_1QfKMGGX13ZRG2XiFyskXyJo", TierPro, 20, 25, true},
		{"price_1QfKMYGX13ZRG2XioPYKCe7h", TierPro, 20, 25, true},
		{"price_1Qdt4NGX13ZRG2XiMWXryAm9", TierSteroids, 50, Unlimited, true},
		{"price_1Qdt5HGX13ZRG2XiUW80k3Fk", TierSteroids, 50, Unlimited, true},
	}
	for _, tt := range tests {
		ent := Resolve(&Snapshot{Subscribed: true, PriceID: tt.priceID}, 0)
		if ent.Tier != tt.tier || ent.MaxResults != tt.maxResults ||
			ent.MaxSearches != tt.maxSearches || ent.BulkSearch != tt.bulk {
			t.Fatalf("price %s resolved wrong: %+v", tt.priceID, ent)
		}
	}
}

func TestHasReachedLimit(t *testing.T) {
	if ent := Resolve(nil, 2); ent.HasReachedLimit {
		t.Fatal("free tier with usage 2 must not be at the limit")
	}
	if ent := Resolve(nil, 3); !ent.HasReachedLimit {
		t.Fatal("free tier with usage 3 must be at the limit")
	}
	steroids := &Snapshot{Subscribed: true, PriceID: "price_1Qdt4NGX13ZRG2XiMWXryAm9"}
	if ent := Resolve(steroids, 10000); ent.HasReachedLimit {
		t.Fatal("unlimited tier must never reach the limit")
	}
}

func TestRemainingSearches(t *testing.T) {
	pro := &Snapshot{Subscribed: true, PriceID: "price_1QfKMGGX13ZRG2XiFyskXyJo"}
	if got := Resolve(pro, 10).RemainingSearches(); got != 15 {
		t.Fatalf("remaining = %d, want 15", got)
	}
	if got := Resolve(pro, 30).RemainingSearches(); got != 0 {
		t.Fatalf("overrun remaining = %d, want 0", got)
	}
	steroids := &Snapshot{Subscribed: true, PriceID: "price_1Qdt4NGX13ZRG2XiMWXryAm9"}
	if got := Resolve(steroids, 999).RemainingSearches(); got != Unlimited {
		t.Fatalf("unlimited remaining = %d", got)
	}
}

func TestUsagePercentage(t *testing.T) {
	if got := Resolve(nil, 0).UsagePercentage(); got != 0 {
		t.Fatalf("unused percentage = %v", got)
	}
	pro := &Snapshot{Subscribed: true, PriceID: "price_1QfKMGGX13ZRG2XiFyskXyJo"}
	if got := Resolve(pro, 5).UsagePercentage(); got != 20 {
		t.Fatalf("percentage = %v, want 20", got)
	}
	steroids := &Snapshot{Subscribed: true, PriceID: "price_1Qdt4NGX13ZRG2XiMWXryAm9"}
	if got := Resolve(steroids, 500).UsagePercentage(); got != 0 {
		t.Fatalf("unlimited percentage = %v, want 0", got)
	}
}

func TestResolveIsDeterministic(t *testing.T) {
	snap := &Snapshot{Subscribed: true, PriceID: "price_1QfKMGGX13ZRG2XiFyskXyJo"}
	a := Resolve(snap, 7)
	b := Resolve(snap, 7)
	if a != b {
		t.Fatalf("resolve not deterministic: %+v vs %+v", a, b)
	}
}

func TestNegativeUsageClamped(t *testing.T) {
	if ent := Resolve(nil, -5); ent.UsedSearches != 0 || ent.HasReachedLimit {
		t.Fatalf("negative usage must clamp to zero: %+v", ent)
	}
}
