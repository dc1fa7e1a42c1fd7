package billing

// Tier is a named subscription level. The billing provider's opaque price
// identifiers are mapped onto tiers here so the rest of the service never
// compares price strings.
type Tier string

const (
	TierFree     Tier = "free"
	TierPro      Tier = "pro"
	TierSteroids Tier = "steroids"
)

// Unlimited marks a searches-per-period limit with no cap. Enforcement
// code must treat it as "never exhausted".
const Unlimited = 0

// Limits are the numeric entitlements of one tier.
type Limits struct {
	MaxResultsPerSearch int
	MaxSearchesPerDay   int // Unlimited (0) means no cap
	BulkSearch          bool
}

// Snapshot is the externally-fetched subscription state for one session.
// A nil snapshot means the caller is unauthenticated or the subscription
// check failed; both degrade to the free tier.
type Snapshot struct {
	Subscribed bool   `json:"subscribed"`
	PriceID    string `json:"priceId"`
	Canceled   bool   `json:"canceled"`
	MaxClicks  int    `json:"maxClicks"`
}

// Entitlement is the resolved view of what the current session may do.
type Entitlement struct {
	Tier            Tier   `json:"tier"`
	PlanName        string `json:"plan_name"`
	Subscribed      bool   `json:"subscribed"`
	Canceled        bool   `json:"canceled"`
	MaxResults      int    `json:"max_results_per_search"`
	MaxSearches     int    `json:"max_searches_per_day"` // 0 = unlimited
	BulkSearch      bool   `json:"bulk_search"`
	UsedSearches    int    `json:"used_searches"`
	HasReachedLimit bool   `json:"has_reached_limit"`
}

// priceTiers maps the billing provider's price identifiers to tiers.
// Monthly and annual prices of a plan share a tier. Anything not listed
// resolves to the free tier; an unrecognized identifier must never grant
// access.
var priceTiers = map[string]Tier{
	"price_1QfKMGGX13ZRG2XiFyskXyJo": TierPro,
	"price_1QfKMYGX13ZRG2XioPYKCe7h": TierPro,
	"price_1Qdt4NGX13ZRG2XiMWXryAm9": TierSteroids,
	"price_1Qdt5HGX13ZRG2XiUW80k3Fk": TierSteroids,
}

var tierLimits = map[Tier]Limits{
	TierFree:     {MaxResultsPerSearch: 5, MaxSearchesPerDay: 3, BulkSearch: false},
	TierPro:      {MaxResultsPerSearch: 20, MaxSearchesPerDay: 25, BulkSearch: true},
	TierSteroids: {MaxResultsPerSearch: 50, MaxSearchesPerDay: Unlimited, BulkSearch: true},
}

var planNames = map[Tier]string{
	TierFree:     "Free Plan",
	TierPro:      "Creator Pro",
	TierSteroids: "Creator on Steroids",
}

// TierForPrice returns the tier for a price identifier, falling back to
// the free tier for unknown identifiers.
func TierForPrice(priceID string) Tier {
	if tier, ok := priceTiers[priceID]; ok {
		return tier
	}
	return TierFree
}

// LimitsFor returns the limits of a tier, falling back to the free tier
// for unknown values.
func LimitsFor(tier Tier) Limits {
	if l, ok := tierLimits[tier]; ok {
		return l
	}
	return tierLimits[TierFree]
}

// PlanName returns the display name of a tier.
func PlanName(tier Tier) string {
	if name, ok := planNames[tier]; ok {
		return name
	}
	return planNames[TierFree]
}

// Resolve computes the entitlement for a subscription snapshot and the
// usage recorded so far in the current period. It is pure and
// deterministic; the snapshot is supplied already fetched and no network
// calls happen here. An inactive or unrecognized subscription resolves to
// free-tier limits.
func Resolve(snapshot *Snapshot, usedSearches int) Entitlement {
	tier := TierFree
	var subscribed, canceled bool
	if snapshot != nil {
		subscribed = snapshot.Subscribed
		canceled = snapshot.Canceled
		if snapshot.Subscribed {
			tier = TierForPrice(snapshot.PriceID)
		}
	}
	if usedSearches < 0 {
		usedSearches = 0
	}

	limits := LimitsFor(tier)
	return Entitlement{
		Tier:            tier,
		PlanName:        PlanName(tier),
		Subscribed:      subscribed,
		Canceled:        canceled,
		MaxResults:      limits.MaxResultsPerSearch,
		MaxSearches:     limits.MaxSearchesPerDay,
		BulkSearch:      limits.BulkSearch,
		UsedSearches:    usedSearches,
		HasReachedLimit: reachedLimit(usedSearches, limits.MaxSearchesPerDay),
	}
}

// RemainingSearches returns how many searches the session may still run,
// or Unlimited for uncapped tiers.
func (e Entitlement) RemainingSearches() int {
	if e.MaxSearches == Unlimited {
		return Unlimited
	}
	if remaining := e.MaxSearches - e.UsedSearches; remaining > 0 {
		return remaining
	}
	return 0
}

// UsagePercentage reports used searches as a share of the cap, for the
// dashboard's usage meter. Uncapped tiers always report zero.
func (e Entitlement) UsagePercentage() float64 {
	if e.MaxSearches == Unlimited {
		return 0
	}
	return float64(e.UsedSearches) / float64(e.MaxSearches) * 100
}

func reachedLimit(used, max int) bool {
	if max == Unlimited {
		return false
	}
	return used >= max
}
