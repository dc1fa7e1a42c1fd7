package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"social-search-platform/internal/billing"
)

type stubUsage struct {
	used     int
	recorded []string
}

func (s *stubUsage) Record(_ context.Context, _ string, requestType string) error {
	s.recorded = append(s.recorded, requestType)
	return nil
}

func (s *stubUsage) CountToday(_ context.Context, _ string) (int, error) {
	return s.used, nil
}

type stubSubscriptions struct {
	snapshot *billing.Snapshot
}

func (s *stubSubscriptions) SnapshotFor(_ context.Context, _ string) (*billing.Snapshot, error) {
	return s.snapshot, nil
}

func quotaTestRouter(usage *stubUsage, subs *stubSubscriptions, userID string, handlerStatus int) *gin.Engine {
	gin.SetMode(gin.TestMode)
	q := NewQuotaMiddleware(usage, subs, nil)

	router := gin.New()
	router.POST("/search",
		func(c *gin.Context) {
			if userID != "" {
				c.Set("user_id", userID)
			}
		},
		q.RequireSearchQuota("instagram_search"),
		func(c *gin.Context) {
			c.JSON(handlerStatus, gin.H{"status": "done"})
		})
	return router
}

func TestRequireSearchQuotaDeniesAtLimit(t *testing.T) {
	usage := &stubUsage{used: 3}
	router := quotaTestRouter(usage, &stubSubscriptions{}, "user-1", http.StatusOK)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/search", nil))

	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("free user at limit should get 429, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "search_limit_reached") {
		t.Errorf("429 body missing error code: %s", w.Body.String())
	}
	if len(usage.recorded) != 0 {
		t.Errorf("denied request must not consume quota, recorded %v", usage.recorded)
	}
}

func TestRequireSearchQuotaConsumesOnSuccess(t *testing.T) {
	usage := &stubUsage{used: 2}
	router := quotaTestRouter(usage, &stubSubscriptions{}, "user-1", http.StatusOK)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/search", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("user under limit should pass, got %d", w.Code)
	}
	if len(usage.recorded) != 1 || usage.recorded[0] != "instagram_search" {
		t.Errorf("successful search should record one usage event, got %v", usage.recorded)
	}
}

func TestRequireSearchQuotaSkipsConsumeOnFailure(t *testing.T) {
	usage := &stubUsage{used: 0}
	router := quotaTestRouter(usage, &stubSubscriptions{}, "user-1", http.StatusBadGateway)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/search", nil))

	if w.Code != http.StatusBadGateway {
		t.Fatalf("handler status should pass through, got %d", w.Code)
	}
	if len(usage.recorded) != 0 {
		t.Errorf("failed search must not consume quota, recorded %v", usage.recorded)
	}
}

func TestRequireSearchQuotaRejectsAnonymous(t *testing.T) {
	usage := &stubUsage{}
	router := quotaTestRouter(usage, &stubSubscriptions{}, "", http.StatusOK)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/search", nil))

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("missing user id should get 401, got %d", w.Code)
	}
	if len(usage.recorded) != 0 {
		t.Errorf("anonymous request must not consume quota, recorded %v", usage.recorded)
	}
}

func TestRequireSearchQuotaUnlimitedPlanNeverDenies(t *testing.T) {
	usage := &stubUsage{used: 10000}
	subs := &stubSubscriptions{snapshot: &billing.Snapshot{
		Subscribed: true,
		PriceID:    "price_1Qdt4NGX13ZRG2XiMWXryAm9",
	}}
	router := quotaTestRouter(usage, subs, "user-1", http.StatusOK)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/search", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("unlimited plan should never hit the limit, got %d", w.Code)
	}
}

func TestGetEntitlementDefaultsToFree(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())

	ent := GetEntitlement(c)
	if ent.Tier != billing.TierFree {
		t.Errorf("missing entitlement should default to free, got %s", ent.Tier)
	}
	if ent.BulkSearch {
		t.Error("free default must not include bulk search")
	}
}

func TestGetEntitlementReadsContext(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())

	want := billing.Resolve(&billing.Snapshot{
		Subscribed: true,
		PriceID:    "price_1QfKMGGX13ZRG2XiFyskXyJo",
	}, 4)
	c.Set("entitlement", want)

	got := GetEntitlement(c)
	if got.Tier != billing.TierPro {
		t.Errorf("expected pro tier from context, got %s", got.Tier)
	}
	if got.UsedSearches != 4 {
		t.Errorf("expected used count to carry through, got %d", got.UsedSearches)
	}
}

func TestGetEntitlementIgnoresWrongType(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Set("entitlement", "not an entitlement")

	ent := GetEntitlement(c)
	if ent.Tier != billing.TierFree {
		t.Errorf("bad context value should fall back to free, got %s", ent.Tier)
	}
}
