package server_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"

	"coupon-studio/internal/model"
	"coupon-studio/internal/repository"
	"coupon-studio/internal/server"
	"coupon-studio/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestRouter() *gin.Engine {
	logger := zap.NewNop()
	svc := service.NewCouponService(
		repository.NewMemoryCouponRepository(),
		repository.NewMemoryRedemptionRepository(),
		logger,
	)
	return server.New(svc, logger).Router()
}

func postJSON(t *testing.T, router *gin.Engine, path string, payload interface{}) *httptest.ResponseRecorder {
	t.Helper()
	body, err := json.Marshal(payload)
	assert.NoError(t, err)

	req, _ := http.NewRequest(http.MethodPost, path, bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func get(router *gin.Engine, path string) *httptest.ResponseRecorder {
	req, _ := http.NewRequest(http.MethodGet, path, nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func createPayload(code string) map[string]interface{} {
	return map[string]interface{}{
		"code":             code,
		"discount_type":    "percent",
		"value":            10,
		"min_order_amount": 0,
		"is_active":        true,
		"notes":            "",
	}
}

func TestHealth(t *testing.T) {
	router := newTestRouter()

	w := get(router, "/health")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestCreateCoupon(t *testing.T) {
	router := newTestRouter()

	w := postJSON(t, router, "/api/coupons", createPayload("welcome10"))
	assert.Equal(t, http.StatusCreated, w.Code)

	var resp model.CouponResponse
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "WELCOME10", resp.Code)
	assert.Equal(t, model.DiscountPercent, resp.Type)
	assert.Equal(t, model.StatusActive, resp.Status)
	assert.Nil(t, resp.MaxUses)
	assert.NotEmpty(t, resp.ID)
}

func TestCreateCoupon_Duplicate(t *testing.T) {
	router := newTestRouter()

	w := postJSON(t, router, "/api/coupons", createPayload("TWICE"))
	assert.Equal(t, http.StatusCreated, w.Code)

	w = postJSON(t, router, "/api/coupons", createPayload("twice"))
	assert.Equal(t, http.StatusConflict, w.Code)

	var resp map[string]string
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "DuplicateCode", resp["reason"])
}

func TestCreateCoupon_InvalidField(t *testing.T) {
	router := newTestRouter()

	payload := createPayload("BROKEN")
	payload["discount_type"] = "half-price"
	w := postJSON(t, router, "/api/coupons", payload)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	var resp map[string]string
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "InvalidField", resp["reason"])
}

func TestListCoupons(t *testing.T) {
	router := newTestRouter()

	w := get(router, "/api/coupons")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "[]", w.Body.String(), "empty store lists as a bare array")

	postJSON(t, router, "/api/coupons", createPayload("A1"))
	postJSON(t, router, "/api/coupons", createPayload("B2"))

	w = get(router, "/api/coupons")
	assert.Equal(t, http.StatusOK, w.Code)

	var list []model.CouponResponse
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	assert.Len(t, list, 2)
	assert.Equal(t, "A1", list[0].Code)
	assert.Equal(t, model.StatusActive, list[0].Status)
}

func TestApplyCoupon(t *testing.T) {
	router := newTestRouter()
	postJSON(t, router, "/api/coupons", createPayload("TEN"))

	w := postJSON(t, router, "/api/coupons/apply", map[string]interface{}{
		"code":         "ten",
		"order_amount": 100,
		"user_id":      "user_1",
	})
	assert.Equal(t, http.StatusOK, w.Code)

	var resp model.ApplyResult
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Valid)
	assert.Equal(t, "TEN", resp.Code)
	assert.Equal(t, 10.0, resp.DiscountAmount)
	assert.Equal(t, 90.0, resp.FinalAmount)
}

func TestApplyCoupon_RuleFailures(t *testing.T) {
	router := newTestRouter()

	inactive := createPayload("DARK")
	inactive["is_active"] = false
	postJSON(t, router, "/api/coupons", inactive)

	tests := []struct {
		name       string
		code       string
		wantReason string
	}{
		{"unknown code", "GHOST", "NotFound"},
		{"inactive coupon", "DARK", "Inactive"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := postJSON(t, router, "/api/coupons/apply", map[string]interface{}{
				"code":         tt.code,
				"order_amount": 100,
			})
			assert.Equal(t, http.StatusOK, w.Code)

			var resp map[string]interface{}
			assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Equal(t, false, resp["valid"])
			assert.Equal(t, tt.wantReason, resp["reason"])
		})
	}
}

func TestGetCouponDetails(t *testing.T) {
	router := newTestRouter()
	postJSON(t, router, "/api/coupons", createPayload("DETAIL"))
	postJSON(t, router, "/api/coupons/apply", map[string]interface{}{
		"code":         "DETAIL",
		"order_amount": 100,
		"user_id":      "user_9",
	})

	w := get(router, "/api/coupons/detail")
	assert.Equal(t, http.StatusOK, w.Code)

	var resp model.CouponDetailsResponse
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "DETAIL", resp.Code)
	assert.Equal(t, int64(1), resp.Uses)
	assert.Equal(t, []string{"user_9"}, resp.RedeemedBy)

	w = get(router, "/api/coupons/GHOST")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDeactivateCoupon(t *testing.T) {
	router := newTestRouter()
	postJSON(t, router, "/api/coupons", createPayload("KILL"))

	req, _ := http.NewRequest(http.MethodDelete, "/api/coupons/KILL", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	w = get(router, "/api/coupons/KILL")
	var resp model.CouponDetailsResponse
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, model.StatusInactive, resp.Status)

	req, _ = http.NewRequest(http.MethodDelete, "/api/coupons/GHOST", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

// Flash-sale scenario end to end: 50 concurrent apply requests against
// a coupon with 5 usage slots must yield exactly 5 successes and 45
// exhausted outcomes.
func TestApplyCoupon_FlashSale(t *testing.T) {
	router := newTestRouter()

	payload := createPayload("FLASH_SALE_2026")
	payload["max_uses"] = 5
	w := postJSON(t, router, "/api/coupons", payload)
	assert.Equal(t, http.StatusCreated, w.Code)

	concurrentRequests := 50
	var successCount, exhaustedCount, otherCount int64
	var wg sync.WaitGroup

	for i := 0; i < concurrentRequests; i++ {
		wg.Add(1)
		go func(userID int) {
			defer wg.Done()

			body, _ := json.Marshal(map[string]interface{}{
				"code":         "FLASH_SALE_2026",
				"order_amount": 100,
				"user_id":      fmt.Sprintf("user_%d", userID),
			})
			req, _ := http.NewRequest(http.MethodPost, "/api/coupons/apply", bytes.NewBuffer(body))
			req.Header.Set("Content-Type", "application/json")
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			var resp map[string]interface{}
			if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
				atomic.AddInt64(&otherCount, 1)
				return
			}
			switch {
			case rec.Code == http.StatusOK && resp["valid"] == true:
				atomic.AddInt64(&successCount, 1)
			case rec.Code == http.StatusOK && resp["reason"] == "Exhausted":
				atomic.AddInt64(&exhaustedCount, 1)
			default:
				atomic.AddInt64(&otherCount, 1)
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, int64(5), successCount)
	assert.Equal(t, int64(45), exhaustedCount)
	assert.Equal(t, int64(0), otherCount)

	w = get(router, "/api/coupons/FLASH_SALE_2026")
	var details model.CouponDetailsResponse
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &details))
	assert.Equal(t, int64(5), details.Uses)
	assert.Len(t, details.RedeemedBy, 5)
}
