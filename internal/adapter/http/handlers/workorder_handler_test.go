package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"go.uber.org/mock/gomock"

	"github.com/MayureshM/rpp-workorder/internal/adapter/http/handlers/mocks"
	"github.com/MayureshM/rpp-workorder/internal/usecase"
)

func TestWorkOrderHandler_GetSummary(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("missing key", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		uc := mocks.NewMockIFindWorkOrderUseCase(ctrl)
		h := NewWorkOrderHandler(uc)

		r := gin.New()
		r.GET("/workorders/summary", h.GetSummary)

		uc.EXPECT().FindByKey(gomock.Any(), "").Return(nil, usecase.ErrInvalidWorkOrderID)

		req := httptest.NewRequest(http.MethodGet, "/workorders/summary", nil)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		if w.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", w.Code)
		}
	})

	t.Run("not found", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		uc := mocks.NewMockIFindWorkOrderUseCase(ctrl)
		h := NewWorkOrderHandler(uc)

		r := gin.New()
		r.GET("/workorders/summary", h.GetSummary)

		uc.EXPECT().FindByKey(gomock.Any(), "1234567#AAA").Return(nil, usecase.ErrWorkOrderNotFound)

		req := httptest.NewRequest(http.MethodGet, "/workorders/summary?work_order_key=1234567%23AAA", nil)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		if w.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", w.Code)
		}
		var body map[string]any
		_ = json.Unmarshal(w.Body.Bytes(), &body)
		if body["code"] != "WORK_ORDER_NOT_FOUND" {
			t.Fatalf("unexpected body: %s", w.Body.String())
		}
	})

	t.Run("success", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		uc := mocks.NewMockIFindWorkOrderUseCase(ctrl)
		h := NewWorkOrderHandler(uc)

		r := gin.New()
		r.GET("/workorders/summary", h.GetSummary)

		record := map[string]any{
			"pk":                "workorder:1234567#AAA",
			"sk":                "workorder:1234567#AAA",
			"entity_type":       "summary",
			"sblu":              "1234567",
			"site_id":           "AAA",
			"vin":               "1FTFW1ET5DFC10312",
			"work_order_number": "987",
			"reconFee":          "125.50",
		}
		uc.EXPECT().FindByKey(gomock.Any(), "1234567#AAA").Return(record, nil)

		req := httptest.NewRequest(http.MethodGet, "/workorders/summary?work_order_key=1234567%23AAA", nil)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", w.Code)
		}
		var body map[string]any
		_ = json.Unmarshal(w.Body.Bytes(), &body)
		if body["work_order_key"] != "1234567#AAA" {
			t.Fatalf("unexpected body: %s", w.Body.String())
		}
		if body["vin"] != "1FTFW1ET5DFC10312" {
			t.Fatalf("unexpected body: %s", w.Body.String())
		}
	})
}

func TestWorkOrderHandler_Search(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("usecase error", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		uc := mocks.NewMockIFindWorkOrderUseCase(ctrl)
		h := NewWorkOrderHandler(uc)

		r := gin.New()
		r.GET("/workorders/search", h.Search)

		uc.EXPECT().FindByNumber(gomock.Any(), "987", "AAA").Return(nil, errors.New("boom"))

		req := httptest.NewRequest(http.MethodGet, "/workorders/search?work_order_number=987&site_id=AAA", nil)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		if w.Code != http.StatusInternalServerError {
			t.Fatalf("expected 500, got %d", w.Code)
		}
	})

	t.Run("success", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		uc := mocks.NewMockIFindWorkOrderUseCase(ctrl)
		h := NewWorkOrderHandler(uc)

		r := gin.New()
		r.GET("/workorders/search", h.Search)

		records := []map[string]any{
			{"pk": "workorder:1234567#AAA", "sk": "workorder:1234567#AAA", "entity_type": "summary", "work_order_number": "987"},
			{"pk": "workorder:1234567#AAA", "sk": "consignment", "entity_type": "consignment", "work_order_number": "987"},
		}
		uc.EXPECT().FindByNumber(gomock.Any(), "987", "AAA").Return(records, nil)

		req := httptest.NewRequest(http.MethodGet, "/workorders/search?work_order_number=987&site_id=AAA", nil)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", w.Code)
		}
		var body []map[string]any
		_ = json.Unmarshal(w.Body.Bytes(), &body)
		if len(body) != 2 || body[1]["entity_type"] != "consignment" {
			t.Fatalf("unexpected body: %s", w.Body.String())
		}
	})
}

func TestMapWorkOrderError(t *testing.T) {
	cases := []struct {
		err  error
		code int
	}{
		{usecase.ErrInvalidWorkOrderID, http.StatusBadRequest},
		{usecase.ErrWorkOrderNotFound, http.StatusNotFound},
		{errors.New("other"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		got := mapWorkOrderError(tc.err)
		if got.HTTPStatus != tc.code {
			t.Fatalf("for err %v expected %d got %d", tc.err, tc.code, got.HTTPStatus)
		}
	}
}
