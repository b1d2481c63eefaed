package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/tendermatch/backend/config"
	"github.com/tendermatch/backend/internal/domain"
	"github.com/tendermatch/backend/internal/usecase"
)

// fixedStore serves one product for every classification code.
type fixedStore struct{}

func (fixedStore) FindByPrefix(ctx context.Context, codePrefix string, limit int) ([]domain.Product, error) {
	return []domain.Product{{
		Hash:               "hash-" + codePrefix,
		ClassificationCode: codePrefix,
		SampleTitle:        "Бумага офисная А4",
	}}, nil
}

func (s fixedStore) FindEnhanced(ctx context.Context, codePrefix string, weightedTerms map[string]float64, limit int) ([]domain.Product, error) {
	return s.FindByPrefix(ctx, codePrefix, limit)
}

func newTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)

	store := fixedStore{}
	resolver := usecase.NewHierarchicalResolver(store, nil, usecase.ResolverConfig{})
	orchestrator := usecase.NewMatchOrchestrator(
		resolver,
		usecase.NewTermExtractor(),
		usecase.NewAttributeMatcher(),
		store,
		nil,
		usecase.MatchingConfig{},
	)

	cfg := &config.Config{}
	cfg.Server.AllowedOrigins = []string{"*"}
	return SetupRouter(cfg, NewHandler(orchestrator))
}

func TestHealthCheck(t *testing.T) {
	router := newTestRouter()

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}

	var body map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid response body: %v", err)
	}
	if body["status"] != "healthy" {
		t.Errorf("status field = %q, want healthy", body["status"])
	}
}

func TestMatchTender(t *testing.T) {
	router := newTestRouter()

	validBody := `{
		"tenderInfo": {"tenderNumber": "T-2025-001", "tenderName": "Закупка канцтоваров"},
		"items": [{
			"id": 1,
			"name": "Бумага офисная",
			"okpd2Code": "17.12.14",
			"quantity": 10,
			"unitPrice": {"amount": 350, "currency": "RUB"},
			"characteristics": []
		}]
	}`

	t.Run("valid request returns matches", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/v1/tenders/match", strings.NewReader(validBody))
		req.Header.Set("Content-Type", "application/json")
		router.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("status = %d, want %d, body: %s", w.Code, http.StatusOK, w.Body.String())
		}

		var result domain.TenderMatchingResult
		if err := json.Unmarshal(w.Body.Bytes(), &result); err != nil {
			t.Fatalf("invalid response body: %v", err)
		}
		if result.TotalItems != 1 {
			t.Errorf("TotalItems = %d, want 1", result.TotalItems)
		}
		if result.TenderNumber != "T-2025-001" {
			t.Errorf("TenderNumber = %q, want T-2025-001", result.TenderNumber)
		}
		if len(result.ItemMatches) != 1 {
			t.Fatalf("ItemMatches = %d, want 1", len(result.ItemMatches))
		}
		if result.ItemMatches[0].ProcessingStatus != domain.StatusSuccess {
			t.Errorf("item status = %v, want success", result.ItemMatches[0].ProcessingStatus)
		}
	})

	t.Run("malformed json is a bad request", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/v1/tenders/match", strings.NewReader(`{"items": [`))
		req.Header.Set("Content-Type", "application/json")
		router.ServeHTTP(w, req)

		if w.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want %d", w.Code, http.StatusBadRequest)
		}
	})

	t.Run("tender without items is unprocessable", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/v1/tenders/match", strings.NewReader(`{"tenderInfo": {}, "items": []}`))
		req.Header.Set("Content-Type", "application/json")
		router.ServeHTTP(w, req)

		if w.Code != http.StatusUnprocessableEntity {
			t.Errorf("status = %d, want %d", w.Code, http.StatusUnprocessableEntity)
		}
	})

	t.Run("invalid semantic override is a bad request", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/v1/tenders/match?use_semantic=maybe", strings.NewReader(validBody))
		req.Header.Set("Content-Type", "application/json")
		router.ServeHTTP(w, req)

		if w.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want %d", w.Code, http.StatusBadRequest)
		}
	})

	t.Run("out-of-range semantic threshold is a bad request", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/v1/tenders/match?semantic_threshold=1.5", strings.NewReader(validBody))
		req.Header.Set("Content-Type", "application/json")
		router.ServeHTTP(w, req)

		if w.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want %d", w.Code, http.StatusBadRequest)
		}
	})
}
