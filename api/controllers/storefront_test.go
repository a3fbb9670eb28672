package controllers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/storehubhq/storehub-backend/api/middleware"
	"github.com/storehubhq/storehub-backend/internal/tenants"
)

func TestStorefrontContext(t *testing.T) {
	tenant := sampleTenant()
	snap := &tenants.Snapshot{
		Tenant:   *tenant,
		CachedAt: time.Date(2024, 1, 15, 12, 0, 0, 0, time.UTC),
	}

	handler := StorefrontContext(nil)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/storefront/context", nil)
	req = req.WithContext(middleware.WithTenant(req.Context(), snap))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", rec.Code, rec.Body.String())
	}

	var envelope struct {
		Data struct {
			TenantID  string `json:"tenantId"`
			Subdomain string `json:"subdomain"`
			Status    string `json:"status"`
		} `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.TenantID != tenant.ID.String() {
		t.Fatalf("unexpected tenant id %q", envelope.Data.TenantID)
	}
	if envelope.Data.Subdomain != "acme" {
		t.Fatalf("unexpected subdomain %q", envelope.Data.Subdomain)
	}
	if envelope.Data.Status != "active" {
		t.Fatalf("unexpected status %q", envelope.Data.Status)
	}
}

func TestStorefrontContextWithoutTenant(t *testing.T) {
	handler := StorefrontContext(nil)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/storefront/context", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 got %d", rec.Code)
	}
}
