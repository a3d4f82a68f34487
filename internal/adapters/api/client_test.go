package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kamal-hamza/assetctl/internal/core/domain"
)

type staticToken string

func (s staticToken) Token() (string, error) { return string(s), nil }

type fakeBackend struct {
	router   *mux.Router
	server   *httptest.Server
	lastAuth string
	lastReq  string
	lastBody map[string]any
}

func newFakeBackend(t *testing.T) *fakeBackend {
	t.Helper()
	fb := &fakeBackend{router: mux.NewRouter()}
	fb.router.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fb.lastAuth = r.Header.Get("Authorization")
			fb.lastReq = r.Header.Get("X-Request-ID")
			fb.lastBody = nil
			if r.Body != nil {
				_ = json.NewDecoder(r.Body).Decode(&fb.lastBody)
			}
			next.ServeHTTP(w, r)
		})
	})
	fb.server = httptest.NewServer(fb.router)
	t.Cleanup(fb.server.Close)
	return fb
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func TestClient_ListAssetsUnwrapsEnvelope(t *testing.T) {
	fb := newFakeBackend(t)
	fb.router.HandleFunc("/api/assets", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"data": []map[string]any{
				{"_id": "a1", "assetId": "AST-1", "name": "Rifle A", "status": "AVAILABLE"},
				{"_id": "a2", "assetId": "AST-2", "name": "Truck", "status": "ASSIGNED"},
			},
		})
	}).Methods(http.MethodGet)

	c := NewClient(fb.server.URL+"/api/", staticToken("tok"))
	assets, err := c.ListAssets(context.Background())
	require.NoError(t, err)
	require.Len(t, assets, 2)
	assert.Equal(t, "Rifle A", assets[0].Name)
	assert.Equal(t, domain.AssetAssigned, assets[1].Status)
	assert.Equal(t, "Bearer tok", fb.lastAuth)
	assert.NotEmpty(t, fb.lastReq)
}

func TestClient_ListAssetsKeepsMixedSpecifications(t *testing.T) {
	fb := newFakeBackend(t)
	fb.router.HandleFunc("/api/assets", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":[
			{"_id":"a1","name":"Vest","specifications":{"weightKg":3.4,"armored":true,"model":"M4"}},
			{"_id":"a2","name":"Truck"}
		]}`))
	}).Methods(http.MethodGet)

	c := NewClient(fb.server.URL+"/api/", staticToken("tok"))
	assets, err := c.ListAssets(context.Background())
	require.NoError(t, err)
	require.Len(t, assets, 2)
	assert.Equal(t, 3.4, assets[0].Specifications["weightKg"])
	assert.Equal(t, true, assets[0].Specifications["armored"])
	assert.Equal(t, "M4", assets[0].Specifications["model"])
	assert.Empty(t, assets[1].Specifications)
}

func TestClient_MissingTokenFailsBeforeNetwork(t *testing.T) {
	fb := newFakeBackend(t)
	hit := false
	fb.router.HandleFunc("/api/transfers", func(w http.ResponseWriter, r *http.Request) {
		hit = true
	})

	c := NewClient(fb.server.URL+"/api", staticToken(""))
	_, err := c.ListTransfers(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNoToken))
	assert.Equal(t, "no authentication token found", err.Error())
	assert.False(t, hit, "backend must not be contacted")

	var apiErr *Error
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, KindNoCredentials, apiErr.Kind)
}

func TestClient_BackendErrorMessage(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     any
		expected string
	}{
		{"message field", http.StatusBadRequest, map[string]string{"message": "Asset ID already exists"}, "Asset ID already exists"},
		{"error field", http.StatusForbidden, map[string]string{"error": "Access denied"}, "Access denied"},
		{"no body", http.StatusNotFound, nil, "Not Found"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fb := newFakeBackend(t)
			fb.router.HandleFunc("/api/assets", func(w http.ResponseWriter, r *http.Request) {
				if tt.body == nil {
					w.WriteHeader(tt.status)
					return
				}
				writeJSON(w, tt.status, tt.body)
			}).Methods(http.MethodPost)

			c := NewClient(fb.server.URL+"/api", staticToken("tok"))
			err := c.CreateAsset(context.Background(), domain.AssetRequest{Name: "x"})
			require.Error(t, err)

			var apiErr *Error
			require.True(t, errors.As(err, &apiErr))
			assert.Equal(t, KindBackend, apiErr.Kind)
			assert.Equal(t, tt.status, apiErr.Status)
			assert.Equal(t, tt.expected, err.Error())
			assert.NotEmpty(t, apiErr.RequestID)
		})
	}
}

func TestClient_StatusOnlyUpdates(t *testing.T) {
	fb := newFakeBackend(t)
	var gotPath string
	fb.router.HandleFunc("/api/{collection}/{id}/status", func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		writeJSON(w, http.StatusOK, map[string]any{"data": map[string]any{}})
	}).Methods(http.MethodPatch)

	c := NewClient(fb.server.URL+"/api", staticToken("tok"))

	require.NoError(t, c.UpdateTransferStatus(context.Background(), "t1", "approved"))
	assert.Equal(t, "/api/transfers/t1/status", gotPath)
	assert.Equal(t, map[string]any{"status": "approved"}, fb.lastBody)

	require.NoError(t, c.UpdateAssignmentStatus(context.Background(), "g7", "completed"))
	assert.Equal(t, "/api/assignments/g7/status", gotPath)
	assert.Equal(t, map[string]any{"status": "completed"}, fb.lastBody)
}

func TestClient_MetricsKeepsDistributionOrder(t *testing.T) {
	fb := newFakeBackend(t)
	fb.router.HandleFunc("/api/assets/metrics", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":{"totalAssets":7,"activeAssets":4,"pendingTransfers":2,"activeAssignments":1,` +
			`"statusDistribution":{"MAINTENANCE":1,"AVAILABLE":4,"ASSIGNED":2}}}`))
	}).Methods(http.MethodGet)

	c := NewClient(fb.server.URL+"/api", staticToken("tok"))
	m, err := c.Metrics(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 7, m.TotalAssets)
	assert.Equal(t, domain.StatusCounts{
		{Status: "MAINTENANCE", Count: 1},
		{Status: "AVAILABLE", Count: 4},
		{Status: "ASSIGNED", Count: 2},
	}, m.StatusDistribution)
}

func TestClient_LoginIsPublic(t *testing.T) {
	tests := []struct {
		name string
		body map[string]any
	}{
		{"top level", map[string]any{"token": "jwt", "user": map[string]any{"_id": "u1", "fullName": "Ada"}}},
		{"enveloped", map[string]any{"data": map[string]any{"token": "jwt", "user": map[string]any{"_id": "u1", "fullName": "Ada"}}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fb := newFakeBackend(t)
			fb.router.HandleFunc("/api/auth/login", func(w http.ResponseWriter, r *http.Request) {
				writeJSON(w, http.StatusOK, tt.body)
			}).Methods(http.MethodPost)

			c := NewClient(fb.server.URL+"/api", nil)
			res, err := c.Login(context.Background(), domain.Credentials{Email: "ada@example.com", Password: "pw"})
			require.NoError(t, err)
			assert.Equal(t, "jwt", res.Token)
			assert.Equal(t, "Ada", res.User.FullName)
			assert.Empty(t, fb.lastAuth)
			assert.Equal(t, "ada@example.com", fb.lastBody["email"])
		})
	}
}

func TestClient_TransportError(t *testing.T) {
	fb := newFakeBackend(t)
	url := fb.server.URL
	fb.server.Close()

	c := NewClient(url+"/api", staticToken("tok"))
	_, err := c.ListUsers(context.Background())
	require.Error(t, err)

	var apiErr *Error
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, KindTransport, apiErr.Kind)
}

func TestClient_RecordsMetrics(t *testing.T) {
	fb := newFakeBackend(t)
	fb.router.HandleFunc("/api/assets/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}).Methods(http.MethodDelete)

	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)
	c := NewClient(fb.server.URL+"/api", staticToken("tok"), WithMetrics(m))

	require.NoError(t, c.DeleteAsset(context.Background(), "a1"))
	require.NoError(t, c.DeleteAsset(context.Background(), "a2"))

	assert.Equal(t, 2.0, testutil.ToFloat64(m.requests.WithLabelValues(http.MethodDelete, "/assets/{id}", "ok")))
}
