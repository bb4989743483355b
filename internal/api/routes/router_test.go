package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"foodcatalog/database"
	"foodcatalog/internal/api/handlers/products"
	dedupapp "foodcatalog/internal/application/dedup"
	dedupdomain "foodcatalog/internal/domain/dedup"
	"foodcatalog/internal/domain/repositories"
	"foodcatalog/internal/infrastructure/persistence"
	"foodcatalog/normalization"
	"foodcatalog/normalization/algorithms"
	apperrors "foodcatalog/server/errors"
	"foodcatalog/server/middleware"
)

type testServer struct {
	engine *gin.Engine
	repo   repositories.ProductRepository
	ids    []int64
}

func strPtr(s string) *string { return &s }

func newTestServer(t *testing.T, opts RegisterOptions) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := database.NewProductDB(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	retry := normalization.DefaultRetryConfig()
	retry.InitialDelay = 0

	repo := persistence.NewProductRepository(db)
	useCase := dedupapp.NewUseCase(
		repo,
		algorithms.NewTextCanonicalizer(),
		dedupdomain.NewSimilarityClusterer(),
		dedupdomain.NewLedger(repo, retry),
		dedupdomain.NewLinker(repo, retry),
		dedupapp.Options{TextFields: []string{"name", "brands"}, Workers: 2},
		nil,
	)
	responder := middleware.NewErrorResponder(nil, apperrors.NewErrorStats(10))
	handler := products.NewHandler(useCase, normalization.NewExporter(), responder)

	engine := gin.New()
	engine.Use(middleware.RequestID())
	opts.SkipSwagger = true
	NewRouter(engine, handler, responder).RegisterAllRoutes(opts)

	s := &testServer{engine: engine, repo: repo}
	rows := []*repositories.Product{
		{Name: strPtr("Organic Peanut Butter 500g, Smooth"), Brands: strPtr("Calvé")},
		{Name: strPtr("organic peanut butter, smooth 350 g"), Brands: strPtr("Calvé")},
		{Name: strPtr("Organic Peanut-Butter (smooth)"), Brands: strPtr("CALVÉ")},
		{Name: strPtr("Halfvolle melk"), Brands: strPtr("Campina")},
	}
	for _, p := range rows {
		require.NoError(t, repo.Create(context.Background(), p))
		s.ids = append(s.ids, p.ID)
	}
	return s
}

func (s *testServer) do(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func productIDs(list []repositories.Product) []int64 {
	out := make([]int64, len(list))
	for i, p := range list {
		out[i] = p.ID
	}
	return out
}

func TestCatalogReadRoutes(t *testing.T) {
	s := newTestServer(t, RegisterOptions{})

	w := s.do(t, http.MethodGet, "/products/count", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, int64(4), decode[products.CountResponse](t, w).Count)

	w = s.do(t, http.MethodGet, "/products/latest", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, s.ids[3], decode[repositories.Product](t, w).ID)

	w = s.do(t, http.MethodGet, "/products?limit=2", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]repositories.Product](t, w), 2)

	w = s.do(t, http.MethodGet, fmt.Sprintf("/products/%d", s.ids[0]), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Organic Peanut Butter 500g, Smooth", *decode[repositories.Product](t, w).Name)

	w = s.do(t, http.MethodGet, "/products/incompleted", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]repositories.Product](t, w), 4)
}

func TestCatalogErrors(t *testing.T) {
	s := newTestServer(t, RegisterOptions{})

	tests := []struct {
		name     string
		method   string
		path     string
		wantCode int
	}{
		{"unknown product", http.MethodGet, "/products/9999", http.StatusNotFound},
		{"non numeric id", http.MethodGet, "/products/abc", http.StatusBadRequest},
		{"bad limit", http.MethodGet, "/products?limit=-1", http.StatusBadRequest},
		{"bad offset", http.MethodGet, "/products?offset=x", http.StatusBadRequest},
		{"bad cluster id", http.MethodGet, "/products/alike/1/x", http.StatusBadRequest},
		{"bad export format", http.MethodGet, "/products/incomplete/alike/export?format=pdf", http.StatusBadRequest},
		{"unknown link target", http.MethodPut, fmt.Sprintf("/products/link/%d/9999", s.ids[0]), http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := s.do(t, tt.method, tt.path, nil)
			assert.Equal(t, tt.wantCode, w.Code)
			body := decode[middleware.ErrorResponse](t, w)
			assert.True(t, body.Error)
			assert.NotEmpty(t, body.RequestID)
		})
	}
}

func TestReclusterAndReviewFlow(t *testing.T) {
	s := newTestServer(t, RegisterOptions{})

	w := s.do(t, http.MethodPost, "/products/recluster", nil)
	require.Equal(t, http.StatusOK, w.Code)
	report := decode[dedupapp.ReclusterReport](t, w)
	assert.Equal(t, 1, report.Clusters)
	assert.Len(t, report.Grown, 3)

	w = s.do(t, http.MethodGet, "/products/incomplete/alike", nil)
	require.Equal(t, http.StatusOK, w.Code)
	queue := decode[[]repositories.Product](t, w)
	assert.Equal(t, s.ids[:3], productIDs(queue))

	w = s.do(t, http.MethodGet, "/products/incomplete/unique", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []int64{s.ids[3]}, productIDs(decode[[]repositories.Product](t, w)))

	first := queue[0]
	w = s.do(t, http.MethodGet, fmt.Sprintf("/products/alike/%d/%d", first.ID, first.ClusterID), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.ElementsMatch(t, s.ids[1:3], productIDs(decode[[]repositories.Product](t, w)))

	// дубликат связывается, оставшийся проверяется
	w = s.do(t, http.MethodPut, fmt.Sprintf("/products/link/%d/%d", s.ids[1], s.ids[0]), nil)
	require.Equal(t, http.StatusOK, w.Code)
	link := decode[products.LinkResponse](t, w)
	assert.True(t, link.Success)
	require.NotNil(t, link.UpdatedID)
	assert.Equal(t, s.ids[1], *link.UpdatedID)

	w = s.do(t, http.MethodPut, fmt.Sprintf("/products/%d/verify", s.ids[2]), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, decode[repositories.Product](t, w).Active)

	w = s.do(t, http.MethodGet, "/products/incomplete/alike", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []int64{s.ids[0]}, productIDs(decode[[]repositories.Product](t, w)))
}

func TestLinkValidation(t *testing.T) {
	s := newTestServer(t, RegisterOptions{})

	w := s.do(t, http.MethodPut, fmt.Sprintf("/products/link/%d/%d", s.ids[0], s.ids[0]), nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, http.MethodPost, "/products/link", map[string]interface{}{"target_id": s.ids[0]})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestBatchLink(t *testing.T) {
	s := newTestServer(t, RegisterOptions{})

	w := s.do(t, http.MethodPost, "/products/link", products.BatchLinkRequest{
		TargetID:  s.ids[0],
		SourceIDs: []int64{s.ids[1], 9999, s.ids[2]},
	})
	require.Equal(t, http.StatusOK, w.Code)
	outcomes := decode[[]dedupdomain.LinkOutcome](t, w)
	require.Len(t, outcomes, 3)
	assert.True(t, outcomes[0].Success)
	assert.False(t, outcomes[1].Success)
	assert.NotEmpty(t, outcomes[1].Error)
	assert.True(t, outcomes[2].Success)
}

func TestUpdateClusterAcceptsTempClusterID(t *testing.T) {
	s := newTestServer(t, RegisterOptions{})

	w := s.do(t, http.MethodPut, "/products/update/cluster", []map[string]interface{}{
		{"id": s.ids[0], "temp_cluster_id": 7, "cluster_count": 2},
		{"id": s.ids[1], "cluster_id": 7, "cluster_count": 2},
		{"id": s.ids[3], "cluster_count": 1},
	})
	require.Equal(t, http.StatusOK, w.Code)
	summary := decode[dedupdomain.PassSummary](t, w)
	assert.Equal(t, 3, summary.Total)
	assert.Equal(t, 3, summary.Updated)

	got, err := s.repo.GetByID(context.Background(), s.ids[0])
	require.NoError(t, err)
	assert.Equal(t, 7, got.ClusterID)
	assert.Equal(t, 2, got.ClusterCount)

	got, err = s.repo.GetByID(context.Background(), s.ids[3])
	require.NoError(t, err)
	assert.Equal(t, repositories.NoCluster, got.ClusterID)

	w = s.do(t, http.MethodPut, "/products/update/cluster", []map[string]interface{}{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestExportReviewCSV(t *testing.T) {
	s := newTestServer(t, RegisterOptions{})
	require.Equal(t, http.StatusOK, s.do(t, http.MethodPost, "/products/recluster", nil).Code)

	w := s.do(t, http.MethodGet, "/products/incomplete/alike/export?format=csv", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), ".csv")

	lines := strings.Split(strings.TrimSpace(w.Body.String()), "\n")
	assert.Len(t, lines, 4)
	assert.True(t, strings.HasPrefix(lines[0], "ID,Name"))
}

func TestHealth(t *testing.T) {
	s := newTestServer(t, RegisterOptions{})
	s.do(t, http.MethodGet, "/products/9999", nil)

	w := s.do(t, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, w.Code)
	health := decode[products.HealthResponse](t, w)
	assert.Equal(t, "ok", health.Status)
	assert.Equal(t, int64(1), health.Errors.Total)
}

func TestReclusterRateLimited(t *testing.T) {
	s := newTestServer(t, RegisterOptions{ReclusterLimiter: rate.NewLimiter(rate.Limit(0.001), 1)})

	assert.Equal(t, http.StatusOK, s.do(t, http.MethodPost, "/products/recluster", nil).Code)
	w := s.do(t, http.MethodPost, "/products/recluster", nil)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.NotEmpty(t, w.Header().Get("Retry-After"))
}
