package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/visionforge/visionforge-backend/internal/platform/logger"
	"github.com/visionforge/visionforge-backend/internal/types"
)

// stubReleaseService records registrations and blocks the pipeline until the
// test releases it, so the handler's synchronous behavior can be observed in
// isolation.
type stubReleaseService struct {
	mu         sync.Mutex
	registered map[uuid.UUID]bool
	block      chan struct{}
}

func newStubReleaseService() *stubReleaseService {
	return &stubReleaseService{
		registered: make(map[uuid.UUID]bool),
		block:      make(chan struct{}),
	}
}

func (s *stubReleaseService) RegisterRelease(releaseID uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.registered[releaseID] = true
}

func (s *stubReleaseService) GenerateRelease(ctx context.Context, releaseID uuid.UUID, cfg types.ReleaseConfig, version string) error {
	<-s.block
	return nil
}

func (s *stubReleaseService) GetProgress(releaseID uuid.UUID) (types.ReleaseProgress, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.registered[releaseID] {
		return types.ReleaseProgress{}, false
	}
	return types.ReleaseProgress{ReleaseID: releaseID, Status: types.ReleaseStatusPending}, true
}

func (s *stubReleaseService) GetHistory(ctx context.Context, projectID uuid.UUID, limit int) ([]*types.Release, error) {
	return nil, nil
}

func (s *stubReleaseService) CleanupFailedRelease(ctx context.Context, releaseID uuid.UUID, projectID uuid.UUID) {
}

func newTestRouter(stub *stubReleaseService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewReleaseHandler(stub, logger.NewNop())
	router := gin.New()
	router.POST("/api/projects/:projectID/releases", h.GenerateRelease)
	router.GET("/api/releases/:id/progress", h.GetProgress)
	return router
}

func TestGenerateReleaseIDPollableImmediately(t *testing.T) {
	stub := newStubReleaseService()
	defer close(stub.block)
	router := newTestRouter(stub)

	req := httptest.NewRequest(http.MethodPost,
		"/api/projects/"+uuid.New().String()+"/releases", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusAccepted {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	var resp struct {
		ReleaseID string `json:"release_id"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}

	// The pipeline goroutine is still blocked; the id must already resolve.
	poll := httptest.NewRequest(http.MethodGet, "/api/releases/"+resp.ReleaseID+"/progress", nil)
	pw := httptest.NewRecorder()
	router.ServeHTTP(pw, poll)
	if pw.Code != http.StatusOK {
		t.Fatalf("progress status = %d, body = %s", pw.Code, pw.Body.String())
	}
}

func TestGenerateReleaseRejectsBadProjectID(t *testing.T) {
	stub := newStubReleaseService()
	defer close(stub.block)
	router := newTestRouter(stub)

	req := httptest.NewRequest(http.MethodPost, "/api/projects/not-a-uuid/releases", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", w.Code)
	}
}

func TestGetProgressUnknownID(t *testing.T) {
	stub := newStubReleaseService()
	defer close(stub.block)
	router := newTestRouter(stub)

	req := httptest.NewRequest(http.MethodGet, "/api/releases/"+uuid.New().String()+"/progress", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d", w.Code)
	}
}
