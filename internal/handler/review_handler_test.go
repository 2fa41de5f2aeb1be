package handler_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"estimatehub/internal/handler"
	"estimatehub/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubReviewService returns a canned view or error from every operation, which
// is all the handler layer needs for status-mapping tests.
type stubReviewService struct {
	view service.SessionView
	err  error
}

func (s *stubReviewService) StartSession(context.Context, service.StartSessionRequest) (service.SessionView, error) {
	return s.view, s.err
}
func (s *stubReviewService) GetSession(context.Context, string) (service.SessionView, error) {
	return s.view, s.err
}
func (s *stubReviewService) AdvanceStep(context.Context, string) (service.SessionView, error) {
	return s.view, s.err
}
func (s *stubReviewService) RetreatStep(context.Context, string) (service.SessionView, error) {
	return s.view, s.err
}
func (s *stubReviewService) JumpToDocument(context.Context, string, int) (service.SessionView, error) {
	return s.view, s.err
}
func (s *stubReviewService) SetAssignment(context.Context, string, service.AssignmentRequest) (service.SessionView, error) {
	return s.view, s.err
}
func (s *stubReviewService) FinishCurrentDocument(context.Context, string) (service.SessionView, error) {
	return s.view, s.err
}
func (s *stubReviewService) UpdateItem(context.Context, string, string, service.UpdateItemRequest) (service.SessionView, error) {
	return s.view, s.err
}
func (s *stubReviewService) DeleteItem(context.Context, string, string) (service.SessionView, error) {
	return s.view, s.err
}
func (s *stubReviewService) UpdateField(context.Context, string, string, service.UpdateFieldRequest) (service.SessionView, error) {
	return s.view, s.err
}
func (s *stubReviewService) AddField(context.Context, string, string, service.AddFieldRequest) (service.SessionView, error) {
	return s.view, s.err
}
func (s *stubReviewService) DeleteField(context.Context, string, string) (service.SessionView, error) {
	return s.view, s.err
}
func (s *stubReviewService) SweepExpired() {}

func newReviewRouter(svc service.ReviewService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := handler.NewReviewHandler(svc)
	r := gin.New()
	r.GET("/sessions/:id", h.GetSession)
	r.POST("/sessions", h.StartSession)
	r.POST("/sessions/:id/jump", h.JumpToDocument)
	r.POST("/sessions/:id/finish", h.FinishCurrentDocument)
	return r
}

func doRequest(t *testing.T, r *gin.Engine, method, path, body string) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var envelope map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	return w, envelope
}

func TestGetSessionNotFoundMapsTo404(t *testing.T) {
	r := newReviewRouter(&stubReviewService{err: service.ErrSessionNotFound})

	w, envelope := doRequest(t, r, http.MethodGet, "/sessions/abc", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "error", envelope["status"])
}

func TestFinishGatewayErrorMapsTo502(t *testing.T) {
	r := newReviewRouter(&stubReviewService{
		err: fmt.Errorf("%w: update assignment: connection refused", service.ErrGateway),
	})

	w, envelope := doRequest(t, r, http.MethodPost, "/sessions/abc/finish", "")
	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Contains(t, envelope["error"], "connection refused")
}

func TestValidationErrorMapsTo400(t *testing.T) {
	r := newReviewRouter(&stubReviewService{err: errors.New("customer assignment is not resolved")})

	w, _ := doRequest(t, r, http.MethodPost, "/sessions/abc/finish", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestStartSessionRequiresEstimateIDs(t *testing.T) {
	r := newReviewRouter(&stubReviewService{})

	w, envelope := doRequest(t, r, http.MethodPost, "/sessions", `{"estimate_ids":[]}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "error", envelope["status"])
}

func TestStartSessionSuccessEnvelope(t *testing.T) {
	view := service.SessionView{ID: "11111111-2222-3333-4444-555555555555"}
	r := newReviewRouter(&stubReviewService{view: view})

	w, envelope := doRequest(t, r, http.MethodPost, "/sessions", `{"estimate_ids":["a"]}`)
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "success", envelope["status"])
	data, ok := envelope["data"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, view.ID, data["id"])
}

func TestJumpRequiresDocumentIndex(t *testing.T) {
	r := newReviewRouter(&stubReviewService{})

	// document_index zero must bind; a missing field must not.
	w, _ := doRequest(t, r, http.MethodPost, "/sessions/abc/jump", `{"document_index":0}`)
	assert.Equal(t, http.StatusOK, w.Code)

	w, _ = doRequest(t, r, http.MethodPost, "/sessions/abc/jump", `{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
