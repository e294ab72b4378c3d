package httpapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/naozine/syncalign/internal/store"
)

func newTestRunRepository(t *testing.T) *store.RunRepository {
	t.Helper()
	db, err := store.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return store.NewRunRepository(db)
}

func TestSubmitCreatesQueuedRun(t *testing.T) {
	e := echo.New()
	h := NewRunHandler(newTestRunRepository(t))

	body := `{"audio_path":"a.wav","fragments":[{"ID":"f1","Language":"eng","Lines":["hi"]}]}`
	req := httptest.NewRequest(http.MethodPost, "/api/runs", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	require.NoError(t, h.Submit(c))
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), `"Status":"queued"`)
}

func TestSubmitRejectsMissingFields(t *testing.T) {
	e := echo.New()
	h := NewRunHandler(newTestRunRepository(t))

	req := httptest.NewRequest(http.MethodPost, "/api/runs", strings.NewReader(`{}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	require.NoError(t, h.Submit(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetReturnsNotFoundForUnknownID(t *testing.T) {
	e := echo.New()
	h := NewRunHandler(newTestRunRepository(t))

	req := httptest.NewRequest(http.MethodGet, "/api/runs/missing", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("missing")

	require.NoError(t, h.Get(c))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetReturnsCreatedRun(t *testing.T) {
	e := echo.New()
	repo := newTestRunRepository(t)
	h := NewRunHandler(repo)

	run := &store.Run{AudioPath: "a.wav", TextJSON: "[]", ConfigJSON: "{}"}
	require.NoError(t, repo.Create(context.Background(), run))

	req := httptest.NewRequest(http.MethodGet, "/api/runs/"+run.ID, nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(run.ID)

	require.NoError(t, h.Get(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), run.ID)
}
