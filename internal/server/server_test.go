package server

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/extratos/verifier/internal/config"
	"github.com/extratos/verifier/internal/session"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

var fixedNow = time.Date(2025, 1, 15, 9, 0, 0, 0, time.UTC)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	svc, err := session.NewService(config.Default(), nil)
	require.NoError(t, err)
	return New(DefaultConfig(), svc, nil, WithClock(func() time.Time { return fixedNow }))
}

func do(t *testing.T, srv *Server, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&v))
	return v
}

func createSession(t *testing.T, srv *Server) string {
	t.Helper()
	rec := do(t, srv, httptest.NewRequest(http.MethodPost, "/api/sessions", nil))
	require.Equal(t, http.StatusCreated, rec.Code)
	return decode[CreateSessionResponse](t, rec).ID
}

func multipartRequest(t *testing.T, url string, files map[string][]byte) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for name, data := range files {
		fw, err := mw.CreateFormFile("file", name)
		require.NoError(t, err)
		_, err = fw.Write(data)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, url, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func fixture(t *testing.T, name string) []byte {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("..", "..", "testdata", name))
	require.NoError(t, err)
	return data
}

func uploadFixtures(t *testing.T, srv *Server, id string) StatementsResponse {
	t.Helper()
	req := multipartRequest(t, "/api/sessions/"+id+"/statements", map[string][]byte{
		"extrato_1.csv": fixture(t, "extrato_1.csv"),
	})
	rec := do(t, srv, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	req = httptest.NewRequest(http.MethodPost, "/api/sessions/"+id+"/statements?name=extrato_2.csv",
		bytes.NewReader(fixture(t, "extrato_2.csv")))
	req.Header.Set("Content-Type", "text/csv")
	rec = do(t, srv, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	return decode[StatementsResponse](t, rec)
}

func reconcileRequest(id, expected string) *http.Request {
	body, _ := json.Marshal(ReconcileRequest{ExpectedText: expected})
	req := httptest.NewRequest(http.MethodPost, "/api/sessions/"+id+"/reconcile", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func TestServer_Health(t *testing.T) {
	srv := newTestServer(t)
	rec := do(t, srv, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", decode[HealthResponse](t, rec).Status)
}

func TestServer_FullFlow(t *testing.T) {
	srv := newTestServer(t)
	id := createSession(t, srv)

	uploaded := uploadFixtures(t, srv, id)
	assert.Equal(t, 3, uploaded.TotalRecords)
	require.Len(t, uploaded.Added, 1)
	assert.Equal(t, session.StatementInfo{Name: "extrato_2.csv", Records: 1}, uploaded.Added[0])
	require.Len(t, uploaded.Sample, 3)
	assert.Equal(t, "-50.00", uploaded.Sample[0].Amount)

	rec := do(t, srv, reconcileRequest(id, "50, 120.00, 30"))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	res := decode[ReconcileResponse](t, rec)
	assert.Equal(t, SummaryResponse{Expected: 3, Observed: 3, Matched: 2, Unmatched: 1, Rate: "66.7"}, res.Summary)
	require.Len(t, res.Matched, 2)
	assert.Equal(t, "COMPRA 1234 SUPERMERCADO", res.Matched[0].Movement.Description)
	assert.Equal(t, []ExpectedResponse{{Amount: "30.00", Raw: "30"}}, res.Unmatched)

	rec = do(t, srv, httptest.NewRequest(http.MethodGet, "/api/sessions/"+id+"/report", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "attachment; filename=report_extratos_2025-01-15.txt", rec.Header().Get("Content-Disposition"))
	assert.True(t, strings.HasPrefix(rec.Header().Get("Content-Type"), "text/plain"))
	assert.Contains(t, rec.Body.String(), "Match rate: 66.7%")

	rec = do(t, srv, httptest.NewRequest(http.MethodGet, "/api/sessions/"+id+"/report?format=csv", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "attachment; filename=report_extratos_2025-01-15.csv", rec.Header().Get("Content-Disposition"))
	assert.True(t, strings.HasPrefix(rec.Body.String(), "status,expected,raw,date,description,amount\n"))

	rec = do(t, srv, httptest.NewRequest(http.MethodGet, "/api/sessions/"+id, nil))
	require.Equal(t, http.StatusOK, rec.Code)
	state := decode[SessionResponse](t, rec)
	assert.True(t, state.Reconciled)
	assert.Len(t, state.Statements, 2)

	rec = do(t, srv, httptest.NewRequest(http.MethodDelete, "/api/sessions/"+id, nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = do(t, srv, httptest.NewRequest(http.MethodGet, "/api/sessions/"+id, nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestServer_ReconcileMissingData(t *testing.T) {
	srv := newTestServer(t)
	id := createSession(t, srv)

	rec := do(t, srv, reconcileRequest(id, "50"))
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, ErrCodeMissingData, decode[ErrorResponse](t, rec).Code)

	uploadFixtures(t, srv, id)
	rec = do(t, srv, reconcileRequest(id, "abc"))
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	sess, err := srv.Store().Get(uuid.MustParse(id))
	require.NoError(t, err)
	assert.Len(t, sess.Records, 3)
	assert.False(t, sess.Reconciled())
}

func TestServer_ReportBeforeReconcile(t *testing.T) {
	srv := newTestServer(t)
	id := createSession(t, srv)
	rec := do(t, srv, httptest.NewRequest(http.MethodGet, "/api/sessions/"+id+"/report", nil))
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestServer_UnknownSession(t *testing.T) {
	srv := newTestServer(t)
	for _, req := range []*http.Request{
		httptest.NewRequest(http.MethodGet, "/api/sessions/not-a-uuid", nil),
		httptest.NewRequest(http.MethodGet, "/api/sessions/"+uuid.NewString()+"/report", nil),
		httptest.NewRequest(http.MethodDelete, "/api/sessions/"+uuid.NewString(), nil),
		reconcileRequest(uuid.NewString(), "50"),
	} {
		rec := do(t, srv, req)
		assert.Equal(t, http.StatusNotFound, rec.Code, req.URL.Path)
	}
}

func TestServer_BadUploads(t *testing.T) {
	srv := newTestServer(t)
	id := createSession(t, srv)

	req := httptest.NewRequest(http.MethodPost, "/api/sessions/"+id+"/statements", strings.NewReader("  "))
	rec := do(t, srv, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	req = multipartRequest(t, "/api/sessions/"+id+"/expected/grid", map[string][]byte{"cofre.pdf": []byte("%PDF")})
	rec = do(t, srv, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	req = httptest.NewRequest(http.MethodPost, "/api/sessions/"+id+"/reconcile", strings.NewReader("{"))
	req.Header.Set("Content-Type", "application/json")
	rec = do(t, srv, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestServer_PrefillExpected(t *testing.T) {
	srv := newTestServer(t)
	id := createSession(t, srv)

	req := multipartRequest(t, "/api/sessions/"+id+"/expected/grid", map[string][]byte{
		"cofre.csv": fixture(t, "cofre.csv"),
	})
	rec := do(t, srv, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "200.00, 120.00, 50.00, 30.00", decode[PrefillResponse](t, rec).ExpectedText)
}

func TestServer_CORS(t *testing.T) {
	srv := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	rec := do(t, srv, req)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestCorsConfig(t *testing.T) {
	assert.True(t, corsConfig(nil).AllowAllOrigins)
	assert.True(t, corsConfig([]string{"*"}).AllowAllOrigins)

	cfg := corsConfig([]string{"http://localhost:3000"})
	assert.False(t, cfg.AllowAllOrigins)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.AllowOrigins)
}

func TestServer_RunStopsOnCancel(t *testing.T) {
	svc, err := session.NewService(config.Default(), nil)
	require.NoError(t, err)
	srv := New(Config{Port: 0}, svc, nil)

	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(50*time.Millisecond, cancel)
	assert.NoError(t, srv.Run(ctx))
}
