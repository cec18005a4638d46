package webserver

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"truthtracker/internal/auth"
	"truthtracker/internal/domain"
	"truthtracker/internal/ports"
	"truthtracker/internal/usecase"
)

type fakeIncidentRepo struct {
	pending  []domain.PoliticalIncident
	verified []domain.PoliticalIncident
	batches  []domain.IncidentBatch

	promoted []string
	deleted  []string

	promoteErr error
	deleteErr  error
}

func (f *fakeIncidentRepo) CreatePending(_ context.Context, incident domain.PoliticalIncident) error {
	f.pending = append(f.pending, incident)
	return nil
}

func (f *fakeIncidentRepo) Pending(context.Context) ([]domain.PoliticalIncident, error) {
	return f.pending, nil
}

func (f *fakeIncidentRepo) Verified(context.Context) ([]domain.PoliticalIncident, error) {
	return f.verified, nil
}

func (f *fakeIncidentRepo) Promote(_ context.Context, id string) error {
	if f.promoteErr != nil {
		return f.promoteErr
	}
	f.promoted = append(f.promoted, id)
	return nil
}

func (f *fakeIncidentRepo) DeletePending(_ context.Context, id string) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeIncidentRepo) AppendBatch(_ context.Context, batch domain.IncidentBatch) error {
	f.batches = append(f.batches, batch)
	return nil
}

type fakeLogRepo struct {
	entries []domain.SyncLog
}

func (f *fakeLogRepo) Append(_ context.Context, entry domain.SyncLog) error {
	f.entries = append(f.entries, entry)
	return nil
}

func (f *fakeLogRepo) Recent(context.Context, int) ([]domain.SyncLog, error) {
	return f.entries, nil
}

type emptyContentSource struct{}

func (emptyContentSource) FetchAll(context.Context) ([]ports.SourceContent, error) {
	return nil, nil
}

type emptyRawSource struct{}

func (emptyRawSource) FetchAllRaw(context.Context) ([]ports.RawSourceContent, error) {
	return nil, nil
}

type nopExtractor struct{}

func (nopExtractor) Extract(context.Context, string, string, string) ([]domain.ExtractedPromise, error) {
	return nil, nil
}

type nopDedup struct{}

func (nopDedup) IsDuplicate(context.Context, domain.ExtractedPromise, []domain.ExtractedPromise) bool {
	return false
}

type nopPromiseRepo struct{}

func (nopPromiseRepo) Save(context.Context, domain.ExtractedPromise) error { return nil }
func (nopPromiseRepo) Recent(context.Context, int) ([]domain.ExtractedPromise, error) {
	return nil, nil
}

func newTestServer(repo *fakeIncidentRepo, logs *fakeLogRepo, allowedHosts []string) *Server {
	promiseSync := usecase.NewPromiseSync(usecase.PromiseSyncDeps{
		Source:    emptyContentSource{},
		Extractor: nopExtractor{},
		Dedup:     nopDedup{},
		Promises:  nopPromiseRepo{},
		Logs:      logs,
	})
	incidentSync := usecase.NewIncidentSync(usecase.IncidentSyncDeps{
		Source:    emptyRawSource{},
		Incidents: repo,
		Logs:      logs,
	})
	return New(Deps{
		PromiseSync:  promiseSync,
		IncidentSync: incidentSync,
		Incidents:    repo,
		Logs:         logs,
		Policy:       auth.NewTokenPolicy([]string{"admin-token"}),
		AllowedHosts: allowedHosts,
	})
}

func do(t *testing.T, handler http.Handler, method, target, body, token string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestRelayRequiresURL(t *testing.T) {
	t.Parallel()

	srv := newTestServer(&fakeIncidentRepo{}, &fakeLogRepo{}, []string{"thewire.in"})
	rec := do(t, srv.Handler(), http.MethodGet, "/api/fetch-relay", "", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Missing 'url' query param")
}

func TestRelayRejectsInvalidURL(t *testing.T) {
	t.Parallel()

	srv := newTestServer(&fakeIncidentRepo{}, &fakeLogRepo{}, []string{"thewire.in"})
	rec := do(t, srv.Handler(), http.MethodGet, "/api/fetch-relay?url=not-a-url", "", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Invalid URL")
}

func TestRelayRejectsHostOutsideAllowList(t *testing.T) {
	t.Parallel()

	srv := newTestServer(&fakeIncidentRepo{}, &fakeLogRepo{}, []string{"thewire.in"})
	rec := do(t, srv.Handler(), http.MethodGet, "/api/fetch-relay?url=https%3A%2F%2Fevil.example.com%2Ffeed", "", "")
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.JSONEq(t, `{"error": "Host not allowed"}`, rec.Body.String())
}

func TestRelayProxiesAllowedHost(t *testing.T) {
	t.Parallel()

	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.Header.Get("User-Agent"), "Political-Truth-Tracker")
		_, _ = w.Write([]byte("<rss>feed body</rss>"))
	}))
	defer upstream.Close()

	srv := newTestServer(&fakeIncidentRepo{}, &fakeLogRepo{}, []string{"127.0.0.1"})
	rec := do(t, srv.Handler(), http.MethodGet, "/api/fetch-relay?url="+url.QueryEscape(upstream.URL), "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/xml; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Equal(t, "<rss>feed body</rss>", rec.Body.String())
}

func TestRelayCapsUpstreamBody(t *testing.T) {
	t.Parallel()

	oversized := bytes.Repeat([]byte("x"), maxRelayBytes+1024)
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(oversized)
	}))
	defer upstream.Close()

	srv := newTestServer(&fakeIncidentRepo{}, &fakeLogRepo{}, []string{"127.0.0.1"})
	rec := do(t, srv.Handler(), http.MethodGet, "/api/fetch-relay?url="+url.QueryEscape(upstream.URL), "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, maxRelayBytes, rec.Body.Len())
}

func TestRelayForwardsUpstreamStatus(t *testing.T) {
	t.Parallel()

	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer upstream.Close()

	srv := newTestServer(&fakeIncidentRepo{}, &fakeLogRepo{}, []string{"127.0.0.1"})
	rec := do(t, srv.Handler(), http.MethodGet, "/api/fetch-relay?url="+url.QueryEscape(upstream.URL), "", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestIncidentBatchValidation(t *testing.T) {
	t.Parallel()

	repo := &fakeIncidentRepo{}
	srv := newTestServer(repo, &fakeLogRepo{}, nil)

	rec := do(t, srv.Handler(), http.MethodPost, "/api/incidents", `{"incidents": [{}]}`, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, srv.Handler(), http.MethodPost, "/api/incidents", `{"source": "scraper"}`, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, srv.Handler(), http.MethodPost, "/api/incidents", `not json`, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, repo.batches)
}

func TestIncidentBatchAccepted(t *testing.T) {
	t.Parallel()

	repo := &fakeIncidentRepo{}
	srv := newTestServer(repo, &fakeLogRepo{}, nil)

	rec := do(t, srv.Handler(), http.MethodPost, "/api/incidents",
		`{"source": "external-scraper", "incidents": [{"title": "road scam inquiry"}]}`, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"success": true}`, rec.Body.String())

	require.Len(t, repo.batches, 1)
	assert.Equal(t, "external-scraper", repo.batches[0].Source)
	assert.NotEmpty(t, repo.batches[0].ID)
	assert.False(t, repo.batches[0].FetchedAt.IsZero())
}

func TestListVerifiedIsPublic(t *testing.T) {
	t.Parallel()

	repo := &fakeIncidentRepo{verified: []domain.PoliticalIncident{
		{ID: "v1", Title: "approved story", Verified: true},
	}}
	srv := newTestServer(repo, &fakeLogRepo{}, nil)

	rec := do(t, srv.Handler(), http.MethodGet, "/api/incidents", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "approved story")
}

func TestAdminRoutesRequireToken(t *testing.T) {
	t.Parallel()

	srv := newTestServer(&fakeIncidentRepo{}, &fakeLogRepo{}, nil)

	for _, target := range []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/api/incidents/pending"},
		{http.MethodPost, "/api/incidents/abc/approve"},
		{http.MethodDelete, "/api/incidents/abc"},
		{http.MethodPost, "/api/sync/promises"},
		{http.MethodPost, "/api/sync/incidents"},
		{http.MethodGet, "/api/sync/history"},
	} {
		rec := do(t, srv.Handler(), target.method, target.path, "", "")
		assert.Equal(t, http.StatusForbidden, rec.Code, "%s %s", target.method, target.path)
		assert.Contains(t, rec.Body.String(), "Admin privileges required")

		rec = do(t, srv.Handler(), target.method, target.path, "", "wrong-token")
		assert.Equal(t, http.StatusForbidden, rec.Code, "%s %s", target.method, target.path)
	}
}

func TestApproveAndReject(t *testing.T) {
	t.Parallel()

	repo := &fakeIncidentRepo{pending: []domain.PoliticalIncident{{ID: "p1", Title: "pending story"}}}
	srv := newTestServer(repo, &fakeLogRepo{}, nil)

	rec := do(t, srv.Handler(), http.MethodGet, "/api/incidents/pending", "", "admin-token")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "pending story")

	rec = do(t, srv.Handler(), http.MethodPost, "/api/incidents/p1/approve", "", "admin-token")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"p1"}, repo.promoted)

	rec = do(t, srv.Handler(), http.MethodDelete, "/api/incidents/p1", "", "admin-token")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"p1"}, repo.deleted)
}

func TestApproveFailure(t *testing.T) {
	t.Parallel()

	repo := &fakeIncidentRepo{promoteErr: errors.New("not found")}
	srv := newTestServer(repo, &fakeLogRepo{}, nil)

	rec := do(t, srv.Handler(), http.MethodPost, "/api/incidents/missing/approve", "", "admin-token")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestSyncEndpointsReturnResult(t *testing.T) {
	t.Parallel()

	logs := &fakeLogRepo{}
	srv := newTestServer(&fakeIncidentRepo{}, logs, nil)

	rec := do(t, srv.Handler(), http.MethodPost, "/api/sync/promises", "", "admin-token")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "totalFetched")
	require.Len(t, logs.entries, 1)

	rec = do(t, srv.Handler(), http.MethodGet, "/api/sync/history", "", "admin-token")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "promises")
}

func TestConcurrentSyncRejected(t *testing.T) {
	t.Parallel()

	srv := newTestServer(&fakeIncidentRepo{}, &fakeLogRepo{}, nil)

	srv.syncMu.Lock()
	defer srv.syncMu.Unlock()

	rec := do(t, srv.Handler(), http.MethodPost, "/api/sync/promises", "", "admin-token")
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), "already in progress")

	rec = do(t, srv.Handler(), http.MethodPost, "/api/sync/incidents", "", "admin-token")
	assert.Equal(t, http.StatusConflict, rec.Code)
}
