package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/ledgerkeep/ledgerkeep/internal/shared"
	"github.com/ledgerkeep/ledgerkeep/internal/token"
)

func newTestServer(t *testing.T) (*httptest.Server, *memoryAccounts, *CodeIssuer) {
	t.Helper()
	signer := token.NewSigner("test-secret")
	issuer := NewCodeIssuer(signer)
	repo := newMemoryAccounts()
	svc := NewService(repo, issuer, signer, &captureMailer{}, slog.Default())

	r := chi.NewRouter()
	r.Route("/auth", NewHandler(slog.Default(), svc).MountRoutes)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv, repo, issuer
}

func postJSON(t *testing.T, url string, payload any) *http.Response {
	t.Helper()
	body, err := json.Marshal(payload)
	require.NoError(t, err)
	resp, err := http.Post(url, "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestRegistrationEndToEnd(t *testing.T) {
	srv, repo, issuer := newTestServer(t)

	resp := postJSON(t, srv.URL+"/auth/register", map[string]any{
		"email":    "casey@example.com",
		"username": "casey",
		"password": "hunter2hunter2",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var created authResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&created))
	require.NotNil(t, created.User)
	require.Equal(t, string(StatusPending), created.User.AccountStatus)
	id := created.User.ID

	resp = postJSON(t, srv.URL+"/auth/register/confirm", map[string]any{
		"accountId": id,
		"code":      "00000000",
	})
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	code := currentCode(t, issuer, repo, id)
	resp = postJSON(t, srv.URL+"/auth/register/confirm", map[string]any{
		"accountId": id,
		"code":      code,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, StatusVerified, repo.accounts[id].Status)

	// The stale code must not finalize twice.
	resp = postJSON(t, srv.URL+"/auth/register/confirm", map[string]any{
		"accountId": id,
		"code":      code,
	})
	require.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestRegisterRejectsMalformedBody(t *testing.T) {
	srv, _, _ := newTestServer(t)

	resp := postJSON(t, srv.URL+"/auth/register", map[string]any{
		"email":    "not-an-email",
		"username": "casey",
		"password": "hunter2hunter2",
	})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = postJSON(t, srv.URL+"/auth/register", map[string]any{
		"email":    "casey@example.com",
		"username": "casey",
		"password": "short",
	})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestLoginEndToEnd(t *testing.T) {
	srv, repo, issuer := newTestServer(t)

	resp := postJSON(t, srv.URL+"/auth/register", map[string]any{
		"email":    "casey@example.com",
		"username": "casey",
		"password": "hunter2hunter2",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var created authResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&created))
	id := created.User.ID
	_, err := repo.MarkVerified(context.Background(), id, *repo.accounts[id].ConfirmationToken)
	require.NoError(t, err)

	resp = postJSON(t, srv.URL+"/auth/login", map[string]any{
		"username": "casey",
		"password": "wrong-password",
	})
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = postJSON(t, srv.URL+"/auth/login", map[string]any{
		"username": "casey",
		"password": "hunter2hunter2",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	code := currentCode(t, issuer, repo, id)
	resp = postJSON(t, srv.URL+"/auth/login/confirm", map[string]any{
		"accountId": id,
		"code":      code,
		"remember":  true,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var confirmed authResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&confirmed))
	require.NotEmpty(t, confirmed.AccessToken)

	claims, err := token.NewSigner("test-secret").VerifyAccess(confirmed.AccessToken)
	require.NoError(t, err)
	require.Equal(t, id, claims.AccountID)
}

func TestResendCode(t *testing.T) {
	srv, repo, issuer := newTestServer(t)

	resp := postJSON(t, srv.URL+"/auth/register", map[string]any{
		"email":    "casey@example.com",
		"username": "casey",
		"password": "hunter2hunter2",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var created authResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&created))
	id := created.User.ID
	stale := currentCode(t, issuer, repo, id)

	resp = postJSON(t, srv.URL+"/auth/code/resend", map[string]any{"accountId": id})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NotEqual(t, stale, currentCode(t, issuer, repo, id))

	resp = postJSON(t, srv.URL+"/auth/code/resend", map[string]any{"accountId": int64(999)})
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestRequireAccount(t *testing.T) {
	signer := token.NewSigner("test-secret")
	var gotActor shared.Actor
	handler := RequireAccount(signer)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotActor = shared.ActorFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	credential, err := signer.SignAccess(7, "casey", accessTTL)
	require.NoError(t, err)
	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", credential))
	handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusNoContent, rec.Code)
	require.Equal(t, int64(7), gotActor.AccountID)
	require.Equal(t, "casey", gotActor.Username)
}
