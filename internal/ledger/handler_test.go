package ledger

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/ledgerkeep/ledgerkeep/internal/money"
	"github.com/ledgerkeep/ledgerkeep/internal/platform/httpx"
	"github.com/ledgerkeep/ledgerkeep/internal/shared"
)

func newItemServer(t *testing.T) (*httptest.Server, *memoryRepo) {
	t.Helper()
	repo := newMemoryRepo()
	handler := NewHandler(slog.Default(), NewService(repo))

	r := chi.NewRouter()
	// Requests carry the acting account in a header so tests can switch
	// identity per call.
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			actor := shared.Actor{AccountID: 1, Username: "casey"}
			if req.Header.Get("X-Test-Account") == "2" {
				actor = shared.Actor{AccountID: 2, Username: "other"}
			}
			next.ServeHTTP(w, req.WithContext(shared.ContextWithActor(req.Context(), actor)))
		})
	})
	r.Route("/overviews/{parentID}/items", func(gr chi.Router) {
		handler.MountParentRoutes(gr, ParentOverview)
	})
	r.Route("/items", handler.MountItemRoutes)

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv, repo
}

func doJSON(t *testing.T, method, url string, payload any, account string) *http.Response {
	t.Helper()
	var body bytes.Buffer
	if payload != nil {
		require.NoError(t, json.NewEncoder(&body).Encode(payload))
	}
	req, err := http.NewRequest(method, url, &body)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if account != "" {
		req.Header.Set("X-Test-Account", account)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestAddAndListItemsOverHTTP(t *testing.T) {
	srv, repo := newItemServer(t)
	parent := ParentRef{Kind: ParentOverview, ID: 10}
	repo.addParent(parent, 1)

	resp := doJSON(t, http.MethodPost, srv.URL+"/overviews/10/items", map[string]any{
		"category":    "need",
		"description": "weekly groceries",
		"cost":        "42.50",
	}, "")
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var created struct {
		Data itemView `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&created))
	require.Equal(t, 1, created.Data.Placement)
	require.Equal(t, "42.50", created.Data.Cost)

	resp = doJSON(t, http.MethodGet, srv.URL+"/overviews/10/items", nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var listed struct {
		Data []itemView `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&listed))
	require.Len(t, listed.Data, 1)
}

func TestForeignParentReadsAsNotFound(t *testing.T) {
	srv, repo := newItemServer(t)
	repo.addParent(ParentRef{Kind: ParentOverview, ID: 10}, 1)

	resp := doJSON(t, http.MethodGet, srv.URL+"/overviews/10/items", nil, "2")
	require.Equal(t, http.StatusNotFound, resp.StatusCode)

	var body httpx.ErrorBody
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.NotEmpty(t, body.Error)
}

func TestRejectsMalformedInputOverHTTP(t *testing.T) {
	srv, repo := newItemServer(t)
	repo.addParent(ParentRef{Kind: ParentOverview, ID: 10}, 1)

	// Unknown category.
	resp := doJSON(t, http.MethodPost, srv.URL+"/overviews/10/items", map[string]any{
		"category":    "splurge",
		"description": "x",
	}, "")
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	// Negative cost.
	resp = doJSON(t, http.MethodPost, srv.URL+"/overviews/10/items", map[string]any{
		"category":    "need",
		"description": "x",
		"cost":        "-5.00",
	}, "")
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	// Non-numeric collection id.
	resp = doJSON(t, http.MethodGet, srv.URL+"/overviews/abc/items", nil, "")
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestPlacementEndpoints(t *testing.T) {
	srv, repo := newItemServer(t)
	parent := ParentRef{Kind: ParentOverview, ID: 10}
	repo.addParent(parent, 1)

	var ids []int64
	for i := 0; i < 3; i++ {
		resp := doJSON(t, http.MethodPost, srv.URL+"/overviews/10/items", map[string]any{
			"category":    "impulse",
			"description": fmt.Sprintf("item %d", i),
		}, "")
		require.Equal(t, http.StatusCreated, resp.StatusCode)
		var created struct {
			Data itemView `json:"data"`
		}
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&created))
		ids = append(ids, created.Data.ID)
	}

	resp := doJSON(t, http.MethodPut, fmt.Sprintf("%s/items/%d/placement", srv.URL, ids[2]), map[string]any{"placement": 1}, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = doJSON(t, http.MethodPut, fmt.Sprintf("%s/items/%d/placement", srv.URL, ids[2]), map[string]any{"placement": 9}, "")
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = doJSON(t, http.MethodPut, srv.URL+"/overviews/10/items/order", map[string]any{
		"ids": []int64{ids[0], ids[1], ids[2]},
	}, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = doJSON(t, http.MethodGet, srv.URL+"/overviews/10/items", nil, "")
	var listed struct {
		Data []itemView `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&listed))
	require.Equal(t, ids[0], listed.Data[0].ID)
	require.Equal(t, 1, listed.Data[0].Placement)
}

func TestDeleteEndpoints(t *testing.T) {
	srv, repo := newItemServer(t)
	parent := ParentRef{Kind: ParentOverview, ID: 10}
	repo.addParent(parent, 1)

	var ids []int64
	for i := 0; i < 3; i++ {
		resp := doJSON(t, http.MethodPost, srv.URL+"/overviews/10/items", map[string]any{
			"category":    "need",
			"description": fmt.Sprintf("item %d", i),
			"cost":        "10.00",
		}, "")
		require.Equal(t, http.StatusCreated, resp.StatusCode)
		var created struct {
			Data itemView `json:"data"`
		}
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&created))
		ids = append(ids, created.Data.ID)
	}

	resp := doJSON(t, http.MethodDelete, fmt.Sprintf("%s/items/%d", srv.URL, ids[1]), nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = doJSON(t, http.MethodPost, srv.URL+"/overviews/10/items/bulk-delete", map[string]any{
		"ids": []int64{ids[0]},
	}, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = doJSON(t, http.MethodGet, srv.URL+"/overviews/10/items", nil, "")
	var listed struct {
		Data []itemView `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&listed))
	require.Len(t, listed.Data, 1)
	require.Equal(t, 1, listed.Data[0].Placement)
	require.Equal(t, money.Cents(1000), repo.parents[parent].total)
}
