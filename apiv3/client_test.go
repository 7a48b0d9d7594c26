package apiv3

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shipboard-social/quarterdeck/moderation"
)

func testClient(srv *httptest.Server) *Client {
	return &Client{
		Client:         srv.Client(),
		MutationClient: srv.Client(),
		Host:           srv.URL,
		Auth:           &AuthInfo{Token: "test-token"},
	}
}

func TestGetReports(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(http.MethodGet, r.Method)
		assert.Equal("/api/v3/reports", r.URL.Path)
		assert.Equal("Bearer test-token", r.Header.Get("Authorization"))
		json.NewEncoder(w).Encode([]moderation.Report{
			{ID: "r1", Type: moderation.TypeTwarrt, ReportedID: "t1", CreationTime: time.Now().UTC()},
		})
	}))
	defer srv.Close()

	reports, err := testClient(srv).GetReports(ctx)
	require.NoError(t, err)
	require.Len(t, reports, 1)
	assert.Equal("r1", reports[0].ID)
	assert.Equal(moderation.TypeTwarrt, reports[0].Type)
}

func TestErrorTaxonomy(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	for _, tc := range []struct {
		status   int
		sentinel error
	}{
		{404, moderation.ErrNotFound},
		{401, moderation.ErrForbidden},
		{403, moderation.ErrForbidden},
		{500, nil},
		{412, nil},
	} {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(tc.status)
			json.NewEncoder(w).Encode(map[string]any{"error": true, "reason": "nope"})
		}))

		_, err := testClient(srv).GetModerationView(ctx, moderation.TypeForumPost, "p1")
		require.Error(t, err)

		var ue *moderation.UpstreamError
		require.True(t, errors.As(err, &ue), "status %d", tc.status)
		assert.Equal(tc.status, ue.StatusCode)
		assert.Equal("nope", ue.Reason)
		if tc.sentinel != nil {
			assert.ErrorIs(err, tc.sentinel)
		} else {
			assert.NotErrorIs(err, moderation.ErrNotFound)
			assert.NotErrorIs(err, moderation.ErrForbidden)
		}
		srv.Close()
	}
}

func TestHandleAllSendsIfMatch(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	var gotPath, gotIfMatch string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(http.MethodPost, r.Method)
		gotPath = r.URL.Path
		gotIfMatch = r.Header.Get("If-Match")
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	c := testClient(srv)
	require.NoError(t, c.HandleAllReports(ctx, "r9", "abcdef0123456789"))
	assert.Equal("/api/v3/reports/r9/handleAll", gotPath)
	assert.Equal(`"abcdef0123456789"`, gotIfMatch)

	// without a version, no precondition header goes out
	require.NoError(t, c.CloseAllReports(ctx, "r9", ""))
	assert.Equal("/api/v3/reports/r9/closeAll", gotPath)
	assert.Equal("", gotIfMatch)
}

func TestSetModerationStatePaths(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()
	c := testClient(srv)

	require.NoError(t, c.SetModerationState(ctx, moderation.TypeTwarrt, "55", moderation.StateQuarantined))
	assert.Equal("/api/v3/moderation/twarrt/55/setState/quarantined", gotPath)

	require.NoError(t, c.SetAccessLevel(ctx, "u-77", moderation.AccessModerator))
	assert.Equal("/api/v3/access/u-77/setLevel/moderator", gotPath)

	require.NoError(t, c.TempQuarantine(ctx, "u-77", 3600))
	assert.Equal("/api/v3/access/u-77/tempQuarantine/3600", gotPath)

	// zero clears
	require.NoError(t, c.TempQuarantine(ctx, "u-77", 0))
	assert.Equal("/api/v3/access/u-77/tempQuarantine/0", gotPath)
}

func TestModerationViewDecode(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal("/api/v3/moderation/forumPost/p42", r.URL.Path)
		json.NewEncoder(w).Encode(map[string]any{
			"content":         map[string]any{"text": "current text"},
			"moderationState": "locked",
			"edits": []map[string]any{
				{"author": map[string]any{"userID": "a", "username": "alice"}, "text": "v1"},
			},
			"reports": []map[string]any{
				{"id": "r5", "type": "forumPost", "reportedID": "p42"},
			},
		})
	}))
	defer srv.Close()

	view, err := testClient(srv).GetModerationView(ctx, moderation.TypeForumPost, "p42")
	require.NoError(t, err)
	assert.Equal(moderation.StateLocked, view.State)
	require.Len(t, view.Edits, 1)
	assert.Equal("alice", view.Edits[0].Author.Username)
	require.Len(t, view.Reports, 1)
	assert.Equal("r5", view.Reports[0].ID)
}

func TestLogin(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal("/api/v3/auth/login", r.URL.Path)
		user, pass, ok := r.BasicAuth()
		assert.True(ok)
		assert.Equal("kvothe", user)
		assert.Equal("hunter2", pass)
		json.NewEncoder(w).Encode(map[string]any{
			"token":       "tok-1",
			"accessLevel": "moderator",
			"user":        map[string]any{"userID": "u1", "username": "kvothe"},
		})
	}))
	defer srv.Close()

	c := testClient(srv)
	c.Auth = nil
	result, err := c.Login(ctx, "kvothe", "hunter2")
	require.NoError(t, err)
	assert.Equal("tok-1", result.Token)
	assert.Equal(moderation.AccessModerator, result.AccessLevel)
	assert.Equal("kvothe", result.User.Username)
}
