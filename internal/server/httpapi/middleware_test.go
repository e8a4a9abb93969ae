package httpapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"filedrop/internal/server/auth"
	"filedrop/internal/server/models"
)

func listOK(t *testing.T, wantOwner int64) *stubFileService {
	return &stubFileService{
		listFn: func(ctx context.Context, ownerID int64) ([]*models.File, error) {
			assert.Equal(t, wantOwner, ownerID)
			return nil, nil
		},
	}
}

func TestRequireAuthMissingHeader(t *testing.T) {
	srv, _ := newTestServer(&stubUserService{}, &stubFileService{})

	req := httptest.NewRequest(http.MethodGet, "/files", nil)
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)

	require.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), `"unauthorized"`)
}

func TestRequireAuthNotBearer(t *testing.T) {
	srv, _ := newTestServer(&stubUserService{}, &stubFileService{})

	req := httptest.NewRequest(http.MethodGet, "/files", nil)
	req.Header.Set("Authorization", "Basic dXNlcjpwdw==")
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)

	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequireAuthGarbageToken(t *testing.T) {
	srv, _ := newTestServer(&stubUserService{}, &stubFileService{})

	req := httptest.NewRequest(http.MethodGet, "/files", nil)
	req.Header.Set("Authorization", "Bearer not-a-jwt")
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)

	require.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), `"unauthorized"`)
}

func TestRequireAuthExpiredToken(t *testing.T) {
	srv, signer := newTestServer(&stubUserService{}, &stubFileService{})

	token, err := signer.IssueAccess(7, "alice", -time.Minute)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/files", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)

	require.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), `"unauthorized"`)
}

func TestRequireAuthWrongSecret(t *testing.T) {
	srv, _ := newTestServer(&stubUserService{}, &stubFileService{})

	other := auth.NewSigner([]byte("other-secret"))
	token, err := other.IssueAccess(7, "alice", time.Hour)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/files", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)

	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequireAuthShareTokenRejected(t *testing.T) {
	srv, signer := newTestServer(&stubUserService{}, &stubFileService{})

	token, err := signer.IssueShare(42, time.Hour)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/files", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)

	require.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), `"unauthorized"`)
}

func TestRequireAuthRejectionsIndistinguishable(t *testing.T) {
	srv, signer := newTestServer(&stubUserService{}, &stubFileService{})

	expired, err := signer.IssueAccess(7, "alice", -time.Minute)
	require.NoError(t, err)

	headers := map[string]string{
		"missing header": "",
		"garbage token":  "Bearer not-a-jwt",
		"expired token":  "Bearer " + expired,
	}

	var bodies []string
	for name, header := range headers {
		req := httptest.NewRequest(http.MethodGet, "/files", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		w := httptest.NewRecorder()
		srv.Router().ServeHTTP(w, req)

		require.Equal(t, http.StatusUnauthorized, w.Code, name)
		bodies = append(bodies, w.Body.String())
	}

	for _, body := range bodies[1:] {
		assert.Equal(t, bodies[0], body, "rejection responses must not reveal the reason")
	}
}

func TestRequireAuthPassesUserID(t *testing.T) {
	srv, signer := newTestServer(&stubUserService{}, listOK(t, 7))

	req := httptest.NewRequest(http.MethodGet, "/files", nil)
	req.Header.Set("Authorization", bearerToken(t, signer, 7))
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
}
