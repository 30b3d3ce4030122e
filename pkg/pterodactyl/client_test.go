package pterodactyl

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/panelmurah/ptero-store/pkg/catalog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestClient(baseURL string) Client {
	return NewClient(zap.NewNop(), Config{
		BaseURL:    baseURL,
		APIKey:     "ptla_secret",
		NestID:     5,
		EggID:      15,
		LocationID: 1,
	})
}

type fakePanel struct {
	t           *testing.T
	userBody    map[string]any
	serverBody  map[string]any
	userErrors  []map[string]string
	serverCode  int
	deleteCode  int
	deletePaths []string
}

func (p *fakePanel) handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(p.t, "Bearer ptla_secret", r.Header.Get("Authorization"))

		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/api/application/users":
			require.NoError(p.t, json.NewDecoder(r.Body).Decode(&p.userBody))
			json.NewEncoder(w).Encode(map[string]any{
				"errors":     p.userErrors,
				"attributes": map[string]any{"id": 7},
			})
		case r.Method == http.MethodGet && r.URL.Path == "/api/application/nests/5/eggs/15":
			json.NewEncoder(w).Encode(map[string]any{
				"attributes": map[string]any{"startup": "{{CMD_RUN}}"},
			})
		case r.Method == http.MethodPost && r.URL.Path == "/api/application/servers":
			require.NoError(p.t, json.NewDecoder(r.Body).Decode(&p.serverBody))
			if p.serverCode != 0 {
				w.WriteHeader(p.serverCode)
				return
			}
			json.NewEncoder(w).Encode(map[string]any{
				"attributes": map[string]any{
					"id":         42,
					"uuid":       "c0ffee00-0000-0000-0000-000000000000",
					"identifier": "c0ffee00",
				},
			})
		case r.Method == http.MethodDelete:
			p.deletePaths = append(p.deletePaths, r.URL.Path)
			w.WriteHeader(p.deleteCode)
		default:
			p.t.Fatalf("unexpected request %s %s", r.Method, r.URL.Path)
		}
	})
}

func TestCreateAccount(t *testing.T) {
	panel := &fakePanel{t: t}
	srv := httptest.NewServer(panel.handler())
	defer srv.Close()

	plan, err := catalog.Resolve("2gb")
	require.NoError(t, err)

	account, err := newTestClient(srv.URL).CreateAccount(context.Background(), plan, "Budi", "rahasia123", "")
	require.NoError(t, err)

	assert.Equal(t, 7, account.UserID)
	assert.Equal(t, 42, account.ServerID)
	assert.Equal(t, "c0ffee00", account.Identifier)
	assert.Equal(t, "budi", account.Username)
	assert.Equal(t, "rahasia123", account.Password)
	assert.Equal(t, "budi@gmail.com", account.Email)
	assert.Equal(t, "2gb", account.Plan)
	assert.Equal(t, "2GB", account.Specs.RAM)
	assert.Equal(t, "60%", account.Specs.CPU)
	assert.Equal(t, srv.URL, account.LoginURL)

	// user request carries the lowercased username and defaulted email
	assert.Equal(t, "budi", panel.userBody["username"])
	assert.Equal(t, "budi@gmail.com", panel.userBody["email"])

	// server request binds the new user and the plan limits
	assert.Equal(t, float64(7), panel.serverBody["user"])
	assert.Equal(t, "{{CMD_RUN}}", panel.serverBody["startup"])
	limits := panel.serverBody["limits"].(map[string]any)
	assert.Equal(t, float64(2000), limits["memory"])
	assert.Equal(t, float64(1000), limits["disk"])
	assert.Equal(t, float64(60), limits["cpu"])
	assert.Equal(t, float64(0), limits["swap"])
}

func TestCreateAccountDefaultPassword(t *testing.T) {
	panel := &fakePanel{t: t}
	srv := httptest.NewServer(panel.handler())
	defer srv.Close()

	plan, err := catalog.Resolve("1gb")
	require.NoError(t, err)

	account, err := newTestClient(srv.URL).CreateAccount(context.Background(), plan, "sari", "", "")
	require.NoError(t, err)
	assert.Equal(t, "sari01", account.Password)
}

func TestCreateAccountLogicalErrorIn200(t *testing.T) {
	panel := &fakePanel{t: t, userErrors: []map[string]string{
		{"code": "ValidationException", "detail": "email already taken"},
	}}
	srv := httptest.NewServer(panel.handler())
	defer srv.Close()

	plan, err := catalog.Resolve("1gb")
	require.NoError(t, err)

	_, err = newTestClient(srv.URL).CreateAccount(context.Background(), plan, "budi", "pw123", "")
	var provisionErr *ProvisionError
	require.ErrorAs(t, err, &provisionErr)
	assert.Contains(t, provisionErr.Detail, "email already taken")
}

func TestCreateAccountServerStepFails(t *testing.T) {
	panel := &fakePanel{t: t, serverCode: http.StatusUnprocessableEntity}
	srv := httptest.NewServer(panel.handler())
	defer srv.Close()

	plan, err := catalog.Resolve("1gb")
	require.NoError(t, err)

	_, err = newTestClient(srv.URL).CreateAccount(context.Background(), plan, "budi", "pw123", "")
	var provisionErr *ProvisionError
	require.ErrorAs(t, err, &provisionErr)
	assert.Contains(t, provisionErr.Step, "/api/application/servers")
}

func TestDeleteServer(t *testing.T) {
	cases := []struct {
		code    int
		wantErr error
	}{
		{http.StatusNoContent, nil},
		{http.StatusNotFound, ErrServerNotFound},
	}
	for _, tc := range cases {
		t.Run(fmt.Sprintf("status %d", tc.code), func(t *testing.T) {
			panel := &fakePanel{t: t, deleteCode: tc.code}
			srv := httptest.NewServer(panel.handler())
			defer srv.Close()

			err := newTestClient(srv.URL).DeleteServer(context.Background(), 42)
			if tc.wantErr == nil {
				require.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tc.wantErr)
			}
			assert.Equal(t, []string{"/api/application/servers/42"}, panel.deletePaths)
		})
	}
}

func TestDeleteServerOtherStatusIsError(t *testing.T) {
	panel := &fakePanel{t: t, deleteCode: http.StatusBadGateway}
	srv := httptest.NewServer(panel.handler())
	defer srv.Close()

	err := newTestClient(srv.URL).DeleteServer(context.Background(), 42)
	var provisionErr *ProvisionError
	require.ErrorAs(t, err, &provisionErr)
}
