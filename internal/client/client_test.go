package client_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Samsoniteyd/newtailor/internal/client"
	"github.com/Samsoniteyd/newtailor/internal/config"
	"github.com/Samsoniteyd/newtailor/internal/database"
	"github.com/Samsoniteyd/newtailor/internal/models"
	"github.com/Samsoniteyd/newtailor/internal/router"
)

// newTestServer spins up the real API on an ephemeral port.
func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{
		Server: config.ServerConfig{Mode: gin.TestMode},
		Database: config.DatabaseConfig{
			Path: filepath.Join(t.TempDir(), "test.db"),
		},
		JWT:      config.JWTConfig{Secret: "test-secret", ExpireHours: 1},
		Security: config.SecurityConfig{BcryptCost: 4},
		App:      config.AppSubConfig{PageSize: 20},
	}

	db, err := database.Init(cfg.Database)
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db))

	srv := httptest.NewServer(router.Setup(cfg, db))
	t.Cleanup(srv.Close)
	return srv
}

func TestClient_RegisterStoresToken(t *testing.T) {
	srv := newTestServer(t)
	c := client.New(srv.URL)

	require.False(t, c.Authenticated())

	user, err := c.Register(context.Background(), client.RegisterInput{
		Name: "Ada", Email: "ada@x.com", Password: "secret1",
	})
	require.NoError(t, err)
	assert.Equal(t, "Ada", user.Name)
	assert.True(t, c.Authenticated())

	// the stored token authenticates the next call without further setup
	profile, err := c.Profile(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Ada", profile.Name)
}

func TestClient_LoginAndLogout(t *testing.T) {
	srv := newTestServer(t)
	c := client.New(srv.URL)

	_, err := c.Register(context.Background(), client.RegisterInput{
		Name: "Ada", Email: "ada@x.com", Password: "secret1",
	})
	require.NoError(t, err)

	// logout is purely local
	c.Logout()
	assert.False(t, c.Authenticated())

	_, err = c.Login(context.Background(), client.LoginInput{
		Email: "ada@x.com", Password: "secret1",
	})
	require.NoError(t, err)
	assert.True(t, c.Authenticated())
}

func TestClient_LoginFailureKeepsNoSession(t *testing.T) {
	srv := newTestServer(t)

	var redirected bool
	c := client.New(srv.URL, client.WithUnauthorizedHandler(func() { redirected = true }))

	_, err := c.Login(context.Background(), client.LoginInput{
		Email: "nobody@x.com", Password: "secret1",
	})
	require.Error(t, err)
	assert.True(t, client.IsUnauthorized(err))

	// a 401 from the login endpoint means wrong credentials, not a dead
	// session: no purge, no redirect
	assert.False(t, redirected)

	apiErr, ok := err.(*client.APIError)
	require.True(t, ok)
	assert.Equal(t, "invalid credentials", apiErr.Message)
}

func TestClient_UnauthorizedPurgesSession(t *testing.T) {
	srv := newTestServer(t)

	var redirected bool
	store := client.NewMemoryStore()
	c := client.New(srv.URL,
		client.WithTokenStore(store),
		client.WithUnauthorizedHandler(func() { redirected = true }),
	)

	// a stale or forged token on a protected route
	store.SetToken("not-a-real-token")

	_, err := c.Profile(context.Background())
	require.Error(t, err)
	assert.True(t, client.IsUnauthorized(err))

	// global interception: token purged, login redirect fired
	assert.Empty(t, store.Token())
	assert.True(t, redirected)
}

func TestClient_NetworkErrorDistinguished(t *testing.T) {
	// a server that is not there at all
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	c := client.New(srv.URL)
	_, err := c.Profile(context.Background())
	require.Error(t, err)

	netErr, ok := err.(*client.NetworkError)
	require.True(t, ok, "expected *NetworkError, got %T", err)
	assert.False(t, client.IsUnauthorized(err))
	assert.Contains(t, netErr.Error(), "cannot reach server")
}

func TestClient_TimeoutFlagged(t *testing.T) {
	slow := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(500 * time.Millisecond)
	}))
	t.Cleanup(slow.Close)

	c := client.New(slow.URL, client.WithTimeout(50*time.Millisecond))
	_, err := c.Profile(context.Background())
	require.Error(t, err)

	netErr, ok := err.(*client.NetworkError)
	require.True(t, ok, "expected *NetworkError, got %T", err)
	assert.True(t, netErr.Timeout)
}

func TestClient_ValidationErrorSurfaced(t *testing.T) {
	srv := newTestServer(t)
	c := client.New(srv.URL)

	_, err := c.Register(context.Background(), client.RegisterInput{
		Name: "Ada", Email: "ada@x.com", Password: "123",
	})
	require.Error(t, err)

	apiErr, ok := err.(*client.APIError)
	require.True(t, ok)
	assert.Equal(t, http.StatusBadRequest, apiErr.Status)
	assert.Contains(t, apiErr.Fields, "password")
}

func TestClient_RequisitionLifecycle(t *testing.T) {
	srv := newTestServer(t)
	c := client.New(srv.URL)
	ctx := context.Background()

	_, err := c.Register(ctx, client.RegisterInput{
		Name: "Ada", Email: "ada@x.com", Password: "secret1",
	})
	require.NoError(t, err)

	chest := 42.5
	created, err := c.CreateRequisition(ctx, client.RequisitionInput{
		Name:         "Chief Okafor",
		Description:  "Agbada for December wedding",
		ContactPhone: "08023456789",
		DueDate:      "2026-12-01",
		Measurements: &models.Measurements{Chest: &chest},
	})
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, created.Status)
	require.NotNil(t, created.Measurements.Chest)
	assert.Equal(t, 42.5, *created.Measurements.Chest)

	// move it through the workshop
	updated, err := c.UpdateRequisition(ctx, created.ID, client.RequisitionInput{
		Status: models.StatusInProgress,
	})
	require.NoError(t, err)
	assert.Equal(t, models.StatusInProgress, updated.Status)
	assert.Equal(t, "Chief Okafor", updated.Name)

	noted, err := c.AddNote(ctx, created.ID, "first fitting on Friday")
	require.NoError(t, err)
	require.NotEmpty(t, noted.Notes)
	assert.Equal(t, "first fitting on Friday", noted.Notes[len(noted.Notes)-1].Text)

	page, err := c.Requisitions(ctx, &client.RequisitionQuery{Status: models.StatusInProgress})
	require.NoError(t, err)
	assert.EqualValues(t, 1, page.Total)

	require.NoError(t, c.DeleteRequisition(ctx, created.ID))

	_, err = c.Requisition(ctx, created.ID)
	require.Error(t, err)
	apiErr, ok := err.(*client.APIError)
	require.True(t, ok)
	assert.Equal(t, http.StatusNotFound, apiErr.Status)
}

func TestClient_DeleteProfileClearsSession(t *testing.T) {
	srv := newTestServer(t)
	c := client.New(srv.URL)
	ctx := context.Background()

	_, err := c.Register(ctx, client.RegisterInput{
		Name: "Ada", Email: "ada@x.com", Password: "secret1",
	})
	require.NoError(t, err)

	require.NoError(t, c.DeleteProfile(ctx))
	assert.False(t, c.Authenticated())
}

func TestMemoryStore_Concurrent(t *testing.T) {
	store := client.NewMemoryStore()

	done := make(chan struct{})
	go func() {
		for i := 0; i < 1000; i++ {
			store.SetToken("t")
			store.Clear()
		}
		close(done)
	}()
	for i := 0; i < 1000; i++ {
		_ = store.Token()
	}
	<-done
}
