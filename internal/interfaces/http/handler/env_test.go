package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/gin-gonic/gin"
	"github.com/salon-crm/backend/internal/application/identity"
	"github.com/salon-crm/backend/internal/domain/platform"
	"github.com/salon-crm/backend/internal/infrastructure/auth"
	"github.com/salon-crm/backend/internal/infrastructure/config"
	"github.com/salon-crm/backend/internal/infrastructure/persistence"
	"github.com/salon-crm/backend/internal/infrastructure/persistence/store"
	"github.com/salon-crm/backend/internal/interfaces/http/dto"
	"github.com/salon-crm/backend/internal/interfaces/http/middleware"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const (
	ownerEmail   = "owner@glow.test"
	testPassword = "Password123"
)

func init() {
	gin.SetMode(gin.TestMode)
	SetupValidator()
}

// testEnv is one provisioned business on in-memory stores.
type testEnv struct {
	t            *testing.T
	manager      *persistence.StoreManager
	jwt          *auth.JWTService
	blacklist    *auth.InMemoryTokenBlacklist
	provisioning *identity.ProvisioningService
	auth         *identity.AuthService
	base         BaseHandler
	business     *platform.Business
	owner        *platform.User
	token        string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	ctx := context.Background()

	registry := store.NewRegistry("salon_crm", store.NewSQLiteOpener("", persistence.GormConfig(nil)))
	manager := persistence.NewStoreManager(registry, persistence.NewModelFactory(nil))
	blacklist := auth.NewInMemoryTokenBlacklist()
	t.Cleanup(func() {
		_ = blacklist.Close()
		_ = manager.Close()
	})

	jwtService := auth.NewJWTService(config.JWTConfig{
		Secret:     "test-secret-key-32-characters-long",
		Expiration: time.Hour,
		Issuer:     "test-issuer",
	})
	env := &testEnv{
		t:            t,
		manager:      manager,
		jwt:          jwtService,
		blacklist:    blacklist,
		provisioning: identity.NewProvisioningService(manager, nil, zap.NewNop()),
		auth:         identity.NewAuthService(manager, jwtService, blacklist, identity.DefaultAuthServiceConfig(), zap.NewNop()),
		base:         NewBaseHandler(false),
	}

	created, err := env.provisioning.CreateBusiness(ctx, identity.CreateBusinessInput{
		Name:          "Glow Studio",
		Plan:          platform.BusinessPlanBasic,
		OwnerName:     "Owner",
		OwnerEmail:    ownerEmail,
		OwnerPassword: testPassword,
	})
	require.NoError(t, err)
	env.business = created.Business
	env.owner = created.Owner

	login, err := env.auth.Login(ctx, identity.LoginInput{Email: ownerEmail, Password: testPassword})
	require.NoError(t, err)
	env.token = login.AccessToken
	return env
}

// tenantGroup returns an engine and an /api group behind the auth and
// tenant middleware.
func (e *testEnv) tenantGroup() (*gin.Engine, *gin.RouterGroup) {
	r := gin.New()
	g := r.Group("/api",
		middleware.JWTAuthMiddlewareWithConfig(middleware.JWTMiddlewareConfig{
			JWTService:     e.jwt,
			TokenBlacklist: e.blacklist,
		}),
		middleware.TenantContextMiddleware(middleware.TenantMiddlewareConfig{
			Resolver:      e.manager,
			EnforceStatus: true,
		}),
	)
	return r, g
}

// apiResponse is the envelope with the payload left raw.
type apiResponse struct {
	Success    bool            `json:"success"`
	Data       json.RawMessage `json:"data"`
	Error      *dto.ErrorInfo  `json:"error"`
	Pagination *dto.Pagination `json:"pagination"`
}

func serve(t *testing.T, r http.Handler, method, path, token string, body any) (*httptest.ResponseRecorder, apiResponse) {
	t.Helper()
	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var resp apiResponse
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), w.Body.String())
	}
	return w, resp
}

func decodeData[T any](t *testing.T, resp apiResponse) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(resp.Data, &out), string(resp.Data))
	return out
}
