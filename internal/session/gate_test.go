package session

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	redislib "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/chifaexpress/storefront-backend/pkg/auth"
	"github.com/chifaexpress/storefront-backend/pkg/config"
	"github.com/chifaexpress/storefront-backend/pkg/db/models"
	"github.com/chifaexpress/storefront-backend/pkg/enums"
	pkgerrors "github.com/chifaexpress/storefront-backend/pkg/errors"
)

type fakeUsers struct {
	users map[uuid.UUID]*models.User
}

func (f *fakeUsers) FindByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return u, nil
}

type fakeSessions struct {
	active map[string]bool
}

func (f *fakeSessions) HasSession(_ context.Context, accessID string) (bool, error) {
	return f.active[accessID], nil
}

type fakeIntentKV struct {
	values map[string]string
}

func newFakeIntentKV() *fakeIntentKV {
	return &fakeIntentKV{values: map[string]string{}}
}

func (f *fakeIntentKV) Set(_ context.Context, key string, value any, _ time.Duration) error {
	f.values[key] = value.(string)
	return nil
}

func (f *fakeIntentKV) Get(_ context.Context, key string) (string, error) {
	v, ok := f.values[key]
	if !ok {
		return "", redislib.Nil
	}
	return v, nil
}

func (f *fakeIntentKV) Del(_ context.Context, keys ...string) error {
	for _, k := range keys {
		delete(f.values, k)
	}
	return nil
}

func (f *fakeIntentKV) CheckoutIntentKey(sessionID string) string {
	return "test:intent:checkout:" + sessionID
}

type gateFixture struct {
	gate     *Gate
	users    *fakeUsers
	sessions *fakeSessions
	kv       *fakeIntentKV
	jwtCfg   config.JWTConfig
}

func newGateFixture(t *testing.T) *gateFixture {
	t.Helper()

	jwtCfg := config.JWTConfig{
		Secret:            "test-secret",
		Issuer:            "chifa-test",
		ExpirationMinutes: 15,
	}
	users := &fakeUsers{users: map[uuid.UUID]*models.User{}}
	sessions := &fakeSessions{active: map[string]bool{}}
	kv := newFakeIntentKV()

	intents, err := NewIntentStore(kv, kv, 30*time.Minute)
	require.NoError(t, err)

	gate, err := NewGate(jwtCfg, users, sessions, intents)
	require.NoError(t, err)

	return &gateFixture{gate: gate, users: users, sessions: sessions, kv: kv, jwtCfg: jwtCfg}
}

func (f *gateFixture) addUser(t *testing.T, fullName string, role enums.UserRole, active bool) (*models.User, string) {
	t.Helper()

	user := &models.User{
		ID:       uuid.New(),
		Email:    "user@example.com",
		FullName: fullName,
		Role:     role,
		IsActive: active,
	}
	f.users.users[user.ID] = user

	accessID := uuid.NewString()
	f.sessions.active[accessID] = true

	token, err := auth.MintAccessToken(f.jwtCfg, time.Now(), auth.AccessTokenPayload{
		UserID: user.ID,
		Role:   role,
		JTI:    accessID,
	})
	require.NoError(t, err)
	return user, token
}

func TestRequireSessionResolvesIdentity(t *testing.T) {
	t.Parallel()

	f := newGateFixture(t)
	user, token := f.addUser(t, "Ana Torres", enums.UserRoleCustomer, true)

	identity, err := f.gate.RequireSession(context.Background(), token)
	require.NoError(t, err)
	require.Equal(t, user.ID, identity.UserID)
	require.Equal(t, "Ana Torres", identity.Profile.FullName)
	require.True(t, identity.Capabilities.Has(enums.CapabilityPlaceOrders))
	require.False(t, identity.Capabilities.Has(enums.CapabilityManageProducts))
}

func TestRequireSessionRejectsMissingToken(t *testing.T) {
	t.Parallel()

	f := newGateFixture(t)
	_, err := f.gate.RequireSession(context.Background(), "")
	require.Equal(t, pkgerrors.CodeUnauthorized, pkgerrors.As(err).Code())
}

func TestRequireSessionRejectsRevokedSession(t *testing.T) {
	t.Parallel()

	f := newGateFixture(t)
	_, token := f.addUser(t, "Ana", enums.UserRoleCustomer, true)

	for k := range f.sessions.active {
		f.sessions.active[k] = false
	}

	_, err := f.gate.RequireSession(context.Background(), token)
	require.Equal(t, pkgerrors.CodeUnauthorized, pkgerrors.As(err).Code())
}

func TestRequireSessionRejectsDisabledAccount(t *testing.T) {
	t.Parallel()

	f := newGateFixture(t)
	_, token := f.addUser(t, "Ana", enums.UserRoleCustomer, false)

	_, err := f.gate.RequireSession(context.Background(), token)
	require.Equal(t, pkgerrors.CodeUnauthorized, pkgerrors.As(err).Code())
}

func TestRequireSessionAppliesProfileDefaults(t *testing.T) {
	t.Parallel()

	f := newGateFixture(t)
	_, token := f.addUser(t, "   ", enums.UserRoleCustomer, true)

	identity, err := f.gate.RequireSession(context.Background(), token)
	require.NoError(t, err)
	require.Equal(t, DefaultDisplayName, identity.Profile.FullName)
	require.Empty(t, identity.Profile.Phone)
	require.Empty(t, identity.Profile.Address)
}

func TestRequireCapabilityDistinguishesRoles(t *testing.T) {
	t.Parallel()

	f := newGateFixture(t)
	_, adminToken := f.addUser(t, "Admin", enums.UserRoleAdmin, true)

	identity, err := f.gate.RequireSession(context.Background(), adminToken)
	require.NoError(t, err)

	require.NoError(t, f.gate.RequireCapability(identity, enums.CapabilityManageOrders))
	err = f.gate.RequireCapability(identity, enums.CapabilityManageUsers)
	require.Equal(t, pkgerrors.CodeForbidden, pkgerrors.As(err).Code())
}

func TestCheckoutIntentRoundTrip(t *testing.T) {
	t.Parallel()

	f := newGateFixture(t)
	ctx := context.Background()

	require.NoError(t, f.gate.RecordCheckoutIntent(ctx, "visitor-1", "/checkout"))

	intent, err := f.gate.TakeCheckoutIntent(ctx, "visitor-1")
	require.NoError(t, err)
	require.NotNil(t, intent)
	require.Equal(t, "/checkout", intent.ResumePath)

	again, err := f.gate.TakeCheckoutIntent(ctx, "visitor-1")
	require.NoError(t, err)
	require.Nil(t, again, "intent should be consumed")
}

func TestTakeUnknownIntentIsNil(t *testing.T) {
	t.Parallel()

	f := newGateFixture(t)
	intent, err := f.gate.TakeCheckoutIntent(context.Background(), "nobody")
	require.NoError(t, err)
	require.Nil(t, intent)
}
