package session

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/chifaexpress/storefront-backend/pkg/auth"
	authsession "github.com/chifaexpress/storefront-backend/pkg/auth/session"
	"github.com/chifaexpress/storefront-backend/pkg/config"
	"github.com/chifaexpress/storefront-backend/pkg/db/models"
	"github.com/chifaexpress/storefront-backend/pkg/enums"
	pkgerrors "github.com/chifaexpress/storefront-backend/pkg/errors"
)

// DefaultDisplayName is used on orders when the profile has no name on file.
const DefaultDisplayName = "Cliente"

// Profile is the minimal snapshot copied onto an order. Missing fields are
// replaced with defaults instead of failing the flow.
type Profile struct {
	FullName string
	Phone    string
	Address  string
}

// Identity is the authenticated caller as seen by the rest of the system.
type Identity struct {
	UserID       uuid.UUID
	AccessID     string
	Role         enums.UserRole
	Capabilities enums.CapabilitySet
	Profile      Profile
}

// ProfileID returns the key under which per-profile state (cart, locks) lives.
func (i *Identity) ProfileID() string {
	return i.UserID.String()
}

type userLoader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

// Gate verifies an authenticated identity before sensitive operations proceed.
type Gate struct {
	jwtCfg   config.JWTConfig
	users    userLoader
	sessions authsession.AccessSessionChecker
	intents  *IntentStore
}

// NewGate builds the session gate.
func NewGate(jwtCfg config.JWTConfig, users userLoader, sessions authsession.AccessSessionChecker, intents *IntentStore) (*Gate, error) {
	if users == nil {
		return nil, fmt.Errorf("user loader required")
	}
	if sessions == nil {
		return nil, fmt.Errorf("session checker required")
	}
	if intents == nil {
		return nil, fmt.Errorf("intent store required")
	}
	return &Gate{jwtCfg: jwtCfg, users: users, sessions: sessions, intents: intents}, nil
}

// RequireSession resolves the bearer token into an Identity. Any failure is
// reported as an authentication error; callers must not proceed with checkout.
func (g *Gate) RequireSession(ctx context.Context, bearerToken string) (*Identity, error) {
	token := strings.TrimSpace(bearerToken)
	if token == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}

	claims, err := auth.ParseAccessToken(g.jwtCfg, token)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid access token")
	}

	active, err := g.sessions.HasSession(ctx, claims.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check session")
	}
	if !active {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "session expired")
	}

	user, err := g.users.FindByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "account not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load account")
	}
	if !user.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "account disabled")
	}

	return &Identity{
		UserID:       user.ID,
		AccessID:     claims.ID,
		Role:         user.Role,
		Capabilities: enums.CapabilitiesForRole(user.Role),
		Profile:      profileSnapshot(user),
	}, nil
}

// RequireCapability rejects identities lacking the given capability.
func (g *Gate) RequireCapability(identity *Identity, capability enums.Capability) error {
	if identity == nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	if !identity.Capabilities.Has(capability) {
		return pkgerrors.New(pkgerrors.CodeForbidden, "insufficient permissions")
	}
	return nil
}

// RecordCheckoutIntent remembers that an anonymous visitor tried to check
// out, so the flow can resume after they authenticate.
func (g *Gate) RecordCheckoutIntent(ctx context.Context, visitorID, resumePath string) error {
	return g.intents.Record(ctx, visitorID, resumePath)
}

// TakeCheckoutIntent returns and consumes a previously recorded intent.
func (g *Gate) TakeCheckoutIntent(ctx context.Context, visitorID string) (*Intent, error) {
	return g.intents.Take(ctx, visitorID)
}

func profileSnapshot(user *models.User) Profile {
	profile := Profile{FullName: strings.TrimSpace(user.FullName)}
	if profile.FullName == "" {
		profile.FullName = DefaultDisplayName
	}
	if user.Phone != nil {
		profile.Phone = strings.TrimSpace(*user.Phone)
	}
	if user.Address != nil {
		profile.Address = strings.TrimSpace(*user.Address)
	}
	return profile
}
