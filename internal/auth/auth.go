// FilePath: internal/auth/auth.go

// Package auth wraps the Keycloak identity provider and the application
// profile table behind the sign-in / sign-up / sign-out surface. Auth
// events are the only writer of the session store.
package auth

import (
	"context"
	"encoding/json"
	"time"

	"github.com/Nerzal/gocloak/v13"
	"github.com/fieldworks/meterhub/internal/config"
	"github.com/fieldworks/meterhub/internal/errors"
	"github.com/fieldworks/meterhub/internal/models"
	"github.com/fieldworks/meterhub/internal/repository"
	"github.com/fieldworks/meterhub/internal/session"
	"github.com/redis/go-redis/v9"
	nuts "github.com/vaudience/go-nuts"
)

const profileCachePrefix = "meterhub:profile:"

// Service provides authentication against Keycloak plus profile
// resolution with a Redis cache in front of Postgres.
type Service struct {
	client   *gocloak.GoCloak
	cfg      config.KeycloakConfig
	profiles repository.ProfileRepository
	cache    *redis.Client
	cacheTTL time.Duration
	sessions *session.Store
}

// New creates an auth service
func New(cfg config.KeycloakConfig, profiles repository.ProfileRepository, cache *redis.Client, cacheTTL time.Duration, sessions *session.Store) *Service {
	return &Service{
		client:   gocloak.NewClient(cfg.URL),
		cfg:      cfg,
		profiles: profiles,
		cache:    cache,
		cacheTTL: cacheTTL,
		sessions: sessions,
	}
}

// SignIn performs a password-grant login, resolves the profile and
// publishes the identity to the session store.
func (a *Service) SignIn(ctx context.Context, email, password string) (*gocloak.JWT, error) {
	token, err := a.client.Login(ctx, a.cfg.ClientID, a.cfg.ClientSecret, a.cfg.Realm, email, password)
	if err != nil {
		return nil, errors.NewAuthError("invalid credentials", err)
	}

	info, err := a.client.GetUserInfo(ctx, token.AccessToken, a.cfg.Realm)
	if err != nil {
		return nil, errors.NewAuthError("failed to resolve user info", err)
	}

	profile, err := a.Profile(ctx, *info.Sub)
	if err != nil {
		return nil, err
	}

	a.sessions.Set(&session.Identity{
		ID:    profile.ID,
		Email: profile.Email,
		Name:  profile.Name,
		Role:  profile.Role,
	})

	nuts.L.Infof("[Auth] %s signed in (%s)", profile.Email, profile.Role)
	return token, nil
}

// SignUp registers a Keycloak account and its profile row. Profile
// creation tolerates a concurrent insert for the same account; every new
// account defaults to the field-agent role unless one is given.
func (a *Service) SignUp(ctx context.Context, email, password, name, role string) (*models.Profile, error) {
	if role == "" {
		role = models.RoleMedidor
	}
	if name == "" {
		name = nameFromEmail(email)
	}

	admin, err := a.client.LoginClient(ctx, a.cfg.ClientID, a.cfg.ClientSecret, a.cfg.Realm)
	if err != nil {
		return nil, errors.NewAuthError("failed to authenticate service client", err)
	}

	enabled := true
	userID, err := a.client.CreateUser(ctx, admin.AccessToken, a.cfg.Realm, gocloak.User{
		Email:         gocloak.StringP(email),
		Username:      gocloak.StringP(email),
		FirstName:     gocloak.StringP(name),
		Enabled:       &enabled,
		EmailVerified: &enabled,
	})
	if err != nil {
		return nil, errors.NewAuthError("failed to create account", err)
	}

	if err := a.client.SetPassword(ctx, admin.AccessToken, userID, a.cfg.Realm, password, false); err != nil {
		return nil, errors.NewAuthError("failed to set password", err)
	}

	now := time.Now()
	profile := &models.Profile{
		ID:        userID,
		Email:     email,
		Name:      name,
		Role:      role,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := a.profiles.Create(ctx, profile); err != nil {
		return nil, err
	}

	nuts.L.Infof("[Auth] Registered %s as %s", email, role)
	return profile, nil
}

// SignOut revokes the refresh token and clears the session store.
func (a *Service) SignOut(ctx context.Context, refreshToken string) error {
	if err := a.client.Logout(ctx, a.cfg.ClientID, a.cfg.ClientSecret, a.cfg.Realm, refreshToken); err != nil {
		return errors.NewAuthError("failed to sign out", err)
	}
	a.sessions.Clear()
	return nil
}

// Introspect validates an access token and returns the matching profile.
func (a *Service) Introspect(ctx context.Context, accessToken string) (*models.Profile, error) {
	result, err := a.client.RetrospectToken(ctx, accessToken, a.cfg.ClientID, a.cfg.ClientSecret, a.cfg.Realm)
	if err != nil || result.Active == nil || !*result.Active {
		return nil, errors.NewAuthError("invalid token", err)
	}

	info, err := a.client.GetUserInfo(ctx, accessToken, a.cfg.Realm)
	if err != nil {
		return nil, errors.NewAuthError("failed to resolve user info", err)
	}

	return a.Profile(ctx, *info.Sub)
}

// Profile resolves a profile by user id through the Redis cache, falling
// back to Postgres on a miss. Cache failures degrade to the database.
func (a *Service) Profile(ctx context.Context, userID string) (*models.Profile, error) {
	key := profileCachePrefix + userID

	if a.cache != nil {
		if raw, err := a.cache.Get(ctx, key).Result(); err == nil {
			profile := &models.Profile{}
			if err := json.Unmarshal([]byte(raw), profile); err == nil {
				return profile, nil
			}
		} else if err != redis.Nil {
			nuts.L.Warnf("[Auth] Profile cache read failed: %v", err)
		}
	}

	profile, err := a.profiles.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	if a.cache != nil {
		if raw, err := json.Marshal(profile); err == nil {
			if err := a.cache.Set(ctx, key, raw, a.cacheTTL).Err(); err != nil {
				nuts.L.Warnf("[Auth] Profile cache write failed: %v", err)
			}
		}
	}
	return profile, nil
}

func nameFromEmail(email string) string {
	for i, c := range email {
		if c == '@' {
			return email[:i]
		}
	}
	return email
}
