package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/somos-tech/profile-service/internal/config"
	"github.com/somos-tech/profile-service/internal/domain"
	"github.com/somos-tech/profile-service/internal/registry"
)

// RoleCache is the optional read-through cache consulted before the
// registry race.
type RoleCache interface {
	Get(ctx context.Context, email string) ([]string, bool)
	Set(ctx context.Context, email string, roles []string)
}

// RoleResolver derives the role set for an authenticated principal,
// lazily provisioning the admin registry. ResolveRoles never returns an
// error: every internal failure degrades to a safe role set.
type RoleResolver struct {
	registry      registry.Registry
	cache         RoleCache
	trustedDomain string
	timeout       time.Duration
	logger        *zap.Logger
}

// NewRoleResolver builds the resolver. cache may be nil.
func NewRoleResolver(reg registry.Registry, cache RoleCache, cfg config.AuthConfig, logger *zap.Logger) *RoleResolver {
	return &RoleResolver{
		registry:      reg,
		cache:         cache,
		trustedDomain: cfg.TrustedDomain,
		timeout:       cfg.RegistryTimeout(),
		logger:        logger,
	}
}

type lookupResult struct {
	user *domain.AdminUser
	err  error
}

// ResolveRoles returns the deduplicated role set for the principal.
//
// Untrusted callers never touch the registry. Trusted callers race the
// registry lookup against the timeout; on timeout or error the resolver
// fails open and grants admin. Anyone who has cleared the domain-trust
// check is entitled to administrative access, and registry unavailability
// must not lock out operators.
func (r *RoleResolver) ResolveRoles(ctx context.Context, p *domain.Principal) []string {
	if p == nil || p.Email == "" {
		return []string{}
	}
	if !p.HasTrustedDomain(r.trustedDomain) {
		return []string{}
	}
	email := strings.ToLower(p.Email)

	if r.cache != nil {
		if roles, ok := r.cache.Get(ctx, email); ok && len(roles) > 0 {
			return dedupe(roles)
		}
	}

	roles := []string{domain.RoleAuthenticated}

	// The lookup runs on a context detached from the request so the
	// abandoned loser of the race can still finish its writes late;
	// provisioning is idempotent by email.
	detached := context.WithoutCancel(ctx)
	ch := make(chan lookupResult, 1)
	go func() {
		defer r.recoverDetached("registry lookup")
		user, err := r.registry.FindByEmail(detached, email)
		ch <- lookupResult{user: user, err: err}
	}()

	timer := time.NewTimer(r.timeout)
	defer timer.Stop()

	select {
	case res := <-ch:
		roles = r.applyLookup(detached, p, email, res, roles)
	case <-timer.C:
		r.logger.Warn("registry lookup timed out, failing open",
			zap.String("email", email),
			zap.Duration("timeout", r.timeout))
		roles = append(roles, domain.RoleAdmin)
	}

	return dedupe(roles)
}

func (r *RoleResolver) applyLookup(detached context.Context, p *domain.Principal, email string, res lookupResult, roles []string) []string {
	switch {
	case res.err == nil:
		if len(res.user.Roles) > 0 {
			roles = append(roles, res.user.Roles...)
		} else {
			// Self-heal malformed records: an active admin record must
			// never carry an empty role set.
			roles = append(roles, domain.RoleAdmin)
			go r.repairRoles(detached, res.user)
		}
		go r.touchLastLogin(detached, email)
		if r.cache != nil {
			resolved := dedupe(roles)
			go func() {
				defer r.recoverDetached("role cache fill")
				r.cache.Set(detached, email, resolved)
			}()
		}
	case errors.Is(res.err, pgx.ErrNoRows):
		roles = append(roles, domain.RoleAdmin)
		go r.autoProvision(detached, p, email)
	default:
		r.logger.Warn("registry lookup failed, failing open",
			zap.String("email", email),
			zap.Error(res.err))
		roles = append(roles, domain.RoleAdmin)
	}
	return roles
}

// autoProvision creates the first-login registry record in the background.
// The caller already has its role set; provisioning latency and failure
// never reach the response.
func (r *RoleResolver) autoProvision(ctx context.Context, p *domain.Principal, email string) {
	defer r.recoverDetached("auto provision")

	user := &domain.AdminUser{
		Email:            email,
		Roles:            []string{domain.RoleAdmin, domain.RoleAuthenticated},
		Status:           domain.AdminStatusActive,
		IdentityProvider: p.IdentityProvider,
	}
	if err := r.registry.Create(ctx, user); err != nil {
		if errors.Is(err, registry.ErrDuplicateEmail) {
			r.logger.Debug("admin user already provisioned", zap.String("email", email))
			return
		}
		r.logger.Warn("auto provisioning failed", zap.String("email", email), zap.Error(err))
		return
	}
	r.logger.Info("auto provisioned admin user", zap.String("email", email))
}

func (r *RoleResolver) repairRoles(ctx context.Context, user *domain.AdminUser) {
	defer r.recoverDetached("role repair")

	repaired := *user
	repaired.Roles = []string{domain.RoleAdmin, domain.RoleAuthenticated}
	if err := r.registry.Upsert(ctx, &repaired); err != nil {
		r.logger.Warn("role repair failed", zap.String("email", user.Email), zap.Error(err))
	}
}

func (r *RoleResolver) touchLastLogin(ctx context.Context, email string) {
	defer r.recoverDetached("last login touch")

	if err := r.registry.TouchLastLogin(ctx, email, time.Now().UTC()); err != nil {
		r.logger.Debug("last login touch failed", zap.String("email", email), zap.Error(err))
	}
}

// recoverDetached keeps panics in fire-and-forget goroutines from ever
// reaching the request.
func (r *RoleResolver) recoverDetached(op string) {
	if rec := recover(); rec != nil {
		r.logger.Error("panic in detached operation", zap.String("op", op), zap.Any("panic", rec))
	}
}

func dedupe(roles []string) []string {
	seen := make(map[string]struct{}, len(roles))
	out := make([]string, 0, len(roles))
	for _, role := range roles {
		if role == "" {
			continue
		}
		if _, ok := seen[role]; ok {
			continue
		}
		seen[role] = struct{}{}
		out = append(out, role)
	}
	return out
}
