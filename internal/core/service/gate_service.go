package service

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/kpitools/webapps/internal/core/domain"
	"github.com/kpitools/webapps/internal/core/ports"
	"github.com/kpitools/webapps/internal/metrics"
)

// GateConfig is the auth gate's construction-time configuration. Disabled is
// an explicit operator switch (set once at startup, never mutated) that
// bypasses the whole gate for local development.
type GateConfig struct {
	Disabled     bool
	CallbackPath string
	// AuthURL is the identity provider's login console, read from
	// configuration; invalid or role-less tokens are redirected here.
	AuthURL string
}

// GateService evaluates dashboard requests into a Decision.
type GateService struct {
	idms   ports.IdentityProvider
	tokens ports.TokenRepository
	cfg    GateConfig
	log    zerolog.Logger
}

func NewGateService(idms ports.IdentityProvider, tokens ports.TokenRepository, cfg GateConfig, log zerolog.Logger) *GateService {
	if cfg.CallbackPath == "" {
		cfg.CallbackPath = "/access"
	}
	return &GateService{idms: idms, tokens: tokens, cfg: cfg, log: log}
}

// Authorize runs the gate algorithm, in order: disable switch, external login
// callback, cookie presence, external token validation, role lookup. The role
// is re-derived from the credential store on every call; it is never cached
// between requests.
func (g *GateService) Authorize(ctx context.Context, req ports.AccessRequest) domain.Decision {
	decision := g.authorize(ctx, req)
	metrics.GateDecisionsTotal.WithLabelValues(decision.Kind.String()).Inc()
	return decision
}

func (g *GateService) authorize(ctx context.Context, req ports.AccessRequest) domain.Decision {
	if g.cfg.Disabled {
		return domain.Decision{Kind: domain.DecisionAuthorized}
	}

	if req.Path == g.cfg.CallbackPath {
		return g.completeExternalLogin(ctx, req.Code)
	}

	if req.AuthToken == "" || req.Username == "" {
		return domain.Decision{Kind: domain.DecisionLoginRequired}
	}

	valid, err := g.idms.Validate(ctx, req.AuthToken)
	if err != nil {
		g.log.Warn().Err(err).Str("username", req.Username).Msg("token validation call failed")
		valid = false
	}
	if !valid {
		return domain.Decision{Kind: domain.DecisionInvalidToken, RedirectURL: g.cfg.AuthURL}
	}

	stored, err := g.tokens.FindByToken(ctx, req.AuthToken)
	if err != nil {
		if !errors.Is(err, domain.ErrTokenNotFound) {
			g.log.Error().Err(err).Str("username", req.Username).Msg("role lookup failed")
		}
		return domain.Decision{Kind: domain.DecisionNoRole, RedirectURL: g.cfg.AuthURL}
	}
	if stored.Role == "" {
		return domain.Decision{Kind: domain.DecisionNoRole, RedirectURL: g.cfg.AuthURL}
	}

	return domain.Decision{Kind: domain.DecisionAuthorized, Role: stored.Role}
}

// completeExternalLogin redeems the callback code, persists the issued token
// with its username and role, and instructs the handler to set cookies and
// send the browser home.
func (g *GateService) completeExternalLogin(ctx context.Context, code string) domain.Decision {
	grant, err := g.idms.Exchange(ctx, code)
	if err != nil {
		g.log.Warn().Err(err).Msg("external login exchange failed")
		return domain.Decision{Kind: domain.DecisionInvalidToken, RedirectURL: g.cfg.AuthURL}
	}

	token := &domain.AuthToken{
		Token:     grant.Token,
		Username:  grant.Username,
		Role:      grant.Role,
		CreatedAt: time.Now().UTC(),
	}
	if err := g.tokens.Save(ctx, token); err != nil {
		g.log.Error().Err(err).Str("username", grant.Username).Msg("persisting auth token failed")
		return domain.Decision{Kind: domain.DecisionInvalidToken, RedirectURL: g.cfg.AuthURL}
	}

	g.log.Info().Str("username", grant.Username).Msg("external login completed")
	return domain.Decision{
		Kind:      domain.DecisionLoginCompleted,
		AuthToken: grant.Token,
		Username:  grant.Username,
	}
}
