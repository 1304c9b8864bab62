package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"veganbite/internal/auth"
	"veganbite/internal/domain"
	"veganbite/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// OAuthStateTTL bounds how long a sign-in may take between redirect and callback.
const OAuthStateTTL = 10 * time.Minute

var (
	ErrInvalidOAuthState = errors.New("invalid or expired oauth state")
	ErrNotAdmin          = errors.New("google account is not an admin")
)

// LoginResult is a freshly issued session token.
type LoginResult struct {
	Token     string
	Principal domain.Principal
	ExpiresAt time.Time
}

// AuthService signs principals in through Google and resolves bearer tokens.
type AuthService interface {
	// LoginURL returns the Google consent URL for the audience.
	LoginURL(ctx context.Context, audience domain.PrincipalKind) (string, error)
	// CompleteLogin validates state, exchanges the code and issues a token.
	CompleteLogin(ctx context.Context, audience domain.PrincipalKind, state, code string) (*LoginResult, error)
	// Resolve turns a bearer token into a session. Any token problem is ErrUnauthorized.
	Resolve(ctx context.Context, token string) (*domain.Session, error)
	Logout(ctx context.Context, session *domain.Session) error
}

type authService struct {
	tokens       *auth.TokenManager
	identity     auth.IdentityProvider
	sessions     repository.SessionRepository
	customerRepo repository.CustomerRepository
	adminRepo    repository.AdminRepository
	logger       *zap.Logger
	now          func() time.Time
}

// NewAuthService creates a new instance of AuthService
func NewAuthService(
	tokens *auth.TokenManager,
	identity auth.IdentityProvider,
	sessions repository.SessionRepository,
	customerRepo repository.CustomerRepository,
	adminRepo repository.AdminRepository,
	logger *zap.Logger,
) AuthService {
	return &authService{
		tokens:       tokens,
		identity:     identity,
		sessions:     sessions,
		customerRepo: customerRepo,
		adminRepo:    adminRepo,
		logger:       logger,
		now:          time.Now,
	}
}

func (s *authService) LoginURL(ctx context.Context, audience domain.PrincipalKind) (string, error) {
	state := uuid.NewString()
	if err := s.sessions.SaveOAuthState(ctx, state, string(audience), OAuthStateTTL); err != nil {
		return "", fmt.Errorf("failed to save oauth state: %w", err)
	}
	return s.identity.AuthCodeURL(audience, state), nil
}

func (s *authService) CompleteLogin(ctx context.Context, audience domain.PrincipalKind, state, code string) (result *LoginResult, err error) {
	defer func() { loginsTotal.WithLabelValues(string(audience), outcome(err)).Inc() }()

	if state == "" || code == "" {
		return nil, ErrInvalidOAuthState
	}

	stored, err := s.sessions.ConsumeOAuthState(ctx, state)
	if err != nil {
		if errors.Is(err, repository.ErrOAuthStateNotFound) {
			return nil, ErrInvalidOAuthState
		}
		return nil, fmt.Errorf("failed to read oauth state: %w", err)
	}
	if stored != string(audience) {
		return nil, ErrInvalidOAuthState
	}

	profile, err := s.identity.Exchange(ctx, audience, code)
	if err != nil {
		return nil, err
	}

	var principal domain.Principal
	switch audience {
	case domain.PrincipalCustomer:
		customer := &domain.Customer{
			GoogleID: profile.ID,
			Name:     profile.Name,
			Email:    profile.Email,
			Avatar:   profile.Picture,
		}
		if err := s.customerRepo.UpsertByGoogleID(ctx, customer); err != nil {
			return nil, fmt.Errorf("failed to sign in customer: %w", err)
		}
		principal = domain.CustomerPrincipal{Customer: customer}
	case domain.PrincipalAdmin:
		admin, err := s.adminRepo.FindByGoogleIDOrEmail(ctx, profile.ID, profile.Email)
		if err != nil {
			if errors.Is(err, repository.ErrAdminNotFound) {
				s.logger.Warn("Admin sign-in rejected", zap.String("email", profile.Email))
				return nil, ErrNotAdmin
			}
			return nil, fmt.Errorf("failed to find admin: %w", err)
		}
		admin.GoogleID = &profile.ID
		admin.Name = profile.Name
		admin.Avatar = profile.Picture
		if err := s.adminRepo.LinkGoogleProfile(ctx, admin); err != nil {
			return nil, fmt.Errorf("failed to link admin profile: %w", err)
		}
		principal = domain.AdminPrincipal{Admin: admin}
	default:
		return nil, fmt.Errorf("unknown audience %q", audience)
	}

	token, claims, err := s.tokens.Issue(principal.Kind(), principal.ID())
	if err != nil {
		return nil, err
	}

	s.logger.Info("Signed in",
		zap.String("kind", string(principal.Kind())),
		zap.Int64("principal_id", principal.ID()),
	)
	return &LoginResult{Token: token, Principal: principal, ExpiresAt: claims.ExpiresAt.Time}, nil
}

func (s *authService) Resolve(ctx context.Context, token string) (*domain.Session, error) {
	claims, err := s.tokens.Parse(token)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnauthorized, err)
	}

	revoked, err := s.sessions.IsRevoked(ctx, claims.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to check token revocation: %w", err)
	}
	if revoked {
		return nil, fmt.Errorf("%w: token revoked", ErrUnauthorized)
	}

	id, err := claims.PrincipalID()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnauthorized, err)
	}

	var principal domain.Principal
	switch claims.Kind {
	case domain.PrincipalCustomer:
		customer, err := s.customerRepo.FindByID(ctx, id)
		if err != nil {
			return nil, s.principalLookupError(err)
		}
		principal = domain.CustomerPrincipal{Customer: customer}
	case domain.PrincipalAdmin:
		admin, err := s.adminRepo.FindByID(ctx, id)
		if err != nil {
			return nil, s.principalLookupError(err)
		}
		principal = domain.AdminPrincipal{Admin: admin}
	default:
		return nil, ErrUnauthorized
	}

	return &domain.Session{Principal: principal, TokenID: claims.ID, ExpiresAt: claims.ExpiresAt.Time}, nil
}

// Logout revokes the session's token until it would have expired anyway.
func (s *authService) Logout(ctx context.Context, session *domain.Session) error {
	if session == nil {
		return ErrUnauthorized
	}
	if err := s.sessions.Revoke(ctx, session.TokenID, session.ExpiresAt.Sub(s.now())); err != nil {
		return fmt.Errorf("failed to revoke session: %w", err)
	}
	return nil
}

func (s *authService) principalLookupError(err error) error {
	if IsNotFound(err) {
		return fmt.Errorf("%w: principal no longer exists", ErrUnauthorized)
	}
	return fmt.Errorf("failed to load principal: %w", err)
}
