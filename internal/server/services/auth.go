package services

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/dmitrijs2005/slothapp/internal/common"
	"github.com/dmitrijs2005/slothapp/internal/logging"
	"github.com/dmitrijs2005/slothapp/internal/server/auth"
	"github.com/dmitrijs2005/slothapp/internal/server/models"
	"github.com/dmitrijs2005/slothapp/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/slothapp/internal/server/session"
	"github.com/dmitrijs2005/slothapp/internal/wallet"
)

// SignupInput is a new account request signed by the wallet.
type SignupInput struct {
	Email         string
	WalletAddress string
	Signature     string
	Nonce         string
}

// LoginInput is a sign-in request signed by the wallet.
type LoginInput struct {
	WalletAddress string
	Signature     string
	Nonce         string
}

// NonceChallenge is what a client signs to start a wallet sign-in.
type NonceChallenge struct {
	Nonce     string
	Message   string
	ExpiresAt time.Time
}

// SessionToken is a stored session plus the bearer token that refers to it.
type SessionToken struct {
	Session *models.AuthSession
	Token   string
}

// AuthResult is the signed-in user with a fresh session.
type AuthResult struct {
	User *models.User
	SessionToken
}

// AuthConfig holds the token secret and validity windows. Zero durations
// fall back to the package defaults.
type AuthConfig struct {
	SessionSecret   []byte
	SessionValidity time.Duration
	NonceValidity   time.Duration
}

// AuthService implements wallet sign-up and sign-in and the session
// lifecycle: NoSession -> Active -> Expired or LoggedOut. Expiry is checked
// lazily on read.
type AuthService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	sessions    session.Store
	nonces      session.NonceStore
	cfg         AuthConfig
	log         logging.Logger
	now         func() time.Time
}

// NewAuthService constructs an AuthService over the given session and nonce
// stores.
func NewAuthService(db *sql.DB, m repomanager.RepositoryManager, sessions session.Store,
	nonces session.NonceStore, cfg AuthConfig, log logging.Logger) *AuthService {
	if cfg.SessionValidity <= 0 {
		cfg.SessionValidity = common.SessionValidity
	}
	if cfg.NonceValidity <= 0 {
		cfg.NonceValidity = common.NonceValidity
	}
	return &AuthService{
		db:          db,
		repomanager: m,
		sessions:    sessions,
		nonces:      nonces,
		cfg:         cfg,
		log:         log.With("module", "auth"),
		now:         time.Now,
	}
}

// IssueNonce records a fresh nonce for NonceValidity and returns the message
// the wallet must sign.
func (s *AuthService) IssueNonce(ctx context.Context) (*NonceChallenge, error) {
	nonce, err := wallet.GenerateAuthNonce()
	if err != nil {
		return nil, unknown(ctx, s.log, "generate nonce", err)
	}
	if err := s.nonces.Put(ctx, nonce, s.cfg.NonceValidity); err != nil {
		return nil, unknown(ctx, s.log, "store nonce", err)
	}
	return &NonceChallenge{
		Nonce:     nonce,
		Message:   wallet.GenerateAuthMessage(nonce),
		ExpiresAt: s.now().Add(s.cfg.NonceValidity),
	}, nil
}

// verifyAndConsume checks the signature first so a bad signature never
// burns a valid nonce, then consumes the nonce.
func (s *AuthService) verifyAndConsume(ctx context.Context, address, signature, nonce string) error {
	if !wallet.VerifyWalletSignature(address, signature, nonce) {
		return common.ErrInvalidSignature
	}
	ok, err := s.nonces.Consume(ctx, nonce)
	if err != nil {
		return unknown(ctx, s.log, "consume nonce", err)
	}
	if !ok {
		return common.ErrInvalidNonce
	}
	return nil
}

// Signup verifies the wallet signature, consumes the nonce, checks that
// neither the wallet nor the email is taken and creates the user together
// with a session.
func (s *AuthService) Signup(ctx context.Context, in SignupInput) (*AuthResult, error) {
	if !common.IsValidEmail(in.Email) {
		return nil, common.ErrInvalidEmail
	}
	if !wallet.IsValidAddress(in.WalletAddress) {
		return nil, common.ErrInvalidWalletAddress
	}
	if err := s.verifyAndConsume(ctx, in.WalletAddress, in.Signature, in.Nonce); err != nil {
		return nil, err
	}

	email := common.NormalizeEmail(in.Email)
	address := wallet.NormalizeAddress(in.WalletAddress)
	users := s.repomanager.Users(s.db)

	if _, err := users.GetByWallet(ctx, address); err == nil {
		return nil, common.ErrWalletExists
	} else if !errors.Is(err, common.ErrorNotFound) {
		return nil, unknown(ctx, s.log, "lookup wallet", err)
	}

	if _, err := users.GetByEmail(ctx, email); err == nil {
		return nil, common.ErrEmailExists
	} else if !errors.Is(err, common.ErrorNotFound) {
		return nil, unknown(ctx, s.log, "lookup email", err)
	}

	user, err := users.Create(ctx, &models.User{ID: newID(), Email: email, WalletAddress: address})
	if err != nil {
		if errors.Is(err, common.ErrorAlreadyExists) {
			// lost a race with a concurrent signup
			if _, werr := users.GetByWallet(ctx, address); werr == nil {
				return nil, common.ErrWalletExists
			}
			return nil, common.ErrEmailExists
		}
		return nil, unknown(ctx, s.log, "create user", err)
	}

	st, err := s.CreateSession(ctx, user)
	if err != nil {
		return nil, err
	}
	s.log.Info(ctx, "user signed up", "user_id", user.ID)
	return &AuthResult{User: user, SessionToken: *st}, nil
}

// LoginWithWallet verifies the signature, consumes the nonce and opens a
// session for the wallet's user.
func (s *AuthService) LoginWithWallet(ctx context.Context, in LoginInput) (*AuthResult, error) {
	if !wallet.IsValidAddress(in.WalletAddress) {
		return nil, common.ErrInvalidWalletAddress
	}
	if err := s.verifyAndConsume(ctx, in.WalletAddress, in.Signature, in.Nonce); err != nil {
		return nil, err
	}

	user, err := s.repomanager.Users(s.db).GetByWallet(ctx, wallet.NormalizeAddress(in.WalletAddress))
	if err != nil {
		return nil, notFoundOr(ctx, s.log, "lookup wallet", err, common.ErrWalletNotRegistered)
	}

	st, err := s.CreateSession(ctx, user)
	if err != nil {
		return nil, err
	}
	return &AuthResult{User: user, SessionToken: *st}, nil
}

// CreateSession stores a new session for user, valid for SessionValidity,
// and signs its bearer token. Every call yields a distinct session id.
func (s *AuthService) CreateSession(ctx context.Context, user *models.User) (*SessionToken, error) {
	now := s.now()
	sess := &models.AuthSession{
		ID:            newID(),
		UserID:        user.ID,
		WalletAddress: user.WalletAddress,
		ExpiresAt:     now.Add(s.cfg.SessionValidity),
		CreatedAt:     now,
	}
	if err := s.sessions.Save(ctx, sess); err != nil {
		return nil, unknown(ctx, s.log, "save session", err)
	}
	token, err := auth.GenerateToken(sess, s.cfg.SessionSecret)
	if err != nil {
		return nil, unknown(ctx, s.log, "sign session token", err)
	}
	return &SessionToken{Session: sess, Token: token}, nil
}

// GetCurrentSession resolves token to its live session. Expired, unknown or
// unparseable tokens yield ErrNoSession; a recoverable session id is cleared.
func (s *AuthService) GetCurrentSession(ctx context.Context, token string) (*models.AuthSession, error) {
	claims, err := auth.ParseToken(token, s.cfg.SessionSecret)
	if err != nil {
		if claims != nil {
			s.clear(ctx, claims.SessionID())
		}
		return nil, common.ErrNoSession
	}

	sess, err := s.sessions.Get(ctx, claims.SessionID())
	if err != nil {
		if errors.Is(err, session.ErrNotFound) {
			return nil, common.ErrNoSession
		}
		s.log.Warn(ctx, "session lookup failed", "error", err)
		return nil, common.ErrNoSession
	}

	if sess.Expired(s.now()) || sess.UserID != claims.UserID() {
		s.clear(ctx, sess.ID)
		return nil, common.ErrNoSession
	}
	return sess, nil
}

// Logout deletes the session behind token. It never fails for bad tokens.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	claims, _ := auth.ParseToken(token, s.cfg.SessionSecret)
	if claims != nil {
		s.clear(ctx, claims.SessionID())
	}
	return nil
}

// GetCurrentUser returns the user behind token. A session whose user row is
// gone is cleared and reported as ErrNoSession.
func (s *AuthService) GetCurrentUser(ctx context.Context, token string) (*models.User, error) {
	sess, err := s.GetCurrentSession(ctx, token)
	if err != nil {
		return nil, err
	}
	user, err := s.repomanager.Users(s.db).GetByID(ctx, sess.UserID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			s.clear(ctx, sess.ID)
			return nil, common.ErrNoSession
		}
		return nil, unknown(ctx, s.log, "load user", err)
	}
	return user, nil
}

// IsWalletRegistered reports whether a user is bound to address.
func (s *AuthService) IsWalletRegistered(ctx context.Context, address string) (bool, error) {
	if !wallet.IsValidAddress(address) {
		return false, common.ErrInvalidWalletAddress
	}
	_, err := s.repomanager.Users(s.db).GetByWallet(ctx, wallet.NormalizeAddress(address))
	if err == nil {
		return true, nil
	}
	if errors.Is(err, common.ErrorNotFound) {
		return false, nil
	}
	return false, unknown(ctx, s.log, "lookup wallet", err)
}

func (s *AuthService) clear(ctx context.Context, sessionID string) {
	if sessionID == "" {
		return
	}
	if err := s.sessions.Delete(ctx, sessionID); err != nil {
		s.log.Warn(ctx, "failed to delete session", "session_id", sessionID, "error", err)
	}
}
