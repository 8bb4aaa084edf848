package usecases

import (
	"context"
	"strings"

	"store-it/internal/domain/entities"
	domainerrors "store-it/internal/domain/errors"
	"store-it/internal/domain/repositories"
	"store-it/internal/logger"
)

// SignInRedirect is where clients go after signing out.
const SignInRedirect = "/sign-in"

// AuthUseCase drives email-code sign up, sign in and sessions.
type AuthUseCase struct {
	accounts  repositories.AccountService
	users     repositories.UserRepository
	avatarURL string
}

func NewAuthUseCase(accounts repositories.AccountService, users repositories.UserRepository, avatarURL string) *AuthUseCase {
	return &AuthUseCase{accounts: accounts, users: users, avatarURL: avatarURL}
}

// NormalizeEmail trims and lower-cases an address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// SendEmailOTP emails a one-time code and returns the account it belongs to.
func (uc *AuthUseCase) SendEmailOTP(ctx context.Context, email string) (string, error) {
	email = NormalizeEmail(email)
	accountID, err := uc.accounts.SendEmailToken(ctx, email)
	if err != nil {
		logFailure(ctx, logger.EventBackendError, "Failed to send email OTP", err, map[string]any{"email": email})
		return "", domainerrors.Wrap(domainerrors.WithMessage(domainerrors.ErrBackend, "Failed to send email OTP"), err)
	}
	logger.GetLogger().InfoCtx(logger.EventOTPSent, "email OTP sent", map[string]any{"account_id": accountID},
		"", logger.RequestID(ctx), accountID)
	return accountID, nil
}

// CreateAccount sends a code to email and, the first time the address is
// seen, creates its user document. It returns the account id to verify.
func (uc *AuthUseCase) CreateAccount(ctx context.Context, email, fullName string) (string, error) {
	email = NormalizeEmail(email)
	existing, err := uc.users.GetByEmail(ctx, email)
	if err != nil {
		logFailure(ctx, logger.EventBackendError, "Failed to create account", err, map[string]any{"email": email})
		return "", domainerrors.Wrap(domainerrors.WithMessage(domainerrors.ErrBackend, "Failed to create account"), err)
	}

	accountID, err := uc.SendEmailOTP(ctx, email)
	if err != nil {
		return "", err
	}
	if accountID == "" {
		return "", domainerrors.WithMessage(domainerrors.ErrBackend, "Failed to send an OTP")
	}

	if existing == nil {
		u, err := uc.users.Create(ctx, &entities.User{
			Email:     email,
			FullName:  strings.TrimSpace(fullName),
			Avatar:    uc.avatarURL,
			AccountID: accountID,
		})
		if err != nil {
			logFailure(ctx, logger.EventBackendError, "Failed to create account", err, map[string]any{"email": email})
			return "", domainerrors.Wrap(domainerrors.WithMessage(domainerrors.ErrBackend, "Failed to create account"), err)
		}
		logger.GetLogger().InfoCtx(logger.EventAccountCreated, "account created",
			map[string]any{"user_id": u.ID, "account_id": accountID}, "", logger.RequestID(ctx), u.ID)
	}
	return accountID, nil
}

// SignIn sends a code to a known address. Unknown addresses get
// ErrUserNotFound and no email.
func (uc *AuthUseCase) SignIn(ctx context.Context, email string) (string, error) {
	email = NormalizeEmail(email)
	existing, err := uc.users.GetByEmail(ctx, email)
	if err != nil {
		logFailure(ctx, logger.EventBackendError, "Failed to sign in user", err, map[string]any{"email": email})
		return "", domainerrors.Wrap(domainerrors.WithMessage(domainerrors.ErrBackend, "Failed to sign in user"), err)
	}
	if existing == nil {
		logger.GetLogger().WarnCtx(logger.EventLogin, "sign in for unknown email", map[string]any{"email": email},
			domainerrors.ErrUserNotFound.Code, logger.RequestID(ctx), "")
		return "", domainerrors.ErrUserNotFound
	}
	if _, err := uc.SendEmailOTP(ctx, email); err != nil {
		return "", err
	}
	return existing.AccountID, nil
}

// VerifySecret exchanges an emailed code for a session. The caller stores
// the session secret in the cookie.
func (uc *AuthUseCase) VerifySecret(ctx context.Context, accountID, code string) (*entities.Session, error) {
	sess, err := uc.accounts.CreateSession(ctx, strings.TrimSpace(accountID), strings.TrimSpace(code))
	if err != nil {
		logger.GetLogger().WarnCtx(logger.EventLogin, "OTP verification failed",
			map[string]any{"account_id": accountID, "error": err.Error()},
			domainerrors.ErrInvalidOTP.Code, logger.RequestID(ctx), accountID)
		return nil, domainerrors.Wrap(domainerrors.ErrInvalidOTP, err)
	}
	logger.GetLogger().InfoCtx(logger.EventLogin, "session created", map[string]any{"session_id": sess.ID},
		"", logger.RequestID(ctx), sess.AccountID)
	return sess, nil
}

// CurrentUser resolves the user document behind a session secret. Any
// failure is logged and reported as no user (nil, nil).
func (uc *AuthUseCase) CurrentUser(ctx context.Context, secret string) (*entities.User, error) {
	if secret == "" {
		return nil, nil
	}
	acct, err := uc.accounts.Current(ctx, secret)
	if err != nil {
		logger.GetLogger().WarnCtx(logger.EventAuthError, "session lookup failed", map[string]any{"error": err.Error()},
			domainerrors.ErrNoSession.Code, logger.RequestID(ctx), "")
		return nil, nil
	}
	u, err := uc.users.GetByAccountID(ctx, acct.ID)
	if err != nil {
		logFailure(ctx, logger.EventBackendError, "user lookup failed", err, map[string]any{"account_id": acct.ID})
		return nil, nil
	}
	return u, nil
}

// SignOut ends the backend session. Failures are logged only: the caller
// clears the cookie and redirects regardless.
func (uc *AuthUseCase) SignOut(ctx context.Context, secret string) string {
	if secret != "" {
		if err := uc.accounts.DeleteCurrentSession(ctx, secret); err != nil {
			logFailure(ctx, logger.EventBackendError, "Failed to sign out user", err, nil)
		}
	}
	logger.GetLogger().InfoCtx(logger.EventLogout, "user signed out", nil, "", logger.RequestID(ctx), logger.Actor(ctx))
	return SignInRedirect
}

func logFailure(ctx context.Context, event logger.EventCode, msg string, err error, details map[string]any) {
	if details == nil {
		details = map[string]any{}
	}
	details["error"] = err.Error()
	code := ""
	if de, ok := domainerrors.As(err); ok {
		code = de.Code
	}
	logger.GetLogger().ErrorCtx(event, msg, details, code, logger.RequestID(ctx), logger.Actor(ctx))
}
