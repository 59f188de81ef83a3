package auth

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/ledgerkeep/ledgerkeep/internal/token"
)

const (
	accessTTL   = 7 * 24 * time.Hour
	rememberTTL = 30 * 24 * time.Hour
)

// Service drives the account lifecycle: registration and login both park the
// account in PENDING with a signed confirmation code outstanding, and only a
// successful finalize moves it to VERIFIED. An expired code never transitions
// state by itself; it just fails verification until regenerated.
type Service struct {
	repo   RepositoryPort
	issuer *CodeIssuer
	signer *token.Signer
	mailer MailerPort
	logger *slog.Logger
}

// NewService constructs a Service.
func NewService(repo RepositoryPort, issuer *CodeIssuer, signer *token.Signer, mailer MailerPort, logger *slog.Logger) *Service {
	return &Service{repo: repo, issuer: issuer, signer: signer, mailer: mailer, logger: logger}
}

// Register creates a PENDING account with a hashed password and an issued
// confirmation code, and emails the raw code.
func (s *Service) Register(ctx context.Context, email, username, password string) (Account, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	username = strings.ToLower(strings.TrimSpace(username))

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return Account{}, fmt.Errorf("auth: hash password: %w", err)
	}
	signed, err := s.issuer.Issue()
	if err != nil {
		return Account{}, fmt.Errorf("auth: issue code: %w", err)
	}

	now := time.Now().UTC()
	account := Account{
		Email:             email,
		Username:          username,
		PasswordHash:      string(hash),
		Status:            StatusPending,
		ConfirmationToken: &signed,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	id, err := s.repo.CreateAccount(ctx, account)
	if err != nil {
		return Account{}, err
	}
	account.ID = id
	s.emailCode(ctx, account, "Confirm your registration")
	return account, nil
}

// FinalizeRegistration compares the supplied code against the outstanding one
// and transitions the account to VERIFIED on match.
func (s *Service) FinalizeRegistration(ctx context.Context, accountID int64, code string) (Account, error) {
	account, err := s.confirmCode(ctx, accountID, code)
	if err != nil {
		return Account{}, err
	}
	return account, nil
}

// Login verifies the password and, on match, issues a fresh confirmation code
// and parks the account in PENDING until FinalizeLogin.
func (s *Service) Login(ctx context.Context, username, password string) (Account, error) {
	account, err := s.repo.FindByUsername(ctx, strings.ToLower(strings.TrimSpace(username)))
	if err != nil {
		return Account{}, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)); err != nil {
		return Account{}, ErrInvalidCredentials
	}
	if err := s.reissue(ctx, &account); err != nil {
		return Account{}, err
	}
	s.emailCode(ctx, account, "Confirm your login")
	return account, nil
}

// FinalizeLogin confirms the code and mints an access credential. The
// remember flag stretches the credential from 7 to 30 days.
func (s *Service) FinalizeLogin(ctx context.Context, accountID int64, code string, remember bool) (Account, string, error) {
	account, err := s.confirmCode(ctx, accountID, code)
	if err != nil {
		return Account{}, "", err
	}
	ttl := accessTTL
	if remember {
		ttl = rememberTTL
	}
	credential, err := s.signer.SignAccess(account.ID, account.Username, ttl)
	if err != nil {
		return Account{}, "", fmt.Errorf("auth: sign access credential: %w", err)
	}
	return account, credential, nil
}

// RegenerateCode unconditionally issues a new code, invalidating whatever was
// outstanding, and emails it. Used when a prior code expired.
func (s *Service) RegenerateCode(ctx context.Context, accountID int64) error {
	account, err := s.repo.FindByID(ctx, accountID)
	if err != nil {
		return err
	}
	if err := s.reissue(ctx, &account); err != nil {
		return err
	}
	s.emailCode(ctx, account, "Your new confirmation code")
	return nil
}

func (s *Service) reissue(ctx context.Context, account *Account) error {
	signed, err := s.issuer.Issue()
	if err != nil {
		return fmt.Errorf("auth: issue code: %w", err)
	}
	if err := s.repo.SetConfirmation(ctx, account.ID, signed); err != nil {
		return err
	}
	account.Status = StatusPending
	account.ConfirmationToken = &signed
	return nil
}

// confirmCode is the shared finalize path for registration and login.
func (s *Service) confirmCode(ctx context.Context, accountID int64, code string) (Account, error) {
	account, err := s.repo.FindByID(ctx, accountID)
	if err != nil {
		return Account{}, err
	}
	if account.Status == StatusVerified {
		return Account{}, ErrAlreadyVerified
	}
	if account.ConfirmationToken == nil {
		return Account{}, ErrNoCodeOutstanding
	}
	stored, err := s.issuer.Reveal(*account.ConfirmationToken)
	if err != nil {
		// Expired or tampered token reads as a code failure, not a fault.
		return Account{}, ErrCodeMismatch
	}
	if stored != code {
		return Account{}, ErrCodeMismatch
	}
	ok, err := s.repo.MarkVerified(ctx, account.ID, *account.ConfirmationToken)
	if err != nil {
		return Account{}, err
	}
	if !ok {
		// The row moved between our read and the conditional write: either
		// another finalize won, or a regenerate swapped the code we compared.
		fresh, err := s.repo.FindByID(ctx, account.ID)
		if err != nil {
			return Account{}, err
		}
		if fresh.Status == StatusVerified {
			return Account{}, ErrAlreadyVerified
		}
		return Account{}, ErrCodeMismatch
	}
	account.Status = StatusVerified
	account.ConfirmationToken = nil
	return account, nil
}

// emailCode reveals the raw code from the stored token and hands it to the
// mailer. Delivery failure is logged, never propagated: the code is persisted
// regardless, and the client can request a resend.
func (s *Service) emailCode(ctx context.Context, account Account, subject string) {
	if s.mailer == nil || account.ConfirmationToken == nil {
		return
	}
	code, err := s.issuer.Reveal(*account.ConfirmationToken)
	if err != nil {
		s.logger.Error("reveal confirmation code", slog.Any("error", err))
		return
	}
	body := fmt.Sprintf("Hi %s,\n\nYour confirmation code is %s. It expires in 5 minutes.\n", account.Username, code)
	if err := s.mailer.Send(ctx, account.Email, subject, body); err != nil {
		s.logger.Warn("send confirmation email", slog.String("email", account.Email), slog.Any("error", err))
	}
}
