package photoflow

import (
	"context"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
	"github.com/goliatone/hashid/pkg/hashid"
	"github.com/google/uuid"
)

// Signup OTPs live for a day; password reset OTPs for five minutes.
const (
	SignupOTPTTL = 24 * time.Hour
	ResetOTPTTL  = 5 * time.Minute
)

// SignupInput carries everything needed to open an account.
type SignupInput struct {
	Username        string `json:"username"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	PasswordConfirm string `json:"password_confirm"`
}

func (p SignupInput) Validate() *errors.Error {
	return errors.ValidateWithOzzo(func() error {
		return validation.ValidateStruct(&p,
			validation.Field(&p.Username, validation.Required, validation.Length(3, 30)),
			validation.Field(&p.Email, validation.Required, is.Email),
			validation.Field(&p.Password, validation.Required, validation.Length(8, 72)),
			validation.Field(&p.PasswordConfirm, validation.Required),
		)
	}, "Invalid signup payload")
}

// LoginInput carries the credentials of a login attempt.
type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (p LoginInput) Validate() *errors.Error {
	return errors.ValidateWithOzzo(func() error {
		return validation.ValidateStruct(&p,
			validation.Field(&p.Email, validation.Required, is.Email),
			validation.Field(&p.Password, validation.Required),
		)
	}, "Invalid login payload")
}

// ResetPasswordInput finalizes a password reset with the emailed OTP.
type ResetPasswordInput struct {
	Email           string `json:"email"`
	OTP             string `json:"otp"`
	Password        string `json:"password"`
	PasswordConfirm string `json:"password_confirm"`
}

func (p ResetPasswordInput) Validate() *errors.Error {
	return errors.ValidateWithOzzo(func() error {
		return validation.ValidateStruct(&p,
			validation.Field(&p.Email, validation.Required, is.Email),
			validation.Field(&p.OTP, validation.Required, validation.Length(OTPLength, OTPLength), is.Digit),
			validation.Field(&p.Password, validation.Required, validation.Length(8, 72)),
			validation.Field(&p.PasswordConfirm, validation.Required),
		)
	}, "Invalid reset password payload")
}

// ChangePasswordInput rotates the password of a logged-in account.
type ChangePasswordInput struct {
	CurrentPassword    string `json:"current_password"`
	NewPassword        string `json:"new_password"`
	NewPasswordConfirm string `json:"new_password_confirm"`
}

func (p ChangePasswordInput) Validate() *errors.Error {
	return errors.ValidateWithOzzo(func() error {
		return validation.ValidateStruct(&p,
			validation.Field(&p.CurrentPassword, validation.Required),
			validation.Field(&p.NewPassword, validation.Required, validation.Length(8, 72)),
			validation.Field(&p.NewPasswordConfirm, validation.Required),
		)
	}, "Invalid change password payload")
}

// AccountService drives the account lifecycle: signup, OTP verification,
// login, and the password flows. Every state transition that depends on an
// email actually reaching the user compensates when the send fails.
type AccountService struct {
	repo   RepositoryManager
	tokens TokenService
	mailer Mailer
	logger Logger

	signupOTPTTL time.Duration
	resetOTPTTL  time.Duration
	now          func() time.Time
}

type AccountOption func(*AccountService)

func NewAccountService(repo RepositoryManager, tokens TokenService, mailer Mailer, opts ...AccountOption) *AccountService {
	svc := &AccountService{
		repo:         repo,
		tokens:       tokens,
		mailer:       mailer,
		logger:       defLogger{},
		signupOTPTTL: SignupOTPTTL,
		resetOTPTTL:  ResetOTPTTL,
		now:          time.Now,
	}

	for _, opt := range opts {
		if opt != nil {
			opt(svc)
		}
	}

	return svc
}

func WithAccountLogger(logger Logger) AccountOption {
	return func(s *AccountService) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithAccountClock overrides the service clock, used by OTP expiry tests.
func WithAccountClock(now func() time.Time) AccountOption {
	return func(s *AccountService) {
		if now != nil {
			s.now = now
		}
	}
}

// Signup creates an unverified account, emails it a verification OTP, and
// logs it in. If the email cannot be delivered the account is deleted again
// so the address stays free for a retry.
func (s *AccountService) Signup(ctx context.Context, input SignupInput) (*User, string, error) {
	if err := input.Validate(); err != nil {
		return nil, "", err
	}

	if input.Password != input.PasswordConfirm {
		return nil, "", ErrPasswordMismatch
	}

	email := strings.TrimSpace(strings.ToLower(input.Email))

	if _, err := s.repo.Users().GetByEmail(ctx, email); err == nil {
		return nil, "", ErrEmailRegistered
	} else if !repository.IsRecordNotFound(err) {
		return nil, "", errors.Wrap(err, errors.CategoryInternal, "failed to check email availability")
	}

	hash, err := HashPassword(input.Password)
	if err != nil {
		return nil, "", err
	}

	otp, err := GenerateOTP()
	if err != nil {
		return nil, "", err
	}

	id, err := hashid.NewUUID(email)
	if err != nil {
		id = uuid.New()
	}

	expiresAt := s.now().Add(s.signupOTPTTL)
	user := &User{
		ID:           id,
		Username:     strings.TrimSpace(input.Username),
		Email:        email,
		PasswordHash: hash,
		OTP:          otp,
		OTPExpiresAt: &expiresAt,
	}

	if user, err = s.repo.Users().Create(ctx, user); err != nil {
		return nil, "", errors.Wrap(err, errors.CategoryInternal, "failed to create account")
	}

	if err := s.sendOTPEmail(ctx, user, SubjectSignupOTP, "Use the code below to verify your email address.", otp); err != nil {
		s.logger.Error("signup verification email failed", "user_id", user.ID.String(), "error", err)
		if derr := s.repo.Users().DeleteByID(ctx, user.ID); derr != nil {
			s.logger.Error("signup compensation failed, orphan account left behind",
				"user_id", user.ID.String(),
				"error", derr,
			)
		}
		return nil, "", ErrNotificationFailed
	}

	token, err := s.tokens.Issue(user.ID.String())
	if err != nil {
		return nil, "", err
	}

	s.logger.Info("account created", "user_id", user.ID.String(), "username", user.Username)

	return user, token, nil
}

// VerifyAccount consumes the signup OTP and marks the account verified.
func (s *AccountService) VerifyAccount(ctx context.Context, user *User, otp string) (string, error) {
	if otp == "" {
		return "", ErrOTPRequired
	}

	if user.OTP == "" || user.OTP != otp {
		return "", ErrInvalidOTP
	}

	if user.OTPExpiresAt == nil || s.now().After(*user.OTPExpiresAt) {
		return "", ErrOTPExpired
	}

	if err := s.repo.Users().MarkVerified(ctx, user.ID); err != nil {
		return "", errors.Wrap(err, errors.CategoryInternal, "failed to mark account verified")
	}

	user.IsVerified = true
	user.OTP = ""
	user.OTPExpiresAt = nil

	token, err := s.tokens.Issue(user.ID.String())
	if err != nil {
		return "", err
	}

	s.logger.Info("account verified", "user_id", user.ID.String())

	return token, nil
}

// ResendOTP replaces the pending signup OTP with a fresh one and emails it.
// A failed send clears the stored OTP so the account is not left pointing at
// a code the user never received.
func (s *AccountService) ResendOTP(ctx context.Context, user *User) error {
	if user.IsVerified {
		return ErrAlreadyVerified
	}

	otp, err := GenerateOTP()
	if err != nil {
		return err
	}

	expiresAt := s.now().Add(s.signupOTPTTL)
	if err := s.repo.Users().StoreSignupOTP(ctx, user.ID, otp, expiresAt); err != nil {
		return errors.Wrap(err, errors.CategoryInternal, "failed to store OTP")
	}

	if err := s.sendOTPEmail(ctx, user, SubjectResendOTP, "Here is your new verification code.", otp); err != nil {
		s.logger.Error("resend OTP email failed", "user_id", user.ID.String(), "error", err)
		if cerr := s.repo.Users().ClearSignupOTP(ctx, user.ID); cerr != nil {
			s.logger.Error("failed to clear OTP after send failure", "user_id", user.ID.String(), "error", cerr)
		}
		return ErrNotificationFailed
	}

	user.OTP = otp
	user.OTPExpiresAt = &expiresAt

	return nil
}

// Login verifies credentials and issues a token. Unknown email and wrong
// password return the same error.
func (s *AccountService) Login(ctx context.Context, input LoginInput) (*User, string, error) {
	if err := input.Validate(); err != nil {
		return nil, "", err
	}

	user, err := s.repo.Users().GetByEmail(ctx, input.Email)
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", errors.Wrap(err, errors.CategoryInternal, "failed to load account")
	}

	if err := ComparePasswordAndHash(input.Password, user.PasswordHash); err != nil {
		return nil, "", ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(user.ID.String())
	if err != nil {
		return nil, "", err
	}

	s.logger.Info("account logged in", "user_id", user.ID.String())

	return user, token, nil
}

// ForgotPassword stores a short-lived reset OTP and emails it. The stored OTP
// is rolled back when the email fails, otherwise the user would hold a dead
// reset window.
func (s *AccountService) ForgotPassword(ctx context.Context, email string) error {
	user, err := s.repo.Users().GetByEmail(ctx, email)
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return ErrAccountNotFound
		}
		return errors.Wrap(err, errors.CategoryInternal, "failed to load account")
	}

	otp, err := GenerateOTP()
	if err != nil {
		return err
	}

	expiresAt := s.now().Add(s.resetOTPTTL)
	if err := s.repo.Users().StoreResetOTP(ctx, user.ID, otp, expiresAt); err != nil {
		return errors.Wrap(err, errors.CategoryInternal, "failed to store reset OTP")
	}

	if err := s.sendOTPEmail(ctx, user, SubjectResetOTP, "Use the code below to reset your password. It expires in 5 minutes.", otp); err != nil {
		s.logger.Error("reset OTP email failed", "user_id", user.ID.String(), "error", err)
		if cerr := s.repo.Users().ClearResetOTP(ctx, user.ID); cerr != nil {
			s.logger.Error("failed to clear reset OTP after send failure", "user_id", user.ID.String(), "error", cerr)
		}
		return ErrNotificationFailed
	}

	return nil
}

// ResetPassword exchanges a valid reset OTP for a new password and a fresh
// session token.
func (s *AccountService) ResetPassword(ctx context.Context, input ResetPasswordInput) (*User, string, error) {
	if err := input.Validate(); err != nil {
		return nil, "", err
	}

	if input.Password != input.PasswordConfirm {
		return nil, "", ErrPasswordMismatch
	}

	user, err := s.repo.Users().GetByResetOTP(ctx, input.Email, input.OTP, s.now())
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, "", ErrResetNotFound
		}
		return nil, "", errors.Wrap(err, errors.CategoryInternal, "failed to look up reset OTP")
	}

	hash, err := HashPassword(input.Password)
	if err != nil {
		return nil, "", err
	}

	if err := s.repo.Users().UpdatePasswordAndClearResetOTP(ctx, user.ID, hash); err != nil {
		return nil, "", errors.Wrap(err, errors.CategoryInternal, "failed to update password")
	}

	token, err := s.tokens.Issue(user.ID.String())
	if err != nil {
		return nil, "", err
	}

	s.logger.Info("password reset completed", "user_id", user.ID.String())

	return user, token, nil
}

// ChangePassword rotates the password of a logged-in account after checking
// the current one, then issues a fresh token.
func (s *AccountService) ChangePassword(ctx context.Context, user *User, input ChangePasswordInput) (string, error) {
	if err := input.Validate(); err != nil {
		return "", err
	}

	if err := ComparePasswordAndHash(input.CurrentPassword, user.PasswordHash); err != nil {
		return "", ErrWrongCurrentPassword
	}

	if input.NewPassword != input.NewPasswordConfirm {
		return "", ErrPasswordMismatch
	}

	hash, err := HashPassword(input.NewPassword)
	if err != nil {
		return "", err
	}

	if err := s.repo.Users().UpdatePassword(ctx, user.ID, hash); err != nil {
		return "", errors.Wrap(err, errors.CategoryInternal, "failed to update password")
	}

	token, err := s.tokens.Issue(user.ID.String())
	if err != nil {
		return "", err
	}

	s.logger.Info("password changed", "user_id", user.ID.String())

	return token, nil
}

func (s *AccountService) sendOTPEmail(ctx context.Context, user *User, subject, message, otp string) error {
	html, err := RenderOTPEmail(OTPEmailData{
		Title:    subject,
		Username: user.Username,
		Message:  message,
		OTP:      otp,
	})
	if err != nil {
		return err
	}

	return s.mailer.Send(ctx, user.Email, subject, html)
}
