package photoflow_test

import (
	"context"
	"errors"
	"testing"
	"time"

	photoflow "github.com/SajalTalukder/photoflow-backend"
	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newAccountsFixture(t *testing.T) (*MockRepositoryManager, *MockUsers, *MockTokenService, *MockMailer) {
	t.Helper()

	repo := &MockRepositoryManager{}
	users := &MockUsers{}
	tokens := &MockTokenService{}
	mail := &MockMailer{}

	repo.On("Users").Return(users)

	return repo, users, tokens, mail
}

func fixedClock(at time.Time) func() time.Time {
	return func() time.Time { return at }
}

func TestSignupRejectsRegisteredEmail(t *testing.T) {
	repo, users, tokens, mail := newAccountsFixture(t)
	svc := photoflow.NewAccountService(repo, tokens, mail)

	existing := &photoflow.User{ID: uuid.New(), Email: "taken@example.com"}
	users.On("GetByEmail", mock.Anything, "taken@example.com").Return(existing, nil).Once()

	_, _, err := svc.Signup(context.Background(), photoflow.SignupInput{
		Username:        "someone",
		Email:           "taken@example.com",
		Password:        "password123",
		PasswordConfirm: "password123",
	})

	assert.ErrorIs(t, err, photoflow.ErrEmailRegistered)
	users.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	users.AssertExpectations(t)
}

func TestSignupRejectsPasswordMismatch(t *testing.T) {
	repo, users, tokens, mail := newAccountsFixture(t)
	svc := photoflow.NewAccountService(repo, tokens, mail)

	_, _, err := svc.Signup(context.Background(), photoflow.SignupInput{
		Username:        "someone",
		Email:           "new@example.com",
		Password:        "password123",
		PasswordConfirm: "different123",
	})

	assert.ErrorIs(t, err, photoflow.ErrPasswordMismatch)
	users.AssertNotCalled(t, "GetByEmail", mock.Anything, mock.Anything)
}

func TestSignupCompensatesWhenEmailFails(t *testing.T) {
	repo, users, tokens, mail := newAccountsFixture(t)
	svc := photoflow.NewAccountService(repo, tokens, mail)

	accountID := uuid.New()
	created := &photoflow.User{ID: accountID, Email: "new@example.com", Username: "someone"}

	users.On("GetByEmail", mock.Anything, "new@example.com").
		Return(nil, repository.NewRecordNotFound()).Once()
	users.On("Create", mock.Anything, mock.Anything).Return(created, nil).Once()
	mail.On("Send", mock.Anything, "new@example.com", photoflow.SubjectSignupOTP, mock.Anything).
		Return(errors.New("provider down")).Once()
	users.On("DeleteByID", mock.Anything, accountID).Return(nil).Once()

	_, _, err := svc.Signup(context.Background(), photoflow.SignupInput{
		Username:        "someone",
		Email:           "new@example.com",
		Password:        "password123",
		PasswordConfirm: "password123",
	})

	assert.ErrorIs(t, err, photoflow.ErrNotificationFailed)
	tokens.AssertNotCalled(t, "Issue", mock.Anything)
	users.AssertExpectations(t)
	mail.AssertExpectations(t)
}

func TestSignupHappyPath(t *testing.T) {
	repo, users, tokens, mail := newAccountsFixture(t)
	svc := photoflow.NewAccountService(repo, tokens, mail)

	accountID := uuid.New()
	stored := &photoflow.User{ID: accountID, Email: "new@example.com", Username: "someone"}

	var created *photoflow.User
	users.On("GetByEmail", mock.Anything, "new@example.com").
		Return(nil, repository.NewRecordNotFound()).Once()
	users.On("Create", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			created = args.Get(1).(*photoflow.User)
		}).
		Return(stored, nil).Once()
	mail.On("Send", mock.Anything, "new@example.com", photoflow.SubjectSignupOTP, mock.Anything).
		Return(nil).Once()
	tokens.On("Issue", accountID.String()).Return("signed-token", nil).Once()

	user, token, err := svc.Signup(context.Background(), photoflow.SignupInput{
		Username:        "someone",
		Email:           "New@Example.com",
		Password:        "password123",
		PasswordConfirm: "password123",
	})

	require.NoError(t, err)
	assert.Equal(t, "signed-token", token)
	assert.Equal(t, "new@example.com", user.Email)
	assert.False(t, user.IsVerified)
	assert.Len(t, created.OTP, photoflow.OTPLength)
	require.NotNil(t, created.OTPExpiresAt)
	assert.NotEmpty(t, created.PasswordHash)
	assert.NotEqual(t, "password123", created.PasswordHash)
	users.AssertExpectations(t)
}

func TestVerifyAccount(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	future := now.Add(time.Hour)
	past := now.Add(-time.Second)

	tests := []struct {
		name    string
		otp     string
		user    *photoflow.User
		wantErr error
	}{
		{
			name:    "empty OTP",
			otp:     "",
			user:    &photoflow.User{ID: uuid.New(), OTP: "123456", OTPExpiresAt: &future},
			wantErr: photoflow.ErrOTPRequired,
		},
		{
			name:    "wrong OTP",
			otp:     "654321",
			user:    &photoflow.User{ID: uuid.New(), OTP: "123456", OTPExpiresAt: &future},
			wantErr: photoflow.ErrInvalidOTP,
		},
		{
			name:    "no pending OTP",
			otp:     "123456",
			user:    &photoflow.User{ID: uuid.New()},
			wantErr: photoflow.ErrInvalidOTP,
		},
		{
			name:    "expired OTP",
			otp:     "123456",
			user:    &photoflow.User{ID: uuid.New(), OTP: "123456", OTPExpiresAt: &past},
			wantErr: photoflow.ErrOTPExpired,
		},
		{
			name: "valid OTP at boundary",
			otp:  "123456",
			user: &photoflow.User{ID: uuid.New(), OTP: "123456", OTPExpiresAt: &now},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, users, tokens, mail := newAccountsFixture(t)
			svc := photoflow.NewAccountService(repo, tokens, mail,
				photoflow.WithAccountClock(fixedClock(now)),
			)

			if tt.wantErr == nil {
				users.On("MarkVerified", mock.Anything, tt.user.ID).Return(nil).Once()
				tokens.On("Issue", tt.user.ID.String()).Return("signed-token", nil).Once()
			}

			token, err := svc.VerifyAccount(context.Background(), tt.user, tt.otp)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				users.AssertNotCalled(t, "MarkVerified", mock.Anything, mock.Anything)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, "signed-token", token)
			assert.True(t, tt.user.IsVerified)
			assert.Empty(t, tt.user.OTP)
			users.AssertExpectations(t)
		})
	}
}

func TestResendOTPRejectsVerifiedAccount(t *testing.T) {
	repo, _, tokens, mail := newAccountsFixture(t)
	svc := photoflow.NewAccountService(repo, tokens, mail)

	err := svc.ResendOTP(context.Background(), &photoflow.User{ID: uuid.New(), IsVerified: true})

	assert.ErrorIs(t, err, photoflow.ErrAlreadyVerified)
}

func TestResendOTPRollsBackOnMailFailure(t *testing.T) {
	repo, users, tokens, mail := newAccountsFixture(t)
	svc := photoflow.NewAccountService(repo, tokens, mail)

	user := &photoflow.User{ID: uuid.New(), Email: "pending@example.com", Username: "pending"}

	users.On("StoreSignupOTP", mock.Anything, user.ID, mock.Anything, mock.Anything).Return(nil).Once()
	mail.On("Send", mock.Anything, user.Email, photoflow.SubjectResendOTP, mock.Anything).
		Return(errors.New("provider down")).Once()
	users.On("ClearSignupOTP", mock.Anything, user.ID).Return(nil).Once()

	err := svc.ResendOTP(context.Background(), user)

	assert.ErrorIs(t, err, photoflow.ErrNotificationFailed)
	users.AssertExpectations(t)
}

func TestLoginDoesNotRevealWhichCheckFailed(t *testing.T) {
	hash, err := photoflow.HashPassword("correct-password")
	require.NoError(t, err)

	account := &photoflow.User{ID: uuid.New(), Email: "user@example.com", PasswordHash: hash}

	tests := []struct {
		name     string
		email    string
		password string
		found    *photoflow.User
	}{
		{"unknown email", "ghost@example.com", "correct-password", nil},
		{"wrong password", "user@example.com", "wrong-password", account},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, users, tokens, mail := newAccountsFixture(t)
			svc := photoflow.NewAccountService(repo, tokens, mail)

			if tt.found != nil {
				users.On("GetByEmail", mock.Anything, tt.email).Return(tt.found, nil).Once()
			} else {
				users.On("GetByEmail", mock.Anything, tt.email).
					Return(nil, repository.NewRecordNotFound()).Once()
			}

			_, _, err := svc.Login(context.Background(), photoflow.LoginInput{
				Email:    tt.email,
				Password: tt.password,
			})

			assert.ErrorIs(t, err, photoflow.ErrInvalidCredentials)
			tokens.AssertNotCalled(t, "Issue", mock.Anything)
		})
	}
}

func TestLoginHappyPath(t *testing.T) {
	hash, err := photoflow.HashPassword("correct-password")
	require.NoError(t, err)

	repo, users, tokens, mail := newAccountsFixture(t)
	svc := photoflow.NewAccountService(repo, tokens, mail)

	account := &photoflow.User{ID: uuid.New(), Email: "user@example.com", PasswordHash: hash}
	users.On("GetByEmail", mock.Anything, "user@example.com").Return(account, nil).Once()
	tokens.On("Issue", account.ID.String()).Return("signed-token", nil).Once()

	user, token, err := svc.Login(context.Background(), photoflow.LoginInput{
		Email:    "user@example.com",
		Password: "correct-password",
	})

	require.NoError(t, err)
	assert.Equal(t, "signed-token", token)
	assert.Equal(t, account.ID, user.ID)
}

func TestForgotPasswordRollsBackOnMailFailure(t *testing.T) {
	repo, users, tokens, mail := newAccountsFixture(t)
	svc := photoflow.NewAccountService(repo, tokens, mail)

	account := &photoflow.User{ID: uuid.New(), Email: "user@example.com", Username: "user"}

	users.On("GetByEmail", mock.Anything, "user@example.com").Return(account, nil).Once()
	users.On("StoreResetOTP", mock.Anything, account.ID, mock.Anything, mock.Anything).Return(nil).Once()
	mail.On("Send", mock.Anything, account.Email, photoflow.SubjectResetOTP, mock.Anything).
		Return(errors.New("provider down")).Once()
	users.On("ClearResetOTP", mock.Anything, account.ID).Return(nil).Once()

	err := svc.ForgotPassword(context.Background(), "user@example.com")

	assert.ErrorIs(t, err, photoflow.ErrNotificationFailed)
	users.AssertExpectations(t)
}

func TestForgotPasswordUnknownEmail(t *testing.T) {
	repo, users, tokens, mail := newAccountsFixture(t)
	svc := photoflow.NewAccountService(repo, tokens, mail)

	users.On("GetByEmail", mock.Anything, "ghost@example.com").
		Return(nil, repository.NewRecordNotFound()).Once()

	err := svc.ForgotPassword(context.Background(), "ghost@example.com")

	assert.ErrorIs(t, err, photoflow.ErrAccountNotFound)
}

func TestResetPasswordWithBadOTP(t *testing.T) {
	repo, users, tokens, mail := newAccountsFixture(t)
	svc := photoflow.NewAccountService(repo, tokens, mail)

	users.On("GetByResetOTP", mock.Anything, "user@example.com", "123456", mock.Anything).
		Return(nil, repository.NewRecordNotFound()).Once()

	_, _, err := svc.ResetPassword(context.Background(), photoflow.ResetPasswordInput{
		Email:           "user@example.com",
		OTP:             "123456",
		Password:        "new-password-1",
		PasswordConfirm: "new-password-1",
	})

	assert.ErrorIs(t, err, photoflow.ErrResetNotFound)
	users.AssertNotCalled(t, "UpdatePasswordAndClearResetOTP", mock.Anything, mock.Anything, mock.Anything)
}

func TestResetPasswordHappyPath(t *testing.T) {
	repo, users, tokens, mail := newAccountsFixture(t)
	svc := photoflow.NewAccountService(repo, tokens, mail)

	account := &photoflow.User{ID: uuid.New(), Email: "user@example.com"}

	users.On("GetByResetOTP", mock.Anything, "user@example.com", "123456", mock.Anything).
		Return(account, nil).Once()
	users.On("UpdatePasswordAndClearResetOTP", mock.Anything, account.ID, mock.Anything).
		Return(nil).Once()
	tokens.On("Issue", account.ID.String()).Return("signed-token", nil).Once()

	_, token, err := svc.ResetPassword(context.Background(), photoflow.ResetPasswordInput{
		Email:           "user@example.com",
		OTP:             "123456",
		Password:        "new-password-1",
		PasswordConfirm: "new-password-1",
	})

	require.NoError(t, err)
	assert.Equal(t, "signed-token", token)
	users.AssertExpectations(t)
}

func TestChangePasswordChecksCurrent(t *testing.T) {
	hash, err := photoflow.HashPassword("current-password")
	require.NoError(t, err)

	repo, users, tokens, mail := newAccountsFixture(t)
	svc := photoflow.NewAccountService(repo, tokens, mail)

	account := &photoflow.User{ID: uuid.New(), PasswordHash: hash}

	_, err = svc.ChangePassword(context.Background(), account, photoflow.ChangePasswordInput{
		CurrentPassword:    "not-the-password",
		NewPassword:        "new-password-1",
		NewPasswordConfirm: "new-password-1",
	})

	assert.ErrorIs(t, err, photoflow.ErrWrongCurrentPassword)
	users.AssertNotCalled(t, "UpdatePassword", mock.Anything, mock.Anything, mock.Anything)
}

func TestChangePasswordHappyPath(t *testing.T) {
	hash, err := photoflow.HashPassword("current-password")
	require.NoError(t, err)

	repo, users, tokens, mail := newAccountsFixture(t)
	svc := photoflow.NewAccountService(repo, tokens, mail)

	account := &photoflow.User{ID: uuid.New(), PasswordHash: hash}

	users.On("UpdatePassword", mock.Anything, account.ID, mock.Anything).Return(nil).Once()
	tokens.On("Issue", account.ID.String()).Return("signed-token", nil).Once()

	token, err := svc.ChangePassword(context.Background(), account, photoflow.ChangePasswordInput{
		CurrentPassword:    "current-password",
		NewPassword:        "new-password-1",
		NewPasswordConfirm: "new-password-1",
	})

	require.NoError(t, err)
	assert.Equal(t, "signed-token", token)
	users.AssertExpectations(t)
}
