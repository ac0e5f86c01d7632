package photoflow_test

import (
	"context"
	"database/sql"
	"time"

	photoflow "github.com/SajalTalukder/photoflow-backend"
	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/uptrace/bun"
)

// MockUsers implements the subset of photoflow.Users the services exercise.
// The embedded interface satisfies the generic repository surface; calling an
// unmocked method panics, which is what we want in tests.
type MockUsers struct {
	mock.Mock
	photoflow.Users
}

func (m *MockUsers) GetByEmail(ctx context.Context, email string) (*photoflow.User, error) {
	args := m.Called(ctx, email)
	if u := args.Get(0); u != nil {
		return u.(*photoflow.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUsers) GetByID(ctx context.Context, id string, criteria ...repository.SelectCriteria) (*photoflow.User, error) {
	args := m.Called(ctx, id)
	if u := args.Get(0); u != nil {
		return u.(*photoflow.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUsers) Create(ctx context.Context, record *photoflow.User, criteria ...repository.InsertCriteria) (*photoflow.User, error) {
	args := m.Called(ctx, record)
	if u := args.Get(0); u != nil {
		return u.(*photoflow.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUsers) StoreSignupOTP(ctx context.Context, id uuid.UUID, otp string, expiresAt time.Time) error {
	args := m.Called(ctx, id, otp, expiresAt)
	return args.Error(0)
}

func (m *MockUsers) ClearSignupOTP(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockUsers) MarkVerified(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockUsers) StoreResetOTP(ctx context.Context, id uuid.UUID, otp string, expiresAt time.Time) error {
	args := m.Called(ctx, id, otp, expiresAt)
	return args.Error(0)
}

func (m *MockUsers) ClearResetOTP(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockUsers) GetByResetOTP(ctx context.Context, email, otp string, now time.Time) (*photoflow.User, error) {
	args := m.Called(ctx, email, otp, now)
	if u := args.Get(0); u != nil {
		return u.(*photoflow.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUsers) UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	args := m.Called(ctx, id, passwordHash)
	return args.Error(0)
}

func (m *MockUsers) UpdatePasswordAndClearResetOTP(ctx context.Context, id uuid.UUID, passwordHash string) error {
	args := m.Called(ctx, id, passwordHash)
	return args.Error(0)
}

func (m *MockUsers) SweepExpiredOTPs(ctx context.Context, now time.Time) (int, error) {
	args := m.Called(ctx, now)
	return args.Int(0), args.Error(1)
}

func (m *MockUsers) DeleteByID(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockRepositoryManager implements photoflow.RepositoryManager.
type MockRepositoryManager struct {
	mock.Mock
}

func (m *MockRepositoryManager) Validate() error {
	return nil
}

func (m *MockRepositoryManager) MustValidate() {}

func (m *MockRepositoryManager) RunInTx(ctx context.Context, opts *sql.TxOptions, f func(ctx context.Context, tx bun.Tx) error) error {
	args := m.Called(ctx, opts, f)
	return args.Error(0)
}

func (m *MockRepositoryManager) Users() photoflow.Users {
	args := m.Called()
	return args.Get(0).(photoflow.Users)
}

func (m *MockRepositoryManager) Posts() photoflow.Posts {
	args := m.Called()
	return args.Get(0).(photoflow.Posts)
}

func (m *MockRepositoryManager) Comments() photoflow.Comments {
	args := m.Called()
	return args.Get(0).(photoflow.Comments)
}

// MockTokenService implements photoflow.TokenService.
type MockTokenService struct {
	mock.Mock
}

func (m *MockTokenService) Issue(subjectID string) (string, error) {
	args := m.Called(subjectID)
	return args.String(0), args.Error(1)
}

func (m *MockTokenService) Validate(token string) (*photoflow.SessionClaims, error) {
	args := m.Called(token)
	if c := args.Get(0); c != nil {
		return c.(*photoflow.SessionClaims), args.Error(1)
	}
	return nil, args.Error(1)
}

// MockMailer implements photoflow.Mailer.
type MockMailer struct {
	mock.Mock
}

func (m *MockMailer) Send(ctx context.Context, to, subject, html string) error {
	args := m.Called(ctx, to, subject, html)
	return args.Error(0)
}
