package photoflow

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

var StoreSignupOTPSQL = `UPDATE "users" AS "usr"
SET
	"otp" = ?,
	"otp_expires_at" = ?
WHERE
	"usr"."id" = ?
RETURNING *;`

var ClearSignupOTPSQL = `UPDATE "users" AS "usr"
SET
	"otp" = NULL,
	"otp_expires_at" = NULL
WHERE
	"usr"."id" = ?
RETURNING *;`

var MarkVerifiedSQL = `UPDATE "users" AS "usr"
SET
	"is_verified" = TRUE,
	"otp" = NULL,
	"otp_expires_at" = NULL
WHERE
	"usr"."id" = ?
RETURNING *;`

var StoreResetOTPSQL = `UPDATE "users" AS "usr"
SET
	"reset_password_otp" = ?,
	"reset_password_otp_expires_at" = ?
WHERE
	"usr"."id" = ?
RETURNING *;`

var ClearResetOTPSQL = `UPDATE "users" AS "usr"
SET
	"reset_password_otp" = NULL,
	"reset_password_otp_expires_at" = NULL
WHERE
	"usr"."id" = ?
RETURNING *;`

var UpdatePasswordSQL = `UPDATE "users" AS "usr"
SET
	"password_hash" = ?
WHERE
	"usr"."id" = ?
RETURNING *;`

var UpdatePasswordAndClearResetOTPSQL = `UPDATE "users" AS "usr"
SET
	"password_hash" = ?,
	"reset_password_otp" = NULL,
	"reset_password_otp_expires_at" = NULL
WHERE
	"usr"."id" = ?
RETURNING *;`

// SweepExpiredOTPsSQL drops pending signup OTPs past their deadline. Reset
// OTPs are left alone: their lookup predicate already checks expiry.
var SweepExpiredOTPsSQL = `UPDATE "users" AS "usr"
SET
	"otp" = NULL,
	"otp_expires_at" = NULL
WHERE
	"usr"."otp" IS NOT NULL
AND "usr"."otp_expires_at" < ?
RETURNING *;`

type Users interface {
	repository.Repository[*User]

	GetByEmail(ctx context.Context, email string) (*User, error)
	GetProfile(ctx context.Context, id uuid.UUID) (*User, error)

	StoreSignupOTP(ctx context.Context, id uuid.UUID, otp string, expiresAt time.Time) error
	ClearSignupOTP(ctx context.Context, id uuid.UUID) error
	MarkVerified(ctx context.Context, id uuid.UUID) error

	StoreResetOTP(ctx context.Context, id uuid.UUID, otp string, expiresAt time.Time) error
	ClearResetOTP(ctx context.Context, id uuid.UUID) error
	GetByResetOTP(ctx context.Context, email, otp string, now time.Time) (*User, error)

	UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error
	UpdatePasswordAndClearResetOTP(ctx context.Context, id uuid.UUID, passwordHash string) error

	ToggleFollow(ctx context.Context, followerID, followeeID uuid.UUID) (bool, error)
	Suggested(ctx context.Context, excludeID uuid.UUID, limit int) ([]*User, error)
	SearchByUsername(ctx context.Context, query string, excludeID uuid.UUID, limit int) ([]*User, error)

	SweepExpiredOTPs(ctx context.Context, now time.Time) (int, error)
	DeleteByID(ctx context.Context, id uuid.UUID) error
}

type users struct {
	repository.Repository[*User]
	db *bun.DB
}

var (
	_ Users                        = (*users)(nil)
	_ repository.Repository[*User] = (*users)(nil)
)

func NewUsersRepository(db *bun.DB) Users {
	repo := repository.NewRepository[*User](db, repository.ModelHandlers[*User]{
		NewRecord: func() *User { return &User{} },
		GetID: func(u *User) uuid.UUID {
			if u == nil {
				return uuid.Nil
			}
			return u.ID
		},
		SetID: func(u *User, id uuid.UUID) {
			if u != nil {
				u.ID = id
			}
		},
		GetIdentifier: func() string {
			return "email"
		},
	})

	return &users{
		Repository: repo,
		db:         db,
	}
}

func (a *users) GetByEmail(ctx context.Context, email string) (*User, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" {
		return nil, repository.NewRecordNotFound()
	}

	record := &User{}
	err := a.db.NewSelect().
		Model(record).
		Where("?TableAlias.email = ?", email).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if repository.IsRecordNotFound(err) || err == sql.ErrNoRows {
			return nil, repository.NewRecordNotFound().WithMetadata(map[string]any{
				"email": email,
			})
		}
		return nil, err
	}

	return record, nil
}

// GetProfile loads an account with its own posts, saved posts, and both sides
// of the follow graph, newest posts first.
func (a *users) GetProfile(ctx context.Context, id uuid.UUID) (*User, error) {
	record := &User{}
	err := a.db.NewSelect().
		Model(record).
		Where("?TableAlias.id = ?", id).
		Relation("Posts", func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Order("created_at DESC")
		}).
		Relation("Posts.Comments").
		Relation("Posts.Likes").
		Relation("SavedPosts", func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Order("created_at DESC")
		}).
		Relation("Followers").
		Relation("Following").
		Limit(1).
		Scan(ctx)
	if err != nil {
		if repository.IsRecordNotFound(err) || err == sql.ErrNoRows {
			return nil, repository.NewRecordNotFound().WithMetadata(map[string]any{
				"id": id.String(),
			})
		}
		return nil, err
	}

	return record, nil
}

func (a *users) StoreSignupOTP(ctx context.Context, id uuid.UUID, otp string, expiresAt time.Time) error {
	return a.execReturning(ctx, StoreSignupOTPSQL, id, otp, expiresAt, id.String())
}

func (a *users) ClearSignupOTP(ctx context.Context, id uuid.UUID) error {
	return a.execReturning(ctx, ClearSignupOTPSQL, id, id.String())
}

// MarkVerified flips the account verified and consumes the signup OTP in the
// same statement so a concurrent verify cannot reuse the code.
func (a *users) MarkVerified(ctx context.Context, id uuid.UUID) error {
	return a.execReturning(ctx, MarkVerifiedSQL, id, id.String())
}

func (a *users) StoreResetOTP(ctx context.Context, id uuid.UUID, otp string, expiresAt time.Time) error {
	return a.execReturning(ctx, StoreResetOTPSQL, id, otp, expiresAt, id.String())
}

func (a *users) ClearResetOTP(ctx context.Context, id uuid.UUID) error {
	return a.execReturning(ctx, ClearResetOTPSQL, id, id.String())
}

// GetByResetOTP resolves the single predicate of the reset flow: matching
// email, matching OTP, unexpired. Any miss is a not-found.
func (a *users) GetByResetOTP(ctx context.Context, email, otp string, now time.Time) (*User, error) {
	email = strings.TrimSpace(strings.ToLower(email))

	record := &User{}
	err := a.db.NewSelect().
		Model(record).
		Where("?TableAlias.email = ?", email).
		Where("?TableAlias.reset_password_otp = ?", otp).
		Where("?TableAlias.reset_password_otp_expires_at > ?", now).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if repository.IsRecordNotFound(err) || err == sql.ErrNoRows {
			return nil, repository.NewRecordNotFound().WithMetadata(map[string]any{
				"email": email,
			})
		}
		return nil, err
	}

	return record, nil
}

func (a *users) UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	return a.execReturning(ctx, UpdatePasswordSQL, id, passwordHash, id.String())
}

func (a *users) UpdatePasswordAndClearResetOTP(ctx context.Context, id uuid.UUID, passwordHash string) error {
	return a.execReturning(ctx, UpdatePasswordAndClearResetOTPSQL, id, passwordHash, id.String())
}

// ToggleFollow adds the follower->followee edge, or removes it when already
// present. It returns true when the edge exists after the call.
func (a *users) ToggleFollow(ctx context.Context, followerID, followeeID uuid.UUID) (bool, error) {
	if followerID == followeeID {
		return false, ErrSelfFollow
	}

	followed := false
	err := a.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		exists, err := tx.NewSelect().
			Model((*Follow)(nil)).
			Where("?TableAlias.follower_id = ?", followerID).
			Where("?TableAlias.followee_id = ?", followeeID).
			Exists(ctx)
		if err != nil {
			return err
		}

		if exists {
			_, err = tx.NewDelete().
				Model((*Follow)(nil)).
				Where("?TableAlias.follower_id = ?", followerID).
				Where("?TableAlias.followee_id = ?", followeeID).
				Exec(ctx)
			return err
		}

		followed = true
		_, err = tx.NewInsert().
			Model(&Follow{FollowerID: followerID, FolloweeID: followeeID}).
			Exec(ctx)
		return err
	})
	if err != nil {
		return false, err
	}

	return followed, nil
}

// Suggested returns other accounts, newest first, excluding the subject.
func (a *users) Suggested(ctx context.Context, excludeID uuid.UUID, limit int) ([]*User, error) {
	if limit <= 0 {
		limit = 10
	}

	records := []*User{}
	err := a.db.NewSelect().
		Model(&records).
		Where("?TableAlias.id != ?", excludeID).
		Order("created_at DESC").
		Limit(limit).
		Scan(ctx)
	if err != nil {
		return nil, err
	}

	return records, nil
}

// SearchByUsername matches usernames case-insensitively, leaving out the
// account doing the searching.
func (a *users) SearchByUsername(ctx context.Context, query string, excludeID uuid.UUID, limit int) ([]*User, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []*User{}, nil
	}
	if limit <= 0 {
		limit = 20
	}

	records := []*User{}
	err := a.db.NewSelect().
		Model(&records).
		Where("LOWER(?TableAlias.username) LIKE ?", "%"+strings.ToLower(query)+"%").
		Where("?TableAlias.id != ?", excludeID).
		Order("username ASC").
		Limit(limit).
		Scan(ctx)
	if err != nil {
		return nil, err
	}

	return records, nil
}

func (a *users) SweepExpiredOTPs(ctx context.Context, now time.Time) (int, error) {
	res, err := a.Repository.RawTx(ctx, a.db, SweepExpiredOTPsSQL, now)
	if err != nil {
		return 0, err
	}
	return len(res), nil
}

// DeleteByID hard deletes an account. Signup uses it to compensate when the
// verification email cannot be delivered.
func (a *users) DeleteByID(ctx context.Context, id uuid.UUID) error {
	_, err := a.db.NewDelete().
		Model((*User)(nil)).
		Where("?TableAlias.id = ?", id).
		Exec(ctx)
	return err
}

func (a *users) execReturning(ctx context.Context, query string, id uuid.UUID, args ...any) error {
	res, err := a.Repository.RawTx(ctx, a.db, query, args...)
	if err != nil {
		return err
	}

	if len(res) == 0 {
		return repository.NewRecordNotFound().WithMetadata(map[string]any{
			"id": id.String(),
		})
	}

	return nil
}
