package photoflow

import (
	"context"
	"database/sql"

	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

type Posts interface {
	repository.Repository[*Post]

	Feed(ctx context.Context, limit int) ([]*Post, error)
	ByUser(ctx context.Context, userID uuid.UUID) ([]*Post, error)
	GetWithAuthor(ctx context.Context, id uuid.UUID) (*Post, error)

	ToggleLike(ctx context.Context, postID, userID uuid.UUID) (bool, error)
	ToggleSave(ctx context.Context, postID, userID uuid.UUID) (bool, error)

	DeleteCascade(ctx context.Context, id uuid.UUID) error
}

type posts struct {
	repository.Repository[*Post]
	db *bun.DB
}

var (
	_ Posts                        = (*posts)(nil)
	_ repository.Repository[*Post] = (*posts)(nil)
)

func NewPostsRepository(db *bun.DB) Posts {
	repo := repository.NewRepository[*Post](db, repository.ModelHandlers[*Post]{
		NewRecord: func() *Post { return &Post{} },
		GetID: func(p *Post) uuid.UUID {
			if p == nil {
				return uuid.Nil
			}
			return p.ID
		},
		SetID: func(p *Post, id uuid.UUID) {
			if p != nil {
				p.ID = id
			}
		},
	})

	return &posts{
		Repository: repo,
		db:         db,
	}
}

// authorColumns is the projection used whenever a post carries its author:
// public fields only, never credentials or OTP state.
func authorColumns(q *bun.SelectQuery) *bun.SelectQuery {
	return q.Column("id", "username", "profile_picture", "bio")
}

// Feed returns the newest posts with author, comments (and their authors),
// and likes populated.
func (a *posts) Feed(ctx context.Context, limit int) ([]*Post, error) {
	if limit <= 0 {
		limit = 50
	}

	records := []*Post{}
	err := a.db.NewSelect().
		Model(&records).
		Relation("User", authorColumns).
		Relation("Comments", func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Order("created_at ASC")
		}).
		Relation("Comments.User", authorColumns).
		Relation("Likes").
		Order("created_at DESC").
		Limit(limit).
		Scan(ctx)
	if err != nil {
		return nil, err
	}

	return records, nil
}

func (a *posts) ByUser(ctx context.Context, userID uuid.UUID) ([]*Post, error) {
	records := []*Post{}
	err := a.db.NewSelect().
		Model(&records).
		Where("?TableAlias.user_id = ?", userID).
		Relation("Comments").
		Relation("Likes").
		Order("created_at DESC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}

	return records, nil
}

func (a *posts) GetWithAuthor(ctx context.Context, id uuid.UUID) (*Post, error) {
	record := &Post{}
	err := a.db.NewSelect().
		Model(record).
		Where("?TableAlias.id = ?", id).
		Relation("User", authorColumns).
		Relation("Comments", func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Order("created_at ASC")
		}).
		Relation("Comments.User", authorColumns).
		Relation("Likes").
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

// ToggleLike flips the user's like on a post, returning true when the post is
// liked after the call.
func (a *posts) ToggleLike(ctx context.Context, postID, userID uuid.UUID) (bool, error) {
	liked := false
	err := a.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		exists, err := tx.NewSelect().
			Model((*PostLike)(nil)).
			Where("?TableAlias.post_id = ?", postID).
			Where("?TableAlias.user_id = ?", userID).
			Exists(ctx)
		if err != nil {
			return err
		}

		if exists {
			_, err = tx.NewDelete().
				Model((*PostLike)(nil)).
				Where("?TableAlias.post_id = ?", postID).
				Where("?TableAlias.user_id = ?", userID).
				Exec(ctx)
			return err
		}

		liked = true
		_, err = tx.NewInsert().
			Model(&PostLike{PostID: postID, UserID: userID}).
			Exec(ctx)
		return err
	})
	if err != nil {
		return false, err
	}

	return liked, nil
}

// ToggleSave flips the post's membership in the user's saved collection,
// returning true when the post is saved after the call.
func (a *posts) ToggleSave(ctx context.Context, postID, userID uuid.UUID) (bool, error) {
	saved := false
	err := a.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		exists, err := tx.NewSelect().
			Model((*SavedPost)(nil)).
			Where("?TableAlias.post_id = ?", postID).
			Where("?TableAlias.user_id = ?", userID).
			Exists(ctx)
		if err != nil {
			return err
		}

		if exists {
			_, err = tx.NewDelete().
				Model((*SavedPost)(nil)).
				Where("?TableAlias.post_id = ?", postID).
				Where("?TableAlias.user_id = ?", userID).
				Exec(ctx)
			return err
		}

		saved = true
		_, err = tx.NewInsert().
			Model(&SavedPost{PostID: postID, UserID: userID}).
			Exec(ctx)
		return err
	})
	if err != nil {
		return false, err
	}

	return saved, nil
}

// DeleteCascade removes a post and every row referencing it in one
// transaction. SQLite has no ON DELETE CASCADE here; the order matters.
func (a *posts) DeleteCascade(ctx context.Context, id uuid.UUID) error {
	return a.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewDelete().
			Model((*Comment)(nil)).
			Where("?TableAlias.post_id = ?", id).
			Exec(ctx); err != nil {
			return err
		}

		if _, err := tx.NewDelete().
			Model((*PostLike)(nil)).
			Where("?TableAlias.post_id = ?", id).
			Exec(ctx); err != nil {
			return err
		}

		if _, err := tx.NewDelete().
			Model((*SavedPost)(nil)).
			Where("?TableAlias.post_id = ?", id).
			Exec(ctx); err != nil {
			return err
		}

		_, err := tx.NewDelete().
			Model((*Post)(nil)).
			Where("?TableAlias.id = ?", id).
			Exec(ctx)
		return err
	})
}
