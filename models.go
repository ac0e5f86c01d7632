package photoflow

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// User is the account model. Credential and OTP fields never serialize to
// JSON; relationship fields are only populated by explicit relation queries.
type User struct {
	bun.BaseModel  `bun:"table:users,alias:usr"`
	ID             uuid.UUID `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	Username       string    `bun:"username,notnull,unique" json:"username,omitempty"`
	Email          string    `bun:"email,notnull,unique" json:"email,omitempty"`
	PasswordHash   string    `bun:"password_hash,notnull" json:"-"`
	Bio            string    `bun:"bio" json:"bio,omitempty"`
	ProfilePicture string    `bun:"profile_picture" json:"profile_picture,omitempty"`
	IsVerified     bool      `bun:"is_verified,notnull,default:false" json:"is_verified"`

	// Signup OTP pool: at most one active code per account.
	OTP          string     `bun:"otp,nullzero" json:"-"`
	OTPExpiresAt *time.Time `bun:"otp_expires_at,nullzero" json:"-"`

	// Password reset OTP pool, distinct from the signup pool.
	ResetPasswordOTP          string     `bun:"reset_password_otp,nullzero" json:"-"`
	ResetPasswordOTPExpiresAt *time.Time `bun:"reset_password_otp_expires_at,nullzero" json:"-"`

	Posts      []*Post `bun:"rel:has-many,join:id=user_id" json:"posts,omitempty"`
	SavedPosts []*Post `bun:"m2m:saved_posts,join:User=Post" json:"saved_posts,omitempty"`
	Followers  []*User `bun:"m2m:follows,join:Followee=Follower" json:"followers,omitempty"`
	Following  []*User `bun:"m2m:follows,join:Follower=Followee" json:"following,omitempty"`

	CreatedAt *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt *time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
}

// HasActiveSignupOTP reports whether a signup OTP is pending and unexpired.
func (u *User) HasActiveSignupOTP(now time.Time) bool {
	return u.OTP != "" && u.OTPExpiresAt != nil && now.Before(*u.OTPExpiresAt)
}

// Post is a single image post with its caption.
type Post struct {
	bun.BaseModel `bun:"table:posts,alias:pst"`
	ID            uuid.UUID `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	UserID        uuid.UUID `bun:"user_id,notnull,type:uuid" json:"user_id,omitempty"`
	User          *User     `bun:"rel:belongs-to,join:user_id=id" json:"user,omitempty"`
	Caption       string    `bun:"caption" json:"caption,omitempty"`
	ImageURL      string    `bun:"image_url,notnull" json:"image_url,omitempty"`
	ImageKey      string    `bun:"image_key,notnull" json:"-"`

	Comments []*Comment  `bun:"rel:has-many,join:id=post_id" json:"comments,omitempty"`
	Likes    []*PostLike `bun:"rel:has-many,join:id=post_id" json:"likes,omitempty"`

	CreatedAt *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt *time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
}

// MaxCaptionLength mirrors the write contract of the content store.
const MaxCaptionLength = 2200

// Comment belongs to a post and an author.
type Comment struct {
	bun.BaseModel `bun:"table:comments,alias:cmt"`
	ID            uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	PostID        uuid.UUID  `bun:"post_id,notnull,type:uuid" json:"post_id,omitempty"`
	UserID        uuid.UUID  `bun:"user_id,notnull,type:uuid" json:"user_id,omitempty"`
	User          *User      `bun:"rel:belongs-to,join:user_id=id" json:"user,omitempty"`
	Text          string     `bun:"text,notnull" json:"text,omitempty"`
	CreatedAt     *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
}

// PostLike is one user's like on one post.
type PostLike struct {
	bun.BaseModel `bun:"table:post_likes,alias:lke"`
	PostID        uuid.UUID `bun:"post_id,pk,type:uuid" json:"post_id,omitempty"`
	UserID        uuid.UUID `bun:"user_id,pk,type:uuid" json:"user_id,omitempty"`
}

// SavedPost is the m2m join backing User.SavedPosts.
type SavedPost struct {
	bun.BaseModel `bun:"table:saved_posts,alias:svp"`
	UserID        uuid.UUID `bun:"user_id,pk,type:uuid" json:"user_id,omitempty"`
	User          *User     `bun:"rel:belongs-to,join:user_id=id" json:"-"`
	PostID        uuid.UUID `bun:"post_id,pk,type:uuid" json:"post_id,omitempty"`
	Post          *Post     `bun:"rel:belongs-to,join:post_id=id" json:"-"`
}

// Follow is one directed edge in the follow graph. The two sides are never
// equal; an account cannot follow itself.
type Follow struct {
	bun.BaseModel `bun:"table:follows,alias:flw"`
	FollowerID    uuid.UUID `bun:"follower_id,pk,type:uuid" json:"follower_id,omitempty"`
	Follower      *User     `bun:"rel:belongs-to,join:follower_id=id" json:"-"`
	FolloweeID    uuid.UUID `bun:"followee_id,pk,type:uuid" json:"followee_id,omitempty"`
	Followee      *User     `bun:"rel:belongs-to,join:followee_id=id" json:"-"`
}

// RegisterModels registers the m2m join tables bun needs to resolve
// relation queries. Call once right after opening the DB.
func RegisterModels(db *bun.DB) {
	db.RegisterModel((*SavedPost)(nil), (*Follow)(nil), (*PostLike)(nil))
}
