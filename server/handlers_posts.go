package server

import (
	"fmt"
	"io"
	"mime/multipart"
	"strings"

	photoflow "github.com/SajalTalukder/photoflow-backend"
	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
)

// PostsController owns the content routes: posts, likes, saves, comments.
type PostsController struct {
	repo   photoflow.RepositoryManager
	media  MediaService
	logger Logger
}

func readFormFile(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryBadInput, "Could not read uploaded file").
			WithCode(errors.CodeBadRequest)
	}
	defer f.Close()

	raw, err := io.ReadAll(f)
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryBadInput, "Could not read uploaded file").
			WithCode(errors.CodeBadRequest)
	}

	return raw, nil
}

// Create stores a new post: the image is normalized, uploaded, and the
// record persisted. A failed persist removes the uploaded object again.
func (p *PostsController) Create(c *fiber.Ctx) error {
	user, err := CurrentUser(c)
	if err != nil {
		return err
	}

	caption := strings.TrimSpace(c.FormValue("caption"))
	if len(caption) > photoflow.MaxCaptionLength {
		return errors.New("Caption is too long", errors.CategoryValidation).
			WithCode(errors.CodeBadRequest).
			WithTextCode("CAPTION_TOO_LONG")
	}

	fh, err := c.FormFile("image")
	if err != nil {
		return errors.New("An image is required", errors.CategoryValidation).
			WithCode(errors.CodeBadRequest).
			WithTextCode("IMAGE_REQUIRED")
	}

	raw, err := readFormFile(fh)
	if err != nil {
		return err
	}

	normalized, err := p.media.Normalize(raw)
	if err != nil {
		return err
	}

	key := fmt.Sprintf("posts/%s.jpg", uuid.NewString())
	url, err := p.media.Upload(c.UserContext(), key, normalized, "image/jpeg")
	if err != nil {
		return err
	}

	post := &photoflow.Post{
		ID:       uuid.New(),
		UserID:   user.ID,
		Caption:  caption,
		ImageURL: url,
		ImageKey: key,
	}

	if post, err = p.repo.Posts().Create(c.UserContext(), post); err != nil {
		if rerr := p.media.Remove(c.UserContext(), key); rerr != nil {
			p.logger.Error("failed to remove orphaned upload", "key", key, "error", rerr)
		}
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(dataResponse{
		Status:  "success",
		Message: "Post created",
		Data:    map[string]any{"post": post},
	})
}

// Feed is public and returns the newest posts fully populated.
func (p *PostsController) Feed(c *fiber.Ctx) error {
	posts, err := p.repo.Posts().Feed(c.UserContext(), c.QueryInt("limit", 50))
	if err != nil {
		return err
	}

	return c.JSON(dataResponse{
		Status: "success",
		Data:   map[string]any{"posts": posts},
	})
}

func (p *PostsController) UserPosts(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}

	posts, err := p.repo.Posts().ByUser(c.UserContext(), id)
	if err != nil {
		return err
	}

	return c.JSON(dataResponse{
		Status: "success",
		Data:   map[string]any{"posts": posts},
	})
}

func (p *PostsController) SaveUnsave(c *fiber.Ctx) error {
	user, err := CurrentUser(c)
	if err != nil {
		return err
	}

	postID, err := parseIDParam(c, "postId")
	if err != nil {
		return err
	}

	if _, err := p.repo.Posts().GetByID(c.UserContext(), postID.String()); err != nil {
		if repository.IsRecordNotFound(err) {
			return photoflow.ErrPostNotFound
		}
		return err
	}

	saved, err := p.repo.Posts().ToggleSave(c.UserContext(), postID, user.ID)
	if err != nil {
		return err
	}

	message := "Post removed from saved"
	if saved {
		message = "Post saved"
	}

	return c.JSON(dataResponse{
		Status:  "success",
		Message: message,
		Data:    map[string]any{"saved": saved},
	})
}

// Delete removes a post the caller owns, cascading its comments, likes, and
// saves, then removes the stored image.
func (p *PostsController) Delete(c *fiber.Ctx) error {
	user, err := CurrentUser(c)
	if err != nil {
		return err
	}

	postID, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}

	post, err := p.repo.Posts().GetByID(c.UserContext(), postID.String())
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return photoflow.ErrPostNotFound
		}
		return err
	}

	if post.UserID != user.ID {
		return photoflow.ErrNotPostOwner
	}

	if err := p.repo.Posts().DeleteCascade(c.UserContext(), post.ID); err != nil {
		return err
	}

	if post.ImageKey != "" {
		if err := p.media.Remove(c.UserContext(), post.ImageKey); err != nil {
			p.logger.Error("failed to remove post image", "key", post.ImageKey, "error", err)
		}
	}

	return c.JSON(messageResponse{
		Status:  "success",
		Message: "Post deleted",
	})
}

func (p *PostsController) LikeDislike(c *fiber.Ctx) error {
	user, err := CurrentUser(c)
	if err != nil {
		return err
	}

	postID, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}

	if _, err := p.repo.Posts().GetByID(c.UserContext(), postID.String()); err != nil {
		if repository.IsRecordNotFound(err) {
			return photoflow.ErrPostNotFound
		}
		return err
	}

	liked, err := p.repo.Posts().ToggleLike(c.UserContext(), postID, user.ID)
	if err != nil {
		return err
	}

	message := "Post disliked"
	if liked {
		message = "Post liked"
	}

	return c.JSON(dataResponse{
		Status:  "success",
		Message: message,
		Data:    map[string]any{"liked": liked},
	})
}

func (p *PostsController) Comment(c *fiber.Ctx) error {
	user, err := CurrentUser(c)
	if err != nil {
		return err
	}

	postID, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}

	var input struct {
		Text string `json:"text"`
	}
	if err := c.BodyParser(&input); err != nil {
		return errors.Wrap(err, errors.CategoryBadInput, "Invalid request body").
			WithCode(errors.CodeBadRequest)
	}

	input.Text = strings.TrimSpace(input.Text)
	if input.Text == "" {
		return errors.New("Comment text is required", errors.CategoryValidation).
			WithCode(errors.CodeBadRequest).
			WithTextCode("COMMENT_REQUIRED")
	}

	if _, err := p.repo.Posts().GetByID(c.UserContext(), postID.String()); err != nil {
		if repository.IsRecordNotFound(err) {
			return photoflow.ErrPostNotFound
		}
		return err
	}

	comment := &photoflow.Comment{
		ID:     uuid.New(),
		PostID: postID,
		UserID: user.ID,
		Text:   input.Text,
	}

	if comment, err = p.repo.Comments().Create(c.UserContext(), comment); err != nil {
		return err
	}

	if withAuthor, err := p.repo.Comments().GetWithAuthor(c.UserContext(), comment.ID); err == nil {
		comment = withAuthor
	}

	return c.Status(fiber.StatusCreated).JSON(dataResponse{
		Status:  "success",
		Message: "Comment added",
		Data:    map[string]any{"comment": comment},
	})
}
