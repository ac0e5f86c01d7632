package server

import (
	"fmt"
	"strings"

	photoflow "github.com/SajalTalukder/photoflow-backend"
	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
)

// UsersController owns the profile and social-graph routes.
type UsersController struct {
	repo   photoflow.RepositoryManager
	media  MediaService
	logger Logger
}

type dataResponse struct {
	Status  string         `json:"status"`
	Message string         `json:"message,omitempty"`
	Data    map[string]any `json:"data,omitempty"`
}

func parseIDParam(c *fiber.Ctx, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Params(name))
	if err != nil {
		return uuid.Nil, errors.New("Invalid identifier", errors.CategoryBadInput).
			WithCode(errors.CodeBadRequest).
			WithTextCode("BAD_ID")
	}
	return id, nil
}

// Profile is public: anyone can view a profile with its posts and graph.
func (u *UsersController) Profile(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}

	user, err := u.repo.Users().GetProfile(c.UserContext(), id)
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return photoflow.ErrAccountNotFound
		}
		return err
	}

	return c.JSON(dataResponse{
		Status: "success",
		Data:   map[string]any{"user": user},
	})
}

func (u *UsersController) Me(c *fiber.Ctx) error {
	user, err := CurrentUser(c)
	if err != nil {
		return err
	}

	profile, err := u.repo.Users().GetProfile(c.UserContext(), user.ID)
	if err != nil {
		return err
	}

	return c.JSON(dataResponse{
		Status: "success",
		Data:   map[string]any{"user": profile},
	})
}

// EditProfile updates bio and, when a file is attached, the avatar.
func (u *UsersController) EditProfile(c *fiber.Ctx) error {
	user, err := CurrentUser(c)
	if err != nil {
		return err
	}

	record := &photoflow.User{ID: user.ID}
	record.Bio = strings.TrimSpace(c.FormValue("bio", user.Bio))

	if fh, err := c.FormFile("profilePicture"); err == nil && fh != nil {
		raw, err := readFormFile(fh)
		if err != nil {
			return err
		}

		normalized, err := u.media.Normalize(raw)
		if err != nil {
			return err
		}

		key := fmt.Sprintf("avatars/%s.jpg", uuid.NewString())
		url, err := u.media.Upload(c.UserContext(), key, normalized, "image/jpeg")
		if err != nil {
			return err
		}

		record.ProfilePicture = url
	}

	updated, err := u.repo.Users().Update(c.UserContext(), record,
		repository.UpdateByID(user.ID.String()),
		repository.UpdateSkipZeroValues(),
	)
	if err != nil {
		return err
	}

	return c.JSON(dataResponse{
		Status:  "success",
		Message: "Profile updated",
		Data:    map[string]any{"user": updated},
	})
}

func (u *UsersController) Suggested(c *fiber.Ctx) error {
	user, err := CurrentUser(c)
	if err != nil {
		return err
	}

	suggestions, err := u.repo.Users().Suggested(c.UserContext(), user.ID, c.QueryInt("limit", 10))
	if err != nil {
		return err
	}

	return c.JSON(dataResponse{
		Status: "success",
		Data:   map[string]any{"users": suggestions},
	})
}

func (u *UsersController) FollowUnfollow(c *fiber.Ctx) error {
	user, err := CurrentUser(c)
	if err != nil {
		return err
	}

	targetID, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}

	if _, err := u.repo.Users().GetByID(c.UserContext(), targetID.String()); err != nil {
		if repository.IsRecordNotFound(err) {
			return photoflow.ErrAccountNotFound
		}
		return err
	}

	followed, err := u.repo.Users().ToggleFollow(c.UserContext(), user.ID, targetID)
	if err != nil {
		return err
	}

	message := "Unfollowed successfully"
	if followed {
		message = "Followed successfully"
	}

	return c.JSON(dataResponse{
		Status:  "success",
		Message: message,
		Data:    map[string]any{"following": followed},
	})
}

func (u *UsersController) Search(c *fiber.Ctx) error {
	user, err := CurrentUser(c)
	if err != nil {
		return err
	}

	query := strings.TrimSpace(c.Query("query"))
	if query == "" {
		return errors.New("Search query cannot be empty", errors.CategoryValidation).
			WithCode(errors.CodeBadRequest).
			WithTextCode("QUERY_REQUIRED")
	}

	results, err := u.repo.Users().SearchByUsername(c.UserContext(), query, user.ID, c.QueryInt("limit", 20))
	if err != nil {
		return err
	}

	return c.JSON(dataResponse{
		Status: "success",
		Data:   map[string]any{"users": results},
	})
}
