// Package server exposes the REST surface over Fiber.
package server

import (
	"fmt"
	"strings"

	photoflow "github.com/SajalTalukder/photoflow-backend"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

// Logger is the minimal logging surface the server needs.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// Dependencies carries everything the HTTP layer is built from.
type Dependencies struct {
	Config   *photoflow.Config
	Logger   Logger
	Repo     photoflow.RepositoryManager
	Accounts *photoflow.AccountService
	Tokens   photoflow.TokenService
	Media    MediaService
}

// MediaService is the slice of media the handlers use: normalize an upload,
// store it, remove it again when its owner record goes away.
type MediaService interface {
	photoflow.MediaStore
	Normalize(data []byte) ([]byte, error)
}

// New builds the Fiber app with all routes and middleware registered. The
// caller owns Listen and shutdown.
func New(deps Dependencies) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      "photoflow",
		BodyLimit:    10 * 1024 * 1024,
		ErrorHandler: newErrorHandler(deps.Logger, deps.Config.IsProduction()),
	})

	app.Use(recover.New())
	app.Use(helmet.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     strings.Join(deps.Config.CORS.Origins, ","),
		AllowCredentials: true,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
	}))
	app.Use(limiter.New(limiter.Config{
		Max: 300,
	}))

	authGate := RequireAuth(deps.Tokens, deps.Repo.Users())

	auth := &AuthController{
		accounts: deps.Accounts,
		config:   deps.Config,
		logger:   deps.Logger,
	}

	users := &UsersController{
		repo:   deps.Repo,
		media:  deps.Media,
		logger: deps.Logger,
	}

	posts := &PostsController{
		repo:   deps.Repo,
		media:  deps.Media,
		logger: deps.Logger,
	}

	ug := app.Group("/api/v1/users")
	ug.Post("/signup", auth.Signup)
	ug.Post("/login", auth.Login)
	ug.Post("/logout", auth.Logout)
	ug.Post("/forget-password", auth.ForgotPassword)
	ug.Post("/reset-password", auth.ResetPassword)
	ug.Post("/verify", authGate, auth.Verify)
	ug.Post("/resend-otp", authGate, auth.ResendOTP)
	ug.Post("/change-password", authGate, auth.ChangePassword)

	ug.Get("/profile/:id", users.Profile)
	ug.Get("/me", authGate, users.Me)
	ug.Post("/edit-profile", authGate, users.EditProfile)
	ug.Get("/suggested-user", authGate, users.Suggested)
	ug.Post("/follow-unfollow/:id", authGate, users.FollowUnfollow)
	ug.Get("/search-users", authGate, users.Search)

	pg := app.Group("/api/v1/posts")
	pg.Post("/create-post", authGate, posts.Create)
	pg.Get("/all", posts.Feed)
	pg.Get("/user-post/:id", posts.UserPosts)
	pg.Post("/save-unsave-post/:postId", authGate, posts.SaveUnsave)
	pg.Delete("/delete-post/:id", authGate, posts.Delete)
	pg.Post("/like-dislike/:id", authGate, posts.LikeDislike)
	pg.Post("/comment/:id", authGate, posts.Comment)

	app.Use(func(c *fiber.Ctx) error {
		return fiber.NewError(
			fiber.StatusNotFound,
			fmt.Sprintf("Can't find %s on this server!", c.OriginalURL()),
		)
	})

	return app
}
