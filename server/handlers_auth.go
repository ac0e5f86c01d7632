package server

import (
	"time"

	photoflow "github.com/SajalTalukder/photoflow-backend"
	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-errors"
)

// AuthController owns the account lifecycle routes.
type AuthController struct {
	accounts *photoflow.AccountService
	config   *photoflow.Config
	logger   Logger
}

type tokenResponse struct {
	Status  string         `json:"status"`
	Message string         `json:"message,omitempty"`
	Token   string         `json:"token"`
	Data    map[string]any `json:"data,omitempty"`
}

type messageResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// sendToken writes the session cookie and the standard token envelope.
func (a *AuthController) sendToken(c *fiber.Ctx, status int, message, token string, user *photoflow.User) error {
	sameSite := fiber.CookieSameSiteLaxMode
	if a.config.IsProduction() {
		sameSite = fiber.CookieSameSiteNoneMode
	}

	c.Cookie(&fiber.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		Expires:  time.Now().Add(time.Duration(a.config.Auth.CookieExpiration) * 24 * time.Hour),
		HTTPOnly: true,
		Secure:   a.config.IsProduction(),
		SameSite: sameSite,
	})

	resp := tokenResponse{
		Status:  "success",
		Message: message,
		Token:   token,
	}
	if user != nil {
		resp.Data = map[string]any{"user": user}
	}

	return c.Status(status).JSON(resp)
}

func (a *AuthController) Signup(c *fiber.Ctx) error {
	var input photoflow.SignupInput
	if err := c.BodyParser(&input); err != nil {
		return errors.Wrap(err, errors.CategoryBadInput, "Invalid request body").
			WithCode(errors.CodeBadRequest)
	}

	user, token, err := a.accounts.Signup(c.UserContext(), input)
	if err != nil {
		return err
	}

	return a.sendToken(c, fiber.StatusCreated,
		"Registration successful. Check your email for the verification OTP.",
		token, user)
}

func (a *AuthController) Verify(c *fiber.Ctx) error {
	user, err := CurrentUser(c)
	if err != nil {
		return err
	}

	var input struct {
		OTP string `json:"otp"`
	}
	if err := c.BodyParser(&input); err != nil {
		return errors.Wrap(err, errors.CategoryBadInput, "Invalid request body").
			WithCode(errors.CodeBadRequest)
	}

	token, err := a.accounts.VerifyAccount(c.UserContext(), user, input.OTP)
	if err != nil {
		return err
	}

	return a.sendToken(c, fiber.StatusOK, "Email has been verified.", token, user)
}

func (a *AuthController) ResendOTP(c *fiber.Ctx) error {
	user, err := CurrentUser(c)
	if err != nil {
		return err
	}

	if err := a.accounts.ResendOTP(c.UserContext(), user); err != nil {
		return err
	}

	return c.Status(fiber.StatusOK).JSON(messageResponse{
		Status:  "success",
		Message: "A new OTP has been sent to your email.",
	})
}

func (a *AuthController) Login(c *fiber.Ctx) error {
	var input photoflow.LoginInput
	if err := c.BodyParser(&input); err != nil {
		return errors.Wrap(err, errors.CategoryBadInput, "Invalid request body").
			WithCode(errors.CodeBadRequest)
	}

	user, token, err := a.accounts.Login(c.UserContext(), input)
	if err != nil {
		return err
	}

	return a.sendToken(c, fiber.StatusOK, "Login successful", token, user)
}

// Logout clears the cookie. Already-issued tokens stay valid until expiry.
func (a *AuthController) Logout(c *fiber.Ctx) error {
	c.Cookie(&fiber.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Now().Add(-time.Hour),
		HTTPOnly: true,
	})

	return c.Status(fiber.StatusOK).JSON(messageResponse{
		Status:  "success",
		Message: "Logged out successfully.",
	})
}

func (a *AuthController) ForgotPassword(c *fiber.Ctx) error {
	var input struct {
		Email string `json:"email"`
	}
	if err := c.BodyParser(&input); err != nil {
		return errors.Wrap(err, errors.CategoryBadInput, "Invalid request body").
			WithCode(errors.CodeBadRequest)
	}

	if err := a.accounts.ForgotPassword(c.UserContext(), input.Email); err != nil {
		return err
	}

	return c.Status(fiber.StatusOK).JSON(messageResponse{
		Status:  "success",
		Message: "A password reset OTP has been sent to your email.",
	})
}

func (a *AuthController) ResetPassword(c *fiber.Ctx) error {
	var input photoflow.ResetPasswordInput
	if err := c.BodyParser(&input); err != nil {
		return errors.Wrap(err, errors.CategoryBadInput, "Invalid request body").
			WithCode(errors.CodeBadRequest)
	}

	user, token, err := a.accounts.ResetPassword(c.UserContext(), input)
	if err != nil {
		return err
	}

	return a.sendToken(c, fiber.StatusOK, "Password reset successfully", token, user)
}

func (a *AuthController) ChangePassword(c *fiber.Ctx) error {
	user, err := CurrentUser(c)
	if err != nil {
		return err
	}

	var input photoflow.ChangePasswordInput
	if err := c.BodyParser(&input); err != nil {
		return errors.Wrap(err, errors.CategoryBadInput, "Invalid request body").
			WithCode(errors.CodeBadRequest)
	}

	token, err := a.accounts.ChangePassword(c.UserContext(), user, input)
	if err != nil {
		return err
	}

	return a.sendToken(c, fiber.StatusOK, "Password changed successfully", token, user)
}
