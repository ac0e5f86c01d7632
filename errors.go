package photoflow

import (
	"github.com/goliatone/go-errors"
)

// Signup / verification errors.
var (
	ErrEmailRegistered = errors.New("Email already registered", errors.CategoryConflict).
				WithCode(errors.CodeConflict).
				WithTextCode("EMAIL_TAKEN")

	ErrOTPRequired = errors.New("OTP is required for verification", errors.CategoryValidation).
			WithCode(errors.CodeBadRequest).
			WithTextCode("OTP_REQUIRED")

	ErrInvalidOTP = errors.New("Invalid OTP", errors.CategoryValidation).
			WithCode(errors.CodeBadRequest).
			WithTextCode("OTP_INVALID")

	ErrOTPExpired = errors.New("OTP has expired. Please request a new OTP.", errors.CategoryValidation).
			WithCode(errors.CodeBadRequest).
			WithTextCode("OTP_EXPIRED")

	ErrAlreadyVerified = errors.New("This account is already verified", errors.CategoryValidation).
				WithCode(errors.CodeBadRequest).
				WithTextCode("ALREADY_VERIFIED")
)

// Credential errors. Login deliberately reports the same error for an unknown
// email and a wrong password so callers cannot enumerate accounts.
var (
	ErrInvalidCredentials = errors.New("Incorrect email or password", errors.CategoryAuth).
				WithCode(errors.CodeUnauthorized).
				WithTextCode("BAD_CREDENTIALS")

	ErrWrongCurrentPassword = errors.New("Incorrect current password", errors.CategoryValidation).
				WithCode(errors.CodeBadRequest).
				WithTextCode("BAD_CURRENT_PASSWORD")

	ErrPasswordMismatch = errors.New("New password and confirm password do not match", errors.CategoryValidation).
				WithCode(errors.CodeBadRequest).
				WithTextCode("PASSWORD_MISMATCH")

	ErrNoEmptyPassword = errors.New("password must not be empty", errors.CategoryValidation).
				WithCode(errors.CodeBadRequest).
				WithTextCode("PASSWORD_EMPTY")
)

// Password reset errors. The reset lookup is a single predicate over email,
// OTP, and expiry, so a wrong OTP and an expired OTP are indistinguishable.
var (
	ErrAccountNotFound = errors.New("User not found", errors.CategoryNotFound).
				WithCode(errors.CodeNotFound).
				WithTextCode("USER_NOT_FOUND")

	ErrResetNotFound = errors.New("No user found for that email and OTP", errors.CategoryBadInput).
				WithCode(errors.CodeBadRequest).
				WithTextCode("RESET_NOT_FOUND")
)

// Token / auth-gate errors.
var (
	ErrTokenMissing = errors.New("You are not logged in! Please log in to access.", errors.CategoryAuth).
			WithCode(errors.CodeUnauthorized).
			WithTextCode("TOKEN_MISSING")

	ErrTokenExpired = errors.New("Invalid or expired token. Please log in again.", errors.CategoryAuth).
			WithCode(errors.CodeUnauthorized).
			WithTextCode("TOKEN_EXPIRED")

	ErrTokenMalformed = errors.New("Invalid or expired token. Please log in again.", errors.CategoryAuth).
				WithCode(errors.CodeUnauthorized).
				WithTextCode("TOKEN_MALFORMED")

	ErrTokenSubjectGone = errors.New("The user belonging to this token does not exist.", errors.CategoryAuth).
				WithCode(errors.CodeUnauthorized).
				WithTextCode("TOKEN_SUBJECT_GONE")
)

// Content errors.
var (
	ErrSelfFollow = errors.New("You cannot follow/unfollow yourself", errors.CategoryValidation).
			WithCode(errors.CodeBadRequest).
			WithTextCode("SELF_FOLLOW")

	ErrPostNotFound = errors.New("Post not found", errors.CategoryNotFound).
			WithCode(errors.CodeNotFound).
			WithTextCode("POST_NOT_FOUND")

	ErrNotPostOwner = errors.New("You are not authorized to delete this post", errors.CategoryAuthz).
			WithCode(errors.CodeForbidden).
			WithTextCode("NOT_POST_OWNER")
)

// ErrNotificationFailed wraps a provider failure after an email could not be
// delivered and any pending OTP state has been rolled back.
var ErrNotificationFailed = errors.New("There was an error sending the email. Try again later!", errors.CategoryOperation).
	WithCode(errors.CodeInternal).
	WithTextCode("NOTIFICATION_FAILED")
