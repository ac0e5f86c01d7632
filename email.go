package photoflow

import (
	"embed"
	"html/template"
	"strings"

	"github.com/goliatone/go-errors"
)

//go:embed templates/otp_email.html
var emailTemplatesFS embed.FS

var otpEmailTemplate = template.Must(
	template.ParseFS(emailTemplatesFS, "templates/otp_email.html"),
)

// Email subjects for the OTP flows.
const (
	SubjectSignupOTP = "OTP for Email Verification"
	SubjectResendOTP = "Resend OTP for Email Verification"
	SubjectResetOTP  = "Your Password Reset OTP (Valid for 5min)"
)

// OTPEmailData feeds the shared OTP email template.
type OTPEmailData struct {
	Title    string
	Username string
	Message  string
	OTP      string
}

// RenderOTPEmail renders the HTML body for any OTP-bearing email.
func RenderOTPEmail(data OTPEmailData) (string, error) {
	var sb strings.Builder
	if err := otpEmailTemplate.Execute(&sb, data); err != nil {
		return "", errors.Wrap(err, errors.CategoryInternal, "failed to render OTP email template")
	}
	return sb.String(), nil
}
