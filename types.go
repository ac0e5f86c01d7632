package photoflow

import (
	"context"
	"fmt"
)

// Logger is the minimal structured logger the package needs. glog.Logger
// satisfies it, as does anything else with key-value variadic methods.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// Mailer delivers a rendered HTML email through the transactional email
// provider. A failed send is terminal for the request; callers roll back any
// OTP state they persisted for the message.
type Mailer interface {
	Send(ctx context.Context, to, subject, html string) error
}

// MediaStore persists binary blobs (post images, avatars) and returns a
// publicly addressable URL for each stored object.
type MediaStore interface {
	Upload(ctx context.Context, key string, body []byte, contentType string) (string, error)
	Remove(ctx context.Context, key string) error
}

// TokenService issues and validates the bearer tokens that represent an
// authenticated account.
type TokenService interface {
	Issue(subjectID string) (string, error)
	Validate(token string) (*SessionClaims, error)
}

type defLogger struct{}

func (d defLogger) Debug(msg string, args ...any) { d.print("DBG", msg, args...) }
func (d defLogger) Info(msg string, args ...any)  { d.print("INF", msg, args...) }
func (d defLogger) Warn(msg string, args ...any)  { d.print("WRN", msg, args...) }
func (d defLogger) Error(msg string, args ...any) { d.print("ERR", msg, args...) }

func (d defLogger) print(level, msg string, args ...any) {
	out := "[" + level + "] " + msg
	for i := 0; i+1 < len(args); i += 2 {
		out += fmt.Sprintf(" %v=%v", args[i], args[i+1])
	}
	fmt.Println(out)
}
