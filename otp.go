package photoflow

import (
	"crypto/rand"
	"fmt"
	"math/big"

	"github.com/goliatone/go-errors"
)

// OTPLength is the number of digits in a one-time code.
const OTPLength = 6

var otpMax = big.NewInt(1_000_000)

// GenerateOTP returns a fixed-length numeric one-time code drawn uniformly
// from [000000, 999999]. Codes are single use, short lived, and scoped to one
// account, so collision tolerance is not required.
func GenerateOTP() (string, error) {
	n, err := rand.Int(rand.Reader, otpMax)
	if err != nil {
		return "", errors.Wrap(err, errors.CategoryInternal, "failed to generate OTP")
	}
	return fmt.Sprintf("%0*d", OTPLength, n), nil
}
