package auth

import (
	"crypto/rand"
	"crypto/subtle"
	"math/big"
)

const otpDigits = 6

// GenerateOTP returns a zero-padded numeric one-time passcode.
func GenerateOTP() (string, error) {
	const digits = "0123456789"
	out := make([]byte, otpDigits)
	for i := range out {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(digits))))
		if err != nil {
			return "", err
		}
		out[i] = digits[n.Int64()]
	}
	return string(out), nil
}

func EqualOTP(expected, got string) bool {
	if expected == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(expected), []byte(got)) == 1
}
