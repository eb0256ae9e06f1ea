package auth

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"
)

const (
	OTPLength      = 6
	OTPValidFor    = 10 * time.Minute
	MaxOTPAttempts = 5
)

type CodeGenerator interface {
	Generate() (string, error)
}

// RandomCodes draws uniformly from 000000..999999.
type RandomCodes struct{}

func (RandomCodes) Generate() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1_000_000))
	if err != nil {
		return "", fmt.Errorf("otp: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
