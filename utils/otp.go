// utils/otp.go
package utils

import (
	"context"
	"crypto/rand"
	"errors"
	"math/big"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"
)

// OTPAttemptLimit is the number of verification attempts allowed per phone
// number per hour. A 5-digit space is brute-forceable without this.
const OTPAttemptLimit = 5

var ErrTooManyAttempts = errors.New("too many OTP attempts")

// GenerateOTP returns a 5-digit code drawn uniformly from 10000-99999.
func GenerateOTP() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(90000))
	if err != nil {
		return "", err
	}
	return strconv.FormatInt(n.Int64()+10000, 10), nil
}

// ValidateOTPAttempts counts a verification attempt against the phone number
// and rejects once the hourly limit is exceeded. A nil client disables the
// check.
func ValidateOTPAttempts(phone string, rdb *redis.Client) error {
	if rdb == nil {
		return nil
	}

	key := "otp_attempts:" + phone
	attempts, err := rdb.Incr(context.Background(), key).Result()
	if err != nil {
		return err
	}

	// Set expiry if first attempt
	if attempts == 1 {
		rdb.Expire(context.Background(), key, 1*time.Hour)
	}

	if attempts > OTPAttemptLimit {
		return ErrTooManyAttempts
	}

	return nil
}
