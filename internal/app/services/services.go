// Package services holds the application use cases. Services depend only on
// the store interfaces in repositories, never on a concrete database.
package services

import (
	"strings"
	"time"

	"github.com/yigit/rollcall/internal/pkg/apperrors"
)

// Clock returns the current time. Tests substitute a fake.
type Clock func() time.Time

func orSystemClock(c Clock) Clock {
	if c == nil {
		return time.Now
	}
	return c
}

func requireField(value, name string) (string, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", apperrors.NewValidationError(name + " is required")
	}
	return value, nil
}

func optional(value string) *string {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	return &value
}
