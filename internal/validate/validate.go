// Package validate holds the input checks run before create mutations.
// Every check is pure and reports violations as *InvalidArgumentError,
// whose message is safe to show to API clients.
package validate

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// InvalidArgumentError is a client-visible validation failure.
type InvalidArgumentError struct {
	Message string
}

func (e *InvalidArgumentError) Error() string {
	return e.Message
}

// InvalidArgument returns an *InvalidArgumentError with a formatted message.
func InvalidArgument(format string, args ...any) error {
	return &InvalidArgumentError{Message: fmt.Sprintf(format, args...)}
}

// IsInvalidArgument reports whether err is, or wraps, an InvalidArgumentError.
func IsInvalidArgument(err error) bool {
	var target *InvalidArgumentError
	return errors.As(err, &target)
}

// User checks a new user's name and starting balance.
func User(name string, balance float64) error {
	if strings.TrimSpace(name) == "" {
		return InvalidArgument("User name should not be empty")
	}
	if balance <= 0 || math.IsNaN(balance) {
		return InvalidArgument("User balance should be positive")
	}
	return nil
}

// Post checks a new post's title and content.
func Post(title, content string) error {
	if strings.TrimSpace(title) == "" {
		return InvalidArgument("Title should not be empty")
	}
	if strings.TrimSpace(content) == "" {
		return InvalidArgument("Content should not be empty")
	}
	return nil
}

// Profile checks a new profile's year of birth against the minimum year.
func Profile(yearOfBirth, minYear int) error {
	if yearOfBirth < minYear {
		return InvalidArgument("Year of birth should not be earlier than %d", minYear)
	}
	return nil
}

// Integer converts v to an int, rejecting fractional and out-of-range values.
func Integer(v float64) (int, error) {
	if math.IsNaN(v) || math.IsInf(v, 0) || v != math.Trunc(v) {
		return 0, InvalidArgument("Int cannot represent non-integer value: %s", strconv.FormatFloat(v, 'f', -1, 64))
	}
	if v > math.MaxInt32 || v < math.MinInt32 {
		return 0, InvalidArgument("Int cannot represent non 32-bit signed integer value: %s", strconv.FormatFloat(v, 'f', -1, 64))
	}
	return int(v), nil
}
