package app

import (
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

// waitlistEmailTag is the validator tag for signup addresses.
const waitlistEmailTag = "waitlist_email"

// waitlistEmailPattern accepts an ASCII local part ending in a letter, digit,
// '_', '+' or '-', and a dotted hostname whose last label is at least two letters.
var waitlistEmailPattern = regexp.MustCompile(`^[A-Za-z0-9_'+\-.]*[A-Za-z0-9_+-]@([A-Za-z0-9][A-Za-z0-9\-]*\.)+[A-Za-z]{2,}$`)

// isWaitlistEmail also rejects a leading dot and consecutive dots anywhere.
func isWaitlistEmail(email string) bool {
	if strings.HasPrefix(email, ".") || strings.Contains(email, "..") {
		return false
	}
	return waitlistEmailPattern.MatchString(email)
}

func newValidator() *validator.Validate {
	v := validator.New()
	// Registration only fails for an empty tag or nil func.
	_ = v.RegisterValidation(waitlistEmailTag, func(fl validator.FieldLevel) bool {
		return isWaitlistEmail(fl.Field().String())
	})
	return v
}
