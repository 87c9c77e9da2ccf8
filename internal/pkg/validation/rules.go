// Package validation registers the request binding rules shared by the API.
package validation

import (
	"fmt"
	"regexp"
	"strings"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/yigit/rollcall/internal/app/models"
)

// Validation rule limits
const (
	UsernameMaxLength    = 100
	PasswordMinLength    = 6
	PasswordMaxLength    = 256
	InstitutionMaxLength = 255
)

// Validation rule patterns
var (
	// OrgCodePattern accepts any well-formed code, not only ones this build generates
	OrgCodePattern = `^[A-Z]{3}-[A-Z]{1,6}-[A-Z0-9]{6}$`

	// UsernamePattern allows letters, digits and . _ - @
	UsernamePattern = `^[\p{L}\p{N}._@-]+$`
)

// CompiledPatterns caches compiled regex patterns
var CompiledPatterns = struct {
	OrgCode  *regexp.Regexp
	Username *regexp.Regexp
}{
	OrgCode:  regexp.MustCompile(OrgCodePattern),
	Username: regexp.MustCompile(UsernamePattern),
}

// Custom tag names
const (
	TagOrgCode         = "orgcode"
	TagInstitutionType = "institution_type"
	TagRole            = "role"
	TagUsername        = "username"
)

var registerOnce sync.Once

// RegisterBindingRules adds the custom tags to gin's validator. Safe to call more than once.
func RegisterBindingRules() error {
	var err error
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			err = fmt.Errorf("unexpected binding engine %T", binding.Validator.Engine())
			return
		}
		err = Register(v)
	})
	return err
}

// Register adds the custom tags to v
func Register(v *validator.Validate) error {
	rules := map[string]validator.Func{
		TagOrgCode:         validateOrgCode,
		TagInstitutionType: validateInstitutionType,
		TagRole:            validateRole,
		TagUsername:        validateUsername,
	}
	for tag, fn := range rules {
		if err := v.RegisterValidation(tag, fn); err != nil {
			return fmt.Errorf("register %s: %w", tag, err)
		}
	}
	return nil
}

func validateOrgCode(fl validator.FieldLevel) bool {
	return CompiledPatterns.OrgCode.MatchString(models.NormalizeOrgCode(fl.Field().String()))
}

func validateInstitutionType(fl validator.FieldLevel) bool {
	return models.ParseInstitutionType(fl.Field().String()).Valid()
}

func validateRole(fl validator.FieldLevel) bool {
	return models.ParseRole(fl.Field().String()).Valid()
}

func validateUsername(fl validator.FieldLevel) bool {
	return ValidUsername(fl.Field().String())
}

// ValidUsername reports whether a trimmed username is acceptable
func ValidUsername(username string) bool {
	username = strings.TrimSpace(username)
	return username != "" &&
		len(username) <= UsernameMaxLength &&
		CompiledPatterns.Username.MatchString(username)
}

// FieldMessage renders a validator failure as a short human message
func FieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		return fmt.Sprintf("must be at least %s characters", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	case TagOrgCode:
		return "must look like SCH-NAME-XXXXXX"
	case TagInstitutionType:
		return "must be school or college"
	case TagRole:
		return "must be admin or teacher"
	case TagUsername:
		return "may contain letters, digits and . _ - @ only"
	default:
		return fmt.Sprintf("failed on %s", fe.Tag())
	}
}
