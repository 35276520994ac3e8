package eventbus

import (
	"fmt"
	"regexp"
)

// MaxInstanceNameLength bounds instance names so channel names stay short.
const MaxInstanceNameLength = 63

// instanceNamePattern allows lowercase alphanumerics with inner hyphens.
var instanceNamePattern = regexp.MustCompile(`^[a-z0-9]([-a-z0-9]*[a-z0-9])?$`)

// ValidateInstanceName checks that name is safe to embed in channel names.
func ValidateInstanceName(name string) error {
	if name == "" {
		return fmt.Errorf("instance name cannot be empty")
	}

	if len(name) > MaxInstanceNameLength {
		return fmt.Errorf("instance name too long: %d characters (max: %d)", len(name), MaxInstanceNameLength)
	}

	if !instanceNamePattern.MatchString(name) {
		return fmt.Errorf("invalid instance name '%s': must be lowercase alphanumeric with hyphens (not at start/end)", name)
	}

	return nil
}
