package validation

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// Input limits for group operations.
const (
	// MaxGroupNameLength bounds group names; the platform rejects longer
	// names server-side, this just fails earlier with a clearer message.
	MaxGroupNameLength = 64
	// MaxGroupList is the most group names a single template_info query accepts.
	MaxGroupList = 20
)

// ValidateGroupName checks that a group name is non-empty, within length
// bounds, and free of characters that would break URL path embedding.
func ValidateGroupName(name string) error {
	if name == "" {
		return fmt.Errorf("group name cannot be empty")
	}

	length := utf8.RuneCountInString(name)
	if length > MaxGroupNameLength {
		return fmt.Errorf("group name exceeds maximum length of %d characters (got %d)", MaxGroupNameLength, length)
	}

	if strings.ContainsAny(name, "/?#%\\") {
		return fmt.Errorf("group name %q contains invalid characters (/, ?, #, %%, \\)", name)
	}
	if strings.TrimSpace(name) != name {
		return fmt.Errorf("group name must not have leading or trailing whitespace")
	}

	return nil
}

// ValidateGroupList checks a template_info name list against the batch cap
// and validates each name.
func ValidateGroupList(names []string) error {
	if len(names) == 0 {
		return fmt.Errorf("group list cannot be empty")
	}
	if len(names) > MaxGroupList {
		return fmt.Errorf("group list exceeds maximum of %d names (got %d)", MaxGroupList, len(names))
	}
	for _, name := range names {
		if err := ValidateGroupName(name); err != nil {
			return err
		}
	}
	return nil
}
