// Package validation provides input validation for user-supplied fields.
package validation

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

const (
	MinUsernameLength = 3
	MaxUsernameLength = 30
	MinPasswordLength = 6
	MaxPasswordLength = 128
	MaxPostLength     = 500
	MaxCommentLength  = 500
	MaxBioLength      = 160
	MinDisplayNameLen = 2
	MaxDisplayNameLen = 50
)

var (
	usernameRegex = regexp.MustCompile(`^[a-zA-Z0-9_]+$`)
	emailRegex    = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
)

// ValidateUsername checks length and character constraints.
func ValidateUsername(username string) error {
	if len(username) < MinUsernameLength {
		return fmt.Errorf("username must be at least %d characters", MinUsernameLength)
	}
	if len(username) > MaxUsernameLength {
		return fmt.Errorf("username must be at most %d characters", MaxUsernameLength)
	}
	if !usernameRegex.MatchString(username) {
		return fmt.Errorf("username may only contain letters, numbers, and underscores")
	}
	return nil
}

// ValidateEmail checks the address against a simple pattern.
func ValidateEmail(email string) error {
	if email == "" {
		return fmt.Errorf("email is required")
	}
	if !emailRegex.MatchString(email) {
		return fmt.Errorf("invalid email address")
	}
	return nil
}

// ValidatePassword enforces length bounds only. Complexity rules are
// deliberately not enforced here.
func ValidatePassword(password string) error {
	if len(password) < MinPasswordLength {
		return fmt.Errorf("password must be at least %d characters", MinPasswordLength)
	}
	if len(password) > MaxPasswordLength {
		return fmt.Errorf("password must be at most %d characters", MaxPasswordLength)
	}
	return nil
}

// ValidateDisplayName checks length bounds on the trimmed name.
func ValidateDisplayName(name string) error {
	trimmed := strings.TrimSpace(name)
	if utf8.RuneCountInString(trimmed) < MinDisplayNameLen {
		return fmt.Errorf("display name must be at least %d characters", MinDisplayNameLen)
	}
	if utf8.RuneCountInString(trimmed) > MaxDisplayNameLen {
		return fmt.Errorf("display name must be at most %d characters", MaxDisplayNameLen)
	}
	return nil
}

// ValidateBio allows empty but bounds the length.
func ValidateBio(bio string) error {
	if utf8.RuneCountInString(bio) > MaxBioLength {
		return fmt.Errorf("bio must be at most %d characters", MaxBioLength)
	}
	return nil
}

// ValidatePostContent requires non-blank content within the length cap.
func ValidatePostContent(content string) error {
	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return fmt.Errorf("post content cannot be empty")
	}
	if utf8.RuneCountInString(trimmed) > MaxPostLength {
		return fmt.Errorf("post content must be at most %d characters", MaxPostLength)
	}
	return nil
}

// ValidateCommentContent requires non-blank content within the length cap.
func ValidateCommentContent(content string) error {
	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return fmt.Errorf("comment content cannot be empty")
	}
	if utf8.RuneCountInString(trimmed) > MaxCommentLength {
		return fmt.Errorf("comment content must be at most %d characters", MaxCommentLength)
	}
	return nil
}
