// Package validate provides shared input validation for review operations.
package validate

import (
	"fmt"
	"strings"

	"github.com/hay-kot/criterio"
)

// Section validates a comment section identifier is non-empty after trimming.
func Section(section string) error {
	if strings.TrimSpace(section) == "" {
		return fmt.Errorf("section identifier is required")
	}
	return nil
}

// CommentText validates comment text is non-empty after trimming.
func CommentText(text string) error {
	if strings.TrimSpace(text) == "" {
		return fmt.Errorf("comment text is required")
	}
	return nil
}

// Reason validates a rejection reason is non-empty after trimming.
func Reason(reason string) error {
	if strings.TrimSpace(reason) == "" {
		return fmt.Errorf("rejection reason is required")
	}
	return nil
}

// SessionID validates a session ID argument is present.
func SessionID(id string) error {
	if strings.TrimSpace(id) == "" {
		return fmt.Errorf("session id is required")
	}
	return nil
}

// Comment validates the inputs of a new comment, reporting each failing field.
func Comment(section, text string) error {
	return criterio.ValidateStruct(
		criterio.Run("section", section, Section),
		criterio.Run("text", text, CommentText),
	)
}
