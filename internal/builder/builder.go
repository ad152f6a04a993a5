// Package builder turns raw user text into a study Audit by calling a
// generative-AI backend. Backends are interchangeable; the rest of the bot
// only sees the Builder interface.
package builder

import (
	"context"
	"fmt"

	"senseibot/internal/models"
)

// Builder generates a complete Audit from one user submission. Any non-nil
// error means no artifact was produced; callers report the failure to the
// user and leave session state untouched.
type Builder interface {
	Build(ctx context.Context, rawText string) (*models.Audit, error)
}

// Error marks a failure of the generative backend or of parsing its
// response. It wraps the underlying cause.
type Error struct {
	Provider string
	Err      error
}

func (e *Error) Error() string {
	return fmt.Sprintf("builder %s: %v", e.Provider, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}
