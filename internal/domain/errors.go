package domain

import (
	"errors"
	"fmt"
)

// Business errors, mapped to HTTP status codes at the transport layer.
var (
	ErrNotAuthenticated = errors.New("not_authenticated") // 401
	ErrForbidden        = errors.New("forbidden")         // 403
	ErrNotFound         = errors.New("not_found")         // 404
	ErrAlreadyExists    = errors.New("already_exists")    // 409
	ErrBadParams        = errors.New("bad_params")        // 400
)

// LimitExceededError reports a daily quota hit. Current and Limit are
// carried for user-facing messaging; the counter is never advanced past
// Limit, so Current == Limit on every rejection after the cap.
type LimitExceededError struct {
	Action  ActionType
	Current int
	Limit   int
}

func (e *LimitExceededError) Error() string {
	return fmt.Sprintf("daily limit reached for %s (%d/%d)", e.Action, e.Current, e.Limit)
}

// ConfigError marks a programming error in limiter configuration, such
// as an action with no positive limit. It should fail loudly rather
// than be handled at runtime.
type ConfigError struct {
	Msg string
}

func (e *ConfigError) Error() string {
	return "config: " + e.Msg
}
