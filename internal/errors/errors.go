package errors

import (
	"fmt"
	"time"
)

// ErrorType defines the category of the error
type ErrorType string

const (
	TypeConfiguration ErrorType = "CONFIGURATION"
	TypeTicketing     ErrorType = "TICKETING"
	TypeChat          ErrorType = "CHAT"
	TypeAI            ErrorType = "AI"
	TypeTimeout       ErrorType = "TIMEOUT"
	TypeInternal      ErrorType = "INTERNAL"
)

// AppError represents a domain-level error with a type and an underlying error
type AppError struct {
	Type       ErrorType
	Message    string
	Context    map[string]interface{}
	Err        error
	Suggestion string
}

func (e *AppError) Error() string {
	var msg string
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %s (%v)", e.Type, e.Message, e.Err)
	} else {
		msg = fmt.Sprintf("%s: %s", e.Type, e.Message)
	}

	if e.Context != nil {
		if status, ok := e.Context["status"].(string); ok && status != "" {
			msg += fmt.Sprintf(" - %s", status)
		}
	}

	return msg
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Is reports whether target is an AppError of the same type and message, so
// errors.Is matches the sentinels below after WithError/WithContext copies.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Type == t.Type && e.Message == t.Message
}

// WithError creates a new AppError with an underlying error
func (e *AppError) WithError(err error) *AppError {
	return &AppError{
		Type:       e.Type,
		Message:    e.Message,
		Context:    e.Context,
		Err:        err,
		Suggestion: e.Suggestion,
	}
}

// WithContext creates a new AppError with additional context
func (e *AppError) WithContext(key string, value interface{}) *AppError {
	ctx := make(map[string]interface{})
	for k, v := range e.Context {
		ctx[k] = v
	}
	ctx[key] = value
	return &AppError{
		Type:       e.Type,
		Message:    e.Message,
		Context:    ctx,
		Err:        e.Err,
		Suggestion: e.Suggestion,
	}
}

func (e *AppError) WithSuggestion(suggestion string) *AppError {
	return &AppError{
		Type:       e.Type,
		Message:    e.Message,
		Context:    e.Context,
		Err:        e.Err,
		Suggestion: suggestion,
	}
}

// NewAppError creates a new AppError
func NewAppError(t ErrorType, msg string, err error) *AppError {
	return &AppError{
		Type:    t,
		Message: msg,
		Err:     err,
	}
}

// RateLimitError is returned by remote collaborators when the server rejected
// the call because of rate limiting. RetryAfter is zero when the server did
// not suggest a delay.
type RateLimitError struct {
	Service    string
	RetryAfter time.Duration
	Err        error
}

func (e *RateLimitError) Error() string {
	msg := fmt.Sprintf("%s: rate limited", e.Service)
	if e.RetryAfter > 0 {
		msg += fmt.Sprintf(" (retry after %s)", e.RetryAfter)
	}
	if e.Err != nil {
		msg += fmt.Sprintf(": %v", e.Err)
	}
	return msg
}

func (e *RateLimitError) Unwrap() error {
	return e.Err
}

// NewRateLimitError creates a RateLimitError for the given service
func NewRateLimitError(service string, retryAfter time.Duration, err error) *RateLimitError {
	return &RateLimitError{
		Service:    service,
		RetryAfter: retryAfter,
		Err:        err,
	}
}

// Configuration errors
var (
	ErrPylonTokenMissing = NewAppError(TypeConfiguration, "PYLON_API_TOKEN environment variable must be set", nil).
				WithSuggestion("Export PYLON_API_TOKEN or add it to your .env file")

	ErrGitHubTokenMissing = NewAppError(TypeConfiguration, "GITHUB_TOKEN environment variable must be set", nil).
				WithSuggestion("Generate a token at: https://github.com/settings/tokens")

	ErrGitHubRepositoryMissing = NewAppError(TypeConfiguration, "GITHUB_REPOSITORY must be set as owner/repo", nil).
					WithSuggestion("Export GITHUB_REPOSITORY=owner/repo")

	ErrSlackTokenMissing = NewAppError(TypeConfiguration, "SLACK_API_TOKEN environment variable must be set", nil).
				WithSuggestion("Export SLACK_API_TOKEN or run with --dry-run")

	ErrSlackChannelMissing = NewAppError(TypeConfiguration, "SLACK_CHANNEL_ID environment variable must be set", nil).
				WithSuggestion("Export SLACK_CHANNEL_ID or run with --dry-run")

	ErrGeminiAPIKeyMissing = NewAppError(TypeConfiguration, "GEMINI_API_KEY environment variable must be set", nil).
				WithSuggestion("Get an API key at: https://aistudio.google.com/app/apikey")

	ErrInvalidDays = NewAppError(TypeConfiguration, "days must be zero or a positive number", nil).
			WithSuggestion("Use --days 7 to look back one week")

	ErrUnknownSource = NewAppError(TypeConfiguration, "unknown issue source", nil).
				WithSuggestion("Supported sources: pylon, github")

	ErrUnknownFormat = NewAppError(TypeConfiguration, "unknown output format", nil).
				WithSuggestion("Supported formats: text, json, yaml")

	ErrRunModeMissing = NewAppError(TypeConfiguration, "exactly one of --execute or --dry-run is required", nil).
				WithSuggestion("Use --dry-run to print the report without posting it")

	ErrConfigFile = NewAppError(TypeConfiguration, "failed to read config file", nil)
)

// Timeout errors
var (
	ErrProcessTimeout = NewAppError(TypeTimeout, "process has been running for over 1 hour. Aborting.", nil).
		WithSuggestion("Reduce --days or try again once the rate limit resets")
)

// Ticketing errors
var (
	ErrTicketingUnauthorized = NewAppError(TypeTicketing, "ticketing API rejected the credentials", nil).
					WithSuggestion("Check that the API token is valid and not expired")

	ErrTicketingRequest = NewAppError(TypeTicketing, "ticketing API request failed", nil)

	ErrTicketingDecode = NewAppError(TypeTicketing, "failed to decode ticketing API response", nil)
)

// Chat errors
var (
	ErrChatPost = NewAppError(TypeChat, "failed to post report to Slack", nil).
		WithSuggestion("Check that the bot is a member of the channel and has chat:write")
)

// AI errors
var (
	ErrAIGeneration = NewAppError(TypeAI, "AI generation failed", nil).
			WithSuggestion("Try again or check your API key configuration")

	ErrInvalidAIOutput = NewAppError(TypeAI, "invalid AI output format", nil).
				WithSuggestion("This is likely a temporary issue, please try again")
)

// Internal errors
var (
	ErrFactoryRegistered = NewAppError(TypeInternal, "command factory already registered", nil)
)
