package shopify

import (
	"fmt"
	"strings"
)

// StatusError is returned for non-2xx HTTP responses.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("shopify responded %d: %s", e.StatusCode, strings.TrimSpace(e.Body))
}

// GraphQLError is one entry of a top-level "errors" array.
type GraphQLError struct {
	Message string `json:"message"`
}

// GraphQLErrors wraps a non-empty top-level "errors" array.
type GraphQLErrors struct {
	Errors []GraphQLError
}

func (e *GraphQLErrors) Error() string {
	parts := make([]string, 0, len(e.Errors))
	for _, err := range e.Errors {
		if msg := strings.TrimSpace(err.Message); msg != "" {
			parts = append(parts, msg)
		}
	}
	if len(parts) == 0 {
		return "shopify graphql error"
	}
	return "shopify graphql error: " + strings.Join(parts, "; ")
}

// UserError is a mutation validation error.
type UserError struct {
	Field   []string `json:"field"`
	Message string   `json:"message"`
}

// UserErrorsError is returned when a mutation payload carries userErrors.
type UserErrorsError struct {
	Action string
	Errors []UserError
}

func (e *UserErrorsError) Error() string {
	parts := make([]string, 0, len(e.Errors))
	for _, err := range e.Errors {
		field := strings.Join(err.Field, ".")
		message := strings.TrimSpace(err.Message)
		if field == "" {
			parts = append(parts, message)
			continue
		}
		parts = append(parts, fmt.Sprintf("%s: %s", field, message))
	}
	if len(parts) == 0 {
		return fmt.Sprintf("shopify %s failed with user errors", e.Action)
	}
	return fmt.Sprintf("shopify %s failed: %s", e.Action, strings.Join(parts, "; "))
}

func userErrors(action string, errs []UserError) error {
	if len(errs) == 0 {
		return nil
	}
	return &UserErrorsError{Action: action, Errors: errs}
}
