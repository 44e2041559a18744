package scienceon

import (
	"errors"
	"fmt"
)

// Gateway-specific errors.
var (
	// ErrUnsupportedTarget indicates an unknown literature collection.
	ErrUnsupportedTarget = errors.New("scienceon: unsupported search target")
)

// APIError represents a gateway error response.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("scienceon: gateway error [%s] %s", e.Code, e.Message)
	}
	return fmt.Sprintf("scienceon: HTTP %d: %s", e.StatusCode, e.Message)
}

// IsGatewayError checks if the error is a gateway error response.
func IsGatewayError(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr)
}
