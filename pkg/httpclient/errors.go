package httpclient

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	apperrors "github.com/utafrali/EVCatalog/pkg/errors"
)

// ResponseError reads and closes the body of a non-2xx response and maps it
// onto the application error taxonomy. upstream names the remote service in
// the message.
func ResponseError(resp *http.Response, upstream string) error {
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
	if err != nil {
		return fmt.Errorf("%s returned status %d (read body: %w)", upstream, resp.StatusCode, err)
	}
	msg := fmt.Sprintf("%s returned status %d: %s", upstream, resp.StatusCode, body)

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return &apperrors.AppError{Code: "UPSTREAM_NOT_FOUND", Message: msg, Status: http.StatusBadGateway, Err: apperrors.ErrNotFound}
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return apperrors.Unauthorized(msg)
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		return &apperrors.AppError{Code: "UPSTREAM_UNAVAILABLE", Message: msg, Status: http.StatusServiceUnavailable, Err: apperrors.ErrServiceUnavail}
	default:
		return errors.New(msg)
	}
}

// IsSuccess reports whether status is 2xx.
func IsSuccess(status int) bool {
	return status >= 200 && status < 300
}
