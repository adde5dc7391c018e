package ai

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// KeyRejectedError is returned for 401/403: the service refused GROQ_API_KEY.
type KeyRejectedError struct{ *APIError }

func (e *KeyRejectedError) Error() string {
	return fmt.Sprintf("the AI service rejected GROQ_API_KEY; check the key in your environment or .env file (%s)", e.APIError.Error())
}

// BusyError is returned for 429. Wait is zero when the service gave no hint.
type BusyError struct {
	*APIError
	Wait time.Duration
}

func (e *BusyError) Error() string {
	if e.Wait > 0 {
		return fmt.Sprintf("the AI service is rate limiting requests; try again in %ds (%s)", int(e.Wait.Round(time.Second).Seconds()), e.APIError.Error())
	}
	return fmt.Sprintf("the AI service is rate limiting requests; try again shortly (%s)", e.APIError.Error())
}

// PromptRejectedError is returned for 400/413/422, typically when the data
// sample does not fit the model's context.
type PromptRejectedError struct{ *APIError }

func (e *PromptRejectedError) Error() string {
	return fmt.Sprintf("the AI service rejected the request; try a file with fewer or narrower columns (%s)", e.APIError.Error())
}

// UnavailableError is returned for 5xx.
type UnavailableError struct{ *APIError }

func (e *UnavailableError) Error() string {
	return fmt.Sprintf("the AI service is unavailable right now (%s)", e.APIError.Error())
}

// classify wraps apiErr in the error type matching what the user can do next.
func classify(apiErr *APIError, h http.Header, now time.Time) error {
	switch sc := apiErr.StatusCode; {
	case sc == http.StatusUnauthorized, sc == http.StatusForbidden:
		return &KeyRejectedError{APIError: apiErr}
	case sc == http.StatusTooManyRequests:
		return &BusyError{APIError: apiErr, Wait: waitHint(h, now)}
	case sc == http.StatusBadRequest, sc == http.StatusRequestEntityTooLarge, sc == http.StatusUnprocessableEntity:
		return &PromptRejectedError{APIError: apiErr}
	case sc >= 500:
		return &UnavailableError{APIError: apiErr}
	}
	return apiErr
}

// waitHint reads Retry-After (seconds or HTTP date), then the service's
// x-ratelimit-reset-* durations such as "7.66s" or "2m59.56s".
func waitHint(h http.Header, now time.Time) time.Duration {
	if v := strings.TrimSpace(h.Get("Retry-After")); v != "" {
		if secs, err := strconv.Atoi(v); err == nil && secs > 0 {
			return time.Duration(secs) * time.Second
		}
		if at, err := http.ParseTime(v); err == nil && at.After(now) {
			return at.Sub(now)
		}
	}
	var wait time.Duration
	for _, k := range []string{"X-Ratelimit-Reset-Requests", "X-Ratelimit-Reset-Tokens"} {
		if d, err := time.ParseDuration(strings.TrimSpace(h.Get(k))); err == nil && d > wait {
			wait = d
		}
	}
	return wait
}
