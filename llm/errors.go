package llm

import "net/http"

// RateLimitError is raised by an adapter's Chat when the upstream responds
// 429. It carries the full response headers so the retry classifier can
// extract Retry-After.
type RateLimitError struct {
	Provider   string
	StatusCode int
	Headers    http.Header
	Message    string
}

func (e *RateLimitError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return "rate limited by " + e.Provider
}

// HTTPError is raised by an adapter's Chat for any non-2xx, non-429
// response. It carries enough of the upstream response for the retry
// classifier to act on.
type HTTPError struct {
	Provider   string
	StatusCode int
	Headers    http.Header
	Message    string
}

func (e *HTTPError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return "upstream error"
}

// StatusCode extracts the status code a retry classifier acts on, if err
// carries one.
func StatusCode(err error) (int, bool) {
	switch e := err.(type) {
	case *RateLimitError:
		return e.StatusCode, true
	case *HTTPError:
		return e.StatusCode, true
	default:
		return 0, false
	}
}

// RetryAfterHeader extracts the Retry-After header value from err, if any.
func RetryAfterHeader(err error) (string, bool) {
	var h http.Header
	switch e := err.(type) {
	case *RateLimitError:
		h = e.Headers
	case *HTTPError:
		h = e.Headers
	default:
		return "", false
	}
	if h == nil {
		return "", false
	}
	v := h.Get("Retry-After")
	if v == "" {
		return "", false
	}
	return v, true
}
