package explorer

import (
	"errors"
	"fmt"
	"net/url"
)

// Kind classifies explorer failures so callers can pick a recovery path.
type Kind int

const (
	// KindTransport covers network failures and non-2xx HTTP responses.
	KindTransport Kind = iota + 1
	// KindDecode covers bodies that are not the JSON shape we expect.
	KindDecode
	// KindUpstreamDataMissing covers well-formed responses that lack the
	// data needed, e.g. an empty transaction list or an API-level rejection.
	KindUpstreamDataMissing
)

func (k Kind) String() string {
	switch k {
	case KindTransport:
		return "transport"
	case KindDecode:
		return "decode"
	case KindUpstreamDataMissing:
		return "upstream_data_missing"
	default:
		return "unknown"
	}
}

// Sentinels matched by *Error through errors.Is.
var (
	ErrTransport           = errors.New("explorer transport failure")
	ErrDecode              = errors.New("explorer response decode failure")
	ErrUpstreamDataMissing = errors.New("explorer data missing")

	// ErrNoTransactions is returned when an address has no transactions at all.
	// It is also an ErrUpstreamDataMissing.
	ErrNoTransactions = errors.New("no transactions found")
)

// Error is returned by every explorer call that fails.
type Error struct {
	Kind Kind
	// URL has the API key redacted.
	URL        string
	StatusCode int
	Status     string
	Err        error
}

func (e *Error) Error() string {
	msg := "explorer " + e.Kind.String()
	if e.URL != "" {
		msg += ": " + e.URL
	}
	switch {
	case e.StatusCode != 0:
		return fmt.Sprintf("%s: HTTP %d %s", msg, e.StatusCode, e.Status)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", msg, e.Err)
	default:
		return msg
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches the kind sentinels.
func (e *Error) Is(target error) bool {
	switch target {
	case ErrTransport:
		return e.Kind == KindTransport
	case ErrDecode:
		return e.Kind == KindDecode
	case ErrUpstreamDataMissing:
		return e.Kind == KindUpstreamDataMissing
	}
	return false
}

// KindOf returns the kind of an explorer error, or 0 if err is not one.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}

func (e *Error) retryable() bool {
	if e.Kind != KindTransport {
		return false
	}
	return e.StatusCode == 0 || e.StatusCode == 429 || e.StatusCode >= 500
}

// redact hides the apikey query parameter so URLs can be logged.
func redact(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "<invalid url>"
	}
	q := u.Query()
	if q.Has("apikey") {
		q.Set("apikey", "REDACTED")
		u.RawQuery = q.Encode()
	}
	return u.String()
}
