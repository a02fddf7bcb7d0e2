package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Error kinds. Source adapters wrap these so callers can branch with errors.Is.
var (
	ErrNetwork          = errors.New("network error")
	ErrDecode           = errors.New("decode error")
	ErrUnexpectedFormat = errors.New("unexpected format")
	ErrDataUnavailable  = errors.New("data unavailable")
	ErrNoDataForDate    = errors.New("no data for date")
	ErrInvalidRequest   = errors.New("invalid request")
)

// FormatError reports a response that arrived but cannot be read as a
// sounding table. It carries enough of the payload for a human to see what
// the upstream actually sent.
type FormatError struct {
	Source  string
	Reason  string
	Missing []string // aliases tried for the unresolved field
	Columns []string // columns actually present
	Snippet string   // start of the response body
}

func (e *FormatError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: unexpected format", e.Source)
	if e.Reason != "" {
		fmt.Fprintf(&b, " (%s)", e.Reason)
	}
	if len(e.Missing) > 0 {
		fmt.Fprintf(&b, ": none of the columns %q found", e.Missing)
	}
	if e.Columns != nil {
		fmt.Fprintf(&b, "; columns found: %q", e.Columns)
	}
	if e.Snippet != "" {
		fmt.Fprintf(&b, "; content starts: %s", e.Snippet)
	}
	return b.String()
}

func (e *FormatError) Unwrap() error { return ErrUnexpectedFormat }

// FallbackError is returned by automatic source selection when both sources
// failed. The web error is the one surfaced; the archive error stays
// reachable through errors.As for diagnostics.
type FallbackError struct {
	Archive error
	Web     error
}

func (e *FallbackError) Error() string {
	return fmt.Sprintf("%v (archive attempt: %v)", e.Web, e.Archive)
}

func (e *FallbackError) Unwrap() error { return e.Web }

// NoDataError is returned when every candidate hour failed, or when the
// context ended the search first. It matches ErrNoDataForDate, the last
// attempt's cause and, if set, Interrupted.
type NoDataError struct {
	Date        string
	Hours       []string // hours actually fetched
	Attempts    []error  // one per entry in Hours
	Interrupted error    // context error that stopped the search early
}

// Last returns the error from the final attempt.
func (e *NoDataError) Last() error {
	if len(e.Attempts) == 0 {
		return nil
	}
	return e.Attempts[len(e.Attempts)-1]
}

func (e *NoDataError) Error() string {
	msg := fmt.Sprintf("no sounding found for date %s (tried: %s): last error: %v",
		e.Date, strings.Join(e.Hours, ", "), e.Last())
	if e.Interrupted != nil {
		msg += fmt.Sprintf("; stopped early: %v", e.Interrupted)
	}
	return msg
}

func (e *NoDataError) Unwrap() []error {
	errs := []error{ErrNoDataForDate}
	if last := e.Last(); last != nil {
		errs = append(errs, last)
	}
	if e.Interrupted != nil {
		errs = append(errs, e.Interrupted)
	}
	return errs
}

// ErrorKind maps an error to a short label for metrics, logs and API payloads.
func ErrorKind(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, ErrInvalidRequest):
		return "invalid"
	case errors.Is(err, ErrNoDataForDate):
		return "no_data"
	case errors.Is(err, ErrUnexpectedFormat):
		return "format"
	case errors.Is(err, ErrDataUnavailable):
		return "unavailable"
	case errors.Is(err, ErrDecode):
		return "decode"
	case errors.Is(err, ErrNetwork):
		return "network"
	default:
		return "error"
	}
}
