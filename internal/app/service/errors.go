package service

import (
	"errors"
	"fmt"
)

// ErrorKind enumerates the ways a resolution can fail.
type ErrorKind int

const (
	KindNotFound ErrorKind = iota + 1
	KindExpired
	KindInfrastructure
)

func (k ErrorKind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindExpired:
		return "expired"
	case KindInfrastructure:
		return "infrastructure"
	default:
		return fmt.Sprintf("ErrorKind(%d)", int(k))
	}
}

// UserMessage is the text shown to someone following a broken link.
func (k ErrorKind) UserMessage() string {
	switch k {
	case KindNotFound:
		return "link not found"
	case KindExpired:
		return "link expired"
	default:
		return "temporary error, please try again later"
	}
}

var (
	ErrNotFound       = errors.New("short link not found")
	ErrExpired        = errors.New("short link expired")
	ErrInfrastructure = errors.New("short link registry unavailable")
)

// ResolveError is the only error type returned by Resolver.Resolve.
// errors.Is matches it against ErrNotFound, ErrExpired or ErrInfrastructure
// according to Kind.
type ResolveError struct {
	Kind ErrorKind
	Code string
	Err  error
}

func (e *ResolveError) Error() string {
	msg := fmt.Sprintf("resolve %q: %s", e.Code, e.sentinel())
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ResolveError) Unwrap() error {
	return e.Err
}

func (e *ResolveError) Is(target error) bool {
	return target == e.sentinel()
}

func (e *ResolveError) sentinel() error {
	switch e.Kind {
	case KindNotFound:
		return ErrNotFound
	case KindExpired:
		return ErrExpired
	default:
		return ErrInfrastructure
	}
}

// KindOf classifies any error returned by the service. Errors that are not
// a *ResolveError count as infrastructure failures.
func KindOf(err error) ErrorKind {
	var re *ResolveError
	if errors.As(err, &re) {
		return re.Kind
	}
	return KindInfrastructure
}
