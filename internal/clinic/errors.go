package clinic

import (
	"errors"
	"fmt"
)

// Kind classifies why a remote call failed.
type Kind int

const (
	// KindConfiguration means the endpoint is unset; no request was sent.
	KindConfiguration Kind = iota + 1
	// KindTransport covers network failures and non-success HTTP statuses.
	KindTransport
	// KindParse means the body was not valid JSON.
	KindParse
	// KindApplication means the backend answered success:false.
	KindApplication
)

func (k Kind) String() string {
	switch k {
	case KindConfiguration:
		return "configuration"
	case KindTransport:
		return "transport"
	case KindParse:
		return "parse"
	case KindApplication:
		return "application"
	}
	return "unknown"
}

// Error is the uniform failure result of every remote call.
type Error struct {
	Kind    Kind
	Action  string
	Message string
	Err     error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// IsKind reports whether err is a clinic *Error of the given kind.
func IsKind(err error, kind Kind) bool {
	var ce *Error
	return errors.As(err, &ce) && ce.Kind == kind
}

// KindOf returns the kind of a clinic error, or zero for other errors.
func KindOf(err error) Kind {
	var ce *Error
	if errors.As(err, &ce) {
		return ce.Kind
	}
	return 0
}

func configError(action, message string) *Error {
	return &Error{Kind: KindConfiguration, Action: action, Message: message}
}

func transportError(action, message string, err error) *Error {
	return &Error{Kind: KindTransport, Action: action, Message: message, Err: err}
}

func parseError(action string, err error) *Error {
	return &Error{
		Kind:    KindParse,
		Action:  action,
		Message: fmt.Sprintf("invalid JSON response: %v", err),
		Err:     err,
	}
}

func applicationError(action, message string) *Error {
	if message == "" {
		message = "request failed"
	}
	return &Error{Kind: KindApplication, Action: action, Message: message}
}
