package lark

import (
	"errors"
	"fmt"
)

// ErrMissingCredentials is returned by elevated operations when app_id and
// app_secret are not configured. It is reported before any network call.
var ErrMissingCredentials = errors.New("app_id and app_secret are required")

// InvalidInputError reports a binary input that cannot be normalized.
type InvalidInputError struct {
	Reason string
}

func (e *InvalidInputError) Error() string {
	return "invalid input: " + e.Reason
}

// AuthError reports a token exchange rejected by the remote service.
type AuthError struct {
	Msg string
}

func (e *AuthError) Error() string {
	if e.Msg == "" {
		return "get token fail"
	}
	return fmt.Sprintf("get token fail: %s", e.Msg)
}

// UploadError reports a media upload rejected by the remote service.
type UploadError struct {
	Msg string
}

func (e *UploadError) Error() string {
	if e.Msg == "" {
		return "upload image fail"
	}
	return fmt.Sprintf("upload image fail: %s", e.Msg)
}

// TransportError wraps a network or response-decoding failure. It is always
// surfaced to the caller; nothing in this package retries.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}
