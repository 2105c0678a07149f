package types

import "encoding/json"

// Error Instead of reusing transport status codes to describe signing-bridge
// failures (which often do not have a good analog), rich errors are returned
// using this object. Both the code and message fields can be individually used
// to correctly identify an error. Implementations MUST use unique values for
// both fields.
type Error struct {
	// Code is a bridge-specific error code, aligned with the JSON-RPC provider
	// error range so it can travel over the wire unchanged.
	Code int32 `json:"code"`
	// Message is a stable error message. The message MUST NOT change for a
	// given code; contextual information belongs in the details field.
	Message string `json:"message"`
	// An error is retriable if the same request may succeed if submitted again.
	Retriable bool `json:"retriable"`
	// Often times it is useful to return context specific to the request that
	// caused the error (i.e. the connection id or signer address) in addition
	// to the standard error message.
	Details map[string]any `json:"details,omitempty"`
}

func (e *Error) Error() string {
	bytes, _ := json.MarshalIndent(e, "", "  ")
	return string(bytes)
}

// Is matches on code so that errors.Is works across WrapErr copies.
func (e *Error) Is(target error) bool {
	other, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code == other.Code
}

var (
	// ErrUserRejected is the terminal outcome of a reject() decision. It is
	// expected, not exceptional: the transport treats it as a clean resolution.
	ErrUserRejected = &Error{
		Code:    4001,
		Message: "User rejected",
	}
	// ErrInvalidSession means no connection matches the id a request named.
	ErrInvalidSession = &Error{
		Code:    4100,
		Message: "Invalid session",
	}
	// ErrInvalidNetwork means the connection's negotiated chain id does not
	// map to the currently active network.
	ErrInvalidNetwork = &Error{
		Code:    4201,
		Message: "Invalid network",
	}
	// ErrInvalidSigner means the signer address is not authorized on the
	// connection, or is not locally signable (watch and ledger accounts).
	ErrInvalidSigner = &Error{
		Code:    4202,
		Message: "Invalid signer",
	}
	// ErrSignRequest wraps any upstream protocol or encoding failure.
	ErrSignRequest = &Error{
		Code:      4300,
		Message:   "Sign request failed",
		Retriable: true,
	}
)

// WrapErr adds details to the types.Error provided. We use a function
// to do this so that we don't accidentially overrwrite the standard
// errors.
func WrapErr(rErr *Error, err error) *Error {
	newErr := &Error{
		Code:      rErr.Code,
		Message:   rErr.Message,
		Retriable: rErr.Retriable,
	}
	if err != nil {
		newErr.Details = map[string]interface{}{
			"context": err.Error(),
		}
	}

	return newErr
}
