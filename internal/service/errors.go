package service

import "errors"

// Failures the handlers translate into HTTP statuses. Everything else is a
// storage or internal error and surfaces as a 500.
var (
	ErrInvalidInput   = errors.New("invalid input")
	ErrBadCredentials = errors.New("wrong credentials")
	ErrNotFound       = errors.New("not found")
	ErrWrongPasskey   = errors.New("wrong passkey")
	ErrNotOwner       = errors.New("only the group owner can do this")
	ErrNotMember      = errors.New("not a member of this group")
)
