// Package auth handles local credentials and the signed bearer tokens issued
// for them.
package auth

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidCredentials is returned when a handle is unknown or the
	// password does not match. The two cases are deliberately indistinguishable.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrAuthenticationFailed wraps every login failure.
	ErrAuthenticationFailed = errors.New("authentication failed")

	// ErrTokenInvalid is returned for tokens that are malformed, carry a bad
	// signature or name the wrong subject.
	ErrTokenInvalid = errors.New("invalid token")

	// ErrTokenExpired is returned for well-formed tokens past their expiry.
	ErrTokenExpired = errors.New("token expired")

	// ErrPasswordTooLong is returned by Hasher.Hash for passwords bcrypt
	// cannot hash.
	ErrPasswordTooLong = fmt.Errorf("password exceeds %d bytes", MaxPasswordBytes)
)
