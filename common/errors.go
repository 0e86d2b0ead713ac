// Copyright 2025 Blink Labs Software
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package common

import (
	"errors"
	"fmt"
)

var (
	// ErrUnauthorized matches every AuthorizationError
	ErrUnauthorized = errors.New("unauthorized")
	// ErrInvalid matches every ValidationError
	ErrInvalid = errors.New("invalid input")

	ErrZeroAddress     = errors.New("address cannot be the zero address")
	ErrEmptyField      = errors.New("required field is empty")
	ErrInvalidEIN      = errors.New("must provide a valid EIN")
	ErrInvalidAmount   = errors.New("amount must be greater than zero")
	ErrOutOfRange      = errors.New("index out of range")
	ErrDuplicateID     = errors.New("id already exists")
	ErrNotFound        = errors.New("does not exist")
	ErrTransferPending = errors.New("ownership transfer already pending")
)

// AuthorizationError is returned when the caller lacks the required role or
// ownership, or when the role it holds is paused
type AuthorizationError struct {
	Caller    Address
	Operation string
	Reason    string
}

func NewAuthorizationError(
	caller Address,
	operation string,
	reason string,
) AuthorizationError {
	return AuthorizationError{
		Caller:    caller,
		Operation: operation,
		Reason:    reason,
	}
}

func (e AuthorizationError) Error() string {
	return fmt.Sprintf(
		"%s: caller %s not authorized: %s",
		e.Operation,
		e.Caller,
		e.Reason,
	)
}

func (e AuthorizationError) Is(target error) bool {
	return target == ErrUnauthorized
}

// ValidationError is returned for bad arguments and for operations on
// non-existent or non-pending entities
type ValidationError struct {
	Err       error
	Operation string
	Field     string
}

func NewValidationError(operation, field string, err error) ValidationError {
	return ValidationError{
		Operation: operation,
		Field:     field,
		Err:       err,
	}
}

func (e ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("%s: %s", e.Operation, e.Err)
	}
	return fmt.Sprintf("%s: %s: %s", e.Operation, e.Field, e.Err)
}

func (e ValidationError) Unwrap() error {
	return e.Err
}

func (e ValidationError) Is(target error) bool {
	return target == ErrInvalid
}

// RequireAddress returns a ValidationError when addr is the zero address
func RequireAddress(operation, field string, addr Address) error {
	if addr.IsZero() {
		return NewValidationError(operation, field, ErrZeroAddress)
	}
	return nil
}

// RequireString returns a ValidationError when value is empty
func RequireString(operation, field, value string) error {
	if value == "" {
		return NewValidationError(operation, field, ErrEmptyField)
	}
	return nil
}
