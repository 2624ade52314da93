package apperrors

import "errors"

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrDuplicate indicates that an attempt was made to create a resource that already exists.
var ErrDuplicate = errors.New("resource already exists")

// ErrForbidden indicates that the requesting user does not own the resource.
var ErrForbidden = errors.New("forbidden")

// ErrInsufficientFunds indicates that a contribution or allocation exceeds the
// user's available capital.
var ErrInsufficientFunds = errors.New("insufficient funds")

// ErrLocked indicates that a withdrawal was attempted before the investment's
// maturity date lifted the redemption lock.
var ErrLocked = errors.New("investment is locked until maturity")
