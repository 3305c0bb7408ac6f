package token

import "errors"

var (
	// Balance and allowance errors
	ErrInsufficientBalance   = errors.New("token: insufficient balance")
	ErrInsufficientAllowance = errors.New("token: insufficient allowance")
	ErrAllowanceUnderflow    = errors.New("token: allowance underflow")

	// Address validation errors
	ErrInvalidRecipient = errors.New("token: invalid recipient address")
	ErrInvalidSpender   = errors.New("token: invalid spender address")
	ErrInvalidOwner     = errors.New("token: invalid owner address")

	// Access control errors
	ErrUnauthorized = errors.New("token: unauthorized")

	// Numeric errors
	ErrArithmeticOverflow = errors.New("token: arithmetic overflow")
)
