package service

import "errors"

var (
	ErrInvalidFilter   = errors.New("invalid product filter")
	ErrInvalidQuantity = errors.New("quantity must be between 1 and 99")
	ErrEmptyCart       = errors.New("cart is empty")
	ErrInvalidStatus   = errors.New("invalid order status")
	ErrBlankField      = errors.New("required field is blank")
)
