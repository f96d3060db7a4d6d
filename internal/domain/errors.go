package domain

import "errors"

var (
	// ErrInvalidInputShape reports mismatched or non-finite observation arrays.
	ErrInvalidInputShape = errors.New("invalid input shape")

	// ErrInvalidModelState reports a read of model output before a successful fit.
	ErrInvalidModelState = errors.New("invalid model state")

	// ErrNumericalInstability reports a zero pivot during the regularized solve.
	ErrNumericalInstability = errors.New("numerical instability")

	// ErrUnauthorized reports a caller missing from the allow list.
	ErrUnauthorized = errors.New("caller not authorized")
)
