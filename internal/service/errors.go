package service

import "errors"

var (
	ErrInvalidSymbol    = errors.New("unsupported symbol")
	ErrInvalidDate      = errors.New("invalid purchase date or time")
	ErrFutureDate       = errors.New("purchase date is in the future")
	ErrInvalidAmount    = errors.New("amount must be a positive number")
	ErrPriceUnavailable = errors.New("price unavailable")
	ErrStoreFailure     = errors.New("record store failure")
	ErrNotFound         = errors.New("error not found")
	ErrNothingToExport  = errors.New("portfolio is empty")
	ErrFileTooLarge     = errors.New("report exceeds file limit")
)
