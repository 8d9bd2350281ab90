package service

import (
	"errors"
	"fmt"
)

type UnsupportedSymbolError struct {
	Symbol string
}

func (e *UnsupportedSymbolError) Error() string {
	return fmt.Sprintf("Unsupported symbol: %s", e.Symbol)
}

type InvalidQuantityError struct {
	Symbol string
}

func (e *InvalidQuantityError) Error() string {
	return fmt.Sprintf("Invalid quantity for %s", e.Symbol)
}

// PriceUnavailableError may succeed on retry once the provider recovers.
type PriceUnavailableError struct {
	Symbol string
}

func (e *PriceUnavailableError) Error() string {
	return fmt.Sprintf("Failed to fetch price for %s", e.Symbol)
}

// IsClientError reports whether err was caused by the request contents and
// should be surfaced to the caller.
func IsClientError(err error) bool {
	var unsupported *UnsupportedSymbolError
	var invalidQty *InvalidQuantityError
	var unavailable *PriceUnavailableError
	return errors.As(err, &unsupported) ||
		errors.As(err, &invalidQty) ||
		errors.As(err, &unavailable)
}
