package boc

import (
	"fmt"

	"github.com/sig-0/fxwatch/storage/types"
)

// FetchError is returned when the page could not be retrieved after every attempt
type FetchError struct {
	Err      error
	URL      string
	Attempts int
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("unable to fetch %s after %d attempt(s): %v", e.URL, e.Attempts, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// FormatError is returned when a publish time matches none of the known layouts
type FormatError struct {
	Input string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("unrecognized publish time format %q", e.Input)
}

// RowNotFoundError is returned when no table row matches the target currency
type RowNotFoundError struct {
	Currency types.Currency
}

func (e *RowNotFoundError) Error() string {
	return fmt.Sprintf("%s row not found on quotation page", e.Currency)
}
