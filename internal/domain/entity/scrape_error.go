package entity

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound means a selector matched nothing. Usually "feature absent for this unit".
	ErrNotFound = errors.New("element not found")
	// ErrTimeout means a readiness wait did not complete in time.
	ErrTimeout = errors.New("wait timed out")
	// ErrInvalidAddress means the wallet address is not a 20-byte hex address.
	ErrInvalidAddress = errors.New("invalid wallet address")
	// ErrSessionUnavailable means the page session could not be opened or navigated.
	ErrSessionUnavailable = errors.New("page session unavailable")
)

// Unit names the granularity at which an extraction failure is contained.
type Unit string

const (
	UnitRow     Unit = "row"
	UnitTable   Unit = "table"
	UnitPanel   Unit = "panel"
	UnitProject Unit = "project"
	UnitChain   Unit = "chain"
)

// UnitError is a failure of one row, table, panel, project or chain.
// The unit is dropped from the result; processing of its siblings continues.
type UnitError struct {
	Unit  Unit
	Index int
	Err   error
}

func (e *UnitError) Error() string {
	return fmt.Sprintf("%s %d: %v", e.Unit, e.Index, e.Err)
}

func (e *UnitError) Unwrap() error {
	return e.Err
}

// NewUnitError wraps err as a failure of the given unit.
func NewUnitError(unit Unit, index int, err error) *UnitError {
	return &UnitError{Unit: unit, Index: index, Err: err}
}

// ScrapeError represents a failure while scraping one wallet in a batch.
type ScrapeError struct {
	WalletAddress string `json:"walletAddress"`
	Stage         string `json:"stage"`
	Message       string `json:"message"`
}
