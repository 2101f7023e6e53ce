package calculator

import (
	"errors"

	"github.com/shopspring/decimal"
)

var (
	ErrUnknownSplitMethod      = errors.New("unknown split method")
	ErrAttributionInconsistent = errors.New("split payload references a non-beneficiary")
	ErrUnknownMember           = errors.New("target member not found")
	ErrTooManyExpenses         = errors.New("too many expenses for one summary")
)

var (
	// Epsilon is the magnitude below which a counterparty balance counts as settled.
	Epsilon = decimal.New(1, -9)

	// BalanceTolerance is how far shares may drift from the total before a
	// split is reported as unbalanced.
	BalanceTolerance = decimal.New(1, -2)
)
