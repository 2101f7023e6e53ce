package calculator

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// SplitMethod determines how an expense total is divided among beneficiaries.
type SplitMethod int

const (
	// Equal divides the total evenly among beneficiaries.
	Equal SplitMethod = iota
	// Unequal uses manually assigned amounts per beneficiary.
	Unequal
	// Itemized charges each beneficiary the items assigned to them.
	Itemized
)

func (m SplitMethod) String() string {
	switch m {
	case Equal:
		return "equal"
	case Unequal:
		return "unequal"
	case Itemized:
		return "itemized"
	default:
		return fmt.Sprintf("SplitMethod(%d)", int(m))
	}
}

// ParseSplitMethod converts a persisted method name into a SplitMethod.
func ParseSplitMethod(s string) (SplitMethod, error) {
	switch s {
	case "equal", "":
		return Equal, nil
	case "unequal":
		return Unequal, nil
	case "itemized":
		return Itemized, nil
	default:
		return Equal, fmt.Errorf("%w: %q", ErrUnknownSplitMethod, s)
	}
}

// Payload is the method-specific allocation data of an expense.
// It is one of EqualSplit, UnequalSplit or ItemizedSplit.
type Payload interface {
	Method() SplitMethod
	isPayload()
}

// EqualSplit carries no data; every beneficiary pays total / count.
type EqualSplit struct{}

// UnequalSplit maps beneficiary ID to a manually assigned amount.
type UnequalSplit struct {
	Amounts map[string]decimal.Decimal
}

// ItemizedSplit lists line items, each optionally assigned to one beneficiary.
type ItemizedSplit struct {
	Items []LineItem
}

// LineItem is one line of an itemized expense.
// AssignedTo is empty when the item is charged to nobody.
type LineItem struct {
	Name       string
	Price      decimal.Decimal
	AssignedTo string
}

func (EqualSplit) Method() SplitMethod    { return Equal }
func (UnequalSplit) Method() SplitMethod  { return Unequal }
func (ItemizedSplit) Method() SplitMethod { return Itemized }

func (EqualSplit) isPayload()    {}
func (UnequalSplit) isPayload()  {}
func (ItemizedSplit) isPayload() {}

// Shares maps beneficiary ID to the amount that beneficiary owes.
type Shares map[string]decimal.Decimal

// Of returns the share of id, zero when absent.
func (s Shares) Of(id string) decimal.Decimal {
	return s[id]
}

// Total returns the sum of all shares.
func (s Shares) Total() decimal.Decimal {
	sum := decimal.Zero
	for _, v := range s {
		sum = sum.Add(v)
	}
	return sum
}

// ResolveShares computes each beneficiary's share of total.
//
// A payload that does not match method (e.g. an UnequalSplit on an Itemized
// expense) resolves to an empty mapping. A nil payload is accepted for Equal.
// Equal shares use decimal division and are not adjusted for remainders, so
// their sum may differ from total by a sub-cent epsilon.
func ResolveShares(total decimal.Decimal, method SplitMethod, payload Payload, beneficiaries []string) Shares {
	shares := make(Shares, len(beneficiaries))

	switch method {
	case Equal:
		if payload != nil {
			if _, ok := payload.(EqualSplit); !ok {
				return Shares{}
			}
		}
		if len(beneficiaries) == 0 {
			return shares
		}
		each := total.Div(decimal.NewFromInt(int64(len(beneficiaries))))
		for _, b := range beneficiaries {
			shares[b] = each
		}

	case Unequal:
		p, ok := payload.(UnequalSplit)
		if !ok {
			return Shares{}
		}
		for _, b := range beneficiaries {
			shares[b] = p.Amounts[b]
		}

	case Itemized:
		p, ok := payload.(ItemizedSplit)
		if !ok {
			return Shares{}
		}
		for _, b := range beneficiaries {
			shares[b] = decimal.Zero
		}
		for _, item := range p.Items {
			// Unassigned items and items assigned outside the beneficiary
			// set are charged to nobody.
			if _, ok := shares[item.AssignedTo]; !ok {
				continue
			}
			shares[item.AssignedTo] = shares[item.AssignedTo].Add(item.Price)
		}

	default:
		return Shares{}
	}

	return shares
}

// UnallocatedAmount returns the sum of item prices nobody is charged for.
// It is always zero for non-itemized payloads.
func UnallocatedAmount(payload Payload) decimal.Decimal {
	p, ok := payload.(ItemizedSplit)
	if !ok {
		return decimal.Zero
	}
	sum := decimal.Zero
	for _, item := range p.Items {
		if item.AssignedTo == "" {
			sum = sum.Add(item.Price)
		}
	}
	return sum
}

// IsBalanced reports whether shares add up to total within BalanceTolerance.
// The engine never enforces this; it backs the "unbalanced split" warning.
func IsBalanced(total decimal.Decimal, shares Shares) bool {
	return shares.Total().Sub(total).Abs().LessThanOrEqual(BalanceTolerance)
}

// itemsFor returns the items of payload assigned to memberID.
func itemsFor(payload Payload, memberID string) []LineItem {
	p, ok := payload.(ItemizedSplit)
	if !ok {
		return nil
	}
	var items []LineItem
	for _, item := range p.Items {
		if item.AssignedTo == memberID {
			items = append(items, item)
		}
	}
	return items
}
