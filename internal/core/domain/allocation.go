package domain

import (
	"fmt"
	"strings"
)

// AllocationLine is one requested split of a payment: an amount to
// apply against a single outstanding balance.
type AllocationLine struct {
	Key    BalanceKey
	Amount Money
}

// CollectionGroup is a validated payment split, ready to be recorded
// locally and later submitted as one cash document.
type CollectionGroup struct {
	// ID is assigned when the group is recorded.
	ID string

	PartnerID   string
	PartnerName string

	ReceiptSeries string
	ReceiptNumber string

	Lines []AllocationLine
}

// Total returns the exact sum of the line amounts.
func (g *CollectionGroup) Total() Money {
	var total Money
	for _, line := range g.Lines {
		total += line.Amount
	}
	return total
}

// Line validation reasons.
const (
	ReasonAmountNotPositive = "amount must be greater than zero"
	ReasonExceedsRest       = "amount exceeds outstanding balance"
	ReasonNoBalance         = "no outstanding balance for this document"
)

// LineError describes one invalid allocation line.
type LineError struct {
	Key    BalanceKey
	Amount Money
	Rest   Money
	Reason string
}

func (e LineError) Error() string {
	return fmt.Sprintf("line %s (amount %s, rest %s): %s", e.Key, e.Amount, e.Rest, e.Reason)
}

// AllocationError reports every invalid line of an allocation request.
// A single invalid line blocks the whole group; nothing is recorded.
type AllocationError struct {
	Lines []LineError
}

func (e *AllocationError) Error() string {
	msgs := make([]string, len(e.Lines))
	for i, line := range e.Lines {
		msgs[i] = line.Error()
	}
	return "invalid allocation: " + strings.Join(msgs, "; ")
}
