package services

import (
	"github.com/fieldbill/fieldbill-cli/internal/core/domain"
)

// DefaultAllocations proposes one allocation line per balance, each
// for the full outstanding remainder. The caller may override any
// amount before validation.
func DefaultAllocations(balances []domain.OutstandingBalance) []domain.AllocationLine {
	lines := make([]domain.AllocationLine, 0, len(balances))
	for _, balance := range balances {
		lines = append(lines, domain.AllocationLine{
			Key:    balance.Key.Normalised(),
			Amount: balance.Rest,
		})
	}
	return lines
}

// PlanAllocations validates a payment split against the outstanding
// balances and returns the lines as a collection group.
//
// A line is valid iff 0 < amount <= rest. Out-of-range amounts are
// rejected, never clamped, and every invalid line is reported in one
// *domain.AllocationError so the caller can flag them all at once.
// The returned group's total equals the exact sum of the validated
// line amounts.
func PlanAllocations(balances []domain.OutstandingBalance, lines []domain.AllocationLine) (*domain.CollectionGroup, error) {
	rests := make(map[domain.BalanceKey]domain.Money, len(balances))
	for _, balance := range balances {
		rests[balance.Key.Normalised()] = balance.Rest
	}

	var invalid []domain.LineError
	valid := make([]domain.AllocationLine, 0, len(lines))

	for _, line := range lines {
		key := line.Key.Normalised()
		rest, known := rests[key]

		switch {
		case !line.Amount.IsPositive():
			invalid = append(invalid, domain.LineError{
				Key: key, Amount: line.Amount, Rest: rest,
				Reason: domain.ReasonAmountNotPositive,
			})
		case !known:
			invalid = append(invalid, domain.LineError{
				Key: key, Amount: line.Amount,
				Reason: domain.ReasonNoBalance,
			})
		case line.Amount > rest:
			invalid = append(invalid, domain.LineError{
				Key: key, Amount: line.Amount, Rest: rest,
				Reason: domain.ReasonExceedsRest,
			})
		default:
			valid = append(valid, domain.AllocationLine{Key: key, Amount: line.Amount})
		}
	}

	if len(invalid) > 0 {
		return nil, &domain.AllocationError{Lines: invalid}
	}

	// Defensive re-check: nothing non-positive may reach submission.
	group := &domain.CollectionGroup{Lines: make([]domain.AllocationLine, 0, len(valid))}
	for _, line := range valid {
		if line.Amount.IsPositive() {
			group.Lines = append(group.Lines, line)
		}
	}
	return group, nil
}
