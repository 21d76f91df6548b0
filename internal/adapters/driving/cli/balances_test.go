package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/fieldbill/fieldbill-cli/internal/core/domain"
)

func TestBalancesCmd_PrintsEffectiveBalances(t *testing.T) {
	mock := &mockCollectionService{balances: []domain.OutstandingBalance{
		{
			Key: domain.BalanceKey{
				PartnerID: "p1",
				Series:    "FCT",
				Number:    "10",
				Date:      "01.08.2026",
			},
			PartnerName: "Aurora SRL",
			Rest:        15000,
			Term:        "15.08.2026",
		},
	}}
	cleanup := setupCollectTest(mock)
	defer cleanup()

	out, err := execute("balances", "p1")

	assert.NoError(t, err)
	assert.Contains(t, out, "FCT 10")
	assert.Contains(t, out, "150.00")
	assert.Contains(t, out, "Aurora SRL")
}

func TestBalancesCmd_Empty(t *testing.T) {
	cleanup := setupCollectTest(&mockCollectionService{})
	defer cleanup()

	out, err := execute("balances")

	assert.NoError(t, err)
	assert.Contains(t, out, "No outstanding balances.")
}
