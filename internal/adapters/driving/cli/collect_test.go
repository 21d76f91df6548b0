package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fieldbill/fieldbill-cli/internal/core/domain"
)

func setupCollectTest(mock *mockCollectionService) func() {
	old := collectionService
	collectionService = mock
	collectLines = nil
	collectStatuses = nil
	return func() {
		collectionService = old
	}
}

func TestCollectRecordCmd_RecordsGroup(t *testing.T) {
	mock := &mockCollectionService{}
	cleanup := setupCollectTest(mock)
	defer cleanup()

	out, err := execute("collect", "record",
		"--partner", "p1", "--partner-name", "Aurora SRL",
		"--line", "FCT:10:F:01.08.2026:30.00",
		"--line", "FCT:11:F:05.08.2026:12.50")

	assert.NoError(t, err)
	assert.Contains(t, out, "Payment recorded as group g1.")

	require.NotNil(t, mock.recorded)
	assert.Equal(t, "p1", mock.recorded.PartnerID)
	assert.Equal(t, "Aurora SRL", mock.recorded.PartnerName)
	require.Len(t, mock.recorded.Lines, 2)
	assert.Equal(t, domain.BalanceKey{
		PartnerID:    "p1",
		Series:       "FCT",
		Number:       "10",
		DocumentCode: "F",
		Date:         "01.08.2026",
	}, mock.recorded.Lines[0].Key)
	assert.Equal(t, domain.Money(3000), mock.recorded.Lines[0].Amount)
	assert.Equal(t, domain.Money(1250), mock.recorded.Lines[1].Amount)
}

func TestCollectRecordCmd_RejectsBadLineFormat(t *testing.T) {
	mock := &mockCollectionService{}
	cleanup := setupCollectTest(mock)
	defer cleanup()

	_, err := execute("collect", "record",
		"--partner", "p1",
		"--line", "FCT:10:30.00")

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "expected series:number:document-code:date:amount")
	assert.Nil(t, mock.recorded)
}

func TestCollectRecordCmd_RejectsBadAmount(t *testing.T) {
	mock := &mockCollectionService{}
	cleanup := setupCollectTest(mock)
	defer cleanup()

	_, err := execute("collect", "record",
		"--partner", "p1",
		"--line", "FCT:10:F:01.08.2026:lots")

	assert.Error(t, err)
	assert.Nil(t, mock.recorded)
}

func TestCollectRecordCmd_PrintsEveryInvalidLine(t *testing.T) {
	mock := &mockCollectionService{recordErr: &domain.AllocationError{Lines: []domain.LineError{
		{
			Key:    domain.BalanceKey{PartnerID: "p1", Series: "FCT", Number: "10", DocumentCode: "F", Date: "01.08.2026"},
			Amount: 5000,
			Rest:   3000,
			Reason: domain.ReasonExceedsRest,
		},
		{
			Key:    domain.BalanceKey{PartnerID: "p1", Series: "FCT", Number: "99", DocumentCode: "F", Date: "01.08.2026"},
			Amount: 1000,
			Reason: domain.ReasonNoBalance,
		},
	}}}
	cleanup := setupCollectTest(mock)
	defer cleanup()

	out, err := execute("collect", "record",
		"--partner", "p1",
		"--line", "FCT:10:F:01.08.2026:50.00",
		"--line", "FCT:99:F:01.08.2026:10.00")

	assert.Error(t, err)
	assert.Contains(t, out, "Payment rejected; nothing was recorded:")
	assert.Contains(t, out, domain.ReasonExceedsRest)
	assert.Contains(t, out, domain.ReasonNoBalance)
}

func TestCollectListCmd_PrintsCollections(t *testing.T) {
	mock := &mockCollectionService{collections: []domain.Collection{
		{
			GroupID:       "g1",
			Status:        domain.StatusPending,
			Amount:        3000,
			InvoiceSeries: "FCT",
			InvoiceNumber: "10",
			DocumentDate:  "01.08.2026",
			ReceiptSeries: "CHT",
			ReceiptNumber: "500",
		},
	}}
	cleanup := setupCollectTest(mock)
	defer cleanup()

	out, err := execute("collect", "list")

	assert.NoError(t, err)
	assert.Contains(t, out, "g1")
	assert.Contains(t, out, "FCT 10")
	assert.Contains(t, out, "receipt CHT 500")
}

func TestCollectListCmd_Empty(t *testing.T) {
	cleanup := setupCollectTest(&mockCollectionService{})
	defer cleanup()

	out, err := execute("collect", "list")

	assert.NoError(t, err)
	assert.Contains(t, out, "No collections.")
}
