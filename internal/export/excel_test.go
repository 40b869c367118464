package export

import (
	"bytes"
	"testing"
	"time"

	"freightbook/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestDirectoryExport(t *testing.T) {
	directory := []*models.Contact{
		{
			Name:          "Acme Logistics",
			Phone:         "9876543210",
			Email:         "ops@acme.example",
			GstNumber:     "GST-1",
			PrimaryCity:   "Mumbai",
			BookingCount:  5,
			TotalAmount:   1500.50,
			LastBookingAt: time.Date(2025, 3, 1, 10, 30, 0, 0, time.UTC),
		},
		{
			Name:         "Bharat Freight",
			Phone:        "9123456780",
			BookingCount: 2,
			TotalAmount:  400,
		},
	}

	f, err := Directory(models.RoleSender, directory)
	require.NoError(t, err)
	defer f.Close()

	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))

	reopened, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer reopened.Close()

	name, err := reopened.GetCellValue("Senders", "A1")
	require.NoError(t, err)
	assert.Equal(t, "Name", name)

	firstName, err := reopened.GetCellValue("Senders", "A2")
	require.NoError(t, err)
	assert.Equal(t, "Acme Logistics", firstName)

	count, err := reopened.GetCellValue("Senders", "F2")
	require.NoError(t, err)
	assert.Equal(t, "5", count)

	secondName, err := reopened.GetCellValue("Senders", "A3")
	require.NoError(t, err)
	assert.Equal(t, "Bharat Freight", secondName)
}

func TestDirectoryExportEmpty(t *testing.T) {
	f, err := Directory(models.RoleReceiver, nil)
	require.NoError(t, err)
	defer f.Close()

	sheets := f.GetSheetList()
	assert.Equal(t, []string{"Receivers"}, sheets)
}
