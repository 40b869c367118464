// Package export renders contact directories as xlsx workbooks.
package export

import (
	"fmt"

	"freightbook/internal/models"

	"github.com/xuri/excelize/v2"
)

var columns = []string{"Name", "Phone", "Email", "GST Number", "City", "Bookings", "Total Amount", "Last Booking"}

// Directory builds a workbook with one sheet holding the directory in its
// served order. The caller owns closing the returned file.
func Directory(role models.Role, directory []*models.Contact) (*excelize.File, error) {
	f := excelize.NewFile()

	sheetName := sheetForRole(role)
	index, err := f.NewSheet(sheetName)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("create sheet: %w", err)
	}
	f.SetActiveSheet(index)

	if err := writeHeader(f, sheetName); err != nil {
		f.Close()
		return nil, err
	}

	for i, contact := range directory {
		row := i + 2
		cell, _ := excelize.CoordinatesToCellName(1, row)
		values := []any{
			contact.Name,
			contact.Phone,
			contact.Email,
			contact.GstNumber,
			contact.PrimaryCity,
			contact.BookingCount,
			contact.TotalAmount,
			contact.LastBookingAt.Format("2006-01-02 15:04"),
		}
		if err := f.SetSheetRow(sheetName, cell, &values); err != nil {
			f.Close()
			return nil, fmt.Errorf("write row %d: %w", row, err)
		}
	}

	_ = f.SetColWidth(sheetName, "A", "A", 28)
	_ = f.SetColWidth(sheetName, "B", "E", 20)
	_ = f.SetColWidth(sheetName, "F", "H", 16)
	_ = f.DeleteSheet("Sheet1")

	return f, nil
}

func writeHeader(f *excelize.File, sheetName string) error {
	for i, title := range columns {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheetName, cell, title); err != nil {
			return fmt.Errorf("write header: %w", err)
		}
	}

	style, err := f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#DDEBF7"}, Pattern: 1},
		Font: &excelize.Font{Bold: true},
	})
	if err != nil {
		return fmt.Errorf("header style: %w", err)
	}

	last, _ := excelize.CoordinatesToCellName(len(columns), 1)
	if err := f.SetCellStyle(sheetName, "A1", last, style); err != nil {
		return fmt.Errorf("apply header style: %w", err)
	}
	return nil
}

func sheetForRole(role models.Role) string {
	if role == models.RoleReceiver {
		return "Receivers"
	}
	return "Senders"
}
