// Package parser decodes directory pages and spreadsheet payloads and reshapes
// spreadsheet sheets into date-indexed tables.
package parser

import (
	"bytes"
	"fmt"

	"github.com/readabs/readabs-go/pkg/readabs/models"
	"github.com/xuri/excelize/v2"
)

// ExcelDecoder decodes xlsx payloads with excelize.
type ExcelDecoder struct{}

// Decode implements the spreadsheet decoder used by the table materializer.
func (ExcelDecoder) Decode(data []byte) (*models.Workbook, error) {
	return DecodeWorkbook(data)
}

// DecodeWorkbook decodes an xlsx payload into its worksheets, in workbook order.
func DecodeWorkbook(data []byte) (*models.Workbook, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	reader := newCellReader(f)
	sheetList := f.GetSheetList()
	wb := &models.Workbook{Sheets: make([]models.RawSheet, 0, len(sheetList))}

	for _, sheetName := range sheetList {
		rows, err := reader.extractCells(sheetName)
		if err != nil {
			return nil, fmt.Errorf("decode sheet %q: %w", sheetName, err)
		}
		wb.Sheets = append(wb.Sheets, models.RawSheet{Name: sheetName, Rows: rows})
	}

	return wb, nil
}
