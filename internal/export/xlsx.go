package export

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/g-result/uoden/pkg/contracts/domain"
)

const sheetName = "Sheet1"

// SerializeXLSX renders the same pivot matrix to an .xlsx workbook for
// recipients whose tools mangle Shift_JIS CSV. The workbook stores text
// as UTF-8 internally, so no transcoding step applies here.
func (s *Serializer) SerializeXLSX(table domain.PivotTable, window Window) ([]byte, string, error) {
	f := excelize.NewFile()
	defer f.Close()

	matrix := BuildMatrix(table)
	for rowIdx, fields := range matrix {
		for colIdx, field := range fields {
			if field == "" {
				continue
			}
			cell, err := excelize.CoordinatesToCellName(colIdx+1, rowIdx+1)
			if err != nil {
				return nil, "", fmt.Errorf("failed to address cell (%d,%d): %w", colIdx+1, rowIdx+1, err)
			}
			if err := f.SetCellValue(sheetName, cell, field); err != nil {
				return nil, "", fmt.Errorf("failed to set cell %s: %w", cell, err)
			}
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, "", fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf.Bytes(), window.Filename("xlsx"), nil
}
