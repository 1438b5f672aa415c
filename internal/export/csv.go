package export

import (
	"encoding/csv"
	"strconv"
	"strings"

	"github.com/g-result/uoden/pkg/contracts/domain"
)

// FieldRenderer turns one logical row into delimited text. It exists so
// the legacy unquoted format and a stricter RFC 4180 format can be swapped
// without touching the grouping or pivot logic.
type FieldRenderer interface {
	RenderRow(fields []string) string
}

// RawFieldRenderer reproduces the legacy output: fields joined with commas
// and no quoting at all. A field containing the delimiter will corrupt
// column alignment; this is a known, deliberate compatibility behavior.
type RawFieldRenderer struct{}

func (RawFieldRenderer) RenderRow(fields []string) string {
	return strings.Join(fields, ",")
}

// RFC4180FieldRenderer quotes fields per RFC 4180. Opt-in via
// EXPORT_QUOTE_FIELDS; changes the byte output for any field containing
// a comma, quote or newline.
type RFC4180FieldRenderer struct{}

func (RFC4180FieldRenderer) RenderRow(fields []string) string {
	var sb strings.Builder
	w := csv.NewWriter(&sb)
	// Write never fails on a strings.Builder
	_ = w.Write(fields)
	w.Flush()
	return strings.TrimRight(sb.String(), "\r\n")
}

// Serializer renders a pivot table to a Shift_JIS CSV payload
type Serializer struct {
	renderer FieldRenderer
}

// NewSerializer creates a serializer with the given field renderer
func NewSerializer(renderer FieldRenderer) *Serializer {
	if renderer == nil {
		renderer = RawFieldRenderer{}
	}
	return &Serializer{renderer: renderer}
}

// Serialize renders the table to delimited Shift_JIS text plus the
// window-stamped filename. Rows are separated by a single newline; every
// row leads with one empty gutter field. An empty table still yields the
// header and sub-header rows so "no orders this period" is an empty-but-
// valid file rather than a missing one.
func (s *Serializer) Serialize(table domain.PivotTable, window Window) ([]byte, string, error) {
	matrix := BuildMatrix(table)

	rows := make([]string, len(matrix))
	for i, fields := range matrix {
		rows[i] = s.renderer.RenderRow(fields)
	}

	payload := EncodeShiftJIS(strings.Join(rows, "\n"))
	return payload, window.Filename("csv"), nil
}

// BuildMatrix expands the pivot table into its full cell matrix: header
// row, sub-header row, then RowCount data rows. Each row has exactly
// 1 + 4*len(columns) fields; the leading field is the gutter column.
func BuildMatrix(table domain.PivotTable) [][]string {
	width := 1 + 4*len(table.Columns)
	matrix := make([][]string, 0, 2+table.RowCount)

	header := make([]string, 1, width)
	for _, col := range table.Columns {
		header = append(header, col.HeaderLabel(), "", "", "")
	}
	matrix = append(matrix, header)

	subHeader := make([]string, 1, width)
	for range table.Columns {
		subHeader = append(subHeader, domain.SubHeaderLabels[0], domain.SubHeaderLabels[1], domain.SubHeaderLabels[2], domain.SubHeaderLabels[3])
	}
	matrix = append(matrix, subHeader)

	for r := 0; r < table.RowCount; r++ {
		row := make([]string, 1, width)
		for _, col := range table.Columns {
			cell := col.Cells[r]
			if cell.Filled {
				row = append(row, cell.PurchaserName, strconv.FormatInt(cell.Quantity, 10), "", "")
			} else {
				row = append(row, "", "", "", "")
			}
		}
		matrix = append(matrix, row)
	}

	return matrix
}
