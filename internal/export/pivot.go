package export

import (
	"github.com/g-result/uoden/pkg/contracts/domain"
)

// BuildPivot turns ragged product groups into a rectangular table. It runs
// two passes: the first sizes the table (row count = largest group), the
// second materializes each column padded with blank cells to that size.
// Representative price and stock per column come from the group's first
// entry, matching the grouper's first-wins rule.
func BuildPivot(groups *Groups) domain.PivotTable {
	rowCount := 0
	for _, key := range groups.Keys {
		if n := len(groups.Entries[key]); n > rowCount {
			rowCount = n
		}
	}

	table := domain.PivotTable{
		Columns:  make([]domain.PivotColumn, 0, len(groups.Keys)),
		RowCount: rowCount,
	}

	for _, key := range groups.Keys {
		entries := groups.Entries[key]
		col := domain.PivotColumn{
			Key:   key,
			Cells: make([]domain.PivotCell, rowCount),
		}
		if len(entries) > 0 {
			col.UnitPrice = entries[0].UnitPrice
			col.Stock = entries[0].Stock
		}
		for i, entry := range entries {
			col.Cells[i] = domain.PivotCell{
				PurchaserName: entry.PurchaserName,
				Quantity:      entry.Quantity,
				Filled:        true,
			}
		}
		table.Columns = append(table.Columns, col)
	}

	return table
}
