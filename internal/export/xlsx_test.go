package export

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestSerializeXLSX_TwoShopsOneProduct(t *testing.T) {
	table := BuildPivot(twoShopAjiGroups(t))

	payload, filename, err := NewSerializer(nil).SerializeXLSX(table, testWindow())
	require.NoError(t, err)
	assert.Equal(t, "20240701_1500_20240702_0900_orders.xlsx", filename)

	f, err := excelize.OpenReader(bytes.NewReader(payload))
	require.NoError(t, err)
	defer f.Close()

	header, err := f.GetCellValue(sheetName, "B1")
	require.NoError(t, err)
	assert.Equal(t, "鯵(半身) (金額: 500円, 登録してある残り在庫数: 12匹)", header)

	gutter, err := f.GetCellValue(sheetName, "A1")
	require.NoError(t, err)
	assert.Equal(t, "", gutter)

	sub, err := f.GetCellValue(sheetName, "B2")
	require.NoError(t, err)
	assert.Equal(t, "会社名", sub)

	shop, err := f.GetCellValue(sheetName, "B3")
	require.NoError(t, err)
	assert.Equal(t, "しょうゆ商店", shop)

	qty, err := f.GetCellValue(sheetName, "C4")
	require.NoError(t, err)
	assert.Equal(t, "5", qty)
}
