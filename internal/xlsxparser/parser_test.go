package xlsxparser

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/ginjaninja78/offer-docgen/internal/types"
)

func writeWorkbook(t *testing.T, sheets map[string][][]any) string {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	first := true
	for name, rows := range sheets {
		if first {
			require.NoError(t, f.SetSheetName("Sheet1", name))
			first = false
		} else {
			_, err := f.NewSheet(name)
			require.NoError(t, err)
		}
		for i, row := range rows {
			cell, err := excelize.CoordinatesToCellName(1, i+1)
			require.NoError(t, err)
			r := row
			require.NoError(t, f.SetSheetRow(name, cell, &r))
		}
	}

	path := filepath.Join(t.TempDir(), "candidate_data.xlsx")
	require.NoError(t, f.SaveAs(path))
	return path
}

func TestParse_TypesCells(t *testing.T) {
	path := writeWorkbook(t, map[string][][]any{
		"offer信息": {
			{"姓名", "基本工资", "HR联系电话", "星期"},
			{"张三", 15000, "13800138000", "一"},
			{"李四", 12000.5, nil, nil},
		},
	})

	table, err := Parse(path, "offer信息", Options{})
	require.NoError(t, err)

	assert.Equal(t, "offer信息", table.Name)
	assert.Equal(t, []string{"姓名", "基本工资", "HR联系电话", "星期"}, table.Columns)
	require.Len(t, table.Records, 2)

	name, _ := table.Records[0].Get("姓名")
	assert.Equal(t, types.Text("张三"), name)

	salary, _ := table.Records[0].Get("基本工资")
	assert.Equal(t, types.Number(15000), salary)

	phone, _ := table.Records[0].Get("HR联系电话")
	assert.Equal(t, types.KindText, phone.Kind())

	salary, _ = table.Records[1].Get("基本工资")
	assert.Equal(t, types.Number(12000.5), salary)

	missing, ok := table.Records[1].Get("星期")
	require.True(t, ok)
	assert.True(t, missing.IsMissing())
}

func TestParse_AsTextKeepsNumbersAsText(t *testing.T) {
	path := writeWorkbook(t, map[string][][]any{
		"审批信息": {
			{"姓名", "基本薪资"},
			{"张三", 8000},
		},
	})

	table, err := Parse(path, "审批信息", Options{AsText: true})
	require.NoError(t, err)

	v, _ := table.Records[0].Get("基本薪资")
	assert.Equal(t, types.Text("8000"), v)
}

func TestParse_SkipsBlankRowsAndNamesBlankHeaders(t *testing.T) {
	path := writeWorkbook(t, map[string][][]any{
		"offer信息": {
			{"姓名", "", "部门"},
			{"张三", "x", "产品部"},
			{nil, nil, nil},
			{nil, "y", "研发部"},
		},
	})

	table, err := Parse(path, "offer信息", Options{})
	require.NoError(t, err)

	assert.Equal(t, []string{"姓名", "Column_2", "部门"}, table.Columns)
	require.Len(t, table.Records, 2)
	name, _ := table.Records[1].Get("姓名")
	assert.True(t, name.IsMissing())
}

func TestParse_UnknownSheet(t *testing.T) {
	path := writeWorkbook(t, map[string][][]any{"offer信息": {{"姓名"}}})

	_, err := Parse(path, "审批信息", Options{})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "offer信息")
}

func TestParse_MissingFile(t *testing.T) {
	_, err := Parse(filepath.Join(t.TempDir(), "none.xlsx"), "offer信息", Options{})
	assert.Error(t, err)
}

func TestParse_TextColumns(t *testing.T) {
	path := writeWorkbook(t, map[string][][]any{
		"offer信息": {
			{"姓名", "基本工资"},
			{1001, 15000},
		},
	})

	table, err := Parse(path, "offer信息", Options{TextColumns: []string{"姓名"}})
	require.NoError(t, err)

	name, _ := table.Records[0].Get("姓名")
	salary, _ := table.Records[0].Get("基本工资")
	assert.Equal(t, types.Text("1001"), name)
	assert.Equal(t, types.Number(15000), salary)
}
