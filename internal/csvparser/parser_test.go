package csvparser

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/encoding/unicode"

	"github.com/ginjaninja78/offer-docgen/internal/types"
)

const sample = "姓名,基本工资,备注\n张三,15000,试用期三个月\n李四,,\n"

func TestParseBytes_UTF8(t *testing.T) {
	table, err := ParseBytes([]byte(sample), Settings{})
	require.NoError(t, err)

	assert.Equal(t, []string{"姓名", "基本工资", "备注"}, table.Columns)
	require.Len(t, table.Records, 2)

	salary, _ := table.Records[0].Get("基本工资")
	assert.Equal(t, types.Number(15000), salary)

	note, _ := table.Records[1].Get("备注")
	assert.True(t, note.IsMissing())
}

func TestParseBytes_AsText(t *testing.T) {
	table, err := ParseBytes([]byte(sample), Settings{AsText: true})
	require.NoError(t, err)

	salary, _ := table.Records[0].Get("基本工资")
	assert.Equal(t, types.Text("15000"), salary)
}

func TestDecode(t *testing.T) {
	gbk, err := simplifiedchinese.GBK.NewEncoder().Bytes([]byte(sample))
	require.NoError(t, err)

	utf16, err := unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewEncoder().Bytes([]byte(sample))
	require.NoError(t, err)

	tests := []struct {
		name     string
		input    []byte
		encoding string
	}{
		{"plain utf-8", []byte(sample), "utf-8"},
		{"utf-8 bom", append([]byte{0xEF, 0xBB, 0xBF}, sample...), "utf-8-bom"},
		{"utf-16 bom", utf16, "utf-16le"},
		{"gbk", gbk, "gb18030"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			decoded, enc, err := Decode(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.encoding, enc)
			assert.Equal(t, sample, string(decoded))
		})
	}
}

func TestParseBytes_RaggedRowsAndBlankLines(t *testing.T) {
	data := "姓名,部门,职位\n张三,产品部\n,,\n李四,研发部,工程师,多余\n"

	table, err := ParseBytes([]byte(data), Settings{})
	require.NoError(t, err)
	require.Len(t, table.Records, 2)

	title, ok := table.Records[0].Get("职位")
	require.True(t, ok)
	assert.True(t, title.IsMissing())

	title, _ = table.Records[1].Get("职位")
	assert.Equal(t, types.Text("工程师"), title)
}

func TestParse_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "offer.csv")
	require.NoError(t, os.WriteFile(path, []byte(sample), 0644))

	table, err := Parse(path, Settings{})
	require.NoError(t, err)
	assert.Equal(t, path, table.Name)
	assert.Len(t, table.Records, 2)

	_, err = Parse(filepath.Join(t.TempDir(), "none.csv"), Settings{})
	assert.Error(t, err)
}

func TestParseBytes_OnlyPlainDecimalsBecomeNumbers(t *testing.T) {
	table, err := ParseBytes([]byte("姓名,HR联系电话,比例\nNan,010-1,0.8\nInf,0101234,1e5\ninfinity,-12,+3.50\n"), Settings{})
	require.NoError(t, err)
	require.Len(t, table.Records, 3)

	tests := []struct {
		row    int
		column string
		want   types.Value
	}{
		{0, "姓名", types.Text("Nan")},
		{0, "HR联系电话", types.Text("010-1")},
		{0, "比例", types.Number(0.8)},
		{1, "姓名", types.Text("Inf")},
		{1, "HR联系电话", types.Text("0101234")},
		{1, "比例", types.Text("1e5")},
		{2, "姓名", types.Text("infinity")},
		{2, "HR联系电话", types.Number(-12)},
		{2, "比例", types.Number(3.5)},
	}

	for _, tt := range tests {
		v, ok := table.Records[tt.row].Get(tt.column)
		require.True(t, ok)
		assert.Equal(t, tt.want, v, "row %d column %s", tt.row, tt.column)
	}
}

func TestParseBytes_TextColumns(t *testing.T) {
	table, err := ParseBytes([]byte("姓名,基本工资\n123,15000\n"), Settings{TextColumns: []string{"姓名"}})
	require.NoError(t, err)

	name, _ := table.Records[0].Get("姓名")
	salary, _ := table.Records[0].Get("基本工资")
	assert.Equal(t, types.Text("123"), name)
	assert.Equal(t, types.Number(15000), salary)
}
