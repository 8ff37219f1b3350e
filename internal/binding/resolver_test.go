package binding

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ginjaninja78/offer-docgen/internal/types"
)

func record(pairs ...any) types.Record {
	var cols []string
	var vals []types.Value
	for i := 0; i+1 < len(pairs); i += 2 {
		cols = append(cols, pairs[i].(string))
		vals = append(vals, pairs[i+1].(types.Value))
	}
	return types.NewRecord(cols, vals)
}

func TestResolve_AbsentColumnReturnsDefault(t *testing.T) {
	rec := record("姓名", types.Text("张三"))

	assert.Equal(t, types.Text("未知职位"), Resolve(rec, "任职职位", types.Text("未知职位")))
	assert.Equal(t, types.Number(0), Resolve(rec, "基本工资", types.Number(0)))
}

func TestResolve_MissingValueKeepsDefaultKind(t *testing.T) {
	rec := record("基本工资", types.Missing(), "HR", types.Missing())

	got := Resolve(rec, "基本工资", types.Number(0))
	assert.Equal(t, types.KindNumber, got.Kind())
	assert.Equal(t, "0", got.String())

	got = Resolve(rec, "HR", types.Text("未知"))
	assert.Equal(t, types.KindText, got.Kind())
	assert.Equal(t, "未知", got.String())
}

func TestResolve_NumberPassesThrough(t *testing.T) {
	rec := record("基本工资", types.Number(5000.5))

	assert.Equal(t, types.Number(5000.5), Resolve(rec, "基本工资", types.Number(0)))
	assert.Equal(t, types.Number(5000.5), Resolve(rec, "基本工资", types.Text("x")))
}

func TestResolve_BlankTextFallsBack(t *testing.T) {
	rec := record("HR", types.Text("  \t\n "))

	assert.Equal(t, types.Text("未知"), Resolve(rec, "HR", types.Text("未知")))
	assert.Equal(t, types.Number(0), Resolve(rec, "HR", types.Number(0)))
}

func TestCleanText(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "plain", in: "张三", want: "张三"},
		{name: "trims", in: "  张三 \n", want: "张三"},
		{name: "index prefix", in: "0    张三", want: "张三"},
		{name: "bare index is kept", in: "0 ", want: "0"},
		{name: "zero prefixed number untouched", in: "0571-8888", want: "0571-8888"},
		{name: "metadata lines", in: "0    张三\nName: 姓名, dtype: object", want: "张三"},
		{name: "dtype only", in: "产品部\ndtype: object", want: "产品部"},
		{name: "escaped newline", in: `第一行\n第二行`, want: "第一行\n第二行"},
		{name: "empty", in: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CleanText(tt.in))
		})
	}
}

func TestIdentity(t *testing.T) {
	assert.Equal(t, "张三", Identity(record("姓名", types.Text(" 张三 ")), "姓名"))
	assert.Equal(t, "1001", Identity(record("姓名", types.Number(1001)), "姓名"))
	assert.Equal(t, "", Identity(record("姓名", types.Missing()), "姓名"))
	assert.Equal(t, "", Identity(record("其他", types.Text("x")), "姓名"))
}
