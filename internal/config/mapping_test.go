package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ginjaninja78/offer-docgen/internal/types"
)

func TestDefaultMappings(t *testing.T) {
	m := DefaultMappings("请填写")

	require.Equal(t, 15, m.Offer.Len())
	require.Equal(t, 28, m.Approval.Len())
	assert.Equal(t, types.DocumentOffer, m.Offer.Document())
	assert.Equal(t, types.DocumentApproval, m.Approval.Document())

	offer := m.Offer.Fields()
	assert.Equal(t, FieldSpec{Key: "candidate_name", Column: "姓名", Default: types.Text("未知候选人")}, offer[0])
	assert.Equal(t, FieldSpec{Key: "basic_salary", Column: "基本工资", Default: types.Number(0)}, offer[4])

	var flagged int
	for _, spec := range m.Approval.Fields() {
		if spec.Attention {
			flagged++
			assert.Equal(t, types.Text("请填写"), spec.Default, spec.Key)
		}
	}
	assert.Equal(t, 17, flagged)
}

func TestMapping_FieldsIsACopy(t *testing.T) {
	m := DefaultOfferMapping()

	fields := m.Fields()
	fields[0].Key = "changed"

	assert.Equal(t, "candidate_name", m.Fields()[0].Key)
}

func TestParseMappings(t *testing.T) {
	m, err := ParseMappings([]byte(`
offer:
  - key: candidate_name
    column: 姓名
    default: 未知候选人
  - key: basic_salary
    column: 基本工资
    default: 0
  - key: ratio
    column: 比例
    default: 0.8
  - key: code
    column: 编号
    default: "007"
  - key: note
    column: 备注
`), "请填写")
	require.NoError(t, err)

	fields := m.Offer.Fields()
	require.Len(t, fields, 5)
	assert.Equal(t, types.Text("未知候选人"), fields[0].Default)
	assert.Equal(t, types.Number(0), fields[1].Default)
	assert.Equal(t, types.Number(0.8), fields[2].Default)
	assert.Equal(t, types.Text("007"), fields[3].Default)
	assert.Equal(t, types.Text(""), fields[4].Default)

	assert.Equal(t, DefaultApprovalMapping("请填写").Fields(), m.Approval.Fields())
}

func TestParseMappings_Errors(t *testing.T) {
	_, err := ParseMappings([]byte("offer:\n  - key: a\n    column: b\n    default: [1, 2]\n"), "请填写")
	assert.ErrorContains(t, err, "offer mapping")

	_, err = ParseMappings([]byte("offer: ["), "请填写")
	assert.Error(t, err)
}

func TestLoadMappings(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fields.yaml")
	require.NoError(t, os.WriteFile(path, []byte("approval:\n  - key: leader_1\n    column: 汇报对象\n    default: 请填写\n    attention: true\n"), 0644))

	m, err := LoadMappings(path, "请填写")
	require.NoError(t, err)
	require.Equal(t, 1, m.Approval.Len())
	assert.True(t, m.Approval.Fields()[0].Attention)
	assert.Equal(t, DefaultOfferMapping().Fields(), m.Offer.Fields())

	_, err = LoadMappings(filepath.Join(t.TempDir(), "absent.yaml"), "请填写")
	assert.Error(t, err)
}
