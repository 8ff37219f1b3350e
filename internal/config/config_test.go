package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, "candidate_data.xlsx", cfg.Workbook)
	assert.Equal(t, "offer信息", cfg.OfferSheet)
	assert.Equal(t, "审批信息", cfg.ApprovalSheet)
	assert.Equal(t, "姓名", cfg.IdentityColumn)
	assert.Equal(t, "生成的文档", cfg.OutputDir)
	assert.Equal(t, "请填写", cfg.AttentionSentinel)
	assert.Equal(t, "FF0000", cfg.AttentionColor)
	assert.Equal(t, 2*time.Second, cfg.ExitDelay)
	assert.Equal(t, []string{"candidate_data.xlsx", "offer_template.docx", "interview_approval.docx"}, cfg.RequiredResources())
}

func TestLoadMainConfig_MissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	cfg, err := LoadMainConfig(path, false)
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)

	_, err = LoadMainConfig(path, true)
	assert.Error(t, err)
}

func TestParseMainConfig_Overrides(t *testing.T) {
	cfg, err := ParseMainConfig([]byte(`
workbook: data.xlsx
approval_source: approvals.csv
output_dir: out
offer_file_name: "offer-{name}.docx"
mapping_file: fields.yaml
exit_delay: 0s
log_level: debug
`))
	require.NoError(t, err)

	assert.Equal(t, "data.xlsx", cfg.Workbook)
	assert.Equal(t, time.Duration(0), cfg.ExitDelay)
	assert.Equal(t, "面试评估表+录用审批表-{name}.docx", cfg.ApprovalFileName)

	assert.Equal(t, TableSource{Path: "data.xlsx", Sheet: "offer信息", TextColumns: []string{"姓名"}}, cfg.OfferTable())
	assert.Equal(t, TableSource{Path: "approvals.csv", Sheet: "审批信息", AsText: true}, cfg.ApprovalTable())
	assert.Equal(t,
		[]string{"data.xlsx", "approvals.csv", "offer_template.docx", "interview_approval.docx", "fields.yaml"},
		cfg.RequiredResources())
}

func TestParseMainConfig_Invalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"no placeholder", `offer_file_name: offer.docx`},
		{"not docx", `offer_file_name: "offer-{name}.pdf"`},
		{"path in pattern", `approval_file_name: "out/{name}.docx"`},
		{"bad color", `attention_color: red`},
		{"bad level", `log_level: loud`},
		{"negative delay", `exit_delay: -1s`},
		{"not yaml", `workbook: [`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseMainConfig([]byte(tt.yaml))
			assert.Error(t, err)
		})
	}
}

func TestLoadMainConfig_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("identity_column: 候选人\n"), 0644))

	cfg, err := LoadMainConfig(path, true)
	require.NoError(t, err)
	assert.Equal(t, "候选人", cfg.IdentityColumn)
	assert.Equal(t, 2*time.Second, cfg.ExitDelay)
}

func TestFileName(t *testing.T) {
	tests := []struct {
		pattern  string
		identity string
		want     string
	}{
		{"全房通-员工录用通知书-{name}.docx", "张三", "全房通-员工录用通知书-张三.docx"},
		{"offer-{name}.docx", `a/b\c:d*e?"f"<g>|h`, "offer-a_b_c_d_e__f__g__h.docx"},
		{"offer-{name}.docx", "tab\tname", "offer-tab_name.docx"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, FileName(tt.pattern, tt.identity))
		})
	}
}
