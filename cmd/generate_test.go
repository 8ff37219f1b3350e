package cmd

import (
	"archive/zip"
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func writeWorkbook(t *testing.T, path string) {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	require.NoError(t, f.SetSheetName("Sheet1", "offer信息"))
	rows := [][]any{
		{"姓名", "任职职位", "基本工资"},
		{"张三", "产品经理", 15000},
		{nil, "工程师", 12000},
		{"王五", "设计师", 11000},
	}
	for i, row := range rows {
		r := row
		require.NoError(t, f.SetSheetRow("offer信息", fmt.Sprintf("A%d", i+1), &r))
	}

	_, err := f.NewSheet("审批信息")
	require.NoError(t, err)
	approvals := [][]any{
		{"姓名", "汇报对象"},
		{"李四", "王经理"},
		{"张三", nil},
	}
	for i, row := range approvals {
		r := row
		require.NoError(t, f.SetSheetRow("审批信息", fmt.Sprintf("A%d", i+1), &r))
	}

	require.NoError(t, f.SaveAs(path))
}

func writeTemplate(t *testing.T, path, body string) {
	t.Helper()

	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	w := zip.NewWriter(f)
	entry, err := w.Create("word/document.xml")
	require.NoError(t, err)
	_, err = entry.Write([]byte(`<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body><w:p><w:r><w:t xml:space="preserve">` +
		body + `</w:t></w:r></w:p></w:body></w:document>`))
	require.NoError(t, err)
	require.NoError(t, w.Close())
}

func writeConfig(t *testing.T, dir, resources, output string) string {
	t.Helper()

	path := filepath.Join(dir, "config.yaml")
	content := fmt.Sprintf("resource_dir: %q\noutput_dir: %q\nexit_delay: 0s\nlog_file: %q\n",
		resources, output, filepath.Join(dir, "run.log"))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestGenerate_EndToEnd(t *testing.T) {
	resources := t.TempDir()
	output := filepath.Join(t.TempDir(), "生成的文档")

	writeWorkbook(t, filepath.Join(resources, "candidate_data.xlsx"))
	writeTemplate(t, filepath.Join(resources, "offer_template.docx"), "{{ candidate_name }} {{ occupation_name }} {{ basic_salary }}")
	writeTemplate(t, filepath.Join(resources, "interview_approval.docx"), "{{ candidate_name }} {{ leader_1 }}")

	var out bytes.Buffer
	var waited []time.Duration
	err := generate(context.Background(), generateOptions{
		ConfigPath:     writeConfig(t, t.TempDir(), resources, output),
		ConfigRequired: true,
		HasCandidates:  true,
		Out:            &out,
		Wait:           func(_ context.Context, d time.Duration) { waited = append(waited, d) },
	})
	require.NoError(t, err)

	assert.FileExists(t, filepath.Join(output, "全房通-员工录用通知书-张三.docx"))
	assert.FileExists(t, filepath.Join(output, "面试评估表+录用审批表-张三.docx"))
	assert.NoFileExists(t, filepath.Join(output, "全房通-员工录用通知书-王五.docx"))

	console := out.String()
	assert.Contains(t, console, "找到 3 条候选人数据")
	assert.Contains(t, console, "候选人列表: 张三, 王五")
	assert.Contains(t, console, "开始批量处理 3 位候选人")
	assert.Contains(t, console, "[1/3] 正在处理: 张三")
	assert.Contains(t, console, "🎉 张三 处理完成")
	assert.Contains(t, console, "[2/3] 跳过空姓名行")
	assert.Contains(t, console, "[3/3] 正在处理: 王五")
	assert.Contains(t, console, "跳过 王五")
	assert.Contains(t, console, "总候选人数量: 3")
	assert.Contains(t, console, "成功生成Offer: 1 份")
	assert.Contains(t, console, "成功生成审批表: 1 份")
	assert.Contains(t, console, "Offer生成失败: 0 份")
	assert.Contains(t, console, "审批表生成失败: 0 份")
	assert.Contains(t, console, "所有文件生成成功")
	assert.NotContains(t, console, "请检查失败的文档")
	assert.Equal(t, []time.Duration{0}, waited)
}

func TestGenerate_SubsetSelection(t *testing.T) {
	resources := t.TempDir()
	output := t.TempDir()

	writeWorkbook(t, filepath.Join(resources, "candidate_data.xlsx"))
	writeTemplate(t, filepath.Join(resources, "offer_template.docx"), "{{ candidate_name }}")
	writeTemplate(t, filepath.Join(resources, "interview_approval.docx"), "{{ candidate_name }}")

	var out bytes.Buffer
	err := generate(context.Background(), generateOptions{
		ConfigPath:     writeConfig(t, t.TempDir(), resources, output),
		ConfigRequired: true,
		HasCandidates:  true,
		Candidates:     "王五,赵六",
		Out:            &out,
	})
	require.NoError(t, err)

	entries, err := os.ReadDir(output)
	require.NoError(t, err)
	assert.Empty(t, entries)
	assert.Contains(t, out.String(), "未找到候选人: 赵六")
	assert.Contains(t, out.String(), "已选择 1 位候选人进行处理")
}

func TestGenerate_MissingResources(t *testing.T) {
	resources := t.TempDir()
	output := filepath.Join(t.TempDir(), "out")
	writeTemplate(t, filepath.Join(resources, "offer_template.docx"), "{{ candidate_name }}")

	var out bytes.Buffer
	err := generate(context.Background(), generateOptions{
		ConfigPath:     writeConfig(t, t.TempDir(), resources, output),
		ConfigRequired: true,
		HasCandidates:  true,
		Out:            &out,
	})

	assert.ErrorIs(t, err, errReported)
	console := out.String()
	assert.Contains(t, console, "缺少必需的文件")
	assert.Contains(t, console, "candidate_data.xlsx")
	assert.Contains(t, console, "interview_approval.docx")
	assert.NoDirExists(t, output)
}

func TestGenerate_RequiredConfigMissing(t *testing.T) {
	err := generate(context.Background(), generateOptions{
		ConfigPath:     filepath.Join(t.TempDir(), "absent.yaml"),
		ConfigRequired: true,
		Out:            &bytes.Buffer{},
	})
	assert.ErrorContains(t, err, "failed to load main config")
}

func TestGenerate_UnreadableWorkbookWaitsBeforeExit(t *testing.T) {
	resources := t.TempDir()
	output := t.TempDir()

	require.NoError(t, os.WriteFile(filepath.Join(resources, "candidate_data.xlsx"), []byte("not a workbook"), 0644))
	writeTemplate(t, filepath.Join(resources, "offer_template.docx"), "{{ candidate_name }}")
	writeTemplate(t, filepath.Join(resources, "interview_approval.docx"), "{{ candidate_name }}")

	var out bytes.Buffer
	var waited []time.Duration
	err := generate(context.Background(), generateOptions{
		ConfigPath:     writeConfig(t, t.TempDir(), resources, output),
		ConfigRequired: true,
		HasCandidates:  true,
		Out:            &out,
		Wait:           func(_ context.Context, d time.Duration) { waited = append(waited, d) },
	})

	assert.ErrorIs(t, err, errReported)
	assert.Contains(t, out.String(), "程序运行出错")
	assert.Contains(t, out.String(), "failed to read offer table")
	assert.Equal(t, []time.Duration{0}, waited)
}
