// =============================================================================
// Offer Document Generator - Console Output
// =============================================================================
//
// This file renders the operator-facing account of a run: the step banners,
// one line per document and candidate as they finish, and the final tally.
// Styling degrades to plain text when the output is not a terminal.
//
// =============================================================================

package cmd

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"

	"github.com/ginjaninja78/offer-docgen/internal/generator"
	"github.com/ginjaninja78/offer-docgen/internal/locator"
	"github.com/ginjaninja78/offer-docgen/internal/types"
	"github.com/ginjaninja78/offer-docgen/internal/validation"
)

// console prints progress to one writer. It implements generator.Observer.
type console struct {
	w io.Writer

	title   lipgloss.Style
	success lipgloss.Style
	failure lipgloss.Style
	warning lipgloss.Style
	muted   lipgloss.Style
}

func newConsole(w io.Writer) *console {
	r := lipgloss.NewRenderer(w)
	return &console{
		w:       w,
		title:   r.NewStyle().Bold(true).Foreground(lipgloss.Color("39")),
		success: r.NewStyle().Foreground(lipgloss.Color("46")),
		failure: r.NewStyle().Foreground(lipgloss.Color("196")).Bold(true),
		warning: r.NewStyle().Foreground(lipgloss.Color("226")),
		muted:   r.NewStyle().Foreground(lipgloss.Color("245")),
	}
}

func (c *console) printf(format string, args ...any) {
	fmt.Fprintf(c.w, format, args...)
}

func (c *console) banner(text string) {
	c.printf("%s\n", c.title.Render("=== "+text+" ==="))
}

func (c *console) info(format string, args ...any) {
	c.printf(format+"\n", args...)
}

func (c *console) warn(format string, args ...any) {
	c.printf("%s\n", c.warning.Render("⚠️  "+fmt.Sprintf(format, args...)))
}

func (c *console) fail(format string, args ...any) {
	c.printf("%s\n", c.failure.Render("❌ "+fmt.Sprintf(format, args...)))
}

// =============================================================================
// OBSERVER
// =============================================================================

// CandidateStarted prints the progress header of one candidate.
func (c *console) CandidateStarted(position, total int, identity string) {
	if identity == "" {
		c.printf("%s\n", c.muted.Render(fmt.Sprintf("[%d/%d] 跳过空姓名行", position, total)))
		return
	}
	c.printf("[%d/%d] 正在处理: %s\n", position, total, identity)
}

// DocumentFinished prints one line per attempted document.
func (c *console) DocumentFinished(identity string, r generator.DocumentResult) {
	if r.Success {
		c.printf("  %s\n", c.success.Render(fmt.Sprintf("✓ 已生成%s: %s", r.Document.Label(), r.OutputFile)))
		return
	}
	c.printf("  %s\n", c.failure.Render(fmt.Sprintf("✗ 生成%s失败 (%s): %v", r.Document.Label(), identity, r.Error)))
}

// CandidateFinished prints the outcome of one candidate.
func (c *console) CandidateFinished(r generator.CandidateResult) {
	if r.Ambiguous() {
		c.printf("  %s\n", c.warning.Render(fmt.Sprintf("⚠️  %s 在审批表中有 %d 条重复记录，已使用第一条", r.Identity, r.Duplicates+1)))
	}
	switch r.Status {
	case generator.StatusSkippedEmptyIdentity:
		return
	case generator.StatusSkippedNoMatch:
		c.printf("  %s\n", c.warning.Render(fmt.Sprintf("⚠️  跳过 %s: 审批表中未找到匹配记录", r.Identity)))
	case generator.StatusDone:
		c.printf("  %s\n", c.success.Render(fmt.Sprintf("🎉 %s 处理完成", r.Identity)))
	case generator.StatusFailed:
		c.printf("  %s\n", c.warning.Render(fmt.Sprintf("⚠️  %s 部分文件生成失败", r.Identity)))
	}
	c.printf("\n")
}

// =============================================================================
// REPORTS
// =============================================================================

// missingResources lists what could not be found and what the tool expects
// to find next to the executable.
func (c *console) missingResources(err *locator.MissingResourcesError, expected []string) {
	c.fail("缺少必需的文件:")
	for _, m := range err.Missing {
		c.printf("   - %s (%s)\n", m.Name, m.Attempted)
	}
	c.info("\n请确保以下文件与程序位于同一目录:")
	for _, name := range expected {
		c.printf("   - %s\n", name)
	}
}

func (c *console) validationFindings(findings []*validation.ValidationError) {
	for _, f := range findings {
		if f.Severity == validation.SeverityError {
			c.fail("%s", f.Error())
		} else {
			c.warn("%s", f.Error())
		}
	}
}

func (c *console) report(r *generator.Report, failureLog string) {
	c.printf("\n")
	c.banner("处理完成")
	c.info("📊 处理统计:")
	c.info("  - 总候选人数量: %d", r.Total)
	for _, doc := range types.DocumentTypes {
		c.info("  - 成功生成%s: %d 份", doc.Label(), r.Success[doc])
	}
	for _, doc := range types.DocumentTypes {
		c.info("  - %s生成失败: %d 份", doc.Label(), r.Failure[doc])
	}
	if skipped := r.Count(generator.StatusSkippedEmptyIdentity) + r.Count(generator.StatusSkippedNoMatch); skipped > 0 {
		c.info("  - 跳过候选人: %d 位", skipped)
	}
	if n := r.Ambiguous(); n > 0 {
		c.warn("审批表中存在重复姓名: %d 位候选人", n)
	}
	if r.Interrupted {
		c.warn("处理被中断: 已处理 %d / %d 位候选人", len(r.Results), r.Total)
	}

	c.info("📁 文件保存在: %s", r.OutputDir)

	switch {
	case r.HasFailures():
		if failureLog != "" {
			c.info("失败详情已写入: %s", failureLog)
		}
		c.warn("注意: 有部分文件生成失败，请检查失败的文档并重新运行")
	case !r.Interrupted:
		c.printf("%s\n", c.success.Render("✅ 所有文件生成成功！"))
	}
}
