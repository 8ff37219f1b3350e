package docx

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ginjaninja78/offer-docgen/internal/types"
)

const styledRunXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>
<w:p><w:r w:rsidR="00A1"><w:rPr><w:rFonts w:eastAsia="宋体"/><w:sz w:val="28"/></w:rPr><w:t xml:space="preserve">汇报对象: {{ leader_1 }} 签字</w:t></w:r></w:p>
<w:p><w:r><w:rPr><w:b w:val="0"/><w:sz w:val="21"/></w:rPr><w:t xml:space="preserve">{{ level_1 }}/{{ city_base }}</w:t></w:r></w:p>
</w:body></w:document>`

func renderDocument(t *testing.T, documentXML string, ctx types.Context) string {
	t.Helper()

	parts := defaultParts()
	parts["word/document.xml"] = documentXML
	tpl, err := Load(writeTemplate(t, parts))
	require.NoError(t, err)
	require.NoError(t, tpl.Render(ctx))

	out := filepath.Join(t.TempDir(), "out.docx")
	require.NoError(t, tpl.Save(out))
	return readPart(t, out, "word/document.xml")
}

func TestRender_MarkerKeepsRunFormatting(t *testing.T) {
	marker := types.Styled("请填写", types.Style{Bold: true, Color: "FF0000"})

	doc := renderDocument(t, styledRunXML, types.Context{
		"leader_1":  marker,
		"level_1":   marker,
		"city_base": marker,
	})

	assertWellFormed(t, doc)
	assert.NotContains(t, doc, "<!--")

	assert.Contains(t, doc,
		`<w:t xml:space="preserve">汇报对象: </w:t></w:r>`+
			`<w:r><w:rPr><w:rFonts w:eastAsia="宋体"/><w:b/><w:color w:val="FF0000"/><w:sz w:val="28"/></w:rPr><w:t xml:space="preserve">请填写</w:t></w:r>`+
			`<w:r><w:rPr><w:rFonts w:eastAsia="宋体"/><w:sz w:val="28"/></w:rPr><w:t xml:space="preserve"> 签字</w:t></w:r>`)

	// The marker's bold replaces an explicit "not bold"; a second marker in
	// the same run inherits from the reopened run.
	markerRun := `<w:r><w:rPr><w:b/><w:color w:val="FF0000"/><w:sz w:val="21"/></w:rPr><w:t xml:space="preserve">请填写</w:t></w:r>`
	plainRun := `<w:r><w:rPr><w:b w:val="0"/><w:sz w:val="21"/></w:rPr><w:t xml:space="preserve">`
	assert.Contains(t, doc, markerRun+plainRun+"/</w:t></w:r>"+markerRun+plainRun+"</w:t></w:r>")
}

func TestRender_PlainFieldsLeaveRunsAlone(t *testing.T) {
	doc := renderDocument(t, styledRunXML, types.Context{
		"leader_1": types.Plain(types.Text("王经理")),
	})

	assert.Contains(t, doc, `<w:rPr><w:rFonts w:eastAsia="宋体"/><w:sz w:val="28"/></w:rPr><w:t xml:space="preserve">汇报对象: 王经理 签字</w:t>`)
}

func TestMergeRunProperties(t *testing.T) {
	tests := []struct {
		name      string
		enclosing string
		style     string
		want      string
	}{
		{
			name:  "no enclosing properties",
			style: `<w:b/><w:color w:val="FF0000"/>`,
			want:  `<w:b/><w:color w:val="FF0000"/>`,
		},
		{
			name:      "schema order",
			enclosing: `<w:rFonts w:ascii="Arial"/><w:i/><w:sz w:val="24"/><w:lang w:eastAsia="zh-CN"/>`,
			style:     `<w:b/><w:color w:val="FF0000"/>`,
			want:      `<w:rFonts w:ascii="Arial"/><w:b/><w:i/><w:color w:val="FF0000"/><w:sz w:val="24"/><w:lang w:eastAsia="zh-CN"/>`,
		},
		{
			name:      "style overrides",
			enclosing: `<w:color w:val="000000"/><w:u w:val="single"/>`,
			style:     `<w:b/><w:color w:val="FF0000"/>`,
			want:      `<w:b/><w:color w:val="FF0000"/><w:u w:val="single"/>`,
		},
		{
			name:      "revision stays last",
			enclosing: `<w:sz w:val="24"/><w:rPrChange w:id="1"><w:rPr><w:sz w:val="20"/></w:rPr></w:rPrChange>`,
			style:     `<w:b/>`,
			want:      `<w:b/><w:sz w:val="24"/><w:rPrChange w:id="1"><w:rPr><w:sz w:val="20"/></w:rPr></w:rPrChange>`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, string(mergeRunProperties([]byte(tt.enclosing), []byte(tt.style))))
		})
	}
}

func TestTakeRunProperties_Nested(t *testing.T) {
	content, rest := takeRunProperties([]byte(`<w:rPr><w:sz w:val="24"/><w:rPrChange w:id="1"><w:rPr><w:b/></w:rPr></w:rPrChange></w:rPr><w:t>x</w:t>`))

	assert.Equal(t, `<w:sz w:val="24"/><w:rPrChange w:id="1"><w:rPr><w:b/></w:rPr></w:rPrChange>`, string(content))
	assert.Equal(t, `<w:t>x</w:t>`, string(rest))
}
