// =============================================================================
// Offer Document Generator - WordprocessingML Fragment Writer
// =============================================================================
//
// This module writes the XML fragments substituted for placeholders inside
// a .docx part. A placeholder always sits inside the text element of a run:
//
//   <w:r>                                <!-- Run -->
//     <w:rPr>...</w:rPr>                 <!-- Run properties (font, size) -->
//     <w:t xml:space="preserve">         <!-- Text element -->
//       {{ 姓名 }}                       <!-- Placeholder -->
//     </w:t>
//   </w:r>
//
// PLAIN TEXT is escaped and written in place. Line breaks become <w:br/> and
// tabs <w:tab/>; both must sit between text elements of the same run.
//
// MARKERS close the enclosing run, emit a run of their own carrying the
// marker formatting, and reopen a run for the template text that follows:
//
//   </w:t></w:r>
//   <w:r><!--marker-rPr--><w:rPr><w:b/><w:color w:val="FF0000"/></w:rPr>
//     <w:t xml:space="preserve">请填写</w:t>
//   </w:r>
//   <w:r><!--continue-rPr--><w:t xml:space="preserve">
//
// The two comments stand for the run properties of the enclosing run, which
// are only known where the placeholder sits. The docx renderer replaces them
// after rendering: the marker run gets the enclosing properties merged with
// the marker formatting, the reopened run gets them unchanged.
//
// =============================================================================

package xmlwriter

import (
	"bytes"

	"github.com/ginjaninja78/offer-docgen/internal/types"
)

const (
	openText  = `<w:t xml:space="preserve">`
	closeText = `</w:t>`
	openRun   = `<w:r>`
	closeRun  = `</w:r>`
)

// Placeholders for the run properties of the enclosing run.
const (
	MarkerProperties   = `<!--marker-rPr-->`
	ContinueProperties = `<!--continue-rPr-->`
)

// =============================================================================
// FRAGMENT FUNCTIONS
// =============================================================================

// Text returns s as the content of an open text element.
//
// PARAMETERS:
//   - s: The resolved field value.
//
// RETURNS:
//   - Escaped XML, with line breaks and tabs written as run content.
func Text(s string) string {
	var buffer bytes.Buffer
	writeText(&buffer, s)
	return buffer.String()
}

// Field returns the fragment for one context field: a marker run when the
// field carries a style, escaped text otherwise.
func Field(f types.Field) string {
	if f.Style == nil {
		return Text(f.Value.String())
	}
	return Marker(f.Value.String(), *f.Style)
}

// Marker returns text as a separately formatted run. The fragment closes the
// enclosing run and reopens one, so it is only valid where Text is.
func Marker(text string, style types.Style) string {
	var buffer bytes.Buffer

	buffer.WriteString(closeText)
	buffer.WriteString(closeRun)

	buffer.WriteString(openRun)
	buffer.WriteString(MarkerProperties)
	writeRunProperties(&buffer, style)
	buffer.WriteString(openText)
	writeText(&buffer, text)
	buffer.WriteString(closeText)
	buffer.WriteString(closeRun)

	buffer.WriteString(openRun)
	buffer.WriteString(ContinueProperties)
	buffer.WriteString(openText)

	return buffer.String()
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// writeRunProperties writes the <w:rPr> element of a marker run.
func writeRunProperties(buffer *bytes.Buffer, style types.Style) {
	if !style.Bold && style.Color == "" {
		return
	}

	buffer.WriteString("<w:rPr>")
	if style.Bold {
		buffer.WriteString("<w:b/>")
	}
	if style.Color != "" {
		buffer.WriteString(`<w:color w:val="`)
		buffer.WriteString(escapeXML(style.Color))
		buffer.WriteString(`"/>`)
	}
	buffer.WriteString("</w:rPr>")
}

// writeText escapes s and turns line breaks and tabs into run content.
func writeText(buffer *bytes.Buffer, s string) {
	for i := 0; i < len(s); i++ {
		switch c := s[i]; c {
		case '\r':
			if i+1 < len(s) && s[i+1] == '\n' {
				i++
			}
			buffer.WriteString(closeText + "<w:br/>" + openText)
		case '\n':
			buffer.WriteString(closeText + "<w:br/>" + openText)
		case '\t':
			buffer.WriteString(closeText + "<w:tab/>" + openText)
		default:
			start := i
			for i < len(s) && s[i] != '\r' && s[i] != '\n' && s[i] != '\t' {
				i++
			}
			buffer.WriteString(escapeXML(s[start:i]))
			i--
		}
	}
}

// escapeXML escapes special characters for XML and drops control
// characters XML 1.0 cannot represent.
func escapeXML(s string) string {
	var buffer bytes.Buffer

	for _, r := range s {
		switch r {
		case '&':
			buffer.WriteString("&amp;")
		case '<':
			buffer.WriteString("&lt;")
		case '>':
			buffer.WriteString("&gt;")
		case '"':
			buffer.WriteString("&quot;")
		case '\'':
			buffer.WriteString("&apos;")
		default:
			if r < 0x20 && r != '\t' && r != '\n' && r != '\r' {
				continue
			}
			if r == 0xFFFE || r == 0xFFFF {
				continue
			}
			buffer.WriteRune(r)
		}
	}

	return buffer.String()
}
