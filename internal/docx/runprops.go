package docx

import (
	"bytes"
	"encoding/xml"
	"io"
	"sort"

	"github.com/ginjaninja78/offer-docgen/internal/xmlwriter"
)

var (
	markerProperties   = []byte(xmlwriter.MarkerProperties)
	continueProperties = []byte(xmlwriter.ContinueProperties)

	runOpen      = []byte("<w:r>")
	runOpenAttrs = []byte("<w:r ")
	rPrOpen      = []byte("<w:rPr>")
	rPrOpenAttrs = []byte("<w:rPr ")
	rPrEmpty     = []byte("<w:rPr/>")
	rPrClose     = []byte("</w:rPr>")
)

// rPrOrder is the child order of <w:rPr> required by the WordprocessingML
// schema. Unknown children go after the known ones, rPrChange goes last.
var rPrOrder = func() map[string]int {
	names := []string{
		"rStyle", "rFonts", "b", "bCs", "i", "iCs", "caps", "smallCaps",
		"strike", "dstrike", "outline", "shadow", "emboss", "imprint",
		"noProof", "snapToGrid", "vanish", "webHidden", "color", "spacing",
		"w", "kern", "position", "sz", "szCs", "highlight", "u", "effect",
		"bdr", "shd", "fitText", "vertAlign", "rtl", "cs", "em", "lang",
		"eastAsianLayout", "specVanish", "oMath",
	}
	order := make(map[string]int, len(names)+1)
	for i, name := range names {
		order[name] = i
	}
	order["rPrChange"] = len(names) + 1
	return order
}()

func rPrRank(name string) int {
	if rank, ok := rPrOrder[name]; ok {
		return rank
	}
	return rPrOrder["rPrChange"] - 1
}

// inheritRunProperties replaces the run property placeholders written by
// xmlwriter.Marker. A marker run gets the properties of the run its
// placeholder sat in, overridden by the marker formatting; the run reopened
// after it gets those properties unchanged.
func inheritRunProperties(data []byte) []byte {
	if !bytes.Contains(data, markerProperties) && !bytes.Contains(data, continueProperties) {
		return data
	}

	var out bytes.Buffer
	out.Grow(len(data))

	var enclosing []byte
	rest := data
	for {
		m := bytes.Index(rest, markerProperties)
		c := bytes.Index(rest, continueProperties)

		switch {
		case m >= 0 && (c < 0 || m < c):
			out.Write(rest[:m])
			enclosing = enclosingRunProperties(out.Bytes())
			style, after := takeRunProperties(rest[m+len(markerProperties):])
			writeRunProperties(&out, mergeRunProperties(enclosing, style))
			rest = after
		case c >= 0:
			out.Write(rest[:c])
			writeRunProperties(&out, enclosing)
			rest = rest[c+len(continueProperties):]
		default:
			out.Write(rest)
			return out.Bytes()
		}
	}
}

// enclosingRunProperties returns the content of the <w:rPr> of the run that
// was open before the marker run. before ends with the marker's own <w:r>.
func enclosingRunProperties(before []byte) []byte {
	before = bytes.TrimSuffix(before, runOpen)

	start := bytes.LastIndex(before, runOpen)
	if i := bytes.LastIndex(before, runOpenAttrs); i > start {
		start = i
	}
	if start < 0 {
		return nil
	}

	tagEnd := bytes.IndexByte(before[start:], '>')
	if tagEnd < 0 {
		return nil
	}
	inner, _ := takeRunProperties(before[start+tagEnd+1:])
	return inner
}

// takeRunProperties splits a leading <w:rPr> element off b and returns its
// content and the bytes after it. Without one, it returns nil and b.
func takeRunProperties(b []byte) ([]byte, []byte) {
	if bytes.HasPrefix(b, rPrEmpty) {
		return nil, b[len(rPrEmpty):]
	}
	if !bytes.HasPrefix(b, rPrOpen) && !bytes.HasPrefix(b, rPrOpenAttrs) {
		return nil, b
	}

	contentStart := bytes.IndexByte(b, '>') + 1
	depth := 1
	pos := contentStart
	for {
		closeAt := bytes.Index(b[pos:], rPrClose)
		if closeAt < 0 {
			return nil, b
		}
		// rPrChange carries a nested <w:rPr> of its own.
		if openAt := indexRunPropertiesOpen(b[pos:]); openAt >= 0 && openAt < closeAt {
			depth++
			pos += openAt + len(rPrOpen)
			continue
		}
		depth--
		if depth == 0 {
			end := pos + closeAt
			return b[contentStart:end], b[end+len(rPrClose):]
		}
		pos += closeAt + len(rPrClose)
	}
}

func indexRunPropertiesOpen(b []byte) int {
	i := bytes.Index(b, rPrOpen)
	if j := bytes.Index(b, rPrOpenAttrs); j >= 0 && (i < 0 || j < i) {
		i = j
	}
	return i
}

// element is one child of <w:rPr>, kept as raw bytes.
type element struct {
	name string
	raw  []byte
}

// splitElements splits rPr content into its top-level children.
func splitElements(content []byte) ([]element, error) {
	decoder := xml.NewDecoder(bytes.NewReader(content))

	var (
		elements []element
		depth    int
		start    int64
		name     string
	)
	for {
		offset := decoder.InputOffset()
		tok, err := decoder.RawToken()
		if err == io.EOF {
			return elements, nil
		}
		if err != nil {
			return nil, err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if depth == 0 {
				start, name = offset, t.Name.Local
			}
			depth++
		case xml.EndElement:
			depth--
			if depth == 0 {
				elements = append(elements, element{name: name, raw: content[start:decoder.InputOffset()]})
			}
		}
	}
}

// mergeRunProperties combines enclosing run properties with the marker
// formatting. Marker children replace enclosing children of the same name.
func mergeRunProperties(enclosing, style []byte) []byte {
	if len(enclosing) == 0 {
		return style
	}

	base, err := splitElements(enclosing)
	if err != nil {
		return style
	}
	overrides, err := splitElements(style)
	if err != nil {
		return style
	}

	replaced := make(map[string]bool, len(overrides))
	for _, e := range overrides {
		replaced[e.name] = true
	}

	merged := make([]element, 0, len(base)+len(overrides))
	for _, e := range base {
		if !replaced[e.name] {
			merged = append(merged, e)
		}
	}
	merged = append(merged, overrides...)
	sort.SliceStable(merged, func(i, j int) bool {
		return rPrRank(merged[i].name) < rPrRank(merged[j].name)
	})

	var out bytes.Buffer
	for _, e := range merged {
		out.Write(e.raw)
	}
	return out.Bytes()
}

func writeRunProperties(out *bytes.Buffer, content []byte) {
	if len(content) == 0 {
		return
	}
	out.Write(rPrOpen)
	out.Write(content)
	out.Write(rPrClose)
}
