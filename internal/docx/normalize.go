package docx

import (
	"html"
	"regexp"
	"strings"
)

var (
	// Word may split the two braces of a delimiter into separate runs.
	splitOpen  = regexp.MustCompile(`\{(?:<[^>]*>)+([{%#])`)
	splitClose = regexp.MustCompile(`([%}#])(?:<[^>]*>)+\}`)

	// A whole tag, from its opening to its closing delimiter.
	inlineTag = regexp.MustCompile(`(?s)\{\{.*?\}\}|\{%.*?%\}`)

	// Markup between text elements of one tag.
	runBoundary = regexp.MustCompile(`(?s)</w:t>.*?<w:t(?:\s[^>]*)?>`)

	// Residual markup inside a tag, e.g. a tag that began outside <w:t>.
	anyMarkup = regexp.MustCompile(`<[^>]*>`)

	// The rich-text prefix {{r name }} renders like {{ name }}.
	richPrefix = regexp.MustCompile(`\{\{r\s+`)

	placeholderName = regexp.MustCompile(`\{\{\s*([A-Za-z_][A-Za-z0-9_]*)`)

	smartQuotes = strings.NewReplacer("“", `"`, "”", `"`, "‘", "'", "’", "'")
)

// Normalize rewrites a part so that every tag is contiguous text pongo2 can
// parse: run markup Word inserted inside a tag is removed, XML entities and
// typographic quotes inside a tag are restored to plain characters.
func Normalize(xml []byte) []byte {
	out := splitOpen.ReplaceAll(xml, []byte("{${1}"))
	out = splitClose.ReplaceAll(out, []byte("${1}}"))
	out = inlineTag.ReplaceAllFunc(out, func(tag []byte) []byte {
		s := runBoundary.ReplaceAllString(string(tag), "")
		s = anyMarkup.ReplaceAllString(s, "")
		s = html.UnescapeString(s)
		s = smartQuotes.Replace(s)
		return []byte(s)
	})
	return richPrefix.ReplaceAll(out, []byte("{{ "))
}

func placeholderNames(xml []byte) []string {
	var names []string
	for _, m := range placeholderName.FindAllSubmatch(xml, -1) {
		names = append(names, string(m[1]))
	}
	return names
}
