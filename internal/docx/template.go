// =============================================================================
// Offer Document Generator - DOCX Template Module
// =============================================================================
//
// This module fills placeholders in a .docx template. A .docx file is a ZIP
// archive of XML parts; placeholders use the Jinja-like {{ name }} syntax
// and are rendered with pongo2.
//
// RENDER PIPELINE:
//   1. Load reads every archive entry into memory
//   2. Render normalizes each text part (placeholders Word split across
//      runs are merged back together) and executes it against the context;
//      marker runs then take the formatting of the run they replaced
//   3. Save writes the archive, entries in their original order
//
// A Template instance is single-use: it is loaded from disk, rendered
// exactly once and saved. Rendering twice or saving before rendering fails.
//
// =============================================================================

package docx

import (
	"archive/zip"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"

	"github.com/flosch/pongo2/v6"

	"github.com/ginjaninja78/offer-docgen/internal/types"
	"github.com/ginjaninja78/offer-docgen/internal/xmlwriter"
)

var (
	// ErrAlreadyRendered is returned by Render on a used template.
	ErrAlreadyRendered = errors.New("template already rendered")

	// ErrNotRendered is returned by Save before Render.
	ErrNotRendered = errors.New("template not rendered")
)

// renderedParts are the archive entries that may hold placeholders.
var renderedParts = regexp.MustCompile(`^word/(document|header[0-9]*|footer[0-9]*|footnotes|endnotes)\.xml$`)

// part is one archive entry held in memory.
type part struct {
	header zip.FileHeader
	data   []byte
}

// Template is a loaded .docx template.
type Template struct {
	path     string
	parts    []part
	rendered bool
}

// =============================================================================
// LOADING
// =============================================================================

// Load reads the template at path.
//
// PARAMETERS:
//   - path: The path to the .docx file.
//
// RETURNS:
//   - The loaded template, ready for one Render.
//   - An error if the file is not a readable .docx archive.
func Load(path string) (*Template, error) {
	reader, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open template %s: %w", path, err)
	}
	defer reader.Close()

	t := &Template{path: path}
	hasDocument := false

	for _, f := range reader.File {
		data, err := readEntry(f)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s in %s: %w", f.Name, path, err)
		}
		if f.Name == "word/document.xml" {
			hasDocument = true
		}
		t.parts = append(t.parts, part{
			header: zip.FileHeader{Name: f.Name, Method: f.Method, Modified: f.Modified},
			data:   data,
		})
	}

	if !hasDocument {
		return nil, fmt.Errorf("%s is not a Word document: word/document.xml missing", path)
	}

	return t, nil
}

func readEntry(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

// Path returns the file the template was loaded from.
func (t *Template) Path() string {
	return t.path
}

// Placeholders returns the placeholder names used in the template's text
// parts, in first-use order.
func (t *Template) Placeholders() []string {
	var names []string
	seen := map[string]bool{}
	for _, p := range t.parts {
		if !renderedParts.MatchString(p.header.Name) {
			continue
		}
		for _, name := range placeholderNames(Normalize(p.data)) {
			if !seen[name] {
				seen[name] = true
				names = append(names, name)
			}
		}
	}
	return names
}

// =============================================================================
// RENDERING
// =============================================================================

// Render fills every placeholder from ctx. Placeholders without a context
// entry render as empty text.
func (t *Template) Render(ctx types.Context) error {
	if t.rendered {
		return ErrAlreadyRendered
	}
	t.rendered = true

	values := toPongoContext(ctx)

	for i := range t.parts {
		p := &t.parts[i]
		if !renderedParts.MatchString(p.header.Name) {
			continue
		}

		tpl, err := pongo2.FromBytes(Normalize(p.data))
		if err != nil {
			return fmt.Errorf("failed to parse %s: %w", p.header.Name, err)
		}
		out, err := tpl.ExecuteBytes(values)
		if err != nil {
			return fmt.Errorf("failed to render %s: %w", p.header.Name, err)
		}
		p.data = inheritRunProperties(out)
	}

	return nil
}

// toPongoContext converts fields to pre-rendered XML fragments. Fragments
// are marked safe so the engine writes them unescaped.
func toPongoContext(ctx types.Context) pongo2.Context {
	out := make(pongo2.Context, len(ctx))
	for key, field := range ctx {
		out[key] = pongo2.AsSafeValue(xmlwriter.Field(field))
	}
	return out
}

// =============================================================================
// SAVING
// =============================================================================

// Save writes the rendered document to path. A partially written file is
// removed on failure.
func (t *Template) Save(path string) (err error) {
	if !t.rendered {
		return ErrNotRendered
	}

	var buffer bytes.Buffer
	w := zip.NewWriter(&buffer)
	for i := range t.parts {
		header := t.parts[i].header
		entry, err := w.CreateHeader(&header)
		if err != nil {
			return fmt.Errorf("failed to write %s: %w", header.Name, err)
		}
		if _, err := entry.Write(t.parts[i].data); err != nil {
			return fmt.Errorf("failed to write %s: %w", header.Name, err)
		}
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("failed to finish archive: %w", err)
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close %s: %w", path, cerr)
		}
		if err != nil {
			os.Remove(path)
		}
	}()

	if _, err := f.Write(buffer.Bytes()); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
