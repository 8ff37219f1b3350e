// Package locator finds input resources next to the executable, in the
// working directory, or in a configured resource directory.
package locator

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

// MissingResourceError reports a resource found in no candidate location.
type MissingResourceError struct {
	// Name is the logical resource name, e.g. "offer_template.docx".
	Name string

	// Attempted is the path reported to the user, resolved against the
	// working directory.
	Attempted string

	// Searched are all candidate paths in search order.
	Searched []string
}

func (e *MissingResourceError) Error() string {
	return fmt.Sprintf("resource %s not found (tried %s)", e.Name, e.Attempted)
}

// MissingResourcesError aggregates every missing resource of one lookup.
type MissingResourcesError struct {
	Missing []*MissingResourceError
}

func (e *MissingResourcesError) Error() string {
	names := make([]string, len(e.Missing))
	for i, m := range e.Missing {
		names[i] = m.Name
	}
	return fmt.Sprintf("missing required files: %s", strings.Join(names, ", "))
}

// Locator resolves resource names against an ordered list of base
// directories.
type Locator struct {
	bases []string
	stat  func(string) (os.FileInfo, error)
}

// Options configures the search locations.
type Options struct {
	// ResourceDir is searched first when set.
	ResourceDir string

	// ExecutableDir overrides the directory of the running binary.
	ExecutableDir string

	// WorkingDir overrides the process working directory.
	WorkingDir string

	// SourceDir overrides the source directory of the main package, as
	// recorded in the binary.
	SourceDir string
}

// New returns a Locator searching, in order: opts.ResourceDir, the
// executable directory, the working directory and the source directory.
// Empty or repeated bases are skipped.
func New(opts Options) *Locator {
	if opts.ExecutableDir == "" {
		if exe, err := os.Executable(); err == nil {
			if resolved, err := filepath.EvalSymlinks(exe); err == nil {
				exe = resolved
			}
			opts.ExecutableDir = filepath.Dir(exe)
		}
	}
	if opts.WorkingDir == "" {
		if wd, err := os.Getwd(); err == nil {
			opts.WorkingDir = wd
		}
	}
	if opts.SourceDir == "" {
		opts.SourceDir = mainSourceDir(callerFrames())
	}

	l := &Locator{stat: os.Stat}
	seen := map[string]bool{}
	for _, base := range []string{opts.ResourceDir, opts.ExecutableDir, opts.WorkingDir, opts.SourceDir} {
		if base == "" {
			continue
		}
		if abs, err := filepath.Abs(base); err == nil {
			base = abs
		}
		if seen[base] {
			continue
		}
		seen[base] = true
		l.bases = append(l.bases, base)
	}
	return l
}

// callerFrames returns an iterator over the frames of the calling stack.
func callerFrames() func() (runtime.Frame, bool) {
	pcs := make([]uintptr, 64)
	frames := runtime.CallersFrames(pcs[:runtime.Callers(2, pcs)])
	return frames.Next
}

// mainSourceDir returns the directory of the source file holding main.main,
// or "" when main.main is not on the stack.
func mainSourceDir(next func() (runtime.Frame, bool)) string {
	for {
		frame, more := next()
		if frame.Function == "main.main" && frame.File != "" {
			return filepath.Dir(frame.File)
		}
		if !more {
			return ""
		}
	}
}

// Bases returns the search directories in order.
func (l *Locator) Bases() []string {
	out := make([]string, len(l.bases))
	copy(out, l.bases)
	return out
}

// Locate returns the first existing candidate path for name. Absolute names
// are checked as they are.
func (l *Locator) Locate(name string) (string, error) {
	if filepath.IsAbs(name) {
		if _, err := l.stat(name); err == nil {
			return name, nil
		}
		return "", &MissingResourceError{Name: filepath.Base(name), Attempted: name, Searched: []string{name}}
	}

	searched := make([]string, 0, len(l.bases))
	for _, base := range l.bases {
		candidate := filepath.Join(base, name)
		searched = append(searched, candidate)
		if _, err := l.stat(candidate); err == nil {
			return candidate, nil
		}
	}

	attempted, err := filepath.Abs(name)
	if err != nil {
		attempted = name
	}
	return "", &MissingResourceError{Name: filepath.Base(name), Attempted: attempted, Searched: searched}
}

// LocateAll resolves every name. All missing names are reported together in
// a *MissingResourcesError; found paths are keyed by name.
func (l *Locator) LocateAll(names ...string) (map[string]string, error) {
	found := make(map[string]string, len(names))
	var missing []*MissingResourceError
	for _, name := range names {
		path, err := l.Locate(name)
		if err != nil {
			missing = append(missing, err.(*MissingResourceError))
			continue
		}
		found[name] = path
	}
	if len(missing) > 0 {
		return found, &MissingResourcesError{Missing: missing}
	}
	return found, nil
}
