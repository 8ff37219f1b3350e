// =============================================================================
// Offer Document Generator - File Manager Utility
// =============================================================================
//
// This module provides file management utilities for the generator, including:
//   - Collision-safe output naming (never overwrite a previous run)
//   - Directory management
//   - Failure log generation
//
// NAMING STRATEGY:
//   - The desired name is used when nothing exists at that path
//   - Otherwise a timestamp (YYYYMMDD_HHMMSS) is inserted before the extension
//   - If that name is taken as well, a counter (_2, _3, ...) is appended
//
// =============================================================================

package utils

import (
	"bufio"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// TimestampFormat is the sortable, second-precision suffix format.
const TimestampFormat = "20060102_150405"

// maxCollisionAttempts bounds the counter search of ResolvePath.
const maxCollisionAttempts = 10000

// =============================================================================
// OUTPUT NAMER
// =============================================================================

// OutputNamer derives output paths that do not collide with existing files.
type OutputNamer struct {
	// Now supplies the timestamp of disambiguated names.
	// Defaults to time.Now.
	Now func() time.Time
}

// NewOutputNamer creates an OutputNamer using the wall clock.
func NewOutputNamer() *OutputNamer {
	return &OutputNamer{Now: time.Now}
}

// ResolvePath returns a path in directory for fileName that no existing file
// occupies.
//
// PARAMETERS:
//   - directory: The target directory.
//   - fileName:  The desired file name, e.g. "offer-张三.docx".
//
// RETURNS:
//   - directory/fileName if it is free.
//   - directory/<base>_<YYYYMMDD_HHMMSS><ext> otherwise, with a _N counter
//     appended to the base when that name is taken too.
//   - An error if existence cannot be determined.
//
// The check and the later write are not atomic. The generator is a single
// sequential pass, so nothing else creates files in between.
func (n *OutputNamer) ResolvePath(directory, fileName string) (string, error) {
	path := filepath.Join(directory, fileName)
	exists, err := pathExists(path)
	if err != nil {
		return "", err
	}
	if !exists {
		return path, nil
	}

	now := time.Now
	if n != nil && n.Now != nil {
		now = n.Now
	}

	ext := filepath.Ext(fileName)
	base := strings.TrimSuffix(fileName, ext)
	stamped := fmt.Sprintf("%s_%s", base, now().Format(TimestampFormat))

	for i := 1; i <= maxCollisionAttempts; i++ {
		candidate := stamped
		if i > 1 {
			candidate = fmt.Sprintf("%s_%d", stamped, i)
		}
		path = filepath.Join(directory, candidate+ext)

		exists, err := pathExists(path)
		if err != nil {
			return "", err
		}
		if !exists {
			return path, nil
		}
	}

	return "", fmt.Errorf("no free output name for %s in %s", fileName, directory)
}

func pathExists(path string) (bool, error) {
	_, err := os.Lstat(path)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return false, fmt.Errorf("failed to check %s: %w", path, err)
}

// =============================================================================
// DIRECTORY MANAGEMENT
// =============================================================================

// EnsureDirectory creates dir and its parents if they don't exist.
func EnsureDirectory(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}
	return nil
}

// FileExists checks if a file exists.
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// =============================================================================
// FAILURE LOG GENERATION
// =============================================================================

// FailureLogEntry represents one document that could not be generated.
type FailureLogEntry struct {
	Timestamp    time.Time
	Candidate    string
	Document     string
	Stage        string
	ErrorMessage string
}

// WriteFailureLog writes failure entries to a log file in outputDir.
//
// PARAMETERS:
//   - entries:   The failures to write. Nothing is written when empty.
//   - outputDir: The directory to write the log file.
//   - runID:     Identifier of the run, repeated in the header.
//   - namer:     Resolves the log name without overwriting earlier logs.
//
// RETURNS:
//   - The path to the failure log file, or "" when entries is empty.
//   - An error if writing fails.
func WriteFailureLog(entries []FailureLogEntry, outputDir, runID string, namer *OutputNamer) (string, error) {
	if len(entries) == 0 {
		return "", nil
	}

	now := time.Now
	if namer != nil && namer.Now != nil {
		now = namer.Now
	}
	generated := now()

	logFileName := fmt.Sprintf("failure_log_%s.txt", generated.Format(TimestampFormat))
	logPath, err := namer.ResolvePath(outputDir, logFileName)
	if err != nil {
		return "", fmt.Errorf("failed to name failure log: %w", err)
	}

	file, err := os.OpenFile(logPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		return "", fmt.Errorf("failed to create failure log: %w", err)
	}
	defer file.Close()

	writer := bufio.NewWriter(file)

	fmt.Fprintf(writer, "Offer Document Generator - Failure Log\n"+
		"Run ID:         %s\n"+
		"Generated:      %s\n"+
		"Total Failures: %d\n"+
		"================================================================================\n\n",
		runID,
		generated.Format("2006-01-02 15:04:05"),
		len(entries))

	for i, entry := range entries {
		fmt.Fprintf(writer, "Failure #%d\n"+
			"  Timestamp:      %s\n"+
			"  Candidate:      %s\n"+
			"  Document:       %s\n"+
			"  Stage:          %s\n"+
			"  Message:        %s\n\n",
			i+1,
			entry.Timestamp.Format("2006-01-02 15:04:05"),
			entry.Candidate,
			entry.Document,
			entry.Stage,
			entry.ErrorMessage)
	}

	writer.WriteString("================================================================================\n" +
		"End of Failure Log\n")

	if err := writer.Flush(); err != nil {
		return "", fmt.Errorf("failed to write failure log: %w", err)
	}

	return logPath, nil
}
