package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"gopkg.in/yaml.v3"

	"github.com/matzehuels/simpleindex/pkg/errors"
	"github.com/matzehuels/simpleindex/pkg/simple"
)

// Output formats accepted by --format.
const (
	formatTable = "table"
	formatPlain = "plain"
	formatJSON  = "json"
	formatYAML  = "yaml"
)

func checkFormat(format string, allowed ...string) error {
	for _, f := range allowed {
		if format == f {
			return nil
		}
	}
	return errors.New(errors.ErrCodeInvalidFormat, "unknown format %q (valid: %s)", format, strings.Join(allowed, ", "))
}

// writeDocument writes a PEP 691 JSON document as indented JSON or, for
// YAML, as the same structure re-encoded.
func writeDocument(w io.Writer, doc []byte, format string) error {
	var v any
	if err := json.Unmarshal(doc, &v); err != nil {
		return err
	}
	switch format {
	case formatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	default:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
}

// =============================================================================
// File Filters
// =============================================================================

type fileFilter struct {
	noYanked     bool
	wheelsOnly   bool
	withMetadata bool
}

func (f fileFilter) apply(files []simple.ProjectFile) []simple.ProjectFile {
	out := make([]simple.ProjectFile, 0, len(files))
	for i := range files {
		file := &files[i]
		if f.noYanked && file.Yanked.IsYanked() {
			continue
		}
		if f.wheelsOnly && !file.IsWheel() {
			continue
		}
		if f.withMetadata && !file.Metadata().Available() {
			continue
		}
		out = append(out, *file)
	}
	return out
}

// =============================================================================
// Tables
// =============================================================================

var tableHeaderStyle = lipgloss.NewStyle().Foreground(colorGray).Bold(true)

// fileRow renders the columns shown for a file.
func fileRow(f *simple.ProjectFile) []string {
	requires := "—"
	if f.RequiresPython != nil && *f.RequiresPython != "" {
		requires = *f.RequiresPython
	}
	return []string{f.Filename, formatSize(f.Size), requires, formatUploaded(f.UploadTime), fileFlags(f)}
}

var fileHeaders = []string{"File", "Size", "Python", "Uploaded", "Flags"}

// fileFlags summarizes yank and metadata status.
func fileFlags(f *simple.ProjectFile) string {
	var flags []string
	if f.Yanked.IsYanked() {
		if r := f.Yanked.Reason(); r != "" {
			flags = append(flags, "yanked: "+r)
		} else {
			flags = append(flags, "yanked")
		}
	}
	if f.Metadata().Available() {
		flags = append(flags, "metadata")
	}
	if f.GPGSig != nil && *f.GPGSig {
		flags = append(flags, "signed")
	}
	return strings.Join(flags, ", ")
}

func filesTable(files []simple.ProjectFile) *table.Table {
	rows := make([][]string, len(files))
	for i := range files {
		rows[i] = fileRow(&files[i])
	}
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers(fileHeaders...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return tableHeaderStyle
			}
			if row >= 0 && row < len(files) && files[row].Yanked.IsYanked() {
				return lipgloss.NewStyle().Foreground(colorDim)
			}
			if col == 0 {
				return lipgloss.NewStyle().Foreground(colorWhite)
			}
			return lipgloss.NewStyle().Foreground(colorGray)
		})
}

func formatSize(size *int64) string {
	if size == nil {
		return "—"
	}
	const unit = 1024
	n := *size
	if n < unit {
		return strconv.FormatInt(n, 10) + " B"
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}

func formatUploaded(t *time.Time) string {
	if t == nil {
		return "—"
	}
	return t.UTC().Format("2006-01-02")
}
