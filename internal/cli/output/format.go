// Package output renders catalogctl results as text tables or JSON.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

// Format represents the output format type
type Format string

const (
	// FormatText is the default human-readable text format
	FormatText Format = "text"
	// FormatJSON is the JSON output format
	FormatJSON Format = "json"
)

// Formatter handles different output formats
type Formatter struct {
	format Format
	writer io.Writer
}

// New creates a new Formatter with the specified format
func New(format Format) *Formatter {
	return &Formatter{
		format: format,
		writer: os.Stdout,
	}
}

// SetWriter sets a custom writer for output (useful for testing)
func (f *Formatter) SetWriter(w io.Writer) {
	f.writer = w
}

// Writer returns the destination of the formatter
func (f *Formatter) Writer() io.Writer {
	return f.writer
}

// Output writes data as JSON, or calls text to render it for humans
func (f *Formatter) Output(data any, text func(w io.Writer) error) error {
	switch f.format {
	case FormatJSON:
		return f.outputJSON(data)
	case FormatText:
		if text == nil {
			_, err := fmt.Fprintf(f.writer, "%v\n", data)
			return err
		}
		return text(f.writer)
	default:
		return fmt.Errorf("unsupported output format: %s", f.format)
	}
}

// outputJSON marshals and outputs data as JSON
func (f *Formatter) outputJSON(data any) error {
	encoder := json.NewEncoder(f.writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}

// IsJSON returns true if the format is JSON
func (f *Formatter) IsJSON() bool {
	return f.format == FormatJSON
}

// Table writes tab-aligned rows under an upper-cased header
func Table(w io.Writer, header []string, rows [][]string) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, strings.ToUpper(strings.Join(header, "\t")))
	for _, row := range rows {
		fmt.Fprintln(tw, strings.Join(row, "\t"))
	}
	return tw.Flush()
}

// Money formats an amount with thousands separators and a currency code
func Money(amount float64, currency string) string {
	return strings.TrimSpace(humanize.CommafWithDigits(amount, 2) + " " + currency)
}

// Ago formats t relative to now, e.g. "3 hours ago"
func Ago(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return humanize.Time(t)
}

// OrDash returns s, or "-" when it is nil or empty
func OrDash(s *string) string {
	if s == nil || *s == "" {
		return "-"
	}
	return *s
}

// AddFormatFlag adds a --output flag to a cobra command
func AddFormatFlag(cmd *cobra.Command) {
	cmd.PersistentFlags().StringP("output", "o", "text", "Output format (text|json)")
}

// GetFormatFromCmd extracts the output format from a cobra command's flags
func GetFormatFromCmd(cmd *cobra.Command) (Format, error) {
	formatStr, err := cmd.Flags().GetString("output")
	if err != nil {
		return FormatText, err
	}

	format := Format(formatStr)
	switch format {
	case FormatText, FormatJSON:
		return format, nil
	default:
		return FormatText, fmt.Errorf("invalid output format: %s (must be 'text' or 'json')", formatStr)
	}
}

// FromCmd builds a formatter for the command's --output flag writing to the
// command's output stream
func FromCmd(cmd *cobra.Command) (*Formatter, error) {
	format, err := GetFormatFromCmd(cmd)
	if err != nil {
		return nil, err
	}
	f := New(format)
	f.SetWriter(cmd.OutOrStdout())
	return f, nil
}
