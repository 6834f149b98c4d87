package app

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"text/template"
	"time"

	ent "XMPPAlertBot/internal/entity"

	"github.com/prometheus/common/model"
)

const (
	// blockSeparator sits between full-format alert blocks.
	blockSeparator = "--"
)

// ErrMissingAlertName reports an alert payload without the mandatory
// alertname label.
var ErrMissingAlertName = errors.New("alert carries no alertname label")

// Formatter turns alerts into chat message text in one of the two
// fixed formats, or through a user supplied text template.
type Formatter struct {
	format string
	tmpl   *template.Template
}

// NewFormatter builds a formatter for "short" or "full" output. A
// non-empty textTemplate takes precedence over format and is rendered
// against the alert itself.
func NewFormatter(format, textTemplate string) (*Formatter, error) {
	f := &Formatter{format: format}
	if textTemplate != "" {
		tmpl, err := template.New("alert").Parse(textTemplate)
		if err != nil {
			return nil, fmt.Errorf("error parsing text_template: %w", err)
		}
		f.tmpl = tmpl
	}
	return f, nil
}

// Format renders one alert. Pure function of its input.
func (f *Formatter) Format(alert ent.Alert) (string, error) {
	if alert.Name() == "" {
		return "", ErrMissingAlertName
	}
	if f.tmpl != nil {
		var b strings.Builder
		if err := f.tmpl.Execute(&b, alert); err != nil {
			return "", fmt.Errorf("error rendering text_template: %w", err)
		}
		return b.String(), nil
	}
	if f.format == "full" {
		return formatFull(alert), nil
	}
	return formatShort(alert), nil
}

// FormatBatch renders every alert and joins the results, with a
// separator line between full-format blocks.
func (f *Formatter) FormatBatch(alerts []ent.Alert) (string, error) {
	parts := make([]string, 0, len(alerts))
	for _, alert := range alerts {
		text, err := f.Format(alert)
		if err != nil {
			return "", err
		}
		parts = append(parts, text)
	}
	separator := "\n"
	if f.format == "full" && f.tmpl == nil {
		separator = "\n" + blockSeparator + "\n"
	}
	return strings.Join(parts, separator), nil
}

// formatShort renders "STATUS, startsAt, summary" on one line. A
// missing summary annotation drops the trailing segment.
func formatShort(alert ent.Alert) string {
	line := fmt.Sprintf("%s, %s",
		strings.ToUpper(alert.Status),
		alert.StartsAt.Format(time.RFC3339))
	if summary := alert.Summary(); summary != "" {
		line += ", " + summary
	}
	return line
}

// formatFull renders a header with the summary (or alertname) and the
// non-alertname label values, the description, and one line per label.
// Labels are sorted by name so repeated calls are deterministic.
func formatFull(alert ent.Alert) string {
	title := alert.Summary()
	if title == "" {
		title = alert.Name()
	}

	names := make([]string, 0, len(alert.Labels))
	for name := range alert.Labels {
		names = append(names, string(name))
	}
	sort.Strings(names)

	values := make([]string, 0, len(names))
	for _, name := range names {
		if name == ent.AlertNameLabel {
			continue
		}
		values = append(values, string(alert.Labels[model.LabelName(name)]))
	}

	var b strings.Builder
	fmt.Fprintf(&b, "**[%s] %s** (%s)",
		strings.ToUpper(alert.Status), title, strings.Join(values, " "))
	if description := alert.Description(); description != "" {
		b.WriteString("\n" + description)
	}
	for _, name := range names {
		fmt.Fprintf(&b, "\n**%s**: %s", name, alert.Labels[model.LabelName(name)])
	}
	return b.String()
}
