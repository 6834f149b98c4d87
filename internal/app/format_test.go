package app

import (
	"testing"
	"time"

	ent "XMPPAlertBot/internal/entity"

	"github.com/prometheus/common/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func diskAlert() ent.Alert {
	return ent.Alert{
		Status: ent.StatusFiring,
		Labels: model.LabelSet{"alertname": "Disk"},
		Annotations: model.LabelSet{
			"summary": "Disk full",
		},
		StartsAt: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestFormatShort(t *testing.T) {
	f, err := NewFormatter("short", "")
	require.NoError(t, err)

	text, err := f.Format(diskAlert())
	require.NoError(t, err)
	assert.Equal(t, "FIRING, 2024-01-01T00:00:00Z, Disk full", text)
}

func TestFormatShortResolved(t *testing.T) {
	f, err := NewFormatter("short", "")
	require.NoError(t, err)

	alert := diskAlert()
	alert.Status = ent.StatusResolved
	text, err := f.Format(alert)
	require.NoError(t, err)
	assert.Equal(t, "RESOLVED, 2024-01-01T00:00:00Z, Disk full", text)
}

// A missing summary annotation drops the segment instead of erroring.
func TestFormatShortMissingSummary(t *testing.T) {
	f, err := NewFormatter("short", "")
	require.NoError(t, err)

	alert := diskAlert()
	delete(alert.Annotations, "summary")
	text, err := f.Format(alert)
	require.NoError(t, err)
	assert.Equal(t, "FIRING, 2024-01-01T00:00:00Z", text)
}

func TestFormatMissingAlertName(t *testing.T) {
	f, err := NewFormatter("short", "")
	require.NoError(t, err)

	alert := diskAlert()
	delete(alert.Labels, "alertname")
	_, err = f.Format(alert)
	assert.ErrorIs(t, err, ErrMissingAlertName)
}

func TestFormatFull(t *testing.T) {
	f, err := NewFormatter("full", "")
	require.NoError(t, err)

	alert := diskAlert()
	alert.Labels["severity"] = "critical"
	alert.Labels["instance"] = "host:9100"
	alert.Annotations["description"] = "the disk is at 98%"

	text, err := f.Format(alert)
	require.NoError(t, err)
	assert.Equal(t,
		"**[FIRING] Disk full** (host:9100 critical)\n"+
			"the disk is at 98%\n"+
			"**alertname**: Disk\n"+
			"**instance**: host:9100\n"+
			"**severity**: critical",
		text)

	// Label order is deterministic across repeated calls.
	again, err := f.Format(alert)
	require.NoError(t, err)
	assert.Equal(t, text, again)
}

func TestFormatFullFallsBackToAlertName(t *testing.T) {
	f, err := NewFormatter("full", "")
	require.NoError(t, err)

	alert := diskAlert()
	delete(alert.Annotations, "summary")
	text, err := f.Format(alert)
	require.NoError(t, err)
	assert.Equal(t, "**[FIRING] Disk** ()\n**alertname**: Disk", text)
}

func TestFormatBatchSeparatesFullBlocks(t *testing.T) {
	f, err := NewFormatter("full", "")
	require.NoError(t, err)

	first := diskAlert()
	second := diskAlert()
	second.Labels = model.LabelSet{"alertname": "Load"}
	second.Annotations = model.LabelSet{"summary": "Load high"}

	text, err := f.FormatBatch([]ent.Alert{first, second})
	require.NoError(t, err)
	assert.Equal(t,
		"**[FIRING] Disk full** ()\n**alertname**: Disk\n"+
			"--\n"+
			"**[FIRING] Load high** ()\n**alertname**: Load",
		text)
}

func TestFormatBatchShortJoinsLines(t *testing.T) {
	f, err := NewFormatter("short", "")
	require.NoError(t, err)

	text, err := f.FormatBatch([]ent.Alert{diskAlert(), diskAlert()})
	require.NoError(t, err)
	assert.Equal(t,
		"FIRING, 2024-01-01T00:00:00Z, Disk full\nFIRING, 2024-01-01T00:00:00Z, Disk full",
		text)
}

func TestFormatterCustomTemplate(t *testing.T) {
	f, err := NewFormatter("short", `{{.Status}}: {{index .Labels "alertname"}}`)
	require.NoError(t, err)

	text, err := f.Format(diskAlert())
	require.NoError(t, err)
	assert.Equal(t, "firing: Disk", text)
}

func TestFormatterBadTemplate(t *testing.T) {
	_, err := NewFormatter("short", "{{.Status")
	assert.Error(t, err)
}
