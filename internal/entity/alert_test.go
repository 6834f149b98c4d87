package ent

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const webhookPayload = `{
  "receiver": "xmpp-pager",
  "status": "firing",
  "alerts": [
    {
      "status": "firing",
      "labels": {"alertname": "Disk", "severity": "critical"},
      "annotations": {"summary": "Disk full", "description": "98% used"},
      "startsAt": "2024-01-01T00:00:00Z",
      "endsAt": "0001-01-01T00:00:00Z",
      "generatorURL": "http://prometheus:9090/graph?g0.expr=x"
    }
  ],
  "externalURL": "http://alertmanager:9093"
}`

func TestWebhookMessageDecoding(t *testing.T) {
	var msg WebhookMessage
	require.NoError(t, json.Unmarshal([]byte(webhookPayload), &msg))

	require.Len(t, msg.Alerts, 1)
	alert := msg.Alerts[0]
	assert.Equal(t, StatusFiring, alert.Status)
	assert.Equal(t, "Disk", alert.Name())
	assert.Equal(t, "Disk full", alert.Summary())
	assert.Equal(t, "98% used", alert.Description())
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), alert.StartsAt)
	assert.Equal(t, "http://prometheus:9090/graph?g0.expr=x", alert.GeneratorURL)
}

func TestAlertNameMissing(t *testing.T) {
	alert := Alert{Status: StatusFiring}
	assert.Empty(t, alert.Name())
	assert.Empty(t, alert.Summary())
}
