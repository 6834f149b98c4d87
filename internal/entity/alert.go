package ent

import (
	"time"

	"github.com/prometheus/common/model"
)

const (
	StatusFiring   = "firing"
	StatusResolved = "resolved"

	AlertNameLabel        = "alertname"
	SummaryAnnotation     = "summary"
	DescriptionAnnotation = "description"

	TypeChat      = "chat"
	TypeGroupchat = "groupchat"
)

// Recipient is one delivery target for outbound messages: a one-to-one
// chat JID or a multi-user chat room.
type Recipient struct {
	JID  string
	Type string
}

// Alert is one alert record as posted by Alertmanager to a webhook
// receiver. Alerts are transient: decoded per request, never stored.
type Alert struct {
	Status       string         `json:"status"`
	Labels       model.LabelSet `json:"labels"`
	Annotations  model.LabelSet `json:"annotations"`
	StartsAt     time.Time      `json:"startsAt"`
	EndsAt       time.Time      `json:"endsAt,omitempty"`
	GeneratorURL string         `json:"generatorURL,omitempty"`
}

// WebhookMessage is the batch payload of the Alertmanager webhook.
type WebhookMessage struct {
	Receiver          string         `json:"receiver,omitempty"`
	Status            string         `json:"status,omitempty"`
	Alerts            []Alert        `json:"alerts"`
	GroupLabels       model.LabelSet `json:"groupLabels,omitempty"`
	CommonLabels      model.LabelSet `json:"commonLabels,omitempty"`
	CommonAnnotations model.LabelSet `json:"commonAnnotations,omitempty"`
	ExternalURL       string         `json:"externalURL,omitempty"`
}

// Name returns the alertname label, empty if the label is missing.
func (a *Alert) Name() string {
	return string(a.Labels[AlertNameLabel])
}

func (a *Alert) Summary() string {
	return string(a.Annotations[SummaryAnnotation])
}

func (a *Alert) Description() string {
	return string(a.Annotations[DescriptionAnnotation])
}
