package app

import (
	"errors"

	ent "XMPPAlertBot/internal/entity"
	"XMPPAlertBot/internal/metrics"
	"XMPPAlertBot/internal/repo"

	"go.uber.org/zap"
)

// testMessage is the literal body sent by the /test endpoint.
const testMessage = "Test message"

// ErrNoRecipient reports that neither the request nor the
// configuration named a recipient.
var ErrNoRecipient = errors.New("no recipients configured")

// AlertSender is the alert dispatch usecase: format alerts and push
// them through the chat transport, recording the delivery outcome.
type AlertSender interface {
	SendAlerts(to string, alerts []ent.Alert) (int, error)
	SendTest(to string) error
}

type alertUseCase struct {
	sender     repo.XMPPSender
	formatter  *Formatter
	recipients []ent.Recipient
}

func NewAlertUseCase(sender repo.XMPPSender, formatter *Formatter, recipients []ent.Recipient) AlertSender {
	return &alertUseCase{
		sender:     sender,
		formatter:  formatter,
		recipients: recipients,
	}
}

// SendAlerts formats the batch, joins it into one chat message and
// fans it out to every recipient. A request-supplied recipient
// replaces the configured list. The returned count is the number of
// alerts delivered.
func (u *alertUseCase) SendAlerts(to string, alerts []ent.Alert) (int, error) {
	targets, err := u.targets(to)
	if err != nil {
		return 0, err
	}
	if len(alerts) == 0 {
		return 0, nil
	}

	text, err := u.formatter.FormatBatch(alerts)
	if err != nil {
		metrics.LastAlertMessageSucceeded.Set(0)
		return 0, err
	}

	for _, target := range targets {
		if err := u.sender.SendMessage(target.JID, target.Type, text); err != nil {
			metrics.LastAlertMessageSucceeded.Set(0)
			if errors.Is(err, repo.ErrNotConnected) {
				zap.S().Warnw("alert posted but we are not online", "error", err)
			}
			return 0, err
		}
	}

	metrics.LastAlertMessageSucceeded.Set(1)
	return len(alerts), nil
}

func (u *alertUseCase) SendTest(to string) error {
	targets, err := u.targets(to)
	if err != nil {
		return err
	}
	for _, target := range targets {
		if err := u.sender.SendMessage(target.JID, target.Type, testMessage); err != nil {
			if errors.Is(err, repo.ErrNotConnected) {
				zap.S().Warnw("test alert not posted since we are not online", "error", err)
			}
			return err
		}
	}
	return nil
}

func (u *alertUseCase) targets(to string) ([]ent.Recipient, error) {
	if to != "" {
		return []ent.Recipient{{JID: to, Type: ent.TypeChat}}, nil
	}
	if len(u.recipients) > 0 {
		return u.recipients, nil
	}
	return nil, ErrNoRecipient
}
