package app

import (
	"context"

	"XMPPAlertBot/internal/metrics"
	"XMPPAlertBot/internal/repo"

	"go.uber.org/zap"
)

// SessionHandler reacts to chat transport events: gauge upkeep on
// session start and loss, and replies to inbound commands. The process
// treats a lost session as fatal and leaves restarting to an external
// supervisor, so OnDisconnected only records and logs the loss; the
// receive loop's caller exits.
type SessionHandler struct {
	sender repo.XMPPSender
	chat   *ChatHandler
}

func NewSessionHandler(sender repo.XMPPSender, chat *ChatHandler) *SessionHandler {
	return &SessionHandler{sender: sender, chat: chat}
}

func (s *SessionHandler) OnSessionStart() {
	zap.S().Info("XMPP session started")
	metrics.XMPPOnline.Set(1)
	metrics.LastAlertMessageSucceeded.Set(1)
}

func (s *SessionHandler) OnMessage(from, body string) {
	reply := s.chat.HandleMessage(context.Background(), from, body)
	if err := s.sender.SendMessage(from, "chat", reply); err != nil {
		zap.S().Warnw("error sending reply", "to", from, "error", err)
	}
}

func (s *SessionHandler) OnDisconnected(err error) {
	metrics.XMPPOnline.Set(0)
	zap.S().Errorw("connection lost, exiting", "error", err)
}
