package app

import (
	"context"
	"fmt"
	"strings"

	"XMPPAlertBot/internal/metrics"

	shellquote "github.com/kballard/go-shellquote"
)

const helpReply = "Supported commands: help, alert, silence."

// Relay forwards an alert-management command to the external tool and
// returns its output as the reply text.
type Relay interface {
	Run(ctx context.Context, args []string) string
}

// ChatHandler turns inbound chat messages into replies: parse the
// command line, authorize the sender, relay or answer directly. It
// never raises past its own boundary; malformed input always yields a
// textual reply.
type ChatHandler struct {
	relay   Relay
	allowed map[string]struct{}
}

func NewChatHandler(relay Relay, allowed []string) *ChatHandler {
	set := make(map[string]struct{}, len(allowed))
	for _, jid := range allowed {
		set[bareJID(jid)] = struct{}{}
	}
	return &ChatHandler{relay: relay, allowed: set}
}

// Authorized reports whether sender may issue management commands.
// Exact match on the bare JID, no patterns.
func (h *ChatHandler) Authorized(sender string) bool {
	_, ok := h.allowed[bareJID(sender)]
	return ok
}

// HandleMessage handles one inbound chat body and returns the reply.
func (h *ChatHandler) HandleMessage(ctx context.Context, sender, body string) string {
	metrics.XMPPMessageCount.Inc()

	args, err := shellquote.Split(body)
	if err != nil {
		return fmt.Sprintf("Cannot parse command: %s", err)
	}
	if len(args) == 0 {
		return "No command specified"
	}

	command := strings.ToLower(args[0])
	switch command {
	case "help":
		return helpReply
	case "alert", "silence":
		if !h.Authorized(sender) {
			return "Unauthorized JID."
		}
		args[0] = command
		return h.relay.Run(ctx, args)
	default:
		return fmt.Sprintf("Unknown command: %s", command)
	}
}

// bareJID strips the resource suffix from a JID.
func bareJID(jid string) string {
	if i := strings.Index(jid, "/"); i >= 0 {
		return jid[:i]
	}
	return jid
}
