package repo

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	xmpp "github.com/xmppo/go-xmpp"
	"go.uber.org/zap"
)

// ErrNotConnected is returned by SendMessage while no XMPP session is
// established. The dispatch boundary converts it into a textual
// response instead of an HTTP failure.
var ErrNotConnected = errors.New("not connected to XMPP server")

// XMPPSender is the outbound half of the chat transport. The message
// type is "chat" for one-to-one targets and "groupchat" for MUC rooms.
type XMPPSender interface {
	SendMessage(to, mtype, body string) error
	Online() bool
}

// EventHandler receives transport lifecycle and chat events. Handlers
// are registered once at startup and dispatched from the receive loop.
type EventHandler interface {
	OnSessionStart()
	OnMessage(from, body string)
	OnDisconnected(err error)
}

// XMPPBot wraps the XMPP client library behind XMPPSender and the
// event dispatch of Listen.
type XMPPBot struct {
	client *xmpp.Client
	mu     sync.Mutex // serializes writes to the stream
	online atomic.Bool
}

// NewXMPPBot connects and authenticates to the server derived from the
// jid domain. The resource identifies this process to the server.
func NewXMPPBot(jid, resource, password string) (*XMPPBot, error) {
	options := xmpp.Options{
		User:          jid,
		Resource:      resource,
		Password:      password,
		NoTLS:         true,
		Session:       true,
		Status:        "chat",
		StatusMessage: "Active",
	}
	client, err := options.NewClient()
	if err != nil {
		return nil, fmt.Errorf("error connecting to XMPP server: %w", err)
	}
	return &XMPPBot{client: client}, nil
}

// JoinMUC enters a multi-user chat room so groupchat recipients can be
// delivered to. Call once after connecting.
func (b *XMPPBot) JoinMUC(room, nick string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, err := b.client.JoinMUC(room, nick, xmpp.NoHistory, 0, nil); err != nil {
		return fmt.Errorf("error joining MUC %s: %w", room, err)
	}
	return nil
}

func (b *XMPPBot) SendMessage(to, mtype, body string) error {
	if !b.online.Load() {
		return ErrNotConnected
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, err := b.client.Send(xmpp.Chat{Remote: to, Type: mtype, Text: body}); err != nil {
		// A write failure means the stream is gone.
		b.online.Store(false)
		return fmt.Errorf("%w: %v", ErrNotConnected, err)
	}
	return nil
}

func (b *XMPPBot) Online() bool {
	return b.online.Load()
}

// Listen drives the receive loop and dispatches stanzas to h. It
// returns when the stream breaks. Each chat message is handled on its
// own goroutine so a slow command relay cannot stall the loop.
func (b *XMPPBot) Listen(h EventHandler) error {
	b.online.Store(true)
	h.OnSessionStart()
	for {
		stanza, err := b.client.Recv()
		if err != nil {
			b.online.Store(false)
			h.OnDisconnected(err)
			return fmt.Errorf("XMPP connection lost: %w", err)
		}
		switch v := stanza.(type) {
		case xmpp.Chat:
			if v.Type != "chat" && v.Type != "normal" {
				continue
			}
			if v.Text == "" {
				// Chat state notifications carry no body.
				continue
			}
			go h.OnMessage(v.Remote, v.Text)
		case xmpp.Presence:
			zap.S().Debugw("presence", "from", v.From, "type", v.Type)
		}
	}
}
