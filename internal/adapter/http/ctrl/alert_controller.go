package ctrl

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"XMPPAlertBot/internal/app"
	ent "XMPPAlertBot/internal/entity"
	"XMPPAlertBot/internal/metrics"
	"XMPPAlertBot/internal/repo"

	"github.com/gorilla/mux"
)

const indexBody = `<html>
<head>
  <title>xmpp alerts</title>
</head>
<body>
See <a href="/test">/test</a>, <a href="/health">/health</a>, <a href="/alert">/alert</a> or <a href="/metrics">/metrics</a>.
</body>
</html>
`

const noRecipientsHint = "No recipients configured. Set `to_jid` in configuration or use /test/TO_JID."

// AlertController exposes the webhook and maintenance endpoints.
type AlertController struct {
	alertUseCase app.AlertSender
	online       func() bool
}

func NewAlertController(u app.AlertSender, online func() bool) *AlertController {
	return &AlertController{
		alertUseCase: u,
		online:       online,
	}
}

// Register installs all routes on the router.
func (h *AlertController) Register(r *mux.Router) {
	r.HandleFunc("/", h.HandleIndex).Methods(http.MethodGet)
	r.HandleFunc("/test", h.HandleTest).Methods(http.MethodGet, http.MethodPost)
	r.HandleFunc("/test/{to}", h.HandleTest).Methods(http.MethodGet, http.MethodPost)
	r.HandleFunc("/alert", h.HandleAlert).Methods(http.MethodGet, http.MethodPost)
	r.HandleFunc("/alert/{to}", h.HandleAlert).Methods(http.MethodGet, http.MethodPost)
	r.HandleFunc("/health", h.HandleHealth).Methods(http.MethodGet)
	r.Handle("/metrics", metrics.Handler()).Methods(http.MethodGet)
}

func (h *AlertController) HandleIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html")
	fmt.Fprint(w, indexBody)
}

// HandleAlert decodes an Alertmanager webhook batch and relays it as a
// chat message. Transport being offline is reported in a 200 body by
// design; only malformed input is an HTTP error.
func (h *AlertController) HandleAlert(w http.ResponseWriter, r *http.Request) {
	if !strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		http.Error(w, "Expected Content-Type: application/json", http.StatusUnsupportedMediaType)
		return
	}

	metrics.AlertCount.Inc()

	var msg ent.WebhookMessage
	if err := json.NewDecoder(r.Body).Decode(&msg); err != nil {
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}

	sent, err := h.alertUseCase.SendAlerts(mux.Vars(r)["to"], msg.Alerts)
	switch {
	case errors.Is(err, repo.ErrNotConnected):
		fmt.Fprintf(w, "Did not send message. Not online: %s", err)
	case errors.Is(err, app.ErrNoRecipient):
		http.Error(w, noRecipientsHint, http.StatusInternalServerError)
	case err != nil:
		http.Error(w, fmt.Sprintf("failed to send some messages: %s", err), http.StatusInternalServerError)
	default:
		fmt.Fprintf(w, "Sent %d messages", sent)
	}
}

func (h *AlertController) HandleTest(w http.ResponseWriter, r *http.Request) {
	metrics.TestCount.Inc()

	err := h.alertUseCase.SendTest(mux.Vars(r)["to"])
	switch {
	case errors.Is(err, repo.ErrNotConnected):
		fmt.Fprintf(w, "Did not send message. Not online: %s", err)
	case errors.Is(err, app.ErrNoRecipient):
		http.Error(w, noRecipientsHint, http.StatusInternalServerError)
	case err != nil:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	default:
		fmt.Fprint(w, "Sent message.")
	}
}

func (h *AlertController) HandleHealth(w http.ResponseWriter, r *http.Request) {
	if !h.online() {
		http.Error(w, "not authenticated to server", http.StatusInternalServerError)
		return
	}
	fmt.Fprint(w, "ok")
}
