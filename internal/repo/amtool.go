package repo

import (
	"context"
	"fmt"
	"os/exec"
	"time"

	"go.uber.org/zap"
)

// AmtoolRelay invokes the external alert-management CLI as a
// subprocess and returns whatever it prints, error text included. The
// reply is always textual; a failed or missing tool never propagates
// past the relay.
type AmtoolRelay struct {
	path            string
	alertmanagerURL string
	timeout         time.Duration
}

// NewAmtoolRelay builds a relay around the tool at path. When
// alertmanagerURL is non-empty it is injected before every command via
// the --alertmanager.url flag.
func NewAmtoolRelay(path, alertmanagerURL string, timeout time.Duration) *AmtoolRelay {
	return &AmtoolRelay{
		path:            path,
		alertmanagerURL: alertmanagerURL,
		timeout:         timeout,
	}
}

// Run executes the tool with args and returns its combined output.
func (r *AmtoolRelay) Run(ctx context.Context, args []string) string {
	if r.alertmanagerURL != "" {
		args = append([]string{"--alertmanager.url", r.alertmanagerURL}, args...)
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	out, err := exec.CommandContext(ctx, r.path, args...).CombinedOutput()
	if ctx.Err() == context.DeadlineExceeded {
		zap.S().Warnw("amtool timed out", "args", args, "timeout", r.timeout)
		return fmt.Sprintf("%s timed out after %s", r.path, r.timeout)
	}
	if err != nil && len(out) == 0 {
		// Tool missing or exited silently; the error is all we have.
		return err.Error()
	}
	return string(out)
}
