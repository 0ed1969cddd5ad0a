package notify

import (
	"fmt"

	"github.com/containrrr/shoutrrr"

	"github.com/gatewarden/gatewarden/internal/logger"
)

// Notifier pushes short alerts to an external service (Discord, Slack,
// email — anything shoutrrr speaks) when the firewall blocks traffic.
// Delivery is best-effort; failures never reach the request path.
type Notifier struct {
	url string
}

// New returns a Notifier for a shoutrrr URL. An empty URL yields a
// disabled notifier whose sends are no-ops.
func New(url string) *Notifier {
	return &Notifier{url: url}
}

// Enabled reports whether alerts will actually be delivered.
func (n *Notifier) Enabled() bool {
	return n.url != ""
}

// BlockAlert sends an asynchronous alert for a blocked request.
func (n *Notifier) BlockAlert(clientKey, reason, path string) {
	if !n.Enabled() {
		return
	}
	message := fmt.Sprintf("Blocked %s from %s (%s)", path, clientKey, reason)
	go func() {
		if err := shoutrrr.Send(n.url, message); err != nil {
			logger.WithFields(map[string]interface{}{
				"error": err.Error(),
			}).Warn("failed to deliver block alert")
		}
	}()
}
