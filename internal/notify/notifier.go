// Package notify delivers alert notifications to the care team.
package notify

import (
	"context"

	"github.com/oakpoint-health/clinic-core/internal/alerts"
	"github.com/oakpoint-health/clinic-core/pkg/logging"
)

// Notifier announces newly raised alerts. Implementations can be swapped
// (pager, email, SMS) without changing callers.
type Notifier interface {
	NotifyAlert(ctx context.Context, alert alerts.Alert) error
}

// LogNotifier writes notifications to the structured log. It stands in for
// outbound delivery channels in local development and tests.
type LogNotifier struct {
	logger *logging.Logger
}

// NewLogNotifier creates a log-backed notifier.
func NewLogNotifier(logger *logging.Logger) *LogNotifier {
	if logger == nil {
		logger = logging.Default()
	}
	return &LogNotifier{logger: logger.WithComponent("notify")}
}

// NotifyAlert logs the alert. Critical and high severities log at warn so
// they surface in filtered log views.
func (n *LogNotifier) NotifyAlert(_ context.Context, alert alerts.Alert) error {
	attrs := []any{
		"alert_id", alert.ID,
		"rule_id", alert.RuleID,
		"patient_id", alert.PatientID,
		"severity", alert.Severity,
		"category", alert.Category,
		"message", alert.Message,
	}
	switch alert.Severity {
	case "critical", "high":
		n.logger.Warn("clinical alert raised", attrs...)
	default:
		n.logger.Info("clinical alert raised", attrs...)
	}
	return nil
}
