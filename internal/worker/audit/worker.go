package auditworker

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/oakpoint-health/clinic-core/internal/alerts"
	"github.com/oakpoint-health/clinic-core/internal/authorizations"
	"github.com/oakpoint-health/clinic-core/internal/events"
	"github.com/oakpoint-health/clinic-core/internal/notify"
	"github.com/oakpoint-health/clinic-core/internal/patient"
	"github.com/oakpoint-health/clinic-core/internal/rules"
	"github.com/oakpoint-health/clinic-core/pkg/logging"
)

type outboxAppender interface {
	AppendEvent(ctx context.Context, orgID, aggregate, correlationID string, evt events.CanonicalEvent, opts ...events.EnvelopeOption) (events.Envelope, error)
}

type dedupStore interface {
	Claim(ctx context.Context, orgID, ruleID, patientID, trigger string) (bool, error)
	Release(ctx context.Context, orgID, ruleID, patientID, trigger string) error
}

type workerConfig struct {
	workers          int
	receiveBatchSize int
	receiveWaitSecs  int
}

// WorkerOption customizes worker behavior.
type WorkerOption func(*Worker)

// WithWorkerCount sets the number of consumer goroutines.
func WithWorkerCount(n int) WorkerOption {
	return func(w *Worker) {
		if n > 0 {
			w.cfg.workers = n
		}
	}
}

// WithOutbox attaches the transactional outbox for downstream events.
func WithOutbox(outbox outboxAppender) WorkerOption {
	return func(w *Worker) { w.outbox = outbox }
}

// WithDedup attaches cross-run alert deduplication.
func WithDedup(dedup dedupStore) WorkerOption {
	return func(w *Worker) { w.dedup = dedup }
}

// WithNotifier attaches the notification sink for raised alerts.
func WithNotifier(n notify.Notifier) WorkerOption {
	return func(w *Worker) { w.notifier = n }
}

// Worker consumes appointment completions: it consumes authorization units
// for the appointment and then runs the full rule catalog against the
// patient's record.
type Worker struct {
	queue      queueClient
	authRepo   authorizations.Repository
	tracker    *authorizations.Tracker
	patients   patient.Provider
	evaluator  *rules.Evaluator
	alertsRepo alerts.Repository
	outbox     outboxAppender
	dedup      dedupStore
	notifier   notify.Notifier
	logger     *logging.Logger
	cfg        workerConfig
	wg         sync.WaitGroup
}

// NewWorker wires the audit worker.
func NewWorker(
	queue queueClient,
	authRepo authorizations.Repository,
	tracker *authorizations.Tracker,
	patients patient.Provider,
	evaluator *rules.Evaluator,
	alertsRepo alerts.Repository,
	logger *logging.Logger,
	opts ...WorkerOption,
) *Worker {
	if logger == nil {
		logger = logging.Default()
	}
	w := &Worker{
		queue:      queue,
		authRepo:   authRepo,
		tracker:    tracker,
		patients:   patients,
		evaluator:  evaluator,
		alertsRepo: alertsRepo,
		logger:     logger.WithComponent("audit-worker"),
		cfg: workerConfig{
			workers:          2,
			receiveBatchSize: 5,
			receiveWaitSecs:  10,
		},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(w)
		}
	}
	return w
}

// Start launches the consumer goroutines.
func (w *Worker) Start(ctx context.Context) {
	for i := 0; i < w.cfg.workers; i++ {
		w.wg.Add(1)
		go w.run(ctx, i+1)
	}
}

// Wait blocks until all worker goroutines exit.
func (w *Worker) Wait() {
	w.wg.Wait()
}

func (w *Worker) run(ctx context.Context, workerID int) {
	defer w.wg.Done()
	w.logger.Debug("audit worker started", "worker_id", workerID)

	backoff := time.Second

	for {
		select {
		case <-ctx.Done():
			w.logger.Debug("audit worker stopping", "worker_id", workerID)
			return
		default:
		}

		messages, err := w.queue.Receive(ctx, w.cfg.receiveBatchSize, w.cfg.receiveWaitSecs)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return
			}
			w.logger.Error("failed to receive appointment completions", "error", err, "worker_id", workerID)
			time.Sleep(backoff)
			if backoff < 5*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second

		for _, msg := range messages {
			w.handleMessage(ctx, msg)
		}
	}
}

func (w *Worker) handleMessage(ctx context.Context, msg queueMessage) {
	var evt events.AppointmentCompletedV1
	if err := json.Unmarshal([]byte(msg.Body), &evt); err != nil {
		w.logger.Error("failed to decode appointment completion", "error", err, "msg_id", msg.ID)
		w.deleteMessage(ctx, msg.ReceiptHandle)
		return
	}
	if evt.OrgID == "" || evt.PatientID == "" {
		w.logger.Error("appointment completion missing org or patient", "msg_id", msg.ID, "appointment_id", evt.AppointmentID)
		w.deleteMessage(ctx, msg.ReceiptHandle)
		return
	}

	w.logger.Info("processing appointment completion",
		"appointment_id", evt.AppointmentID,
		"patient_id", evt.PatientID,
		"org_id", evt.OrgID,
	)

	if err := w.applyAuthorization(ctx, evt); err != nil {
		// Leave the message in the queue for redelivery.
		w.logger.Error("authorization update failed", "error", err, "appointment_id", evt.AppointmentID)
		return
	}

	w.runSafetySweep(ctx, evt)
	w.deleteMessage(ctx, msg.ReceiptHandle)
}

func (w *Worker) applyAuthorization(ctx context.Context, evt events.AppointmentCompletedV1) error {
	auths, err := w.authRepo.ListByPatient(ctx, evt.OrgID, evt.PatientID)
	if err != nil {
		return err
	}

	appt := authorizations.Appointment{
		ID:          evt.AppointmentID,
		OrgID:       evt.OrgID,
		PatientID:   evt.PatientID,
		ServiceCode: evt.ServiceCode,
		ScheduledAt: evt.ScheduledAt,
		UnitCost:    evt.UnitCost,
	}
	updated, ok := w.tracker.ApplyCompletedAppointment(appt, auths)
	if !ok {
		w.logger.Info("no authorization matched appointment",
			"appointment_id", evt.AppointmentID,
			"patient_id", evt.PatientID,
		)
		return nil
	}

	if err := w.authRepo.Update(ctx, updated); err != nil {
		return err
	}

	if w.outbox != nil {
		occurred := time.Now().UTC()
		if _, err := w.outbox.AppendEvent(ctx, evt.OrgID, "authorization:"+updated.ID, evt.EventID, events.AuthorizationUpdatedV1{
			OrgID:           evt.OrgID,
			AuthorizationID: updated.ID,
			PatientID:       updated.PatientID,
			AppointmentID:   evt.AppointmentID,
			UsedUnits:       updated.UsedUnits,
			RemainingUnits:  updated.RemainingUnits(),
			Status:          string(updated.Status),
			OccurredAt:      occurred,
		}); err != nil {
			w.logger.Error("failed to enqueue authorization.updated", "error", err, "authorization_id", updated.ID)
		}
		if updated.Status == authorizations.StatusExpired {
			reason := "window_closed"
			if updated.RemainingUnits() == 0 {
				reason = "units_exhausted"
			}
			if _, err := w.outbox.AppendEvent(ctx, evt.OrgID, "authorization:"+updated.ID, evt.EventID, events.AuthorizationExpiredV1{
				OrgID:           evt.OrgID,
				AuthorizationID: updated.ID,
				PatientID:       updated.PatientID,
				Reason:          reason,
				OccurredAt:      occurred,
			}); err != nil {
				w.logger.Error("failed to enqueue authorization.expired", "error", err, "authorization_id", updated.ID)
			}
		}
	}
	return nil
}

// runSafetySweep evaluates the full rule catalog against the patient who
// just completed an appointment. Sweep failures never block the
// authorization update that already committed.
func (w *Worker) runSafetySweep(ctx context.Context, evt events.AppointmentCompletedV1) {
	if w.evaluator == nil || w.patients == nil || w.alertsRepo == nil {
		return
	}

	record, err := w.patients.GetRecord(ctx, evt.OrgID, evt.PatientID)
	if err != nil {
		if errors.Is(err, patient.ErrPatientNotFound) {
			w.logger.Warn("patient record missing, skipping safety sweep", "patient_id", evt.PatientID)
			return
		}
		w.logger.Error("failed to load patient record", "error", err, "patient_id", evt.PatientID)
		return
	}

	raised := w.evaluator.Evaluate(ctx, record, &rules.Context{
		Trigger: rules.TriggerManualCheck,
		Now:     time.Now().UTC(),
	})

	for _, alert := range raised {
		alert.OrgID = evt.OrgID
		if w.dedup != nil {
			claimed, err := w.dedup.Claim(ctx, evt.OrgID, alert.RuleID, alert.PatientID, alert.Trigger)
			if err != nil {
				w.logger.Error("alert dedup check failed", "error", err, "rule_id", alert.RuleID)
			} else if !claimed {
				w.logger.Debug("suppressing duplicate alert", "rule_id", alert.RuleID, "patient_id", alert.PatientID)
				continue
			}
		}

		if err := w.alertsRepo.Insert(ctx, alert); err != nil {
			w.logger.Error("failed to persist alert", "error", err, "rule_id", alert.RuleID)
			if w.dedup != nil {
				// Free the claim so the next sweep can retry.
				_ = w.dedup.Release(ctx, evt.OrgID, alert.RuleID, alert.PatientID, alert.Trigger)
			}
			continue
		}

		if w.outbox != nil {
			if _, err := w.outbox.AppendEvent(ctx, evt.OrgID, "patient:"+alert.PatientID, evt.EventID, events.AlertRaisedV1{
				OrgID:       evt.OrgID,
				AlertID:     alert.ID,
				RuleID:      alert.RuleID,
				PatientID:   alert.PatientID,
				Severity:    alert.Severity,
				Category:    alert.Category,
				Trigger:     alert.Trigger,
				EncounterID: alert.EncounterID,
				TriggeredAt: alert.TriggeredAt,
			}); err != nil {
				w.logger.Error("failed to enqueue alert.raised", "error", err, "alert_id", alert.ID)
			}
		}

		if w.notifier != nil {
			if err := w.notifier.NotifyAlert(ctx, alert); err != nil {
				w.logger.Error("alert notification failed", "error", err, "alert_id", alert.ID)
			}
		}
	}
}

func (w *Worker) deleteMessage(ctx context.Context, receiptHandle string) {
	if err := w.queue.Delete(ctx, receiptHandle); err != nil {
		w.logger.Error("failed to delete queue message", "error", err)
	}
}
