package events

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	pgxmock "github.com/pashagolub/pgxmock/v4"
)

func TestOutboxStoreFlow(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create pgx mock: %v", err)
	}
	defer mock.Close()

	store := NewOutboxStore(mock)

	mock.ExpectExec("INSERT INTO outbox").WithArgs(pgxmock.AnyArg(), "org-1", "alert.raised.v1", pgxmock.AnyArg()).WillReturnResult(pgxmock.NewResult("INSERT", 1))
	env, err := store.AppendEvent(context.Background(), "org-1", "alert:a1", "enc-1", AlertRaisedV1{AlertID: "a1", OrgID: "org-1"})
	if err != nil {
		t.Fatalf("append event failed: %v", err)
	}
	if env.EventID == uuid.Nil || env.Aggregate != "alert:a1" || env.CorrelationID != "enc-1" {
		t.Fatalf("unexpected envelope: %#v", env)
	}

	now := time.Now().UTC()
	id := uuid.New()
	rows := pgxmock.NewRows([]string{"id", "org_id", "type", "payload", "created_at"}).AddRow(id, "org-1", "alert.raised.v1", []byte(`{"alert_id":"a1"}`), now)
	mock.ExpectQuery("SELECT id").WithArgs(int32(10)).WillReturnRows(rows)

	entries, err := store.FetchPending(context.Background(), 10)
	if err != nil {
		t.Fatalf("fetch pending failed: %v", err)
	}
	if len(entries) != 1 || entries[0].ID != id {
		t.Fatalf("unexpected entries: %#v", entries)
	}

	mock.ExpectExec("UPDATE outbox").WithArgs(id).WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	ok, err := store.MarkDelivered(context.Background(), id)
	if err != nil {
		t.Fatalf("mark delivered failed: %v", err)
	}
	if !ok {
		t.Fatal("expected mark delivered to report success")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

type recordingHandler struct {
	mu      sync.Mutex
	entries []OutboxEntry
	fail    bool
}

func (h *recordingHandler) Handle(_ context.Context, entry OutboxEntry) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.fail {
		return errors.New("downstream unavailable")
	}
	h.entries = append(h.entries, entry)
	return nil
}

func TestDelivererDrain(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create pgx mock: %v", err)
	}
	defer mock.Close()

	id := uuid.New()
	now := time.Now().UTC()
	rows := pgxmock.NewRows([]string{"id", "org_id", "type", "payload", "created_at"}).AddRow(id, "org-1", "alert.raised.v1", []byte(`{}`), now)
	mock.ExpectQuery("SELECT id").WithArgs(int32(25)).WillReturnRows(rows)
	mock.ExpectExec("UPDATE outbox").WithArgs(id).WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	handler := &recordingHandler{}
	d := NewDeliverer(NewOutboxStore(mock), handler, nil)
	d.drain(context.Background())

	if len(handler.entries) != 1 || handler.entries[0].ID != id {
		t.Fatalf("expected one delivered entry, got %#v", handler.entries)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestDelivererLeavesFailedEntriesPending(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create pgx mock: %v", err)
	}
	defer mock.Close()

	id := uuid.New()
	now := time.Now().UTC()
	rows := pgxmock.NewRows([]string{"id", "org_id", "type", "payload", "created_at"}).AddRow(id, "org-1", "alert.raised.v1", []byte(`{}`), now)
	mock.ExpectQuery("SELECT id").WithArgs(int32(25)).WillReturnRows(rows)
	// No UPDATE expected: failed deliveries stay pending for the next poll.

	handler := &recordingHandler{fail: true}
	d := NewDeliverer(NewOutboxStore(mock), handler, nil)
	d.drain(context.Background())

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
