package tasks

import (
	"testing"
	"time"

	"reservo/models"

	"github.com/hibiken/asynq"
)

func TestNoShowTaskRoundTrip(t *testing.T) {
	fireAt := time.Date(2030, 1, 7, 11, 15, 0, 0, time.UTC)
	task, opts, err := NewNoShowTask(models.NoShowPayload{TenantID: "acme", BookingID: "b1"}, fireAt)
	if err != nil {
		t.Fatal(err)
	}
	if task.Type() != TypeNoShowCheck {
		t.Fatalf("unexpected type %q", task.Type())
	}
	if len(opts) != 3 {
		t.Fatalf("expected 3 options, got %d", len(opts))
	}
	p, err := ParseNoShowPayload(task)
	if err != nil {
		t.Fatal(err)
	}
	if p.TenantID != "acme" || p.BookingID != "b1" {
		t.Fatalf("unexpected payload %+v", p)
	}
}

func TestParseNoShowPayloadRejectsIncomplete(t *testing.T) {
	if _, err := ParseNoShowPayload(asynq.NewTask(TypeNoShowCheck, []byte(`{"tenantId":"acme"}`))); err == nil {
		t.Fatal("expected an error for a payload without booking id")
	}
	if _, err := ParseNoShowPayload(asynq.NewTask(TypeNoShowCheck, []byte(`not json`))); err == nil {
		t.Fatal("expected an error for malformed payload")
	}
}
