package notify

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/taskpulse/backend/domain"
	"github.com/taskpulse/backend/usecase"
)

type fakeNotifier struct {
	name string
	fail bool
	sent []domain.ReminderPayload
}

func (n *fakeNotifier) Name() string { return n.name }

func (n *fakeNotifier) Send(_ context.Context, payload domain.ReminderPayload, _ string) domain.ChannelResult {
	n.sent = append(n.sent, payload)
	if n.fail {
		return domain.ChannelResult{Status: domain.ChannelError, Timestamp: time.Now(), Error: "boom"}
	}
	return domain.ChannelResult{Status: domain.ChannelSent, Timestamp: time.Now()}
}

type fakeRecords struct {
	created []*domain.NotificationRecord
	err     error
}

func (r *fakeRecords) Create(_ context.Context, record *domain.NotificationRecord) (*domain.NotificationRecord, error) {
	if r.err != nil {
		return nil, r.err
	}
	r.created = append(r.created, record)
	return record, nil
}

func (r *fakeRecords) GetByID(_ context.Context, id string) (*domain.NotificationRecord, error) {
	for _, rec := range r.created {
		if rec.ID == id {
			return rec, nil
		}
	}
	return nil, domain.ErrNotificationNotFound
}

func (r *fakeRecords) ListByUser(_ context.Context, userID string, _, _ int) ([]domain.NotificationRecord, error) {
	var out []domain.NotificationRecord
	for _, rec := range r.created {
		if rec.UserID == userID {
			out = append(out, *rec)
		}
	}
	return out, nil
}

type nopPublisher struct {
	topics []string
	err    error
}

func (p *nopPublisher) Publish(_ context.Context, topic string, _ *domain.TaskEvent) error {
	if p.err != nil {
		return p.err
	}
	p.topics = append(p.topics, topic)
	return nil
}

func payload() domain.ReminderPayload {
	return domain.ReminderPayload{
		TaskID:       "task-1",
		UserID:       "user-1",
		TaskTitle:    "Water plants",
		ReminderTime: time.Now(),
	}
}

func TestDispatch_AllChannelsSucceed(t *testing.T) {
	console := &fakeNotifier{name: "console"}
	email := &fakeNotifier{name: "email"}
	records := &fakeRecords{}
	uc := New([]usecase.Notifier{console, email}, records, &nopPublisher{}, nil)

	results := uc.Dispatch(context.Background(), payload())

	if len(results) != 2 {
		t.Fatalf("expected 2 channel results, got %d", len(results))
	}
	for name, result := range results {
		if result.Status != domain.ChannelSent {
			t.Errorf("channel %s: status = %q, want sent", name, result.Status)
		}
	}
	if len(records.created) != 1 {
		t.Fatalf("expected 1 audit record, got %d", len(records.created))
	}
}

func TestDispatch_OneChannelFailsOthersStillDeliver(t *testing.T) {
	console := &fakeNotifier{name: "console"}
	email := &fakeNotifier{name: "email", fail: true}
	push := &fakeNotifier{name: "push"}
	records := &fakeRecords{}
	uc := New([]usecase.Notifier{console, email, push}, records, &nopPublisher{}, nil)

	results := uc.Dispatch(context.Background(), payload())

	if results["email"].Status != domain.ChannelError {
		t.Error("failing channel not marked as error")
	}
	if results["email"].Error == "" {
		t.Error("failing channel result carries no error message")
	}
	if results["console"].Status != domain.ChannelSent || results["push"].Status != domain.ChannelSent {
		t.Error("healthy channels affected by the failing one")
	}
	if len(console.sent) != 1 || len(push.sent) != 1 {
		t.Error("healthy channels were not attempted")
	}

	if len(records.created) != 1 {
		t.Fatalf("expected exactly 1 audit record, got %d", len(records.created))
	}
	record := records.created[0]
	if record.Results["email"].Status != domain.ChannelError {
		t.Error("audit record does not capture the channel failure")
	}
	if record.TaskTitle != "Water plants" {
		t.Errorf("audit record title = %q", record.TaskTitle)
	}
}

func TestDispatch_AllChannelsFailStillAudited(t *testing.T) {
	records := &fakeRecords{}
	uc := New([]usecase.Notifier{
		&fakeNotifier{name: "console", fail: true},
		&fakeNotifier{name: "email", fail: true},
	}, records, &nopPublisher{}, nil)

	uc.Dispatch(context.Background(), payload())

	if len(records.created) != 1 {
		t.Fatalf("expected an audit record even with every channel down, got %d", len(records.created))
	}
}

func TestDispatch_AuditWriteFailureDoesNotPanic(t *testing.T) {
	records := &fakeRecords{err: errors.New("db gone")}
	uc := New([]usecase.Notifier{&fakeNotifier{name: "console"}}, records, &nopPublisher{}, nil)

	results := uc.Dispatch(context.Background(), payload())
	if results["console"].Status != domain.ChannelSent {
		t.Error("delivery result lost when audit write fails")
	}
}

func TestDispatch_PublishesProcessedEvent(t *testing.T) {
	publisher := &nopPublisher{}
	uc := New([]usecase.Notifier{&fakeNotifier{name: "console"}}, &fakeRecords{}, publisher, nil)

	uc.Dispatch(context.Background(), payload())

	if len(publisher.topics) != 1 || publisher.topics[0] != domain.TopicRemindersProcessed {
		t.Errorf("processed event topics = %v, want [%s]", publisher.topics, domain.TopicRemindersProcessed)
	}
}
