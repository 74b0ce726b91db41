package send

import (
	"context"
	"errors"
	"testing"

	"github.com/slack-go/slack"

	"github.com/qj0r9j0vc2/slack-mcp-bridge/internal/domain/entity"
	domainerrors "github.com/qj0r9j0vc2/slack-mcp-bridge/internal/domain/errors"
	"github.com/qj0r9j0vc2/slack-mcp-bridge/internal/domain/repository"
	"github.com/qj0r9j0vc2/slack-mcp-bridge/internal/usecase/compose"
)

// fakeTransport records calls and returns canned results.
type fakeTransport struct {
	postCalls   int
	updateCalls int
	deleteCalls int

	lastChannel  string
	lastThreadTS string
	lastFallback string
	lastBlocks   []slack.Block

	postErr   error
	updateErr error
	deleteErr error
}

func (f *fakeTransport) PostMessage(_ context.Context, channelID, fallback string, blocks []slack.Block, threadTS string) (string, string, error) {
	f.postCalls++
	f.lastChannel = channelID
	f.lastThreadTS = threadTS
	f.lastFallback = fallback
	f.lastBlocks = blocks
	if f.postErr != nil {
		return "", "", f.postErr
	}
	return channelID, "1700000000.000100", nil
}

func (f *fakeTransport) UpdateMessage(_ context.Context, channelID, timestamp, fallback string, blocks []slack.Block) error {
	f.updateCalls++
	f.lastChannel = channelID
	f.lastFallback = fallback
	f.lastBlocks = blocks
	return f.updateErr
}

func (f *fakeTransport) DeleteMessage(_ context.Context, channelID, timestamp string) error {
	f.deleteCalls++
	f.lastChannel = channelID
	return f.deleteErr
}

// fakeRecords is a minimal in-memory MessageRecordRepository for tests.
type fakeRecords struct {
	byID    map[string]*entity.MessageRecord
	saveErr error
}

func newFakeRecords() *fakeRecords {
	return &fakeRecords{byID: make(map[string]*entity.MessageRecord)}
}

func (f *fakeRecords) Save(_ context.Context, record *entity.MessageRecord) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	if _, ok := f.byID[record.ID]; ok {
		return repository.ErrAlreadyExists
	}
	f.byID[record.ID] = record
	return nil
}

func (f *fakeRecords) FindByID(_ context.Context, id string) (*entity.MessageRecord, error) {
	record, ok := f.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return record, nil
}

func (f *fakeRecords) FindByChannelAndTimestamp(_ context.Context, channelID, timestamp string) (*entity.MessageRecord, error) {
	for _, record := range f.byID {
		if record.ChannelID == channelID && record.Timestamp == timestamp {
			return record, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeRecords) Update(_ context.Context, record *entity.MessageRecord) error {
	if _, ok := f.byID[record.ID]; !ok {
		return repository.ErrNotFound
	}
	f.byID[record.ID] = record
	return nil
}

func (f *fakeRecords) ListByChannel(_ context.Context, channelID string, limit int) ([]*entity.MessageRecord, error) {
	var out []*entity.MessageRecord
	for _, record := range f.byID {
		if channelID == "" || record.ChannelID == channelID {
			out = append(out, record)
		}
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeRecords) Delete(_ context.Context, id string) error {
	if _, ok := f.byID[id]; !ok {
		return repository.ErrNotFound
	}
	delete(f.byID, id)
	return nil
}

func testMessage(t *testing.T) *entity.ComposedMessage {
	t.Helper()
	msg, err := compose.NotificationMessage("success", "Deploy", "done", "")
	if err != nil {
		t.Fatalf("composing test message: %v", err)
	}
	return msg
}

func TestSend_recordsDelivery(t *testing.T) {
	transport := &fakeTransport{}
	records := newFakeRecords()
	uc := NewUseCase(transport, records)

	record, err := uc.Send(context.Background(), "C123", "", "notification", testMessage(t))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if transport.postCalls != 1 {
		t.Errorf("expected 1 post call, got %d", transport.postCalls)
	}
	if record.ChannelID != "C123" || record.Timestamp == "" {
		t.Errorf("record = %+v", record)
	}
	if record.Kind != "notification" {
		t.Errorf("kind = %q", record.Kind)
	}

	stored, err := records.FindByChannelAndTimestamp(context.Background(), "C123", record.Timestamp)
	if err != nil {
		t.Fatalf("record not stored: %v", err)
	}
	if stored.Fallback != transport.lastFallback {
		t.Errorf("stored fallback %q, sent fallback %q", stored.Fallback, transport.lastFallback)
	}
}

func TestSend_threadReply(t *testing.T) {
	transport := &fakeTransport{}
	uc := NewUseCase(transport, newFakeRecords())

	record, err := uc.Send(context.Background(), "C123", "1699.0001", "raw", testMessage(t))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if transport.lastThreadTS != "1699.0001" {
		t.Errorf("thread ts not forwarded: %q", transport.lastThreadTS)
	}
	if record.ThreadTimestamp != "1699.0001" {
		t.Errorf("record thread ts = %q", record.ThreadTimestamp)
	}
}

func TestSend_validation(t *testing.T) {
	uc := NewUseCase(&fakeTransport{}, newFakeRecords())

	if _, err := uc.Send(context.Background(), "C123", "", "raw", &entity.ComposedMessage{}); !domainerrors.IsValidation(err) {
		t.Errorf("empty message: expected validation error, got %v", err)
	}
	if _, err := uc.Send(context.Background(), "", "", "raw", testMessage(t)); !domainerrors.IsValidation(err) {
		t.Errorf("empty channel: expected validation error, got %v", err)
	}
}

func TestSend_transportFailure(t *testing.T) {
	transport := &fakeTransport{postErr: domainerrors.NewPermanentError("posting slack message: channel_not_found", errors.New("channel_not_found"))}
	records := newFakeRecords()
	uc := NewUseCase(transport, records)

	record, err := uc.Send(context.Background(), "C123", "", "raw", testMessage(t))
	if err == nil {
		t.Fatal("expected error")
	}
	if record != nil {
		t.Errorf("no record expected on failed delivery, got %+v", record)
	}
	if len(records.byID) != 0 {
		t.Errorf("nothing should be stored on failed delivery")
	}
}

func TestSend_recordFailureStillReturnsRecord(t *testing.T) {
	records := newFakeRecords()
	records.saveErr = errors.New("disk full")
	uc := NewUseCase(&fakeTransport{}, records)

	record, err := uc.Send(context.Background(), "C123", "", "raw", testMessage(t))
	if err == nil {
		t.Fatal("expected error when the record cannot be saved")
	}
	if record == nil {
		t.Fatal("record must be returned so the caller can report the timestamp")
	}
}

func TestUpdate_refreshesRecord(t *testing.T) {
	transport := &fakeTransport{}
	records := newFakeRecords()
	uc := NewUseCase(transport, records)

	record, err := uc.Send(context.Background(), "C123", "", "notification", testMessage(t))
	if err != nil {
		t.Fatalf("send: %v", err)
	}

	updated, err := compose.NotificationMessage("error", "Deploy", "rolled back", "")
	if err != nil {
		t.Fatalf("compose: %v", err)
	}
	if err := uc.Update(context.Background(), record.ChannelID, record.Timestamp, "notification", updated); err != nil {
		t.Fatalf("update: %v", err)
	}

	if transport.updateCalls != 1 {
		t.Errorf("expected 1 update call, got %d", transport.updateCalls)
	}
	stored, err := records.FindByID(context.Background(), record.ID)
	if err != nil {
		t.Fatalf("record lost on update: %v", err)
	}
	if stored.Fallback != updated.Fallback {
		t.Errorf("record fallback not refreshed: %q", stored.Fallback)
	}
}

func TestUpdate_unknownMessageStillUpdates(t *testing.T) {
	transport := &fakeTransport{}
	uc := NewUseCase(transport, newFakeRecords())

	// A message posted outside the bridge has no record; the remote update
	// must still go through.
	err := uc.Update(context.Background(), "C123", "1700.0002", "raw", testMessage(t))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if transport.updateCalls != 1 {
		t.Errorf("expected 1 update call, got %d", transport.updateCalls)
	}
}

func TestDelete_removesRecord(t *testing.T) {
	transport := &fakeTransport{}
	records := newFakeRecords()
	uc := NewUseCase(transport, records)

	record, err := uc.Send(context.Background(), "C123", "", "raw", testMessage(t))
	if err != nil {
		t.Fatalf("send: %v", err)
	}

	if err := uc.Delete(context.Background(), record.ChannelID, record.Timestamp); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if transport.deleteCalls != 1 {
		t.Errorf("expected 1 delete call, got %d", transport.deleteCalls)
	}
	if _, err := records.FindByID(context.Background(), record.ID); !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("record should be gone, got %v", err)
	}
}

func TestListSent(t *testing.T) {
	records := newFakeRecords()
	uc := NewUseCase(&fakeTransport{}, records)

	for i := 0; i < 3; i++ {
		if _, err := uc.Send(context.Background(), "C123", "", "raw", testMessage(t)); err != nil {
			t.Fatalf("send %d: %v", i, err)
		}
	}
	if _, err := uc.Send(context.Background(), "C999", "", "raw", testMessage(t)); err != nil {
		t.Fatalf("send: %v", err)
	}

	listed, err := uc.ListSent(context.Background(), "C123", 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(listed) != 3 {
		t.Errorf("expected 3 records for C123, got %d", len(listed))
	}

	all, err := uc.ListSent(context.Background(), "", 0)
	if err != nil {
		t.Fatalf("list all: %v", err)
	}
	if len(all) != 4 {
		t.Errorf("expected 4 records in total, got %d", len(all))
	}
}
