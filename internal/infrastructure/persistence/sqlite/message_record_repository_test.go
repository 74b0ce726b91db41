package sqlite

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/qj0r9j0vc2/slack-mcp-bridge/internal/domain/entity"
	"github.com/qj0r9j0vc2/slack-mcp-bridge/internal/domain/repository"
)

func newTestRepository(t *testing.T) *MessageRecordRepository {
	t.Helper()

	db, err := NewDB(":memory:")
	if err != nil {
		t.Fatalf("opening database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := db.Migrate(context.Background()); err != nil {
		t.Fatalf("migrating: %v", err)
	}

	return NewMessageRecordRepository(db)
}

func testRecord(channelID, timestamp string) *entity.MessageRecord {
	record := entity.NewMessageRecord(channelID, timestamp, "notification", "✅ Deploy: done")
	return record
}

func TestSaveAndFindByID(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	record := testRecord("C123", "1700000000.000100")
	record.ThreadTimestamp = "1699999999.000001"

	if err := repo.Save(ctx, record); err != nil {
		t.Fatalf("save: %v", err)
	}

	found, err := repo.FindByID(ctx, record.ID)
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if found.ChannelID != record.ChannelID || found.Timestamp != record.Timestamp {
		t.Errorf("found = %+v", found)
	}
	if found.Kind != "notification" || found.Fallback != record.Fallback {
		t.Errorf("payload fields lost: %+v", found)
	}
	if found.ThreadTimestamp != record.ThreadTimestamp {
		t.Errorf("thread ts = %q, want %q", found.ThreadTimestamp, record.ThreadTimestamp)
	}
}

func TestSave_duplicate(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	record := testRecord("C123", "1700000000.000100")
	if err := repo.Save(ctx, record); err != nil {
		t.Fatalf("save: %v", err)
	}

	if err := repo.Save(ctx, record); !errors.Is(err, repository.ErrAlreadyExists) {
		t.Errorf("duplicate id: expected ErrAlreadyExists, got %v", err)
	}

	// Same channel/timestamp under a fresh ID is still a duplicate delivery.
	clone := testRecord("C123", "1700000000.000100")
	if err := repo.Save(ctx, clone); !errors.Is(err, repository.ErrAlreadyExists) {
		t.Errorf("duplicate channel/ts: expected ErrAlreadyExists, got %v", err)
	}
}

func TestFindByChannelAndTimestamp(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	record := testRecord("C123", "1700000000.000100")
	if err := repo.Save(ctx, record); err != nil {
		t.Fatalf("save: %v", err)
	}

	found, err := repo.FindByChannelAndTimestamp(ctx, "C123", "1700000000.000100")
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if found.ID != record.ID {
		t.Errorf("found ID = %q, want %q", found.ID, record.ID)
	}

	if _, err := repo.FindByChannelAndTimestamp(ctx, "C123", "9999.0"); !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestUpdate(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	record := testRecord("C123", "1700000000.000100")
	if err := repo.Save(ctx, record); err != nil {
		t.Fatalf("save: %v", err)
	}

	record.Kind = "announcement"
	record.Fallback = "📢 Release: v2 is out"
	if err := repo.Update(ctx, record); err != nil {
		t.Fatalf("update: %v", err)
	}

	found, err := repo.FindByID(ctx, record.ID)
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if found.Kind != "announcement" || found.Fallback != record.Fallback {
		t.Errorf("update lost: %+v", found)
	}
}

func TestUpdate_notFound(t *testing.T) {
	repo := newTestRepository(t)

	record := testRecord("C123", "1700000000.000100")
	if err := repo.Update(context.Background(), record); !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestListByChannel(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	base := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		record := testRecord("C123", fmt.Sprintf("1700000000.%06d", i))
		record.CreatedAt = base.Add(time.Duration(i) * time.Minute)
		if err := repo.Save(ctx, record); err != nil {
			t.Fatalf("save %d: %v", i, err)
		}
	}
	other := testRecord("C999", "1700000001.000000")
	other.CreatedAt = base
	if err := repo.Save(ctx, other); err != nil {
		t.Fatalf("save: %v", err)
	}

	records, err := repo.ListByChannel(ctx, "C123", 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("expected 3 records, got %d", len(records))
	}
	// Newest first
	for i := 1; i < len(records); i++ {
		if records[i].CreatedAt.After(records[i-1].CreatedAt) {
			t.Errorf("records out of order at %d: %v after %v", i, records[i].CreatedAt, records[i-1].CreatedAt)
		}
	}

	limited, err := repo.ListByChannel(ctx, "C123", 2)
	if err != nil {
		t.Fatalf("list limited: %v", err)
	}
	if len(limited) != 2 {
		t.Errorf("expected 2 records with limit, got %d", len(limited))
	}

	all, err := repo.ListByChannel(ctx, "", 0)
	if err != nil {
		t.Fatalf("list all: %v", err)
	}
	if len(all) != 4 {
		t.Errorf("expected 4 records across channels, got %d", len(all))
	}
}

func TestListByChannel_empty(t *testing.T) {
	repo := newTestRepository(t)

	records, err := repo.ListByChannel(context.Background(), "C123", 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if records == nil || len(records) != 0 {
		t.Errorf("expected empty non-nil slice, got %v", records)
	}
}

func TestDelete(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	record := testRecord("C123", "1700000000.000100")
	if err := repo.Save(ctx, record); err != nil {
		t.Fatalf("save: %v", err)
	}

	if err := repo.Delete(ctx, record.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := repo.FindByID(ctx, record.ID); !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}

	if err := repo.Delete(ctx, record.ID); !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("second delete: expected ErrNotFound, got %v", err)
	}
}

func TestEmptyThreadTimestampStoredAsNull(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	record := testRecord("C123", "1700000000.000100")
	if err := repo.Save(ctx, record); err != nil {
		t.Fatalf("save: %v", err)
	}

	found, err := repo.FindByID(ctx, record.ID)
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if found.ThreadTimestamp != "" {
		t.Errorf("thread ts should round-trip as empty, got %q", found.ThreadTimestamp)
	}
}
