package exchange

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"codeberg.org/snonux/wordflash/internal/store"
)

// UploadResult is the outcome of a simulated upload
type UploadResult = store.UploadRecord

// SimulateUpload builds a full snapshot, measures it and records the
// outcome in the upload history. Nothing is sent anywhere. Failures are
// reported in the result; the error is only set when ctx is done.
func (m *Manager) SimulateUpload(ctx context.Context) (UploadResult, error) {
	size, err := m.prepareUpload(ctx)
	if err == nil {
		err = sleep(ctx, m.uploadDelay)
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return UploadResult{}, ctxErr
	}

	now := m.now()
	result := UploadResult{Timestamp: now.UnixMilli()}
	if err != nil {
		result.Error = err.Error()
		m.log.Error(ctx, "simulated upload failed", "error", err)
	} else {
		result.Success = true
		result.DataSize = size
		result.UploadID = fmt.Sprintf("upload_%d_%s", now.UnixMilli(), uuid.New().String()[:8])
		m.log.Info(ctx, "simulated upload finished", "upload_id", result.UploadID, "bytes", size)
	}

	if err := m.personal.RecordUpload(ctx, result); err != nil {
		m.log.Warn(ctx, "failed to record upload history", "error", err)
	}
	return result, nil
}

func (m *Manager) prepareUpload(ctx context.Context) (int, error) {
	if m.words.UserID() == "" {
		return 0, errors.New("missing user id")
	}
	snap, err := m.Snapshot(ctx, DefaultOptions())
	if err != nil {
		return 0, err
	}
	data, err := json.Marshal(snap)
	if err != nil {
		return 0, fmt.Errorf("failed to encode snapshot: %w", err)
	}
	return len(data), nil
}

// UploadHistory returns recorded uploads, newest first
func (m *Manager) UploadHistory(ctx context.Context) ([]UploadResult, error) {
	history, err := m.personal.ListUploads(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read upload history: %w", err)
	}
	return history, nil
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
