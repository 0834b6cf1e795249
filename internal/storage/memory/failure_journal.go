package memory

import (
	"context"
	"sync"

	"github.com/victorcov/order-worker/internal/domain"
)

// failureJournalInMemory — in-memory реализация FailureJournal.
type failureJournalInMemory struct {
	mu      sync.Mutex
	records []domain.FailedOrder
}

// NewFailureJournal возвращает in-memory журнал терминальных отказов.
func NewFailureJournal() *failureJournalInMemory {
	return &failureJournalInMemory{}
}

// Record добавляет запись о терминальном отказе.
func (j *failureJournalInMemory) Record(ctx context.Context, failure domain.FailedOrder) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.records = append(j.records, failure)
	return nil
}

// Records возвращает копию накопленных записей.
func (j *failureJournalInMemory) Records() []domain.FailedOrder {
	j.mu.Lock()
	defer j.mu.Unlock()
	return append([]domain.FailedOrder(nil), j.records...)
}

var _ domain.FailureJournal = (*failureJournalInMemory)(nil)
