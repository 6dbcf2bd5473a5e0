package domain_test

import (
	"testing"
	"time"

	. "github.com/onsi/gomega"

	"todoapi/internal/core/domain"
)

func TestSetCompletedStampsOnce(t *testing.T) {
	RegisterTestingT(t)

	task := domain.Task{Title: "Buy milk", OwnerID: "u1"}

	first := time.Now()
	task.SetCompleted(true, first)

	Expect(task.IsCompleted).To(BeTrue())
	Expect(task.CompletedAt).ToNot(BeNil())
	Expect(*task.CompletedAt).To(Equal(first))

	// Re-marking a completed task must not move the timestamp.
	later := first.Add(time.Hour)
	task.SetCompleted(true, later)

	Expect(*task.CompletedAt).To(Equal(first))
}

func TestSetCompletedClearsTimestamp(t *testing.T) {
	RegisterTestingT(t)

	now := time.Now()
	task := domain.Task{Title: "Buy milk", OwnerID: "u1"}
	task.SetCompleted(true, now)
	task.SetCompleted(false, now.Add(time.Minute))

	Expect(task.IsCompleted).To(BeFalse())
	Expect(task.CompletedAt).To(BeNil())
}

func TestBelongsTo(t *testing.T) {
	RegisterTestingT(t)

	task := domain.Task{Title: "Buy milk", OwnerID: "u1"}

	Expect(task.BelongsTo("u1")).To(BeTrue())
	Expect(task.BelongsTo("u2")).To(BeFalse())
}
