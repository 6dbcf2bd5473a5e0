package repository_test

import (
	"context"
	"testing"
	"time"

	. "todoapi/pkg/test"

	"todoapi/internal/adapter/database/sqlite/repository"
	"todoapi/internal/core/domain"
	"todoapi/internal/core/port"

	. "github.com/onsi/gomega"
	"github.com/stretchr/testify/suite"
)

type TaskRepositoryTestSuite struct {
	suite.Suite
	TaskRepo port.TaskRepository
}

func (s *TaskRepositoryTestSuite) SetupTest() {
	db := InitTestDB()

	s.TaskRepo = repository.NewTaskRepository(db, nil)
}

func TestTaskRepositoryTestSuite(t *testing.T) {
	RegisterTestingT(t)
	suite.Run(t, new(TaskRepositoryTestSuite))
}

func (s *TaskRepositoryTestSuite) createTask(ownerID, title string, completed bool, createdAt time.Time) domain.Task {
	task := domain.Task{
		Title:     title,
		OwnerID:   ownerID,
		CreatedAt: createdAt,
	}
	task.SetCompleted(completed, createdAt)

	saved, err := s.TaskRepo.Create(context.Background(), task)
	Expect(err).To(BeNil())

	return saved
}

func (s *TaskRepositoryTestSuite) TestRepository_GetAllByOwner_Empty() {
	tasks, err := s.TaskRepo.GetAllByOwner(context.Background(), "user-1")

	Expect(err).To(BeNil())
	Expect(tasks).To(BeEmpty())
}

func (s *TaskRepositoryTestSuite) TestRepository_Create_Success() {
	now := time.Now().UTC()

	task, err := s.TaskRepo.Create(context.Background(), domain.Task{
		Title:       "Buy milk",
		Description: "Two liters",
		OwnerID:     "user-1",
		CreatedAt:   now,
	})

	Expect(err).To(BeNil())
	Expect(task.ID).To(BeNumerically(">", 0))
	Expect(task.Title).To(Equal("Buy milk"))
	Expect(task.OwnerID).To(Equal("user-1"))
	Expect(task.IsCompleted).To(BeFalse())
	Expect(task.CompletedAt).To(BeNil())
}

func (s *TaskRepositoryTestSuite) TestRepository_GetByID_WrongOwner() {
	saved := s.createTask("user-1", "Private task", false, time.Now().UTC())

	_, err := s.TaskRepo.GetByID(context.Background(), saved.ID, "user-2")

	Expect(err).To(MatchError(domain.ErrTaskNotFound))
}

func (s *TaskRepositoryTestSuite) TestRepository_GetAllByOwner_ScopedAndOrdered() {
	base := time.Now().UTC().Add(-time.Hour)

	s.createTask("user-1", "oldest", false, base)
	s.createTask("user-1", "newest", false, base.Add(2*time.Minute))
	s.createTask("user-1", "middle", false, base.Add(time.Minute))
	s.createTask("user-2", "other owner", false, base.Add(3*time.Minute))

	tasks, err := s.TaskRepo.GetAllByOwner(context.Background(), "user-1")

	Expect(err).To(BeNil())
	Expect(len(tasks)).To(Equal(3))
	Expect(tasks[0].Title).To(Equal("newest"))
	Expect(tasks[1].Title).To(Equal("middle"))
	Expect(tasks[2].Title).To(Equal("oldest"))
}

func (s *TaskRepositoryTestSuite) TestRepository_Update_Success() {
	saved := s.createTask("user-1", "Before", false, time.Now().UTC())

	saved.Title = "After"
	saved.SetCompleted(true, time.Now().UTC())

	err := s.TaskRepo.Update(context.Background(), saved)
	Expect(err).To(BeNil())

	reloaded, err := s.TaskRepo.GetByID(context.Background(), saved.ID, "user-1")

	Expect(err).To(BeNil())
	Expect(reloaded.Title).To(Equal("After"))
	Expect(reloaded.IsCompleted).To(BeTrue())
	Expect(reloaded.CompletedAt).ToNot(BeNil())
}

func (s *TaskRepositoryTestSuite) TestRepository_Update_MissingRowConflict() {
	err := s.TaskRepo.Update(context.Background(), domain.Task{
		ID:      9876,
		Title:   "Ghost",
		OwnerID: "user-1",
	})

	Expect(err).To(MatchError(domain.ErrConflict))
}

func (s *TaskRepositoryTestSuite) TestRepository_Update_WrongOwnerConflict() {
	saved := s.createTask("user-1", "Mine", false, time.Now().UTC())

	saved.OwnerID = "user-2"
	saved.Title = "Hijacked"

	err := s.TaskRepo.Update(context.Background(), saved)

	Expect(err).To(MatchError(domain.ErrConflict))

	reloaded, _ := s.TaskRepo.GetByID(context.Background(), saved.ID, "user-1")
	Expect(reloaded.Title).To(Equal("Mine"))
}

func (s *TaskRepositoryTestSuite) TestRepository_Delete_Success() {
	saved := s.createTask("user-1", "Doomed", false, time.Now().UTC())

	deleted, err := s.TaskRepo.Delete(context.Background(), saved.ID, "user-1")

	Expect(err).To(BeNil())
	Expect(deleted).To(BeTrue())

	_, err = s.TaskRepo.GetByID(context.Background(), saved.ID, "user-1")
	Expect(err).To(MatchError(domain.ErrTaskNotFound))
}

func (s *TaskRepositoryTestSuite) TestRepository_Delete_WrongOwnerReportsNothing() {
	saved := s.createTask("user-1", "Safe", false, time.Now().UTC())

	deleted, err := s.TaskRepo.Delete(context.Background(), saved.ID, "user-2")

	Expect(err).To(BeNil())
	Expect(deleted).To(BeFalse())

	_, err = s.TaskRepo.GetByID(context.Background(), saved.ID, "user-1")
	Expect(err).To(BeNil())
}

func (s *TaskRepositoryTestSuite) TestRepository_GetByCompletion_CompletedOrdering() {
	base := time.Now().UTC().Add(-time.Hour)

	s.createTask("user-1", "done first", true, base)
	s.createTask("user-1", "done last", true, base.Add(time.Minute))
	s.createTask("user-1", "still open", false, base.Add(2*time.Minute))

	completed, err := s.TaskRepo.GetByCompletion(context.Background(), "user-1", true)

	Expect(err).To(BeNil())
	Expect(len(completed)).To(Equal(2))
	Expect(completed[0].Title).To(Equal("done last"))
	Expect(completed[1].Title).To(Equal("done first"))

	pending, err := s.TaskRepo.GetByCompletion(context.Background(), "user-1", false)

	Expect(err).To(BeNil())
	Expect(len(pending)).To(Equal(1))
	Expect(pending[0].Title).To(Equal("still open"))
}
