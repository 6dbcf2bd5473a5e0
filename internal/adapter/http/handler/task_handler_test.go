package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	. "github.com/onsi/gomega"
	"github.com/stretchr/testify/suite"

	. "todoapi/pkg/test"

	"todoapi/internal/adapter/database/sqlite/repository"
	"todoapi/internal/adapter/http/middleware"
	"todoapi/internal/core/domain"
	"todoapi/internal/core/model/response"
	"todoapi/internal/core/port"
	"todoapi/internal/core/service"
	"todoapi/pkg/auth"

	factory "todoapi/pkg/test/factory"
)

type TaskHandlerSuite struct {
	suite.Suite
	TaskRepo port.TaskRepository
	Router   *gin.Engine
}

var ctx = context.Background()

func (s *TaskHandlerSuite) SetupSuite() {
	os.Setenv("JWT_SECRET", "handler-test-secret")
}

func (s *TaskHandlerSuite) SetupTest() {
	db := InitTestDB()

	s.TaskRepo = repository.NewTaskRepository(db, nil)

	taskUseCase := service.NewTaskService(s.TaskRepo, nil)
	taskHandler := NewTaskHandler(taskUseCase, nil)

	// Router assembled inline to avoid an import cycle with the routes package.
	s.Router = setupTaskTestRouter(taskHandler)
}

func TestTaskHandlerSuite(t *testing.T) {
	RegisterTestingT(t)
	suite.Run(t, new(TaskHandlerSuite))
}

func setupTaskTestRouter(taskHandler *TaskHandler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()

	router.Use(gin.Recovery())

	protected := router.Group("/")
	protected.Use(middleware.GinJwtMiddleware())
	{
		protected.GET("/todos", taskHandler.GetAllTasks)
		protected.POST("/todos", taskHandler.CreateTask)
		protected.GET("/todos/completed", taskHandler.GetCompletedTasks)
		protected.GET("/todos/pending", taskHandler.GetPendingTasks)
		protected.GET("/todos/:id", taskHandler.GetTask)
		protected.PUT("/todos/:id", taskHandler.UpdateTask)
		protected.DELETE("/todos/:id", taskHandler.DeleteTask)
	}

	return router
}

func (s *TaskHandlerSuite) request(method, path, token string, body io.Reader) *httptest.ResponseRecorder {
	req, _ := http.NewRequest(method, path, body)

	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rr := httptest.NewRecorder()
	s.Router.ServeHTTP(rr, req)

	return rr
}

func tokenFor(subject string) string {
	token, _ := auth.CreateJwtTokenForSubject(subject)
	return token
}

func (s *TaskHandlerSuite) seedTask(ownerID, title string) domain.Task {
	task := factory.NewTask[domain.Task](map[string]any{
		"ID":      0,
		"Title":   title,
		"OwnerID": ownerID,
	})
	task.IsCompleted = false
	task.CompletedAt = nil

	saved, err := s.TaskRepo.Create(ctx, task)
	Expect(err).To(BeNil())

	return saved
}

func (s *TaskHandlerSuite) TestGetAllTasksWithData() {
	token := tokenFor("user-1")
	s.seedTask("user-1", "Only mine")

	rr := s.request("GET", "/todos", token, nil)

	Expect(rr.Code).To(Equal(http.StatusOK))
	Expect(rr.Header().Get("Content-Type")).To(ContainSubstring("application/json"))

	var tasks []domain.Task
	json.Unmarshal(rr.Body.Bytes(), &tasks)

	Expect(len(tasks)).To(Equal(1))
	Expect(tasks[0].Title).To(Equal("Only mine"))
	Expect(tasks[0].OwnerID).To(Equal("user-1"))
}

func (s *TaskHandlerSuite) TestGetAllTasksWithoutToken() {
	rr := s.request("GET", "/todos", "", nil)

	Expect(rr.Code).To(Equal(http.StatusUnauthorized))
}

func (s *TaskHandlerSuite) TestCreateTask() {
	token := tokenFor("user-1")
	reqBody := strings.NewReader(`{"title": "Buy milk", "description": "Two liters"}`)

	rr := s.request("POST", "/todos", token, reqBody)

	Expect(rr.Code).To(Equal(http.StatusCreated))
	Expect(rr.Header().Get("Content-Type")).To(ContainSubstring("application/json"))

	var task domain.Task
	json.Unmarshal(rr.Body.Bytes(), &task)

	Expect(task.ID).To(BeNumerically(">", 0))
	Expect(task.Title).To(Equal("Buy milk"))
	Expect(task.OwnerID).To(Equal("user-1"))
	Expect(task.CreatedAt).ToNot(BeZero())
	Expect(rr.Header().Get("Location")).To(Equal(fmt.Sprintf("/todos/%d", task.ID)))
}

func (s *TaskHandlerSuite) TestCreateTaskValidationError() {
	token := tokenFor("user-1")
	reqBody := strings.NewReader(`{"title": "", "description": "no title"}`)

	rr := s.request("POST", "/todos", token, reqBody)

	Expect(rr.Code).To(Equal(http.StatusBadRequest))

	errorResponse := response.ErrorResponse{}
	json.Unmarshal(rr.Body.Bytes(), &errorResponse)

	Expect(errorResponse.Error.Code).To(Equal("VALIDATION_ERROR"))
	Expect(len(errorResponse.Error.Errors)).To(BeNumerically(">", 0))
}

func (s *TaskHandlerSuite) TestUpdateTaskToCompleted() {
	token := tokenFor("user-1")
	task := s.seedTask("user-1", "Finish me")

	reqBody := strings.NewReader(fmt.Sprintf(`{"id": %d, "title": "Finish me", "isCompleted": true}`, task.ID))

	rr := s.request("PUT", fmt.Sprintf("/todos/%d", task.ID), token, reqBody)

	Expect(rr.Code).To(Equal(http.StatusNoContent))
	Expect(rr.Body.Len()).To(Equal(0))

	getRR := s.request("GET", fmt.Sprintf("/todos/%d", task.ID), token, nil)

	Expect(getRR.Code).To(Equal(http.StatusOK))

	var fetched domain.Task
	json.Unmarshal(getRR.Body.Bytes(), &fetched)

	Expect(fetched.IsCompleted).To(BeTrue())
	Expect(fetched.CompletedAt).ToNot(BeNil())
}

func (s *TaskHandlerSuite) TestUpdateTaskIdMismatch() {
	token := tokenFor("user-1")
	task := s.seedTask("user-1", "Stable")

	reqBody := strings.NewReader(fmt.Sprintf(`{"id": %d, "title": "Stable", "isCompleted": true}`, task.ID+1))

	rr := s.request("PUT", fmt.Sprintf("/todos/%d", task.ID), token, reqBody)

	Expect(rr.Code).To(Equal(http.StatusBadRequest))

	errorResponse := response.ErrorResponse{}
	json.Unmarshal(rr.Body.Bytes(), &errorResponse)

	Expect(errorResponse.Error.Code).To(Equal("BAD_REQUEST"))
}

func (s *TaskHandlerSuite) TestUpdateTaskWithoutBodyId() {
	token := tokenFor("user-1")
	task := s.seedTask("user-1", "Stable")

	reqBody := strings.NewReader(`{"title": "Stable", "isCompleted": true}`)

	rr := s.request("PUT", fmt.Sprintf("/todos/%d", task.ID), token, reqBody)

	Expect(rr.Code).To(Equal(http.StatusBadRequest))

	getRR := s.request("GET", fmt.Sprintf("/todos/%d", task.ID), token, nil)

	var fetched domain.Task
	json.Unmarshal(getRR.Body.Bytes(), &fetched)

	Expect(fetched.IsCompleted).To(BeFalse())
}

func (s *TaskHandlerSuite) TestGetTaskFromAnotherOwner() {
	task := s.seedTask("user-1", "Private")

	rr := s.request("GET", fmt.Sprintf("/todos/%d", task.ID), tokenFor("user-2"), nil)

	Expect(rr.Code).To(Equal(http.StatusNotFound))
}

func (s *TaskHandlerSuite) TestUpdateTaskFromAnotherOwner() {
	task := s.seedTask("user-1", "Private")

	reqBody := strings.NewReader(fmt.Sprintf(`{"id": %d, "title": "Hijack", "isCompleted": true}`, task.ID))

	rr := s.request("PUT", fmt.Sprintf("/todos/%d", task.ID), tokenFor("user-2"), reqBody)

	Expect(rr.Code).To(Equal(http.StatusNotFound))
}

func (s *TaskHandlerSuite) TestDeleteTask() {
	token := tokenFor("user-1")
	task := s.seedTask("user-1", "Doomed")

	rr := s.request("DELETE", fmt.Sprintf("/todos/%d", task.ID), token, nil)

	Expect(rr.Code).To(Equal(http.StatusNoContent))

	getRR := s.request("GET", fmt.Sprintf("/todos/%d", task.ID), token, nil)
	Expect(getRR.Code).To(Equal(http.StatusNotFound))
}

func (s *TaskHandlerSuite) TestDeleteMissingTask() {
	rr := s.request("DELETE", "/todos/99999", tokenFor("user-1"), nil)

	Expect(rr.Code).To(Equal(http.StatusNotFound))
}

func (s *TaskHandlerSuite) TestCompletedAndPendingViews() {
	token := tokenFor("user-1")

	reqBody := strings.NewReader(`{"title": "Already done", "isCompleted": true}`)
	Expect(s.request("POST", "/todos", token, reqBody).Code).To(Equal(http.StatusCreated))

	reqBody = strings.NewReader(`{"title": "Still open"}`)
	Expect(s.request("POST", "/todos", token, reqBody).Code).To(Equal(http.StatusCreated))

	completedRR := s.request("GET", "/todos/completed", token, nil)
	Expect(completedRR.Code).To(Equal(http.StatusOK))

	var completed []domain.Task
	json.Unmarshal(completedRR.Body.Bytes(), &completed)

	Expect(len(completed)).To(Equal(1))
	Expect(completed[0].Title).To(Equal("Already done"))

	pendingRR := s.request("GET", "/todos/pending", token, nil)
	Expect(pendingRR.Code).To(Equal(http.StatusOK))

	var pending []domain.Task
	json.Unmarshal(pendingRR.Body.Bytes(), &pending)

	Expect(len(pending)).To(Equal(1))
	Expect(pending[0].Title).To(Equal("Still open"))
}

func (s *TaskHandlerSuite) TestTokenWithoutIdentityClaims() {
	rr := s.request("GET", "/todos", "not-a-real-token", nil)

	Expect(rr.Code).To(Equal(http.StatusUnauthorized))
}
