package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/dmitrijs2005/studybridge/internal/client/bridge"
	"github.com/dmitrijs2005/studybridge/internal/client/models"
	"github.com/dmitrijs2005/studybridge/internal/common"
	"github.com/dmitrijs2005/studybridge/internal/logging"
)

// TaskLoader is the collaborator that resolves a task definition by file
// name. The definition format itself is outside this package; only the
// identifier and step guids matter here.
type TaskLoader interface {
	LoadTask(ctx context.Context, fileName string) (*models.TaskModel, error)
}

// SurveyService loads tasks and submits completed results as wire survey
// responses.
type SurveyService interface {
	// LoadTask resolves the task definition and ties it to the schedule
	// guid it was scheduled under. The returned LoadedTask is threaded
	// explicitly into SubmitResult; no shared task cache exists.
	LoadTask(ctx context.Context, fileName, scheduleGUID string) (*models.LoadedTask, error)

	// SubmitResult translates the completed result into the wire shape and
	// posts it, returning the server-assigned identifier.
	SubmitResult(ctx context.Context, task *models.LoadedTask, result *models.TaskResult) (string, error)
}

type surveyService struct {
	client bridge.Client
	loader TaskLoader
	log    logging.Logger
}

func NewSurveyService(client bridge.Client, loader TaskLoader, log logging.Logger) SurveyService {
	return &surveyService{
		client: client,
		loader: loader,
		log:    log.With("component", "survey"),
	}
}

func (s *surveyService) LoadTask(ctx context.Context, fileName, scheduleGUID string) (*models.LoadedTask, error) {
	task, err := s.loader.LoadTask(ctx, fileName)
	if err != nil {
		return nil, fmt.Errorf("loading task %s: %w", fileName, err)
	}
	return &models.LoadedTask{Task: task, ScheduleGUID: scheduleGUID}, nil
}

func (s *surveyService) SubmitResult(ctx context.Context, task *models.LoadedTask, result *models.TaskResult) (string, error) {
	response := Translate(task, result)

	id, err := s.client.SubmitSurveyResponse(ctx, response)
	if err != nil {
		return "", err
	}

	s.log.Info(ctx, "survey submitted", "task", result.Identifier, "identifier", id)
	return id, nil
}

// Translate converts a completed task result into the wire survey-response
// shape. A step with no recorded answers is reported as declined; answer
// values are rendered as strings in a stable order.
func Translate(task *models.LoadedTask, result *models.TaskResult) *models.SurveyResponse {
	steps := make(map[string]models.StepModel, len(task.Task.Elements))
	for _, step := range task.Task.Elements {
		steps[step.Identifier] = step
	}

	answers := make([]models.SurveyAnswer, 0, len(result.Steps))
	for _, step := range result.Steps {
		values := make([]string, 0, len(step.Answers))
		for _, v := range step.Answers {
			values = append(values, fmt.Sprint(v))
		}
		sort.Strings(values)

		answers = append(answers, models.SurveyAnswer{
			QuestionGUID: steps[step.Identifier].GUID,
			Declined:     len(step.Answers) == 0,
			Client:       common.ClientName,
			AnsweredOn:   step.EndDate,
			Answers:      values,
		})
	}

	return &models.SurveyResponse{
		Identifier:  result.Identifier,
		StartedOn:   result.StartDate,
		CompletedOn: result.EndDate,
		SurveyGUID:  task.ScheduleGUID,
		CreatedOn:   result.StartDate.Format(time.RFC3339),
		Status:      models.SurveyResponseFinished,
		Answers:     answers,
	}
}
