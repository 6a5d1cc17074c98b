package models

import "time"

// TaskModel is the loaded definition of a survey task: the survey identifier
// plus the question steps with their server-side guids. Loading the JSON
// definition itself is a collaborator concern; only the fields needed for
// result translation appear here.
type TaskModel struct {
	Identifier string      `json:"identifier"`
	Elements   []StepModel `json:"elements"`
}

// StepModel is one question of a task definition.
type StepModel struct {
	Identifier string `json:"identifier"`
	GUID       string `json:"guid"`
}

// LoadedTask ties a task definition to the schedule guid it was loaded
// under. It is returned by LoadTask and threaded explicitly into result
// submission, so no shared task cache is needed.
type LoadedTask struct {
	Task         *TaskModel
	ScheduleGUID string
}

// StepResult is the participant's answers for a single step. An empty
// Answers map means the question was declined.
type StepResult struct {
	Identifier string
	Answers    map[string]any
	EndDate    time.Time
}

// TaskResult is a completed run of a task.
type TaskResult struct {
	Identifier string
	StartDate  time.Time
	EndDate    time.Time
	Steps      []StepResult
}

// SurveyAnswer is the wire shape of one answered question.
type SurveyAnswer struct {
	QuestionGUID string    `json:"questionGuid"`
	Declined     bool      `json:"declined"`
	Client       string    `json:"client"`
	AnsweredOn   time.Time `json:"answeredOn"`
	Answers      []string  `json:"answers"`
}

// SurveyResponseStatus marks a submitted response as in-progress or done.
type SurveyResponseStatus string

const (
	SurveyResponseInProgress SurveyResponseStatus = "in_progress"
	SurveyResponseFinished   SurveyResponseStatus = "finished"
)

// SurveyResponse is the wire shape of a completed task submission.
type SurveyResponse struct {
	Identifier  string               `json:"identifier"`
	StartedOn   time.Time            `json:"startedOn"`
	CompletedOn time.Time            `json:"completedOn"`
	SurveyGUID  string               `json:"surveyGuid"`
	CreatedOn   string               `json:"surveyCreatedOn"`
	Status      SurveyResponseStatus `json:"status"`
	Answers     []SurveyAnswer       `json:"answers"`
}

// IdentifierHolder is the response body of the survey submission endpoint.
type IdentifierHolder struct {
	Identifier string `json:"identifier"`
}
