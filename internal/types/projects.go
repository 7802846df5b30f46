package types

import "time"

// Project is a started project, distinct from the posting that recruited it.
type Project struct {
	ID               int64  `json:"id"`
	Title            string `json:"title"`
	TeamID           int64  `json:"teamId"`
	PostingID        int64  `json:"postingId,omitempty"`
	ProjectStartDate Date   `json:"projectStartDate"`
	ProjectEndDate   Date   `json:"projectEndDate"`
}

// AssignmentStatus is the state of a task.
type AssignmentStatus string

// Assignment states.
const (
	AssignmentTodo       AssignmentStatus = "TODO"
	AssignmentInProgress AssignmentStatus = "IN_PROGRESS"
	AssignmentCompleted  AssignmentStatus = "COMPLETED"
	AssignmentDelayed    AssignmentStatus = "DELAYED"
)

// Assignment is a task given to one team member.
type Assignment struct {
	ID          int64            `json:"id"`
	ProjectID   int64            `json:"projectId"`
	Title       string           `json:"title"`
	Description string           `json:"description"`
	UserID      int64            `json:"userId"`
	Username    string           `json:"username,omitempty"`
	DueAt       time.Time        `json:"dueAt"`
	Status      AssignmentStatus `json:"status"`
	Progress    int              `json:"progress"`
}

// AssignmentUpdate reports progress on a task.
type AssignmentUpdate struct {
	Status   AssignmentStatus `json:"status" validate:"required,oneof=TODO IN_PROGRESS COMPLETED DELAYED"`
	Progress int              `json:"progress" validate:"min=0,max=100"`
}

// PerformanceData holds the counts behind a weekly report.
type PerformanceData struct {
	TotalTasks     int     `json:"totalTasks"`
	CompletedTasks int     `json:"completedTasks"`
	DelayedTasks   int     `json:"delayedTasks"`
	CompletionRate float64 `json:"completionRate"`
}

// WeeklyReport is a generated summary of one project week.
type WeeklyReport struct {
	ID              int64           `json:"id"`
	ProjectID       int64           `json:"projectId"`
	WeekNumber      int             `json:"weekNumber"`
	StartDate       Date            `json:"startDate"`
	EndDate         Date            `json:"endDate"`
	PerformanceData PerformanceData `json:"performanceData"`
	AIAnalysis      string          `json:"aiAnalysis"`
}

// MatchReason explains why a user was matched to a project.
type MatchReason struct {
	UserID    int64   `json:"userId"`
	ProjectID int64   `json:"projectId,omitempty"`
	Score     float64 `json:"score"`
	Reason    string  `json:"reason"`
}
