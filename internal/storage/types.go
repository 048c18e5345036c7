package storage

// TaskRecord 一次任务的记录
// TaskRecord is one submitted task as seen by the console
type TaskRecord struct {
	ID           int64  `json:"id"`
	TaskID       string `json:"task_id"`
	RunID        string `json:"run_id"`
	Instructions string `json:"instructions"`
	Status       string `json:"status"`
	Message      string `json:"message"`
	CreatedAt    string `json:"created_at"`
	UpdatedAt    string `json:"updated_at"`
}

// PromptRecord 一次提示与回复
// PromptRecord is one answered prompt
type PromptRecord struct {
	TaskID    string `json:"task_id"`
	Prompt    string `json:"prompt"`
	Response  string `json:"response"`
	CreatedAt string `json:"created_at"`
}

// StatusRunning is stored for tasks that have not finished yet.
const StatusRunning = "running"
