package storage

// Store 任务历史持久化接口
// Store is the task history persistence interface
type Store interface {
	// 写入 / Journal writes, called from the console event loop
	TaskStarted(taskID, instructions string) error
	TaskFinished(taskID, status, message string) error
	PromptAnswered(taskID, prompt, response string) error

	// 查询 / Queries
	ListTasks(limit int) ([]TaskRecord, error)
	ListPrompts(taskID string) ([]PromptRecord, error)

	// 生命周期 / Lifecycle
	Close() error
}
