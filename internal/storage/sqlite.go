package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// DefaultListLimit 默认返回的任务条数 / Default number of tasks ListTasks returns
const DefaultListLimit = 20

// SQLiteStore 基于 SQLite (WAL 模式) 的任务历史
// SQLiteStore keeps the task history in SQLite with WAL mode
type SQLiteStore struct {
	db    *sql.DB
	path  string
	runID string
	now   func() time.Time
}

var _ Store = (*SQLiteStore)(nil)

// NewSQLiteStore 创建并初始化 SQLite 数据库
// NewSQLiteStore creates and initializes a SQLite database
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	dbPath = strings.TrimSpace(dbPath)
	if dbPath == "" {
		return nil, fmt.Errorf("sqlite db path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// 启用 WAL 模式和优化 PRAGMA / Enable WAL and performance PRAGMAs
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("exec %q: %w", p, err)
		}
	}

	store := &SQLiteStore{db: db, path: dbPath, runID: NewRunID(), now: time.Now}
	if err := store.ensureSchema(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	return store, nil
}

func (s *SQLiteStore) ensureSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS tasks (
		id           INTEGER PRIMARY KEY AUTOINCREMENT,
		task_id      TEXT NOT NULL,
		run_id       TEXT NOT NULL DEFAULT '',
		instructions TEXT NOT NULL DEFAULT '',
		status       TEXT NOT NULL DEFAULT 'running',
		message      TEXT NOT NULL DEFAULT '',
		created_at   TEXT NOT NULL,
		updated_at   TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS prompts (
		id         INTEGER PRIMARY KEY AUTOINCREMENT,
		task_id    TEXT NOT NULL,
		prompt     TEXT NOT NULL DEFAULT '',
		response   TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_tasks_task_id ON tasks(task_id);
	CREATE INDEX IF NOT EXISTS idx_prompts_task_id ON prompts(task_id);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Path 返回数据库文件路径 / Path returns the database file path
func (s *SQLiteStore) Path() string { return s.path }

// RunID 返回本次运行的 ID / RunID returns the id stamped on tasks from this process
func (s *SQLiteStore) RunID() string { return s.runID }

// Close 关闭数据库连接 / Close the database connection
func (s *SQLiteStore) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// --- Journal ---

func (s *SQLiteStore) TaskStarted(taskID, instructions string) error {
	taskID = strings.TrimSpace(taskID)
	if taskID == "" {
		return fmt.Errorf("task id is empty")
	}
	now := s.stamp()
	_, err := s.db.Exec(`
		INSERT INTO tasks (task_id, run_id, instructions, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		taskID, s.runID, instructions, StatusRunning, now, now)
	if err != nil {
		return fmt.Errorf("insert task: %w", err)
	}
	return nil
}

// TaskFinished 更新该任务最近一条记录 / Updates the newest row for taskID
func (s *SQLiteStore) TaskFinished(taskID, status, message string) error {
	res, err := s.db.Exec(`
		UPDATE tasks SET status=?, message=?, updated_at=?
		WHERE id = (SELECT MAX(id) FROM tasks WHERE task_id=?)`,
		status, message, s.stamp(), taskID)
	if err != nil {
		return fmt.Errorf("update task: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("task not found: %s", taskID)
	}
	return nil
}

func (s *SQLiteStore) PromptAnswered(taskID, prompt, response string) error {
	_, err := s.db.Exec(`
		INSERT INTO prompts (task_id, prompt, response, created_at)
		VALUES (?, ?, ?, ?)`,
		taskID, prompt, response, s.stamp())
	if err != nil {
		return fmt.Errorf("insert prompt: %w", err)
	}
	return nil
}

// --- Queries ---

// ListTasks 按时间倒序列出任务 / Lists tasks newest first
func (s *SQLiteStore) ListTasks(limit int) ([]TaskRecord, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	rows, err := s.db.Query(`
		SELECT id, task_id, run_id, instructions, status, message, created_at, updated_at
		FROM tasks ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	var records []TaskRecord
	for rows.Next() {
		var r TaskRecord
		if err := rows.Scan(&r.ID, &r.TaskID, &r.RunID, &r.Instructions,
			&r.Status, &r.Message, &r.CreatedAt, &r.UpdatedAt); err != nil {
			continue
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

// ListPrompts 按顺序列出任务的提示 / Lists a task's prompts in answer order
func (s *SQLiteStore) ListPrompts(taskID string) ([]PromptRecord, error) {
	taskID = strings.TrimSpace(taskID)
	if taskID == "" {
		return nil, fmt.Errorf("task id is empty")
	}
	rows, err := s.db.Query(`
		SELECT task_id, prompt, response, created_at
		FROM prompts WHERE task_id=? ORDER BY id`, taskID)
	if err != nil {
		return nil, fmt.Errorf("query prompts: %w", err)
	}
	defer rows.Close()

	var records []PromptRecord
	for rows.Next() {
		var r PromptRecord
		if err := rows.Scan(&r.TaskID, &r.Prompt, &r.Response, &r.CreatedAt); err != nil {
			continue
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

// --- Helpers ---

func (s *SQLiteStore) stamp() string {
	return s.now().UTC().Format(time.RFC3339)
}
