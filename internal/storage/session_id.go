package storage

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// NewRunID 生成控制台运行 ID / Generates an id for one console run
func NewRunID() string {
	short := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return fmt.Sprintf("run_%d_%s", time.Now().UTC().Unix(), short)
}
