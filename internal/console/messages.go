package console

import (
	"time"

	"taskconsole/internal/backend"
	"taskconsole/internal/preview"
)

// Msg is a result delivered back to the event loop. Frontends pass every Msg
// they receive to Console.Handle.
type Msg interface {
	consoleMsg()
}

// Cmd runs off the event loop and returns the Msg to feed back into it.
type Cmd func() Msg

// ticket identifies the session a command was issued for. Anything carrying
// a ticket whose epoch no longer matches is stale and dropped.
type ticket struct {
	taskID string
	epoch  uint64
}

type createdMsg struct {
	ticket
	result backend.CreateResult
	err    error
}

type tickMsg struct {
	ticket
	at time.Time
}

type snapshotMsg struct {
	ticket
	snap  backend.Snapshot
	frame *preview.Frame
	err   error
}

type respondedMsg struct {
	ticket
	prompt   string
	response string
	ack      backend.Ack
	err      error
}

func (createdMsg) consoleMsg()   {}
func (tickMsg) consoleMsg()      {}
func (snapshotMsg) consoleMsg()  {}
func (respondedMsg) consoleMsg() {}
