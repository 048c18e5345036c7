package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/term"
)

func main() {
	env := &cliEnv{
		in:    os.Stdin,
		out:   os.Stdout,
		err:   os.Stderr,
		isTTY: isTTY,
		width: terminalWidth,
		now:   time.Now,
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := NewRootCommand(env).ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// cliEnv 命令运行环境 / Process streams and terminal queries, replaced in tests
type cliEnv struct {
	in    io.Reader
	out   io.Writer
	err   io.Writer
	isTTY func() bool
	width func() int
	now   func() time.Time
}

// isTTY 判断标准输入输出是否为终端 / Reports whether stdin and stdout are both terminals
func isTTY() bool {
	return term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stdout.Fd()))
}

func terminalWidth() int {
	w, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || w <= 0 {
		return 80
	}
	return w
}
