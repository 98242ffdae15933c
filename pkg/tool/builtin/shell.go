package builtin

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"runtime"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/rs/zerolog/log"

	"github.com/taigo/tai/pkg/tool"
)

const defaultShellTimeout = 120 * time.Second

// ErrTimeout reports a child process killed for exceeding its deadline.
var ErrTimeout = errors.New("command timed out")

// Decision is the operator's answer to the confirmation prompt.
type Decision int

const (
	DecisionExecute Decision = iota
	DecisionSkip
	DecisionCopy
)

// Confirmer asks the operator what to do with a proposed command before any
// process is spawned.
type Confirmer interface {
	Confirm(command string) (Decision, error)
}

// TerminalConfirmer prompts on the terminal and reads one line:
// y or empty executes, n skips, c copies the command instead.
type TerminalConfirmer struct {
	In  io.Reader
	Out io.Writer
}

// NewTerminalConfirmer wires the confirmer to stdin/stdout.
func NewTerminalConfirmer() *TerminalConfirmer {
	return &TerminalConfirmer{In: os.Stdin, Out: os.Stdout}
}

func (c *TerminalConfirmer) Confirm(command string) (Decision, error) {
	fmt.Fprintf(c.Out, "> %s\n", command)
	fmt.Fprint(c.Out, "Do you want to execute this command? [Y/n/c] ")
	line, err := bufio.NewReader(c.In).ReadString('\n')
	if err != nil && err != io.EOF {
		return DecisionSkip, fmt.Errorf("failed to read user input: %w", err)
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "", "y":
		return DecisionExecute, nil
	case "c":
		return DecisionCopy, nil
	default:
		return DecisionSkip, nil
	}
}

// ShellTool executes a shell command after interactive confirmation, with a
// hard timeout that kills the child.
type ShellTool struct {
	confirmer Confirmer
	copyText  func(string) error
}

// NewShellTool constructs a ShellTool using the given confirmer. A nil
// confirmer auto-approves every command, which is only appropriate in tests.
func NewShellTool(confirmer Confirmer) *ShellTool {
	return &ShellTool{confirmer: confirmer, copyText: clipboard.WriteAll}
}

func (t *ShellTool) Name() string { return "run_shell" }

func (t *ShellTool) Description() string {
	osName := runtime.GOOS
	switch osName {
	case "darwin":
		osName = "Mac OS"
	case "windows":
		osName = "Windows"
	default:
		osName = "Linux"
	}
	return fmt.Sprintf("Execute a %s shell command on the user's machine. The machine runs %s. The user can see the command output! Use for tasks that require terminal operations. Always prefer safe, idempotent commands and avoid destructive operations.", osName, osName)
}

func (t *ShellTool) Params() []tool.Param {
	shell := "Using `sh -c`"
	if runtime.GOOS == "windows" {
		shell = "Using `cmd /C`"
	}
	return []tool.Param{
		{Name: "command", Type: "string", Description: fmt.Sprintf("The exact shell command to execute (%s)", shell), Required: true},
		{Name: "timeout_sec", Type: "integer", Description: "Optional timeout in seconds (defaults to 120)"},
	}
}

func (t *ShellTool) Execute(ctx context.Context, args map[string]any) (map[string]any, error) {
	command, err := stringArg(args, "command")
	if err != nil {
		return nil, err
	}
	timeout := defaultShellTimeout
	if sec := intArgDefault(args, "timeout_sec", 0); sec > 0 {
		timeout = time.Duration(sec) * time.Second
	}

	if t.confirmer != nil {
		decision, confirmErr := t.confirmer.Confirm(command)
		if confirmErr != nil {
			return nil, confirmErr
		}
		switch decision {
		case DecisionCopy:
			if copyErr := t.copyText(command); copyErr != nil {
				log.Warn().Err(copyErr).Msg("failed to copy command to clipboard")
			}
			return map[string]any{"command": command, "executed": false, "copied": true}, nil
		case DecisionSkip:
			return map[string]any{"command": command, "executed": false}, nil
		}
	}

	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var cmd *exec.Cmd
	if runtime.GOOS == "windows" {
		cmd = exec.CommandContext(runCtx, "cmd", "/C", command)
	} else {
		cmd = exec.CommandContext(runCtx, "sh", "-c", command)
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	// Stdin stays nil so the child reads from the null device; commands must
	// be non-interactive.

	runErr := cmd.Run()
	if runCtx.Err() == context.DeadlineExceeded {
		// CommandContext already killed the child; nothing is left running.
		return nil, fmt.Errorf("%w after %ds", ErrTimeout, int(timeout.Seconds()))
	}

	var exitErr *exec.ExitError
	if runErr != nil && !errors.As(runErr, &exitErr) {
		return nil, fmt.Errorf("failed to execute command: %w", runErr)
	}

	outText := stdout.String()
	errText := stderr.String()
	combined := outText
	switch {
	case outText == "":
		combined = errText
	case errText != "":
		combined = outText + "\n" + errText
	}

	return map[string]any{
		"command":     command,
		"executed":    true,
		"exit_status": cmd.ProcessState.ExitCode(),
		"stdout":      outText,
		"stderr":      errText,
		"output":      combined,
	}, nil
}
