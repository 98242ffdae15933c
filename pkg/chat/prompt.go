package chat

import (
	"fmt"
	"runtime"
	"strings"

	"github.com/taigo/tai/pkg/config"
	"github.com/taigo/tai/pkg/history"
)

// defaultMaxWords caps answer length when the terminal height is unknown.
const defaultMaxWords = 704

const systemPromptTemplate = `You are an AI assistant running in a terminal that can call tools to operate on the user's machine.
Your goal is to help the user achieve their task efficiently and safely.

System rules:
- If the user asks you to perform a terminal task, call the run_shell tool with the exact command to execute. Prefer pipes over multiple sequential commands when possible.
- Keep commands non-interactive, idempotent, and safe by default. Avoid destructive operations unless the user explicitly requests them.
- The commands are being executed on %s.
- When executing a terminal command the user can already see the output of the command. Do NOT summarize or restate the command's output.
- If the user is asking about a command (explanatory), answer concisely and include a one-line example, then a brief explanation of key flags.
- After running a command via the tool, use its output to decide next steps. You may call tools multiple times until the task is complete.
- Do not invent file paths or secrets. Never print sensitive values.
- Keep your answer short and concise. Do not exceed %d words!
- When you include code, always use fenced code blocks with a language identifier like ` + "```go, ```bash, ```python" + `, etc. Avoid plain triple backticks without a language.
- Always respond using Markdown syntax.

%s%s`

func osName() string {
	switch runtime.GOOS {
	case "linux":
		return "Linux"
	case "darwin":
		return "Mac OS"
	case "windows":
		return "Windows"
	default:
		return runtime.GOOS
	}
}

func contextSection(contexts []config.ContextFile) string {
	if len(contexts) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("\n## Additional Context\n\n")
	for _, c := range contexts {
		fmt.Fprintf(&b, "### Context from %s\n\n%s\n\n", c.Source, c.Content)
	}
	return b.String()
}

func historySection(entries []history.RelevantEntry) string {
	if len(entries) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("\nHere are some of your previous interactions (these may not be related to the current query and are just for reference):\n\n")
	for i, r := range entries {
		fmt.Fprintf(&b, "Interaction %d (from %d minutes ago):\n", i+1, int(r.Age.Minutes()))
		fmt.Fprintf(&b, "User: %s\n", r.Entry.UserInput)
		fmt.Fprintf(&b, "Assistant: %s\n\n", r.Entry.Response)
	}
	return b.String()
}

func buildSystemPrompt(contexts []config.ContextFile, recent []history.RelevantEntry, maxWords int) string {
	if maxWords <= 0 {
		maxWords = defaultMaxWords
	}
	return fmt.Sprintf(systemPromptTemplate, osName(), maxWords, contextSection(contexts), historySection(recent))
}
