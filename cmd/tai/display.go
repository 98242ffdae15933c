package main

import (
	"encoding/json"
	"fmt"

	"github.com/fatih/color"

	"github.com/taigo/tai/pkg/chat"
)

var (
	headerColor = color.New(color.FgCyan, color.Bold)
	nameColor   = color.New(color.FgYellow, color.Bold)
	labelColor  = color.New(color.FgGreen)
	errorColor  = color.New(color.FgMagenta)
	streamColor = color.New(color.FgHiBlack)
)

// terminalDisplay renders loop events with ANSI colors. The final answer is
// printed only when nothing was streamed, since streaming already put the
// text on screen.
type terminalDisplay struct {
	streamed bool
}

func newTerminalDisplay() *terminalDisplay {
	return &terminalDisplay{}
}

func (d *terminalDisplay) ToolCall(name, formattedParams string) {
	fmt.Printf("%s: %s\n", headerColor.Sprint("Tool call"), nameColor.Sprint(name))
	fmt.Printf("%s:\n%s", labelColor.Sprint("params"), formattedParams)
}

func (d *terminalDisplay) ToolResult(name string, payload map[string]any) {
	if msg, ok := payload["error"].(string); ok {
		fmt.Printf("%s: %s\n", errorColor.Sprint("result"), msg)
		return
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return
	}
	fmt.Printf("%s:\n%s", labelColor.Sprint("result"), chat.FormatParams(string(raw)))
}

func (d *terminalDisplay) StreamText(text string) {
	d.streamed = true
	streamColor.Print(text)
}

func (d *terminalDisplay) Answer(text string) {
	if d.streamed {
		fmt.Println()
		d.streamed = false
		return
	}
	fmt.Println(text)
}
