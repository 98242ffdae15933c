package builtin

import (
	"github.com/taigo/tai/pkg/tool"
	"github.com/taigo/tai/pkg/workspace"
)

// RegisterDefaults installs the standard tool set into reg, all filesystem
// tools bound to ws. The shell tool gates execution behind confirmer.
func RegisterDefaults(reg *tool.Registry, ws *workspace.Workspace, confirmer Confirmer) error {
	tools := []tool.Tool{
		NewReadFileTool(ws),
		NewWriteFileTool(ws),
		NewPatchFileTool(ws),
		NewListDirTool(ws),
		NewStatTool(ws),
		NewGlobTool(ws),
		NewGrepTool(ws),
		NewShellTool(confirmer),
		NewFetchTool(),
	}
	for _, t := range tools {
		if err := reg.Register(t); err != nil {
			return err
		}
	}
	return nil
}
