package main

import (
	"fmt"
	"os"
	"path/filepath"

	"xmledit/src/cli"
	"xmledit/src/config"
	"xmledit/src/events"
	"xmledit/src/logging"
	"xmledit/src/suggest"
	"xmledit/src/vars"
	"xmledit/src/workspace"
)

func main() {
	wd, err := os.Getwd()
	if err != nil {
		fmt.Printf("无法获取工作目录: %v\n", err)
		return
	}
	cfg, err := config.Load(filepath.Join(wd, config.FileName))
	if err != nil {
		fmt.Printf("读取配置失败，使用默认配置: %v\n", err)
	}
	logger := logging.NewLogger(cfg.Log, os.Stderr)

	console := cli.NewConsole(os.Stdin, os.Stdout)
	bus := events.NewBus()
	manager := logging.NewManager(logger)
	bus.Subscribe(manager)
	keeper := workspace.NewStateKeeper(wd, cfg.Workspace.StateFile)
	ws := workspace.NewWorkspace(wd, bus, keeper, manager, console)
	ws.SetLogger(logger)
	ws.SetSuggestService(suggest.NewService(suggest.Options{
		Depth:     cfg.Suggest.Depth,
		Threshold: cfg.Suggest.Threshold,
		Max:       cfg.Suggest.Max,
	}))
	if cfg.Vars.File != "" {
		scopeFile := cfg.Vars.File
		if !filepath.IsAbs(scopeFile) {
			scopeFile = filepath.Join(wd, scopeFile)
		}
		scope, err := vars.LoadJSONScope(scopeFile, vars.EnvScope{})
		if err != nil {
			fmt.Printf("加载变量文件失败: %v\n", err)
		} else {
			ws.SetScope(vars.NewInterpolator(), scope)
		}
	}
	if err := ws.Restore(); err != nil {
		fmt.Printf("恢复工作区失败: %v\n", err)
	}
	dispatcher := cli.NewDispatcher(ws, console, manager)
	dispatcher.Run()
}
