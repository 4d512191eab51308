package cli

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"sort"
	"strings"

	"github.com/mattn/go-shellwords"

	"xmledit/src/logging"
	"xmledit/src/workspace"
)

// Dispatcher interprets user commands.
type Dispatcher struct {
	ws      *workspace.Workspace
	console *Console
	logger  *logging.Manager
}

// NewDispatcher constructs a dispatcher.
func NewDispatcher(ws *workspace.Workspace, console *Console, logger *logging.Manager) *Dispatcher {
	return &Dispatcher{
		ws:      ws,
		console: console,
		logger:  logger,
	}
}

// Run processes interactive commands until exit.
func (d *Dispatcher) Run() {
	for {
		d.console.Print("> ")
		line, err := d.console.ReadLine()
		if err != nil {
			if errors.Is(err, io.EOF) {
				_ = d.handleExit()
				return
			}
			d.console.Println(fmt.Sprintf("读取命令失败: %v", err))
			continue
		}
		exit, err := d.execute(line)
		if err != nil {
			d.console.Println(fmt.Sprintf("错误: %v", err))
			continue
		}
		if exit {
			return
		}
	}
}

// Execute runs a single command.
func (d *Dispatcher) Execute(raw string) error {
	_, err := d.execute(raw)
	return err
}

func (d *Dispatcher) execute(raw string) (bool, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return false, nil
	}
	tokens, err := tokenize(raw)
	if err != nil {
		return false, err
	}
	if len(tokens) == 0 {
		return false, nil
	}
	cmd := strings.ToLower(tokens[0])
	args := tokens[1:]
	var targetFile string
	var exit bool

	switch cmd {
	case "load":
		if len(args) != 1 {
			return false, errors.New("用法: load <file>")
		}
		ed, err := d.ws.Load(args[0])
		if err != nil {
			return false, err
		}
		targetFile = ed.Path()
		d.console.Println("已加载: " + ed.Path())
	case "save":
		switch {
		case len(args) == 0:
			written, err := d.ws.Save("")
			if err != nil {
				return false, err
			}
			targetFile = d.activePath()
			d.reportWrite(written, "已保存当前文件", "没有需要保存的修改")
		case len(args) == 1 && strings.ToLower(args[0]) == "all":
			if err := d.ws.SaveAll(); err != nil {
				return false, err
			}
			d.console.Println("已保存全部文件")
		case len(args) == 1:
			ed, err := d.ws.EditorByPath(args[0])
			if err != nil {
				return false, err
			}
			written, err := d.ws.Save(ed.Path())
			if err != nil {
				return false, err
			}
			targetFile = ed.Path()
			d.reportWrite(written, "已保存: "+ed.Path(), "没有需要保存的修改")
		default:
			return false, errors.New("用法: save [file|all]")
		}
	case "close":
		var requesting string
		if len(args) > 0 {
			requesting = args[0]
		}
		if requesting != "" {
			ed, err := d.ws.EditorByPath(requesting)
			if err != nil {
				return false, err
			}
			targetFile = ed.Path()
		} else {
			targetFile = d.activePath()
		}
		if err := d.ws.Close(requesting); err != nil {
			return false, err
		}
		d.console.Println("已关闭")
	case "edit":
		if len(args) != 1 {
			return false, errors.New("用法: edit <file>")
		}
		if err := d.ws.Edit(args[0]); err != nil {
			return false, err
		}
		targetFile = d.activePath()
		d.console.Println("已切换活动文件")
	case "editor-list":
		d.printEditors()
	case "get":
		if len(args) != 1 {
			return false, errors.New("用法: get <path>")
		}
		value, ok, err := d.ws.Get(args[0])
		if err != nil {
			return false, err
		}
		targetFile = d.activePath()
		if !ok {
			d.printNotFound(args[0])
			break
		}
		d.console.Println(value)
	case "list":
		if len(args) != 1 {
			return false, errors.New("用法: list <path>")
		}
		values, err := d.ws.GetList(args[0])
		if err != nil {
			return false, err
		}
		targetFile = d.activePath()
		if len(values) == 0 {
			d.printNotFound(args[0])
			break
		}
		for i, value := range values {
			d.console.Println(fmt.Sprintf("%d: %s", i+1, value))
		}
	case "children":
		if len(args) != 1 {
			return false, errors.New("用法: children <path>")
		}
		children, err := d.ws.GetChildren(args[0])
		if err != nil {
			return false, err
		}
		targetFile = d.activePath()
		if len(children) == 0 {
			d.printNotFound(args[0])
			break
		}
		for _, child := range children {
			d.console.Println(fmt.Sprintf("%s = %s", child.Name, child.Value))
		}
	case "set":
		if len(args) != 2 {
			return false, errors.New("用法: set <path> \"value\"")
		}
		changed, err := d.ws.Set(args[0], args[1])
		if err != nil {
			return false, err
		}
		targetFile = d.activePath()
		if changed {
			d.console.Println("已更新")
		} else {
			d.console.Println("值未变化")
		}
	case "paths":
		paths, err := d.ws.Paths()
		if err != nil {
			return false, err
		}
		targetFile = d.activePath()
		for _, path := range paths {
			d.console.Println(path)
		}
	case "undo":
		undone, err := d.ws.Undo()
		if err != nil {
			return false, err
		}
		targetFile = d.activePath()
		d.reportWrite(undone, "已撤销", "没有可撤销的操作")
	case "redo":
		redone, err := d.ws.Redo()
		if err != nil {
			return false, err
		}
		targetFile = d.activePath()
		d.reportWrite(redone, "已重做", "没有可重做的操作")
	case "log-on":
		fileArg, err := d.resolveFileArg(args)
		if err != nil {
			return false, err
		}
		if err := d.logger.Enable(fileArg); err != nil {
			return false, err
		}
		targetFile = fileArg
		d.console.Println("已开启日志")
	case "log-off":
		fileArg, err := d.resolveFileArg(args)
		if err != nil {
			return false, err
		}
		if err := d.logger.Disable(fileArg); err != nil {
			return false, err
		}
		targetFile = fileArg
		d.console.Println("已关闭日志")
	case "log-show":
		fileArg, err := d.resolveFileArg(args)
		if err != nil {
			return false, err
		}
		targetFile = fileArg
		content, err := d.logger.Show(fileArg)
		if err != nil {
			return false, err
		}
		d.console.Println(content)
	case "exit":
		if err := d.handleExit(); err != nil {
			return false, err
		}
		exit = true
	default:
		return false, fmt.Errorf("未知命令: %s", cmd)
	}

	if cmd != "exit" {
		d.ws.PublishCommand(cmd, raw, targetFile)
	}
	return exit, nil
}

func (d *Dispatcher) activePath() string {
	ed, err := d.ws.ActiveEditor()
	if err != nil {
		return ""
	}
	return ed.Path()
}

func (d *Dispatcher) reportWrite(done bool, doneText, noopText string) {
	if done {
		d.console.Println(doneText)
		return
	}
	d.console.Println(noopText)
}

func (d *Dispatcher) printNotFound(path string) {
	d.console.Println("(未找到)")
	if hints := d.ws.Suggest(path); len(hints) > 0 {
		d.console.Println("你是不是想找: " + strings.Join(hints, ", "))
	}
}

func (d *Dispatcher) resolveFileArg(args []string) (string, error) {
	if len(args) > 1 {
		return "", errors.New("命令参数过多")
	}
	if len(args) == 1 {
		if filepath.IsAbs(args[0]) {
			return args[0], nil
		}
		return filepath.Join(d.ws.BaseDir(), args[0]), nil
	}
	ed, err := d.ws.ActiveEditor()
	if err != nil {
		return "", err
	}
	return ed.Path(), nil
}

func (d *Dispatcher) printEditors() {
	infos := d.ws.List()
	sort.Slice(infos, func(i, j int) bool {
		return infos[i].Path < infos[j].Path
	})
	for _, info := range infos {
		activeMark := " "
		if info.Active {
			activeMark = "*"
		}
		line := fmt.Sprintf("%s %s", activeMark, info.Name)
		if info.Modified {
			line += " [modified]"
		}
		line += fmt.Sprintf(" (%s)", info.State)
		d.console.Println(line)
	}
}

func (d *Dispatcher) handleExit() error {
	for _, info := range d.ws.List() {
		if !info.Modified {
			continue
		}
		save, err := d.console.ConfirmSave(info.Path)
		if err != nil {
			return err
		}
		if save {
			if _, err := d.ws.Save(info.Path); err != nil {
				return err
			}
		}
	}
	if err := d.ws.Persist(); err != nil {
		return err
	}
	d.console.Println("已退出并保存工作区状态")
	return nil
}

// tokenize splits a command line with shell quoting rules. Operators such as ";" or "<"
// must be quoted to be part of a value.
func tokenize(line string) ([]string, error) {
	parser := shellwords.NewParser()
	args, err := parser.Parse(line)
	if err != nil {
		return nil, fmt.Errorf("无法解析命令: %w", err)
	}
	if parser.Position >= 0 {
		return nil, fmt.Errorf("命令中有未加引号的特殊字符: %s", line)
	}
	return args, nil
}
