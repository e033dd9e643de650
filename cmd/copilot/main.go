package main

import (
	"context"
	"fmt"
	"log"
	"os"

	markdown "github.com/MichaelMure/go-term-markdown"
	copilotcli "github.com/ant-libs-go/copilot-cli"
	"github.com/ant-libs-go/copilot-cli/actions"
	"github.com/ant-libs-go/copilot-cli/copilot"
	"github.com/ant-libs-go/copilot-cli/dispatch"
	"github.com/ant-libs-go/copilot-cli/runner"
	"github.com/ant-libs-go/util"
	"github.com/atotto/clipboard"
	"github.com/charmbracelet/lipgloss"
	"github.com/urfave/cli/v3"
)

func main() {
	cfg := &copilotcli.Config{}

	app := &cli.Command{
		Name:  "copilot",
		Usage: `GitHub Copilot Chat 命令行工具，动作由 actions.yml 声明`,
		Flags: copilotcli.DefaultCliFlags(cfg),
		Action: func(c context.Context, cmd *cli.Command) (err error) {
			return run(c, cfg)
		},
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}

func run(ctx context.Context, cfg *copilotcli.Config) (err error) {
	if cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Timeout)
		defer cancel()
	}

	catalogPath := cfg.ActionsFile
	if catalogPath == "" {
		if catalogPath, err = actions.LocateCatalog(); err != nil {
			return fmt.Errorf("failed to locate actions catalog: %w", err)
		}
	}

	var client *actions.ActionClient
	if client, err = actions.NewActionClient(catalogPath); err != nil {
		return
	}
	util.IfDo(cfg.Verbose, func() {
		fmt.Printf("🧩 已加载动作目录: %s (%d 个动作)\n", catalogPath, client.Catalog().Len())
	})

	if cfg.List {
		listActions(client.Catalog())
		return
	}

	userText := cfg.Prompt
	if cfg.Action == "" && userText == "" {
		copilotcli.PrintLogo()
		if userText, err = copilotcli.GetInput(); err != nil {
			return fmt.Errorf("failed to read input: %w", err)
		}
		if len(userText) == 0 {
			return
		}
	}

	var action *actions.Action
	if action, err = selectAction(client, cfg); err != nil {
		return
	}

	cmdRunner := runner.New()
	if cfg.CommandTimeout > 0 {
		cmdRunner.DefaultTimeout = cfg.CommandTimeout
	}

	router := dispatch.NewRouter(os.Stdout)
	router.Render = func(s string) string { return string(markdown.Render(s, 100, 2)) }

	dispatcher := dispatch.NewDispatcher(client.Catalog(), copilot.NewClient(), cmdRunner, router)
	dispatcher.Verbose = cfg.Verbose

	var stop func()
	if !action.Options.Stream && action.Options.Spinner && !cfg.NoSpinner {
		stop = copilotcli.RunSpinner("正在生成应答...")
	}

	var result *dispatch.Result
	result, err = dispatcher.InvokeAction(ctx, action, cfg.Path, userText)
	if stop != nil {
		stop()
	}
	if err != nil {
		return
	}

	if result.WroteTo != "" {
		fmt.Println(successStyle.Render(fmt.Sprintf("✅ 输出已写入 %s", result.WroteTo)))
	}
	if cfg.CopyToClipboard {
		if er := clipboard.WriteAll(result.Response); er != nil {
			fmt.Printf("‼️ 复制到剪贴板失败: %v\n", er)
		} else {
			fmt.Println("📋 应答已复制到剪贴板")
		}
	}
	return
}

// selectAction 返回待执行的动作。命令行开关只覆盖本次调用，
// 不修改目录中的共享定义。
func selectAction(client *actions.ActionClient, cfg *copilotcli.Config) (r *actions.Action, err error) {
	if cfg.Action == "" {
		// 自由对话模式，合成一个临时动作
		r = &actions.Action{
			Name:         "chat",
			SystemPrompt: cfg.SystemPrompt,
			Prompt:       "$input",
			Model:        cfg.Model,
			Output:       &actions.Output{Kind: actions.OutputStdout},
			Options:      &actions.Options{Stream: false, Spinner: !cfg.NoSpinner},
		}
		return
	}

	var action *actions.Action
	if action, err = client.Get(cfg.Action); err != nil {
		return
	}

	clone := *action
	options := *action.Options
	if cfg.NoStream {
		options.Stream = false
	}
	if cfg.NoSpinner {
		options.Spinner = false
	}
	clone.Options = &options
	r = &clone
	return
}

var (
	nameStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#4285F4")).Bold(true)
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#2BA84A"))
)

func listActions(catalog *actions.Catalog) {
	fmt.Println("📚 可用动作:")
	for _, name := range catalog.Names() {
		action, _ := catalog.Get(name)
		fmt.Printf("  - %s: %s\n", nameStyle.Render(name), action.Description)
	}
}
