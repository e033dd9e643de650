package copilotcli

import (
	"time"

	"github.com/urfave/cli/v3"
)

// 未指定 action 时自由对话模式使用的缺省系统提示词
const DefaultSystemPrompt = `You are a helpful assistant running inside a command line interface. ` +
	`Answer concisely, prefer plain text or markdown, and never wrap the whole reply in a code fence unless asked to.`

const DefaultModel = "gpt-4o"

type Config struct {
	Path            string
	ActionsFile     string
	Action          string
	Prompt          string
	Model           string
	SystemPrompt    string
	List            bool
	NoStream        bool
	NoSpinner       bool
	CopyToClipboard bool
	CommandTimeout  time.Duration
	Timeout         time.Duration
	Verbose         bool
}

func DefaultCliFlags(config *Config) (r []cli.Flag) {
	return []cli.Flag{
		&cli.StringFlag{
			Name: "path", Usage: "Path the action runs in, substituted for $path",
			Required:    false,
			Aliases:     []string{"p"},
			Value:       ".",
			Destination: &config.Path,
		},
		&cli.StringFlag{
			Name: "actions-file", Usage: "Actions catalog file (falls back to COPILOT_CLI_ACTIONS env var, then discovery)",
			Required:    false,
			Sources:     cli.EnvVars("COPILOT_CLI_ACTIONS"),
			Destination: &config.ActionsFile,
		},
		&cli.StringFlag{
			Name: "action", Usage: "Named action from the catalog to perform",
			Required:    false,
			Aliases:     []string{"a"},
			Destination: &config.Action,
		},
		&cli.StringFlag{
			Name: "prompt", Usage: "Free-form text sent to the model, substituted for $input",
			Required:    false,
			Destination: &config.Prompt,
		},
		&cli.StringFlag{
			Name: "model", Usage: "Model used when no action is selected (falls back to COPILOT_CLI_MODEL env var)",
			Required:    false,
			Aliases:     []string{"m"},
			Value:       DefaultModel,
			Sources:     cli.EnvVars("COPILOT_CLI_MODEL"),
			Destination: &config.Model,
		},
		&cli.StringFlag{
			Name: "system-prompt", Usage: "System prompt used when no action is selected",
			Required:    false,
			Value:       DefaultSystemPrompt,
			Destination: &config.SystemPrompt,
		},
		&cli.BoolFlag{
			Name: "list", Usage: "List available actions",
			Required:    false,
			Aliases:     []string{"l"},
			Destination: &config.List,
		},
		&cli.BoolFlag{
			Name: "no-stream", Usage: "Disable streaming even when the action enables it",
			Required:    false,
			Destination: &config.NoStream,
		},
		&cli.BoolFlag{
			Name: "no-spinner", Usage: "Disable the progress spinner",
			Required:    false,
			Destination: &config.NoSpinner,
		},
		&cli.BoolFlag{
			Name: "copy-to-clipboard", Usage: "Copy the response to the clipboard",
			Required:    false,
			Aliases:     []string{"c"},
			Destination: &config.CopyToClipboard,
		},
		&cli.DurationFlag{
			Name: "command-timeout", Usage: "Timeout applied to each declared command",
			Required:    false,
			Value:       30 * time.Second,
			Destination: &config.CommandTimeout,
		},
		&cli.DurationFlag{
			Name: "timeout", Usage: "Deadline for the whole invocation, 0 means no deadline",
			Required:    false,
			Destination: &config.Timeout,
		},
		&cli.BoolFlag{
			Name: "verbose", Usage: "Enable verbose output",
			Required:    false,
			Aliases:     []string{"v"},
			Destination: &config.Verbose,
		},
	}
}
