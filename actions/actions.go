package actions

import "time"

type OutputKind string

const (
	OutputStdout OutputKind = "stdout"
	OutputFile   OutputKind = "file"
)

// Output 是输出目的地的标签变体：要么 stdout，要么带路径模板的文件
type Output struct {
	Kind         OutputKind
	PathTemplate string
}

type Options struct {
	Stream  bool
	Spinner bool
}

// Command 是一条待执行的外部命令，失败策略随命令声明而非推断
type Command struct {
	Name            string
	Argv            []string
	TolerateFailure bool
	Timeout         time.Duration
}

type Action struct {
	Name         string
	Description  string
	SystemPrompt string
	Prompt       string
	Model        string
	Output       *Output
	Options      *Options
	Commands     []*Command
}

func (this *Action) Command(name string) (r *Command) {
	for _, cmd := range this.Commands {
		if cmd.Name == name {
			return cmd
		}
	}
	return
}
