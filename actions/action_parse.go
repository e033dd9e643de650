package actions

import (
	"fmt"
	"os"
	"time"

	"github.com/ant-libs-go/copilot-cli/prompts"
	"gopkg.in/yaml.v3"
)

type rawAction struct {
	Description  string     `yaml:"description"`
	SystemPrompt string     `yaml:"system_prompt"`
	Prompt       string     `yaml:"prompt"`
	Model        string     `yaml:"model"`
	Output       rawOutput  `yaml:"output"`
	Options      rawOptions `yaml:"options"`
	Commands     yaml.Node  `yaml:"commands"`
}

// rawOutput 接受标量 "stdout" 或 {to_file: "<路径模板>"} 两种写法
type rawOutput struct {
	kind         OutputKind
	pathTemplate string
}

func (this *rawOutput) UnmarshalYAML(node *yaml.Node) (err error) {
	switch node.Kind {
	case yaml.ScalarNode:
		if node.Value != string(OutputStdout) {
			return fmt.Errorf("unknown output destination %q, expected %q or a to_file mapping", node.Value, OutputStdout)
		}
		this.kind = OutputStdout
		return
	case yaml.MappingNode:
		var aux struct {
			ToFile string `yaml:"to_file"`
		}
		if err = node.Decode(&aux); err != nil {
			return
		}
		if aux.ToFile == "" {
			return fmt.Errorf("output.to_file must not be empty")
		}
		this.kind = OutputFile
		this.pathTemplate = aux.ToFile
		return
	}
	return fmt.Errorf("output must be %q or a to_file mapping", OutputStdout)
}

type rawOptions struct {
	Stream  *bool `yaml:"stream"`
	Spinner *bool `yaml:"spinner"`
}

// rawCommand 接受裸 argv 序列，或带显式失败策略的映射写法
type rawCommand struct {
	argv            []string
	tolerateFailure bool
	timeout         time.Duration
}

func (this *rawCommand) UnmarshalYAML(node *yaml.Node) (err error) {
	switch node.Kind {
	case yaml.SequenceNode:
		return node.Decode(&this.argv)
	case yaml.MappingNode:
		var aux struct {
			Argv            []string `yaml:"argv"`
			TolerateFailure bool     `yaml:"tolerate_failure"`
			Timeout         string   `yaml:"timeout"`
		}
		if err = node.Decode(&aux); err != nil {
			return
		}
		this.argv = aux.Argv
		this.tolerateFailure = aux.TolerateFailure
		if aux.Timeout != "" {
			if this.timeout, err = time.ParseDuration(aux.Timeout); err != nil {
				return fmt.Errorf("invalid command timeout %q: %w", aux.Timeout, err)
			}
		}
		return
	}
	return fmt.Errorf("command must be an argv sequence or a mapping with an argv field")
}

func parseCatalog(path string) (r *Catalog, err error) {
	var b []byte
	if b, err = os.ReadFile(path); err != nil {
		err = &ParseError{Source: path, Err: err}
		return
	}
	return parseCatalogBytes(b, path)
}

func parseCatalogBytes(b []byte, source string) (r *Catalog, err error) {
	var doc yaml.Node
	if err = yaml.Unmarshal(b, &doc); err != nil {
		err = &ParseError{Source: source, Err: err}
		return
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		err = &ParseError{Source: source, Err: fmt.Errorf("empty document")}
		return
	}

	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		err = &ParseError{Source: source, Err: fmt.Errorf("top level must be a mapping with an actions key")}
		return
	}

	var actionsNode *yaml.Node
	for i := 0; i+1 < len(root.Content); i += 2 {
		if root.Content[i].Value == "actions" {
			actionsNode = root.Content[i+1]
			break
		}
	}
	if actionsNode == nil {
		err = &ParseError{Source: source, Err: fmt.Errorf("missing top-level actions mapping")}
		return
	}
	if actionsNode.Kind != yaml.MappingNode {
		err = &ParseError{Source: source, Err: fmt.Errorf("actions must be a mapping of name to definition")}
		return
	}

	r = &Catalog{
		source:  source,
		actions: make(map[string]*Action),
	}
	for i := 0; i+1 < len(actionsNode.Content); i += 2 {
		name := actionsNode.Content[i].Value
		if name == "" {
			err = &ParseError{Source: source, Err: fmt.Errorf("action name must not be empty (line %d)", actionsNode.Content[i].Line)}
			r = nil
			return
		}
		if _, exists := r.actions[name]; exists {
			err = &ParseError{Source: source, Err: fmt.Errorf("duplicate action name %q (line %d)", name, actionsNode.Content[i].Line)}
			r = nil
			return
		}

		var action *Action
		if action, err = parseAction(name, actionsNode.Content[i+1]); err != nil {
			err = &ParseError{Source: source, Err: err}
			r = nil
			return
		}
		r.actions[name] = action
		r.names = append(r.names, name)
	}
	return
}

func parseAction(name string, body *yaml.Node) (r *Action, err error) {
	var raw rawAction
	if err = body.Decode(&raw); err != nil {
		err = fmt.Errorf("action %q: %w", name, err)
		return
	}

	r = &Action{
		Name:         name,
		Description:  raw.Description,
		SystemPrompt: raw.SystemPrompt,
		Prompt:       raw.Prompt,
		Model:        raw.Model,
		Output:       &Output{Kind: OutputStdout},
		Options:      &Options{Stream: false, Spinner: true},
	}
	if raw.Output.kind == OutputFile {
		r.Output = &Output{Kind: OutputFile, PathTemplate: raw.Output.pathTemplate}
	}
	if raw.Options.Stream != nil {
		r.Options.Stream = *raw.Options.Stream
	}
	if raw.Options.Spinner != nil {
		r.Options.Spinner = *raw.Options.Spinner
	}

	if err = parseCommands(r, &raw.Commands); err != nil {
		err = fmt.Errorf("action %q: %w", name, err)
		r = nil
		return
	}

	if err = validateAction(r); err != nil {
		err = fmt.Errorf("action %q: %w", name, err)
		r = nil
		return
	}
	return
}

func parseCommands(action *Action, node *yaml.Node) (err error) {
	if node.Kind == 0 || node.Tag == "!!null" {
		return
	}
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("commands must be a mapping of name to argv")
	}

	seen := map[string]bool{}
	for i := 0; i+1 < len(node.Content); i += 2 {
		cmdName := node.Content[i].Value
		if cmdName == "" {
			return fmt.Errorf("command name must not be empty (line %d)", node.Content[i].Line)
		}
		if seen[cmdName] {
			return fmt.Errorf("duplicate command name %q", cmdName)
		}
		seen[cmdName] = true

		var raw rawCommand
		if err = node.Content[i+1].Decode(&raw); err != nil {
			return fmt.Errorf("command %q: %w", cmdName, err)
		}
		if len(raw.argv) == 0 {
			return fmt.Errorf("command %q: argv must not be empty", cmdName)
		}

		action.Commands = append(action.Commands, &Command{
			Name:            cmdName,
			Argv:            raw.argv,
			TolerateFailure: raw.tolerateFailure,
			Timeout:         raw.timeout,
		})
	}
	return
}

// validateAction 在加载期做完整校验，配置错误先于任何命令执行和网络调用暴露
func validateAction(action *Action) (err error) {
	if action.Model == "" {
		return fmt.Errorf("model is required")
	}
	if action.Output.Kind == OutputFile && action.Output.PathTemplate == "" {
		return fmt.Errorf("output.to_file must not be empty")
	}

	known := map[string]bool{"path": true, "input": true}
	for _, cmd := range action.Commands {
		known[cmd.Name] = true
	}

	templates := map[string]string{
		"system_prompt":  action.SystemPrompt,
		"prompt":         action.Prompt,
		"output.to_file": action.Output.PathTemplate,
	}
	for field, template := range templates {
		for _, name := range prompts.Placeholders(template) {
			if !known[name] {
				return fmt.Errorf("%s references $%s which is neither a declared command nor a built-in binding", field, name)
			}
		}
	}
	return
}
