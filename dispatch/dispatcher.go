package dispatch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/ant-libs-go/copilot-cli/actions"
	"github.com/ant-libs-go/copilot-cli/prompts"
	"github.com/ant-libs-go/copilot-cli/runner"
	"github.com/ant-libs-go/util"
)

// ModelBackend 是模型后端协作方的契约，重试策略属于后端或调用方，本层不做
type ModelBackend interface {
	Complete(ctx context.Context, systemPrompt, prompt, model string) (string, error)
	Stream(ctx context.Context, systemPrompt, prompt, model string, emit func(chunk string) error) error
}

type Result struct {
	Response string
	WroteTo  string // 非空表示已写入的文件路径
	Streamed bool
	Stage    Stage
}

type Dispatcher struct {
	catalog *actions.Catalog
	backend ModelBackend
	runner  *runner.Runner
	router  *Router
	Verbose bool
}

func NewDispatcher(catalog *actions.Catalog, backend ModelBackend, run *runner.Runner, router *Router) (r *Dispatcher) {
	if run == nil {
		run = runner.New()
	}
	if router == nil {
		router = NewRouter(os.Stdout)
	}
	return &Dispatcher{
		catalog: catalog,
		backend: backend,
		runner:  run,
		router:  router,
	}
}

// Invoke 按名称解析动作并执行一次调用
func (this *Dispatcher) Invoke(ctx context.Context, actionName, path, userText string) (r *Result, err error) {
	var action *actions.Action
	if action, err = this.catalog.Get(actionName); err != nil {
		err = &InvocationError{Action: actionName, Stage: StageResolving, Err: err}
		return
	}
	return this.InvokeAction(ctx, action, path, userText)
}

// InvokeAction 驱动单次调用走完整个状态机：
// Resolving → Executing-Commands → Building-Prompt → Dispatching-Model → Routing-Output → Done
func (this *Dispatcher) InvokeAction(ctx context.Context, action *actions.Action, path string, userText string) (r *Result, err error) {
	fail := func(stage Stage, er error) (*Result, error) {
		return nil, &InvocationError{Action: action.Name, Stage: stage, Err: er}
	}

	// Resolving
	if path == "" && needsPath(action) {
		return fail(StageResolving, &MissingContextError{Name: "path"})
	}
	bindings := map[string]string{
		"path":  path,
		"input": userText,
	}

	// Executing-Commands：全部命令完成（成功或被容忍的失败）之前不组装提示词
	if len(action.Commands) > 0 {
		var outputs map[string]string
		if outputs, err = this.runCommands(ctx, action, path); err != nil {
			return fail(StageExecutingCommands, err)
		}
		for name, out := range outputs {
			bindings[name] = out
		}
	}

	// Building-Prompt
	var systemPrompt, prompt string
	if systemPrompt, err = prompts.Resolve(action.SystemPrompt, bindings); err != nil {
		return fail(StageBuildingPrompt, err)
	}
	if prompt, err = prompts.Resolve(action.Prompt, bindings); err != nil {
		return fail(StageBuildingPrompt, err)
	}
	if userText != "" && !referencesInput(action.Prompt) {
		prompt += userText
	}

	dest := &Destination{Kind: action.Output.Kind}
	if action.Output.Kind == actions.OutputFile {
		if dest.Path, err = prompts.Resolve(action.Output.PathTemplate, bindings); err != nil {
			return fail(StageBuildingPrompt, err)
		}
		if dest.Path == "" {
			return fail(StageBuildingPrompt, &IOError{Err: errors.New("resolved output path is empty")})
		}
	}

	util.IfDo(this.Verbose, func() {
		logStruct("Copilot LLM Request", map[string]string{
			"action": action.Name, "model": action.Model,
			"system_prompt": systemPrompt, "prompt": prompt,
		})
	})

	// Dispatching-Model → Routing-Output
	r = &Result{Streamed: action.Options.Stream, Stage: StageDone}
	if action.Output.Kind == actions.OutputFile {
		r.WroteTo = dest.Path
	}

	if action.Options.Stream {
		var content string
		if content, err = this.router.RouteStream(dest, func(emit func(string) error) error {
			return this.backend.Stream(ctx, systemPrompt, prompt, action.Model, emit)
		}); err != nil {
			stage := StageDispatchingModel
			var ioErr *IOError
			if errors.As(err, &ioErr) {
				stage = StageRoutingOutput
			}
			return fail(stage, err)
		}
		r.Response = content
		return
	}

	if r.Response, err = this.backend.Complete(ctx, systemPrompt, prompt, action.Model); err != nil {
		return fail(StageDispatchingModel, err)
	}
	if err = this.router.Route(r.Response, dest); err != nil {
		return fail(StageRoutingOutput, err)
	}
	return
}

// runCommands 并发执行动作声明的全部命令，互相之间不保证顺序。
// 不容忍的首个失败会取消其余命令。
func (this *Dispatcher) runCommands(ctx context.Context, action *actions.Action, path string) (r map[string]string, err error) {
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	var mu sync.Mutex
	var wg sync.WaitGroup
	var firstErr error
	r = make(map[string]string, len(action.Commands))

	for _, cmd := range action.Commands {
		wg.Add(1)
		go func(cmd *actions.Command) {
			defer wg.Done()

			argv := make([]string, len(cmd.Argv))
			for i, el := range cmd.Argv {
				argv[i] = strings.ReplaceAll(el, "$path", path)
			}

			stdout, er := this.runner.Run(runCtx, argv, path, cmd.Timeout)

			mu.Lock()
			defer mu.Unlock()
			if er != nil && !cmd.TolerateFailure {
				if firstErr == nil {
					firstErr = fmt.Errorf("command %q: %w", cmd.Name, er)
					cancel()
				}
				return
			}
			// 被容忍的失败绑定已捕获的 stdout，git diff 在部分配置下非零退出仍有输出
			r[cmd.Name] = stdout
		}(cmd)
	}
	wg.Wait()

	if firstErr != nil {
		r = nil
		err = firstErr
		return
	}
	return
}

func needsPath(action *actions.Action) bool {
	if len(action.Commands) > 0 {
		return true
	}
	for _, template := range []string{action.SystemPrompt, action.Prompt, action.Output.PathTemplate} {
		for _, name := range prompts.Placeholders(template) {
			if name == "path" {
				return true
			}
		}
	}
	return false
}

func referencesInput(template string) bool {
	for _, name := range prompts.Placeholders(template) {
		if name == "input" {
			return true
		}
	}
	return false
}

func logStruct(prefix string, obj interface{}) {
	b, _ := json.Marshal(obj)
	fmt.Printf("%s: %s\n", prefix, string(b))
}
