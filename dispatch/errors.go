package dispatch

import "fmt"

// Stage 标识一次调用在状态机中的位置，失败时随错误一并上报
type Stage string

const (
	StageResolving         Stage = "resolving"
	StageExecutingCommands Stage = "executing-commands"
	StageBuildingPrompt    Stage = "building-prompt"
	StageDispatchingModel  Stage = "dispatching-model"
	StageRoutingOutput     Stage = "routing-output"
	StageDone              Stage = "done"
)

type MissingContextError struct {
	Name string
}

func (this *MissingContextError) Error() string {
	return fmt.Sprintf("required variable $%s is not set", this.Name)
}

type IOError struct {
	Path string
	Err  error
}

func (this *IOError) Error() string {
	if this.Path == "" {
		return fmt.Sprintf("failed to route output: %v", this.Err)
	}
	return fmt.Sprintf("failed to route output to %s: %v", this.Path, this.Err)
}

func (this *IOError) Unwrap() error { return this.Err }

// InvocationError 携带动作名与失败阶段，便于渲染用户可读的诊断信息
type InvocationError struct {
	Action string
	Stage  Stage
	Err    error
}

func (this *InvocationError) Error() string {
	return fmt.Sprintf("action %q failed at stage %s: %v", this.Action, this.Stage, this.Err)
}

func (this *InvocationError) Unwrap() error { return this.Err }
