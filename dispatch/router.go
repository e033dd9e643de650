package dispatch

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ant-libs-go/copilot-cli/actions"
)

type Destination struct {
	Kind actions.OutputKind
	Path string // 已完成占位符解析的文件路径，仅 OutputFile
}

// Router 把模型应答写到 stdout 或文件。文件写入走临时文件加改名，
// 失败时不会留下半截的目标文件。
type Router struct {
	Stdout io.Writer
	Render func(string) string // 可选，仅整体写 stdout 时应用（如 markdown 渲染）
}

func NewRouter(stdout io.Writer) (r *Router) {
	return &Router{Stdout: stdout}
}

func (this *Router) Route(response string, dest *Destination) (err error) {
	if dest.Kind == actions.OutputFile {
		return this.writeFileAtomic(dest.Path, func(w io.Writer) (err error) {
			_, err = io.WriteString(w, response)
			return
		})
	}

	out := response
	if this.Render != nil {
		out = this.Render(out)
	}
	if !strings.HasSuffix(out, "\n") {
		out += "\n"
	}
	if _, er := io.WriteString(this.Stdout, out); er != nil {
		err = &IOError{Err: er}
		return
	}
	return
}

// RouteStream 驱动 produce 产生片段并按到达顺序落盘或上屏，返回累计内容
func (this *Router) RouteStream(dest *Destination, produce func(emit func(chunk string) error) error) (content string, err error) {
	var sb strings.Builder

	if dest.Kind == actions.OutputFile {
		err = this.writeFileAtomic(dest.Path, func(w io.Writer) (err error) {
			return produce(func(chunk string) (err error) {
				sb.WriteString(chunk)
				if _, er := io.WriteString(w, chunk); er != nil {
					err = &IOError{Path: dest.Path, Err: er}
					return
				}
				return
			})
		})
	} else {
		err = produce(func(chunk string) (err error) {
			sb.WriteString(chunk)
			if _, er := io.WriteString(this.Stdout, chunk); er != nil {
				err = &IOError{Err: er}
				return
			}
			return
		})
		if err == nil {
			_, _ = io.WriteString(this.Stdout, "\n")
		}
	}

	if err != nil {
		return
	}
	content = sb.String()
	return
}

func (this *Router) writeFileAtomic(path string, fill func(io.Writer) error) (err error) {
	if path == "" {
		err = &IOError{Err: errors.New("resolved output path is empty")}
		return
	}

	dir := filepath.Dir(path)
	if err = os.MkdirAll(dir, 0o755); err != nil {
		err = &IOError{Path: path, Err: err}
		return
	}

	var tmp *os.File
	if tmp, err = os.CreateTemp(dir, "."+filepath.Base(path)+".*"); err != nil {
		err = &IOError{Path: path, Err: err}
		return
	}

	committed := false
	defer func() {
		if !committed {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
		}
	}()

	if err = fill(tmp); err != nil {
		return
	}
	if er := tmp.Close(); er != nil {
		err = &IOError{Path: path, Err: er}
		return
	}
	if er := os.Rename(tmp.Name(), path); er != nil {
		err = &IOError{Path: path, Err: er}
		return
	}
	committed = true
	return
}
