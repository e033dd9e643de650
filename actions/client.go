package actions

import (
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"
)

// Catalog 加载完成后只读，重载通过构造新实例整体替换
type Catalog struct {
	source  string
	actions map[string]*Action
	names   []string
}

func (this *Catalog) Get(name string) (r *Action, err error) {
	var ok bool
	if r, ok = this.actions[name]; !ok {
		err = &NotFoundError{Name: name}
		return
	}
	return
}

// Names 按文件中的声明顺序返回动作名
func (this *Catalog) Names() (r []string) {
	r = make([]string, len(this.names))
	copy(r, this.names)
	return
}

func (this *Catalog) Len() int {
	return len(this.names)
}

func (this *Catalog) Source() string {
	return this.source
}

type ActionClient struct {
	path    string
	catalog atomic.Pointer[Catalog]
}

// path: actions.yml 的路径
func NewActionClient(path string) (r *ActionClient, err error) {
	r = &ActionClient{path: path}
	if err = r.Reload(); err != nil {
		r = nil
		return
	}
	return
}

// Reload 构建新 Catalog 后原子替换，解析失败时保留旧目录
func (this *ActionClient) Reload() (err error) {
	var catalog *Catalog
	if catalog, err = parseCatalog(this.path); err != nil {
		return
	}
	this.catalog.Store(catalog)
	return
}

func (this *ActionClient) Catalog() *Catalog {
	return this.catalog.Load()
}

func (this *ActionClient) Get(name string) (*Action, error) {
	return this.catalog.Load().Get(name)
}

const catalogFileName = "actions.yml"

// LocateCatalog 依次探测工作目录、用户配置目录、可执行文件所在目录
func LocateCatalog() (r string, err error) {
	var candidates []string

	if cwd, er := os.Getwd(); er == nil {
		candidates = append(candidates, filepath.Join(cwd, catalogFileName))
	}

	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		if home, er := os.UserHomeDir(); er == nil {
			configDir = filepath.Join(home, ".config")
		}
	}
	if configDir != "" {
		candidates = append(candidates, filepath.Join(configDir, "copilot-cli", catalogFileName))
	}

	if exe, er := os.Executable(); er == nil {
		candidates = append(candidates, filepath.Join(filepath.Dir(exe), catalogFileName))
	}

	for _, candidate := range candidates {
		if _, er := os.Stat(candidate); er == nil {
			r = candidate
			return
		}
	}
	err = fmt.Errorf("%s not found in %v", catalogFileName, candidates)
	return
}
