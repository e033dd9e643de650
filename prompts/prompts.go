package prompts

import (
	"fmt"
	"regexp"
	"strings"
)

// 占位符形如 $path、$diff、$staged-diff，紧跟 $ 的裸标识符
var placeholderPattern = regexp.MustCompile(`\$([A-Za-z_][A-Za-z0-9_-]*)`)

type UnresolvedPlaceholderError struct {
	Names []string
}

func (this *UnresolvedPlaceholderError) Error() string {
	return fmt.Sprintf("unresolved placeholders: $%s", strings.Join(this.Names, ", $"))
}

// Placeholders 返回模板中出现的占位符名称，按首次出现顺序去重
func Placeholders(template string) (r []string) {
	seen := map[string]bool{}
	for _, m := range placeholderPattern.FindAllStringSubmatch(template, -1) {
		if seen[m[1]] {
			continue
		}
		seen[m[1]] = true
		r = append(r, m[1])
	}
	return
}

// Resolve 对模板做单趟字面替换。替换值不会被再次扫描，未知占位符是硬错误。
func Resolve(template string, bindings map[string]string) (r string, err error) {
	var unknown []string
	seen := map[string]bool{}

	r = placeholderPattern.ReplaceAllStringFunc(template, func(m string) string {
		name := m[1:]
		value, ok := bindings[name]
		if !ok {
			if !seen[name] {
				seen[name] = true
				unknown = append(unknown, name)
			}
			return m
		}
		return value
	})

	if len(unknown) > 0 {
		r = ""
		err = &UnresolvedPlaceholderError{Names: unknown}
		return
	}
	return
}
