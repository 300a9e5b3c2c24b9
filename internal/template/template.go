package template

import (
	"fmt"
	"regexp"
)

var varRe = regexp.MustCompile(`\{\{([a-zA-Z_][a-zA-Z0-9_]*)\}\}`)

// Resolve replaces every {{name}} placeholder in s with vars[name].
// A placeholder with no entry in vars is an error.
func Resolve(s string, vars map[string]string) (string, error) {
	var resolveErr error

	result := varRe.ReplaceAllStringFunc(s, func(match string) string {
		m := varRe.FindStringSubmatch(match)
		val, ok := vars[m[1]]
		if !ok {
			resolveErr = fmt.Errorf("unresolved placeholder %q", m[1])
			return match
		}
		return val
	})
	if resolveErr != nil {
		return "", resolveErr
	}
	return result, nil
}
