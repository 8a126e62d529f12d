package branding

import (
	"errors"
	"fmt"
	"strings"

	"github.com/evanw/esbuild/pkg/api"
)

// Minifier compresses and obfuscates JavaScript source.
type Minifier interface {
	Minify(source string) (string, error)
}

// MinifierFunc adapts a function to Minifier.
type MinifierFunc func(source string) (string, error)

func (f MinifierFunc) Minify(source string) (string, error) {
	return f(source)
}

// EsbuildMinifier strips comments and whitespace, renames local
// identifiers, removes dead code and drops console/debugger statements.
type EsbuildMinifier struct{}

// Minify 调用 esbuild Transform API 压缩脚本。
func (EsbuildMinifier) Minify(source string) (string, error) {
	result := api.Transform(source, api.TransformOptions{
		Loader:            api.LoaderJS,
		Format:            api.FormatIIFE,
		Target:            api.ES2015,
		MinifyWhitespace:  true,
		MinifyIdentifiers: true,
		MinifySyntax:      true,
		Drop:              api.DropConsole | api.DropDebugger,
		LegalComments:     api.LegalCommentsNone,
		Charset:           api.CharsetUTF8,
	})
	if len(result.Errors) > 0 {
		msgs := make([]string, 0, len(result.Errors))
		for _, msg := range result.Errors {
			msgs = append(msgs, msg.Text)
		}
		return "", fmt.Errorf("esbuild: %s", strings.Join(msgs, "; "))
	}
	code := strings.TrimSpace(string(result.Code))
	if code == "" {
		return "", errors.New("esbuild produced empty output")
	}
	return code, nil
}

// TryMinify runs m over source and returns the original source unchanged
// if m is nil, fails, panics or returns nothing. It never returns an error.
func TryMinify(m Minifier, source string) (out string, minified bool) {
	if m == nil {
		return source, false
	}
	defer func() {
		if r := recover(); r != nil {
			out, minified = source, false
		}
	}()

	code, err := m.Minify(source)
	if err != nil || strings.TrimSpace(code) == "" {
		return source, false
	}
	return code, true
}
