// Command metabox renders, sanitizes and serves meta boxes defined in YAML or
// JSON files.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

// exitErr carries a numeric exit code through the cobra error path.
type exitErr struct {
	code int
	msg  string
}

func (e *exitErr) Error() string { return e.msg }

func codeError(code int, format string, args ...any) error {
	return &exitErr{code: code, msg: fmt.Sprintf(format, args...)}
}

func main() {
	// best effort: a missing .env is fine
	_ = godotenv.Load()

	a := newApp(os.Stdin, os.Stdout, os.Stderr)
	if err := a.command().Execute(); err != nil {
		var ee *exitErr
		if errors.As(err, &ee) {
			fmt.Fprintln(os.Stderr, "Error:", ee.msg)
			os.Exit(ee.code)
		}
		os.Exit(1)
	}
}
