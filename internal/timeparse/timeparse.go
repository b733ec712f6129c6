// Package timeparse implements the §6 time-offset grammar used by the
// `(TIME` / `)TIME` tracking commands: empty means now, a signed
// integer means minutes from now, and anything else is handed to a
// human-language expression parser. Parsing is best-effort; callers
// reject the command and surface the error rather than emit a bad
// event.
package timeparse

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/olebedev/when"
	"github.com/olebedev/when/rules/common"
	"github.com/olebedev/when/rules/en"
)

var parser = newParser()

func newParser() *when.Parser {
	w := when.New(nil)
	w.Add(en.All...)
	w.Add(common.All...)
	return w
}

// Parse resolves input (as typed after `(` or `)`) to an absolute
// time relative to now.
func Parse(input string, now time.Time) (time.Time, error) {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return now, nil
	}
	if minutes, err := strconv.Atoi(trimmed); err == nil {
		return now.Add(time.Duration(minutes) * time.Minute), nil
	}

	res, err := parser.Parse(trimmed, now)
	if err != nil {
		return time.Time{}, fmt.Errorf("timeparse: %q: %w", input, err)
	}
	if res == nil {
		return time.Time{}, fmt.Errorf("timeparse: %q: no recognized time expression", input)
	}
	return res.Time, nil
}
