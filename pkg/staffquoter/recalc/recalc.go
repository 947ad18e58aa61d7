// Package recalc runs the external workbook recalculation script.
package recalc

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
)

// DefaultTimeoutSeconds is passed to the script as its recalculation timeout.
const DefaultTimeoutSeconds = 60

// DefaultInterpreter runs the script when none is configured.
const DefaultInterpreter = "python3"

// Status is the outcome of a recalculation attempt.
type Status string

const (
	StatusOK      Status = "ok"
	StatusFailed  Status = "failed"
	StatusSkipped Status = "skipped"
)

// Result describes one recalculation attempt.
type Result struct {
	Status Status `json:"status"`
	// Reason explains a skipped run.
	Reason     string `json:"reason,omitempty"`
	ReturnCode *int   `json:"return_code,omitempty"`
	Stdout     string `json:"stdout,omitempty"`
	Stderr     string `json:"stderr,omitempty"`
	// Parsed is the JSON object the script printed, if any.
	Parsed map[string]any `json:"parsed,omitempty"`
}

// Runner invokes `<Interpreter> <Script> <workbook> <TimeoutSeconds>`.
type Runner struct {
	Interpreter    string
	Script         string
	TimeoutSeconds int

	log logrus.FieldLogger
}

// NewRunner returns a Runner for script using the default interpreter and timeout.
func NewRunner(script string, log logrus.FieldLogger) *Runner {
	if log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		log = l
	}
	return &Runner{
		Interpreter:    DefaultInterpreter,
		Script:         script,
		TimeoutSeconds: DefaultTimeoutSeconds,
		log:            log,
	}
}

// Run recalculates the workbook. A missing script yields a skipped result;
// a non-zero exit yields a failed result. Only a process that cannot be
// started or a cancelled context is an error.
func (r *Runner) Run(ctx context.Context, workbookPath string) (*Result, error) {
	if _, err := os.Stat(r.Script); err != nil {
		r.log.WithField("script", r.Script).Warn("recalc script not found, skipping")
		return &Result{
			Status: StatusSkipped,
			Reason: fmt.Sprintf("recalc script not found: %s", r.Script),
		}, nil
	}

	interpreter := r.Interpreter
	if interpreter == "" {
		interpreter = DefaultInterpreter
	}
	timeout := r.TimeoutSeconds
	if timeout <= 0 {
		timeout = DefaultTimeoutSeconds
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, interpreter, r.Script, workbookPath, strconv.Itoa(timeout))
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	r.log.WithFields(logrus.Fields{
		"script":   r.Script,
		"workbook": workbookPath,
	}).Info("running recalc")

	code := 0
	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) || ctx.Err() != nil {
			return nil, fmt.Errorf("running recalc script: %w", err)
		}
		code = exitErr.ExitCode()
	}

	status := StatusOK
	if code != 0 {
		status = StatusFailed
	}
	r.log.WithFields(logrus.Fields{
		"status":      status,
		"return_code": code,
	}).Info("recalc finished")

	return &Result{
		Status:     status,
		ReturnCode: &code,
		Stdout:     strings.TrimSpace(stdout.String()),
		Stderr:     strings.TrimSpace(stderr.String()),
		Parsed:     ParseJSONOutput(stdout.String()),
	}, nil
}

// ParseJSONOutput decodes stdout as a JSON object. When the whole output is
// not JSON, the last line that decodes as an object wins.
func ParseJSONOutput(stdout string) map[string]any {
	text := strings.TrimSpace(stdout)
	if text == "" {
		return nil
	}

	var parsed map[string]any
	if err := json.Unmarshal([]byte(text), &parsed); err == nil {
		return parsed
	}

	lines := strings.Split(text, "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		line := strings.TrimSpace(lines[i])
		if line == "" {
			continue
		}
		var candidate map[string]any
		if err := json.Unmarshal([]byte(line), &candidate); err == nil {
			return candidate
		}
	}

	return nil
}
