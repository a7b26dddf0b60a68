// Package log provides step-by-step progress reporting for pipeline runs.
// Output adapts to the execution environment: interactive terminals get
// compact step lines, automation gets one JSON event per step.
package log

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/term"
)

// Mode selects how pipeline progress is rendered.
type Mode string

const (
	ModeAuto  Mode = "auto"
	ModePlain Mode = "plain"
	ModeJSON  Mode = "json"
)

// ParseMode validates a --progress flag value.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeAuto, ModePlain, ModeJSON:
		return Mode(s), nil
	}
	return "", fmt.Errorf("invalid progress mode: %s (valid: auto, plain, json)", s)
}

// Resolve maps ModeAuto to a concrete mode: plain when stderr is an
// interactive terminal, JSON otherwise. Explicit modes pass through.
func (m Mode) Resolve() Mode {
	if m != ModeAuto {
		return m
	}
	if term.IsTerminal(int(os.Stderr.Fd())) {
		return ModePlain
	}
	return ModeJSON
}

// StepLogger reports progress through a fixed sequence of pipeline steps.
type StepLogger struct {
	mode        Mode
	name        string
	steps       []string
	current     int
	started     time.Time
	stepStarted time.Time
	out         io.Writer
	jsonLog     zerolog.Logger
}

// NewStepLogger creates a step logger writing to stderr in the resolved mode.
func NewStepLogger(name string, steps []string, mode Mode) *StepLogger {
	return newStepLogger(name, steps, mode, os.Stderr)
}

func newStepLogger(name string, steps []string, mode Mode, out io.Writer) *StepLogger {
	return &StepLogger{
		mode:    mode.Resolve(),
		name:    name,
		steps:   steps,
		current: -1,
		started: time.Now(),
		out:     out,
		jsonLog: zerolog.New(out).With().Timestamp().Str("pipeline", name).Logger(),
	}
}

// StartStep begins the named pipeline step.
func (sl *StepLogger) StartStep(stepName string) {
	stepIndex := -1
	for i, step := range sl.steps {
		if step == stepName {
			stepIndex = i
			break
		}
	}
	if stepIndex == -1 {
		log.Warn().Str("step", stepName).Msg("unknown pipeline step")
		return
	}

	sl.current = stepIndex
	sl.stepStarted = time.Now()

	if sl.mode == ModeJSON {
		sl.jsonLog.Info().
			Str("step", stepName).
			Int("step_number", stepIndex+1).
			Int("total_steps", len(sl.steps)).
			Msg("step started")
		return
	}
	fmt.Fprintf(sl.out, "[%d/%d] %s\n", stepIndex+1, len(sl.steps), stepName)
}

// CompleteStep marks the current step as completed.
func (sl *StepLogger) CompleteStep() {
	if sl.current < 0 {
		return
	}
	elapsed := time.Since(sl.stepStarted)

	if sl.mode == ModeJSON {
		sl.jsonLog.Info().
			Str("step", sl.steps[sl.current]).
			Dur("duration", elapsed).
			Msg("step completed")
		return
	}
	fmt.Fprintf(sl.out, "[%d/%d] %s done (%v)\n",
		sl.current+1, len(sl.steps), sl.steps[sl.current], elapsed.Round(time.Millisecond))
}

// Finish reports overall pipeline completion.
func (sl *StepLogger) Finish() {
	total := time.Since(sl.started)

	if sl.mode == ModeJSON {
		sl.jsonLog.Info().
			Dur("total_duration", total).
			Int("total_steps", len(sl.steps)).
			Msg("pipeline completed")
		return
	}
	fmt.Fprintf(sl.out, "%s completed in %v\n", sl.name, total.Round(time.Millisecond))
}

// Fail reports the pipeline as failed at the current step.
func (sl *StepLogger) Fail(reason string) {
	step := "unknown"
	if sl.current >= 0 && sl.current < len(sl.steps) {
		step = sl.steps[sl.current]
	}

	if sl.mode == ModeJSON {
		sl.jsonLog.Error().
			Str("failed_step", step).
			Str("reason", reason).
			Msg("pipeline failed")
		return
	}
	fmt.Fprintf(sl.out, "%s failed at %s: %s\n", sl.name, step, reason)
}
