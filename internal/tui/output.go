package tui

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/mrz1836/workon/internal/errors"
)

// Output formats.
const (
	FormatText = "text"
	FormatJSON = "json"
)

// Output writes user-facing results.
type Output interface {
	// Success prints a success message.
	Success(msg string)
	// Error prints an error with its suggested action, if any.
	Error(err error)
	// Warning prints a warning.
	Warning(msg string)
	// Info prints a plain line.
	Info(msg string)
	// Command prints a shell command for the user to run, as "> cmd".
	Command(cmd string)
	// JSON writes v as indented JSON.
	JSON(v any) error
}

// NewOutput returns the Output for format.
func NewOutput(w io.Writer, format string) Output {
	if format == FormatJSON {
		return NewJSONOutput(w)
	}
	return NewTextOutput(w)
}

// ValidateFormat checks an --output value.
func ValidateFormat(format string) error {
	switch format {
	case "", FormatText, FormatJSON:
		return nil
	default:
		return errors.Wrapf(errors.ErrInvalidOutputFormat, "%q (want text or json)", format)
	}
}

// TextOutput prints styled lines.
type TextOutput struct {
	w      io.Writer
	styles *OutputStyles
}

// NewTextOutput creates a TextOutput.
func NewTextOutput(w io.Writer) *TextOutput {
	CheckNoColor()
	return &TextOutput{w: w, styles: NewOutputStyles()}
}

// Success prints a success message.
func (o *TextOutput) Success(msg string) {
	_, _ = fmt.Fprintln(o.w, o.styles.Success.Render(msg))
}

// Error prints the error and its actionable hint.
func (o *TextOutput) Error(err error) {
	if pe, ok := errors.AsPrecondition(err); ok {
		o.Info(pe.Reason)
		if pe.Command != "" {
			o.Command(pe.Command)
		}
		return
	}

	msg, action := errors.Actionable(err)
	_, _ = fmt.Fprintln(o.w, o.styles.Error.Render(msg))
	if detail := err.Error(); detail != msg {
		_, _ = fmt.Fprintln(o.w, o.styles.Dim.Render(detail))
	}
	if action != "" {
		_, _ = fmt.Fprintln(o.w, o.styles.Dim.Render(action))
	}
}

// Warning prints a warning.
func (o *TextOutput) Warning(msg string) {
	_, _ = fmt.Fprintln(o.w, o.styles.Warning.Render(msg))
}

// Info prints a plain line.
func (o *TextOutput) Info(msg string) {
	_, _ = fmt.Fprintln(o.w, o.styles.Info.Render(msg))
}

// Command prints "> cmd".
func (o *TextOutput) Command(cmd string) {
	_, _ = fmt.Fprintln(o.w, o.styles.Command.Render("> "+cmd))
}

// JSON writes v as indented JSON.
func (o *TextOutput) JSON(v any) error {
	return encodeJSON(o.w, v)
}

// JSONOutput writes one JSON object per message.
type JSONOutput struct {
	w io.Writer
}

// NewJSONOutput creates a JSONOutput.
func NewJSONOutput(w io.Writer) *JSONOutput {
	return &JSONOutput{w: w}
}

type jsonMessage struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

type jsonError struct {
	Type       string `json:"type"`
	Message    string `json:"message"`
	Details    string `json:"details,omitempty"`
	Suggestion string `json:"suggestion,omitempty"`
	Command    string `json:"command,omitempty"`
}

func (o *JSONOutput) emit(v any) {
	//nolint:errchkjson // Method has no error return per interface contract
	_ = json.NewEncoder(o.w).Encode(v)
}

// Success writes {"type":"success",...}.
func (o *JSONOutput) Success(msg string) { o.emit(jsonMessage{Type: "success", Message: msg}) }

// Warning writes {"type":"warning",...}.
func (o *JSONOutput) Warning(msg string) { o.emit(jsonMessage{Type: "warning", Message: msg}) }

// Info writes {"type":"info",...}.
func (o *JSONOutput) Info(msg string) { o.emit(jsonMessage{Type: "info", Message: msg}) }

// Command writes {"type":"command",...}.
func (o *JSONOutput) Command(cmd string) { o.emit(jsonMessage{Type: "command", Message: cmd}) }

// Error writes the error with its suggestion or corrective command.
func (o *JSONOutput) Error(err error) {
	out := jsonError{Type: "error", Message: err.Error()}
	if pe, ok := errors.AsPrecondition(err); ok {
		out.Message = pe.Reason
		out.Command = pe.Command
		out.Details = pe.Err.Error()
	} else {
		out.Message, out.Suggestion = errors.Actionable(err)
		if out.Message != err.Error() {
			out.Details = err.Error()
		}
	}
	o.emit(out)
}

// JSON writes v as indented JSON.
func (o *JSONOutput) JSON(v any) error {
	return encodeJSON(o.w, v)
}

func encodeJSON(w io.Writer, v any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(v); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return nil
}
