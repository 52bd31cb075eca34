// Package scripts turns the files in a work directory's scripts folder into
// launchers and environment wrappers.
package scripts

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rs/zerolog"

	"github.com/mrz1836/workon/internal/constants"
	"github.com/mrz1836/workon/internal/errors"
	"github.com/mrz1836/workon/internal/scaffold"
	"github.com/mrz1836/workon/internal/workdir"
	"github.com/mrz1836/workon/internal/wrapper"
)

// Kind classifies a script by extension.
type Kind string

// Script kinds.
const (
	KindCmdLines Kind = "cmdlines"
	KindPython   Kind = "py"
	KindBatch    Kind = "bat"
	KindShell    Kind = "sh"
	KindUnknown  Kind = ""
)

// Classify returns the kind of the script at path.
func Classify(path string) Kind {
	switch Kind(strings.TrimPrefix(filepath.Ext(path), ".")) {
	case KindCmdLines:
		return KindCmdLines
	case KindPython:
		return KindPython
	case KindBatch:
		return KindBatch
	case KindShell:
		return KindShell
	default:
		return KindUnknown
	}
}

// Wrapper creates environment wrappers. *wrapper.Generator satisfies it.
type Wrapper interface {
	Create(ctx context.Context, exe, workDirName string, test bool) (*wrapper.Pair, error)
}

// Wrapped records one processed script.
type Wrapped struct {
	Script string        `json:"script"`
	Kind   Kind          `json:"kind"`
	Pair   *wrapper.Pair `json:"wrappers"`
}

// Report is the outcome of processing a scripts folder.
type Report struct {
	WorkDir string    `json:"work_dir"`
	Wrapped []Wrapped `json:"wrapped"`
	Skipped []string  `json:"skipped"`
}

// Processor wraps every script of a work directory.
type Processor struct {
	project *workdir.Project
	wrapper Wrapper
}

// New creates a Processor.
func New(project *workdir.Project, w Wrapper) *Processor {
	return &Processor{project: project, wrapper: w}
}

// Process wraps the scripts of work directory workDirName. Launchers for
// cmdlines and Python scripts are generated into scripts/bin; scripts with
// other extensions are skipped and reported.
func (p *Processor) Process(ctx context.Context, workDirName string) (*Report, error) {
	wd, err := p.project.Get(workDirName)
	if err != nil {
		return nil, err
	}

	if info, err := os.Stat(wd.ScriptsDir()); err != nil || !info.IsDir() {
		return nil, errors.Wrapf(errors.ErrScriptsDirMissing, "%s", wd.ScriptsDir())
	}
	if err := os.MkdirAll(wd.ScriptsBinDir(), 0o750); err != nil {
		return nil, errors.Wrapf(err, "create %s", wd.ScriptsBinDir())
	}

	entries, err := os.ReadDir(wd.ScriptsDir())
	if err != nil {
		return nil, errors.Wrapf(err, "read %s", wd.ScriptsDir())
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	logger := zerolog.Ctx(ctx).With().Str("component", "scripts").Str("work_dir", wd.Name).Logger()
	report := &Report{WorkDir: wd.Name}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if err := ctx.Err(); err != nil {
			return report, err
		}

		script := filepath.Join(wd.ScriptsDir(), entry.Name())
		kind := Classify(script)

		exe, err := p.prepare(wd, script, kind)
		if errors.Is(err, errors.ErrEmptyValue) {
			logger.Warn().Str("script", script).Msg("no commands, skipping")
			report.Skipped = append(report.Skipped, script)
			continue
		}
		if err != nil {
			return report, err
		}
		if exe == "" {
			logger.Warn().Str("script", script).Msg("not processed")
			report.Skipped = append(report.Skipped, script)
			continue
		}

		pair, err := p.wrapper.Create(ctx, exe, wd.Name, true)
		if err != nil {
			return report, errors.Wrapf(err, "wrap %s", entry.Name())
		}
		report.Wrapped = append(report.Wrapped, Wrapped{Script: script, Kind: kind, Pair: pair})
	}

	return report, nil
}

// prepare returns the executable to wrap for script, or "" when the kind is
// not handled.
func (p *Processor) prepare(wd *workdir.WorkDir, script string, kind Kind) (string, error) {
	stem := strings.TrimSuffix(filepath.Base(script), filepath.Ext(script))
	bin := filepath.Join(wd.ScriptsBinDir(), stem)

	switch kind {
	case KindCmdLines:
		data, err := os.ReadFile(script) //nolint:gosec // user script in the work dir
		if err != nil {
			return "", errors.Wrapf(err, "read %s", script)
		}
		return bin, WriteLaunchers(bin, strings.Split(string(data), "\n"))

	case KindPython:
		return bin, WriteLaunchers(bin, []string{constants.ToolPython + " " + quote(script)})

	case KindBatch:
		return script, nil

	case KindShell:
		if err := wrapper.CopyFile(script, bin); err != nil {
			return "", err
		}
		return bin, nil

	default:
		return "", nil
	}
}

// WriteLaunchers writes the POSIX launcher to bin and the Windows launcher to
// bin.bat, both executable.
func WriteLaunchers(bin string, commands []string) error {
	trimmed := make([]string, len(commands))
	for i, c := range commands {
		trimmed[i] = strings.TrimSpace(c)
	}

	posix, windows, err := scaffold.Launchers(trimmed)
	if err != nil {
		return err
	}

	files := map[string]string{bin: posix, bin + ".bat": windows}
	for path, content := range files {
		if err := os.WriteFile(path, []byte(content), 0o755); err != nil { //nolint:gosec // launchers must be executable
			return errors.Wrapf(err, "write %s", path)
		}
		// WriteFile keeps the mode of an existing file.
		if err := os.Chmod(path, 0o755); err != nil { //nolint:gosec // launchers must be executable
			return errors.Wrapf(err, "chmod %s", path)
		}
	}
	return nil
}

func quote(path string) string {
	if strings.ContainsAny(path, " \t") {
		return `"` + path + `"`
	}
	return path
}
