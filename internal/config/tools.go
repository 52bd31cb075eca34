package config

import (
	"context"
	"fmt"
	"os/exec"
	"regexp"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/mrz1836/workon/internal/constants"
	"github.com/mrz1836/workon/internal/runner"
)

// Pre-compiled regexes for version parsing.
//
//nolint:gochecknoglobals // compiled once
var (
	condaVersionRe   = regexp.MustCompile(`conda (\d+\.\d+(?:\.\d+)?)`)
	gitVersionRe     = regexp.MustCompile(`git version (\d+\.\d+(?:\.\d+)?)`)
	genericVersionRe = regexp.MustCompile(`v?(\d+\.\d+(?:\.\d+)?)`)
)

// ToolStatus represents the installation status of an external tool.
type ToolStatus int

const (
	// ToolStatusMissing indicates the tool is not installed.
	ToolStatusMissing ToolStatus = iota

	// ToolStatusInstalled indicates the tool is installed and meets version requirements.
	ToolStatusInstalled

	// ToolStatusOutdated indicates the tool is installed but below the minimum version.
	ToolStatusOutdated
)

// maxVersionSegments is the number of segments in a semantic version (major.minor.patch).
const maxVersionSegments = 3

// unknownVersion is reported for tools that run but print no version.
const unknownVersion = "unknown"

// String returns a human-readable representation of the tool status.
func (s ToolStatus) String() string {
	switch s {
	case ToolStatusInstalled:
		return "installed"
	case ToolStatusMissing:
		return "missing"
	case ToolStatusOutdated:
		return "outdated"
	default:
		return "unknown"
	}
}

// MarshalJSON implements json.Marshaler for human-readable JSON output.
func (s ToolStatus) MarshalJSON() ([]byte, error) {
	return []byte(`"` + s.String() + `"`), nil
}

// Tool represents an external tool workon shells out to.
type Tool struct {
	Name           string     `json:"name"`
	Required       bool       `json:"required"`
	MinVersion     string     `json:"min_version"`
	CurrentVersion string     `json:"current_version"`
	Status         ToolStatus `json:"status"`
	InstallHint    string     `json:"install_hint"`
}

// ToolDetectionResult holds the results of detecting all tools.
type ToolDetectionResult struct {
	// Tools is ordered by name.
	Tools []Tool `json:"tools"`

	// HasMissingRequired indicates if any required tools are missing or outdated.
	HasMissingRequired bool `json:"has_missing_required"`
}

// MissingRequiredTools returns a list of required tools that are missing or outdated.
func (r *ToolDetectionResult) MissingRequiredTools() []Tool {
	var missing []Tool
	for _, tool := range r.Tools {
		if tool.Required && (tool.Status == ToolStatusMissing || tool.Status == ToolStatusOutdated) {
			missing = append(missing, tool)
		}
	}
	return missing
}

// ToolChecker probes the executables named in a Config.
type ToolChecker struct {
	cfg      *Config
	runner   runner.CommandRunner
	lookPath func(file string) (string, error)
}

// NewToolChecker creates a checker running version probes through r.
// A nil cfg uses the defaults.
func NewToolChecker(cfg *Config, r runner.CommandRunner) *ToolChecker {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	return &ToolChecker{cfg: cfg, runner: r, lookPath: exec.LookPath}
}

// WithLookPath replaces the PATH lookup.
func (c *ToolChecker) WithLookPath(lookPath func(file string) (string, error)) *ToolChecker {
	c.lookPath = lookPath
	return c
}

// probe describes how to find and version one tool.
type probe struct {
	name        string
	command     string
	minVersion  string
	required    bool
	installHint string
	parse       func(output string) string
}

// probes is ordered by tool name.
func (c *ToolChecker) probes() []probe {
	return []probe{
		{
			name:        constants.ToolConda,
			command:     c.cfg.Conda.Executable,
			minVersion:  constants.MinVersionConda,
			required:    true,
			installHint: "Install Miniforge from https://github.com/conda-forge/miniforge",
			parse:       parseCondaVersion,
		},
		{
			name:        constants.ToolCondaDevenv,
			command:     constants.ToolCondaDevenv,
			required:    true,
			installHint: "conda install -n base -c conda-forge conda-devenv",
			parse:       parseGenericVersion,
		},
		{
			name:        constants.ToolCreateWrappers,
			command:     c.cfg.Wrappers.Tool,
			required:    true,
			installHint: "conda install -n base -c conda-forge conda-wrappers",
			parse:       parseGenericVersion,
		},
		{
			name:        constants.ToolDVC,
			command:     c.cfg.DVC.Executable,
			minVersion:  constants.MinVersionDVC,
			installHint: "Add dvc to the project work dir's environment.run.yml",
			parse:       parseGenericVersion,
		},
		{
			name:        constants.ToolGit,
			command:     constants.ToolGit,
			minVersion:  constants.MinVersionGit,
			required:    true,
			installHint: "Install Git from https://git-scm.com/downloads (version 2.20+)",
			parse:       parseGitVersion,
		},
	}
}

// Detect probes every tool concurrently. dvc is optional: only set-dvc-repo
// needs it and it usually comes from the project environment.
func (c *ToolChecker) Detect(ctx context.Context) (*ToolDetectionResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, constants.ToolDetectionTimeout)
	defer cancel()

	probes := c.probes()
	result := &ToolDetectionResult{Tools: make([]Tool, len(probes))}

	g, gCtx := errgroup.WithContext(ctx)
	for i, p := range probes {
		g.Go(func() error {
			result.Tools[i] = c.check(gCtx, p)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to detect tools: %w", err)
	}

	result.HasMissingRequired = len(result.MissingRequiredTools()) > 0
	zerolog.Ctx(ctx).Debug().
		Str("component", "config").
		Bool("missing_required", result.HasMissingRequired).
		Msg("detected tools")
	return result, nil
}

func (c *ToolChecker) check(ctx context.Context, p probe) Tool {
	tool := Tool{
		Name:        p.name,
		Required:    p.required,
		MinVersion:  p.minVersion,
		InstallHint: p.installHint,
		Status:      ToolStatusMissing,
	}
	if _, err := c.lookPath(p.command); err != nil {
		return tool
	}

	tool.Status = ToolStatusInstalled
	tool.CurrentVersion = unknownVersion

	// Some tools print their version on stderr, and create-wrappers has none.
	res, err := c.runner.Run(ctx, runner.Command{Name: p.command, Args: []string{constants.VersionFlagStandard}})
	if err != nil || res == nil {
		return tool
	}
	version := p.parse(res.Stdout + res.Stderr)
	if version == "" {
		return tool
	}

	tool.CurrentVersion = version
	if p.minVersion != "" && CompareVersions(version, p.minVersion) < 0 {
		tool.Status = ToolStatusOutdated
	}
	return tool
}

// parseCondaVersion parses "conda 23.7.4" → "23.7.4"
func parseCondaVersion(output string) string {
	if matches := condaVersionRe.FindStringSubmatch(output); len(matches) >= 2 {
		return matches[1]
	}
	return parseGenericVersion(output)
}

// parseGitVersion parses "git version 2.39.0" → "2.39.0"
func parseGitVersion(output string) string {
	if matches := gitVersionRe.FindStringSubmatch(output); len(matches) >= 2 {
		return matches[1]
	}
	return ""
}

// parseGenericVersion extracts a version number from generic output.
func parseGenericVersion(output string) string {
	if matches := genericVersionRe.FindStringSubmatch(output); len(matches) >= 2 {
		return matches[1]
	}
	return ""
}

// CompareVersions compares major.minor.patch of two versions and returns
// -1, 0 or 1. Pre-release suffixes are ignored.
func CompareVersions(current, required string) int {
	a := parseVersionParts(strings.TrimPrefix(current, "v"))
	b := parseVersionParts(strings.TrimPrefix(required, "v"))
	for i := range a {
		switch {
		case a[i] < b[i]:
			return -1
		case a[i] > b[i]:
			return 1
		}
	}
	return 0
}

// parseVersionParts parses a version string into [major, minor, patch].
func parseVersionParts(version string) [maxVersionSegments]int {
	var parts [maxVersionSegments]int
	segments := strings.Split(version, ".")

	for i := 0; i < len(segments) && i < maxVersionSegments; i++ {
		numStr := segments[i]
		for j, c := range numStr {
			if c < '0' || c > '9' {
				numStr = numStr[:j]
				break
			}
		}
		if numStr != "" {
			parts[i], _ = strconv.Atoi(numStr)
		}
	}

	return parts
}

// FormatMissingToolsError creates a formatted error message for missing tools.
func FormatMissingToolsError(missing []Tool) string {
	if len(missing) == 0 {
		return ""
	}

	var sb strings.Builder
	sb.WriteString("Missing required tools:\n")
	for _, tool := range missing {
		status := tool.Status.String()
		if tool.Status == ToolStatusOutdated {
			status = fmt.Sprintf("outdated (have %s, need %s)", tool.CurrentVersion, tool.MinVersion)
		}
		fmt.Fprintf(&sb, "  %s: %s\n    %s\n", tool.Name, status, tool.InstallHint)
	}
	return sb.String()
}
