package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/mrz1836/workon/internal/config"
	"github.com/mrz1836/workon/internal/errors"
	"github.com/mrz1836/workon/internal/git"
	"github.com/mrz1836/workon/internal/hook"
	"github.com/mrz1836/workon/internal/wrapper"
)

// wrapped is one entry of a wrapper report.
type wrapped struct {
	Exe  string        `json:"exe"`
	Pair *wrapper.Pair `json:"wrappers"`
}

func runProjectSetup(ctx context.Context, t *taskEnv) error {
	pairs, err := createProjectWrappers(ctx, t)
	if err != nil {
		return err
	}
	remote, err := setDVCRepo(ctx, t)
	if err != nil {
		return err
	}
	if t.json {
		return t.out.JSON(map[string]any{"wrappers": pairs, "dvc_remote": remote})
	}
	return nil
}

func runCreateProjectWrappers(ctx context.Context, t *taskEnv) error {
	pairs, err := createProjectWrappers(ctx, t)
	if err != nil {
		return err
	}
	if t.json {
		return t.out.JSON(pairs)
	}
	return nil
}

func createProjectWrappers(ctx context.Context, t *taskEnv) ([]wrapped, error) {
	wd, err := t.ec.Project.Get(t.ec.Project.ProjectWorkDir)
	if err != nil {
		return nil, err
	}
	unlock, err := t.ec.Lock(wd)
	if err != nil {
		return nil, err
	}
	defer unlock()

	gen := t.ec.Wrapper()
	var result []wrapped
	for _, exe := range t.ec.Config.Wrappers.ProjectExecutables {
		pair, err := gen.Create(ctx, exe, wd.Name, true)
		if err != nil {
			return result, errors.Wrapf(err, "wrap %s", exe)
		}
		printPair(t, exe, pair)
		result = append(result, wrapped{Exe: exe, Pair: pair})
	}
	return result, nil
}

// dvcRemote reports the configured DVC remote.
type dvcRemote struct {
	Name   string `json:"name"`
	URL    string `json:"url"`
	Pulled string `json:"pulled"`
}

func runSetDVCRepo(ctx context.Context, t *taskEnv) error {
	remote, err := setDVCRepo(ctx, t)
	if err != nil {
		return err
	}
	if t.json {
		return t.out.JSON(remote)
	}
	return nil
}

// setDVCRepo points the local DVC remote at the shared folder. A remote url
// already configured wins over --dir and dvc.remote_dir.
func setDVCRepo(ctx context.Context, t *taskEnv) (*dvcRemote, error) {
	cfg := t.ec.Config.DVC
	client := t.ec.DVC()

	dir, err := client.RemoteURL(ctx, cfg.RemoteName)
	if err != nil {
		return nil, err
	}
	if dir == "" {
		dir = t.opts.Dir
	}
	if dir == "" {
		dir = cfg.RemoteDir
	}
	if dir == "" {
		return nil, errors.Wrap(errors.ErrNotADirectory, "no DVC remote directory given; pass --dir or set dvc.remote_dir")
	}

	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, errors.Wrapf(err, "resolve %s", dir)
	}
	if info, statErr := os.Stat(abs); statErr != nil || !info.IsDir() {
		return nil, errors.Wrapf(errors.ErrNotADirectory, "%s", abs)
	}

	zerolog.Ctx(ctx).Info().
		Str("component", "dvc").
		Str("remote", cfg.RemoteName).
		Str("url", abs).
		Msg("setting DVC remote")

	if err := client.AddRemote(ctx, cfg.RemoteName, abs); err != nil {
		return nil, err
	}
	sample := filepath.Join(t.ec.Root, filepath.FromSlash(cfg.SampleFile))
	if err := client.Pull(ctx, sample); err != nil {
		return nil, err
	}
	return &dvcRemote{Name: cfg.RemoteName, URL: abs, Pulled: sample}, nil
}

func runProjectRoot(_ context.Context, t *taskEnv) error {
	if t.json {
		return t.out.JSON(map[string]string{"root": t.ec.Root})
	}
	t.out.Info(t.ec.Root)
	return nil
}

func runWorkDirList(_ context.Context, t *taskEnv) error {
	wds, err := t.ec.Project.List()
	if err != nil {
		return err
	}
	if t.json {
		return t.out.JSON(wds)
	}
	for _, wd := range wds {
		t.out.Info(wd.Name)
	}
	return nil
}

func runTools(ctx context.Context, t *taskEnv) error {
	// Tool names come from configuration; a project may not be resolvable here.
	cfg := config.DefaultConfig()
	if root, err := resolveRoot(ctx, t.root, t.sys.Getwd); err == nil {
		if loaded, loadErr := config.Load(ctx, root); loadErr == nil {
			cfg = loaded
		}
	}

	result, err := config.NewToolChecker(cfg, t.sys.Runner).Detect(ctx)
	if err != nil {
		return err
	}

	if t.json {
		if err := t.out.JSON(result); err != nil {
			return err
		}
	} else {
		for _, tool := range result.Tools {
			line := fmt.Sprintf("%-16s %-10s %s", tool.Name, tool.Status, tool.CurrentVersion)
			if tool.Status == config.ToolStatusInstalled {
				t.out.Success(line)
			} else {
				t.out.Warning(line)
			}
		}
	}

	if result.HasMissingRequired {
		if !t.json {
			t.out.Info(config.FormatMissingToolsError(result.MissingRequiredTools()))
		}
		return errors.ErrMissingRequiredTools
	}
	return nil
}

func runPrepareCommitMsg(ctx context.Context, t *taskEnv) error {
	g, err := t.ec.Git(ctx)
	if err != nil {
		return err
	}
	tags, err := hook.NewTagger(g).Tag(ctx, t.args[0])
	if err != nil {
		return err
	}
	if t.json {
		return t.out.JSON(map[string]any{"tags": tags})
	}
	return nil
}

func runInstallHook(ctx context.Context, t *taskEnv) error {
	exe, err := t.ec.sys.Executable()
	if err != nil {
		return errors.Wrap(err, "locate workon executable")
	}
	result, err := git.InstallHook(ctx, t.ec.Root, exe, t.opts.Force)
	if err != nil {
		return err
	}
	if t.json {
		return t.out.JSON(result)
	}
	t.out.Success("Installed " + result.Path)
	return nil
}

func printPair(t *taskEnv, exe string, pair *wrapper.Pair) {
	if t.json || pair == nil {
		return
	}
	t.out.Info(fmt.Sprintf("created wrapper %s for %s", pair.Bare, exe))
	if pair.EnvQualified != "" {
		t.out.Info(fmt.Sprintf("created wrapper %s for %s", pair.EnvQualified, exe))
	}
}
