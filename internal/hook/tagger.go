// Package hook implements the prepare-commit-msg hook: it prefixes a commit
// message with one [tag] per work directory the staged changes touch.
package hook

import (
	"context"
	"os"
	"sort"
	"strings"

	"github.com/rs/zerolog"

	"github.com/mrz1836/workon/internal/constants"
	"github.com/mrz1836/workon/internal/errors"
)

// StagedLister lists staged paths relative to the repository root.
// git.Runner satisfies it.
type StagedLister interface {
	StagedFiles(ctx context.Context) ([]string, error)
}

// Tagger rewrites commit message files.
type Tagger struct {
	git StagedLister
}

// NewTagger creates a Tagger.
func NewTagger(git StagedLister) *Tagger {
	return &Tagger{git: git}
}

// Tag prefixes the message in msgFile with the tags of the staged files and
// returns the tags. Nothing is written when no files are staged or the
// message already carries the prefix.
func (t *Tagger) Tag(ctx context.Context, msgFile string) ([]string, error) {
	files, err := t.git.StagedFiles(ctx)
	if err != nil {
		return nil, err
	}

	tags := Tags(files)
	if len(tags) == 0 {
		return nil, nil
	}

	info, err := os.Stat(msgFile)
	if err != nil {
		return nil, errors.Wrapf(err, "commit message file %s", msgFile)
	}
	data, err := os.ReadFile(msgFile) //nolint:gosec // path given by git
	if err != nil {
		return nil, errors.Wrapf(err, "read %s", msgFile)
	}

	message, changed := Prepend(string(data), tags)
	if !changed {
		return tags, nil
	}
	if err := os.WriteFile(msgFile, []byte(message), info.Mode().Perm()); err != nil {
		return nil, errors.Wrapf(err, "write %s", msgFile)
	}

	zerolog.Ctx(ctx).Debug().
		Str("component", "hook").
		Strs("tags", tags).
		Msg("tagged commit message")
	return tags, nil
}

// Tags returns the sorted distinct first path segments of files. Files at
// the repository root map to the project tag.
func Tags(files []string) []string {
	set := make(map[string]struct{})
	for _, f := range files {
		f = strings.TrimPrefix(strings.ReplaceAll(f, `\`, "/"), "./")
		if f == "" {
			continue
		}
		first, _, nested := strings.Cut(f, "/")
		if !nested {
			first = constants.DefaultProjectWorkDir
		}
		set[first] = struct{}{}
	}

	tags := make([]string, 0, len(set))
	for tag := range set {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	return tags
}

// Prefix renders tags as "[a][b] ".
func Prefix(tags []string) string {
	if len(tags) == 0 {
		return ""
	}
	return "[" + strings.Join(tags, "][") + "] "
}

// Prepend adds the tag prefix to message unless the message already starts
// with exactly these tags. A message the user typed with the same leading
// tags is indistinguishable from an amended one and is left alone.
func Prepend(message string, tags []string) (string, bool) {
	prefix := Prefix(tags)
	if prefix == "" || leadingTags(message) == strings.TrimSpace(prefix) {
		return message, false
	}
	return prefix + message, true
}

// leadingTags returns the run of "[...]" groups message starts with,
// ignoring leading spaces.
func leadingTags(message string) string {
	s := strings.TrimLeft(message, " ")
	end := 0
	for strings.HasPrefix(s[end:], "[") {
		i := strings.IndexByte(s[end:], ']')
		if i < 0 {
			break
		}
		end += i + 1
	}
	return s[:end]
}
