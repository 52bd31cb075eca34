// Package workon drives a work directory toward the ready state: it creates
// the directory when needed, composes its environment, refreshes wrappers,
// runs setup tasks and reports the manual steps that remain.
//
// Import rules:
//   - CAN import: internal/constants, internal/errors, internal/workdir, internal/flock, std lib
//   - MUST NOT import: internal/cli, internal/tui
package workon

import (
	"slices"

	"github.com/mrz1836/workon/internal/constants"
	"github.com/mrz1836/workon/internal/errors"
)

// ValidTransitions defines the allowed lifecycle steps.
//
//	Absent → Created
//	Created → EnvMaterialized
//	EnvMaterialized → Wrapped
//	Wrapped → SetupDone
//	SetupDone → Activated
//	Activated → InDirectory
//	InDirectory → Ready
//
//nolint:gochecknoglobals // Exported for testing and read-only lookup table
var ValidTransitions = map[constants.WorkDirState][]constants.WorkDirState{
	constants.WorkDirStateAbsent:          {constants.WorkDirStateCreated},
	constants.WorkDirStateCreated:         {constants.WorkDirStateEnvMaterialized},
	constants.WorkDirStateEnvMaterialized: {constants.WorkDirStateWrapped},
	constants.WorkDirStateWrapped:         {constants.WorkDirStateSetupDone},
	constants.WorkDirStateSetupDone:       {constants.WorkDirStateActivated},
	constants.WorkDirStateActivated:       {constants.WorkDirStateInDirectory},
	constants.WorkDirStateInDirectory:     {constants.WorkDirStateReady},
}

// IsValidTransition reports whether from → to is allowed.
func IsValidTransition(from, to constants.WorkDirState) bool {
	return slices.Contains(ValidTransitions[from], to)
}

// IsTerminal reports whether no step follows s.
func IsTerminal(s constants.WorkDirState) bool {
	_, ok := ValidTransitions[s]
	return !ok
}

// machine tracks the state of one driver run.
type machine struct {
	state   constants.WorkDirState
	history []constants.WorkDirState
}

func newMachine(start constants.WorkDirState) *machine {
	return &machine{state: start, history: []constants.WorkDirState{start}}
}

func (m *machine) advance(to constants.WorkDirState) error {
	if !IsValidTransition(m.state, to) {
		return errors.Wrapf(errors.ErrInvalidTransition, "%s -> %s", m.state, to)
	}
	m.state = to
	m.history = append(m.history, to)
	return nil
}
