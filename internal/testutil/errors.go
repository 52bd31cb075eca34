// Package testutil provides test doubles and fixtures shared by workon's tests.
// It should only be imported by test files (*_test.go).
package testutil

import "errors"

// Mock errors for simulating failures.
var (
	// ErrMockCondaFailed simulates a failing conda invocation.
	ErrMockCondaFailed = errors.New("conda command failed")

	// ErrMockDVCFailed simulates a failing dvc invocation.
	ErrMockDVCFailed = errors.New("dvc command failed")
)
