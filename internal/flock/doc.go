// Package flock provides exclusive, non-blocking advisory file locks.
//
// workon takes one on <workdir>/.workon.lock before regenerating wrappers or
// composing an environment, so two shells cannot rebuild wbin concurrently.
//
//	lock, err := flock.Acquire(path)
//	if err != nil {
//	    // errors.Is(err, errors.ErrWorkDirLocked) when another process holds it
//	}
//	defer lock.Release()
package flock
