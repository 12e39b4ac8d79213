package publish

import (
	"context"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	"go.uber.org/zap"
)

const (
	lockFileNameConstant            = ".winget-publish.lock"
	lockPollIntervalConstant        = 500 * time.Millisecond
	lockContendedLogMessageConstant = "another winget-publish run holds the cache lock; waiting"
	logFieldLockPathConstant        = "lock_path"
)

// CacheLocker serializes runs that share a cache directory.
type CacheLocker interface {
	Acquire(executionContext context.Context, cacheDirectory string) (func() error, error)
}

// FileCacheLocker holds an advisory file lock inside the cache directory.
type FileCacheLocker struct {
	logger       *zap.Logger
	pollInterval time.Duration
}

// NewFileCacheLocker constructs a FileCacheLocker. A nil logger discards the contention warning.
func NewFileCacheLocker(logger *zap.Logger) *FileCacheLocker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FileCacheLocker{logger: logger, pollInterval: lockPollIntervalConstant}
}

// Acquire blocks until the lock is held or the context is cancelled. The returned function releases the lock.
func (locker *FileCacheLocker) Acquire(executionContext context.Context, cacheDirectory string) (func() error, error) {
	lockPath := filepath.Join(cacheDirectory, lockFileNameConstant)
	fileLock := flock.New(lockPath)

	locked, lockError := fileLock.TryLock()
	if lockError != nil {
		return nil, lockError
	}
	if !locked {
		locker.logger.Warn(lockContendedLogMessageConstant, zap.String(logFieldLockPathConstant, lockPath))
		locked, lockError = fileLock.TryLockContext(executionContext, locker.pollInterval)
		if lockError != nil {
			return nil, lockError
		}
		if !locked {
			return nil, executionContext.Err()
		}
	}

	return fileLock.Unlock, nil
}
