package manifest

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/sys/unix"

	"github.com/safepip/safe-pip-upgrade/internal/messages"
)

var flockFn = unix.Flock
var lockSleep = time.Sleep

var (
	lockWaitTimeout = 2 * time.Second
	lockPollEvery   = 100 * time.Millisecond
)

// Lock is an exclusive advisory lock that keeps two runs from writing the same manifest.
type Lock struct {
	file *os.File
	path string
}

// LockPath returns the lock file used for the manifest.
func (f *File) LockPath() string {
	return filepath.Join(f.dir, "."+f.base+f.ext+".lock")
}

// Lock acquires the run lock for the manifest, waiting briefly for a previous holder.
func (f *File) Lock() (*Lock, error) {
	path := f.LockPath()
	file, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0o644)
	if err != nil {
		return nil, fmt.Errorf(messages.ManifestOpenLockFmt, path, err)
	}
	if err := lockFile(file); err != nil {
		_ = file.Close()
		return nil, fmt.Errorf(messages.ManifestLockFmt, path, err)
	}
	return &Lock{file: file, path: path}, nil
}

// Release unlocks and closes the lock file. The file itself stays so a
// concurrent waiter never locks an unlinked inode.
func (l *Lock) Release() error {
	if l == nil || l.file == nil {
		return nil
	}
	if err := flockFn(int(l.file.Fd()), unix.LOCK_UN); err != nil {
		_ = l.file.Close()
		return err
	}
	err := l.file.Close()
	l.file = nil
	return err
}

func lockFile(file *os.File) error {
	deadline := time.Now().Add(lockWaitTimeout)
	for {
		err := flockFn(int(file.Fd()), unix.LOCK_EX|unix.LOCK_NB)
		if err == nil {
			return nil
		}
		if !errors.Is(err, unix.EWOULDBLOCK) && !errors.Is(err, unix.EAGAIN) {
			return err
		}
		if time.Now().After(deadline) {
			return fmt.Errorf(messages.ManifestLockTimeoutFmt, lockWaitTimeout)
		}
		lockSleep(lockPollEvery)
	}
}
