//nolint:revive,nolintlint // Package name "common" is intentional for shared helpers.
package common

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mitchellh/go-ps"
)

// ErrAlreadyRunning is returned when another bridge process is found.
var ErrAlreadyRunning = errors.New("another instance is already running")

// FindOthers lists the pids of processes running executable, excluding this process.
func FindOthers(executable string) ([]int, error) {
	processList, err := ps.Processes()
	if err != nil {
		return nil, fmt.Errorf("list processes: %w", err)
	}

	return matchProcesses(processList, os.Getpid(), executable), nil
}

// EnsureSingleInstance fails when another process runs the current executable.
// Two bridges would both bind the command port and split the engine's commands.
func EnsureSingleInstance() error {
	self, err := os.Executable()
	if err != nil {
		return fmt.Errorf("resolve executable: %w", err)
	}

	pids, err := FindOthers(filepath.Base(self))
	if err != nil {
		return err
	}

	if len(pids) > 0 {
		return fmt.Errorf("%w: pid %d", ErrAlreadyRunning, pids[0])
	}

	return nil
}

// matchProcesses filters processList by executable name, skipping self.
// Names compare case-insensitively because Windows reports them as launched.
func matchProcesses(processList []ps.Process, self int, executable string) []int {
	var pids []int

	for _, process := range processList {
		if process.Pid() == self {
			continue
		}

		if !strings.EqualFold(process.Executable(), executable) {
			continue
		}

		pids = append(pids, process.Pid())
	}

	return pids
}
