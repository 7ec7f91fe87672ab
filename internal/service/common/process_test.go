//nolint:revive,nolintlint // Package name "common" is intentional for shared helpers.
package common

import (
	"testing"

	"github.com/mitchellh/go-ps"
	"github.com/stretchr/testify/require"
)

// fakeProcess is a process table entry for matching tests.
type fakeProcess struct {
	pid  int
	name string
}

func (p fakeProcess) Pid() int           { return p.pid }
func (p fakeProcess) PPid() int          { return 1 }
func (p fakeProcess) Executable() string { return p.name }

func TestMatchProcesses(t *testing.T) {
	t.Parallel()

	processList := []ps.Process{
		fakeProcess{pid: 10, name: "possession-bridge"},
		fakeProcess{pid: 11, name: "possession-ctl"},
		fakeProcess{pid: 12, name: "POSSESSION-BRIDGE"},
		fakeProcess{pid: 13, name: "possession-bridge"},
	}

	require.Equal(t, []int{12, 13}, matchProcesses(processList, 10, "possession-bridge"))
	require.Empty(t, matchProcesses(processList, 10, "unity"))
}

func TestFindOthers_ExcludesSelf(t *testing.T) {
	t.Parallel()

	pids, err := FindOthers("definitely-not-a-running-binary")
	require.NoError(t, err)
	require.Empty(t, pids)
}
