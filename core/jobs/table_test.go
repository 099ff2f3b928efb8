package jobs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusString(t *testing.T) {
	cases := map[Status]string{
		Uninitialized: "UNINIT",
		Running:       "RUNNING",
		Stopped:       "STOPPED",
		Terminated:    "TERMINATED",
		Status(42):    "Status(42)",
	}

	for status, expected := range cases {
		assert.Equal(t, expected, status.String())
	}
}

func TestNewTable(t *testing.T) {
	assert.Equal(t, DefaultTableSize, NewTable(0).Cap())
	assert.Equal(t, DefaultTableSize, NewTable(-3).Cap())
	assert.Equal(t, 7, NewTable(7).Cap())
	assert.Equal(t, 0, NewTable(7).Len())
}

func TestRegisterDistinctPIDs(t *testing.T) {
	table := NewTable(10)

	seen := make(map[int]bool)
	for pid := 100; pid < 110; pid++ {
		jid, err := table.Register(pid, Running)
		require.NoError(t, err)
		assert.False(t, seen[jid], "jid %d issued twice", jid)
		seen[jid] = true
	}

	assert.Equal(t, 10, table.Len())
}

func TestRegisterSamePIDKeepsJID(t *testing.T) {
	table := NewTable(4)

	jid, err := table.Register(42, Stopped)
	require.NoError(t, err)
	assert.Equal(t, 1, jid)

	again, err := table.Register(42, Running)
	require.NoError(t, err)
	assert.Equal(t, jid, again)

	job, ok := table.FindByPID(42)
	require.True(t, ok)
	assert.Equal(t, Running, job.Status)
	assert.Equal(t, 1, table.Len())
}

func TestRegisterReusesTerminatedSlot(t *testing.T) {
	table := NewTable(2)

	first, err := table.Register(10, Running)
	require.NoError(t, err)
	_, err = table.Register(11, Running)
	require.NoError(t, err)

	_, err = table.Register(12, Running)
	assert.ErrorIs(t, err, ErrJobTableFull)

	_, err = table.SetStatus(10, Terminated)
	require.NoError(t, err)

	jid, err := table.Register(12, Running)
	require.NoError(t, err)
	assert.Greater(t, jid, 2)

	// The recycled slot is the one that held pid 10.
	live := table.Live()
	require.Len(t, live, 2)
	assert.Equal(t, 12, live[0].PID)
	assert.Equal(t, 11, live[1].PID)

	_, ok := table.FindByJID(first)
	assert.False(t, ok)
}

func TestRegisterPrefersLowestFreeSlot(t *testing.T) {
	table := NewTable(3)
	for pid := 1; pid <= 3; pid++ {
		_, err := table.Register(pid, Running)
		require.NoError(t, err)
	}

	_, err := table.SetStatus(3, Terminated)
	require.NoError(t, err)
	_, err = table.SetStatus(1, Terminated)
	require.NoError(t, err)

	_, err = table.Register(4, Running)
	require.NoError(t, err)

	live := table.Live()
	require.Len(t, live, 2)
	assert.Equal(t, 4, live[0].PID)
	assert.Equal(t, 2, live[1].PID)
}

func TestSetStatusUnknownPID(t *testing.T) {
	table := NewTable(3)
	_, err := table.Register(5, Running)
	require.NoError(t, err)
	before := table.Live()

	_, err = table.SetStatus(6, Stopped)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, before, table.Live())
}

func TestSetStatusTerminatedIsFinal(t *testing.T) {
	table := NewTable(3)
	_, err := table.Register(5, Running)
	require.NoError(t, err)
	_, err = table.SetStatus(5, Terminated)
	require.NoError(t, err)

	// A late notification for a reaped pid must not revive the record.
	_, err = table.SetStatus(5, Running)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Empty(t, table.Live())
}

func TestFindByJID(t *testing.T) {
	table := NewTable(3)
	jid, err := table.Register(20, Running)
	require.NoError(t, err)

	cases := map[string]struct {
		jid   int
		found bool
	}{
		"live":     {jid, true},
		"zero":     {0, false},
		"negative": {-1, false},
		"unknown":  {99, false},
	}

	for tn, tc := range cases {
		t.Run(tn, func(t *testing.T) {
			job, ok := table.FindByJID(tc.jid)
			assert.Equal(t, tc.found, ok)
			if tc.found {
				assert.Equal(t, 20, job.PID)
			}
		})
	}

	_, err = table.SetStatus(20, Terminated)
	require.NoError(t, err)
	_, ok := table.FindByJID(jid)
	assert.False(t, ok, "terminated jobs must not resolve")
}

func TestJIDsNeverReusedAfterRecycling(t *testing.T) {
	table := NewTable(1)
	issued := 0
	for pid := 1; pid <= 50; pid++ {
		jid, err := table.Register(pid, Running)
		require.NoError(t, err)
		assert.Greater(t, jid, issued)
		issued = jid

		_, err = table.SetStatus(pid, Terminated)
		require.NoError(t, err)
	}
}

func TestLiveTableOrder(t *testing.T) {
	table := NewTable(4)
	for _, pid := range []int{7, 8, 9} {
		_, err := table.Register(pid, Running)
		require.NoError(t, err)
	}
	_, err := table.SetStatus(8, Stopped)
	require.NoError(t, err)

	assert.Equal(t, []Job{
		{PID: 7, JID: 1, Status: Running},
		{PID: 8, JID: 2, Status: Stopped},
		{PID: 9, JID: 3, Status: Running},
	}, table.Live())
	assert.Equal(t, "[2] 8 STOPPED", table.Live()[1].String())
}
