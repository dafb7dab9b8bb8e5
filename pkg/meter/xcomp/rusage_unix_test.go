//go:build unix

package xcomp

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"golang.org/x/sys/unix"
)

func TestReadUsage_GetrusageFailure(t *testing.T) {
	old := getrusage
	t.Cleanup(func() { getrusage = old })
	getrusage = func(int, *unix.Rusage) error { return errors.New("EPERM") }

	assert.Equal(t, usage{}, readUsage())

	for _, c := range []*Base[int64]{NewUserClock(), NewSystemClock(), NewCPUClock(), NewPeakRSS(), NewMinorFaults()} {
		c.Start()
		c.Stop()
		assert.Zero(t, c.Value(), c.Meta().Label)
	}
}

func TestReadUsage_Scaling(t *testing.T) {
	old := getrusage
	t.Cleanup(func() { getrusage = old })
	getrusage = func(_ int, ru *unix.Rusage) error {
		ru.Utime = unix.NsecToTimeval(3_000_000)
		ru.Stime = unix.NsecToTimeval(1_000_000)
		ru.Maxrss = 2
		ru.Majflt = 7
		return nil
	}

	u := readUsage()
	assert.Equal(t, int64(3_000_000), u.utime)
	assert.Equal(t, int64(1_000_000), u.stime)
	assert.Equal(t, int64(2*maxRSSUnit), u.maxRSS)
	assert.Equal(t, int64(7), u.majflt)
	assert.Equal(t, int64(4_000_000), processCPU())
}

func TestUserClock_Live(t *testing.T) {
	c := NewCPUClock()
	c.Start()
	x := 0
	for i := range 2_000_000 {
		x += i % 7
	}
	c.Stop()
	assert.Positive(t, x)
	assert.GreaterOrEqual(t, c.Value(), int64(0))
}
