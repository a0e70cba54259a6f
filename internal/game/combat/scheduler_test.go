package combat_test

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/cory-johannsen/arpg/internal/game/combat"
)

var (
	keyA = combat.TaskKey{ActorID: 1, Purpose: combat.PurposeClearAnimation}
	keyB = combat.TaskKey{ActorID: 2, Purpose: combat.PurposeClearAnimation}
)

func TestVirtualScheduler_RunsInTimeOrder(t *testing.T) {
	s := combat.NewVirtualScheduler()
	var order []string
	s.ScheduleAfter(keyA, 300*time.Millisecond, func() { order = append(order, "a") })
	s.ScheduleAfter(keyB, 100*time.Millisecond, func() { order = append(order, "b") })
	s.Advance(200 * time.Millisecond)
	assert.Equal(t, []string{"b"}, order)
	assert.Equal(t, 200*time.Millisecond, s.Now())
	s.Advance(100 * time.Millisecond)
	assert.Equal(t, []string{"b", "a"}, order)
	assert.Zero(t, s.Len())
}

func TestVirtualScheduler_RescheduleReplaces(t *testing.T) {
	s := combat.NewVirtualScheduler()
	var first, second int
	s.ScheduleAfter(keyA, 100*time.Millisecond, func() { first++ })
	s.ScheduleAfter(keyA, 300*time.Millisecond, func() { second++ })
	assert.Equal(t, 1, s.Len())
	s.Advance(time.Second)
	assert.Zero(t, first)
	assert.Equal(t, 1, second)
}

func TestVirtualScheduler_CancelAndCancelAll(t *testing.T) {
	s := combat.NewVirtualScheduler()
	var called int
	s.ScheduleAfter(keyA, time.Millisecond, func() { called++ })
	s.ScheduleAfter(keyB, time.Millisecond, func() { called++ })
	s.Cancel(keyA)
	assert.False(t, s.Pending(keyA))
	assert.True(t, s.Pending(keyB))
	s.CancelAll()
	s.Advance(time.Second)
	assert.Zero(t, called)
}

func TestVirtualScheduler_SelfReschedulingTask(t *testing.T) {
	s := combat.NewVirtualScheduler()
	ticks := 0
	var tick func()
	tick = func() {
		ticks++
		s.ScheduleAfter(keyA, 600*time.Millisecond, tick)
	}
	s.ScheduleAfter(keyA, 600*time.Millisecond, tick)
	s.Advance(3 * time.Second)
	assert.Equal(t, 5, ticks)
	assert.True(t, s.Pending(keyA))
}

func TestVirtualScheduler_Step(t *testing.T) {
	s := combat.NewVirtualScheduler()
	assert.False(t, s.Step())
	ran := false
	s.ScheduleAfter(keyA, time.Hour, func() { ran = true })
	assert.True(t, s.Step())
	assert.True(t, ran)
	assert.Equal(t, time.Hour, s.Now())
}

func TestVirtualScheduler_AdvancePanicsOnNegative(t *testing.T) {
	assert.Panics(t, func() { combat.NewVirtualScheduler().Advance(-time.Second) })
}

func TestWallScheduler_Fires(t *testing.T) {
	if testing.Short() {
		t.Skip("wall-clock test")
	}
	s := combat.NewWallScheduler()
	var called atomic.Int32
	s.ScheduleAfter(keyA, 20*time.Millisecond, func() { called.Add(1) })
	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, int32(1), called.Load())
	assert.False(t, s.Pending(keyA))
}

func TestWallScheduler_CancelPreventsCallback(t *testing.T) {
	if testing.Short() {
		t.Skip("wall-clock test")
	}
	s := combat.NewWallScheduler()
	var called atomic.Int32
	s.ScheduleAfter(keyA, 40*time.Millisecond, func() { called.Add(1) })
	s.Cancel(keyA)
	s.Cancel(keyA)
	time.Sleep(80 * time.Millisecond)
	assert.Zero(t, called.Load())
}

func TestWallScheduler_RescheduleSupersedes(t *testing.T) {
	if testing.Short() {
		t.Skip("wall-clock test")
	}
	s := combat.NewWallScheduler()
	var first, second atomic.Int32
	s.ScheduleAfter(keyA, 20*time.Millisecond, func() { first.Add(1) })
	s.ScheduleAfter(keyA, 40*time.Millisecond, func() { second.Add(1) })
	time.Sleep(100 * time.Millisecond)
	assert.Zero(t, first.Load())
	assert.Equal(t, int32(1), second.Load())
}

func TestWallScheduler_CancelAll(t *testing.T) {
	if testing.Short() {
		t.Skip("wall-clock test")
	}
	s := combat.NewWallScheduler()
	var called atomic.Int32
	s.ScheduleAfter(keyA, 30*time.Millisecond, func() { called.Add(1) })
	s.ScheduleAfter(keyB, 30*time.Millisecond, func() { called.Add(1) })
	s.CancelAll()
	time.Sleep(60 * time.Millisecond)
	assert.Zero(t, called.Load())
}
