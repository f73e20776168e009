// autopilot_test.go

// Copyright (C) 2018  Steve Merrony

// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
// The above copyright notice and this permission notice shall be included in
// all copies or substantial portions of the Software.

// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
// THE SOFTWARE.

package bebop

import (
	"errors"
	"testing"
	"time"

	"github.com/matryer/is"
)

// safeActionRig wires a Bebop to a fake clock and a fake transport whose
// SmartSleep advances the clock and feeds one scripted flight state per
// idle, through the full telemetry dispatch path.
type safeActionRig struct {
	drone *Bebop
	conn  *fakeConn
	clock *fakeClock
}

func newSafeActionRig(t *testing.T, states ...FlightState) *safeActionRig {
	t.Helper()
	clock := &fakeClock{}
	conn := newFakeConn(clock)
	drone := newTestBebop(t, conn, stateDecoder{}, WithClock(clock))

	i := 0
	conn.onSleep = func() {
		if i < len(states) {
			drone.UpdateSensors(7, 127, i, []byte(states[i]), false)
			i++
		}
	}
	return &safeActionRig{drone: drone, conn: conn, clock: clock}
}

func (r *safeActionRig) setState(t *testing.T, state FlightState) {
	t.Helper()
	r.drone.UpdateSensors(7, 127, 99, []byte(state), false)
}

func TestSafeTakeOffResendsUntilTakingOff(t *testing.T) {
	is := is.New(t)

	// state stays unknown for two polls, then takingoff, then hovering
	rig := newSafeActionRig(t, FlightStateUnknown, FlightStateTakingOff, FlightStateHovering)

	is.NoErr(rig.drone.SafeTakeOff(10 * time.Second))

	is.Equal(len(rig.conn.sent), 2) // one send per iteration that saw no takeoff yet
	is.Equal(rig.conn.sleeps, 3)
	is.Equal(rig.drone.FlyingState(), FlightStateHovering)
}

func TestSafeTakeOffAbortsOnEmergency(t *testing.T) {
	is := is.New(t)

	rig := newSafeActionRig(t, FlightStateEmergency)

	is.NoErr(rig.drone.SafeTakeOff(10 * time.Second))

	is.Equal(len(rig.conn.sent), 1) // no further sends after emergency
	is.Equal(rig.conn.sleeps, 1)    // and no further waits
	is.Equal(rig.drone.FlyingState(), FlightStateEmergency)
}

func TestSafeTakeOffConfirmPhaseAbortsOnEmergency(t *testing.T) {
	is := is.New(t)

	rig := newSafeActionRig(t, FlightStateTakingOff, FlightStateEmergency)

	is.NoErr(rig.drone.SafeTakeOff(10 * time.Second))

	is.Equal(len(rig.conn.sent), 1)
	is.Equal(rig.conn.sleeps, 2)
	is.Equal(rig.drone.FlyingState(), FlightStateEmergency)
}

func TestSafeTakeOffStopsAtDeadline(t *testing.T) {
	is := is.New(t)

	rig := newSafeActionRig(t) // the drone never responds
	rig.setState(t, FlightStateLanded)

	start := rig.clock.Now()
	is.NoErr(rig.drone.SafeTakeOff(2500 * time.Millisecond))

	is.True(rig.clock.Now().Sub(start) >= 2500*time.Millisecond) // returned at or after the deadline
	is.Equal(len(rig.conn.sent), 3)                              // sends at t=0s, 1s, 2s
	is.Equal(rig.drone.FlyingState(), FlightStateLanded)         // state untouched, no error raised
}

func TestSafeTakeOffFailsFastOnTableMismatch(t *testing.T) {
	is := is.New(t)

	table, err := LoadCommandTable([]byte(`
projects:
  - name: common
    id: 0
    classes:
      - name: Common
        id: 4
        commands:
          - name: AllStates
            id: 0
`))
	is.NoErr(err)

	clock := &fakeClock{}
	conn := newFakeConn(clock)
	drone := newTestBebop(t, conn, stateDecoder{}, WithClock(clock), WithCommandTable(table))

	err = drone.SafeTakeOff(10 * time.Second)
	is.True(errors.Is(err, ErrUnknownCommand)) // configuration errors are not retried
	is.Equal(len(conn.sent), 0)
}

func TestSafeLandResendsUntilLanding(t *testing.T) {
	is := is.New(t)

	rig := newSafeActionRig(t, FlightStateLanding, FlightStateLanded)
	rig.setState(t, FlightStateFlying)

	is.NoErr(rig.drone.SafeLand(10 * time.Second))

	is.Equal(len(rig.conn.sent), 1)
	is.Equal(rig.conn.sleeps, 2)
	is.Equal(rig.drone.FlyingState(), FlightStateLanded)
}

func TestSafeLandSkipsCommandPhaseIfAlreadyLanding(t *testing.T) {
	is := is.New(t)

	rig := newSafeActionRig(t, FlightStateLanded)
	rig.setState(t, FlightStateLanding)

	is.NoErr(rig.drone.SafeLand(10 * time.Second))

	is.Equal(len(rig.conn.sent), 0) // the transition already started, resending would disrupt it
	is.Equal(rig.conn.sleeps, 1)
	is.Equal(rig.drone.FlyingState(), FlightStateLanded)
}

func TestSafeLandAbortsOnEmergency(t *testing.T) {
	is := is.New(t)

	rig := newSafeActionRig(t, FlightStateEmergency)
	rig.setState(t, FlightStateFlying)

	is.NoErr(rig.drone.SafeLand(10 * time.Second))

	is.Equal(len(rig.conn.sent), 1)
	is.Equal(rig.conn.sleeps, 1)
}

func TestSafeLandStopsAtDeadline(t *testing.T) {
	is := is.New(t)

	rig := newSafeActionRig(t)
	rig.setState(t, FlightStateFlying)

	start := rig.clock.Now()
	is.NoErr(rig.drone.SafeLand(1500 * time.Millisecond))

	is.True(rig.clock.Now().Sub(start) >= 1500*time.Millisecond)
	is.Equal(len(rig.conn.sent), 2)
	is.Equal(rig.drone.FlyingState(), FlightStateFlying)
}
