// autopilot.go

// This file contains the 'safe' flight actions: retry loops that keep
// commanding the drone until the sensor store reports the wanted state
// or a deadline passes.

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
	"time"
)

// safeActionPoll is how long a safe action idles between checks of the
// flight state. The idle goes through the transport's SmartSleep so
// telemetry keeps flowing into the sensor store while we wait.
const safeActionPoll = 1 * time.Second

// SafeTakeOff keeps sending takeoff requests until the drone reports it
// is taking off (the initiating command may be lost in flight), then
// waits for it to reach a flying or hovering state. Both phases share
// the single timeout, measured from the call. An emergency state aborts
// immediately in either phase.
//
// Reaching the deadline is not an error: SafeTakeOff returns nil and the
// caller inspects FlyingState to see what the drone actually did. The
// only non-nil returns are definition-table mismatches.
func (b *Bebop) SafeTakeOff(timeout time.Duration) error {
	start := b.clock.Now()

	// keep commanding until the drone really listens
	for b.FlyingState() != FlightStateTakingOff && b.clock.Now().Sub(start) < timeout {
		if b.FlyingState() == FlightStateEmergency {
			return nil
		}
		if err := b.TakeOff(); err != nil {
			if errors.Is(err, ErrUnknownCommand) {
				return err
			}
			b.log.Debug().Err(err).Msg("takeoff not acknowledged, resending")
		}
		b.conn.SmartSleep(safeActionPoll)
	}

	// now wait for the takeoff to finish
	for !flyingOrHovering(b.FlyingState()) && b.clock.Now().Sub(start) < timeout {
		if b.FlyingState() == FlightStateEmergency {
			return nil
		}
		b.conn.SmartSleep(safeActionPoll)
	}
	return nil
}

// SafeLand keeps sending land requests until the drone reports it is
// landing or landed, then waits for it to finish. Deadline and emergency
// handling are as for SafeTakeOff.
func (b *Bebop) SafeLand(timeout time.Duration) error {
	start := b.clock.Now()

	for !landingOrLanded(b.FlyingState()) && b.clock.Now().Sub(start) < timeout {
		if b.FlyingState() == FlightStateEmergency {
			return nil
		}
		b.log.Info().Msg("trying to land")
		if err := b.Land(); err != nil {
			if errors.Is(err, ErrUnknownCommand) {
				return err
			}
			b.log.Debug().Err(err).Msg("land not acknowledged, resending")
		}
		b.conn.SmartSleep(safeActionPoll)
	}

	for b.FlyingState() != FlightStateLanded && b.clock.Now().Sub(start) < timeout {
		if b.FlyingState() == FlightStateEmergency {
			return nil
		}
		b.conn.SmartSleep(safeActionPoll)
	}
	return nil
}

func flyingOrHovering(fs FlightState) bool {
	return fs == FlightStateFlying || fs == FlightStateHovering
}

func landingOrLanded(fs FlightState) bool {
	return fs == FlightStateLanding || fs == FlightStateLanded
}
