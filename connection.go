// connection.go

// This file defines the collaborators the bebop package consumes: the
// wireless transport, the telemetry codec and the clock.

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

import "time"

// DroneConnection is the wireless transport used to reach the drone.
// Implementations own session establishment, packet framing, sequence
// numbers and the low-level acknowledgment handshake; this package only
// hands them resolved commands and receives decoded telemetry back via
// Bebop.UpdateSensors.
type DroneConnection interface {
	// Connect establishes a session, retrying up to maxRetries times.
	Connect(maxRetries int) bool
	Disconnect()

	// SendAckedCommand sends a no-parameter command using acknowledged
	// delivery and reports whether the drone confirmed receipt.
	SendAckedCommand(cmd Command) bool

	// SendAckedEnumCommand is SendAckedCommand for commands taking a
	// single enum argument, e.g. a flip direction.
	SendAckedEnumCommand(cmd Command, variant EnumVariant) bool

	// SendFlightCommand sends a piloting (PCMD) command. Each axis is
	// a percentage in the range -100 to 100.
	SendFlightCommand(cmd Command, roll, pitch, yaw, vertical int, duration time.Duration)

	// AckPacket acknowledges an inbound packet that requested it.
	AckPacket(bufferID, sequence int)

	// SmartSleep idles for d while continuing to pump inbound telemetry.
	// It must never be a plain blocking sleep: the safe-action loops idle
	// on it while waiting for exactly the sensor updates a blocked
	// receiver would miss.
	SmartSleep(d time.Duration)
}

// SensorDecoder turns a raw telemetry payload into decoded sensor events.
type SensorDecoder interface {
	DecodeSensors(raw []byte) []SensorEvent
}

// Clock supplies the time for the safe-action deadlines. Tests substitute
// a fake so the retry loops run without wall-clock waits.
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }
