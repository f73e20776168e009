// flightCommands.go

// This file contains the high-level Bebop flight command API

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
	"fmt"
	"strings"
	"time"
)

// Command delivery and validation errors.
var (
	ErrCommandNotAcked      = errors.New("command not acknowledged by drone")
	ErrInvalidFlipDirection = errors.New("invalid flip direction")
)

// sendAckedCommand resolves a no-parameter command and sends it via
// acknowledged delivery. The resolution error is returned as-is: an
// unknown triple is a definition-table mismatch, not a network fault.
func (b *Bebop) sendAckedCommand(project, class, command string) error {
	cmd, err := b.commands.Resolve(project, class, command)
	if err != nil {
		return err
	}
	if !b.conn.SendAckedCommand(cmd) {
		return fmt.Errorf("%w: %s/%s/%s", ErrCommandNotAcked, project, class, command)
	}
	return nil
}

// RequestAllStates asks the drone for a full state update. The sensor
// store fills as the resulting telemetry arrives.
func (b *Bebop) RequestAllStates() error {
	return b.sendAckedCommand("common", "Common", "AllStates")
}

// TakeOff sends a single takeoff request to the drone. It does not wait
// for the drone to report a state change; see SafeTakeOff for that.
func (b *Bebop) TakeOff() error {
	return b.sendAckedCommand("ardrone3", "Piloting", "TakeOff")
}

// Land sends a single land request to the drone. It does not wait for
// the drone to report a state change; see SafeLand for that.
func (b *Bebop) Land() error {
	return b.sendAckedCommand("ardrone3", "Piloting", "Landing")
}

// Emergency cuts the motors immediately. The drone will fall.
func (b *Bebop) Emergency() error {
	return b.sendAckedCommand("ardrone3", "Piloting", "Emergency")
}

// FlatTrim recalibrates the drone's level reference. Only call this with
// the drone on flat ground.
func (b *Bebop) FlatTrim() error {
	return b.sendAckedCommand("ardrone3", "Piloting", "FlatTrim")
}

// FlyDirect commands direct movement for the given duration. Each axis
// is a percentage; values outside -100 to 100 are clamped to that range
// rather than rejected, each axis independently.
func (b *Bebop) FlyDirect(roll, pitch, yaw, vertical int, duration time.Duration) error {
	cmd, err := b.commands.Resolve("ardrone3", "Piloting", "PCMD")
	if err != nil {
		return err
	}
	b.conn.SendFlightCommand(cmd,
		clampAxis(roll), clampAxis(pitch), clampAxis(yaw), clampAxis(vertical), duration)
	return nil
}

func clampAxis(pct int) int {
	if pct < -100 {
		return -100
	}
	if pct > 100 {
		return 100
	}
	return pct
}

// Flip performs a flip in the given direction, one of "front", "back",
// "right" or "left" (case-insensitive). Anything else is rejected before
// any command is sent.
func (b *Bebop) Flip(direction string) error {
	dir := strings.ToLower(direction)
	switch dir {
	case "front", "back", "right", "left":
	default:
		b.log.Error().Str("direction", direction).
			Msg("invalid flip direction, command not sent")
		return fmt.Errorf("%w: %q (must be front, back, right or left)",
			ErrInvalidFlipDirection, direction)
	}
	cmd, variant, err := b.commands.ResolveEnum("ardrone3", "Animations", "Flip", dir)
	if err != nil {
		return err
	}
	if !b.conn.SendAckedEnumCommand(cmd, variant) {
		return fmt.Errorf("%w: flip %s", ErrCommandNotAcked, dir)
	}
	return nil
}
