// sensors.go

// This file holds the sensor store: the single amalgamated record of the
// latest telemetry received from the drone.

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
	"fmt"
	"strconv"
	"sync"

	"github.com/rs/zerolog"
)

// FlightState is the drone-reported phase of flight. It is the condition
// variable the safe-action loops watch.
type FlightState string

// Flight states as named by the drone, plus the not-yet-reported sentinel.
const (
	FlightStateUnknown   FlightState = "unknown"
	FlightStateLanded    FlightState = "landed"
	FlightStateTakingOff FlightState = "takingoff"
	FlightStateHovering  FlightState = "hovering"
	FlightStateFlying    FlightState = "flying"
	FlightStateLanding   FlightState = "landing"
	FlightStateEmergency FlightState = "emergency"
)

// Sensor fields the store mirrors into fast-access flags. Matching is
// exact, never partial.
const (
	fieldFlyingState     = "FlyingStateChanged_state"
	fieldRelativeMoveEnd = "PilotingEvent_moveByEnd"
	fieldCameraMoveEnd   = "CameraState_OrientationV2"
)

// SensorValueKind tags a SensorValue.
type SensorValueKind uint8

// SensorValue kinds...
const (
	SensorAbsent      SensorValueKind = iota // field never reported
	SensorNumber                             // a plain numeric reading
	SensorText                               // a resolved enum label or decoded text
	SensorUnknownEnum                        // enum index missing or out of range
)

// SensorValue is the reading of a single sensor field. The store never
// holds a raw enum index: enumerated fields are either resolved to their
// label or normalised to SensorUnknownEnum.
type SensorValue struct {
	Kind   SensorValueKind
	Number float64
	Text   string
}

// NumberValue returns a numeric SensorValue.
func NumberValue(n float64) SensorValue {
	return SensorValue{Kind: SensorNumber, Number: n}
}

// TextValue returns a textual SensorValue.
func TextValue(s string) SensorValue {
	return SensorValue{Kind: SensorText, Text: s}
}

func (v SensorValue) String() string {
	switch v.Kind {
	case SensorNumber:
		return strconv.FormatFloat(v.Number, 'g', -1, 64)
	case SensorText:
		return v.Text
	case SensorUnknownEnum:
		return "UNKNOWN_ENUM_VALUE"
	}
	return "absent"
}

// EnumTable maps enumerated sensor field names to their ordered labels.
// The telemetry codec supplies it alongside each decoded event.
type EnumTable map[string][]string

// SensorEvent is one decoded sensor reading delivered by the codec.
type SensorEvent struct {
	Name  string // empty when the decoder could not identify the field
	Value SensorValue
	Enums EnumTable
}

// SensorStore holds the latest value of every sensor field the drone has
// reported, plus a few flags mirrored from specific fields for fast
// access. It is written only by the telemetry dispatch path and read by
// the caller's control path, so every access goes through the mutex.
type SensorStore struct {
	mu                sync.RWMutex
	fields            map[string]SensorValue
	flyingState       FlightState
	relativeMoveEnded bool
	cameraMoveEnded   bool
	log               zerolog.Logger
}

func newSensorStore(log zerolog.Logger) *SensorStore {
	return &SensorStore{
		fields:      make(map[string]SensorValue),
		flyingState: FlightStateUnknown,
		log:         log,
	}
}

// Update applies one decoded sensor reading. An empty field name is
// logged and dropped rather than faulted: the codec legitimately emits
// readings for fields we have no use for. If enums declares the field as
// enumerated the raw value is resolved to its label; an absent or
// out-of-range index stores SensorUnknownEnum, never the index itself.
// The backing field is always written before any mirrored flag so a
// reader can never observe a flag ahead of its field.
func (s *SensorStore) Update(name string, raw SensorValue, enums EnumTable) {
	if name == "" {
		s.log.Warn().Msg("sensor update without a field name ignored")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	value := raw
	if labels, enumerated := enums[name]; enumerated {
		value = resolveEnum(raw, labels)
	}
	s.fields[name] = value

	switch name {
	case fieldFlyingState:
		if value.Kind == SensorText {
			s.flyingState = FlightState(value.Text)
		} else {
			s.flyingState = FlightStateUnknown
		}
	case fieldRelativeMoveEnd:
		s.relativeMoveEnded = true
	case fieldCameraMoveEnd:
		s.cameraMoveEnded = true
	}
}

func resolveEnum(raw SensorValue, labels []string) SensorValue {
	if raw.Kind != SensorNumber {
		return SensorValue{Kind: SensorUnknownEnum}
	}
	i := int(raw.Number)
	if i < 0 || i >= len(labels) {
		return SensorValue{Kind: SensorUnknownEnum}
	}
	return SensorValue{Kind: SensorText, Text: labels[i]}
}

// Sensor returns the current value of the named field, or a SensorAbsent
// value if the drone has never reported it. It never blocks beyond the
// read lock.
func (s *SensorStore) Sensor(name string) SensorValue {
	s.mu.RLock()
	v := s.fields[name]
	s.mu.RUnlock()
	return v
}

// FlyingState returns the most recently reported flight state.
func (s *SensorStore) FlyingState() FlightState {
	s.mu.RLock()
	fs := s.flyingState
	s.mu.RUnlock()
	return fs
}

// RelativeMoveEnded reports whether a relative move has completed since
// the session began. The flag is never cleared by the store.
func (s *SensorStore) RelativeMoveEnded() bool {
	s.mu.RLock()
	b := s.relativeMoveEnded
	s.mu.RUnlock()
	return b
}

// CameraMoveEnded reports whether a camera orientation change has
// completed since the session began. The flag is never cleared by the
// store.
func (s *SensorStore) CameraMoveEnded() bool {
	s.mu.RLock()
	b := s.cameraMoveEnded
	s.mu.RUnlock()
	return b
}

// Snapshot returns a copy of every sensor field currently held.
func (s *SensorStore) Snapshot() map[string]SensorValue {
	s.mu.RLock()
	snap := make(map[string]SensorValue, len(s.fields))
	for name, v := range s.fields {
		snap[name] = v
	}
	s.mu.RUnlock()
	return snap
}

func (s *SensorStore) String() string {
	return fmt.Sprintf("Bebop sensors: %v", s.Snapshot())
}
