// bebop.go

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
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// ErrConnect is returned when the transport gives up connecting.
var ErrConnect = errors.New("could not connect to drone")

// Bebop drives a single drone over an injected transport. Create one per
// session with New and discard it after Disconnect.
type Bebop struct {
	conn     DroneConnection
	decoder  SensorDecoder
	commands *CommandTable
	sensors  *SensorStore
	clock    Clock
	log      zerolog.Logger

	streamMu   sync.Mutex
	streaming  bool
	streamStop chan struct{}
}

// Option configures a Bebop at construction time.
type Option func(*Bebop)

// WithLogger replaces the default stderr logger.
func WithLogger(log zerolog.Logger) Option {
	return func(b *Bebop) { b.log = log }
}

// WithClock replaces the wall clock used for safe-action deadlines.
func WithClock(c Clock) Option {
	return func(b *Bebop) { b.clock = c }
}

// WithCommandTable replaces the bundled command definition table.
func WithCommandTable(t *CommandTable) Option {
	return func(b *Bebop) { b.commands = t }
}

// New creates a Bebop driving the given transport, with telemetry decoded
// by the given decoder. The transport is expected to deliver inbound
// telemetry to UpdateSensors.
func New(conn DroneConnection, decoder SensorDecoder, opts ...Option) (*Bebop, error) {
	if conn == nil {
		return nil, errors.New("nil drone connection")
	}
	if decoder == nil {
		return nil, errors.New("nil sensor decoder")
	}
	b := &Bebop{
		conn:    conn,
		decoder: decoder,
		clock:   realClock{},
		log:     zerolog.New(os.Stderr).With().Timestamp().Str("component", "bebop").Logger(),
	}
	for _, opt := range opts {
		opt(b)
	}
	if b.commands == nil {
		table, err := DefaultCommandTable()
		if err != nil {
			return nil, err
		}
		b.commands = table
	}
	b.sensors = newSensorStore(b.log)
	return b, nil
}

// Connect establishes the session, retrying up to maxRetries times.
func (b *Bebop) Connect(maxRetries int) error {
	if !b.conn.Connect(maxRetries) {
		return ErrConnect
	}
	return nil
}

// Disconnect ends the session. Always call this before discarding the
// Bebop so the transport can shut down cleanly.
func (b *Bebop) Disconnect() {
	b.streamMu.Lock()
	if b.streaming {
		close(b.streamStop)
		b.streaming = false
	}
	b.streamMu.Unlock()
	b.conn.Disconnect()
}

// UpdateSensors is the inbound telemetry entry point, called by the
// transport for every telemetry buffer received. Events are applied to
// the sensor store in the order the decoder produced them; a reading the
// decoder could not attribute to a field is logged and skipped without
// disturbing the rest of the buffer. If the packet requested an
// acknowledgment it is sent once, after every event has been applied, so
// the ack confirms processing rather than mere receipt.
func (b *Bebop) UpdateSensors(dataType, bufferID, sequence int, raw []byte, ack bool) {
	for _, ev := range b.decoder.DecodeSensors(raw) {
		if ev.Name == "" {
			b.log.Warn().
				Int("data_type", dataType).
				Int("buffer_id", bufferID).
				Int("sequence", sequence).
				Msg("unresolved sensor field skipped (likely one we don't need)")
			continue
		}
		b.sensors.Update(ev.Name, ev.Value, ev.Enums)
	}
	if ack {
		b.conn.AckPacket(bufferID, sequence)
	}
}

// SmartSleep idles for d while the transport keeps pumping inbound
// telemetry. Use this instead of time.Sleep between commands or the
// sensor store will go stale while you wait.
func (b *Bebop) SmartSleep(d time.Duration) {
	b.conn.SmartSleep(d)
}

// Sensor returns the current value of the named sensor field.
func (b *Bebop) Sensor(name string) SensorValue {
	return b.sensors.Sensor(name)
}

// FlyingState returns the most recently reported flight state.
func (b *Bebop) FlyingState() FlightState {
	return b.sensors.FlyingState()
}

// RelativeMoveEnded reports whether a relative move has completed this
// session.
func (b *Bebop) RelativeMoveEnded() bool {
	return b.sensors.RelativeMoveEnded()
}

// CameraMoveEnded reports whether a camera orientation change has
// completed this session.
func (b *Bebop) CameraMoveEnded() bool {
	return b.sensors.CameraMoveEnded()
}

// Snapshot returns a copy of every sensor field currently known.
func (b *Bebop) Snapshot() map[string]SensorValue {
	return b.sensors.Snapshot()
}

// StreamSensors starts a Goroutine which sends a sensor snapshot to the
// returned channel every period until Disconnect is called. The streamer
// does not block on the channel, so unconsumed snapshots are lost.
func (b *Bebop) StreamSensors(period time.Duration) (<-chan map[string]SensorValue, error) {
	b.streamMu.Lock()
	defer b.streamMu.Unlock()
	if b.streaming {
		return nil, errors.New("already streaming sensors from this Bebop")
	}
	b.streaming = true
	b.streamStop = make(chan struct{})

	snapChan := make(chan map[string]SensorValue, 2)
	stop := b.streamStop
	go func() {
		for {
			select {
			case <-stop:
				close(snapChan)
				return
			default:
			}
			select {
			case snapChan <- b.sensors.Snapshot():
			default:
			}
			time.Sleep(period)
		}
	}()

	return snapChan, nil
}
