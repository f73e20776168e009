/*Package bebop provides an unofficial, easy-to-use, standalone control core for the Parrot Bebop® drone.

Disclaimer

Bebop is a registered trademark of Parrot Drones SAS.  The author(s) of this package is/are in no way affiliated with Parrot.
The package has been developed by studying the drone's published command tables and observing its behaviour over the
wireless link, and will probably be extended as more knowledge of the protocol is obtained.

Use this package at your own risk.  The author(s) is/are in no way responsible for any damage caused either to or by the
drone when using this software.

Features

The following features have been implemented...
  * Drone built-in flight commands, eg. TakeOff(), Land(), Flip()
  * 'Safe' variants which retry until the drone confirms the manoeuvre, eg. SafeTakeOff(), SafeLand()
  * Direct flight control via FlyDirect()
  * A live sensor store aggregating all telemetry, queryable by field name
  * Periodic sensor snapshots over a channel for real-time telemetry

Concepts

Transport and codec

The package does not speak UDP itself: it drives an injected DroneConnection which owns the wireless session,
packet framing and low-level acknowledgments, and it consumes telemetry already decoded by a SensorDecoder.
The transport calls UpdateSensors for every inbound telemetry buffer.

Commands vs. safe actions

Single-shot commands such as TakeOff() report only whether the transport accepted the packet.  The drone may
still ignore a command the network dropped.  The safe actions resend until the drone's own telemetry confirms
the transition has started, then wait for it to complete, all bounded by one deadline.  They idle via the
transport's SmartSleep so telemetry keeps arriving while they wait; a plain sleep here would starve the very
sensor updates the loop is watching for.

*/
package bebop
