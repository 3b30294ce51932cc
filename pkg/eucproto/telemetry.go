// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 The euc-charging authors

package eucproto

// Telemetry is one normalized reading decoded from a single frame.
// Every field is populated by the family decoder that produced it; a
// Telemetry value is never mutated after it is returned.
type Telemetry struct {
	Family Family

	Voltage       float64 // volts
	Current       float64 // amps, signed; sign convention is per family
	Speed         float64 // km/h, signed
	TripDistance  float64 // km since power-on
	TotalDistance float64 // km odometer
	Temperature   float64 // degrees Celsius

	PWM    float64 // motor duty 0-100, families that report it
	HasPWM bool

	BatteryPercent float64 // 0-100, from the session's battery profile
	SystemVoltage  float64 // full-charge pack voltage of the profile
	Charging       bool
	ChargeMode     int // raw charge mode word, families that report it

	Model           string // model hint, families that embed one
	FirmwareVersion string
}
