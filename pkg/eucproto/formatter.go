// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 The euc-charging authors

package eucproto

import (
	"fmt"
	"time"
)

// FormatTelemetry formats a telemetry record into a human-readable line
func FormatTelemetry(t *Telemetry) string {
	result := fmt.Sprintf("[%s] %s", time.Now().Format("15:04:05.000"), t.Family)
	if t.Model != "" {
		result += fmt.Sprintf(" (%s)", t.Model)
	}
	result += fmt.Sprintf(" %.2fV %.2fA %.1fkm/h %.1f°C", t.Voltage, t.Current, t.Speed, t.Temperature)
	result += fmt.Sprintf(" batt=%.0f%%", t.BatteryPercent)
	if t.HasPWM {
		result += fmt.Sprintf(" pwm=%.1f%%", t.PWM)
	}
	if t.Charging {
		result += " CHARGING"
	}
	return result
}

// FormatTelemetryDetail formats a record as a multi-line block for the
// interactive monitor
func FormatTelemetryDetail(t *Telemetry) string {
	result := fmt.Sprintf("Family:        %s (%s)\n", t.Family, t.Family.Manufacturer())
	if t.Model != "" {
		result += fmt.Sprintf("Model:         %s\n", t.Model)
	}
	if t.FirmwareVersion != "" {
		result += fmt.Sprintf("Firmware:      %s\n", t.FirmwareVersion)
	}
	result += fmt.Sprintf("Voltage:       %.2f V", t.Voltage)
	if t.SystemVoltage > 0 {
		result += fmt.Sprintf(" (pack %.1f V)", t.SystemVoltage)
	}
	result += "\n"
	result += fmt.Sprintf("Current:       %.2f A\n", t.Current)
	result += fmt.Sprintf("Speed:         %.1f km/h\n", t.Speed)
	result += fmt.Sprintf("Trip:          %.3f km\n", t.TripDistance)
	result += fmt.Sprintf("Odometer:      %.3f km\n", t.TotalDistance)
	result += fmt.Sprintf("Temperature:   %.1f °C\n", t.Temperature)
	if t.HasPWM {
		result += fmt.Sprintf("PWM:           %.1f %%\n", t.PWM)
	}
	result += fmt.Sprintf("Battery:       %.0f %%\n", t.BatteryPercent)
	result += fmt.Sprintf("Charging:      %s\n", formatBool(t.Charging))
	return result
}

func formatBool(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}
