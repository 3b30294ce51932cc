// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 The euc-charging authors

package eucproto

// BatteryProfile describes one supported series cell configuration.
type BatteryProfile struct {
	Name           string  // "24S" etc.
	Cells          int     // cells in series
	MaxVoltage     float64 // full-charge pack voltage
	NominalVoltage float64
}

// MinVoltage returns the empty-pack voltage (3.0 V per cell).
func (p BatteryProfile) MinVoltage() float64 {
	return float64(p.Cells) * 3.0
}

// Profiles lists the six supported cell configurations, ascending.
var Profiles = []BatteryProfile{
	{"16S", 16, 67.2, 59.2},
	{"20S", 20, 84.0, 74.0},
	{"24S", 24, 100.8, 88.8},
	{"30S", 30, 126.0, 111.0},
	{"36S", 36, 151.2, 133.2},
	{"42S", 42, 176.4, 155.4},
}

// minPlausibleVoltage filters startup garbage: no supported pack reads
// below this, so earlier samples never bind a profile.
const minPlausibleVoltage = 40.0

// ResolveProfile picks the cell configuration whose voltage band contains
// the sample. The thresholds sit between adjacent bands so that a pack
// sagging under load still resolves to its own configuration. Returns
// false when the sample is implausibly low.
func ResolveProfile(voltage float64) (BatteryProfile, bool) {
	if voltage < minPlausibleVoltage {
		return BatteryProfile{}, false
	}
	switch {
	case voltage > 165.0:
		return Profiles[5], true // 42S
	case voltage > 140.0:
		return Profiles[4], true // 36S
	case voltage > 115.0:
		return Profiles[3], true // 30S
	case voltage > 90.0:
		return Profiles[2], true // 24S
	case voltage > 75.0:
		return Profiles[1], true // 20S
	default:
		return Profiles[0], true // 16S
	}
}

// ProfileForSystemVoltage finds the profile whose full-charge voltage
// matches within one volt, for families that declare their pack outright
// (Veteran's model table). Returns false when nothing matches.
func ProfileForSystemVoltage(systemVoltage float64) (BatteryProfile, bool) {
	for _, p := range Profiles {
		d := systemVoltage - p.MaxVoltage
		if d < 1.0 && d > -1.0 {
			return p, true
		}
	}
	return BatteryProfile{}, false
}

// Percent estimates state of charge from pack voltage.
//
// The curve follows real lithium-ion discharge rather than a straight
// line between min and max: 100% above 4.14 V/cell, a wide linear band
// down to 3.40 V/cell covering 100%..20%, a steep 20%..0% drop between
// 3.40 and 3.31 V/cell, and 0% below. Monotone non-decreasing in voltage
// and clamped to [0,100].
func (p BatteryProfile) Percent(voltage float64) float64 {
	// Work in centivolts like the firmware does.
	cv := int(voltage * 100)
	full := int(p.MaxVoltage*100) - p.Cells*6 // 4.14 V per cell
	upper := p.Cells * 340
	lower := p.Cells * 331

	switch {
	case cv >= full:
		return 100.0
	case cv > upper:
		return 20.0 + float64(cv-upper)/float64(full-upper)*80.0
	case cv > lower:
		return float64(cv-lower) / float64(upper-lower) * 20.0
	default:
		return 0.0
	}
}

// batteryState is the per-session profile holder. The profile binds on
// the first plausible voltage sample and never changes for the life of
// the session.
type batteryState struct {
	profile *BatteryProfile
}

// bind fixes the profile explicitly (model-table families).
func (b *batteryState) bind(p BatteryProfile) {
	if b.profile == nil {
		b.profile = &p
	}
}

// percent resolves the profile on first use and returns the estimate.
func (b *batteryState) percent(voltage float64) float64 {
	if b.profile == nil {
		p, ok := ResolveProfile(voltage)
		if !ok {
			return 0.0
		}
		b.profile = &p
	}
	return b.profile.Percent(voltage)
}

// apply fills the derived battery fields of a decoded sample, resolving
// the profile from the sample's voltage if none is bound yet.
func (b *batteryState) apply(t *Telemetry) {
	t.BatteryPercent = b.percent(t.Voltage)
	t.SystemVoltage = b.systemVoltage()
}

// systemVoltage reports the bound pack's full-charge voltage, 0 if the
// profile is still unresolved.
func (b *batteryState) systemVoltage() float64 {
	if b.profile == nil {
		return 0.0
	}
	return b.profile.MaxVoltage
}
