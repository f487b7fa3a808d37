// README: Add-on surcharges compounded sequentially on a running price.
package pricing

import (
	"fmt"
	"math"
)

const (
	defaultNightDutyPct = 20.0
	defaultEmergencyPct = 15.0
	sundayHolidayPct    = 10.0
	extendedSessionPct  = 10.0
	consumablesLabel    = "Consumables (billed separately)"
)

// AddOns selects the surcharges for a booking. Zero percentages fall back to
// the defaults. ConsumablesCost is itemised but never added to the price.
type AddOns struct {
	IsNightDuty         bool    `json:"isNightDuty"`
	IsEmergency         bool    `json:"isEmergency"`
	IsSundayHoliday     bool    `json:"isSundayHoliday"`
	IsExtendedSession   bool    `json:"isExtendedSession"`
	NightDutyPercentage float64 `json:"nightDutyPercentage,omitempty"`
	EmergencyPercentage float64 `json:"emergencyPercentage,omitempty"`
	ConsumablesCost     float64 `json:"consumablesCost,omitempty"`
}

func (a AddOns) nightDutyPct() float64 {
	if a.NightDutyPercentage != 0 {
		return a.NightDutyPercentage
	}
	return defaultNightDutyPct
}

func (a AddOns) emergencyPct() float64 {
	if a.EmergencyPercentage != 0 {
		return a.EmergencyPercentage
	}
	return defaultEmergencyPct
}

// surcharge is one percentage step. Amount receives the rounded charge.
type surcharge struct {
	label  string
	pct    float64
	amount *int64
}

// compound applies each step to the running price, rounding after every step.
// Order matters: the result differs from applying all steps to the base.
func compound(price int64, steps []surcharge) (int64, []string) {
	labels := make([]string, 0, len(steps))
	for _, s := range steps {
		charge := roundHalfUp(float64(price) * (s.pct / 100))
		price += charge
		if s.amount != nil {
			*s.amount = charge
		}
		labels = append(labels, s.label)
	}
	return price, labels
}

// flatRateSteps returns the enabled surcharges in their fixed order:
// night duty, Sunday/holiday, extended session, emergency.
func flatRateSteps(a AddOns, b *Breakdown) []surcharge {
	var steps []surcharge
	if a.IsNightDuty {
		steps = append(steps, surcharge{label: nightDutyLabel(a.nightDutyPct()), pct: a.nightDutyPct(), amount: &b.NightDutyCharge})
	}
	if a.IsSundayHoliday {
		steps = append(steps, surcharge{label: percentLabel("Sunday/Holiday", sundayHolidayPct), pct: sundayHolidayPct, amount: &b.SundayHolidayCharge})
	}
	if a.IsExtendedSession {
		steps = append(steps, surcharge{label: percentLabel("Extended Session", extendedSessionPct), pct: extendedSessionPct, amount: &b.ExtendedSessionCharge})
	}
	if a.IsEmergency {
		steps = append(steps, surcharge{label: emergencyLabel(a.emergencyPct()), pct: a.emergencyPct(), amount: &b.EmergencyCharge})
	}
	return steps
}

// ApplyAddOns compounds the enabled surcharges onto basePrice without any
// geography adjustment.
func ApplyAddOns(basePrice float64, addOns AddOns) int64 {
	var scratch Breakdown
	price, _ := compound(roundHalfUp(basePrice), flatRateSteps(addOns, &scratch))
	return price
}

func nightDutyLabel(pct float64) string { return percentLabel("Night Duty", pct) }

func emergencyLabel(pct float64) string { return percentLabel("Emergency/Same-day", pct) }

func percentLabel(name string, pct float64) string {
	return fmt.Sprintf("%s (+%s%%)", name, formatPct(pct))
}

func formatPct(pct float64) string {
	return fmt.Sprintf("%g", pct)
}

// roundHalfUp rounds halves towards positive infinity.
func roundHalfUp(v float64) int64 {
	return int64(math.Floor(v + 0.5))
}
