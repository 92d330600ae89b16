package prefs

// Slot is a six-hour window of the day used to cap ad frequency.
type Slot string

const (
	SlotNone      Slot = "NONE"
	SlotNight     Slot = "SLOT_00_06"
	SlotMorning   Slot = "SLOT_06_12"
	SlotAfternoon Slot = "SLOT_12_18"
	SlotEvening   Slot = "SLOT_18_24"
)

// ParseSlot maps a stored name to a Slot. Names from older releases such as
// MORNING or EVENING read as SlotNone.
func ParseSlot(name string) Slot {
	switch s := Slot(name); s {
	case SlotNone, SlotNight, SlotMorning, SlotAfternoon, SlotEvening:
		return s
	}
	return SlotNone
}

// SlotForHour returns the slot containing a wall-clock hour.
func SlotForHour(hour int) Slot {
	switch {
	case hour < 6:
		return SlotNight
	case hour < 12:
		return SlotMorning
	case hour < 18:
		return SlotAfternoon
	default:
		return SlotEvening
	}
}
