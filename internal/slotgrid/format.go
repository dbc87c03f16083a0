package slotgrid

// FormatSlot converts a HH:MM time into a display ready slot.
func FormatSlot(clock string, isAvail bool, date string) (FormattedSlot, error) {
	t, err := ParseClock(clock)
	if err != nil {
		return FormattedSlot{}, err
	}

	return FormattedSlot{
		AmPM:         t.Format("PM"),
		Time:         clock,
		CivilianTime: t.Format(civilianLayout),
		IsAvail:      isAvail,
		Date:         date,
	}, nil
}

// TotalQty sums up the quantities of loose or staggered tires.
func TotalQty(qty []int) int {
	total := 0
	for _, q := range qty {
		total += q
	}

	return total
}
