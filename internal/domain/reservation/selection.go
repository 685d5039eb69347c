package reservation

// ChooseSlot returns the first preferred slot key that is present in available.
// Keys are compared in canonical "HH:MM" form, so "19:00:00" matches "19:00".
// If preferred is empty, returns the earliest available slot.
func ChooseSlot(preferred []string, available []string) (string, bool) {
	if len(available) == 0 {
		return "", false
	}

	m := make(map[string]string, len(available))
	best := ""
	for _, s := range available {
		k, err := NormalizeSlotKey(s)
		if err != nil {
			continue
		}
		if _, ok := m[k]; !ok {
			m[k] = s
		}
		if best == "" || k < best {
			best = k
		}
	}
	if len(preferred) == 0 {
		if best == "" {
			return "", false
		}
		return m[best], true
	}

	for _, p := range preferred {
		k, err := NormalizeSlotKey(p)
		if err != nil {
			continue
		}
		if s, ok := m[k]; ok {
			return s, true
		}
	}
	return "", false
}
