package relay

// IsFlagActive reports whether the waffle flag with the given name is
// active. The first entry with a matching name governs, even if the name
// appears again later in the list. It is false while rd is nil or when the
// flag is not listed.
func IsFlagActive(rd *RuntimeData, name string) bool {
	if rd == nil {
		return false
	}
	return rd.WaffleFlags.IsActive(name)
}

// IsSwitchActive is like IsFlagActive for waffle switches.
func IsSwitchActive(rd *RuntimeData, name string) bool {
	if rd == nil {
		return false
	}
	return rd.WaffleSwitches.IsActive(name)
}

// IsActive returns the state of the first toggle called name.
func (w Waffles) IsActive(name string) bool {
	for _, waffle := range w {
		if waffle.Name == name {
			return waffle.Active
		}
	}
	return false
}
