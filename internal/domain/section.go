package domain

// Section is the canonical physical track segment between two hub
// stations. Stations holds the full ordered chain: the first and last
// entries are the bounding hubs, everything in between is an
// intermediate stop that lies on this section and no other.
//
// LengthKm holds the officially published countable length per service
// type. The published length is what counts toward the score, not the
// geometric distance of any particular traversal.
type Section struct {
	ID       string
	Stations []string
	LengthKm map[ServiceType]float64
}

// HubA returns the first bounding hub of the section.
func (s Section) HubA() string {
	if len(s.Stations) == 0 {
		return ""
	}
	return s.Stations[0]
}

// HubB returns the second bounding hub of the section.
func (s Section) HubB() string {
	if len(s.Stations) == 0 {
		return ""
	}
	return s.Stations[len(s.Stations)-1]
}

// Contains reports whether the station lies on this section, hubs included.
func (s Section) Contains(code string) bool {
	for _, st := range s.Stations {
		if st == code {
			return true
		}
	}
	return false
}

// SectionKey identifies one countable claim: a physical section traversed
// by one service type. Direction is deliberately absent; riding a section
// back does not create a new key. An explicit struct key avoids the
// collision risk of concatenated strings.
type SectionKey struct {
	SectionID string
	Type      ServiceType
}
