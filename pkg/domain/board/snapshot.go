package board

// Snapshot is the normalized read model of a board at a point in time.
// It is immutable once constructed; every derived view below is computed on
// demand, never stored.
type Snapshot struct {
	BoardID   string   `json:"board_id" yaml:"board_id"`
	Cards     []Card   `json:"cards" yaml:"cards"`
	Lists     []List   `json:"lists" yaml:"lists"` // sorted ascending by Pos
	Members   []Member `json:"members" yaml:"members"`
	Timestamp float64  `json:"timestamp" yaml:"timestamp"`
}

// ListNames returns the list names in pipeline order.
func (s *Snapshot) ListNames() []string {
	names := make([]string, 0, len(s.Lists))
	for _, l := range s.Lists {
		names = append(names, l.Name)
	}
	return names
}

// CardsByList groups cards under every known list name. Cards whose list
// could not be resolved are not grouped.
func (s *Snapshot) CardsByList() map[string][]Card {
	grouped := make(map[string][]Card, len(s.Lists))
	for _, l := range s.Lists {
		grouped[l.Name] = nil
	}
	for _, c := range s.Cards {
		if _, ok := grouped[c.ListName]; ok {
			grouped[c.ListName] = append(grouped[c.ListName], c)
		}
	}
	return grouped
}

// CardsByMember groups cards by member display name.
func (s *Snapshot) CardsByMember() map[string][]Card {
	grouped := make(map[string][]Card)
	for _, c := range s.Cards {
		for _, m := range c.Members {
			grouped[m.Name] = append(grouped[m.Name], c)
		}
	}
	return grouped
}

// Blockers returns all cards flagged as blockers.
func (s *Snapshot) Blockers() []Card {
	var blocked []Card
	for _, c := range s.Cards {
		if c.IsBlocker {
			blocked = append(blocked, c)
		}
	}
	return blocked
}

// OverdueCards returns all cards past their due date.
func (s *Snapshot) OverdueCards() []Card {
	var overdue []Card
	for _, c := range s.Cards {
		if c.IsOverdue() {
			overdue = append(overdue, c)
		}
	}
	return overdue
}

// CompletedCount returns how many cards sit in the done list.
func (s *Snapshot) CompletedCount() int {
	n := 0
	for _, c := range s.Cards {
		if c.IsComplete {
			n++
		}
	}
	return n
}
