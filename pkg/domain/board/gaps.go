package board

// CardGaps lists the missing-field warnings collected for one card.
type CardGaps struct {
	CardID   string   `json:"card_id" yaml:"card_id"`
	CardName string   `json:"card_name" yaml:"card_name"`
	ListName string   `json:"list_name" yaml:"list_name"`
	Gaps     []string `json:"gaps" yaml:"gaps"`
}

// Gap warning texts.
const (
	gapMissingDue  = "Missing due date"
	gapMissingDesc = "Missing description"
	gapNoMembers   = "No assigned members"
)

// ScanGaps walks the cards and collects missing-field warnings: no due date
// on an incomplete card, an empty description, no assigned members. Returns
// an empty slice when the board is clean.
func ScanGaps(cards []Card) []CardGaps {
	gaps := []CardGaps{}
	for _, c := range cards {
		var found []string
		if !c.IsComplete && !c.HasDue() {
			found = append(found, gapMissingDue)
		}
		if c.Desc == "" {
			found = append(found, gapMissingDesc)
		}
		if len(c.Members) == 0 {
			found = append(found, gapNoMembers)
		}
		if len(found) > 0 {
			gaps = append(gaps, CardGaps{
				CardID:   c.ID,
				CardName: c.Name,
				ListName: c.ListName,
				Gaps:     found,
			})
		}
	}
	return gaps
}
