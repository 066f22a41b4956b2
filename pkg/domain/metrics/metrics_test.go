package metrics

import (
	"testing"
	"time"

	"github.com/sprintlens/sprintlens/pkg/domain/board"
)

var fixedNow = time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)

func fixedCalculator() *Calculator {
	c := NewCalculator(DefaultConfig(), nil)
	c.now = func() time.Time { return fixedNow }
	return c
}

func iso(t time.Time) string {
	return t.Format(time.RFC3339)
}

func TestCalculator_Compute_EmptyBoard(t *testing.T) {
	m := fixedCalculator().Compute(nil, nil)

	if m.TotalCards != 0 {
		t.Errorf("TotalCards = %d, want 0", m.TotalCards)
	}
	if m.CompletionRate != 0 {
		t.Errorf("CompletionRate = %v, want 0 (no division by zero)", m.CompletionRate)
	}
	if len(m.CardsByList) != 0 || m.BlockersCount != 0 || m.OverdueCount != 0 {
		t.Errorf("empty board should produce empty metrics, got %+v", m)
	}
}

func TestCalculator_Compute_CompletionRate(t *testing.T) {
	lists := []board.List{
		{ID: "l1", Name: "To Do", Pos: 1},
		{ID: "l2", Name: "Done", Pos: 2},
	}
	cards := make([]board.Card, 0, 10)
	for i := 0; i < 7; i++ {
		cards = append(cards, board.Card{ID: "t", ListID: "l1"})
	}
	for i := 0; i < 3; i++ {
		cards = append(cards, board.Card{ID: "d", ListID: "l2"})
	}

	m := fixedCalculator().Compute(cards, lists)

	if m.CompletionRate != 30.0 {
		t.Errorf("CompletionRate = %v, want 30.0", m.CompletionRate)
	}
	if got := m.CardsByList["To Do"]; got != 7 {
		t.Errorf("CardsByList[To Do] = %d, want 7", got)
	}
	if got := m.CardsByList["Done"]; got != 3 {
		t.Errorf("CardsByList[Done] = %d, want 3", got)
	}
}

func TestCalculator_Compute_UnresolvedListDropped(t *testing.T) {
	lists := []board.List{{ID: "l1", Name: "To Do", Pos: 1}}
	cards := []board.Card{
		{ID: "c1", ListID: "l1"},
		{ID: "c2", ListID: "ghost"},
		{ID: "c3"},
	}

	m := fixedCalculator().Compute(cards, lists)

	if got := m.CardsByList["To Do"]; got != 1 {
		t.Errorf("CardsByList[To Do] = %d, want 1", got)
	}
	if _, ok := m.CardsByList["Unknown"]; ok {
		t.Error("unresolved cards must not be counted under Unknown")
	}
	if m.TotalCards != 3 {
		t.Errorf("TotalCards = %d, want 3 (unresolved cards still counted in total)", m.TotalCards)
	}
}

func TestCalculator_Compute_Blockers(t *testing.T) {
	lists := []board.List{{ID: "l1", Name: "In Progress", Pos: 1}}

	tests := []struct {
		name      string
		card      board.Card
		wantCount int
	}{
		{
			name: "red label",
			card: board.Card{ID: "c1", Name: "Stuck", URL: "https://example.test/c1", ListID: "l1",
				Labels: []board.Label{{Name: "Critical", Color: "red"}}},
			wantCount: 1,
		},
		{
			name: "blocker comment any case",
			card: board.Card{ID: "c2", Name: "Waiting", ListID: "l1",
				Comments: []board.Comment{{Text: "BLOCKED: this is a Blocker"}}},
			wantCount: 1,
		},
		{
			name:      "clean card",
			card:      board.Card{ID: "c3", Name: "Fine", ListID: "l1"},
			wantCount: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := fixedCalculator().Compute([]board.Card{tt.card}, lists)
			if m.BlockersCount != tt.wantCount {
				t.Fatalf("BlockersCount = %d, want %d", m.BlockersCount, tt.wantCount)
			}
			if tt.wantCount == 1 {
				entry := m.Blockers[0]
				if entry.ID != tt.card.ID || entry.List != "In Progress" {
					t.Errorf("blocker entry = %+v, want id %q in list In Progress", entry, tt.card.ID)
				}
			}
		})
	}
}

func TestCalculator_Compute_DeadlineBuckets(t *testing.T) {
	lists := []board.List{{ID: "l1", Name: "To Do", Pos: 1}}

	tests := []struct {
		name            string
		card            board.Card
		wantApproaching int
		wantOverdue     int
	}{
		{
			name:            "due tomorrow",
			card:            board.Card{ID: "c1", ListID: "l1", Due: iso(fixedNow.Add(24 * time.Hour))},
			wantApproaching: 1,
		},
		{
			name:            "due exactly at window end",
			card:            board.Card{ID: "c2", ListID: "l1", Due: iso(fixedNow.Add(72 * time.Hour))},
			wantApproaching: 1,
		},
		{
			name: "due beyond window",
			card: board.Card{ID: "c3", ListID: "l1", Due: iso(fixedNow.Add(96 * time.Hour))},
		},
		{
			name:        "due yesterday",
			card:        board.Card{ID: "c4", ListID: "l1", Due: iso(fixedNow.Add(-24 * time.Hour))},
			wantOverdue: 1,
		},
		{
			name: "due yesterday but checked off",
			card: board.Card{ID: "c5", ListID: "l1", Due: iso(fixedNow.Add(-24 * time.Hour)), DueComplete: true},
		},
		{
			name: "due tomorrow but checked off",
			card: board.Card{ID: "c6", ListID: "l1", Due: iso(fixedNow.Add(24 * time.Hour)), DueComplete: true},
		},
		{
			name: "unparseable due date skipped",
			card: board.Card{ID: "c7", ListID: "l1", Due: "soon"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := fixedCalculator().Compute([]board.Card{tt.card}, lists)
			if m.ApproachingDeadlinesCount != tt.wantApproaching {
				t.Errorf("ApproachingDeadlinesCount = %d, want %d", m.ApproachingDeadlinesCount, tt.wantApproaching)
			}
			if m.OverdueCount != tt.wantOverdue {
				t.Errorf("OverdueCount = %d, want %d", m.OverdueCount, tt.wantOverdue)
			}
			if m.Err != "" {
				t.Errorf("Err = %q, want empty (parse failures are not errors)", m.Err)
			}
		})
	}
}

func TestCalculator_Compute_DeadlineEntryEchoesRawDue(t *testing.T) {
	lists := []board.List{{ID: "l1", Name: "To Do", Pos: 1}}
	due := iso(fixedNow.Add(-2 * time.Hour))
	cards := []board.Card{{ID: "c1", Name: "Late", ListID: "l1", Due: due}}

	m := fixedCalculator().Compute(cards, lists)

	if len(m.OverdueCards) != 1 {
		t.Fatalf("OverdueCards = %d entries, want 1", len(m.OverdueCards))
	}
	if got := m.OverdueCards[0].Due; got != due {
		t.Errorf("entry due = %q, want raw %q", got, due)
	}
}
