package board

import (
	"testing"
	"time"
)

func testSnapshot() *Snapshot {
	due := time.Now().Add(-24 * time.Hour).Format(time.RFC3339)
	return &Snapshot{
		BoardID: "b1",
		Lists: []List{
			{ID: "l1", Name: "To Do", Pos: 1},
			{ID: "l2", Name: "Done", Pos: 2},
		},
		Cards: []Card{
			{ID: "c1", Name: "One", ListName: "To Do", Members: []CardMember{{ID: "m1", Name: "Ada"}}},
			{ID: "c2", Name: "Two", ListName: "Done", IsComplete: true, Members: []CardMember{{ID: "m1", Name: "Ada"}, {ID: "m2", Name: "Grace"}}},
			{ID: "c3", Name: "Three", ListName: "Unknown", IsBlocker: true, BlockerReason: "Red label: Stuck"},
			{ID: "c4", Name: "Four", ListName: "To Do", Due: due},
		},
	}
}

func TestSnapshot_CardsByList(t *testing.T) {
	grouped := testSnapshot().CardsByList()

	if got := len(grouped); got != 2 {
		t.Fatalf("groups = %d, want 2 (unresolved cards not grouped)", got)
	}
	if got := len(grouped["To Do"]); got != 2 {
		t.Errorf("To Do cards = %d, want 2", got)
	}
	if got := len(grouped["Done"]); got != 1 {
		t.Errorf("Done cards = %d, want 1", got)
	}
	if _, ok := grouped["Unknown"]; ok {
		t.Error("cards in unresolved lists must not create a group")
	}
}

func TestSnapshot_CardsByMember(t *testing.T) {
	grouped := testSnapshot().CardsByMember()

	if got := len(grouped["Ada"]); got != 2 {
		t.Errorf("Ada cards = %d, want 2", got)
	}
	if got := len(grouped["Grace"]); got != 1 {
		t.Errorf("Grace cards = %d, want 1", got)
	}
}

func TestSnapshot_Blockers(t *testing.T) {
	blockers := testSnapshot().Blockers()
	if len(blockers) != 1 || blockers[0].ID != "c3" {
		t.Errorf("Blockers() = %v, want single card c3", blockers)
	}
}

func TestSnapshot_OverdueCards(t *testing.T) {
	overdue := testSnapshot().OverdueCards()
	if len(overdue) != 1 || overdue[0].ID != "c4" {
		t.Errorf("OverdueCards() = %v, want single card c4", overdue)
	}
}

func TestSnapshot_CompletedCount(t *testing.T) {
	if got := testSnapshot().CompletedCount(); got != 1 {
		t.Errorf("CompletedCount() = %d, want 1", got)
	}
}

func TestCard_IsOverdue(t *testing.T) {
	past := time.Now().Add(-48 * time.Hour).Format(time.RFC3339)
	future := time.Now().Add(48 * time.Hour).Format(time.RFC3339)

	tests := []struct {
		name string
		card Card
		want bool
	}{
		{"past due", Card{Due: past}, true},
		{"past due but checked off", Card{Due: past, DueComplete: true}, false},
		{"future due", Card{Due: future}, false},
		{"no due date", Card{}, false},
		{"unparseable due date", Card{Due: "next tuesday"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.card.IsOverdue(); got != tt.want {
				t.Errorf("IsOverdue() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMember_DisplayName(t *testing.T) {
	tests := []struct {
		name   string
		member Member
		want   string
	}{
		{"full name preferred", Member{FullName: "Ada Lovelace", Username: "ada"}, "Ada Lovelace"},
		{"username fallback", Member{Username: "ada"}, "ada"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.member.DisplayName(); got != tt.want {
				t.Errorf("DisplayName() = %q, want %q", got, tt.want)
			}
		})
	}
}
