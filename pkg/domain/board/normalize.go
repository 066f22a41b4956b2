package board

import (
	"fmt"
	"log/slog"
	"sort"
)

const commentActionType = "commentCard"

// unknownErrMsg is the fallback when a source hands over nothing at all.
const unknownErrMsg = "Unknown error retrieving board data"

// Normalizer turns raw board data into the normalized snapshot model.
type Normalizer struct {
	logger *slog.Logger
}

// NewNormalizer creates a Normalizer. A nil logger falls back to slog.Default.
func NewNormalizer(logger *slog.Logger) *Normalizer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Normalizer{logger: logger}
}

// Normalize resolves cross-references (list names, member names, comments,
// blocker flags) and produces an immutable Snapshot. If the raw input carries
// an error indicator, that error is propagated as the sole result and no
// partial processing happens.
func (n *Normalizer) Normalize(raw *RawSnapshot) (snap *Snapshot, err error) {
	if raw == nil {
		n.logger.Error("error in board data", "error", unknownErrMsg)
		return nil, &UpstreamError{Msg: unknownErrMsg}
	}
	if raw.Error != "" {
		n.logger.Error("error in board data", "error", raw.Error)
		return nil, &UpstreamError{Msg: raw.Error}
	}

	defer func() {
		if r := recover(); r != nil {
			snap = nil
			err = fmt.Errorf("Error processing board data: %v", r)
		}
	}()

	n.logger.Info("processing board data",
		"cards", len(raw.Cards), "lists", len(raw.Lists), "members", len(raw.Members))

	listByID := make(map[string]RawList, len(raw.Lists))
	for _, l := range raw.Lists {
		listByID[l.ID] = l
	}
	memberByID := make(map[string]RawMember, len(raw.Members))
	for _, m := range raw.Members {
		memberByID[m.ID] = m
	}

	cards := make([]Card, 0, len(raw.Cards))
	for _, rc := range raw.Cards {
		cards = append(cards, normalizeCard(rc, listByID, memberByID))
	}

	lists := make([]List, 0, len(raw.Lists))
	for _, rl := range raw.Lists {
		lists = append(lists, List(rl))
	}
	sort.SliceStable(lists, func(i, j int) bool { return lists[i].Pos < lists[j].Pos })

	members := make([]Member, 0, len(raw.Members))
	for _, rm := range raw.Members {
		members = append(members, Member(rm))
	}

	return &Snapshot{
		BoardID:   raw.BoardID,
		Cards:     cards,
		Lists:     lists,
		Members:   members,
		Timestamp: raw.Timestamp,
	}, nil
}

// normalizeCard resolves a single card. Unresolvable list references become
// "Unknown"; unresolvable member ids are dropped silently.
func normalizeCard(rc RawCard, listByID map[string]RawList, memberByID map[string]RawMember) Card {
	listName := "Unknown"
	if rc.ListID != "" {
		if l, ok := listByID[rc.ListID]; ok {
			listName = l.Name
		}
	}

	var members []CardMember
	for _, id := range rc.MemberIDs {
		rm, ok := memberByID[id]
		if !ok {
			continue
		}
		members = append(members, CardMember{ID: id, Name: memberDisplayName(rm)})
	}

	var comments []Comment
	for _, a := range rc.Actions {
		if a.Type != commentActionType {
			continue
		}
		comments = append(comments, Comment{
			ID:     a.ID,
			Text:   a.Data.Text,
			Date:   a.Date,
			Author: actionAuthor(a.MemberCreator),
		})
	}

	labels := make([]Label, 0, len(rc.Labels))
	for _, rl := range rc.Labels {
		labels = append(labels, Label(rl))
	}
	attachments := make([]Attachment, 0, len(rc.Attachments))
	for _, ra := range rc.Attachments {
		attachments = append(attachments, Attachment(ra))
	}

	isBlocker, reason := DetectBlocker(labels, comments)

	return Card{
		ID:               rc.ID,
		Name:             rc.Name,
		Desc:             rc.Desc,
		URL:              rc.URL,
		ListID:           rc.ListID,
		ListName:         listName,
		Due:              rc.Due,
		DueComplete:      rc.DueComplete,
		DateLastActivity: rc.DateLastActivity,
		Labels:           labels,
		MemberIDs:        rc.MemberIDs,
		Members:          members,
		Comments:         comments,
		Attachments:      attachments,
		IsComplete:       IsDoneList(listName),
		IsBlocker:        isBlocker,
		BlockerReason:    reason,
	}
}

// DetectBlocker applies the two-step blocker convention, short-circuiting on
// the first match: a red label wins over any comment mention.
func DetectBlocker(labels []Label, comments []Comment) (bool, string) {
	for _, l := range labels {
		if IsBlockerLabel(l) {
			name := l.Name
			if name == "" {
				name = "Blocker"
			}
			return true, fmt.Sprintf("Red label: %s", name)
		}
	}
	for _, c := range comments {
		if MentionsBlocker(c.Text) {
			return true, fmt.Sprintf("Blocker mentioned in comment: %s...", truncate(c.Text, blockerReasonLimit))
		}
	}
	return false, ""
}

func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}

func memberDisplayName(m RawMember) string {
	if m.FullName != "" {
		return m.FullName
	}
	if m.Username != "" {
		return m.Username
	}
	return "Unknown"
}

func actionAuthor(m *RawActionMember) string {
	if m == nil {
		return ""
	}
	if m.FullName != "" {
		return m.FullName
	}
	if m.Username != "" {
		return m.Username
	}
	return "Unknown"
}
