package board

// Raw wire types, field names as the board API delivers them.

// RawLabel is a label as fetched.
type RawLabel struct {
	ID    string `json:"id,omitempty"`
	Name  string `json:"name"`
	Color string `json:"color"`
}

// RawActionData carries the payload of a card action.
type RawActionData struct {
	Text string `json:"text"`
}

// RawActionMember identifies the member who created an action.
type RawActionMember struct {
	ID       string `json:"id,omitempty"`
	FullName string `json:"fullName,omitempty"`
	Username string `json:"username,omitempty"`
}

// RawAction is an entry from a card's action stream. Only entries with
// type "commentCard" become comments; everything else is ignored.
type RawAction struct {
	ID            string           `json:"id"`
	Type          string           `json:"type"`
	Date          string           `json:"date"`
	Data          RawActionData    `json:"data"`
	MemberCreator *RawActionMember `json:"memberCreator,omitempty"`
}

// RawAttachment is an attachment as fetched.
type RawAttachment struct {
	ID   string `json:"id,omitempty"`
	Name string `json:"name"`
	URL  string `json:"url"`
	Date string `json:"date,omitempty"`
}

// RawCard is a card as fetched, before cross-references are resolved.
type RawCard struct {
	ID               string          `json:"id"`
	Name             string          `json:"name"`
	Desc             string          `json:"desc,omitempty"`
	URL              string          `json:"url,omitempty"`
	ListID           string          `json:"idList,omitempty"`
	Due              string          `json:"due,omitempty"`
	DueComplete      bool            `json:"dueComplete"`
	DateLastActivity string          `json:"dateLastActivity,omitempty"`
	Labels           []RawLabel      `json:"labels,omitempty"`
	MemberIDs        []string        `json:"idMembers,omitempty"`
	Actions          []RawAction     `json:"actions,omitempty"`
	Attachments      []RawAttachment `json:"attachments,omitempty"`
}

// RawList is a list as fetched.
type RawList struct {
	ID     string  `json:"id"`
	Name   string  `json:"name"`
	Closed bool    `json:"closed"`
	Pos    float64 `json:"pos"`
}

// RawMember is a member as fetched.
type RawMember struct {
	ID        string `json:"id"`
	FullName  string `json:"fullName,omitempty"`
	Username  string `json:"username,omitempty"`
	AvatarURL string `json:"avatarUrl,omitempty"`
}

// RawSnapshot is the input boundary object delivered by a board source.
// A non-empty Error means the fetch failed; analysis must propagate the
// message verbatim and skip everything else.
type RawSnapshot struct {
	BoardID   string      `json:"board_id"`
	Cards     []RawCard   `json:"cards"`
	Lists     []RawList   `json:"lists"`
	Members   []RawMember `json:"members"`
	Timestamp float64     `json:"timestamp"`
	Status    string      `json:"status,omitempty"`
	Error     string      `json:"error,omitempty"`
}

// UpstreamError signals that the input snapshot itself reported a failure.
// Error() returns the upstream message verbatim so it can cross the output
// boundary unchanged.
type UpstreamError struct {
	Msg string
}

func (e *UpstreamError) Error() string {
	return e.Msg
}
