package domain

import "time"

// SenderSelf marks a message written by the viewer.
const SenderSelf = "me"

// Message is one entry of a match's thread.
type Message struct {
	ID        string    `json:"_id,omitempty"`
	Sender    string    `json:"sender"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
}

// FromSelf reports whether the viewer sent the message.
func (m Message) FromSelf() bool {
	return m.Sender == SenderSelf
}

// DateGroup is a run of messages sharing one calendar date.
type DateGroup struct {
	Key      string // "2006-01-02" in the grouping location
	Date     time.Time
	Messages []Message
}

// Label renders the group header, e.g. "Monday, March 3".
func (g DateGroup) Label() string {
	return g.Date.Format("Monday, January 2")
}

// GroupByDate buckets messages by calendar date in loc. Groups appear in
// order of first appearance; a later message whose date was already seen
// joins that earlier group. A nil loc means time.Local.
func GroupByDate(msgs []Message, loc *time.Location) []DateGroup {
	if loc == nil {
		loc = time.Local
	}
	var groups []DateGroup
	index := make(map[string]int)
	for _, m := range msgs {
		t := m.CreatedAt.In(loc)
		key := t.Format("2006-01-02")
		i, ok := index[key]
		if !ok {
			i = len(groups)
			index[key] = i
			y, mo, d := t.Date()
			groups = append(groups, DateGroup{Key: key, Date: time.Date(y, mo, d, 0, 0, 0, 0, loc)})
		}
		groups[i].Messages = append(groups[i].Messages, m)
	}
	return groups
}

// Flatten concatenates grouped messages back into one sequence.
func Flatten(groups []DateGroup) []Message {
	var out []Message
	for _, g := range groups {
		out = append(out, g.Messages...)
	}
	return out
}
