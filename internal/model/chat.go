package model

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// TimestampLayout is the ISO-8601 form used for chat message timestamps.
const TimestampLayout = "2006-01-02T15:04:05.000Z07:00"

// ChatMessage is one entry in a project's append-only discussion.
type ChatMessage struct {
	ID           int64  `json:"id" yaml:"id"`
	SenderID     string `json:"senderId" yaml:"senderId"`
	SenderName   string `json:"senderName" yaml:"senderName"`
	SenderAvatar string `json:"senderAvatar,omitempty" yaml:"senderAvatar,omitempty"`
	Text         string `json:"text" yaml:"text"`
	Timestamp    string `json:"timestamp" yaml:"timestamp"`
}

// UnmarshalJSON accepts senderId as a string or a number. Roster members
// post with numeric ids; signed-in users post with their subject.
func (m *ChatMessage) UnmarshalJSON(data []byte) error {
	type plain ChatMessage
	var raw struct {
		plain
		SenderID json.RawMessage `json:"senderId"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	id, err := parseSenderID(raw.SenderID)
	if err != nil {
		return err
	}
	*m = ChatMessage(raw.plain)
	m.SenderID = id
	return nil
}

func parseSenderID(raw json.RawMessage) (string, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return "", nil
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return "", fmt.Errorf("decoding senderId: %w", err)
		}
		return s, nil
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		return "", fmt.Errorf("senderId must be a string or number: %s", raw)
	}
	return n.String(), nil
}

// Employee is a member of the static team roster.
type Employee struct {
	ID     int64  `json:"id" yaml:"id"`
	Name   string `json:"name" yaml:"name"`
	Role   string `json:"role" yaml:"role"`
	Avatar string `json:"avatar" yaml:"avatar"`
}
