package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChatMessage_SenderIDForms(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{name: "number", raw: `{"id":1,"senderId":1,"text":"hi"}`, want: "1"},
		{name: "large number", raw: `{"id":1,"senderId":1771588800001,"text":"hi"}`, want: "1771588800001"},
		{name: "string", raw: `{"id":1,"senderId":"user_123","text":"hi"}`, want: "user_123"},
		{name: "null", raw: `{"id":1,"senderId":null,"text":"hi"}`, want: ""},
		{name: "absent", raw: `{"id":1,"text":"hi"}`, want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var m ChatMessage
			require.NoError(t, json.Unmarshal([]byte(tt.raw), &m))
			assert.Equal(t, tt.want, m.SenderID)
			assert.Equal(t, int64(1), m.ID)
			assert.Equal(t, "hi", m.Text)
		})
	}
}

func TestChatMessage_RejectsOtherSenderIDTypes(t *testing.T) {
	var m ChatMessage
	assert.Error(t, json.Unmarshal([]byte(`{"id":1,"senderId":true}`), &m))
	assert.Error(t, json.Unmarshal([]byte(`{"id":1,"senderId":{"x":1}}`), &m))
}

func TestProject_ChatKeyFollowsSlice(t *testing.T) {
	withChat, err := json.Marshal(Project{ID: 1, Name: "A", Tasks: []Task{}, Chat: []ChatMessage{}})
	require.NoError(t, err)
	assert.Contains(t, string(withChat), `"chat":[]`)

	withoutChat, err := json.Marshal(Project{ID: 2, Name: "B", Tasks: []Task{}})
	require.NoError(t, err)
	assert.NotContains(t, string(withoutChat), `"chat"`)

	var back []Project
	require.NoError(t, json.Unmarshal([]byte("["+string(withChat)+","+string(withoutChat)+"]"), &back))
	require.Len(t, back, 2)
	assert.NotNil(t, back[0].Chat)
	assert.Nil(t, back[1].Chat)
}
