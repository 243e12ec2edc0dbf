package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCallAsMessage(t *testing.T) {
	call := &Call{
		Number:    "555",
		Type:      "outgoing",
		Timestamp: "2024-01-02T10:00:00",
		Duration:  "30",
	}

	msg := call.AsMessage()
	assert.Equal(t, "555", msg.Sender)
	assert.Equal(t, "", msg.Receiver)
	assert.Equal(t, "2024-01-02T10:00:00", msg.Timestamp)
	assert.Equal(t, "Call record type:outgoing duration:30", msg.Text)
	assert.Equal(t, ID(0), msg.ID)
}

func TestCallAsMessage_EmptyFields(t *testing.T) {
	call := &Call{}
	msg := call.AsMessage()
	assert.Equal(t, "Call record type: duration:", msg.Text)
}

func TestManifestDedupe(t *testing.T) {
	m := &Manifest{
		Chats:    []string{"a.json", "b.xml", "a.json", "c.json", "b.xml"},
		Calls:    []string{"calls.json", "calls.json"},
		Contacts: []string{},
		Media:    []string{"img/photo.jpg"},
	}

	m.Dedupe()

	assert.Equal(t, []string{"a.json", "b.xml", "c.json"}, m.Chats, "first-seen order preserved")
	assert.Equal(t, []string{"calls.json"}, m.Calls)
	assert.Empty(t, m.Contacts)
	assert.Equal(t, []string{"img/photo.jpg"}, m.Media)
}

func TestManifestCounts(t *testing.T) {
	m := &Manifest{
		Chats: []string{"a", "b"},
		Media: []string{"c"},
	}

	counts := m.Counts()
	assert.Equal(t, 2, counts["chats"])
	assert.Equal(t, 0, counts["calls"])
	assert.Equal(t, 0, counts["contacts"])
	assert.Equal(t, 1, counts["media"])
}

func TestManifestFiles(t *testing.T) {
	m := &Manifest{
		Chats:    []string{"chat.json"},
		Calls:    []string{"calls.xml"},
		Contacts: []string{"contacts.vcf"},
		Media:    []string{"video.mp4"},
	}

	assert.Equal(t, []string{"chat.json"}, m.Files(RoleChat))
	assert.Equal(t, []string{"calls.xml"}, m.Files(RoleCall))
	assert.Equal(t, []string{"contacts.vcf"}, m.Files(RoleContact))
	assert.Equal(t, []string{"video.mp4"}, m.Files(RoleMedia))
	assert.Nil(t, m.Files(FileRole(0)))
}

func TestFileRoleString(t *testing.T) {
	assert.Equal(t, "chat", RoleChat.String())
	assert.Equal(t, "call", RoleCall.String())
	assert.Equal(t, "contact", RoleContact.String())
	assert.Equal(t, "media", RoleMedia.String())
	assert.Equal(t, "unknown", FileRole(99).String())
}
