package parse

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/poiesic/evidex/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestChats_JSONMessagesContainer(t *testing.T) {
	path := writeFile(t, "chat.json", `{"messages":[{"from":"A","to":"B","text":"hi","date":"t1"}]}`)

	msgs, err := Chats(path)
	require.NoError(t, err)
	require.Len(t, msgs, 1)

	assert.Equal(t, "A", msgs[0].Sender)
	assert.Equal(t, "B", msgs[0].Receiver)
	assert.Equal(t, "hi", msgs[0].Text)
	assert.Equal(t, "t1", msgs[0].Timestamp)
	assert.Equal(t, `{"from":"A","to":"B","text":"hi","date":"t1"}`, msgs[0].Raw)
}

func TestChats_JSONAliasChains(t *testing.T) {
	path := writeFile(t, "export.json", `{
		"items": [
			{"author":"carol","body":"meet at noon","time":"2023-05-01","chat_id":"grp-7"},
			{"sender":"dave","content":"ok","timestamp":"2023-05-02","recipients":["a","b"]}
		]
	}`)

	msgs, err := Chats(path)
	require.NoError(t, err)
	require.Len(t, msgs, 2)

	assert.Equal(t, "carol", msgs[0].Sender)
	assert.Equal(t, "meet at noon", msgs[0].Text)
	assert.Equal(t, "2023-05-01", msgs[0].Timestamp)
	assert.Equal(t, "grp-7", msgs[0].Thread)

	assert.Equal(t, "dave", msgs[1].Sender)
	assert.Equal(t, "ok", msgs[1].Text)
	assert.Equal(t, "a,b", msgs[1].Receiver, "array-valued receivers are joined")
}

func TestChats_JSONRootArray(t *testing.T) {
	path := writeFile(t, "arr.json", `[{"text":"one","sender":"x"},{"text":"two","sender":"y"}]`)

	msgs, err := Chats(path)
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, "one", msgs[0].Text)
	assert.Equal(t, "two", msgs[1].Text)
}

func TestChats_JSONFallbackToFirstObjectArray(t *testing.T) {
	path := writeFile(t, "odd.json", `{"meta":"v2","records":[{"message":"fallback works","from":"z"}]}`)

	msgs, err := Chats(path)
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, "fallback works", msgs[0].Text)
	assert.Equal(t, "z", msgs[0].Sender)
}

func TestChats_JSONContainerKeyWinsEvenWhenScalar(t *testing.T) {
	// "messages" is present but not an array; per the first-match-wins
	// contract no other field is considered.
	path := writeFile(t, "scalar.json", `{"messages":"none","other":[{"text":"ignored"}]}`)

	msgs, err := Chats(path)
	require.NoError(t, err)
	assert.Empty(t, msgs)
}

func TestChats_JSONNonObjectElementsSkipped(t *testing.T) {
	path := writeFile(t, "mixed.json", `{"messages":[{"text":"kept"},"junk",42]}`)

	msgs, err := Chats(path)
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, "kept", msgs[0].Text)
}

func TestChats_StructuredXMLConversation(t *testing.T) {
	path := writeFile(t, "report.xml", `<?xml version="1.0"?>
<UFDR_Report>
  <Metadata>
    <DeviceInformation><PhoneNumber>+111</PhoneNumber></DeviceInformation>
  </Metadata>
  <Chats>
    <Conversation App="WhatsApp" ParticipantID="+222" ParticipantName="Bob">
      <Message>
        <Timestamp>2023-01-01T09:00:00</Timestamp>
        <Direction>Outgoing</Direction>
        <Content>see you there</Content>
      </Message>
      <Message>
        <Date>2023-01-01T09:05:00</Date>
        <Direction>Incoming</Direction>
        <Body>on my way</Body>
      </Message>
      <Message>
        <Time>2023-01-01T09:06:00</Time>
        <Text>no direction given</Text>
      </Message>
    </Conversation>
  </Chats>
</UFDR_Report>`)

	msgs, err := Chats(path)
	require.NoError(t, err)
	require.Len(t, msgs, 3)

	out := msgs[0]
	assert.Equal(t, "WhatsApp:+222", out.Thread)
	assert.Equal(t, "+111", out.Sender, "outgoing: device owns the message")
	assert.Equal(t, "+222", out.Receiver)
	assert.Equal(t, "see you there", out.Text)
	assert.Equal(t, "2023-01-01T09:00:00", out.Timestamp)
	assert.Contains(t, out.Raw, "see you there")

	in := msgs[1]
	assert.Equal(t, "+222", in.Sender, "incoming: participant is the sender")
	assert.Equal(t, "+111", in.Receiver)
	assert.Equal(t, "on my way", in.Text)

	unknown := msgs[2]
	assert.Equal(t, "+222", unknown.Sender, "missing direction defaults to incoming")
}

func TestChats_StructuredXMLWithoutDeviceIdentity(t *testing.T) {
	path := writeFile(t, "nodev.xml", `<Report><Chats>
<Conversation App="SMS"><ParticipantName>Eve</ParticipantName>
  <Message><Direction>outbound</Direction><Content>hello</Content></Message>
</Conversation></Chats></Report>`)

	msgs, err := Chats(path)
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, "device", msgs[0].Sender, "placeholder when no device identity declared")
	assert.Equal(t, "Eve", msgs[0].Receiver)
	assert.Equal(t, "SMS:Eve", msgs[0].Thread)
}

func TestChats_GenericXMLFallback(t *testing.T) {
	path := writeFile(t, "sms.xml", `<smses>
  <sms from="+333" to="+444" date="1650000000">
    <body>generic dialect</body>
  </sms>
  <message>
    <sender>anon</sender>
    <text>child elements work too</text>
    <time>t9</time>
  </message>
</smses>`)

	msgs, err := Chats(path)
	require.NoError(t, err)
	require.Len(t, msgs, 2)

	byText := map[string]*core.Message{}
	for _, m := range msgs {
		byText[m.Text] = m
	}

	sms := byText["generic dialect"]
	require.NotNil(t, sms)
	assert.Equal(t, "+333", sms.Sender)
	assert.Equal(t, "+444", sms.Receiver)
	assert.Equal(t, "1650000000", sms.Timestamp)

	msg := byText["child elements work too"]
	require.NotNil(t, msg)
	assert.Equal(t, "anon", msg.Sender)
	assert.Equal(t, "t9", msg.Timestamp)
}

func TestChats_MalformedJSON(t *testing.T) {
	path := writeFile(t, "broken.json", `{"messages": [ {"text": "never closed"`)

	msgs, err := Chats(path)
	assert.Empty(t, msgs)
	assert.ErrorIs(t, err, core.ErrFileMalformed)
}

func TestChats_MissingFile(t *testing.T) {
	msgs, err := Chats(filepath.Join(t.TempDir(), "nope.json"))
	assert.Empty(t, msgs)
	assert.ErrorIs(t, err, core.ErrFileMalformed)
}

func TestChats_EmptyTextIsPreserved(t *testing.T) {
	path := writeFile(t, "empty.json", `{"messages":[{"from":"A","date":"t1"}]}`)

	msgs, err := Chats(path)
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, "", msgs[0].Text, "text is present even when the source omits it")
}
