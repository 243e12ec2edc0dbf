// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package parse

import (
	"fmt"
	"os"
	"strings"

	"github.com/poiesic/evidex/core"
	"github.com/tidwall/gjson"
)

// Chats extracts canonical messages from a file of unknown internal format.
// The returned slice holds every record recovered before any failure; the
// error, when non-nil, wraps core.ErrFileMalformed and exists so the caller
// can count the degradation, never to mean "discard the records".
func Chats(path string) ([]*core.Message, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", core.ErrFileMalformed, path, err)
	}

	text := string(data)
	if looksLikeJSON(text) {
		return chatsFromJSON(path, text)
	}
	return chatsFromXML(path, data)
}

func chatsFromJSON(path, text string) ([]*core.Message, error) {
	if !gjson.Valid(text) {
		return nil, fmt.Errorf("%w: %s: invalid JSON", core.ErrFileMalformed, path)
	}

	var messages []*core.Message
	for _, el := range jsonElements(text, chatContainerKeys) {
		messages = append(messages, &core.Message{
			Thread:    jsonString(el, msgThreadAliases),
			Sender:    jsonString(el, msgSenderAliases),
			Receiver:  jsonString(el, msgReceiverAliases),
			Timestamp: jsonString(el, msgTimestampAliases),
			Text:      jsonString(el, msgTextAliases),
			Raw:       el.Raw,
		})
	}
	return messages, nil
}

func chatsFromXML(path string, data []byte) ([]*core.Message, error) {
	root, perr := ParseTree(data)
	if root == nil {
		return nil, fmt.Errorf("%w: %s: %v", core.ErrFileMalformed, path, perr)
	}

	// Device identity, when declared, substitutes for the owning side of
	// outgoing messages.
	device := ""
	if numbers := root.FindPath("DeviceInformation", "PhoneNumber"); len(numbers) > 0 {
		device = strings.TrimSpace(numbers[0].Text)
	}

	var messages []*core.Message

	// Structured dialect: <Chats><Conversation ...><Message>...</Message>
	convs := root.FindPath("Chats", "Conversation")
	if len(convs) > 0 {
		for _, conv := range convs {
			messages = append(messages, conversationMessages(conv, device)...)
		}
		return messages, wrapPartial(path, perr)
	}

	// Generic fallback: loosely-named message elements anywhere in the tree.
	for _, tag := range genericMessageTags {
		for _, msg := range root.FindAllIncludingSelf(tag) {
			body := msg.ChildText("body", "text")
			if body == "" {
				body = strings.TrimSpace(msg.Text)
			}
			thread := msg.Attr("thread")
			if thread == "" {
				thread = msg.ChildText("thread")
			}
			sender := msg.Attr("from")
			if sender == "" {
				sender = msg.ChildText("from", "sender")
			}
			receiver := msg.Attr("to")
			if receiver == "" {
				receiver = msg.ChildText("to", "recipient")
			}
			ts := msg.Attr("date")
			if ts == "" {
				ts = msg.ChildText("date", "time")
			}
			messages = append(messages, &core.Message{
				Thread:    thread,
				Sender:    sender,
				Receiver:  receiver,
				Timestamp: ts,
				Text:      body,
				Raw:       msg.Render(),
			})
		}
	}
	return messages, wrapPartial(path, perr)
}

// conversationMessages maps one structured conversation element.
func conversationMessages(conv *Node, device string) []*core.Message {
	participantID := conv.Attr("ParticipantID")
	if participantID == "" {
		participantID = conv.ChildText("ParticipantID")
	}
	participantName := conv.Attr("ParticipantName")
	if participantName == "" {
		participantName = conv.ChildText("ParticipantName")
	}
	app := conv.Attr("App")
	if app == "" {
		app = conv.ChildText("App")
	}

	participant := participantID
	if participant == "" {
		participant = participantName
	}
	thread := app + ":" + participant

	var messages []*core.Message
	for _, msg := range conv.FindAll("Message") {
		content := msg.ChildText(xmlMsgContentTags...)
		if content == "" {
			content = strings.TrimSpace(msg.Text)
		}
		direction := msg.ChildText("Direction")

		// Directions beginning with "out" mean the device owner sent the
		// message; anything else, including a missing or unrecognized
		// direction, is treated as incoming.
		var sender, receiver string
		if strings.HasPrefix(strings.ToLower(direction), "out") {
			sender = device
			if sender == "" {
				sender = "device"
			}
			receiver = participant
		} else {
			sender = participant
			receiver = device
		}

		messages = append(messages, &core.Message{
			Thread:    thread,
			Sender:    sender,
			Receiver:  receiver,
			Timestamp: msg.ChildText(xmlMsgTimestampTags...),
			Text:      content,
			Raw:       msg.Render(),
		})
	}
	return messages
}

// wrapPartial tags the partial-decode error, if any, with the taxonomy
// sentinel. A nil perr stays nil.
func wrapPartial(path string, perr error) error {
	if perr == nil {
		return nil
	}
	return fmt.Errorf("%w: %s: %v", core.ErrFileMalformed, path, perr)
}
