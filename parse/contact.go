package parse

import (
	"fmt"
	"os"
	"strings"

	"github.com/poiesic/evidex/core"
	"github.com/tidwall/gjson"
)

// Contacts extracts canonical contacts from a file of unknown internal
// format. Same degradation contract as Chats.
func Contacts(path string) ([]*core.Contact, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", core.ErrFileMalformed, path, err)
	}

	text := string(data)
	if looksLikeJSON(text) {
		return contactsFromJSON(path, text)
	}
	return contactsFromXML(path, data)
}

func contactsFromJSON(path, text string) ([]*core.Contact, error) {
	if !gjson.Valid(text) {
		return nil, fmt.Errorf("%w: %s: invalid JSON", core.ErrFileMalformed, path)
	}

	var contacts []*core.Contact
	for _, el := range jsonElements(text, contactContainerKeys) {
		contacts = append(contacts, &core.Contact{
			Name:   jsonString(el, contactNameAliases),
			Phones: jsonStringSlice(el, contactPhoneAliases),
			Emails: jsonStringSlice(el, contactEmailAliases),
		})
	}
	return contacts, nil
}

func contactsFromXML(path string, data []byte) ([]*core.Contact, error) {
	root, perr := ParseTree(data)
	if root == nil {
		return nil, fmt.Errorf("%w: %s: %v", core.ErrFileMalformed, path, perr)
	}

	var contacts []*core.Contact

	// Structured dialect: <Contacts><Contact>...</Contact></Contacts>
	for _, c := range root.FindPath("Contacts", "Contact") {
		var phones, emails []string
		if phone := c.ChildText(xmlContactPhoneTags...); phone != "" {
			phones = []string{phone}
		}
		if email := c.ChildText(xmlContactEmailTags...); email != "" {
			emails = []string{email}
		}
		contacts = append(contacts, &core.Contact{
			Name:   c.ChildText(xmlContactNameTags...),
			Phones: phones,
			Emails: emails,
		})
	}

	// Generic fallback: loosely-named contact elements.
	for _, tag := range genericContactTags {
		for _, c := range root.FindAllIncludingSelf(tag) {
			contacts = append(contacts, &core.Contact{
				Name:   c.ChildText("displayName", "name"),
				Phones: descendantTexts(c, "phone"),
				Emails: descendantTexts(c, "email"),
			})
		}
	}
	return contacts, wrapPartial(path, perr)
}

// descendantTexts collects the trimmed, non-empty text of every descendant
// element with the given name.
func descendantTexts(n *Node, name string) []string {
	var out []string
	for _, d := range n.FindAll(name) {
		if text := strings.TrimSpace(d.Text); text != "" {
			out = append(out, text)
		}
	}
	return out
}
