package parse

import (
	"fmt"
	"os"

	"github.com/poiesic/evidex/core"
	"github.com/tidwall/gjson"
)

// Calls extracts canonical call records from a file of unknown internal
// format. Same degradation contract as Chats.
func Calls(path string) ([]*core.Call, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", core.ErrFileMalformed, path, err)
	}

	text := string(data)
	if looksLikeJSON(text) {
		return callsFromJSON(path, text)
	}
	return callsFromXML(path, data)
}

func callsFromJSON(path, text string) ([]*core.Call, error) {
	if !gjson.Valid(text) {
		return nil, fmt.Errorf("%w: %s: invalid JSON", core.ErrFileMalformed, path)
	}

	var calls []*core.Call
	for _, el := range jsonElements(text, callContainerKeys) {
		calls = append(calls, &core.Call{
			Number:    jsonString(el, callNumberAliases),
			Type:      jsonString(el, callTypeAliases),
			Timestamp: jsonString(el, callTimestampAliases),
			Duration:  jsonString(el, callDurationAliases),
		})
	}
	return calls, nil
}

func callsFromXML(path string, data []byte) ([]*core.Call, error) {
	root, perr := ParseTree(data)
	if root == nil {
		return nil, fmt.Errorf("%w: %s: %v", core.ErrFileMalformed, path, perr)
	}

	var calls []*core.Call

	// Structured dialect: <CallLogs><Call>...</Call></CallLogs>
	for _, c := range root.FindPath("CallLogs", "Call") {
		calls = append(calls, &core.Call{
			Number:    c.ChildText(xmlCallNumberTags...),
			Type:      c.ChildText("Direction"),
			Timestamp: c.ChildText(xmlCallTimestampTags...),
			Duration:  c.ChildText(xmlCallDurationTags...),
		})
	}

	// Generic fallback: loosely-named call elements.
	for _, tag := range genericCallTags {
		for _, c := range root.FindAllIncludingSelf(tag) {
			calls = append(calls, &core.Call{
				Number:    c.ChildText("number", "caller"),
				Type:      c.ChildText("type", "direction"),
				Timestamp: c.ChildText("date", "time"),
				Duration:  c.ChildText("duration"),
			})
		}
	}
	return calls, wrapPartial(path, perr)
}
