package parse

import (
	"strings"

	"github.com/tidwall/gjson"
)

// jsonElements locates the record container inside a JSON document and
// returns its object-valued elements. Container keys are tried in order;
// the first key present in the top-level object wins even when its value
// turns out not to be an array (a deliberate mirror of how extraction
// vendors misuse these keys: a present-but-scalar key means the file holds
// no records, not that another key should be tried).
func jsonElements(text string, containerKeys []string) []gjson.Result {
	doc := gjson.Parse(text)

	var container gjson.Result
	switch {
	case doc.IsObject():
		found := false
		for _, key := range containerKeys {
			if v := doc.Get(key); v.Exists() {
				container = v
				found = true
				break
			}
		}
		if !found {
			// Fall back to the first field whose value is a non-empty array
			// of objects, in document order.
			doc.ForEach(func(_, v gjson.Result) bool {
				if v.IsArray() {
					arr := v.Array()
					if len(arr) > 0 && arr[0].IsObject() {
						container = v
						return false
					}
				}
				return true
			})
		}
	case doc.IsArray():
		container = doc
	}

	if !container.IsArray() {
		return nil
	}

	var elements []gjson.Result
	for _, el := range container.Array() {
		if el.IsObject() {
			elements = append(elements, el)
		}
	}
	return elements
}

// jsonString resolves an alias chain against a JSON element and stringifies
// the first usable value. Null, empty strings, and empty arrays continue the
// chain; numeric values are rendered in their source form ("30", not
// "30.000000"); arrays are joined with commas.
func jsonString(el gjson.Result, aliases []string) string {
	for _, alias := range aliases {
		v := el.Get(alias)
		if !v.Exists() || v.Type == gjson.Null {
			continue
		}
		if v.IsArray() {
			parts := jsonStrings(v)
			if len(parts) == 0 {
				continue
			}
			return strings.Join(parts, ",")
		}
		if s := v.String(); s != "" {
			return s
		}
	}
	return ""
}

// jsonStringSlice resolves an alias chain to an ordered string sequence.
// A scalar value becomes a single-element sequence.
func jsonStringSlice(el gjson.Result, aliases []string) []string {
	for _, alias := range aliases {
		v := el.Get(alias)
		if !v.Exists() || v.Type == gjson.Null {
			continue
		}
		if v.IsArray() {
			if parts := jsonStrings(v); len(parts) > 0 {
				return parts
			}
			continue
		}
		if s := v.String(); s != "" {
			return []string{s}
		}
	}
	return nil
}

func jsonStrings(arr gjson.Result) []string {
	var out []string
	arr.ForEach(func(_, v gjson.Result) bool {
		if s := v.String(); s != "" {
			out = append(out, s)
		}
		return true
	})
	return out
}

// looksLikeJSON reports whether file content should be dispatched to the
// structured-object parser rather than the markup parser.
func looksLikeJSON(text string) bool {
	stripped := strings.TrimLeft(text, " \t\r\n\ufeff")
	return strings.HasPrefix(stripped, "{") || strings.HasPrefix(stripped, "[")
}
