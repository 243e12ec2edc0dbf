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
	"bytes"
	"encoding/xml"
	"errors"
	"io"
	"strings"
)

// Node is one element of a schema-less XML document. Extraction exports use
// arbitrary, vendor-specific tag names, so documents are decoded into a
// generic tree and interrogated with alias chains instead of struct tags.
type Node struct {
	Name     string
	Attrs    map[string]string
	Text     string // concatenated character data directly under the element
	Children []*Node
}

// ParseTree decodes an XML document into a generic node tree. Decoding is
// non-strict; if the document is truncated or damaged partway through, the
// tree built so far is returned alongside the error so callers can salvage
// whatever records it holds.
func ParseTree(data []byte) (*Node, error) {
	dec := xml.NewDecoder(bytes.NewReader(data))
	dec.Strict = false
	dec.Entity = xml.HTMLEntity

	var root *Node
	stack := make([]*Node, 0, 8)

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			if root == nil {
				return nil, err
			}
			return root, err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			n := &Node{Name: t.Name.Local}
			if len(t.Attr) > 0 {
				n.Attrs = make(map[string]string, len(t.Attr))
				for _, a := range t.Attr {
					n.Attrs[a.Name.Local] = a.Value
				}
			}
			if len(stack) == 0 {
				if root != nil {
					// Multiple top-level elements; keep the first root and
					// attach the rest under it so nothing is lost.
					root.Children = append(root.Children, n)
				} else {
					root = n
				}
			} else {
				parent := stack[len(stack)-1]
				parent.Children = append(parent.Children, n)
			}
			stack = append(stack, n)
		case xml.EndElement:
			if len(stack) > 0 {
				stack = stack[:len(stack)-1]
			}
		case xml.CharData:
			if len(stack) > 0 {
				stack[len(stack)-1].Text += string(t)
			}
		}
	}

	if root == nil {
		return nil, errors.New("no elements found")
	}
	return root, nil
}

// Child returns the first direct child with the given name, or nil.
func (n *Node) Child(name string) *Node {
	for _, c := range n.Children {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// ChildText walks the alias chain and returns the trimmed text of the first
// direct child that has any. Tag names are matched exactly, as exports are
// consistent within a single file even when they disagree across vendors.
func (n *Node) ChildText(names ...string) string {
	for _, name := range names {
		if c := n.Child(name); c != nil {
			if text := strings.TrimSpace(c.Text); text != "" {
				return text
			}
		}
	}
	return ""
}

// Attr walks the alias chain and returns the first non-empty attribute value.
func (n *Node) Attr(names ...string) string {
	for _, name := range names {
		if v, ok := n.Attrs[name]; ok && v != "" {
			return v
		}
	}
	return ""
}

// FindAll returns every descendant element with the given name, in document
// order. The receiver itself is not considered.
func (n *Node) FindAll(name string) []*Node {
	var out []*Node
	n.walk(func(d *Node) {
		if d.Name == name {
			out = append(out, d)
		}
	})
	return out
}

// FindPath returns every element named child that is a direct child of any
// descendant named parent (the ".//parent/child" idiom).
func (n *Node) FindPath(parent, child string) []*Node {
	var out []*Node
	for _, p := range n.FindAllIncludingSelf(parent) {
		for _, c := range p.Children {
			if c.Name == child {
				out = append(out, c)
			}
		}
	}
	return out
}

// FindAllIncludingSelf is FindAll but also matches the receiver.
func (n *Node) FindAllIncludingSelf(name string) []*Node {
	var out []*Node
	if n.Name == name {
		out = append(out, n)
	}
	out = append(out, n.FindAll(name)...)
	return out
}

func (n *Node) walk(fn func(*Node)) {
	for _, c := range n.Children {
		fn(c)
		c.walk(fn)
	}
}

// Render re-serializes the element for audit storage. The output is a
// faithful reconstruction, not the original bytes: attribute order and
// whitespace are normalized.
func (n *Node) Render() string {
	var b strings.Builder
	n.render(&b)
	return b.String()
}

func (n *Node) render(b *strings.Builder) {
	b.WriteByte('<')
	b.WriteString(n.Name)
	for k, v := range n.Attrs {
		b.WriteByte(' ')
		b.WriteString(k)
		b.WriteString(`="`)
		xml.EscapeText(b, []byte(v))
		b.WriteByte('"')
	}
	if len(n.Children) == 0 && strings.TrimSpace(n.Text) == "" {
		b.WriteString("/>")
		return
	}
	b.WriteByte('>')
	xml.EscapeText(b, []byte(strings.TrimSpace(n.Text)))
	for _, c := range n.Children {
		c.render(b)
	}
	b.WriteString("</")
	b.WriteString(n.Name)
	b.WriteByte('>')
}
