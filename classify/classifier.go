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


package classify

import (
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/poiesic/evidex/core"
	"github.com/poiesic/evidex/parse"
)

// DefaultDescriptorName is the conventional name of the master report file.
const DefaultDescriptorName = "report.xml"

// Classifier builds manifests from unpacked archive trees.
type Classifier struct {
	descriptorName string
	logger         *slog.Logger
}

// Option configures a Classifier.
type Option func(*Classifier)

// WithDescriptorName overrides the conventional descriptor file name.
func WithDescriptorName(name string) Option {
	return func(c *Classifier) {
		if name != "" {
			c.descriptorName = name
		}
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(c *Classifier) {
		if logger == nil {
			logger = slog.Default()
		}
		c.logger = logger
	}
}

// New creates a Classifier.
func New(opts ...Option) *Classifier {
	c := &Classifier{
		descriptorName: DefaultDescriptorName,
		logger:         slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BuildManifest classifies every file under root into record roles.
//
// The descriptor file, when present, contributes file references and may
// itself be classified as a content source. A malformed descriptor is a
// recoverable condition: it is logged and the classifier falls back to the
// directory scan alone, which always runs regardless of descriptor outcome.
// No file content other than the descriptor's is read here.
func (c *Classifier) BuildManifest(root string) (*core.Manifest, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("archive root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("archive root %s is not a directory", root)
	}

	manifest := &core.Manifest{Root: root}
	manifest.Descriptor = c.locateDescriptor(root)
	manifest.DescriptorFallback = manifest.Descriptor == ""

	if manifest.Descriptor != "" {
		if err := c.classifyFromDescriptor(manifest); err != nil {
			manifest.DescriptorFallback = true
			c.logger.Warn("descriptor unreadable, falling back to directory scan",
				"descriptor", manifest.Descriptor, "err", err)
		}
	}

	c.scanDirectory(manifest)
	manifest.Dedupe()
	return manifest, nil
}

// ManifestForDescriptor builds a manifest for a standalone descriptor file
// ingested without a surrounding archive. The file is treated as a chat,
// call, and contact source simultaneously; the parsers sort out what it
// actually holds.
func (c *Classifier) ManifestForDescriptor(path string) (*core.Manifest, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("descriptor: %w", err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("descriptor %s is a directory", path)
	}

	return &core.Manifest{
		Root:       filepath.Dir(path),
		Descriptor: path,
		Chats:      []string{path},
		Calls:      []string{path},
		Contacts:   []string{path},
	}, nil
}

// locateDescriptor finds the master descriptor: exact conventional name
// first, then any file with the descriptor's extension, else none.
func (c *Classifier) locateDescriptor(root string) string {
	var exact, byExt string
	ext := filepath.Ext(c.descriptorName)

	filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil
		}
		if d.Name() == c.descriptorName && exact == "" {
			exact = path
		}
		if byExt == "" && ext != "" && strings.EqualFold(filepath.Ext(d.Name()), ext) {
			byExt = path
		}
		return nil
	})

	if exact != "" {
		return exact
	}
	return byExt
}

// classifyFromDescriptor reads the descriptor once, mapping its file
// references to roles and sniffing its raw text for embedded records.
func (c *Classifier) classifyFromDescriptor(m *core.Manifest) error {
	data, err := os.ReadFile(m.Descriptor)
	if err != nil {
		return fmt.Errorf("%w: %v", core.ErrDescriptorMalformed, err)
	}

	root, perr := parse.ParseTree(data)
	if root != nil {
		for _, f := range root.FindAll("file") {
			local := f.ChildText("localPath", "LocalPath")
			if local == "" {
				local = f.Attr("localPath", "path")
			}
			if local == "" {
				continue
			}
			abs := local
			if !filepath.IsAbs(local) {
				abs = filepath.Join(m.Root, local)
			}
			if _, err := os.Stat(abs); err != nil {
				continue
			}
			c.classifyReferencedPath(m, abs, strings.ToLower(local))
		}
	}

	// The descriptor may embed records directly; if the raw text carries
	// record markers, the descriptor itself joins the role lists.
	text := strings.ToLower(string(data))
	if containsAny(text, chatMarkers) {
		m.Chats = append(m.Chats, m.Descriptor)
	}
	if containsAny(text, callMarkers) {
		m.Calls = append(m.Calls, m.Descriptor)
	}
	if containsAny(text, contactMarkers) {
		m.Contacts = append(m.Contacts, m.Descriptor)
	}

	if root == nil {
		return fmt.Errorf("%w: %v", core.ErrDescriptorMalformed, perr)
	}
	return nil
}

// classifyReferencedPath assigns a descriptor-referenced file to the first
// role whose vocabulary matches its path.
func (c *Classifier) classifyReferencedPath(m *core.Manifest, abs, low string) {
	switch {
	case containsAny(low, chatPathKeywords):
		m.Chats = append(m.Chats, abs)
	case strings.Contains(low, "call"):
		m.Calls = append(m.Calls, abs)
	case strings.Contains(low, "contact") || strings.HasSuffix(low, ".vcf"):
		m.Contacts = append(m.Contacts, abs)
	case containsAny(low, mediaPathKeywords):
		m.Media = append(m.Media, abs)
	}
}

// scanDirectory walks the whole tree classifying files by name and path.
// It runs unconditionally so a descriptor that references only part of the
// archive (or none of it) still yields a useful manifest.
func (c *Classifier) scanDirectory(m *core.Manifest) {
	filepath.WalkDir(m.Root, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil
		}
		low := strings.ToLower(path)
		name := strings.ToLower(d.Name())

		if hasAnySuffix(low, recordExtensions) {
			switch {
			case containsAny(name, scanChatKeywords):
				m.Chats = append(m.Chats, path)
			case containsAny(name, scanCallKeywords):
				m.Calls = append(m.Calls, path)
			case containsAny(name, scanContactKeywords):
				m.Contacts = append(m.Contacts, path)
			}
		}
		if containsAny(low, scanMediaKeywords) {
			m.Media = append(m.Media, path)
		}
		return nil
	})
}

func containsAny(s string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(s, k) {
			return true
		}
	}
	return false
}

func hasAnySuffix(s string, suffixes []string) bool {
	for _, suf := range suffixes {
		if strings.HasSuffix(s, suf) {
			return true
		}
	}
	return false
}
