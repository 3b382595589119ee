package repofetch

import (
	"encoding/json"
	"fmt"
)

// EntryType tags an Entry as a file or a directory.
type EntryType string

const (
	TypeFile EntryType = "file"
	TypeDir  EntryType = "dir"
)

// RepoReference identifies a GitHub repository.
type RepoReference struct {
	Owner string
	Name  string
}

// String returns "owner/name".
func (r RepoReference) String() string {
	return fmt.Sprintf("%s/%s", r.Owner, r.Name)
}

// Entry is one node of a materialised repository tree. Files carry Content,
// directories carry Children in the order the contents API listed them.
type Entry struct {
	Name     string    `json:"name"`
	Type     EntryType `json:"type"`
	Content  string    `json:"content,omitempty"`
	Children []Entry   `json:"children"`

	// Placeholder marks a file whose metadata came back without a body
	// (binary, too large, or otherwise withheld by the API).
	Placeholder bool `json:"placeholder,omitempty"`
}

// File returns a file entry.
func File(name, content string) Entry {
	return Entry{Name: name, Type: TypeFile, Content: content}
}

// Dir returns a directory entry. A nil children slice becomes empty so that
// unresolvable directories are still present in the tree.
func Dir(name string, children []Entry) Entry {
	if children == nil {
		children = []Entry{}
	}
	return Entry{Name: name, Type: TypeDir, Children: children}
}

// IsDir reports whether e is a directory.
func (e Entry) IsDir() bool { return e.Type == TypeDir }

// MarshalJSON writes files without children and directories without content.
// A directory's children are always present, as [] when it is empty.
func (e Entry) MarshalJSON() ([]byte, error) {
	if e.IsDir() {
		children := e.Children
		if children == nil {
			children = []Entry{}
		}
		return json.Marshal(struct {
			Name     string    `json:"name"`
			Type     EntryType `json:"type"`
			Children []Entry   `json:"children"`
		}{e.Name, e.Type, children})
	}
	return json.Marshal(struct {
		Name        string    `json:"name"`
		Type        EntryType `json:"type"`
		Content     string    `json:"content"`
		Placeholder bool      `json:"placeholder,omitempty"`
	}{e.Name, e.Type, e.Content, e.Placeholder})
}

// Item is one element of a contents API directory listing. Listings never
// carry file bodies; those come from fetching URL.
type Item struct {
	Name string    `json:"name"`
	Type EntryType `json:"type"`
	URL  string    `json:"url"`
}

// fileMeta is the single-file response of the contents API.
type fileMeta struct {
	Name     string  `json:"name"`
	Content  *string `json:"content"`
	Encoding string  `json:"encoding"`
}

// Depth returns the nesting depth of entries: 0 for an empty tree, 1 for a
// flat listing, and one more for each level of directories below that.
func Depth(entries []Entry) int {
	if len(entries) == 0 {
		return 0
	}
	deepest := 0
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		if d := Depth(e.Children); d > deepest {
			deepest = d
		}
	}
	return deepest + 1
}

// Count returns the total number of entries in the tree, directories included.
func Count(entries []Entry) int {
	n := len(entries)
	for _, e := range entries {
		if e.IsDir() {
			n += Count(e.Children)
		}
	}
	return n
}
