// Package tree projects a user's flat file records into the nested
// folder/file structure returned to clients. Building is pure: the tree
// is computed fresh on every request and never persisted.
package tree

import (
	"strings"
	"time"

	"github.com/skyvault/skyvault/internal/model"
)

const (
	TypeFile   = "file"
	TypeFolder = "folder"
)

type Node struct {
	Name      string  `json:"name"`
	Type      string  `json:"type"`
	Ext       string  `json:"ext"`
	CreatedAt string  `json:"createdAt"`
	UpdatedAt string  `json:"updatedAt"`
	Path      string  `json:"path"`
	Items     []*Node `json:"items,omitempty"`
}

func (n *Node) child(name string) *Node {
	for _, item := range n.Items {
		if item.Name == name {
			return item
		}
	}
	return nil
}

// Build converts a flat record list into a nested tree rooted at an
// unnamed folder with an empty path. Children keep first-seen insertion
// order, so callers must pass a stably ordered list (sorted by path)
// for reproducible output. Intermediate folders materialized from path
// segments carry no timestamps; explicit folder records carry their own.
func Build(records []*model.File) *Node {
	root := &Node{
		Name:  "root",
		Type:  TypeFolder,
		Path:  "",
		Items: []*Node{},
	}

	for _, rec := range records {
		parts := strings.Split(rec.Path, "/")
		cur := root
		joined := ""

		for i, part := range parts {
			last := i == len(parts)-1
			if joined == "" {
				joined = part
			} else {
				joined = joined + "/" + part
			}

			next := cur.child(part)
			if next == nil {
				next = &Node{
					Name: part,
					Type: TypeFolder,
					Path: joined,
				}
				if last && !rec.IsFolder() {
					next.Type = TypeFile
					next.Ext = rec.FileType
				} else {
					next.Items = []*Node{}
				}
				cur.Items = append(cur.Items, next)
			}
			if last {
				next.CreatedAt = rec.CreatedAt.UTC().Format(time.RFC3339)
				next.UpdatedAt = rec.UpdatedAt.UTC().Format(time.RFC3339)
			}
			cur = next
		}
	}

	return root
}
