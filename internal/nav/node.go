// Package nav models the navigation tree of a documentation site: sidebars
// made of documents, external links and categories, per documentation version.
package nav

import (
	"errors"
	"fmt"
)

// Kind tags the variant held by a Node.
type Kind int

const (
	KindDoc Kind = iota + 1
	KindLink
	KindCategory
)

func (k Kind) String() string {
	switch k {
	case KindDoc:
		return "doc"
	case KindLink:
		return "link"
	case KindCategory:
		return "category"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

var (
	ErrUnknownKind     = errors.New("unknown navigation item kind")
	ErrUnsupportedItem = errors.New("unsupported navigation item")
	ErrInvalidItem     = errors.New("invalid navigation item")
)

// Node is one navigation entry. Which fields are meaningful depends on Kind:
//
//	KindDoc:      ID, Label (optional), Permalink (optional)
//	KindLink:     Href, Label
//	KindCategory: Label, Items, LinkedDocID (optional)
type Node struct {
	Kind        Kind
	ID          string
	Label       string
	Permalink   string
	Href        string
	Items       []Node
	LinkedDocID string
}

// Doc returns a document node.
func Doc(id, label string) Node {
	return Node{Kind: KindDoc, ID: id, Label: label}
}

// Link returns an external link node.
func Link(href, label string) Node {
	return Node{Kind: KindLink, Href: href, Label: label}
}

// Category returns a category node holding items.
func Category(label string, items ...Node) Node {
	return Node{Kind: KindCategory, Label: label, Items: items}
}

// Validate checks n and its descendants for a known Kind and required fields.
func (n Node) Validate() error {
	switch n.Kind {
	case KindDoc:
		if n.ID == "" {
			return fmt.Errorf("%w: doc without id", ErrInvalidItem)
		}
	case KindLink:
		if n.Href == "" {
			return fmt.Errorf("%w: link %q without href", ErrInvalidItem, n.Label)
		}
	case KindCategory:
		if n.Label == "" {
			return fmt.Errorf("%w: category without label", ErrInvalidItem)
		}
		for _, child := range n.Items {
			if err := child.Validate(); err != nil {
				return fmt.Errorf("category %q: %w", n.Label, err)
			}
		}
	default:
		return fmt.Errorf("%w: %v", ErrUnknownKind, n.Kind)
	}
	return nil
}

// DocIDs returns the ids of every document reachable from n in reading order,
// including linked category pages.
func (n Node) DocIDs() []string {
	var ids []string
	var visit func(Node)
	visit = func(n Node) {
		switch n.Kind {
		case KindDoc:
			ids = append(ids, n.ID)
		case KindCategory:
			if n.LinkedDocID != "" {
				ids = append(ids, n.LinkedDocID)
			}
			for _, c := range n.Items {
				visit(c)
			}
		}
	}
	visit(n)
	return ids
}
