package nav

import (
	"fmt"
	"maps"
	"slices"

	"github.com/alnah/go-docs2pdf/internal/yamlutil"
)

// Sidebars maps a sidebar name to its ordered top-level items.
type Sidebars map[string][]Node

// Names returns the sidebar names, sorted.
func (s Sidebars) Names() []string {
	return slices.Sorted(maps.Keys(s))
}

// LoadSidebars reads a sidebar file in JSON or YAML.
func LoadSidebars(path string) (Sidebars, error) {
	var sb Sidebars
	err := yamlutil.ReadFile(path, &sb, func(data []byte, _ any) error {
		var err error
		sb, err = ParseSidebars(data)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("reading sidebars %s: %w", path, err)
	}
	return sb, nil
}

// ParseSidebars decodes sidebar data. The accepted item grammar is:
//
//	"intro"                                    doc shorthand
//	{type: doc|ref, id, label}                 doc
//	{type: link, href, label}                  external link
//	{type: category, label, items, link}       category, link: {type: doc, id}
//	{"Guides": [items...], "API": [...]}      category shorthand, in key order
//
// A sidebar value may itself use the category shorthand.
func ParseSidebars(data []byte) (Sidebars, error) {
	var raw any
	if err := yamlutil.UnmarshalOrdered(data, &raw); err != nil {
		return nil, err
	}
	return decodeSidebars(raw)
}

func decodeSidebars(raw any) (Sidebars, error) {
	root, ok := raw.(yamlutil.MapSlice)
	if !ok {
		return nil, fmt.Errorf("%w: sidebars must be a mapping, got %T", ErrInvalidItem, raw)
	}

	sb := make(Sidebars, len(root))
	for _, entry := range root {
		name := fmt.Sprint(entry.Key)
		items, err := decodeItems(entry.Value)
		if err != nil {
			return nil, fmt.Errorf("sidebar %q: %w", name, err)
		}
		sb[name] = items
	}
	return sb, nil
}

// decodeItems accepts a sequence of items or a category shorthand mapping.
func decodeItems(raw any) ([]Node, error) {
	switch v := raw.(type) {
	case nil:
		return nil, nil
	case []any:
		var nodes []Node
		for i, item := range v {
			decoded, err := decodeItem(item)
			if err != nil {
				return nil, fmt.Errorf("item %d: %w", i, err)
			}
			nodes = append(nodes, decoded...)
		}
		return nodes, nil
	case yamlutil.MapSlice:
		return decodeShorthand(v)
	default:
		return nil, fmt.Errorf("%w: items must be a list, got %T", ErrInvalidItem, raw)
	}
}

// decodeItem returns zero nodes for items that carry nothing to render
// (html snippets), one node otherwise, or several for a shorthand mapping.
func decodeItem(raw any) ([]Node, error) {
	switch v := raw.(type) {
	case string:
		return []Node{Doc(v, "")}, nil
	case yamlutil.MapSlice:
		fields := toFields(v)
		typ, hasType := fields["type"]
		if !hasType {
			return decodeShorthand(v)
		}
		node, skip, err := decodeTyped(fmt.Sprint(typ), fields)
		if err != nil || skip {
			return nil, err
		}
		return []Node{node}, nil
	default:
		return nil, fmt.Errorf("%w: unexpected %T", ErrInvalidItem, raw)
	}
}

func decodeTyped(typ string, fields map[string]any) (node Node, skip bool, err error) {
	str := func(key string) string {
		if v, ok := fields[key]; ok && v != nil {
			return fmt.Sprint(v)
		}
		return ""
	}

	switch typ {
	case "doc", "ref":
		node = Doc(str("id"), str("label"))
		node.Permalink = str("permalink")
	case "link":
		node = Link(str("href"), str("label"))
	case "category":
		items, err := decodeItems(fields["items"])
		if err != nil {
			return Node{}, false, fmt.Errorf("category %q: %w", str("label"), err)
		}
		node = Category(str("label"), items...)
		if link, ok := fields["link"].(yamlutil.MapSlice); ok {
			lf := toFields(link)
			if fmt.Sprint(lf["type"]) == "doc" {
				node.LinkedDocID = fmt.Sprint(lf["id"])
			}
		}
	case "html":
		return Node{}, true, nil
	case "autogenerated":
		return Node{}, false, fmt.Errorf("%w: autogenerated sidebars must be resolved by the site build first", ErrUnsupportedItem)
	default:
		return Node{}, false, fmt.Errorf("%w: type %q", ErrUnsupportedItem, typ)
	}

	if err := node.Validate(); err != nil {
		return Node{}, false, err
	}
	return node, false, nil
}

func decodeShorthand(m yamlutil.MapSlice) ([]Node, error) {
	nodes := make([]Node, 0, len(m))
	for _, entry := range m {
		label := fmt.Sprint(entry.Key)
		items, err := decodeItems(entry.Value)
		if err != nil {
			return nil, fmt.Errorf("category %q: %w", label, err)
		}
		nodes = append(nodes, Category(label, items...))
	}
	return nodes, nil
}

func toFields(m yamlutil.MapSlice) map[string]any {
	fields := make(map[string]any, len(m))
	for _, entry := range m {
		fields[fmt.Sprint(entry.Key)] = entry.Value
	}
	return fields
}
