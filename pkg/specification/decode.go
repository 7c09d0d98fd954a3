package specification

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrMalformed, belge şekli Specification'a uymadığında döner
// (örn. where bir mapping değilse).
var ErrMalformed = errors.New("specification: malformed document")

// ParseYAML, YAML belgesinden Specification okur.
//
// Belge şekli:
//
//	where:
//	  id: 42
//	  type:
//	    id: 13
//	  status: []
//	order_by:
//	  name: asc
//	limit: 10
//	offset: 20
//
// yaml.v3 node'ları üzerinden okunduğu için anahtar sırası korunur.
func ParseYAML(data []byte) (Specification, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return Specification{}, fmt.Errorf("specification: decode failed: %w", err)
	}
	if root.Kind == 0 || len(root.Content) == 0 {
		return Specification{}, nil
	}

	doc := root.Content[0]
	if doc.Kind == yaml.ScalarNode && doc.Tag == "!!null" {
		return Specification{}, nil
	}
	if doc.Kind != yaml.MappingNode {
		return Specification{}, fmt.Errorf("%w: document must be a mapping", ErrMalformed)
	}

	var spec Specification
	for i := 0; i+1 < len(doc.Content); i += 2 {
		key, value := doc.Content[i], doc.Content[i+1]

		var err error
		switch key.Value {
		case "where":
			spec.Where, err = decodeTree(value)
		case "order_by", "orderBy":
			spec.OrderBy, err = decodeOrderBy(value)
		case "limit":
			spec.Limit, err = decodeCount(value, "limit")
		case "offset":
			spec.Offset, err = decodeCount(value, "offset")
		default:
			err = fmt.Errorf("%w: unknown key %q", ErrMalformed, key.Value)
		}
		if err != nil {
			return Specification{}, err
		}
	}

	return spec, nil
}

// ParseJSON, JSON belgesinden Specification okur. JSON, YAML'ın alt kümesi
// olduğu için ayrıştırma ParseYAML ile yapılır; sıra yine korunur.
func ParseJSON(data []byte) (Specification, error) {
	if !json.Valid(data) {
		return Specification{}, fmt.Errorf("%w: invalid JSON", ErrMalformed)
	}
	return ParseYAML(data)
}

// LoadFile, uzantıya göre .json veya .yaml/.yml dosyasını okur.
func LoadFile(path string) (Specification, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Specification{}, fmt.Errorf("specification: read %s: %w", path, err)
	}
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return ParseJSON(data)
	}
	return ParseYAML(data)
}

func decodeTree(n *yaml.Node) (Tree, error) {
	if n.Kind == yaml.AliasNode {
		return decodeTree(n.Alias)
	}
	if n.Kind == yaml.ScalarNode && n.Tag == "!!null" {
		return nil, nil
	}
	if n.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("%w: where must be a mapping (line %d)", ErrMalformed, n.Line)
	}

	t := make(Tree, 0, len(n.Content)/2)
	for i := 0; i+1 < len(n.Content); i += 2 {
		value, err := decodeValue(n.Content[i+1])
		if err != nil {
			return nil, err
		}
		t.Set(n.Content[i].Value, value)
	}
	return t, nil
}

func decodeValue(n *yaml.Node) (any, error) {
	switch n.Kind {
	case yaml.AliasNode:
		return decodeValue(n.Alias)
	case yaml.MappingNode:
		return decodeTree(n)
	case yaml.SequenceNode:
		list := make([]any, 0, len(n.Content))
		for _, item := range n.Content {
			v, err := decodeValue(item)
			if err != nil {
				return nil, err
			}
			list = append(list, v)
		}
		return list, nil
	default:
		var v any
		if err := n.Decode(&v); err != nil {
			return nil, fmt.Errorf("specification: decode value at line %d: %w", n.Line, err)
		}
		return v, nil
	}
}

func decodeOrderBy(n *yaml.Node) (OrderBy, error) {
	if n.Kind == yaml.ScalarNode && n.Tag == "!!null" {
		return nil, nil
	}
	if n.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("%w: order_by must be a mapping of field to direction", ErrMalformed)
	}

	order := make(OrderBy, 0, len(n.Content)/2)
	for i := 0; i+1 < len(n.Content); i += 2 {
		order = append(order, Sort{Field: n.Content[i].Value, Direction: n.Content[i+1].Value})
	}
	return order, nil
}

func decodeCount(n *yaml.Node, name string) (int, error) {
	var v int
	if err := n.Decode(&v); err != nil {
		return 0, fmt.Errorf("%w: %s must be an integer", ErrMalformed, name)
	}
	if v < 0 {
		return 0, fmt.Errorf("%w: %s must not be negative", ErrMalformed, name)
	}
	return v, nil
}
