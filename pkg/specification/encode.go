package specification

import (
	"encoding/hex"
	"fmt"

	"golang.org/x/crypto/blake2b"
	"gopkg.in/yaml.v3"
)

// MarshalYAML, Specification'ı ParseYAML'ın okuduğu şekle çevirir.
// Anahtar sırası korunur.
func (s Specification) MarshalYAML() (interface{}, error) {
	doc := &yaml.Node{Kind: yaml.MappingNode}

	if len(s.Where) > 0 {
		where, err := encodeTree(s.Where)
		if err != nil {
			return nil, err
		}
		doc.Content = append(doc.Content, scalar("where"), where)
	}

	if len(s.OrderBy) > 0 {
		order := &yaml.Node{Kind: yaml.MappingNode}
		for _, o := range s.OrderBy {
			order.Content = append(order.Content, scalar(o.Field), scalar(o.Direction))
		}
		doc.Content = append(doc.Content, scalar("order_by"), order)
	}

	if s.Limit != 0 {
		doc.Content = append(doc.Content, scalar("limit"), intNode(s.Limit))
	}
	if s.Offset != 0 {
		doc.Content = append(doc.Content, scalar("offset"), intNode(s.Offset))
	}

	return doc, nil
}

// Fingerprint, Specification'ın sıraya duyarlı özetini döner (BLAKE2b-256, hex).
// Aynı where/order/limit/offset içeriği her zaman aynı özeti üretir; derlenmiş
// sorgu cache anahtarı olarak kullanılır.
func (s Specification) Fingerprint() (string, error) {
	data, err := yaml.Marshal(s)
	if err != nil {
		return "", fmt.Errorf("specification: fingerprint encode failed: %w", err)
	}
	sum := blake2b.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}

func encodeTree(t Tree) (*yaml.Node, error) {
	n := &yaml.Node{Kind: yaml.MappingNode}
	for _, e := range t {
		v, err := encodeValue(e.Value)
		if err != nil {
			return nil, err
		}
		n.Content = append(n.Content, scalar(e.Key), v)
	}
	return n, nil
}

func encodeValue(value any) (*yaml.Node, error) {
	if t, ok := value.(Tree); ok {
		return encodeTree(t)
	}
	if IsList(value) {
		n := &yaml.Node{Kind: yaml.SequenceNode, Style: yaml.FlowStyle}
		for _, item := range ListValues(value) {
			v, err := encodeValue(item)
			if err != nil {
				return nil, err
			}
			n.Content = append(n.Content, v)
		}
		return n, nil
	}

	n := &yaml.Node{}
	if err := n.Encode(value); err != nil {
		return nil, fmt.Errorf("specification: encode value %v: %w", value, err)
	}
	return n, nil
}

func scalar(v string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: v}
}

func intNode(v int) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!int", Value: fmt.Sprint(v)}
}
