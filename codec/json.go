package codec

import (
	"io"

	jsoniter "github.com/json-iterator/go"

	"github.com/typegraph/typegraph/compiler"
	"github.com/typegraph/typegraph/graph"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// EncodeJSON writes the population's builtin tree as JSON.
func EncodeJSON(w io.Writer, insts []*graph.Instance) error {
	tree, err := Encode(insts)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(tree)
}

// DecodeJSON rebuilds a population from its JSON encoding.
func DecodeJSON(g *compiler.Graph, r io.Reader) ([]*graph.Instance, error) {
	var tree map[string]any
	if err := json.NewDecoder(r).Decode(&tree); err != nil {
		return nil, err
	}
	return Decode(g, tree)
}

// MarshalJSON returns the population's JSON encoding.
func MarshalJSON(insts []*graph.Instance) ([]byte, error) {
	tree, err := Encode(insts)
	if err != nil {
		return nil, err
	}
	return json.Marshal(tree)
}

// UnmarshalJSON rebuilds a population from JSON bytes.
func UnmarshalJSON(g *compiler.Graph, data []byte) ([]*graph.Instance, error) {
	var tree map[string]any
	if err := json.Unmarshal(data, &tree); err != nil {
		return nil, err
	}
	return Decode(g, tree)
}
