package codec

import (
	"bytes"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/typegraph/typegraph/compiler"
	"github.com/typegraph/typegraph/graph"
)

// MarshalMsgpack returns the population's MessagePack encoding.
func MarshalMsgpack(insts []*graph.Instance) ([]byte, error) {
	tree, err := Encode(insts)
	if err != nil {
		return nil, err
	}
	return msgpack.Marshal(tree)
}

// UnmarshalMsgpack rebuilds a population from MessagePack bytes. The
// decoder is configured to yield string-keyed maps and int64/float64
// scalars so the tree matches the builtin contract.
func UnmarshalMsgpack(g *compiler.Graph, data []byte) ([]*graph.Instance, error) {
	dec := msgpack.NewDecoder(bytes.NewReader(data))
	dec.UseLooseInterfaceDecoding(true)
	var tree map[string]any
	if err := dec.Decode(&tree); err != nil {
		return nil, err
	}
	return Decode(g, tree)
}
