package loader

import (
	"io"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/restock/internal/model"
)

// decodeYAML accepts either a sequence of orders or a mapping with "orders"
// and "messages" keys.
func decodeYAML(r io.Reader) (*Dataset, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, eris.Wrap(err, "yaml: read")
	}
	if firstByte(data) == 0 {
		return &Dataset{}, nil
	}

	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return nil, eris.Wrap(err, "yaml: parse")
	}
	if len(node.Content) == 0 {
		return &Dataset{}, nil
	}

	if node.Content[0].Kind == yaml.SequenceNode {
		var orders []model.ExtractedOrder
		if err := node.Content[0].Decode(&orders); err != nil {
			return nil, eris.Wrap(err, "yaml: decode orders")
		}
		return &Dataset{Orders: orders}, nil
	}

	var ds Dataset
	if err := node.Content[0].Decode(&ds); err != nil {
		return nil, eris.Wrap(err, "yaml: decode dataset")
	}
	return &ds, nil
}
