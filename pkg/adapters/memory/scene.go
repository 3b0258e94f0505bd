package memory

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Scene is the YAML form of an in-memory host: graph nodes with their attributes
// and the nodes considered selected.
type Scene struct {
	Selection []string                `yaml:"selection"`
	Nodes     map[string]SceneNodeDef `yaml:"nodes"`
}

// SceneNodeDef lists the attributes of one graph node, in declaration order.
type SceneNodeDef struct {
	Attributes []Attribute `yaml:"attributes"`
}

// LoadScene reads a YAML scene file into a new Host.
func LoadScene(path string) (*Host, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scene: %w", err)
	}
	return ParseScene(data)
}

// ParseScene builds a Host from YAML scene bytes.
func ParseScene(data []byte) (*Host, error) {
	var scene Scene
	if err := yaml.Unmarshal(data, &scene); err != nil {
		return nil, fmt.Errorf("failed to parse scene: %w", err)
	}

	h := NewHost()
	for name, def := range scene.Nodes {
		for _, a := range def.Attributes {
			if a.Name == "" {
				return nil, fmt.Errorf("node %s: attribute missing name", name)
			}
		}
		h.AddNode(name, def.Attributes...)
	}
	h.SetSelection(scene.Selection...)
	return h, nil
}
