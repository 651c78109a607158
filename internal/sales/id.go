package sales

import "github.com/bwmarrin/snowflake"

// IDGenerator hands out time ordered sale ids.
type IDGenerator struct {
	node *snowflake.Node
}

func NewIDGenerator(node int64) (*IDGenerator, error) {
	n, err := snowflake.NewNode(node)
	if err != nil {
		return nil, err
	}
	return &IDGenerator{node: n}, nil
}

func (g *IDGenerator) Next() snowflake.ID {
	return g.node.Generate()
}
