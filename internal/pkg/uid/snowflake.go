package uid

import "github.com/bwmarrin/snowflake"

// Snowflake generates time-ordered numeric identifiers.
type Snowflake struct {
	node *snowflake.Node
}

// NewSnowflake creates a generator bound to the given node number.
func NewSnowflake(nodeID int64) (*Snowflake, error) {
	node, err := snowflake.NewNode(nodeID)
	if err != nil {
		return nil, err
	}

	return &Snowflake{node: node}, nil
}

// Generate returns a new snowflake id.
func (s *Snowflake) Generate() int64 {
	return s.node.Generate().Int64()
}
