package infra

import (
	"github.com/amirasaad/lendrix/pkg/domain/account"
	"github.com/bwmarrin/snowflake"
)

type snowflakeNumbers struct {
	node *snowflake.Node
}

// NewAccountNumberGenerator returns a generator of time-ordered, process-unique
// account numbers. node must be distinct per running instance.
func NewAccountNumberGenerator(node int64) (account.NumberGenerator, error) {
	n, err := snowflake.NewNode(node)
	if err != nil {
		return nil, err
	}
	return &snowflakeNumbers{node: n}, nil
}

func (g *snowflakeNumbers) Next() int64 {
	return g.node.Generate().Int64()
}
