package shopify

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

const (
	OwnerTypeProduct = "PRODUCT"

	definitionsPageSize = 100
	maxDefinitionPages  = 20
)

const metafieldDefinitionsQuery = `
query metafieldDefinitions($first: Int!, $after: String, $ownerType: MetafieldOwnerType!) {
  metafieldDefinitions(first: $first, after: $after, ownerType: $ownerType) {
    edges {
      cursor
      node {
        id
        name
        namespace
        key
        type { name valueType }
      }
    }
    pageInfo { hasNextPage }
  }
}`

type definitionsData struct {
	MetafieldDefinitions struct {
		Edges []struct {
			Cursor string     `json:"cursor"`
			Node   Definition `json:"node"`
		} `json:"edges"`
		PageInfo struct {
			HasNextPage bool `json:"hasNextPage"`
		} `json:"pageInfo"`
	} `json:"metafieldDefinitions"`
}

// ListMetafieldDefinitions returns every metafield definition for ownerType,
// following pagination until exhausted.
func (c *Client) ListMetafieldDefinitions(ctx context.Context, ownerType string) ([]Definition, error) {
	if c == nil {
		return nil, errors.New("shopify client is nil")
	}
	ownerType = strings.ToUpper(strings.TrimSpace(ownerType))
	if ownerType == "" {
		ownerType = OwnerTypeProduct
	}

	defs := make([]Definition, 0)
	after := ""
	for page := 0; page < maxDefinitionPages; page++ {
		variables := map[string]any{"first": definitionsPageSize, "ownerType": ownerType}
		if after != "" {
			variables["after"] = after
		}

		var data definitionsData
		if err := c.graphqlRequest(ctx, metafieldDefinitionsQuery, variables, &data); err != nil {
			return nil, fmt.Errorf("list metafield definitions: %w", err)
		}
		edges := data.MetafieldDefinitions.Edges
		for _, edge := range edges {
			defs = append(defs, edge.Node)
		}
		if !data.MetafieldDefinitions.PageInfo.HasNextPage || len(edges) == 0 {
			return defs, nil
		}
		after = edges[len(edges)-1].Cursor
	}
	c.logger.Warn("metafield definitions truncated", zap.Int("pages", maxDefinitionPages), zap.Int("count", len(defs)))
	return defs, nil
}
