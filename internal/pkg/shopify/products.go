package shopify

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

const (
	defaultProductPageSize = 5
	maxProductPageSize     = 250
	metafieldsPerProduct   = 25
	referencesPerMetafield = 50
	imagesPerEntity        = 10
)

const productsQuery = `
query products($first: Int!, $after: String, $query: String, $keys: [String!]) {
  products(first: $first, after: $after, query: $query) {
    edges {
      cursor
      node {
        id
        title
        images(first: 1) { edges { node { url } } }
        metafields(first: %[1]d, keys: $keys) {
          edges {
            node {
              id
              namespace
              key
              type
              value
              reference { ...ReferencedEntity }
              references(first: %[2]d) { edges { node { ...ReferencedEntity } } }
            }
          }
        }
      }
    }
    pageInfo { hasNextPage }
  }
}

fragment ReferencedEntity on MetafieldReference {
  ... on Product {
    id
    title
    images(first: %[3]d) { edges { node { url } } }
  }
  ... on ProductVariant {
    id
    title
    image { url }
    product { title images(first: %[3]d) { edges { node { url } } } }
  }
}`

var productsQueryText = fmt.Sprintf(productsQuery, metafieldsPerProduct, referencesPerMetafield, imagesPerEntity)

// TitleQuery builds the wildcard title search used by the editor. An empty
// term matches every product.
func TitleQuery(term string) string {
	term = strings.TrimSpace(term)
	if term == "" {
		return ""
	}
	return "title:*" + term + "*"
}

// SearchProducts fetches one page of products with their metafield values.
func (c *Client) SearchProducts(ctx context.Context, search ProductSearch) (ProductPage, error) {
	if c == nil {
		return ProductPage{}, errors.New("shopify client is nil")
	}
	first := search.First
	if first <= 0 {
		first = defaultProductPageSize
	}
	if first > maxProductPageSize {
		first = maxProductPageSize
	}

	variables := map[string]any{"first": first}
	if search.After != "" {
		variables["after"] = search.After
	}
	if q := strings.TrimSpace(search.Query); q != "" {
		variables["query"] = q
	}
	if len(search.MetafieldKeys) > 0 {
		variables["keys"] = search.MetafieldKeys
	}

	var data productsData
	if err := c.graphqlRequest(ctx, productsQueryText, variables, &data); err != nil {
		return ProductPage{}, fmt.Errorf("search products: %w", err)
	}

	page := ProductPage{
		Edges:       make([]ProductEdge, 0, len(data.Products.Edges)),
		HasNextPage: data.Products.PageInfo.HasNextPage,
	}
	for _, edge := range data.Products.Edges {
		page.Edges = append(page.Edges, ProductEdge{Cursor: edge.Cursor, Node: edge.Node.toProduct()})
	}
	return page, nil
}
