package shopify

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

const productUpdateMutation = `
mutation updateProductMetafield($input: ProductInput!) {
  productUpdate(input: $input) {
    product {
      id
      metafields(first: 25) {
        edges { node { id namespace key type value } }
      }
    }
    userErrors { field message }
  }
}`

const metafieldDeleteMutation = `
mutation metafieldDelete($input: MetafieldDeleteInput!) {
  metafieldDelete(input: $input) {
    deletedId
    userErrors { field message }
  }
}`

type productUpdateData struct {
	ProductUpdate struct {
		Product *struct {
			ID         string `json:"id"`
			Metafields struct {
				Edges []struct {
					Node metafieldNode `json:"node"`
				} `json:"edges"`
			} `json:"metafields"`
		} `json:"product"`
		UserErrors []UserError `json:"userErrors"`
	} `json:"productUpdate"`
}

type metafieldDeleteData struct {
	MetafieldDelete struct {
		DeletedID  *string     `json:"deletedId"`
		UserErrors []UserError `json:"userErrors"`
	} `json:"metafieldDelete"`
}

// SetProductMetafield creates or overwrites one metafield on a product and
// returns the metafield as stored.
func (c *Client) SetProductMetafield(ctx context.Context, productID string, input MetafieldInput) (Metafield, error) {
	if c == nil {
		return Metafield{}, errors.New("shopify client is nil")
	}
	productID = strings.TrimSpace(productID)
	if productID == "" {
		return Metafield{}, errors.New("shopify product id is required")
	}
	if input.Namespace == "" || input.Key == "" || input.Type == "" {
		return Metafield{}, errors.New("shopify metafield namespace, key and type are required")
	}

	variables := map[string]any{
		"input": map[string]any{
			"id":         productID,
			"metafields": []MetafieldInput{input},
		},
	}
	var data productUpdateData
	if err := c.graphqlRequest(ctx, productUpdateMutation, variables, &data); err != nil {
		return Metafield{}, fmt.Errorf("update product metafield: %w", err)
	}
	if err := userErrors("productUpdate", data.ProductUpdate.UserErrors); err != nil {
		return Metafield{}, err
	}

	if data.ProductUpdate.Product != nil {
		for _, edge := range data.ProductUpdate.Product.Metafields.Edges {
			if edge.Node.Namespace == input.Namespace && edge.Node.Key == input.Key {
				return edge.Node.toMetafield(), nil
			}
		}
	}
	// Not echoed back; report what was sent.
	return Metafield{Namespace: input.Namespace, Key: input.Key, Type: input.Type, Value: input.Value}, nil
}

// DeleteMetafield removes a metafield instance by id and returns the deleted id.
func (c *Client) DeleteMetafield(ctx context.Context, metafieldID string) (string, error) {
	if c == nil {
		return "", errors.New("shopify client is nil")
	}
	metafieldID = strings.TrimSpace(metafieldID)
	if metafieldID == "" {
		return "", errors.New("shopify metafield id is required")
	}

	var data metafieldDeleteData
	variables := map[string]any{"input": map[string]any{"id": metafieldID}}
	if err := c.graphqlRequest(ctx, metafieldDeleteMutation, variables, &data); err != nil {
		return "", fmt.Errorf("delete metafield: %w", err)
	}
	if err := userErrors("metafieldDelete", data.MetafieldDelete.UserErrors); err != nil {
		return "", err
	}
	if data.MetafieldDelete.DeletedID == nil {
		return "", nil
	}
	return *data.MetafieldDelete.DeletedID, nil
}
