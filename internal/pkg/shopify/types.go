package shopify

// Entity is a referenced product or variant as shown in the editor.
type Entity struct {
	ID     string   `json:"id"`
	Title  string   `json:"title"`
	Images []string `json:"images,omitempty"`
}

// Metafield is one metafield instance on a product. References holds the
// resolved single reference or the list references, whichever the type uses.
type Metafield struct {
	ID         string   `json:"id"`
	Namespace  string   `json:"namespace"`
	Key        string   `json:"key"`
	Type       string   `json:"type"`
	Value      string   `json:"value"`
	Reference  *Entity  `json:"reference,omitempty"`
	References []Entity `json:"references,omitempty"`
}

type Product struct {
	ID         string      `json:"id"`
	Title      string      `json:"title"`
	Images     []string    `json:"images,omitempty"`
	Metafields []Metafield `json:"metafields"`
}

type ProductEdge struct {
	Cursor string  `json:"cursor"`
	Node   Product `json:"node"`
}

type ProductPage struct {
	Edges       []ProductEdge `json:"edges"`
	HasNextPage bool          `json:"hasNextPage"`
}

// ProductSearch selects one page of products.
type ProductSearch struct {
	// Query is a raw Shopify search query, e.g. "title:*gift*".
	Query string
	After string
	First int
	// MetafieldKeys limits returned metafields to "namespace.key" entries.
	MetafieldKeys []string
}

// MetafieldInput is the productUpdate metafield payload.
type MetafieldInput struct {
	Namespace string `json:"namespace"`
	Key       string `json:"key"`
	Value     string `json:"value"`
	Type      string `json:"type"`
}

// Definition is a metafield definition as listed by the Admin API.
type Definition struct {
	ID        string         `json:"id"`
	Name      string         `json:"name"`
	Namespace string         `json:"namespace"`
	Key       string         `json:"key"`
	Type      DefinitionType `json:"type"`
}

type DefinitionType struct {
	Name      string `json:"name"`
	ValueType string `json:"valueType,omitempty"`
}

// Wire shapes.

type imageNode struct {
	URL string `json:"url"`
}

type imageConnection struct {
	Edges []struct {
		Node imageNode `json:"node"`
	} `json:"edges"`
}

type referenceNode struct {
	ID      string          `json:"id"`
	Title   string          `json:"title"`
	Images  imageConnection `json:"images"`
	Image   *imageNode      `json:"image"`
	Product *struct {
		Title  string          `json:"title"`
		Images imageConnection `json:"images"`
	} `json:"product"`
}

type metafieldNode struct {
	ID         string         `json:"id"`
	Namespace  string         `json:"namespace"`
	Key        string         `json:"key"`
	Type       string         `json:"type"`
	Value      string         `json:"value"`
	Reference  *referenceNode `json:"reference"`
	References *struct {
		Edges []struct {
			Node referenceNode `json:"node"`
		} `json:"edges"`
	} `json:"references"`
}

type productNode struct {
	ID         string          `json:"id"`
	Title      string          `json:"title"`
	Images     imageConnection `json:"images"`
	Metafields struct {
		Edges []struct {
			Node metafieldNode `json:"node"`
		} `json:"edges"`
	} `json:"metafields"`
}

type productsData struct {
	Products struct {
		Edges []struct {
			Cursor string      `json:"cursor"`
			Node   productNode `json:"node"`
		} `json:"edges"`
		PageInfo struct {
			HasNextPage bool `json:"hasNextPage"`
		} `json:"pageInfo"`
	} `json:"products"`
}

func (c imageConnection) urls() []string {
	if len(c.Edges) == 0 {
		return nil
	}
	out := make([]string, 0, len(c.Edges))
	for _, e := range c.Edges {
		if e.Node.URL != "" {
			out = append(out, e.Node.URL)
		}
	}
	return out
}

// entity flattens a Product or ProductVariant reference. Variants carry their
// own image when set and fall back to the parent product's images.
func (n referenceNode) entity() Entity {
	e := Entity{ID: n.ID, Title: n.Title, Images: n.Images.urls()}
	if n.Product != nil {
		if n.Product.Title != "" && n.Title != "" {
			e.Title = n.Product.Title + " - " + n.Title
		}
		if n.Image != nil && n.Image.URL != "" {
			e.Images = []string{n.Image.URL}
		} else {
			e.Images = n.Product.Images.urls()
		}
	}
	return e
}

func (n metafieldNode) toMetafield() Metafield {
	m := Metafield{
		ID:        n.ID,
		Namespace: n.Namespace,
		Key:       n.Key,
		Type:      n.Type,
		Value:     n.Value,
	}
	if n.Reference != nil && n.Reference.ID != "" {
		ref := n.Reference.entity()
		m.Reference = &ref
	}
	if n.References != nil {
		for _, edge := range n.References.Edges {
			if edge.Node.ID == "" {
				continue
			}
			m.References = append(m.References, edge.Node.entity())
		}
	}
	return m
}

func (n productNode) toProduct() Product {
	p := Product{ID: n.ID, Title: n.Title, Images: n.Images.urls(), Metafields: []Metafield{}}
	for _, edge := range n.Metafields.Edges {
		p.Metafields = append(p.Metafields, edge.Node.toMetafield())
	}
	return p
}
