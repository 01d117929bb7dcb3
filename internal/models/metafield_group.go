package models

// MetafieldGroupModel is a named bundle of product metafield definitions.
// Metafields holds the JSON-encoded definition list exactly as stored.
type MetafieldGroupModel struct {
	Base
	Name       string `json:"name"       gorm:"type:varchar(191);not null"`
	Metafields string `json:"-"          gorm:"column:metafields;type:longtext"`
}

func (MetafieldGroupModel) TableName() string { return "metafield_groups" }

// MetafieldDefinitionType is the value type of a definition, e.g. "list.product_reference".
type MetafieldDefinitionType struct {
	Name      string `json:"name"`
	ValueType string `json:"valueType,omitempty"`
}

// MetafieldDefinition is a snapshot of a platform definition taken when it was
// assigned to a group. It is never re-validated against the platform.
type MetafieldDefinition struct {
	ID        string                  `json:"id"`
	Name      string                  `json:"name"`
	Namespace string                  `json:"namespace"`
	Key       string                  `json:"key"`
	Type      MetafieldDefinitionType `json:"type"`
}

// FullKey returns "namespace.key", the form the Admin API filters metafields by.
func (d MetafieldDefinition) FullKey() string {
	return d.Namespace + "." + d.Key
}
