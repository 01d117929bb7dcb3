package editor

import (
	"strings"

	"github.com/mx-space/metafields/internal/models"
)

const (
	typeSingleLineText = "single_line_text_field"
	typeMultiLineText  = "multi_line_text_field"
	typeVariantRef     = "variant_reference"

	PickerProduct = "product"
	PickerVariant = "variant"
)

// IsList reports whether values of typeName are JSON-encoded arrays.
func IsList(typeName string) bool {
	return strings.HasPrefix(typeName, "list.")
}

// IsText reports whether typeName is edited through a text buffer.
func IsText(typeName string) bool {
	return typeName == typeSingleLineText || typeName == typeMultiLineText
}

// PickerType returns the picker resource type for a reference definition.
func PickerType(typeName string) string {
	if strings.TrimPrefix(typeName, "list.") == typeVariantRef {
		return PickerVariant
	}
	return PickerProduct
}

func isText(d *models.MetafieldDefinition) bool {
	return d != nil && IsText(d.Type.Name)
}

func isList(d *models.MetafieldDefinition) bool {
	return d != nil && IsList(d.Type.Name)
}
