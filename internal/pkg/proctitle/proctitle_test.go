package proctitle

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTitle(t *testing.T) {
	assert.Equal(t, "mf:demo", Title("Demo.myshopify.com"))
	assert.Equal(t, "metafields", Title("  "))
}

func TestNormalize(t *testing.T) {
	_, err := normalize(" ")
	assert.ErrorIs(t, err, ErrEmptyTitle)

	got, err := normalize("mf:a-very-long-shop-name")
	require.NoError(t, err)
	assert.Equal(t, "mf:a-very-long-", got)
	assert.Len(t, got, kernelNameMax)
}
