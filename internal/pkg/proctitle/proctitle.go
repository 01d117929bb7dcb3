package proctitle

import (
	"errors"
	"strings"
)

const kernelNameMax = 15

var ErrEmptyTitle = errors.New("proctitle: empty title")

// Title builds the process title for a shop, e.g. "mf:demo" for
// demo.myshopify.com.
func Title(shop string) string {
	shop = strings.TrimSuffix(strings.ToLower(strings.TrimSpace(shop)), ".myshopify.com")
	if shop == "" {
		return "metafields"
	}
	return "mf:" + shop
}

func normalize(title string) (string, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return "", ErrEmptyTitle
	}
	if len(title) > kernelNameMax {
		title = title[:kernelNameMax]
	}
	return title, nil
}
