// Package gallery holds the photo gallery items shown on the group page.
package gallery

import (
	"errors"
	"strings"
)

// Domain errors
var (
	ErrEmptyName     = errors.New("gallery item name cannot be empty")
	ErrEmptyImageURL = errors.New("gallery item image URL cannot be empty")
)

// Item is one gallery photo. ImageUrl is either a public URL from the
// image host or an inline data URL for small files.
type Item struct {
	ID           string `json:"id"`
	ImageURL     string `json:"imageUrl"`
	Name         string `json:"name"`
	LocationLink string `json:"locationLink,omitempty"`
}

// Validate checks if the Item has valid data.
// PRE: Item struct is populated
// POST: Returns nil if valid, error otherwise
func (i *Item) Validate() error {
	if strings.TrimSpace(i.Name) == "" {
		return ErrEmptyName
	}
	if strings.TrimSpace(i.ImageURL) == "" {
		return ErrEmptyImageURL
	}
	return nil
}
