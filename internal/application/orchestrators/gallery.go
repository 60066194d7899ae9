package orchestrators

import (
	"context"
	"errors"
	"strings"

	"arisan/internal/adapters/imagehost"
	"arisan/internal/domain/gallery"
	"arisan/internal/domain/ledger"
)

// ErrGalleryItemNotFound is returned when a gallery id does not resolve.
var ErrGalleryItemNotFound = errors.New("gallery item not found")

// AddGalleryItemInput carries input for the add-gallery-item orchestrator.
// Either ImageURL or ImageData must be set; raw bytes go through the
// uploader first.
type AddGalleryItemInput struct {
	Name         string
	LocationLink string
	ImageURL     string
	ImageData    []byte
	ContentType  string
}

// AddGalleryItemDeps holds dependencies for ExecuteAddGalleryItem.
type AddGalleryItemDeps struct {
	MutationDeps
	Uploader imagehost.Uploader
}

// ExecuteAddGalleryItem adds a photo to the group gallery.
// PRE: Name is non-empty; an image URL or image bytes are provided
// POST: Item appended with a hosted (or inline) image URL
func ExecuteAddGalleryItem(ctx context.Context, input AddGalleryItemInput, deps AddGalleryItemDeps) (gallery.Item, error) {
	url := input.ImageURL
	if url == "" {
		var err error
		url, err = deps.Uploader.Upload(ctx, input.ImageData, input.ContentType)
		if err != nil {
			return gallery.Item{}, err
		}
	}

	item := gallery.Item{
		ID:           deps.GenerateID(),
		ImageURL:     url,
		Name:         strings.TrimSpace(input.Name),
		LocationLink: strings.TrimSpace(input.LocationLink),
	}
	if err := item.Validate(); err != nil {
		return gallery.Item{}, err
	}

	_, err := applyMutation(ctx, deps.MutationDeps, "gallery_item_added", func(st ledger.State) (ledger.State, error) {
		return st.AddGalleryItem(item), nil
	})
	if err != nil {
		return gallery.Item{}, err
	}
	return item, nil
}

// DeleteGalleryItemInput carries input for the delete-gallery-item orchestrator.
type DeleteGalleryItemInput struct {
	ItemID string
}

// ExecuteDeleteGalleryItem removes a photo from the gallery.
// PRE: ItemID is non-empty
// POST: Item removed; hosted images are left on the host
func ExecuteDeleteGalleryItem(ctx context.Context, input DeleteGalleryItemInput, deps MutationDeps) (ledger.State, error) {
	if input.ItemID == "" {
		return ledger.State{}, ErrGalleryItemNotFound
	}
	return applyMutation(ctx, deps, "gallery_item_deleted", func(st ledger.State) (ledger.State, error) {
		for _, item := range st.Gallery {
			if item.ID == input.ItemID {
				return st.DeleteGalleryItem(input.ItemID), nil
			}
		}
		return ledger.State{}, ErrGalleryItemNotFound
	})
}
