package web

import (
	"io"
	"net/http"
	"strings"

	"arisan/internal/application/orchestrators"
)

// maxUploadSize caps multipart gallery uploads at 5MB, matching the
// image host limit.
const maxUploadSize = 5 << 20

func handleListGallery(w http.ResponseWriter, r *http.Request) {
	st := deps.State.Current()
	writeJSON(w, http.StatusOK, st.Gallery)
}

// handleAddGalleryItem accepts either a JSON body pointing at an already
// hosted image, or a multipart form with the image bytes to upload.
func handleAddGalleryItem(w http.ResponseWriter, r *http.Request) {
	input := orchestrators.AddGalleryItemInput{}

	contentType := r.Header.Get("Content-Type")
	if strings.HasPrefix(contentType, "multipart/form-data") {
		if err := r.ParseMultipartForm(maxUploadSize); err != nil {
			writeError(w, http.StatusBadRequest, "invalid multipart form")
			return
		}
		input.Name = strings.TrimSpace(r.FormValue("name"))
		input.LocationLink = strings.TrimSpace(r.FormValue("locationLink"))

		file, header, err := r.FormFile("image")
		if err != nil {
			writeError(w, http.StatusBadRequest, "image file is required")
			return
		}
		defer file.Close()

		data, err := io.ReadAll(io.LimitReader(file, maxUploadSize+1))
		if err != nil {
			internalError(w, err)
			return
		}
		if len(data) > maxUploadSize {
			writeError(w, http.StatusRequestEntityTooLarge, "image exceeds the 5MB limit")
			return
		}
		input.ImageData = data
		input.ContentType = header.Header.Get("Content-Type")
	} else {
		var body struct {
			Name         string `json:"name"`
			LocationLink string `json:"locationLink"`
			ImageURL     string `json:"imageUrl"`
		}
		if err := strictDecode(r, &body); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		input.Name = strings.TrimSpace(body.Name)
		input.LocationLink = strings.TrimSpace(body.LocationLink)
		input.ImageURL = strings.TrimSpace(body.ImageURL)
	}

	if input.ImageURL == "" && len(input.ImageData) == 0 {
		writeError(w, http.StatusBadRequest, "an image URL or file is required")
		return
	}

	item, err := orchestrators.ExecuteAddGalleryItem(r.Context(), input, orchestrators.AddGalleryItemDeps{
		MutationDeps: deps.mutation(),
		Uploader:     deps.Uploader,
	})
	if err != nil {
		domainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, item)
}

func handleDeleteGalleryItem(w http.ResponseWriter, r *http.Request) {
	st, err := orchestrators.ExecuteDeleteGalleryItem(r.Context(), orchestrators.DeleteGalleryItemInput{
		ItemID: r.PathValue("id"),
	}, deps.mutation())
	if err != nil {
		domainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, st.Gallery)
}
