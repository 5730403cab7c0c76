package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/campusfind/apiserver/internal/services"
	"github.com/campusfind/apiserver/internal/store"
	"github.com/campusfind/apiserver/types"
	"github.com/go-chi/chi/v5"
)

const (
	maxPhotoBytes      = 8 << 20
	maxMultipartMemory = 8 << 20
	formFieldPhoto     = "photo"

	msgItemNotFound = "item not found"
)

// ItemHandler provides HTTP handlers for item reports.
type ItemHandler struct {
	itemService *services.ItemService
}

// NewItemHandler constructs a handler with the provided service.
func NewItemHandler(itemService *services.ItemService) *ItemHandler {
	return &ItemHandler{itemService: itemService}
}

// ItemRouter registers item routes on the given router. Search stays
// outside the auth middleware; everything else requires a bearer token.
// Photo routes are registered only when a storage backend is configured.
func ItemRouter(r chi.Router, itemService *services.ItemService, authMiddleware func(http.Handler) http.Handler) {
	handler := NewItemHandler(itemService)

	r.Get("/search", handler.SearchItems)

	r.Group(func(r chi.Router) {
		if authMiddleware != nil {
			r.Use(authMiddleware)
		}
		r.Get("/", handler.ListItems)
		r.Post("/", handler.CreateItem)
		r.Route("/{itemID}", func(r chi.Router) {
			r.Put("/", handler.UpdateItem)
			r.Delete("/", handler.DeleteItem)
			if itemService.PhotosEnabled() {
				r.Post("/photo", handler.UploadPhoto)
				r.Get("/photo", handler.GetPhoto)
			}
		})
	})
}

// ListItems returns the board. Without query parameters it lists every
// report; any of type/category/location/query narrows to open reports
// capped at 50, and userId=mine narrows to the caller's own.
func (h *ItemHandler) ListItems(w http.ResponseWriter, r *http.Request) {
	callerID, err := userIDFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	opts := parseListOptions(r)
	opts.Mine = strings.EqualFold(r.URL.Query().Get("userId"), "mine")

	items, err := h.itemService.List(r.Context(), callerID, opts)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, items)
}

// CreateItem files a new report owned by the caller.
func (h *ItemHandler) CreateItem(w http.ResponseWriter, r *http.Request) {
	callerID, err := userIDFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req CreateItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	item, err := h.itemService.Create(r.Context(), callerID, services.CreateItemInput{
		Title:         req.Title,
		Description:   req.Description,
		Type:          req.Type,
		Category:      req.Category,
		Location:      req.Location,
		DateLostFound: req.DateLostFound,
		Color:         req.Color,
		Brand:         req.Brand,
	})
	if err != nil {
		writeItemError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, item)
}

// UpdateItem applies a partial update to a report owned by the caller.
func (h *ItemHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	callerID, err := userIDFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	id, err := parseItemID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var patch types.ItemPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	item, err := h.itemService.Update(r.Context(), callerID, id, patch)
	if err != nil {
		writeItemError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, item)
}

// DeleteItem permanently removes a report owned by the caller.
func (h *ItemHandler) DeleteItem(w http.ResponseWriter, r *http.Request) {
	callerID, err := userIDFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	id, err := parseItemID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.itemService.Delete(r.Context(), callerID, id); err != nil {
		writeItemError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "item deleted successfully"})
}

// SearchItems is the open-only read path, available without a token.
func (h *ItemHandler) SearchItems(w http.ResponseWriter, r *http.Request) {
	items, err := h.itemService.Search(r.Context(), parseListOptions(r))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, items)
}

// UploadPhoto attaches a photo to a report owned by the caller.
func (h *ItemHandler) UploadPhoto(w http.ResponseWriter, r *http.Request) {
	callerID, err := userIDFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	id, err := parseItemID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	file, header, err := r.FormFile(formFieldPhoto)
	if err != nil {
		writeError(w, http.StatusBadRequest, "photo file is required")
		return
	}
	defer file.Close()

	if header.Size > maxPhotoBytes {
		writeError(w, http.StatusBadRequest, "photo too large")
		return
	}

	contentType := header.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "image/") {
		writeError(w, http.StatusBadRequest, "photo must be an image")
		return
	}

	item, err := h.itemService.AttachPhoto(r.Context(), callerID, id, file, header.Size, contentType)
	if err != nil {
		writeItemError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, item)
}

// GetPhoto streams the photo attached to a report.
func (h *ItemHandler) GetPhoto(w http.ResponseWriter, r *http.Request) {
	id, err := parseItemID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	reader, contentType, err := h.itemService.OpenPhoto(r.Context(), id)
	if err != nil {
		writeItemError(w, err)
		return
	}
	defer reader.Close()

	if contentType != "" {
		w.Header().Set("Content-Type", contentType)
	}
	w.WriteHeader(http.StatusOK)
	_, _ = io.Copy(w, reader)
}

// CreateItemRequest is the JSON payload for filing a report.
type CreateItemRequest struct {
	Title         string `json:"title"`
	Description   string `json:"description"`
	Type          string `json:"type"`
	Category      string `json:"category"`
	Location      string `json:"location"`
	DateLostFound string `json:"dateLostFound"`
	Color         string `json:"color"`
	Brand         string `json:"brand"`
}

func parseListOptions(r *http.Request) services.ListOptions {
	q := r.URL.Query()
	return services.ListOptions{
		Type:     strings.TrimSpace(q.Get("type")),
		Category: strings.TrimSpace(q.Get("category")),
		Location: strings.TrimSpace(q.Get("location")),
		Query:    strings.TrimSpace(q.Get("query")),
	}
}

func parseItemID(r *http.Request) (int, error) {
	raw := chi.URLParam(r, "itemID")
	id, err := strconv.Atoi(raw)
	if err != nil || id < 1 {
		return 0, errors.New("invalid item id")
	}
	return id, nil
}

func writeItemError(w http.ResponseWriter, err error) {
	var validation services.ValidationError
	switch {
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, msgItemNotFound)
	case errors.As(err, &validation):
		writeError(w, http.StatusBadRequest, validation.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}
