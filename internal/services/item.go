package services

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/campusfind/apiserver/internal/events"
	"github.com/campusfind/apiserver/internal/storage"
	"github.com/campusfind/apiserver/internal/store"
	"github.com/campusfind/apiserver/types"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// filteredResultCap bounds filtered listing and search results.
const filteredResultCap = 50

// ValidationError reports a missing or malformed field in a request.
type ValidationError string

func (e ValidationError) Error() string { return string(e) }

// ItemRepository defines persistence operations for item reports.
type ItemRepository interface {
	List(ctx context.Context, filter types.ItemFilter) ([]types.Item, error)
	Get(ctx context.Context, id int) (types.Item, error)
	GetOwned(ctx context.Context, id, ownerID int) (types.Item, error)
	Create(ctx context.Context, item types.Item) (types.Item, error)
	Update(ctx context.Context, item types.Item) (types.Item, error)
	DeleteOwned(ctx context.Context, id, ownerID int) (string, error)
	SetPhoto(ctx context.Context, id, ownerID int, key, contentType string) error
}

// ItemService carries the report lifecycle rules: creation defaulting,
// enum validation, ownership-fused mutation, listing modes, photos, and
// event publishing.
type ItemService struct {
	repo      ItemRepository
	photos    storage.ObjectStorage
	publisher *events.Publisher
	logger    *zap.Logger
}

func NewItemService(repo ItemRepository, photos storage.ObjectStorage, publisher *events.Publisher, logger *zap.Logger) *ItemService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ItemService{
		repo:      repo,
		photos:    photos,
		publisher: publisher,
		logger:    logger,
	}
}

// PhotosEnabled reports whether a photo storage backend is configured.
func (s *ItemService) PhotosEnabled() bool {
	return s.photos != nil
}

// CreateItemInput is the client-supplied portion of a new report. The
// owner, status, and timestamps are never taken from the client.
type CreateItemInput struct {
	Title         string
	Description   string
	Type          string
	Category      string
	Location      string
	DateLostFound string
	Color         string
	Brand         string
}

// Create files a new report owned by ownerID. Type defaults to lost,
// category to Other, and the event date to now when absent or unparsable.
// Status is always open regardless of input.
func (s *ItemService) Create(ctx context.Context, ownerID int, in CreateItemInput) (types.Item, error) {
	item := types.Item{
		UserID:      ownerID,
		Title:       strings.TrimSpace(in.Title),
		Description: in.Description,
		Type:        in.Type,
		Category:    in.Category,
		Location:    strings.TrimSpace(in.Location),
		Status:      types.StatusOpen,
		Color:       in.Color,
		Brand:       in.Brand,
	}

	if item.Type == "" {
		item.Type = types.ItemTypeLost
	}
	if item.Category == "" {
		item.Category = types.DefaultCategory
	}
	item.DateLostFound = parseDateOr(in.DateLostFound, time.Now())

	if item.Title == "" {
		return types.Item{}, ValidationError("title is required")
	}
	if item.Location == "" {
		return types.Item{}, ValidationError("location is required")
	}
	if !types.ValidItemType(item.Type) {
		return types.Item{}, ValidationError("invalid item type")
	}
	if !types.ValidCategory(item.Category) {
		return types.Item{}, ValidationError("invalid category")
	}

	created, err := s.repo.Create(ctx, item)
	if err != nil {
		return types.Item{}, err
	}

	// Re-read through the join so the response carries the resolved owner.
	resolved, err := s.repo.Get(ctx, created.ID)
	if err != nil {
		return types.Item{}, err
	}

	s.publish(ctx, events.ChannelItemCreated, resolved)
	return resolved, nil
}

// ListOptions narrows a listing request. Mine restricts results to the
// caller's own reports.
type ListOptions struct {
	Type     string
	Category string
	Location string
	Query    string
	Mine     bool
}

func (o ListOptions) filtered() bool {
	return o.Type != "" || o.Category != "" || o.Location != "" || o.Query != ""
}

// List returns reports newest-created-first. With no options set it is the
// full board: every report, any status, any owner. Supplying any of type,
// category, location, or query switches to the filtered mode, which is
// implicitly open-only and capped. Mine narrows to the caller's reports
// without forcing open-only, so owners can still see their resolved ones.
func (s *ItemService) List(ctx context.Context, callerID int, opts ListOptions) ([]types.Item, error) {
	filter := types.ItemFilter{
		Type:     opts.Type,
		Category: opts.Category,
		Location: opts.Location,
		Query:    opts.Query,
	}
	if opts.Mine {
		filter.OwnerID = callerID
	}
	if opts.filtered() {
		filter.OpenOnly = true
		filter.Limit = filteredResultCap
	}
	return s.repo.List(ctx, filter)
}

// Search is the restricted read path: always open-only, capped, newest
// first. It takes the same type/category/location/query narrowing as List.
func (s *ItemService) Search(ctx context.Context, opts ListOptions) ([]types.Item, error) {
	return s.repo.List(ctx, types.ItemFilter{
		Type:     opts.Type,
		Category: opts.Category,
		Location: opts.Location,
		Query:    opts.Query,
		OpenOnly: true,
		Limit:    filteredResultCap,
	})
}

// Update applies a partial update to a report owned by ownerID. A non-owner
// gets the same store.ErrNotFound as a nonexistent id. Nil patch fields keep
// the stored values; present fields are validated and applied.
func (s *ItemService) Update(ctx context.Context, ownerID, id int, patch types.ItemPatch) (types.Item, error) {
	item, err := s.repo.GetOwned(ctx, id, ownerID)
	if err != nil {
		return types.Item{}, err
	}
	previousStatus := item.Status

	if err := applyPatch(&item, patch); err != nil {
		return types.Item{}, err
	}

	updated, err := s.repo.Update(ctx, item)
	if err != nil {
		return types.Item{}, err
	}

	if updated.Status != previousStatus {
		s.publish(ctx, events.ChannelItemStatus, updated)
	}
	return updated, nil
}

// Delete permanently removes a report owned by ownerID, along with its
// photo when one was attached.
func (s *ItemService) Delete(ctx context.Context, ownerID, id int) error {
	photoKey, err := s.repo.DeleteOwned(ctx, id, ownerID)
	if err != nil {
		return err
	}

	if photoKey != "" && s.photos != nil {
		if err := s.photos.Delete(ctx, photoKey); err != nil {
			s.logger.Warn("failed to delete item photo",
				zap.Int("item_id", id),
				zap.String("photo_key", photoKey),
				zap.Error(err),
			)
		}
	}
	return nil
}

// AttachPhoto stores a photo for a report owned by ownerID and records its
// key and content type on the row. A previously attached photo is replaced.
func (s *ItemService) AttachPhoto(ctx context.Context, ownerID, id int, r io.Reader, size int64, contentType string) (types.Item, error) {
	if s.photos == nil {
		return types.Item{}, ValidationError("photo storage is not configured")
	}

	item, err := s.repo.GetOwned(ctx, id, ownerID)
	if err != nil {
		return types.Item{}, err
	}

	key := fmt.Sprintf("items/%d/%s", id, uuid.NewString())
	if err := s.photos.Put(ctx, key, r, size, contentType); err != nil {
		return types.Item{}, err
	}
	if err := s.repo.SetPhoto(ctx, id, ownerID, key, contentType); err != nil {
		return types.Item{}, err
	}

	if item.PhotoKey != "" {
		if err := s.photos.Delete(ctx, item.PhotoKey); err != nil {
			s.logger.Warn("failed to delete replaced photo",
				zap.Int("item_id", id),
				zap.String("photo_key", item.PhotoKey),
				zap.Error(err),
			)
		}
	}

	return s.repo.GetOwned(ctx, id, ownerID)
}

// OpenPhoto streams the photo attached to a report. A report without a
// photo reads as not found.
func (s *ItemService) OpenPhoto(ctx context.Context, id int) (io.ReadCloser, string, error) {
	if s.photos == nil {
		return nil, "", store.ErrNotFound
	}

	item, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, "", err
	}
	if item.PhotoKey == "" {
		return nil, "", store.ErrNotFound
	}

	reader, err := s.photos.Get(ctx, item.PhotoKey)
	if err != nil {
		return nil, "", err
	}
	return reader, item.PhotoContentType, nil
}

func (s *ItemService) publish(ctx context.Context, channel string, item types.Item) {
	if s.publisher == nil {
		return
	}
	event := events.ItemEvent{
		ItemID:     item.ID,
		Type:       item.Type,
		Category:   item.Category,
		Status:     item.Status,
		OwnerID:    item.UserID,
		OccurredAt: time.Now(),
	}
	if _, err := s.publisher.PublishItemEvent(ctx, channel, event); err != nil {
		// Publishing is best-effort; the request already succeeded.
		s.logger.Warn("failed to publish item event",
			zap.String("channel", channel),
			zap.Int("item_id", item.ID),
			zap.Error(err),
		)
	}
}

func applyPatch(item *types.Item, patch types.ItemPatch) error {
	if patch.Title != nil {
		title := strings.TrimSpace(*patch.Title)
		if title == "" {
			return ValidationError("title is required")
		}
		item.Title = title
	}
	if patch.Description != nil {
		item.Description = *patch.Description
	}
	if patch.Type != nil {
		if !types.ValidItemType(*patch.Type) {
			return ValidationError("invalid item type")
		}
		item.Type = *patch.Type
	}
	if patch.Category != nil {
		if !types.ValidCategory(*patch.Category) {
			return ValidationError("invalid category")
		}
		item.Category = *patch.Category
	}
	if patch.Location != nil {
		location := strings.TrimSpace(*patch.Location)
		if location == "" {
			return ValidationError("location is required")
		}
		item.Location = location
	}
	if patch.DateLostFound != nil {
		parsed, err := parseDate(*patch.DateLostFound)
		if err != nil {
			return ValidationError("invalid dateLostFound")
		}
		item.DateLostFound = parsed
	}
	if patch.Status != nil {
		if !types.ValidStatus(*patch.Status) {
			return ValidationError("invalid status")
		}
		item.Status = *patch.Status
	}
	if patch.Color != nil {
		item.Color = *patch.Color
	}
	if patch.Brand != nil {
		item.Brand = *patch.Brand
	}
	return nil
}

var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

func parseDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	var lastErr error
	for _, layout := range dateLayouts {
		parsed, err := time.Parse(layout, raw)
		if err == nil {
			return parsed, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}

func parseDateOr(raw string, fallback time.Time) time.Time {
	if strings.TrimSpace(raw) == "" {
		return fallback
	}
	parsed, err := parseDate(raw)
	if err != nil {
		return fallback
	}
	return parsed
}
