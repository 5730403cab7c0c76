package types

import "time"

// Item types.
const (
	ItemTypeLost  = "lost"
	ItemTypeFound = "found"
)

// Item lifecycle statuses. A report starts as StatusOpen; the remaining
// statuses record how it was resolved.
const (
	StatusOpen        = "open"
	StatusTransferred = "transferred to campus security office"
	StatusKept        = "kept by finder"
	StatusClaimed     = "claimed by owner"
	StatusClosed      = "closed"
)

// DefaultCategory is applied when a report is created without a category.
const DefaultCategory = "Other"

var itemTypes = map[string]struct{}{
	ItemTypeLost:  {},
	ItemTypeFound: {},
}

var itemCategories = map[string]struct{}{
	"Electronics":      {},
	"Clothing":         {},
	"Books":            {},
	"Keys":             {},
	"Jewelry":          {},
	"Bags":             {},
	"Documents":        {},
	"Sports Equipment": {},
	"Other":            {},
}

var itemStatuses = map[string]struct{}{
	StatusOpen:        {},
	StatusTransferred: {},
	StatusKept:        {},
	StatusClaimed:     {},
	StatusClosed:      {},
}

// ValidItemType reports whether value is a member of the type enumeration.
func ValidItemType(value string) bool {
	_, ok := itemTypes[value]
	return ok
}

// ValidCategory reports whether value is a member of the category enumeration.
func ValidCategory(value string) bool {
	_, ok := itemCategories[value]
	return ok
}

// ValidStatus reports whether value is a member of the status enumeration.
func ValidStatus(value string) bool {
	_, ok := itemStatuses[value]
	return ok
}

// ItemOwner is the read-model projection of the user who filed a report.
// It carries only the fields other students need to identify the owner.
type ItemOwner struct {
	// ID is the owning user's identifier.
	ID int `json:"id" db:"id"`

	// Name is the owner's display name.
	Name string `json:"name" db:"name"`

	// StudentNumber is the owner's campus identifier.
	StudentNumber string `json:"studentNumber" db:"student_number"`
}

// Item represents a lost-or-found report filed by a student.
type Item struct {
	// ID is the unique identifier of the report.
	ID int `json:"id" db:"id"`

	// UserID references the user who filed the report. It is set from the
	// authenticated caller at creation and never changes afterwards.
	UserID int `json:"userId" db:"user_id"`

	// Owner is the resolved owner projection returned by read paths.
	Owner ItemOwner `json:"owner" db:"-"`

	// Title is a short human-readable summary of the item.
	Title string `json:"title" db:"title"`

	// Description is free text describing the item. Optional.
	Description string `json:"description" db:"description"`

	// Type says whether the item was lost or found by the reporter.
	// One of ItemTypeLost or ItemTypeFound.
	Type string `json:"type" db:"type"`

	// Category is the item's category tag, drawn from a fixed enumeration
	// (Electronics, Clothing, Books, Keys, Jewelry, Bags, Documents,
	// Sports Equipment, Other).
	Category string `json:"category" db:"category"`

	// Location is free text naming where the item was lost or found.
	Location string `json:"location" db:"location"`

	// DateLostFound is when the item was lost or found.
	DateLostFound time.Time `json:"dateLostFound" db:"date_lost_found"`

	// Status is the lifecycle state of the report. Always StatusOpen
	// on creation.
	Status string `json:"status" db:"status"`

	// Color is the item's color. Optional.
	Color string `json:"color" db:"color"`

	// Brand is the item's brand or maker. Optional.
	Brand string `json:"brand" db:"brand"`

	// PhotoKey is the object-storage key of the attached photo, empty when
	// no photo has been uploaded. Never exposed in API responses.
	PhotoKey string `json:"-" db:"photo_key"`

	// PhotoContentType is the MIME type recorded at photo upload time.
	PhotoContentType string `json:"-" db:"photo_content_type"`

	// HasPhoto tells clients whether a photo can be fetched for this report.
	HasPhoto bool `json:"hasPhoto" db:"-"`

	// CreatedAt is the timestamp at which the report was filed.
	CreatedAt time.Time `json:"created_at" db:"created_at"`

	// UpdatedAt is the timestamp of the most recent update to the report.
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// ItemPatch is a partial update to a report. A nil field means "leave the
// stored value alone"; a non-nil field is applied, even when it points at
// an empty string.
type ItemPatch struct {
	Title         *string `json:"title"`
	Description   *string `json:"description"`
	Type          *string `json:"type"`
	Category      *string `json:"category"`
	Location      *string `json:"location"`
	DateLostFound *string `json:"dateLostFound"`
	Status        *string `json:"status"`
	Color         *string `json:"color"`
	Brand         *string `json:"brand"`
}

// ItemFilter narrows List and Search results. Zero-valued fields are
// ignored. Filtered reads are restricted to open reports and capped.
type ItemFilter struct {
	Type     string
	Category string
	Location string
	Query    string
	OwnerID  int
	OpenOnly bool
	Limit    int
}

// Empty reports whether no narrowing criteria are set.
func (f ItemFilter) Empty() bool {
	return f.Type == "" && f.Category == "" && f.Location == "" &&
		f.Query == "" && f.OwnerID == 0 && !f.OpenOnly
}
