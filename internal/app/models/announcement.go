package models

import "time"

// Announcement defines the announcement model based on the 'announcements'
// table. Archival flips Status; soft deletion sets DeletedAt. Rows with a
// non-null DeletedAt are excluded from every listing.
type Announcement struct {
	ID        int64      `json:"id" db:"id"`
	Title     string     `json:"title" db:"title"`
	Body      string     `json:"body" db:"body"`
	PostedBy  int64      `json:"postedBy" db:"posted_by"`
	Status    string     `json:"status" db:"status"`
	CreatedAt time.Time  `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time  `json:"updatedAt" db:"updated_at"`
	DeletedAt *time.Time `json:"deletedAt,omitempty" db:"deleted_at"`
}
