package dto

// CreateAnnouncementRequest represents a new announcement
type CreateAnnouncementRequest struct {
	Title string `json:"title" binding:"required"`
	Body  string `json:"body" binding:"required"`
}

// UpdateAnnouncementRequest represents an announcement update
type UpdateAnnouncementRequest struct {
	Title string `json:"title" binding:"required"`
	Body  string `json:"body" binding:"required"`
}
