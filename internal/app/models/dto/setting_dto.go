package dto

// UpsertSettingRequest creates or replaces a setting by key
type UpsertSettingRequest struct {
	Key      string `json:"key" binding:"required"`
	Value    string `json:"value" binding:"required"`
	Type     string `json:"type" binding:"required"`
	Category string `json:"category" binding:"required"`
	IsPublic bool   `json:"isPublic"`
}
