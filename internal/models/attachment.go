package models

import "time"

// Attachment is a media file downloaded from the feed. SourceURL is the URL
// the file was fetched from; at most one attachment exists per source URL.
type Attachment struct {
	ID        uint      `gorm:"column:id;primaryKey" json:"id"`
	SourceURL string    `gorm:"column:source_url;index;not null" json:"source_url"`
	FileName  string    `gorm:"column:file_name;not null" json:"file_name"`
	FilePath  string    `gorm:"column:file_path;not null" json:"file_path"`
	MimeType  string    `gorm:"column:mime_type" json:"mime_type"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (Attachment) TableName() string {
	return "attachments"
}
