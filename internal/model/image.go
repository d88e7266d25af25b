package model

import "time"

// MaxImageSize is the largest accepted decoded image size in bytes.
const MaxImageSize = 5 * 1024 * 1024

// Image is an uploaded image whose payload is stored inline as a data URL.
type Image struct {
	ID         string    `json:"id" bson:"_id" gorm:"primaryKey;size:24"`
	Name       string    `json:"name" bson:"name" gorm:"size:255;not null"`
	Data       string    `json:"data" bson:"data" gorm:"size:8388608;not null"`
	MimeType   string    `json:"mimeType" bson:"mimeType" gorm:"size:100;not null"`
	Size       int64     `json:"size" bson:"size" gorm:"not null"`
	UploadedBy string    `json:"uploadedBy" bson:"uploadedBy" gorm:"size:24;not null;index"`
	UploadedAt time.Time `json:"uploadedAt" bson:"uploadedAt" gorm:"index"`
}

// ImageView is an image with its uploader resolved, as listed in the back-office.
type ImageView struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Data       string    `json:"data"`
	MimeType   string    `json:"mimeType"`
	Size       int64     `json:"size"`
	UploadedBy *UserRef  `json:"uploadedBy"`
	UploadedAt time.Time `json:"uploadedAt"`
}
