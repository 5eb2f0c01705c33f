package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Document struct {
	Id          uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserId      uuid.UUID `gorm:"type:uuid;not null;index"`
	Name        string    `gorm:"type:varchar(255);not null"`
	Kind        string    `gorm:"type:varchar(20);not null;default:'text'"`
	ContentType string    `gorm:"type:varchar(100)"`
	SizeBytes   int64
	Status      string  `gorm:"type:varchar(20);not null;default:'processing';index"`
	Pages       int     `gorm:"default:0"`
	ChunkCount  int     `gorm:"default:0"`
	Error       *string `gorm:"type:text"`
	Content     []byte  `gorm:"type:bytea"`
	CreatedAt   time.Time      `gorm:"autoCreateTime"`
	UpdatedAt   time.Time      `gorm:"autoUpdateTime"`
	DeletedAt   gorm.DeletedAt `gorm:"index"`
}

func (Document) TableName() string {
	return "documents"
}
