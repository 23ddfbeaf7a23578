package models

import (
	"time"

	"gorm.io/datatypes"
)

// Department groups doctors under a clinical specialty
type Department struct {
	BaseModel   `bson:",inline"`
	Name        string                      `gorm:"size:255;index;not null" json:"name" bson:"name"`
	Description string                      `gorm:"type:text" json:"description" bson:"description"`
	Icon        string                      `gorm:"size:255" json:"icon" bson:"icon"`
	DoctorIDs   datatypes.JSONSlice[string] `gorm:"column:doctor_ids" json:"doctorIds" bson:"doctorIds"`
}

// News is a published article shown on the landing pages
type News struct {
	BaseModel   `bson:",inline"`
	Title       string     `gorm:"size:255;not null" json:"title" bson:"title"`
	Category    string     `gorm:"size:100;index;not null" json:"category" bson:"category"`
	Content     string     `gorm:"type:text;not null" json:"content" bson:"content"`
	Author      string     `gorm:"size:255;not null" json:"author" bson:"author"`
	Image       string     `gorm:"size:1024" json:"image" bson:"image"`
	Published   bool       `gorm:"index" json:"published" bson:"published"`
	PublishedAt *time.Time `gorm:"index" json:"publishedAt" bson:"publishedAt"`
}

func (News) TableName() string { return "news" }

// FAQ is a question and answer pair, displayed by ascending order
type FAQ struct {
	BaseModel `bson:",inline"`
	Question  string `gorm:"type:text;not null" json:"question" bson:"question"`
	Answer    string `gorm:"type:text;not null" json:"answer" bson:"answer"`
	Category  string `gorm:"size:100" json:"category" bson:"category"`
	Order     *int   `gorm:"column:sort_order;index" json:"order" bson:"order"`
}

func (FAQ) TableName() string { return "faqs" }
