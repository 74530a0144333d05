package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Note is one uploaded study resource. Uploads start unapproved and only
// show up in the public listing once an admin approves them.
type Note struct {
	ID          primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	Branch      string             `json:"branch" bson:"branch" validate:"required"`
	Subject     string             `json:"subject" bson:"subject" validate:"required"`
	Semester    string             `json:"semester" bson:"semester" validate:"required"`
	Title       string             `json:"title" bson:"title" validate:"required,min=3"`
	Description string             `json:"description" bson:"description"`
	FileURL     string             `json:"fileUrl" bson:"file_url" validate:"required,url"`
	Approved    bool               `json:"approved" bson:"approved"`
	UploadedBy  primitive.ObjectID `json:"uploaded_by,omitempty" bson:"uploaded_by,omitempty"`
	CreatedAt   time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt   time.Time          `json:"updated_at" bson:"updated_at"`
}

// NoteFilter narrows the public listing. Empty fields match everything.
type NoteFilter struct {
	Branch   string
	Subject  string
	Semester string
}
