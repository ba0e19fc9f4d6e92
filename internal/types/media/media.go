package media

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Kind partitions the catalog: every committed record lands in exactly one
// of the image or video collections.
type Kind string

const (
	KindImage Kind = "image"
	KindVideo Kind = "video"
)

// Record is one committed upload as stored in the media catalog.
type Record struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"_id,omitempty"`
	Key          string             `bson:"key" json:"key"`
	URL          string             `bson:"url" json:"url"`
	OriginalName string             `bson:"originalName" json:"originalName"`
	// UploadDate is the commit time, not the time of the first byte.
	UploadDate time.Time `bson:"uploadDate" json:"lastModified"`
}

// Part is one completed multipart piece as echoed back by the client.
// Field names follow the S3 completion contract.
type Part struct {
	PartNumber int    `json:"PartNumber"`
	ETag       string `json:"ETag"`
}
