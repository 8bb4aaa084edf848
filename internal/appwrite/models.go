package appwrite

import (
	"encoding/json"
	"time"
)

// Token is the result of an email token request; UserID identifies the
// account the emailed code belongs to.
type Token struct {
	ID        string    `json:"$id"`
	UserID    string    `json:"userId"`
	Secret    string    `json:"secret"`
	Expire    time.Time `json:"expire"`
	CreatedAt time.Time `json:"$createdAt"`
}

// Session is an authenticated account session. Secret is only populated when
// the session is created with the server API key.
type Session struct {
	ID        string    `json:"$id"`
	UserID    string    `json:"userId"`
	Secret    string    `json:"secret"`
	Expire    time.Time `json:"expire"`
	Current   bool      `json:"current"`
	CreatedAt time.Time `json:"$createdAt"`
}

// User is the backend account (not the users collection document).
type User struct {
	ID                string    `json:"$id"`
	Name              string    `json:"name"`
	Email             string    `json:"email"`
	EmailVerification bool      `json:"emailVerification"`
	Status            bool      `json:"status"`
	CreatedAt         time.Time `json:"$createdAt"`
	UpdatedAt         time.Time `json:"$updatedAt"`
}

// Document holds the system attributes of a collection document plus its
// raw JSON so callers can decode their own attributes with Decode.
type Document struct {
	ID           string    `json:"$id"`
	CollectionID string    `json:"$collectionId"`
	DatabaseID   string    `json:"$databaseId"`
	CreatedAt    time.Time `json:"$createdAt"`
	UpdatedAt    time.Time `json:"$updatedAt"`
	Permissions  []string  `json:"$permissions"`

	raw json.RawMessage
}

func (d *Document) UnmarshalJSON(b []byte) error {
	type systemFields Document
	var f systemFields
	if err := json.Unmarshal(b, &f); err != nil {
		return err
	}
	*d = Document(f)
	d.raw = append(json.RawMessage(nil), b...)
	return nil
}

func (d Document) MarshalJSON() ([]byte, error) {
	if d.raw != nil {
		return d.raw, nil
	}
	type systemFields Document
	return json.Marshal(systemFields(d))
}

// Decode unmarshals the full document into v.
func (d *Document) Decode(v any) error {
	return json.Unmarshal(d.raw, v)
}

// DocumentList is a page of documents with the total match count.
type DocumentList struct {
	Total     int        `json:"total"`
	Documents []Document `json:"documents"`
}

// File is a storage bucket object.
type File struct {
	ID             string    `json:"$id"`
	BucketID       string    `json:"bucketId"`
	Name           string    `json:"name"`
	Signature      string    `json:"signature"`
	MimeType       string    `json:"mimeType"`
	SizeOriginal   int64     `json:"sizeOriginal"`
	ChunksTotal    int       `json:"chunksTotal"`
	ChunksUploaded int       `json:"chunksUploaded"`
	CreatedAt      time.Time `json:"$createdAt"`
	UpdatedAt      time.Time `json:"$updatedAt"`
}
