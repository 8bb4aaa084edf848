package entities

import "time"

// OwnerRef points at the users-collection document that owns a file. The
// backend may return it expanded, in which case FullName and Email are set.
type OwnerRef struct {
	ID       string `json:"$id"`
	FullName string `json:"fullName,omitempty"`
	Email    string `json:"email,omitempty"`
}

// File is a files-collection document describing one uploaded object.
type File struct {
	ID           string    `json:"$id"`
	Name         string    `json:"name"`
	Type         string    `json:"type"`
	Extension    string    `json:"extension"`
	Size         int64     `json:"size"`
	URL          string    `json:"url"`
	Owner        OwnerRef  `json:"owner"`
	AccountID    string    `json:"accountId"`
	Users        []string  `json:"users"`
	BucketFileID string    `json:"bucketFileId"`
	CreatedAt    time.Time `json:"$createdAt"`
	UpdatedAt    time.Time `json:"$updatedAt"`
}

// SharedWith reports whether email is in the file's shared-user list.
func (f *File) SharedWith(email string) bool {
	for _, u := range f.Users {
		if u == email {
			return true
		}
	}
	return false
}

// FileFilter selects the files visible to one user: those they own plus
// those shared with Email. OwnedOnly drops the shared half.
type FileFilter struct {
	OwnerID    string
	Email      string
	OwnedOnly  bool
	Types      []string
	SearchText string
	Sort       string
	Limit      int
}

// FileList is the fully materialized result of a listing.
type FileList struct {
	Total     int    `json:"total"`
	Documents []File `json:"documents"`
}

// StoredObject is a bucket object as returned by the storage service.
type StoredObject struct {
	ID       string
	Name     string
	Size     int64
	MimeType string
}

// CategoryUsage aggregates the files of one category.
type CategoryUsage struct {
	Size       int64     `json:"size"`
	LatestDate time.Time `json:"latestDate"`
}

// SpaceSummary is the storage usage of one owner.
type SpaceSummary struct {
	Categories map[string]CategoryUsage `json:"categories"`
	Used       int64                    `json:"used"`
	All        int64                    `json:"all"`
}
