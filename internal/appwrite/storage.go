package appwrite

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
)

// ChunkSize is the largest body the backend accepts per upload request;
// bigger files are sent as consecutive Content-Range chunks.
const ChunkSize = 5 * 1024 * 1024

// InputFile is an upload source of known size.
type InputFile struct {
	Name   string
	Size   int64
	Reader io.Reader
}

// Storage wraps the bucket file endpoints.
type Storage struct {
	c *Client
}

func filesPath(bucketID string) string {
	return pathf("/storage/buckets/%s/files", bucketID)
}

func filePath(bucketID, fileID string) string {
	return pathf("/storage/buckets/%s/files/%s", bucketID, fileID)
}

// CreateFile uploads in to the bucket under fileID.
func (s *Storage) CreateFile(ctx context.Context, bucketID, fileID string, in InputFile) (*File, error) {
	if in.Reader == nil {
		return nil, errors.New("appwrite: input file has no reader")
	}
	if in.Size <= ChunkSize {
		chunk, err := io.ReadAll(in.Reader)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", in.Name, err)
		}
		return s.uploadChunk(ctx, bucketID, fileID, in.Name, chunk, nil)
	}

	var (
		out      *File
		uploadID = fileID
		buf      = make([]byte, ChunkSize)
	)
	for offset := int64(0); offset < in.Size; {
		n := int64(ChunkSize)
		if rest := in.Size - offset; rest < n {
			n = rest
		}
		if _, err := io.ReadFull(in.Reader, buf[:n]); err != nil {
			return nil, fmt.Errorf("read %s at %d: %w", in.Name, offset, err)
		}
		headers := http.Header{}
		headers.Set("Content-Range", fmt.Sprintf("bytes %d-%d/%d", offset, offset+n-1, in.Size))
		if offset > 0 {
			headers.Set("X-Appwrite-ID", uploadID)
		}
		f, err := s.uploadChunk(ctx, bucketID, uploadID, in.Name, buf[:n], headers)
		if err != nil {
			return nil, err
		}
		uploadID = f.ID
		out = f
		offset += n
	}
	return out, nil
}

func (s *Storage) uploadChunk(ctx context.Context, bucketID, fileID, name string, chunk []byte, headers http.Header) (*File, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	if err := mw.WriteField("fileId", fileID); err != nil {
		return nil, err
	}
	part, err := mw.CreateFormFile("file", name)
	if err != nil {
		return nil, err
	}
	if _, err := part.Write(chunk); err != nil {
		return nil, err
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.c.url(filesPath(bucketID), nil), &body)
	if err != nil {
		return nil, err
	}
	for k, v := range headers {
		req.Header[k] = v
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	var out File
	if err := s.c.do("storage.createFile", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteFile removes a bucket object.
func (s *Storage) DeleteFile(ctx context.Context, bucketID, fileID string) error {
	return s.c.sendJSON(ctx, "storage.deleteFile", http.MethodDelete, filePath(bucketID, fileID), nil, nil)
}

// ViewURL is the public preview URL of a bucket object.
func (s *Storage) ViewURL(bucketID, fileID string) string {
	return s.c.url(filePath(bucketID, fileID)+"/view", url.Values{"project": {s.c.project}})
}

// DownloadURL is the attachment URL of a bucket object.
func (s *Storage) DownloadURL(bucketID, fileID string) string {
	return s.c.url(filePath(bucketID, fileID)+"/download", url.Values{"project": {s.c.project}})
}
