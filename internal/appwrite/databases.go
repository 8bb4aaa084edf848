package appwrite

import (
	"context"
	"net/http"
	"net/url"
)

// Databases wraps the document endpoints of the databases service.
type Databases struct {
	c *Client
}

func documentsPath(databaseID, collectionID string) string {
	return pathf("/databases/%s/collections/%s/documents", databaseID, collectionID)
}

func documentPath(databaseID, collectionID, documentID string) string {
	return pathf("/databases/%s/collections/%s/documents/%s", databaseID, collectionID, documentID)
}

// ListDocuments returns the documents matching queries (see package query).
func (d *Databases) ListDocuments(ctx context.Context, databaseID, collectionID string, queries []string) (*DocumentList, error) {
	params := url.Values{}
	for _, q := range queries {
		params.Add("queries[]", q)
	}
	var out DocumentList
	if err := d.c.get(ctx, "databases.listDocuments", documentsPath(databaseID, collectionID), params, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetDocument fetches a single document.
func (d *Databases) GetDocument(ctx context.Context, databaseID, collectionID, documentID string) (*Document, error) {
	var out Document
	if err := d.c.get(ctx, "databases.getDocument", documentPath(databaseID, collectionID, documentID), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateDocument stores data as a new document. Nil permissions inherit the
// collection defaults.
func (d *Databases) CreateDocument(ctx context.Context, databaseID, collectionID, documentID string, data any, permissions []string) (*Document, error) {
	payload := map[string]any{
		"documentId": documentID,
		"data":       data,
	}
	if permissions != nil {
		payload["permissions"] = permissions
	}
	var out Document
	if err := d.c.sendJSON(ctx, "databases.createDocument", http.MethodPost, documentsPath(databaseID, collectionID), payload, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateDocument patches the attributes present in data.
func (d *Databases) UpdateDocument(ctx context.Context, databaseID, collectionID, documentID string, data any) (*Document, error) {
	var out Document
	payload := map[string]any{"data": data}
	if err := d.c.sendJSON(ctx, "databases.updateDocument", http.MethodPatch, documentPath(databaseID, collectionID, documentID), payload, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteDocument removes a document.
func (d *Databases) DeleteDocument(ctx context.Context, databaseID, collectionID, documentID string) error {
	return d.c.sendJSON(ctx, "databases.deleteDocument", http.MethodDelete, documentPath(databaseID, collectionID, documentID), nil, nil)
}
