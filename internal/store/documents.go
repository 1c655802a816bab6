// Copyright (c) 2026 John Earle
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// Document is one uploaded listing document (agreement, survey, tax
// statement and so on).
type Document struct {
	ID          uuid.UUID
	ListingID   uuid.UUID
	Filename    string
	StoragePath string
	UploadedAt  time.Time
}

// AddDocument records an uploaded document and returns its ID.
func (s *Store) AddDocument(ctx context.Context, listingID uuid.UUID, filename, storagePath string) (uuid.UUID, error) {
	var id uuid.UUID
	err := s.pool.QueryRow(ctx, `
		INSERT INTO documents (listing_id, filename, storage_path)
		VALUES ($1, $2, $3)
		RETURNING id
	`, listingID, filename, storagePath).Scan(&id)
	if err != nil {
		return uuid.Nil, fmt.Errorf("insert document: %w", err)
	}
	return id, nil
}

// GetDocument retrieves a single document.
func (s *Store) GetDocument(ctx context.Context, documentID uuid.UUID) (*Document, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT id, listing_id, filename, storage_path, uploaded_at
		FROM documents
		WHERE id = $1
	`, documentID)
	return scanDocument(row)
}

// ListDocuments returns all documents for a listing in upload order.
func (s *Store) ListDocuments(ctx context.Context, listingID uuid.UUID) ([]Document, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, listing_id, filename, storage_path, uploaded_at
		FROM documents
		WHERE listing_id = $1
		ORDER BY uploaded_at
	`, listingID)
	if err != nil {
		return nil, fmt.Errorf("select documents: %w", err)
	}
	defer rows.Close()

	var docs []Document
	for rows.Next() {
		var d Document
		if err := rows.Scan(&d.ID, &d.ListingID, &d.Filename, &d.StoragePath, &d.UploadedAt); err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		docs = append(docs, d)
	}
	return docs, rows.Err()
}

// DeleteDocument removes a document row and returns its storage path so
// the caller can delete the stored object.
func (s *Store) DeleteDocument(ctx context.Context, documentID uuid.UUID) (string, error) {
	var storagePath string
	err := s.pool.QueryRow(ctx, `
		DELETE FROM documents
		WHERE id = $1
		RETURNING storage_path
	`, documentID).Scan(&storagePath)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("delete document: %w", err)
	}
	return storagePath, nil
}

func scanDocument(row pgx.Row) (*Document, error) {
	var d Document
	err := row.Scan(&d.ID, &d.ListingID, &d.Filename, &d.StoragePath, &d.UploadedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &d, nil
}
