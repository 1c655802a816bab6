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
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/brightdoor/listingprep/internal/extract"
)

// Fact is one extracted field value kept for audit: what was extracted,
// from where, at what confidence tier.
type Fact struct {
	ID            int64
	ListingID     uuid.UUID
	CanonicalPath string
	Value         extract.Value
	SourceType    string
	SourceRef     string
	Status        string
	CreatedAt     time.Time
}

// SaveFacts records every extracted field as a proposed fact. Duplicate
// (path, source) pairs from re-extraction are ignored so the audit trail
// stays append-only.
func (s *Store) SaveFacts(ctx context.Context, listingID uuid.UUID, fields extract.FieldSet) error {
	for path, field := range fields {
		value, err := json.Marshal(field.Value)
		if err != nil {
			return fmt.Errorf("marshal fact value for %s: %w", path, err)
		}
		if _, err := s.pool.Exec(ctx, `
			INSERT INTO extracted_field_facts
				(listing_id, canonical_path, extracted_value, source_type, source_ref, status)
			VALUES ($1, $2, $3, $4, $5, 'proposed')
			ON CONFLICT DO NOTHING
		`, listingID, path, value, string(field.Provenance.SourceType), field.Provenance.SourceRef()); err != nil {
			return fmt.Errorf("insert fact for %s: %w", path, err)
		}
	}
	return nil
}

// ListFacts returns the audit trail for a listing, newest first.
func (s *Store) ListFacts(ctx context.Context, listingID uuid.UUID) ([]Fact, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, listing_id, canonical_path, extracted_value,
		       source_type, source_ref, status, created_at
		FROM extracted_field_facts
		WHERE listing_id = $1
		ORDER BY created_at DESC, id DESC
	`, listingID)
	if err != nil {
		return nil, fmt.Errorf("select facts: %w", err)
	}
	defer rows.Close()

	var facts []Fact
	for rows.Next() {
		var (
			f     Fact
			value []byte
		)
		if err := rows.Scan(&f.ID, &f.ListingID, &f.CanonicalPath, &value,
			&f.SourceType, &f.SourceRef, &f.Status, &f.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan fact: %w", err)
		}
		if err := json.Unmarshal(value, &f.Value); err != nil {
			return nil, fmt.Errorf("unmarshal fact value: %w", err)
		}
		facts = append(facts, f)
	}
	return facts, rows.Err()
}
