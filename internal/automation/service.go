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

package automation

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/brightdoor/listingprep/internal/canonical"
	"github.com/brightdoor/listingprep/internal/mls"
	"github.com/brightdoor/listingprep/internal/store"
)

const saveTimeout = 30 * time.Second

// Statuses an autofill run can end in.
const (
	StatusSaved    = "saved"
	StatusFailed   = "failed"
	StatusNotReady = "not_ready"
)

// Storage is the slice of the persistence layer the autofill run needs.
type Storage interface {
	IsLocked(ctx context.Context, listingID uuid.UUID) (bool, error)
	GetCanonical(ctx context.Context, listingID uuid.UUID) (*canonical.Listing, error)
	ListImages(ctx context.Context, listingID uuid.UUID) ([]store.Image, error)
}

// Blobs is the slice of object storage the photo upload needs.
type Blobs interface {
	Fetch(ctx context.Context, objectName string) ([]byte, string, error)
}

// Service fills an MLS form from a validated listing's prepared fields.
type Service struct {
	store         Storage
	blobs         Blobs
	manager       *Manager
	screenshotDir string
}

func NewService(store Storage, blobs Blobs, manager *Manager, screenshotDir string) *Service {
	return &Service{store: store, blobs: blobs, manager: manager, screenshotDir: screenshotDir}
}

// Result reports one autofill run.
type Result struct {
	Status          string    `json:"status"`
	FieldsFilled    int       `json:"fields_filled"`
	FieldsSkipped   int       `json:"fields_skipped"`
	PhotosUploaded  int       `json:"photos_uploaded"`
	Errors          []string  `json:"errors"`
	Warnings        []string  `json:"warnings"`
	ScreenshotPaths []string  `json:"screenshot_paths"`
	CompletedAt     time.Time `json:"completed_at"`
}

// Run prepares MLS fields for the listing and drives a browser session that
// fills and saves the form as a draft. The listing must be validated
// (locked) first, and the prepared fields must pass MLS validation; a
// not-ready listing returns StatusNotReady with the blocking issues rather
// than an error. The operator logs in by hand in the opened browser before
// the fill reaches the form. After the fields are filled, the listing's
// sequenced photos are attached to the form's file input in display order.
func (s *Service) Run(ctx context.Context, listingID uuid.UUID, url string, headed bool) (Result, error) {
	result := Result{Status: StatusFailed}

	locked, err := s.store.IsLocked(ctx, listingID)
	if err != nil {
		return result, fmt.Errorf("checking listing lock: %w", err)
	}
	if !locked {
		return result, fmt.Errorf("listing %s must be validated before autofill", listingID)
	}

	listing, err := s.store.GetCanonical(ctx, listingID)
	if err != nil {
		return result, fmt.Errorf("loading canonical listing: %w", err)
	}

	prepared := mls.PrepareFields(listing)
	if !prepared.ReadyForAutofill {
		result.Status = StatusNotReady
		result.Errors = prepared.Validation.BlockingIssues
		result.CompletedAt = time.Now().UTC()
		return result, nil
	}

	sess, err := s.manager.Open(ctx, listingID, url, headed)
	if err != nil {
		return result, err
	}
	defer s.manager.Close(listingID)

	s.fillAll(sess, prepared, &result)
	s.uploadPhotos(ctx, sess, listingID, &result)

	save := sess.ClickSave(saveTimeout)
	if save.Success {
		result.Status = StatusSaved
	} else {
		result.Errors = append(result.Errors, save.Message)
		result.Errors = append(result.Errors, save.Errors...)
	}

	if path, err := sess.Screenshot(s.screenshotDir, "final"); err != nil {
		slog.Warn("screenshot failed", "listing_id", listingID, "error", err)
	} else {
		result.ScreenshotPaths = append(result.ScreenshotPaths, path)
	}

	result.CompletedAt = time.Now().UTC()
	slog.Info("autofill run finished",
		"listing_id", listingID,
		"status", result.Status,
		"filled", result.FieldsFilled,
		"skipped", result.FieldsSkipped,
		"photos", result.PhotosUploaded,
		"errors", len(result.Errors))
	return result, nil
}

// uploadPhotos attaches the listing's sequenced photos to the form's file
// input, in display order. Photo problems never fail the run; the draft
// save still captures the filled fields, so everything here lands in
// Warnings.
func (s *Service) uploadPhotos(ctx context.Context, sess *Session, listingID uuid.UUID, result *Result) {
	images, err := s.store.ListImages(ctx, listingID)
	if err != nil {
		result.Warnings = append(result.Warnings, fmt.Sprintf("photos: listing images: %v", err))
		return
	}
	if len(images) == 0 {
		return
	}

	input, found, err := sess.FindFileInput()
	if err != nil {
		result.Warnings = append(result.Warnings, fmt.Sprintf("photos: %v", err))
		return
	}
	if !found {
		result.Warnings = append(result.Warnings, "photos: no file input on form")
		return
	}

	dir, paths, warnings, err := stagePhotos(ctx, s.blobs, photoOrder(images))
	if err != nil {
		result.Warnings = append(result.Warnings, fmt.Sprintf("photos: %v", err))
		return
	}
	defer os.RemoveAll(dir)
	result.Warnings = append(result.Warnings, warnings...)
	if len(paths) == 0 {
		return
	}

	if _, err := sess.UploadFile(input, paths...); err != nil {
		result.Warnings = append(result.Warnings, fmt.Sprintf("photos: %v", err))
		return
	}
	result.PhotosUploaded = len(paths)
}

// fillAll walks the mapping table in form order and fills every prepared
// field it can locate. Per-field failures are recorded and skipped; they
// never abort the run.
func (s *Service) fillAll(sess *Session, prepared mls.PrepareResult, result *Result) {
	for _, section := range mls.Sections {
		for _, m := range section.Fields {
			value, ok := prepared.Fields[m.MLSField]
			if !ok || value == nil {
				continue
			}

			field, found, err := sess.FindFieldByLabel(m.MLSField)
			if err != nil {
				result.FieldsSkipped++
				result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", m.MLSField, err))
				continue
			}
			if !found {
				result.FieldsSkipped++
				result.Warnings = append(result.Warnings, fmt.Sprintf("%s: field not found on form", m.MLSField))
				continue
			}

			filled, err := fillField(sess, field, m, value)
			switch {
			case err != nil:
				result.FieldsSkipped++
				result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", m.MLSField, err))
			case filled:
				result.FieldsFilled++
			default:
				result.FieldsSkipped++
				result.Warnings = append(result.Warnings, fmt.Sprintf("%s: value %v not accepted", m.MLSField, value))
			}
		}
	}
}

// fillField dispatches on what the form control actually is, falling back to
// the mapping's declared type when the control is a plain input.
func fillField(sess *Session, field Field, m mls.FieldMapping, value any) (bool, error) {
	switch {
	case field.Tag == "select":
		return fillSelect(sess, field, value)
	case field.InputType == "checkbox":
		return sess.FillCheckbox(field, asBool(value))
	case field.InputType == "radio":
		return sess.FillRadio(field, asString(value))
	case field.InputType == "date":
		return sess.FillDate(field, asString(value))
	}

	switch m.Type {
	case mls.TypeNumber:
		n, ok := asFloat(value)
		if !ok {
			return false, fmt.Errorf("value %v is not numeric", value)
		}
		return sess.FillNumber(field, n)
	case mls.TypeMultiEnum:
		return sess.FillText(field, strings.Join(asList(value), ", "))
	default:
		if m.Transform == "format_date" {
			return sess.FillDate(field, asString(value))
		}
		return sess.FillText(field, asString(value))
	}
}

// fillSelect handles both single selects and multi-selects. A multi-enum
// value fills one option per element; partial matches count as filled but
// each miss is reported by the caller via the ok return only when nothing
// matched.
func fillSelect(sess *Session, field Field, value any) (bool, error) {
	values := asList(value)
	if len(values) == 0 {
		return false, nil
	}

	matched := 0
	for _, v := range values {
		ok, err := sess.FillDropdown(field, v)
		if err != nil {
			return matched > 0, err
		}
		if ok {
			matched++
		}
	}
	return matched > 0, nil
}

func asString(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		return strconv.Itoa(v)
	case bool:
		if v {
			return "Yes"
		}
		return "No"
	default:
		return fmt.Sprintf("%v", v)
	}
}

func asFloat(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	case string:
		n, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		return n, err == nil
	default:
		return 0, false
	}
}

func asBool(value any) bool {
	switch v := value.(type) {
	case bool:
		return v
	case string:
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "true", "yes", "y", "1":
			return true
		}
		return false
	case float64:
		return v != 0
	default:
		return false
	}
}

// asList flattens a value into strings: scalars become a single-element
// list.
func asList(value any) []string {
	switch v := value.(type) {
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			out = append(out, asString(item))
		}
		return out
	case nil:
		return nil
	default:
		return []string{asString(v)}
	}
}
