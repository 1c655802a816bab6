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

// Package ai wraps the Gemini API for document extraction, image analysis
// and material detection. Model responses are untrusted: malformed output
// degrades to zero extracted fields rather than failing the pipeline.
package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"google.golang.org/genai"

	"github.com/brightdoor/listingprep/internal/extract"
)

// Config holds Gemini client settings.
type Config struct {
	APIKey      string
	TextModel   string
	VisionModel string
}

// Client calls the Gemini API. Safe for concurrent use.
type Client struct {
	genai       *genai.Client
	textModel   string
	visionModel string
}

// New creates a Gemini-backed client.
func New(ctx context.Context, cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini api key is required")
	}
	if cfg.TextModel == "" {
		cfg.TextModel = "gemini-2.5-flash"
	}
	if cfg.VisionModel == "" {
		cfg.VisionModel = cfg.TextModel
	}

	gc, err := genai.NewClient(ctx, &genai.ClientConfig{
		Backend: genai.BackendGeminiAPI,
		APIKey:  cfg.APIKey,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	return &Client{genai: gc, textModel: cfg.TextModel, visionModel: cfg.VisionModel}, nil
}

var jsonResponse = &genai.GenerateContentConfig{
	ResponseMIMEType: "application/json",
}

// ExtractFromText extracts listing fields from document text. The returned
// set is empty (never nil) when the model produced nothing usable.
func (c *Client) ExtractFromText(ctx context.Context, text string, prov extract.Provenance) (extract.FieldSet, error) {
	resp, err := c.genai.Models.GenerateContent(ctx, c.textModel,
		genai.Text(textExtractionPrompt+"\n\nDocument Text:\n"+text), jsonResponse)
	if err != nil {
		return nil, fmt.Errorf("text extraction: %w", err)
	}
	return extract.ParseResponse([]byte(resp.Text()), prov), nil
}

// ExtractFromImage extracts listing fields from a rendered document page.
// Used for scanned PDFs and other pages with no usable text layer.
func (c *Client) ExtractFromImage(ctx context.Context, image []byte, mimeType string, prov extract.Provenance) (extract.FieldSet, error) {
	contents := []*genai.Content{
		genai.NewContentFromParts([]*genai.Part{
			genai.NewPartFromText(visionExtractionPrompt),
			genai.NewPartFromBytes(image, mimeType),
		}, genai.RoleUser),
	}
	resp, err := c.genai.Models.GenerateContent(ctx, c.visionModel, contents, jsonResponse)
	if err != nil {
		return nil, fmt.Errorf("vision extraction: %w", err)
	}
	return extract.ParseResponse([]byte(resp.Text()), prov), nil
}

// ImageAnalysis is the room identification and marketing copy for one
// listing photo.
type ImageAnalysis struct {
	RoomLabel   string `json:"room_label"`
	PhotoType   string `json:"photo_type"`
	Description string `json:"description"`
}

// AnalyzeImage identifies the room shown in a listing photo and drafts a
// caption. An unrecognized room label degrades to "other".
func (c *Client) AnalyzeImage(ctx context.Context, image []byte, mimeType string) (ImageAnalysis, error) {
	contents := []*genai.Content{
		genai.NewContentFromParts([]*genai.Part{
			genai.NewPartFromText(imageAnalysisPrompt),
			genai.NewPartFromBytes(image, mimeType),
		}, genai.RoleUser),
	}
	resp, err := c.genai.Models.GenerateContent(ctx, c.visionModel, contents, jsonResponse)
	if err != nil {
		return ImageAnalysis{}, fmt.Errorf("image analysis: %w", err)
	}

	var analysis ImageAnalysis
	if err := json.Unmarshal([]byte(stripCodeFence(resp.Text())), &analysis); err != nil {
		return ImageAnalysis{}, fmt.Errorf("decode image analysis: %w", err)
	}
	if !IsValidRoomLabel(analysis.RoomLabel) {
		slog.Warn("unrecognized room label from vision model", "label", analysis.RoomLabel)
		analysis.RoomLabel = "other"
	}
	return analysis, nil
}

// materialsResponse matches the material extraction output schema.
type materialsResponse struct {
	Flooring             []string `json:"flooring"`
	Roof                 []string `json:"roof"`
	ConstructionMaterial []string `json:"construction_material"`
	HorseAmenities       []string `json:"horse_amenities"`
	IsUrbanCity          bool     `json:"is_urban_city"`
}

// MaterialsFromImage extracts flooring, roof, construction material and
// horse amenities from one listing photo. An urban/city property never
// reports horse amenities, whatever the model said.
func (c *Client) MaterialsFromImage(ctx context.Context, image []byte, mimeType string, prov extract.Provenance) (extract.FieldSet, error) {
	contents := []*genai.Content{
		genai.NewContentFromParts([]*genai.Part{
			genai.NewPartFromText(materialExtractionPrompt),
			genai.NewPartFromBytes(image, mimeType),
		}, genai.RoleUser),
	}
	resp, err := c.genai.Models.GenerateContent(ctx, c.visionModel, contents, jsonResponse)
	if err != nil {
		return nil, fmt.Errorf("material extraction: %w", err)
	}

	var materials materialsResponse
	if err := json.Unmarshal([]byte(stripCodeFence(resp.Text())), &materials); err != nil {
		slog.Warn("malformed material extraction response", "error", err)
		return extract.FieldSet{}, nil
	}
	if materials.IsUrbanCity {
		materials.HorseAmenities = nil
	}

	fields := extract.FieldSet{}
	add := func(path string, values []string) {
		if len(values) == 0 {
			return
		}
		fields[path] = extract.Field{Value: extract.StringList(values), Provenance: prov}
	}
	add("features.flooring", materials.Flooring)
	add("property.roof", materials.Roof)
	add("property.construction_material", materials.ConstructionMaterial)
	add("features.horse_amenities", materials.HorseAmenities)
	return fields, nil
}

func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	}
	return strings.TrimSpace(s)
}
