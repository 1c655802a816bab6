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
	"os"
	"path/filepath"
	"sort"

	"github.com/brightdoor/listingprep/internal/store"
)

// MLS portals reject bulk uploads past this count.
const maxUploadPhotos = 50

// photoOrder returns the listing's images in the order the form should
// receive them: display order first, upload time as tiebreak, capped at
// maxUploadPhotos.
func photoOrder(images []store.Image) []store.Image {
	ordered := make([]store.Image, len(images))
	copy(ordered, images)
	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].DisplayOrder != ordered[j].DisplayOrder {
			return ordered[i].DisplayOrder < ordered[j].DisplayOrder
		}
		return ordered[i].UploadedAt.Before(ordered[j].UploadedAt)
	})
	if len(ordered) > maxUploadPhotos {
		ordered = ordered[:maxUploadPhotos]
	}
	return ordered
}

// stagePhotos fetches each image object into a temp directory, prefixing
// filenames with a zero-padded index so lexical order matches upload order.
// Per-image fetch failures are reported as warnings and skipped; the caller
// removes the directory when the run ends.
func stagePhotos(ctx context.Context, blobs Blobs, images []store.Image) (dir string, paths []string, warnings []string, err error) {
	dir, err = os.MkdirTemp("", "autofill-photos-")
	if err != nil {
		return "", nil, nil, fmt.Errorf("staging photos: %w", err)
	}

	for i, img := range images {
		data, _, err := blobs.Fetch(ctx, img.StoragePath)
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("photo %s: %v", img.StoragePath, err))
			continue
		}
		name := fmt.Sprintf("%03d_%s", i+1, filepath.Base(img.StoragePath))
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, data, 0o644); err != nil {
			warnings = append(warnings, fmt.Sprintf("photo %s: %v", img.StoragePath, err))
			continue
		}
		paths = append(paths, path)
	}
	return dir, paths, warnings, nil
}
