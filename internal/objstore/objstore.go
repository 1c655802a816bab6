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

// Package objstore stores listing documents and photos in a MinIO bucket.
// Object names are "<listing_id>/<kind>/<filename>" so one listing's blobs
// share a prefix.
package objstore

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// presignExpiry is how long download links stay valid.
const presignExpiry = 24 * time.Hour

// Config holds MinIO connection settings.
type Config struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// Client wraps a MinIO bucket.
type Client struct {
	client *minio.Client
	bucket string
}

// New connects to MinIO and ensures the bucket exists.
func New(ctx context.Context, cfg Config) (*Client, error) {
	mc, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}

	c := &Client{client: mc, bucket: cfg.Bucket}
	if err := c.ensureBucket(ctx); err != nil {
		return nil, err
	}

	slog.Info("object store initialised", "endpoint", cfg.Endpoint, "bucket", cfg.Bucket)
	return c, nil
}

func (c *Client) ensureBucket(ctx context.Context) error {
	exists, err := c.client.BucketExists(ctx, c.bucket)
	if err != nil {
		return fmt.Errorf("check bucket: %w", err)
	}
	if !exists {
		if err := c.client.MakeBucket(ctx, c.bucket, minio.MakeBucketOptions{}); err != nil {
			return fmt.Errorf("create bucket: %w", err)
		}
	}
	return nil
}

// DocumentPath builds the object name for an uploaded document.
func DocumentPath(listingID uuid.UUID, filename string) string {
	return fmt.Sprintf("%s/documents/%s", listingID, filename)
}

// ImagePath builds the object name for an uploaded photo.
func ImagePath(listingID uuid.UUID, filename string) string {
	return fmt.Sprintf("%s/images/%s", listingID, filename)
}

// Put stores a blob under the given object name.
func (c *Client) Put(ctx context.Context, objectName string, data []byte, contentType string) error {
	_, err := c.client.PutObject(ctx, c.bucket, objectName,
		bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return fmt.Errorf("put object %s: %w", objectName, err)
	}
	return nil
}

// Fetch returns a blob's bytes and content type.
func (c *Client) Fetch(ctx context.Context, objectName string) ([]byte, string, error) {
	obj, err := c.client.GetObject(ctx, c.bucket, objectName, minio.GetObjectOptions{})
	if err != nil {
		return nil, "", fmt.Errorf("get object %s: %w", objectName, err)
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		return nil, "", fmt.Errorf("read object %s: %w", objectName, err)
	}
	stat, err := obj.Stat()
	if err != nil {
		return nil, "", fmt.Errorf("stat object %s: %w", objectName, err)
	}
	return data, stat.ContentType, nil
}

// Delete removes a blob. Deleting a missing object is not an error.
func (c *Client) Delete(ctx context.Context, objectName string) error {
	if err := c.client.RemoveObject(ctx, c.bucket, objectName, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("delete object %s: %w", objectName, err)
	}
	return nil
}

// Rename copies a blob to a new object name and removes the old one. Used
// when a photo's final label changes its stored filename.
func (c *Client) Rename(ctx context.Context, oldName, newName string) error {
	if oldName == newName {
		return nil
	}
	_, err := c.client.CopyObject(ctx,
		minio.CopyDestOptions{Bucket: c.bucket, Object: newName},
		minio.CopySrcOptions{Bucket: c.bucket, Object: oldName})
	if err != nil {
		return fmt.Errorf("copy object %s -> %s: %w", oldName, newName, err)
	}
	if err := c.client.RemoveObject(ctx, c.bucket, oldName, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("remove old object %s: %w", oldName, err)
	}
	return nil
}

// PresignedURL returns a time-limited download link for a blob.
func (c *Client) PresignedURL(ctx context.Context, objectName string) (string, error) {
	u, err := c.client.PresignedGetObject(ctx, c.bucket, objectName, presignExpiry, nil)
	if err != nil {
		return "", fmt.Errorf("presign object %s: %w", objectName, err)
	}
	return u.String(), nil
}
