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

// Package queue moves extraction and enrichment jobs through a Redis list
// so HTTP handlers can return immediately and workers process listings in
// the background.
package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Task kinds the workers understand.
const (
	TaskExtract = "listing.extract"
	TaskEnrich  = "listing.enrich"
)

// Task is one queued job.
type Task struct {
	ID         string    `json:"id"`
	Kind       string    `json:"kind"`
	ListingID  uuid.UUID `json:"listing_id"`
	EnqueuedAt time.Time `json:"enqueued_at"`
}

// Publisher pushes tasks onto the Redis work queue.
type Publisher struct {
	rdb       *redis.Client
	queueName string
}

// NewPublisher creates a publisher targeting the named queue.
func NewPublisher(rdb *redis.Client, queueName string) *Publisher {
	return &Publisher{
		rdb:       rdb,
		queueName: queueName,
	}
}

// Publish enqueues a job for a listing and returns the task id.
func (p *Publisher) Publish(ctx context.Context, kind string, listingID uuid.UUID) (string, error) {
	task := Task{
		ID:         uuid.New().String(),
		Kind:       kind,
		ListingID:  listingID,
		EnqueuedAt: time.Now().UTC(),
	}

	payload, err := json.Marshal(task)
	if err != nil {
		return "", fmt.Errorf("marshal task: %w", err)
	}

	if err := p.rdb.LPush(ctx, p.queueName, payload).Err(); err != nil {
		return "", fmt.Errorf("redis LPUSH: %w", err)
	}

	slog.Info("published task",
		"task_id", task.ID,
		"kind", kind,
		"listing_id", listingID,
		"queue", p.queueName,
	)
	return task.ID, nil
}

// Ping checks the Redis connection.
func (p *Publisher) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return p.rdb.Ping(ctx).Err()
}
