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

package queue

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// popTimeout bounds each BRPOP so the consumer notices context
// cancellation promptly.
const popTimeout = 5 * time.Second

// Handler processes one dequeued task. An error marks the task failed;
// the consumer logs it and moves on.
type Handler func(ctx context.Context, task Task) error

// Consumer drains the work queue and dispatches tasks to a handler.
type Consumer struct {
	rdb       *redis.Client
	queueName string
	handler   Handler
}

// NewConsumer creates a consumer for the named queue.
func NewConsumer(rdb *redis.Client, queueName string, handler Handler) *Consumer {
	return &Consumer{
		rdb:       rdb,
		queueName: queueName,
		handler:   handler,
	}
}

// Run blocks, popping and handling tasks until the context is cancelled.
// A malformed payload or failed handler never stops the loop.
func (c *Consumer) Run(ctx context.Context) error {
	slog.Info("queue consumer started", "queue", c.queueName)

	for {
		if err := ctx.Err(); err != nil {
			slog.Info("queue consumer stopping", "queue", c.queueName)
			return err
		}

		values, err := c.rdb.BRPop(ctx, popTimeout, c.queueName).Result()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				continue // timeout, queue empty
			}
			if ctx.Err() != nil {
				slog.Info("queue consumer stopping", "queue", c.queueName)
				return ctx.Err()
			}
			slog.Error("queue pop failed", "queue", c.queueName, "error", err)
			time.Sleep(time.Second)
			continue
		}

		// BRPOP returns [key, value].
		if len(values) != 2 {
			continue
		}

		var task Task
		if err := json.Unmarshal([]byte(values[1]), &task); err != nil {
			slog.Error("dropping malformed task payload", "queue", c.queueName, "error", err)
			continue
		}

		start := time.Now()
		if err := c.handler(ctx, task); err != nil {
			slog.Error("task failed",
				"task_id", task.ID,
				"kind", task.Kind,
				"listing_id", task.ListingID,
				"error", err,
			)
			continue
		}
		slog.Info("task complete",
			"task_id", task.ID,
			"kind", task.Kind,
			"listing_id", task.ListingID,
			"duration", time.Since(start).Round(time.Millisecond),
		)
	}
}
