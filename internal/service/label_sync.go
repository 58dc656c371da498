package service

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strconv"
	"strings"

	"github.com/phrazzld/task-manager-api/internal/domain"
	"github.com/phrazzld/task-manager-api/internal/platform/logger"
	"github.com/phrazzld/task-manager-api/internal/store"
)

// syncTaskLabels makes the labels attached to taskID equal to desired.
// current is what is attached now (nil for a freshly inserted task).
//
// Both stores must be bound to the transaction that wrote the task row; an
// unknown label id fails the call with a validation error on "labels" and
// the caller's transaction rolls back with it.
func syncTaskLabels(
	ctx context.Context,
	tasks store.TaskStore,
	labels store.LabelStore,
	taskID int64,
	desired []int64,
	current []int64,
) error {
	log := logger.FromContext(ctx)
	want := uniqueIDs(desired)

	if len(want) > 0 {
		existing, err := labels.ExistingIDs(ctx, want)
		if err != nil {
			return fmt.Errorf("failed to check labels: %w", err)
		}
		if missing := subtractIDs(want, existing); len(missing) > 0 {
			log.Debug("task references unknown labels",
				slog.Int64("task_id", taskID),
				slog.String("label_ids", joinIDs(missing)))
			return domain.NewValidationError("labels",
				"contains unknown label ids: "+joinIDs(missing), domain.ErrInvalidID)
		}
	}

	if stale := subtractIDs(current, want); len(stale) > 0 {
		if err := tasks.RemoveLabels(ctx, taskID, stale); err != nil {
			return fmt.Errorf("failed to unrelate labels: %w", err)
		}
	}
	if added := subtractIDs(want, current); len(added) > 0 {
		if err := tasks.AddLabels(ctx, taskID, added); err != nil {
			return fmt.Errorf("failed to relate labels: %w", err)
		}
	}

	log.Debug("synchronized task labels",
		slog.Int64("task_id", taskID),
		slog.Int("label_count", len(want)))
	return nil
}

// uniqueIDs drops duplicates and non-positive ids, keeping first occurrences in order.
func uniqueIDs(ids []int64) []int64 {
	out := make([]int64, 0, len(ids))
	seen := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		if id <= 0 {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// subtractIDs returns the ids of a that are not in b.
func subtractIDs(a, b []int64) []int64 {
	var out []int64
	for _, id := range a {
		if !slices.Contains(b, id) {
			out = append(out, id)
		}
	}
	return out
}

func joinIDs(ids []int64) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.FormatInt(id, 10)
	}
	return strings.Join(parts, ", ")
}
