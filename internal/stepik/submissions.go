package stepik

import (
	"context"
	"fmt"

	"github.com/stepik-tools/sync-service/internal/models"
	"github.com/stepik-tools/sync-service/internal/utils"
)

// SubmissionResolver computes the set of users that solved a given step.
type SubmissionResolver struct {
	client *Client
	logger utils.Logger
}

func NewSubmissionResolver(client *Client, logger utils.Logger) *SubmissionResolver {
	return &SubmissionResolver{
		client: client,
		logger: logger,
	}
}

// SuccessfulUsers pages through the step's submissions, keeps the correct
// ones, batch-resolves their attempts to owning users (one ids[] request per
// page) and returns the deduplicated user set. A step without submissions
// yields an empty set. Attempts the platform fails to link to a user are
// logged and skipped; any HTTP failure aborts with no partial result.
func (r *SubmissionResolver) SuccessfulUsers(ctx context.Context, stepID int64) (models.UserSet, error) {
	users := make(models.UserSet)

	for page := 1; ; page++ {
		resp, err := r.client.Submissions(ctx, stepID, page)
		if err != nil {
			return nil, fmt.Errorf("submissions for step %d page %d: %w", stepID, page, err)
		}

		// Distinct attempt ids of the page's correct submissions, in first
		// occurrence order so the batch request stays deterministic.
		seen := make(map[int64]struct{})
		var attemptIDs []int64
		for _, sub := range resp.Submissions {
			if !sub.IsCorrect() {
				continue
			}
			if sub.Attempt == 0 {
				r.logger.Warn("submission without attempt reference, skipping",
					"step_id", stepID, "submission_id", sub.ID)
				continue
			}
			if _, dup := seen[sub.Attempt]; dup {
				continue
			}
			seen[sub.Attempt] = struct{}{}
			attemptIDs = append(attemptIDs, sub.Attempt)
		}

		if len(attemptIDs) > 0 {
			attempts, err := r.client.Attempts(ctx, attemptIDs)
			if err != nil {
				return nil, fmt.Errorf("resolve attempts for step %d: %w", stepID, err)
			}

			resolved := make(map[int64]struct{}, len(attempts))
			for _, a := range attempts {
				resolved[a.ID] = struct{}{}
				if a.User == 0 {
					r.logger.Warn("attempt without user, skipping",
						"step_id", stepID, "attempt_id", a.ID)
					continue
				}
				users.Add(a.User)
			}
			for _, id := range attemptIDs {
				if _, ok := resolved[id]; !ok {
					r.logger.Warn("attempt not returned by batch lookup, skipping",
						"step_id", stepID, "attempt_id", id)
				}
			}
		}

		if !resp.Meta.HasNext {
			break
		}
	}

	r.logger.Debug("step submissions resolved", "step_id", stepID, "users", len(users))

	return users, nil
}
