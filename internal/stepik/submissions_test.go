package stepik

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stepik-tools/sync-service/internal/models"
)

func TestSubmissionResolver_SuccessfulUsers(t *testing.T) {
	platform := newFakePlatform()
	defer platform.Close()

	// Three pages: statuses [correct, wrong], [correct], [correct] owned by
	// users [7, 9], [7], [11]. Wrong submissions never reach the attempt
	// lookup, and user 7 appearing on two pages is counted once.
	platform.submissionsPages[502] = map[int]submissionsResponse{
		1: {
			Meta: pageMeta{Page: 1, HasNext: true},
			Submissions: []models.Submission{
				{ID: 1, Status: models.SubmissionCorrect, Attempt: 71},
				{ID: 2, Status: models.SubmissionWrong, Attempt: 91},
				{ID: 3, Status: models.SubmissionCorrect, Attempt: 92},
			},
		},
		2: {
			Meta: pageMeta{Page: 2, HasNext: true},
			Submissions: []models.Submission{
				{ID: 4, Status: models.SubmissionCorrect, Attempt: 72},
			},
		},
		3: {
			Meta: pageMeta{Page: 3, HasNext: false},
			Submissions: []models.Submission{
				{ID: 5, Status: models.SubmissionCorrect, Attempt: 111},
			},
		},
	}
	platform.attemptUsers[71] = 7
	platform.attemptUsers[72] = 7
	platform.attemptUsers[92] = 9
	platform.attemptUsers[111] = 11

	resolver := NewSubmissionResolver(platform.client(), testLogger())
	users, err := resolver.SuccessfulUsers(context.Background(), 502)
	require.NoError(t, err)

	assert.Len(t, users, 3)
	assert.True(t, users.Contains(7))
	assert.True(t, users.Contains(9))
	assert.True(t, users.Contains(11))

	// One batch attempts request per page, and the wrong submission's
	// attempt 91 never requested
	require.Len(t, platform.attemptsRequests, 3)
	assert.ElementsMatch(t, []int64{71, 92}, platform.attemptsRequests[0])
	assert.Equal(t, []int64{72}, platform.attemptsRequests[1])
	assert.Equal(t, []int64{111}, platform.attemptsRequests[2])
}

func TestSubmissionResolver_NoSubmissions(t *testing.T) {
	platform := newFakePlatform()
	defer platform.Close()

	resolver := NewSubmissionResolver(platform.client(), testLogger())
	users, err := resolver.SuccessfulUsers(context.Background(), 999)

	require.NoError(t, err, "a step nobody attempted is not an error")
	assert.Empty(t, users)
}

func TestSubmissionResolver_SkipsUnresolvableAttempts(t *testing.T) {
	platform := newFakePlatform()
	defer platform.Close()

	platform.submissionsPages[502] = map[int]submissionsResponse{
		1: {
			Meta: pageMeta{Page: 1, HasNext: false},
			Submissions: []models.Submission{
				{ID: 1, Status: models.SubmissionCorrect, Attempt: 71},
				{ID: 2, Status: models.SubmissionCorrect, Attempt: 88}, // no owner known
				{ID: 3, Status: models.SubmissionCorrect},              // no attempt reference
			},
		},
	}
	platform.attemptUsers[71] = 7

	resolver := NewSubmissionResolver(platform.client(), testLogger())
	users, err := resolver.SuccessfulUsers(context.Background(), 502)

	require.NoError(t, err, "incomplete submission data is skipped, not fatal")
	assert.Len(t, users, 1)
	assert.True(t, users.Contains(7))
}

func TestSubmissionResolver_DuplicateAttemptsDeduplicated(t *testing.T) {
	platform := newFakePlatform()
	defer platform.Close()

	platform.submissionsPages[502] = map[int]submissionsResponse{
		1: {
			Meta: pageMeta{Page: 1, HasNext: false},
			Submissions: []models.Submission{
				{ID: 1, Status: models.SubmissionCorrect, Attempt: 71},
				{ID: 2, Status: models.SubmissionCorrect, Attempt: 71},
			},
		},
	}
	platform.attemptUsers[71] = 7

	resolver := NewSubmissionResolver(platform.client(), testLogger())
	users, err := resolver.SuccessfulUsers(context.Background(), 502)
	require.NoError(t, err)

	assert.Len(t, users, 1)
	require.Len(t, platform.attemptsRequests, 1)
	assert.Equal(t, []int64{71}, platform.attemptsRequests[0], "same attempt requested once per page")
}
