package stepik

import "github.com/stepik-tools/sync-service/internal/models"

// ===== WIRE TYPES =====
//
// Response shapes of the platform API. Every collection endpoint wraps its
// items alongside a meta block carrying the pagination flags.

type pageMeta struct {
	Page    int  `json:"page"`
	HasNext bool `json:"has_next"`
}

// unit binds a lesson to a section with its position inside the section.
type unit struct {
	ID       int64 `json:"id"`
	Section  int64 `json:"section"`
	Lesson   int64 `json:"lesson"`
	Position int   `json:"position"`
}

type unitsResponse struct {
	Meta  pageMeta `json:"meta"`
	Units []unit   `json:"units"`
}

type step struct {
	ID       int64 `json:"id"`
	Lesson   int64 `json:"lesson"`
	Position int   `json:"position"`
}

type stepsResponse struct {
	Steps []step `json:"steps"`
}

type submissionsResponse struct {
	Meta        pageMeta            `json:"meta"`
	Submissions []models.Submission `json:"submissions"`
}

type attemptsResponse struct {
	Attempts []models.Attempt `json:"attempts"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}
