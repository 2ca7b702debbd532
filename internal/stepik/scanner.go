package stepik

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/stepik-tools/sync-service/internal/models"
	"github.com/stepik-tools/sync-service/internal/utils"
)

// Scanner discovers a course's three-level structure by paging the unit
// listing and resolving every referenced lesson to its ordered step ids.
type Scanner struct {
	client *Client
	logger utils.Logger
}

func NewScanner(client *Client, logger utils.Logger) *Scanner {
	return &Scanner{
		client: client,
		logger: logger,
	}
}

// ScanCourse builds the structure snapshot for one run.
//
// Sections are assigned indexes in first-encounter order across pages, which
// is the order task codes address them by. Within a page all lesson step
// fetches run concurrently and are joined before the page's units are
// appended, preserving the original unit order; the next page is not
// requested until the current one is fully processed. Any HTTP failure aborts
// the scan - a partial structure would silently shift positional resolution.
func (s *Scanner) ScanCourse(ctx context.Context, courseID string) (*models.CourseStructure, error) {
	cs := &models.CourseStructure{CourseID: courseID}
	sectionIndex := make(map[int64]int)

	for page := 1; ; page++ {
		s.logger.Debug("fetching units page", "course_id", courseID, "page", page)

		resp, err := s.client.Units(ctx, courseID, page)
		if err != nil {
			return nil, fmt.Errorf("scan course %s page %d: %w", courseID, page, err)
		}

		for _, u := range resp.Units {
			if _, seen := sectionIndex[u.Section]; !seen {
				sectionIndex[u.Section] = len(cs.Sections)
				cs.Sections = append(cs.Sections, models.Section{ID: u.Section})
			}
		}

		// Fan out one step fetch per unit, join, then append in unit order.
		steps := make([][]int64, len(resp.Units))
		g, gctx := errgroup.WithContext(ctx)
		for i, u := range resp.Units {
			g.Go(func() error {
				ids, err := s.client.LessonSteps(gctx, u.Lesson)
				if err != nil {
					return fmt.Errorf("lesson %d: %w", u.Lesson, err)
				}
				steps[i] = ids
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, fmt.Errorf("scan course %s page %d: %w", courseID, page, err)
		}

		for i, u := range resp.Units {
			idx := sectionIndex[u.Section]
			cs.Sections[idx].Lessons = append(cs.Sections[idx].Lessons, models.Lesson{
				ID:       u.Lesson,
				Position: u.Position,
				Steps:    steps[i],
			})
		}

		if !resp.Meta.HasNext {
			break
		}
	}

	s.logger.Info("course structure scanned",
		"course_id", courseID,
		"sections", cs.SectionCount(),
		"steps", cs.StepCount())

	return cs, nil
}
