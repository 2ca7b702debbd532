package services

import (
	"strconv"
	"strings"

	"github.com/stepik-tools/sync-service/internal/models"
)

// ResolveTaskCode translates a human task code "section.lesson.step" (all
// 1-indexed) into the step id it addresses within the structure snapshot.
//
// Sections are addressed by scan insertion order. Lessons are matched by
// their explicit position attribute rather than list index, so a section
// whose lesson list has gaps or arrived out of positional order still
// resolves correctly. Steps are addressed by list index within the lesson.
func ResolveTaskCode(code string, cs *models.CourseStructure) (int64, error) {
	section, lesson, step, err := parseTaskCode(code)
	if err != nil {
		return 0, err
	}

	if section > len(cs.Sections) {
		return 0, newTaskCodeError(code, ErrSectionOutOfRange,
			"section %d does not exist, course has %d sections", section, len(cs.Sections))
	}
	target := &cs.Sections[section-1]

	l := target.LessonByPosition(lesson)
	if l == nil {
		return 0, newTaskCodeError(code, ErrLessonNotFound,
			"no lesson with position %d in section %d", lesson, section)
	}

	if step > len(l.Steps) {
		return 0, newTaskCodeError(code, ErrStepOutOfRange,
			"step %d does not exist, lesson %d has %d steps", step, l.ID, len(l.Steps))
	}

	return l.Steps[step-1], nil
}

// parseTaskCode splits "S.L.T" into its three positive components.
func parseTaskCode(code string) (section, lesson, step int, err error) {
	parts := strings.Split(strings.TrimSpace(code), ".")
	if len(parts) != 3 {
		return 0, 0, 0, newTaskCodeError(code, ErrInvalidCodeFormat,
			"expected section.lesson.step, got %d components", len(parts))
	}

	nums := make([]int, 3)
	for i, p := range parts {
		n, convErr := strconv.Atoi(strings.TrimSpace(p))
		if convErr != nil || n < 1 {
			return 0, 0, 0, newTaskCodeError(code, ErrInvalidCodeFormat,
				"component %q is not a positive integer", p)
		}
		nums[i] = n
	}
	return nums[0], nums[1], nums[2], nil
}
