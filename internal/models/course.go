package models

// Lesson is a single lesson inside a section, carrying the ordered list of
// step ids and the explicit position the platform assigned to it within its
// section. Position is what task codes address, not the slice index: a
// section's lesson list may arrive with gaps or out of positional order.
type Lesson struct {
	ID       int64
	Position int
	Steps    []int64
}

// Section groups the lessons of one course section. Sections are ordered by
// first-encounter order during the scan, not by numeric id.
type Section struct {
	ID      int64
	Lessons []Lesson
}

// CourseStructure is the three-level structure snapshot built once per sync
// run: sections -> lessons -> step ids. It is immutable after the scan and
// discarded when the run completes.
type CourseStructure struct {
	CourseID string
	Sections []Section
}

// SectionCount returns the number of discovered sections.
func (cs *CourseStructure) SectionCount() int {
	return len(cs.Sections)
}

// StepCount returns the total number of steps across all lessons.
func (cs *CourseStructure) StepCount() int {
	total := 0
	for _, s := range cs.Sections {
		for _, l := range s.Lessons {
			total += len(l.Steps)
		}
	}
	return total
}

// LessonByPosition finds the lesson with the given 1-based position within
// the section, or nil when no lesson carries that position.
func (s *Section) LessonByPosition(position int) *Lesson {
	for i := range s.Lessons {
		if s.Lessons[i].Position == position {
			return &s.Lessons[i]
		}
	}
	return nil
}
