package util

const (
	// CompletionWatchThreshold marks a lesson complete once this share of it
	// has been watched, even without an explicit completion event.
	CompletionWatchThreshold = 90.0

	// CoursePassingGrade is the overall grade bar for passing a course in
	// the grade report.
	CoursePassingGrade = 70

	DefaultPageSize = 20
	MaxPageSize     = 100
)
