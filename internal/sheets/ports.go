package sheets

import (
	"context"

	"lessons/internal/core"
)

// LessonAppender mirrors committed lessons to an external sheet.
type LessonAppender interface {
	AppendLesson(ctx context.Context, l core.Lesson) error
}
