package memory

import (
	"context"
	"sort"

	"github.com/Freeeeeet/tutoring_scheduler/internal/model"
)

type courseRecord struct {
	model.Course
}

type CourseRepository struct {
	store *Store
}

func (r *CourseRepository) Create(_ context.Context, course *model.Course) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	course.ID = r.store.id()
	course.CreatedAt = r.store.now()
	r.store.courses[course.ID] = &courseRecord{Course: *course}
	return nil
}

func (r *CourseRepository) GetByID(_ context.Context, id int64) (*model.Course, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	c, ok := r.store.courses[id]
	if !ok {
		return nil, nil
	}
	course := c.Course
	return &course, nil
}

func (r *CourseRepository) GetByTutorID(_ context.Context, tutorID int64) ([]*model.Course, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var courses []*model.Course
	for _, c := range r.store.courses {
		if c.TutorID == tutorID {
			course := c.Course
			courses = append(courses, &course)
		}
	}
	sort.Slice(courses, func(i, j int) bool { return courses[i].ID > courses[j].ID })
	return courses, nil
}
