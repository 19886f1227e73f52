package crm

import (
	"strings"

	"github.com/starford/crmai/internal/idgen"
	"github.com/starford/crmai/internal/models"
)

// TaskInput carries the fields of a new task. Priority defaults to medium.
type TaskInput struct {
	Text      string          `json:"text"`
	ContactID string          `json:"contactId"`
	Priority  models.Priority `json:"priority"`
	DueDate   models.Date     `json:"dueDate"`
}

// TaskPatch lists the fields to overwrite; nil means unchanged.
type TaskPatch struct {
	Text      *string          `json:"text,omitempty"`
	Done      *bool            `json:"done,omitempty"`
	ContactID *string          `json:"contactId,omitempty"`
	Priority  *models.Priority `json:"priority,omitempty"`
	DueDate   *models.Date     `json:"dueDate,omitempty"`
}

func taskID(t *models.Task) string { return t.ID }

// AddTask appends a new, not yet done task.
func (s *Store) AddTask(in TaskInput) (models.Task, error) {
	t := models.Task{
		ID:        idgen.NewAt(idgen.KindTask, s.now()),
		Text:      strings.TrimSpace(in.Text),
		ContactID: in.ContactID,
		Priority:  orDefault(in.Priority, models.PriorityMedium),
		DueDate:   in.DueDate,
	}
	if err := t.Validate(); err != nil {
		return models.Task{}, err
	}
	_, err := s.mutate(KindTask, ActionCreated, func() (string, bool, error) {
		s.state.Tasks = append(s.state.Tasks, t)
		return t.ID, true, nil
	})
	return t, err
}

// ToggleTask flips the done flag of a task.
func (s *Store) ToggleTask(id string) (bool, error) {
	return s.mutate(KindTask, ActionUpdated, func() (string, bool, error) {
		i := indexOf(s.state.Tasks, id, taskID)
		if i < 0 {
			return id, false, nil
		}
		s.state.Tasks[i].Done = !s.state.Tasks[i].Done
		return id, true, nil
	})
}

// UpdateTask shallow-merges patch into the task.
func (s *Store) UpdateTask(id string, patch TaskPatch) (bool, error) {
	return s.mutate(KindTask, ActionUpdated, func() (string, bool, error) {
		i := indexOf(s.state.Tasks, id, taskID)
		if i < 0 {
			return id, false, nil
		}
		next := s.state.Tasks[i]
		setIf(&next.Text, patch.Text)
		setIf(&next.Done, patch.Done)
		setIf(&next.ContactID, patch.ContactID)
		setIf(&next.Priority, patch.Priority)
		setIf(&next.DueDate, patch.DueDate)
		if err := next.Validate(); err != nil {
			return id, false, err
		}
		s.state.Tasks[i] = next
		return id, true, nil
	})
}

// DeleteTask removes the task.
func (s *Store) DeleteTask(id string) (bool, error) {
	return s.mutate(KindTask, ActionDeleted, func() (string, bool, error) {
		return id, deleteAt(&s.state.Tasks, id, taskID), nil
	})
}

// GetTask returns the task with the given id.
func (s *Store) GetTask(id string) (models.Task, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i := indexOf(s.state.Tasks, id, taskID)
	if i < 0 {
		return models.Task{}, false
	}
	return s.state.Tasks[i], true
}

// ListTasks returns tasks in insertion order. With openOnly set, done tasks
// are left out.
func (s *Store) ListTasks(openOnly bool) []models.Task {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []models.Task{}
	for _, t := range s.state.Tasks {
		if openOnly && t.Done {
			continue
		}
		out = append(out, t)
	}
	return out
}
