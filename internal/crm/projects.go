package crm

import (
	"strings"
	"time"

	"github.com/starford/crmai/internal/idgen"
	"github.com/starford/crmai/internal/models"
)

// ProjectInput carries the fields of a new project.
type ProjectInput struct {
	Name        string               `json:"name"`
	Description string               `json:"description"`
	Status      models.ProjectStatus `json:"status"`
	ContactID   string               `json:"contactId"`
	DueDate     models.Date          `json:"dueDate"`
	Tasks       []models.ProjectTask `json:"tasks"`
}

// ProjectPatch lists the fields to overwrite; nil means unchanged.
type ProjectPatch struct {
	Name        *string               `json:"name,omitempty"`
	Description *string               `json:"description,omitempty"`
	Status      *models.ProjectStatus `json:"status,omitempty"`
	ContactID   *string               `json:"contactId,omitempty"`
	DueDate     *models.Date          `json:"dueDate,omitempty"`
	Tasks       *[]models.ProjectTask `json:"tasks,omitempty"`
	AIAdvice    *string               `json:"aiAdvice,omitempty"`
}

func projectID(p *models.Project) string { return p.ID }

// prepareSubtasks assigns ids and default priorities to sub-tasks that lack them.
func prepareSubtasks(tasks []models.ProjectTask, now time.Time) []models.ProjectTask {
	out := cloneAll(tasks, nil)
	for i := range out {
		if out[i].ID == "" {
			out[i].ID = idgen.NewAt(idgen.KindProjectTask, now)
		}
		out[i].Text = strings.TrimSpace(out[i].Text)
		out[i].Priority = orDefault(out[i].Priority, models.PriorityMedium)
	}
	return out
}

// AddProject appends a new project created today. Status defaults to planned.
func (s *Store) AddProject(in ProjectInput) (models.Project, error) {
	now := s.now()
	p := models.Project{
		ID:          idgen.NewAt(idgen.KindProject, now),
		Name:        strings.TrimSpace(in.Name),
		Description: in.Description,
		Status:      orDefault(in.Status, models.ProjectStatusPlanned),
		ContactID:   in.ContactID,
		DueDate:     in.DueDate,
		Tasks:       prepareSubtasks(in.Tasks, now),
		CreatedAt:   models.DateOf(now),
	}
	if err := p.Validate(); err != nil {
		return models.Project{}, err
	}
	_, err := s.mutate(KindProject, ActionCreated, func() (string, bool, error) {
		s.state.Projects = append(s.state.Projects, p)
		return p.ID, true, nil
	})
	return p.Clone(), err
}

// UpdateProject shallow-merges patch into the project.
func (s *Store) UpdateProject(id string, patch ProjectPatch) (bool, error) {
	now := s.now()
	return s.mutate(KindProject, ActionUpdated, func() (string, bool, error) {
		i := indexOf(s.state.Projects, id, projectID)
		if i < 0 {
			return id, false, nil
		}
		next := s.state.Projects[i].Clone()
		setIf(&next.Name, patch.Name)
		setIf(&next.Description, patch.Description)
		setIf(&next.Status, patch.Status)
		setIf(&next.ContactID, patch.ContactID)
		setIf(&next.DueDate, patch.DueDate)
		setIf(&next.AIAdvice, patch.AIAdvice)
		if patch.Tasks != nil {
			next.Tasks = prepareSubtasks(*patch.Tasks, now)
		}
		if err := next.Validate(); err != nil {
			return id, false, err
		}
		s.state.Projects[i] = next
		return id, true, nil
	})
}

// AppendProjectTasks adds sub-tasks to a project and, when advice is not
// empty, caches it on the project.
func (s *Store) AppendProjectTasks(id string, tasks []models.ProjectTask, advice string) (bool, error) {
	now := s.now()
	return s.mutate(KindProject, ActionUpdated, func() (string, bool, error) {
		i := indexOf(s.state.Projects, id, projectID)
		if i < 0 {
			return id, false, nil
		}
		next := s.state.Projects[i].Clone()
		next.Tasks = append(next.Tasks, prepareSubtasks(tasks, now)...)
		if advice != "" {
			next.AIAdvice = advice
		}
		if err := next.Validate(); err != nil {
			return id, false, err
		}
		s.state.Projects[i] = next
		return id, true, nil
	})
}

// ToggleProjectTask flips the done flag of one sub-task.
func (s *Store) ToggleProjectTask(id, subtaskID string) (bool, error) {
	return s.mutate(KindProject, ActionUpdated, func() (string, bool, error) {
		i := indexOf(s.state.Projects, id, projectID)
		if i < 0 {
			return id, false, nil
		}
		tasks := s.state.Projects[i].Tasks
		for j := range tasks {
			if tasks[j].ID == subtaskID {
				tasks[j].Done = !tasks[j].Done
				return id, true, nil
			}
		}
		return id, false, nil
	})
}

// DeleteProject removes the project.
func (s *Store) DeleteProject(id string) (bool, error) {
	return s.mutate(KindProject, ActionDeleted, func() (string, bool, error) {
		return id, deleteAt(&s.state.Projects, id, projectID), nil
	})
}

// GetProject returns a copy of the project with the given id.
func (s *Store) GetProject(id string) (models.Project, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i := indexOf(s.state.Projects, id, projectID)
	if i < 0 {
		return models.Project{}, false
	}
	return s.state.Projects[i].Clone(), true
}

// ListProjects returns all projects in insertion order.
func (s *Store) ListProjects() []models.Project {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneAll(s.state.Projects, models.Project.Clone)
}
