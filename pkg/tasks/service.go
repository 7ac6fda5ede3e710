package tasks

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/platinummonkey/workboard/pkg/apperr"
	"github.com/platinummonkey/workboard/pkg/auth"
	"github.com/platinummonkey/workboard/pkg/events"
	"github.com/platinummonkey/workboard/pkg/observability"
	"github.com/platinummonkey/workboard/pkg/projects"
	"github.com/platinummonkey/workboard/pkg/rbac"
	"github.com/platinummonkey/workboard/pkg/storage"
)

const (
	taskCodeLength   = 4
	taskCodeAttempts = 5
)

// Service implements task operations
type Service struct {
	store     *Store
	projects  *projects.Store
	members   rbac.MembershipStore
	resolver  *rbac.Resolver
	meta      projects.MetaLoader
	publisher events.Publisher
	logger    *observability.Logger
	now       func() time.Time
}

// NewService creates a task service. members is used to check that
// assignees belong to the workspace.
func NewService(store *Store, projectStore *projects.Store, members rbac.MembershipStore, resolver *rbac.Resolver,
	meta projects.MetaLoader, publisher events.Publisher, logger *observability.Logger) *Service {
	if logger == nil {
		logger = observability.NewNopLogger()
	}
	return &Service{
		store:     store,
		projects:  projectStore,
		members:   members,
		resolver:  resolver,
		meta:      meta,
		publisher: publisher,
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC().Truncate(time.Microsecond) },
	}
}

// Create adds a task to a project of the workspace
func (s *Service) Create(ctx context.Context, userID, workspaceID, projectID string, in CreateInput) (*Task, error) {
	role, err := s.resolver.Require(ctx, userID, workspaceID, rbac.PermCreateTask)
	if err != nil {
		return nil, err
	}
	project, err := s.projects.Get(ctx, workspaceID, projectID)
	if err != nil {
		return nil, err
	}

	title, err := validateTitle(in.Title)
	if err != nil {
		return nil, err
	}
	priority := PriorityMedium
	if in.Priority != "" {
		p, ok := ParsePriority(in.Priority)
		if !ok {
			return nil, apperr.BadRequest(apperr.CodeValidation, "Priority must be LOW, MEDIUM or HIGH")
		}
		priority = p
	}
	status := StatusTodo
	if in.Status != "" {
		st, ok := ParseStatus(in.Status)
		if !ok {
			return nil, apperr.BadRequest(apperr.CodeValidation, "Unknown task status")
		}
		status = st
	}
	assignee, err := s.checkAssignee(ctx, workspaceID, in.AssignedTo)
	if err != nil {
		return nil, err
	}

	now := s.now()
	t := &Task{
		ID:          uuid.NewString(),
		WorkspaceID: workspaceID,
		ProjectID:   project.ID,
		Title:       title,
		Description: strings.TrimSpace(in.Description),
		Priority:    priority,
		Status:      status,
		AssignedTo:  assignee,
		DueDate:     utcPtr(in.DueDate),
		CreatedBy:   userID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	var meta events.Meta
	if t.AssignedTo != nil {
		if meta, err = s.meta.EventMeta(ctx, workspaceID, userID, role, now); err != nil {
			return nil, err
		}
	}
	if err := s.insert(ctx, t); err != nil {
		return nil, err
	}

	if t.AssignedTo != nil {
		s.publisher.Publish(ctx, events.TaskAssigned{Meta: meta, Task: ref(t, project), AssigneeID: *t.AssignedTo})
	}
	return t, nil
}

func (s *Service) insert(ctx context.Context, t *Task) error {
	for attempt := 0; ; attempt++ {
		code, err := auth.RandomCode(taskCodeLength)
		if err != nil {
			return apperr.Internal("failed to create task", err)
		}
		t.TaskCode = "task-" + code
		err = s.store.Create(ctx, t)
		if err == nil {
			return nil
		}
		if !storage.IsUniqueViolation(err) || attempt+1 >= taskCodeAttempts {
			return err
		}
	}
}

// Get returns a task of the workspace
func (s *Service) Get(ctx context.Context, userID, workspaceID, taskID string) (*Task, error) {
	if _, err := s.resolver.Require(ctx, userID, workspaceID, rbac.PermViewOnly); err != nil {
		return nil, err
	}
	return s.store.Get(ctx, workspaceID, taskID)
}

// List returns one page of the workspace's tasks matching f
func (s *Service) List(ctx context.Context, userID, workspaceID string, f Filter, page storage.Page) (*List, error) {
	if _, err := s.resolver.Require(ctx, userID, workspaceID, rbac.PermViewOnly); err != nil {
		return nil, err
	}
	page = page.Normalize()
	tasks, total, err := s.store.List(ctx, workspaceID, f, page)
	if err != nil {
		return nil, err
	}
	return &List{Tasks: tasks, Pagination: page.Info(total)}, nil
}

// Update changes a task. Assignee changes publish TaskUnassigned for the
// previous assignee and TaskAssigned for the new one; a status change
// publishes TaskStatusChanged.
func (s *Service) Update(ctx context.Context, userID, workspaceID, taskID string, in UpdateInput) (*Task, error) {
	role, err := s.resolver.Require(ctx, userID, workspaceID, rbac.PermEditTask)
	if err != nil {
		return nil, err
	}
	t, err := s.store.Get(ctx, workspaceID, taskID)
	if err != nil {
		return nil, err
	}
	project, err := s.projects.Get(ctx, workspaceID, t.ProjectID)
	if err != nil {
		return nil, err
	}
	old := *t

	if in.Title != nil {
		title, err := validateTitle(*in.Title)
		if err != nil {
			return nil, err
		}
		t.Title = title
	}
	if in.Description != nil {
		t.Description = strings.TrimSpace(*in.Description)
	}
	if in.Priority != nil {
		p, ok := ParsePriority(*in.Priority)
		if !ok {
			return nil, apperr.BadRequest(apperr.CodeValidation, "Priority must be LOW, MEDIUM or HIGH")
		}
		t.Priority = p
	}
	if in.Status != nil {
		st, ok := ParseStatus(*in.Status)
		if !ok {
			return nil, apperr.BadRequest(apperr.CodeValidation, "Unknown task status")
		}
		t.Status = st
	}
	if in.AssignedTo != nil {
		assignee, err := s.checkAssignee(ctx, workspaceID, in.AssignedTo)
		if err != nil {
			return nil, err
		}
		t.AssignedTo = assignee
	}
	switch {
	case in.ClearDueDate:
		t.DueDate = nil
	case in.DueDate != nil:
		t.DueDate = utcPtr(in.DueDate)
	}
	t.UpdatedAt = s.now()

	changes := diff(&old, t)
	var meta events.Meta
	if len(changes) > 0 {
		if meta, err = s.meta.EventMeta(ctx, workspaceID, userID, role, t.UpdatedAt); err != nil {
			return nil, err
		}
	}
	if err := s.store.Update(ctx, t); err != nil {
		return nil, err
	}

	r := ref(t, project)
	for _, c := range changes {
		switch c.kind {
		case changeUnassigned:
			s.publisher.Publish(ctx, events.TaskUnassigned{Meta: meta, Task: r, PreviousAssigneeID: c.userID})
		case changeAssigned:
			s.publisher.Publish(ctx, events.TaskAssigned{Meta: meta, Task: r, AssigneeID: c.userID})
		case changeStatus:
			s.publisher.Publish(ctx, events.TaskStatusChanged{
				Meta:       meta,
				Task:       r,
				OldStatus:  string(old.Status),
				NewStatus:  string(t.Status),
				AssigneeID: deref(t.AssignedTo),
			})
		}
	}
	return t, nil
}

// Delete removes a task
func (s *Service) Delete(ctx context.Context, userID, workspaceID, taskID string) error {
	role, err := s.resolver.Require(ctx, userID, workspaceID, rbac.PermDeleteTask)
	if err != nil {
		return err
	}
	t, err := s.store.Get(ctx, workspaceID, taskID)
	if err != nil {
		return err
	}
	project, err := s.projects.Get(ctx, workspaceID, t.ProjectID)
	if err != nil {
		return err
	}
	meta, err := s.meta.EventMeta(ctx, workspaceID, userID, role, s.now())
	if err != nil {
		return err
	}
	if err := s.store.Delete(ctx, workspaceID, taskID); err != nil {
		return err
	}

	observability.FromContext(ctx, s.logger).
		WithField("workspace_id", workspaceID).
		WithField("task_id", taskID).
		Info("task deleted")
	s.publisher.Publish(ctx, events.TaskDeleted{Meta: meta, Task: ref(t, project), AssigneeID: deref(t.AssignedTo)})
	return nil
}

// checkAssignee trims the requested assignee and verifies membership. A nil
// or blank ID means unassigned.
func (s *Service) checkAssignee(ctx context.Context, workspaceID string, assignee *string) (*string, error) {
	if assignee == nil || strings.TrimSpace(*assignee) == "" {
		return nil, nil
	}
	id := strings.TrimSpace(*assignee)
	_, found, err := s.members.MemberRole(ctx, workspaceID, id)
	if err != nil {
		return nil, apperr.Internal("failed to look up assignee", err)
	}
	if !found {
		return nil, apperr.BadRequest(apperr.CodeAssigneeNotMember, "Assigned user is not a member of this workspace")
	}
	return &id, nil
}

func ref(t *Task, p *projects.Project) events.TaskRef {
	return events.TaskRef{ID: t.ID, Code: t.TaskCode, Title: t.Title, Project: projects.Ref(p)}
}

func validateTitle(title string) (string, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return "", apperr.BadRequest(apperr.CodeValidation, "Task title is required")
	}
	if utf8.RuneCountInString(title) > 255 {
		return "", apperr.BadRequest(apperr.CodeValidation, "Task title must be at most 255 characters")
	}
	return title, nil
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC().Truncate(time.Microsecond)
	return &u
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
