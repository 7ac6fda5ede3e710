package projects

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/platinummonkey/workboard/pkg/apperr"
	"github.com/platinummonkey/workboard/pkg/events"
	"github.com/platinummonkey/workboard/pkg/observability"
	"github.com/platinummonkey/workboard/pkg/rbac"
	"github.com/platinummonkey/workboard/pkg/storage"
)

// MetaLoader resolves the names carried by events. *workspaces.Store
// satisfies it.
type MetaLoader interface {
	EventMeta(ctx context.Context, workspaceID, actorID string, role rbac.Role, at time.Time) (events.Meta, error)
}

// Service implements project operations
type Service struct {
	store     *Store
	resolver  *rbac.Resolver
	meta      MetaLoader
	publisher events.Publisher
	logger    *observability.Logger
	now       func() time.Time
}

// NewService creates a project service
func NewService(store *Store, resolver *rbac.Resolver, meta MetaLoader, publisher events.Publisher, logger *observability.Logger) *Service {
	if logger == nil {
		logger = observability.NewNopLogger()
	}
	return &Service{
		store:     store,
		resolver:  resolver,
		meta:      meta,
		publisher: publisher,
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC().Truncate(time.Microsecond) },
	}
}

// Create adds a project to the workspace
func (s *Service) Create(ctx context.Context, userID, workspaceID string, in CreateInput) (*Project, error) {
	role, err := s.resolver.Require(ctx, userID, workspaceID, rbac.PermCreateProject)
	if err != nil {
		return nil, err
	}
	name, err := validateName(in.Name)
	if err != nil {
		return nil, err
	}

	now := s.now()
	p := &Project{
		ID:          uuid.NewString(),
		WorkspaceID: workspaceID,
		Emoji:       strings.TrimSpace(in.Emoji),
		Name:        name,
		Description: strings.TrimSpace(in.Description),
		CreatedBy:   userID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if p.Emoji == "" {
		p.Emoji = DefaultEmoji
	}
	meta, err := s.meta.EventMeta(ctx, workspaceID, userID, role, now)
	if err != nil {
		return nil, err
	}
	if err := s.store.Create(ctx, p); err != nil {
		return nil, err
	}

	s.publisher.Publish(ctx, events.ProjectCreated{Meta: meta, Project: Ref(p)})
	return p, nil
}

// Get returns a project of the workspace
func (s *Service) Get(ctx context.Context, userID, workspaceID, projectID string) (*Project, error) {
	if _, err := s.resolver.Require(ctx, userID, workspaceID, rbac.PermViewOnly); err != nil {
		return nil, err
	}
	return s.store.Get(ctx, workspaceID, projectID)
}

// List returns one page of the workspace's projects
func (s *Service) List(ctx context.Context, userID, workspaceID string, page storage.Page) (*List, error) {
	if _, err := s.resolver.Require(ctx, userID, workspaceID, rbac.PermViewOnly); err != nil {
		return nil, err
	}
	page = page.Normalize()
	projects, total, err := s.store.List(ctx, workspaceID, page)
	if err != nil {
		return nil, err
	}
	return &List{Projects: projects, Pagination: page.Info(total)}, nil
}

// Update changes a project. A name change publishes ProjectRenamed.
func (s *Service) Update(ctx context.Context, userID, workspaceID, projectID string, in UpdateInput) (*Project, error) {
	role, err := s.resolver.Require(ctx, userID, workspaceID, rbac.PermEditProject)
	if err != nil {
		return nil, err
	}
	p, err := s.store.Get(ctx, workspaceID, projectID)
	if err != nil {
		return nil, err
	}

	oldName := p.Name
	if in.Name != nil {
		name, err := validateName(*in.Name)
		if err != nil {
			return nil, err
		}
		p.Name = name
	}
	if in.Emoji != nil && strings.TrimSpace(*in.Emoji) != "" {
		p.Emoji = strings.TrimSpace(*in.Emoji)
	}
	if in.Description != nil {
		p.Description = strings.TrimSpace(*in.Description)
	}
	p.UpdatedAt = s.now()

	var renamed *events.ProjectRenamed
	if p.Name != oldName {
		meta, err := s.meta.EventMeta(ctx, workspaceID, userID, role, p.UpdatedAt)
		if err != nil {
			return nil, err
		}
		renamed = &events.ProjectRenamed{Meta: meta, Project: Ref(p), OldName: oldName}
	}
	if err := s.store.Update(ctx, p); err != nil {
		return nil, err
	}

	if renamed != nil {
		s.publisher.Publish(ctx, *renamed)
	}
	return p, nil
}

// Delete removes a project with all of its tasks
func (s *Service) Delete(ctx context.Context, userID, workspaceID, projectID string) error {
	role, err := s.resolver.Require(ctx, userID, workspaceID, rbac.PermDeleteProject)
	if err != nil {
		return err
	}
	p, err := s.store.Get(ctx, workspaceID, projectID)
	if err != nil {
		return err
	}
	meta, err := s.meta.EventMeta(ctx, workspaceID, userID, role, s.now())
	if err != nil {
		return err
	}
	if err := s.store.Delete(ctx, workspaceID, projectID); err != nil {
		return err
	}

	observability.FromContext(ctx, s.logger).
		WithField("workspace_id", workspaceID).
		WithField("project_id", projectID).
		Info("project deleted")
	s.publisher.Publish(ctx, events.ProjectDeleted{Meta: meta, Project: Ref(p)})
	return nil
}

// Analytics returns task totals for a project
func (s *Service) Analytics(ctx context.Context, userID, workspaceID, projectID string) (*Analytics, error) {
	if _, err := s.resolver.Require(ctx, userID, workspaceID, rbac.PermViewOnly); err != nil {
		return nil, err
	}
	if _, err := s.store.Get(ctx, workspaceID, projectID); err != nil {
		return nil, err
	}
	return s.store.Analytics(ctx, projectID, s.now())
}

// Ref is the event snapshot of p
func Ref(p *Project) events.ProjectRef {
	return events.ProjectRef{ID: p.ID, Name: p.Name, Emoji: p.Emoji}
}

func validateName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", apperr.BadRequest(apperr.CodeValidation, "Project name is required")
	}
	if utf8.RuneCountInString(name) > 255 {
		return "", apperr.BadRequest(apperr.CodeValidation, "Project name must be at most 255 characters")
	}
	return name, nil
}
