// Package testutil provides an in-memory Entity Store with the same observable
// semantics as the gorm repositories: unique nickname, email, slug and
// (user, project) pairs, versioned updates, cascading project delete and errs-typed
// failures.
package testutil

import (
	"context"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/rpupo63/teammatch-backend/database"
	"github.com/rpupo63/teammatch-backend/errs"
	"github.com/rpupo63/teammatch-backend/models"
)

// Store holds users, projects and matches in memory. The zero value is not usable;
// call NewStore.
type Store struct {
	mu       sync.Mutex
	users    map[uuid.UUID]models.User
	projects map[uuid.UUID]models.Project
	matches  map[uuid.UUID]models.Match
	now      time.Time
	failure  error
}

func NewStore() *Store {
	return &Store{
		users:    map[uuid.UUID]models.User{},
		projects: map[uuid.UUID]models.Project{},
		matches:  map[uuid.UUID]models.Match{},
		now:      time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC),
	}
}

// Fail makes every following operation return a persistence error wrapping cause.
// Fail(nil) restores normal behavior.
func (s *Store) Fail(cause error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failure = cause
}

func (s *Store) Users() *UserStore       { return &UserStore{s} }
func (s *Store) Projects() *ProjectStore { return &ProjectStore{s} }
func (s *Store) Matches() *MatchStore    { return &MatchStore{s} }

// RemoveUserRow deletes a user without touching anything that references it.
func (s *Store) RemoveUserRow(id uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.users, id)
}

// RemoveProjectRow deletes a project without cascading to its matches.
func (s *Store) RemoveProjectRow(id uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.projects, id)
}

// MatchCount returns how many match rows exist for the pair.
func (s *Store) MatchCount(userID, projectID uuid.UUID) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, m := range s.matches {
		if m.UserID == userID && m.ProjectID == projectID {
			n++
		}
	}
	return n
}

// UserCount returns the number of stored users.
func (s *Store) UserCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.users)
}

// tick returns a strictly increasing timestamp so ordering by creation is stable.
func (s *Store) tick() time.Time {
	s.now = s.now.Add(time.Second)
	return s.now
}

func (s *Store) check(operation, entity string) error {
	if s.failure != nil {
		return errs.NewDatabaseError(operation, entity, s.failure)
	}
	return nil
}

func copyProject(p models.Project) *models.Project {
	p.Levels = slices.Clone(p.Levels)
	p.Technologies = slices.Clone(p.Technologies)
	return &p
}

type UserStore struct{ s *Store }

func (u *UserStore) Add(_ context.Context, user *models.User) error {
	s := u.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check("create", "user"); err != nil {
		return err
	}
	for _, existing := range s.users {
		if existing.Nickname == user.Nickname {
			return errs.NewAlreadyExists("user", "nickname")
		}
		if existing.Email == user.Email {
			return errs.NewAlreadyExists("user", "email")
		}
	}
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	if user.Version == 0 {
		user.Version = 1
	}
	user.CreatedAt = s.tick()
	user.UpdatedAt = user.CreatedAt
	s.users[user.ID] = *user
	return nil
}

func (u *UserStore) find(match func(models.User) bool) (*models.User, error) {
	s := u.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check("find", "user"); err != nil {
		return nil, err
	}
	for _, user := range s.users {
		if match(user) {
			found := user
			return &found, nil
		}
	}
	return nil, errs.NewNotFound("user")
}

func (u *UserStore) FindByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	return u.find(func(user models.User) bool { return user.ID == id })
}

func (u *UserStore) FindByNickname(_ context.Context, nickname string) (*models.User, error) {
	return u.find(func(user models.User) bool { return user.Nickname == nickname })
}

func (u *UserStore) FindByEmail(_ context.Context, email string) (*models.User, error) {
	return u.find(func(user models.User) bool { return user.Email == email })
}

func (u *UserStore) FindByIDs(_ context.Context, ids []uuid.UUID) ([]*models.User, error) {
	s := u.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check("find", "users"); err != nil {
		return nil, err
	}
	var users []*models.User
	for _, id := range ids {
		if user, ok := s.users[id]; ok {
			users = append(users, &user)
		}
	}
	return users, nil
}

func (u *UserStore) Update(_ context.Context, user *models.User, expectedVersion int) error {
	s := u.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check("update", "user"); err != nil {
		return err
	}
	stored, ok := s.users[user.ID]
	if !ok {
		return errs.NewNotFound("user")
	}
	if stored.Version != expectedVersion {
		return errs.NewStaleWrite("user", expectedVersion)
	}
	stored.Name = user.Name
	stored.Bio = user.Bio
	stored.Level = user.Level
	stored.Language = user.Language
	stored.Version = expectedVersion + 1
	stored.UpdatedAt = s.tick()
	s.users[user.ID] = stored
	user.Version = stored.Version
	return nil
}

type ProjectStore struct{ s *Store }

func (p *ProjectStore) FindAll(_ context.Context, filter database.ProjectFilter) ([]*models.Project, error) {
	s := p.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check("find", "projects"); err != nil {
		return nil, err
	}

	var projects []*models.Project
	for _, project := range s.projects {
		if filter.FounderID != uuid.Nil && project.FounderID != filter.FounderID {
			continue
		}
		if filter.Level != "" && !slices.Contains(project.Levels, filter.Level) {
			continue
		}
		if filter.Technology != "" && !slices.Contains(project.TechnologyValues(), filter.Technology) {
			continue
		}
		projects = append(projects, copyProject(project))
	}
	sort.Slice(projects, func(i, j int) bool { return projects[i].CreatedAt.After(projects[j].CreatedAt) })

	if filter.Offset >= len(projects) {
		return []*models.Project{}, nil
	}
	projects = projects[filter.Offset:]
	if filter.Limit > 0 && filter.Limit < len(projects) {
		projects = projects[:filter.Limit]
	}
	return projects, nil
}

func (p *ProjectStore) find(match func(models.Project) bool) (*models.Project, error) {
	s := p.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check("find", "project"); err != nil {
		return nil, err
	}
	for _, project := range s.projects {
		if match(project) {
			return copyProject(project), nil
		}
	}
	return nil, errs.NewNotFound("project")
}

func (p *ProjectStore) FindByID(_ context.Context, id uuid.UUID) (*models.Project, error) {
	return p.find(func(project models.Project) bool { return project.ID == id })
}

func (p *ProjectStore) FindBySlug(_ context.Context, slug string) (*models.Project, error) {
	return p.find(func(project models.Project) bool { return project.Slug == slug })
}

func (p *ProjectStore) FindByFounder(ctx context.Context, founderID uuid.UUID) ([]*models.Project, error) {
	return p.FindAll(ctx, database.ProjectFilter{FounderID: founderID})
}

func (p *ProjectStore) FindByIDs(_ context.Context, ids []uuid.UUID) ([]*models.Project, error) {
	s := p.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check("find", "projects"); err != nil {
		return nil, err
	}
	var projects []*models.Project
	for _, id := range ids {
		if project, ok := s.projects[id]; ok {
			projects = append(projects, copyProject(project))
		}
	}
	return projects, nil
}

func (p *ProjectStore) Add(_ context.Context, project *models.Project) error {
	s := p.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check("create", "project"); err != nil {
		return err
	}
	for _, existing := range s.projects {
		if existing.Slug == project.Slug {
			return errs.NewAlreadyExists("project", "slug")
		}
	}
	if project.ID == uuid.Nil {
		project.ID = uuid.New()
	}
	if project.Version == 0 {
		project.Version = 1
	}
	for i := range project.Technologies {
		project.Technologies[i].ProjectID = project.ID
	}
	project.CreatedAt = s.tick()
	project.UpdatedAt = project.CreatedAt
	s.projects[project.ID] = *copyProject(*project)
	return nil
}

func (p *ProjectStore) Update(_ context.Context, project *models.Project, expectedVersion int) error {
	s := p.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check("update", "project"); err != nil {
		return err
	}
	stored, ok := s.projects[project.ID]
	if !ok {
		return errs.NewNotFound("project")
	}
	if stored.Version != expectedVersion {
		return errs.NewStaleWrite("project", expectedVersion)
	}
	for i := range project.Technologies {
		project.Technologies[i].ProjectID = project.ID
	}
	stored.Title = project.Title
	stored.Description = project.Description
	stored.Levels = slices.Clone(project.Levels)
	stored.Technologies = slices.Clone(project.Technologies)
	stored.Version = expectedVersion + 1
	stored.UpdatedAt = s.tick()
	s.projects[project.ID] = stored
	project.Version = stored.Version
	return nil
}

func (p *ProjectStore) Delete(_ context.Context, id uuid.UUID) error {
	s := p.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check("delete", "project"); err != nil {
		return err
	}
	if _, ok := s.projects[id]; !ok {
		return errs.NewNotFound("project")
	}
	for matchID, m := range s.matches {
		if m.ProjectID == id {
			delete(s.matches, matchID)
		}
	}
	delete(s.projects, id)
	return nil
}

func (p *ProjectStore) FindTechnologies(_ context.Context) ([]string, error) {
	s := p.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check("find", "project tags"); err != nil {
		return nil, err
	}
	seen := map[string]struct{}{}
	values := []string{}
	for _, project := range s.projects {
		for _, tag := range project.Technologies {
			if _, ok := seen[tag.Value]; ok {
				continue
			}
			seen[tag.Value] = struct{}{}
			values = append(values, tag.Value)
		}
	}
	sort.Strings(values)
	return values, nil
}

type MatchStore struct{ s *Store }

func (m *MatchStore) Find(_ context.Context, userID, projectID uuid.UUID) (*models.Match, error) {
	s := m.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check("find", "match"); err != nil {
		return nil, err
	}
	for _, match := range s.matches {
		if match.UserID == userID && match.ProjectID == projectID {
			return &match, nil
		}
	}
	return nil, errs.NewNotFound("match")
}

func (m *MatchStore) collect(keep func(models.Match) bool) []*models.Match {
	var matches []*models.Match
	for _, match := range m.s.matches {
		match := match
		if keep(match) {
			matches = append(matches, &match)
		}
	}
	sort.Slice(matches, func(i, j int) bool { return matches[i].CreatedAt.Before(matches[j].CreatedAt) })
	return matches
}

func (m *MatchStore) FindByProjects(_ context.Context, projectIDs []uuid.UUID) ([]*models.Match, error) {
	s := m.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check("find", "matches"); err != nil {
		return nil, err
	}
	return m.collect(func(match models.Match) bool { return slices.Contains(projectIDs, match.ProjectID) }), nil
}

func (m *MatchStore) FindByUser(_ context.Context, userID uuid.UUID, approvedOnly bool) ([]*models.Match, error) {
	s := m.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check("find", "matches"); err != nil {
		return nil, err
	}
	return m.collect(func(match models.Match) bool {
		return match.UserID == userID && (!approvedOnly || match.Approved)
	}), nil
}

func (m *MatchStore) Add(_ context.Context, match *models.Match) error {
	s := m.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check("create", "match"); err != nil {
		return err
	}
	for _, existing := range s.matches {
		if existing.UserID == match.UserID && existing.ProjectID == match.ProjectID {
			return errs.NewAlreadyExists("match", "project_id")
		}
	}
	if match.ID == uuid.Nil {
		match.ID = uuid.New()
	}
	match.CreatedAt = s.tick()
	match.UpdatedAt = match.CreatedAt
	s.matches[match.ID] = *match
	return nil
}

func (m *MatchStore) Approve(_ context.Context, id uuid.UUID) error {
	s := m.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check("update", "match"); err != nil {
		return err
	}
	match, ok := s.matches[id]
	if !ok {
		return errs.NewNotFound("match")
	}
	match.Approved = true
	match.UpdatedAt = s.tick()
	s.matches[id] = match
	return nil
}

func (m *MatchStore) Delete(_ context.Context, id uuid.UUID) error {
	s := m.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check("delete", "match"); err != nil {
		return err
	}
	if _, ok := s.matches[id]; !ok {
		return errs.NewNotFound("match")
	}
	delete(s.matches, id)
	return nil
}

func (m *MatchStore) DeleteOrphans(_ context.Context) (int64, error) {
	s := m.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check("delete", "orphaned matches"); err != nil {
		return 0, err
	}
	var removed int64
	for id, match := range s.matches {
		_, hasUser := s.users[match.UserID]
		_, hasProject := s.projects[match.ProjectID]
		if !hasUser || !hasProject {
			delete(s.matches, id)
			removed++
		}
	}
	return removed, nil
}
