package database

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm/logger"

	"github.com/rpupo63/teammatch-backend/errs"
	"github.com/rpupo63/teammatch-backend/models"
)

// openTestDB connects to the postgres named by TEST_DATABASE_URL, migrates it and
// empties every table. Tests are skipped when the variable is unset.
func openTestDB(t *testing.T) Database {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	db, err := Open(Config{DSN: dsn, LogLevel: logger.Silent})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if err := db.Exec("TRUNCATE matches, project_tags, projects, users").Error; err != nil {
		t.Fatalf("truncate: %v", err)
	}
	return New(db)
}

func addUser(t *testing.T, d Database, nickname string) *models.User {
	t.Helper()
	user := &models.User{
		ID:           uuid.New(),
		Nickname:     nickname,
		Email:        nickname + "@example.com",
		Level:        models.LevelJunior,
		Language:     "go",
		PasswordHash: "hash",
	}
	if err := d.UserRepo().Add(context.Background(), user); err != nil {
		t.Fatalf("add user %s: %v", nickname, err)
	}
	return user
}

func addProject(t *testing.T, d Database, founderID uuid.UUID, slug string, technologies ...string) *models.Project {
	t.Helper()
	project := &models.Project{
		ID:        uuid.New(),
		Slug:      slug,
		Title:     slug,
		FounderID: founderID,
		Levels:    []string{models.LevelJunior},
	}
	for _, value := range technologies {
		project.Technologies = append(project.Technologies, models.ProjectTag{Value: value})
	}
	if err := d.ProjectRepo().Add(context.Background(), project); err != nil {
		t.Fatalf("add project %s: %v", slug, err)
	}
	return project
}

func addMatch(t *testing.T, d Database, userID, projectID uuid.UUID) *models.Match {
	t.Helper()
	match := &models.Match{ID: uuid.New(), UserID: userID, ProjectID: projectID}
	if err := d.MatchRepo().Add(context.Background(), match); err != nil {
		t.Fatalf("add match: %v", err)
	}
	return match
}

func conflictField(t *testing.T, err error) string {
	t.Helper()
	var apiErr *errs.ApiErr
	if !errs.IsAlreadyExists(err) || !errors.As(err, &apiErr) {
		t.Fatalf("expected already exists, got %v", err)
	}
	return apiErr.Field
}

func TestUserRepoUniqueFields(t *testing.T) {
	d := openTestDB(t)
	ctx := context.Background()
	alice := addUser(t, d, "alice")

	sameNickname := &models.User{ID: uuid.New(), Nickname: "alice", Email: "other@example.com", Level: models.LevelJunior, Language: "go", PasswordHash: "hash"}
	if got := conflictField(t, d.UserRepo().Add(ctx, sameNickname)); got != "nickname" {
		t.Fatalf("expected field nickname, got %q", got)
	}

	sameEmail := &models.User{ID: uuid.New(), Nickname: "other", Email: alice.Email, Level: models.LevelJunior, Language: "go", PasswordHash: "hash"}
	if got := conflictField(t, d.UserRepo().Add(ctx, sameEmail)); got != "email" {
		t.Fatalf("expected field email, got %q", got)
	}
}

func TestUserRepoUpdate(t *testing.T) {
	d := openTestDB(t)
	ctx := context.Background()
	alice := addUser(t, d, "alice")

	first := *alice
	first.Name = "Alice"
	if err := d.UserRepo().Update(ctx, &first, 1); err != nil {
		t.Fatalf("update: %v", err)
	}
	if first.Version != 2 {
		t.Fatalf("expected version 2, got %d", first.Version)
	}

	late := *alice
	late.Name = "Mallory"
	if err := d.UserRepo().Update(ctx, &late, 1); !errs.IsStaleWrite(err) {
		t.Fatalf("expected stale write, got %v", err)
	}

	stored, err := d.UserRepo().FindByID(ctx, alice.ID)
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if stored.Name != "Alice" || stored.Version != 2 {
		t.Fatalf("expected first write at version 2, got %q v%d", stored.Name, stored.Version)
	}

	missing := &models.User{ID: uuid.New()}
	if err := d.UserRepo().Update(ctx, missing, 1); !errs.IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestProjectRepoDuplicateSlug(t *testing.T) {
	d := openTestDB(t)
	alice := addUser(t, d, "alice")
	addProject(t, d, alice.ID, "team-match")

	duplicate := &models.Project{ID: uuid.New(), Slug: "team-match", Title: "Team Match", FounderID: alice.ID}
	if got := conflictField(t, d.ProjectRepo().Add(context.Background(), duplicate)); got != "slug" {
		t.Fatalf("expected field slug, got %q", got)
	}
}

func TestProjectRepoUpdate(t *testing.T) {
	d := openTestDB(t)
	ctx := context.Background()
	alice := addUser(t, d, "alice")
	project := addProject(t, d, alice.ID, "p1", "go", "postgres")

	edit := *project
	edit.Title = "P1 v2"
	edit.Technologies = []models.ProjectTag{{Value: "rust"}}
	if err := d.ProjectRepo().Update(ctx, &edit, 1); err != nil {
		t.Fatalf("update: %v", err)
	}
	if edit.Version != 2 {
		t.Fatalf("expected version 2, got %d", edit.Version)
	}

	late := *project
	late.Title = "late"
	late.Technologies = nil
	if err := d.ProjectRepo().Update(ctx, &late, 1); !errs.IsStaleWrite(err) || !errs.IsConflict(err) {
		t.Fatalf("expected stale write conflict, got %v", err)
	}

	stored, err := d.ProjectRepo().FindByID(ctx, project.ID)
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if values := stored.TechnologyValues(); stored.Title != "P1 v2" || len(values) != 1 || values[0] != "rust" {
		t.Fatalf("expected first write with tags replaced, got %q %v", stored.Title, values)
	}

	missing := &models.Project{ID: uuid.New(), Title: "ghost"}
	if err := d.ProjectRepo().Update(ctx, missing, 1); !errs.IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestProjectRepoDeleteRemovesMatchesAndTags(t *testing.T) {
	d := openTestDB(t)
	ctx := context.Background()
	alice := addUser(t, d, "alice")
	bob := addUser(t, d, "bob")
	project := addProject(t, d, alice.ID, "p1", "go")
	other := addProject(t, d, alice.ID, "p2", "rust")
	addMatch(t, d, bob.ID, project.ID)
	kept := addMatch(t, d, bob.ID, other.ID)

	if err := d.ProjectRepo().Delete(ctx, project.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	matches, err := d.MatchRepo().FindByUser(ctx, bob.ID, false)
	if err != nil {
		t.Fatalf("find matches: %v", err)
	}
	if len(matches) != 1 || matches[0].ID != kept.ID {
		t.Fatalf("expected only the match on p2 to remain, got %d", len(matches))
	}
	technologies, err := d.ProjectTagRepo().FindTechnologies(ctx)
	if err != nil {
		t.Fatalf("find technologies: %v", err)
	}
	if len(technologies) != 1 || technologies[0] != "rust" {
		t.Fatalf("expected [rust], got %v", technologies)
	}

	if err := d.ProjectRepo().Delete(ctx, project.ID); !errs.IsNotFound(err) {
		t.Fatalf("expected not found on second delete, got %v", err)
	}
}

func TestProjectTagsCascadeOnRawDelete(t *testing.T) {
	d := openTestDB(t)
	alice := addUser(t, d, "alice")
	project := addProject(t, d, alice.ID, "p1", "go", "postgres")

	if err := d.db.Exec("DELETE FROM projects WHERE id = ?", project.ID).Error; err != nil {
		t.Fatalf("raw delete: %v", err)
	}
	var count int64
	if err := d.db.Model(&models.ProjectTag{}).Where("project_id = ?", project.ID).Count(&count).Error; err != nil {
		t.Fatalf("count tags: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected tags to cascade, got %d", count)
	}
}

func TestMatchRepoDeleteOrphans(t *testing.T) {
	d := openTestDB(t)
	ctx := context.Background()
	alice := addUser(t, d, "alice")
	bob := addUser(t, d, "bob")
	carol := addUser(t, d, "carol")
	project := addProject(t, d, alice.ID, "p1")
	gone := addProject(t, d, alice.ID, "p2")
	addMatch(t, d, bob.ID, project.ID)
	addMatch(t, d, carol.ID, gone.ID)
	kept := addMatch(t, d, carol.ID, project.ID)

	if err := d.db.Exec("DELETE FROM users WHERE id = ?", bob.ID).Error; err != nil {
		t.Fatalf("raw delete user: %v", err)
	}
	if err := d.db.Exec("DELETE FROM projects WHERE id = ?", gone.ID).Error; err != nil {
		t.Fatalf("raw delete project: %v", err)
	}

	removed, err := d.MatchRepo().DeleteOrphans(ctx)
	if err != nil {
		t.Fatalf("delete orphans: %v", err)
	}
	if removed != 2 {
		t.Fatalf("expected 2 orphans removed, got %d", removed)
	}

	matches, err := d.MatchRepo().FindByProjects(ctx, []uuid.UUID{project.ID, gone.ID})
	if err != nil {
		t.Fatalf("find matches: %v", err)
	}
	if len(matches) != 1 || matches[0].ID != kept.ID {
		t.Fatalf("expected carol's match on p1 to remain, got %d", len(matches))
	}

	if removed, err := d.MatchRepo().DeleteOrphans(ctx); err != nil || removed != 0 {
		t.Fatalf("expected nothing left to sweep, got %d, %v", removed, err)
	}
}

func TestMatchRepoLifecycle(t *testing.T) {
	d := openTestDB(t)
	ctx := context.Background()
	alice := addUser(t, d, "alice")
	bob := addUser(t, d, "bob")
	project := addProject(t, d, alice.ID, "p1")
	match := addMatch(t, d, bob.ID, project.ID)

	duplicate := &models.Match{ID: uuid.New(), UserID: bob.ID, ProjectID: project.ID}
	if got := conflictField(t, d.MatchRepo().Add(ctx, duplicate)); got != "project_id" {
		t.Fatalf("expected field project_id, got %q", got)
	}

	if err := d.MatchRepo().Approve(ctx, match.ID); err != nil {
		t.Fatalf("approve: %v", err)
	}
	approved, err := d.MatchRepo().FindByUser(ctx, bob.ID, true)
	if err != nil {
		t.Fatalf("find approved: %v", err)
	}
	if len(approved) != 1 || !approved[0].Approved {
		t.Fatalf("expected one approved match, got %d", len(approved))
	}

	if err := d.MatchRepo().Delete(ctx, match.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := d.MatchRepo().Find(ctx, bob.ID, project.ID); !errs.IsNotFound(err) {
		t.Fatalf("expected not found after delete, got %v", err)
	}
	if err := d.MatchRepo().Approve(ctx, match.ID); !errs.IsNotFound(err) {
		t.Fatalf("expected not found on approve, got %v", err)
	}
	if err := d.MatchRepo().Delete(ctx, match.ID); !errs.IsNotFound(err) {
		t.Fatalf("expected not found on delete, got %v", err)
	}
}

func TestProjectRepoFindByIDsLoadsTechnologies(t *testing.T) {
	d := openTestDB(t)
	alice := addUser(t, d, "alice")
	project := addProject(t, d, alice.ID, "p1", "go", "postgres")

	projects, err := d.ProjectRepo().FindByIDs(context.Background(), []uuid.UUID{project.ID, uuid.New()})
	if err != nil {
		t.Fatalf("find by ids: %v", err)
	}
	if len(projects) != 1 {
		t.Fatalf("expected one project, got %d", len(projects))
	}
	if got := projects[0].TechnologyValues(); len(got) != 2 {
		t.Fatalf("expected two technologies, got %v", got)
	}
}

func TestProjectRepoFindAllFilters(t *testing.T) {
	d := openTestDB(t)
	ctx := context.Background()
	alice := addUser(t, d, "alice")
	bob := addUser(t, d, "bob")
	addProject(t, d, alice.ID, "p1", "go")
	senior := &models.Project{ID: uuid.New(), Slug: "p2", Title: "p2", FounderID: bob.ID, Levels: []string{models.LevelSenior},
		Technologies: []models.ProjectTag{{Value: "rust"}}}
	if err := d.ProjectRepo().Add(ctx, senior); err != nil {
		t.Fatalf("add senior project: %v", err)
	}

	tests := []struct {
		name   string
		filter ProjectFilter
		want   int
	}{
		{"everything", ProjectFilter{}, 2},
		{"technology", ProjectFilter{Technology: "rust"}, 1},
		{"level", ProjectFilter{Level: models.LevelJunior}, 1},
		{"founder", ProjectFilter{FounderID: bob.ID}, 1},
		{"no match", ProjectFilter{Technology: "go", Level: models.LevelSenior}, 0},
		{"limit", ProjectFilter{Limit: 1}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := d.ProjectRepo().FindAll(ctx, tt.filter)
			if err != nil {
				t.Fatalf("find all: %v", err)
			}
			if len(got) != tt.want {
				t.Fatalf("expected %d projects, got %d", tt.want, len(got))
			}
		})
	}
}
