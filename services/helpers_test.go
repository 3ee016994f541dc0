package services

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"

	"github.com/rpupo63/teammatch-backend/models"
	"github.com/rpupo63/teammatch-backend/testutil"
)

// plainHasher keeps tests fast; credential behavior is covered with bcrypt separately.
type plainHasher struct{}

func (plainHasher) Hash(secret string) (string, error) { return "plain:" + secret, nil }

func (plainHasher) Verify(hash, secret string) (bool, error) {
	return strings.TrimPrefix(hash, "plain:") == secret, nil
}

type recordingNotifier struct {
	mu     sync.Mutex
	events []Event
}

func (n *recordingNotifier) Notify(_ context.Context, event Event) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, event)
	return nil
}

func (n *recordingNotifier) kinds() []EventKind {
	n.mu.Lock()
	defer n.mu.Unlock()
	kinds := make([]EventKind, 0, len(n.events))
	for _, e := range n.events {
		kinds = append(kinds, e.Kind)
	}
	return kinds
}

type fixture struct {
	store    *testutil.Store
	accounts AccountService
	projects ProjectService
	matches  MatchService
	notifier *recordingNotifier
}

func newFixture() *fixture {
	store := testutil.NewStore()
	notifier := &recordingNotifier{}
	return &fixture{
		store:    store,
		accounts: NewAccountService(store.Users(), plainHasher{}),
		projects: NewProjectService(store.Projects(), store.Projects()),
		matches:  NewMatchService(store.Users(), store.Projects(), store.Matches(), notifier),
		notifier: notifier,
	}
}

func (f *fixture) register(t *testing.T, nickname string) *models.User {
	t.Helper()
	user, err := f.accounts.Register(context.Background(), RegisterInput{
		Nickname: nickname,
		Email:    nickname + "@x.com",
		Secret:   "secret-" + nickname,
		Level:    models.LevelMiddle,
		Language: "go",
	})
	if err != nil {
		t.Fatalf("register %s: %v", nickname, err)
	}
	return user
}

func (f *fixture) createProject(t *testing.T, founderID uuid.UUID, title string) *models.Project {
	t.Helper()
	description := "looking for a team"
	project, err := f.projects.Create(context.Background(), founderID, ProjectInput{
		Title:        title,
		Description:  &description,
		Technologies: []string{"go"},
		Levels:       []string{models.LevelJunior},
	})
	if err != nil {
		t.Fatalf("create project %s: %v", title, err)
	}
	return project
}
