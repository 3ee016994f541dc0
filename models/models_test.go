package models

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/google/uuid"
)

func TestMatchState(t *testing.T) {
	var missing *Match
	if missing.State() != MatchAbsent {
		t.Fatalf("expected absent for nil match, got %v", missing.State())
	}

	match := &Match{UserID: uuid.New(), ProjectID: uuid.New()}
	if match.State() != MatchPending {
		t.Fatalf("expected pending, got %v", match.State())
	}
	match.Approved = true
	if match.State() != MatchApproved {
		t.Fatalf("expected approved, got %v", match.State())
	}
}

func TestMatchStateJSON(t *testing.T) {
	payload, err := json.Marshal(struct {
		State MatchState `json:"state"`
	}{MatchPending})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(payload) != `{"state":"pending"}` {
		t.Fatalf("expected state by name, got %s", payload)
	}
}

func TestUserPublicDropsCredentials(t *testing.T) {
	user := User{Nickname: "alice", PasswordHash: "$2a$10$hash"}

	public := user.Public()
	if public.PasswordHash != "" {
		t.Fatal("expected password hash to be cleared")
	}
	if user.PasswordHash == "" {
		t.Fatal("expected original user to keep its hash")
	}

	payload, err := json.Marshal(user)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if strings.Contains(string(payload), "hash") {
		t.Fatalf("expected hash never to be serialized, got %s", payload)
	}
}

func TestValidLevel(t *testing.T) {
	for _, level := range []string{LevelJunior, LevelMiddle, LevelSenior} {
		if !ValidLevel(level) {
			t.Fatalf("expected %q to be valid", level)
		}
	}
	for _, level := range []string{"", "Senior", "lead"} {
		if ValidLevel(level) {
			t.Fatalf("expected %q to be invalid", level)
		}
	}
}

func TestTechnologyValues(t *testing.T) {
	project := Project{Technologies: []ProjectTag{{Value: "go"}, {Value: "postgres"}}}

	values := project.TechnologyValues()
	if len(values) != 2 || values[0] != "go" || values[1] != "postgres" {
		t.Fatalf("expected [go postgres], got %v", values)
	}
}
