package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/rpupo63/teammatch-backend/models"
)

// InboxEntry is one candidate's interest in one of the founder's projects.
type InboxEntry struct {
	MatchID   uuid.UUID         `json:"matchId"`
	Candidate models.User       `json:"candidate"`
	Project   *models.Project   `json:"project"`
	State     models.MatchState `json:"state"`
	CreatedAt time.Time         `json:"createdAt"`
}

// ConfirmedMatch is an approved match as the candidate sees it: which project, and
// how to reach its founder.
type ConfirmedMatch struct {
	MatchID      uuid.UUID `json:"matchId"`
	ProjectID    uuid.UUID `json:"projectId"`
	ProjectTitle string    `json:"projectTitle"`
	FounderEmail string    `json:"founderEmail"`
}

// CandidateMatch is any match the candidate holds. Founder contact is only revealed
// through ConfirmedMatches.
type CandidateMatch struct {
	MatchID uuid.UUID         `json:"matchId"`
	Project *models.Project   `json:"project"`
	State   models.MatchState `json:"state"`
}

// Overview bundles everything a member's dashboard shows.
type Overview struct {
	Profile   models.User       `json:"profile"`
	Projects  []*models.Project `json:"projects"`
	Inbox     []InboxEntry      `json:"inbox"`
	Confirmed []ConfirmedMatch  `json:"confirmed"`
}

// FounderInbox lists, for every project founderID owns, the matches referencing it
// resolved to their candidate. Matches whose candidate no longer exists are skipped.
func (s MatchService) FounderInbox(ctx context.Context, founderID uuid.UUID) ([]InboxEntry, error) {
	projects, err := s.projects.FindByFounder(ctx, founderID)
	if err != nil {
		return nil, err
	}
	return s.inboxFor(ctx, projects)
}

func (s MatchService) inboxFor(ctx context.Context, projects []*models.Project) ([]InboxEntry, error) {
	entries := []InboxEntry{}
	if len(projects) == 0 {
		return entries, nil
	}

	byID := make(map[uuid.UUID]*models.Project, len(projects))
	projectIDs := make([]uuid.UUID, 0, len(projects))
	for _, p := range projects {
		byID[p.ID] = p
		projectIDs = append(projectIDs, p.ID)
	}

	matches, err := s.matches.FindByProjects(ctx, projectIDs)
	if err != nil {
		return nil, err
	}

	candidateIDs := make([]uuid.UUID, 0, len(matches))
	for _, m := range matches {
		candidateIDs = append(candidateIDs, m.UserID)
	}
	candidates, err := s.usersByID(ctx, candidateIDs)
	if err != nil {
		return nil, err
	}

	for _, m := range matches {
		candidate, ok := candidates[m.UserID]
		if !ok {
			continue
		}
		project, ok := byID[m.ProjectID]
		if !ok {
			continue
		}
		entries = append(entries, InboxEntry{
			MatchID:   m.ID,
			Candidate: candidate.Public(),
			Project:   project,
			State:     m.State(),
			CreatedAt: m.CreatedAt,
		})
	}
	return entries, nil
}

// ConfirmedMatches lists candidateID's approved matches with each project's title and
// its founder's e-mail. Matches whose project or founder is gone are skipped.
func (s MatchService) ConfirmedMatches(ctx context.Context, candidateID uuid.UUID) ([]ConfirmedMatch, error) {
	matches, err := s.matches.FindByUser(ctx, candidateID, true)
	if err != nil {
		return nil, err
	}
	projects, err := s.projectsByID(ctx, matches)
	if err != nil {
		return nil, err
	}

	founderIDs := make([]uuid.UUID, 0, len(projects))
	for _, p := range projects {
		founderIDs = append(founderIDs, p.FounderID)
	}
	foundersByID, err := s.usersByID(ctx, founderIDs)
	if err != nil {
		return nil, err
	}

	confirmed := []ConfirmedMatch{}
	for _, m := range matches {
		project, ok := projects[m.ProjectID]
		if !ok {
			continue
		}
		founder, ok := foundersByID[project.FounderID]
		if !ok {
			continue
		}
		confirmed = append(confirmed, ConfirmedMatch{
			MatchID:      m.ID,
			ProjectID:    project.ID,
			ProjectTitle: project.Title,
			FounderEmail: founder.Email,
		})
	}
	return confirmed, nil
}

// CandidateMatches lists every match candidateID holds, pending or approved.
func (s MatchService) CandidateMatches(ctx context.Context, candidateID uuid.UUID) ([]CandidateMatch, error) {
	matches, err := s.matches.FindByUser(ctx, candidateID, false)
	if err != nil {
		return nil, err
	}
	projects, err := s.projectsByID(ctx, matches)
	if err != nil {
		return nil, err
	}

	out := []CandidateMatch{}
	for _, m := range matches {
		project, ok := projects[m.ProjectID]
		if !ok {
			continue
		}
		out = append(out, CandidateMatch{MatchID: m.ID, Project: project, State: m.State()})
	}
	return out, nil
}

// Overview loads a member's profile, founded projects with their inbox, and confirmed
// matches concurrently.
func (s MatchService) Overview(ctx context.Context, userID uuid.UUID) (*Overview, error) {
	var (
		overview = &Overview{}
		profile  *models.User
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		profile, err = s.users.FindByID(gctx, userID)
		return err
	})
	g.Go(func() error {
		projects, err := s.projects.FindByFounder(gctx, userID)
		if err != nil {
			return err
		}
		inbox, err := s.inboxFor(gctx, projects)
		if err != nil {
			return err
		}
		if projects == nil {
			projects = []*models.Project{}
		}
		overview.Projects = projects
		overview.Inbox = inbox
		return nil
	})
	g.Go(func() error {
		confirmed, err := s.ConfirmedMatches(gctx, userID)
		if err != nil {
			return err
		}
		overview.Confirmed = confirmed
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	overview.Profile = profile.Public()
	return overview, nil
}

func (s MatchService) usersByID(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*models.User, error) {
	users, err := s.users.FindByIDs(ctx, uniqueIDs(ids))
	if err != nil {
		return nil, err
	}
	byID := make(map[uuid.UUID]*models.User, len(users))
	for _, u := range users {
		byID[u.ID] = u
	}
	return byID, nil
}

func (s MatchService) projectsByID(ctx context.Context, matches []*models.Match) (map[uuid.UUID]*models.Project, error) {
	ids := make([]uuid.UUID, 0, len(matches))
	for _, m := range matches {
		ids = append(ids, m.ProjectID)
	}
	projects, err := s.projects.FindByIDs(ctx, uniqueIDs(ids))
	if err != nil {
		return nil, err
	}
	byID := make(map[uuid.UUID]*models.Project, len(projects))
	for _, p := range projects {
		byID[p.ID] = p
	}
	return byID, nil
}

func uniqueIDs(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
