package services

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/rpupo63/teammatch-backend/errs"
	"github.com/rpupo63/teammatch-backend/models"
)

// MatchService runs the match lifecycle: a like creates a pending match, the
// project's founder approves it, and either party removes it. Each transition is a
// single-row write against the store.
type MatchService struct {
	users      UserStore
	projects   ProjectStore
	matches    MatchStore
	authorizer Authorizer
	notifier   Notifier
	logger     zerolog.Logger
}

func NewMatchService(users UserStore, projects ProjectStore, matches MatchStore, notifier Notifier) MatchService {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	return MatchService{
		users:      users,
		projects:   projects,
		matches:    matches,
		authorizer: NewAuthorizer(projects),
		notifier:   notifier,
		logger:     log.With().Str("service", "matches").Logger(),
	}
}

// Like records candidateID's interest in projectID. Liking twice is idempotent and
// returns the match that already exists.
func (s MatchService) Like(ctx context.Context, candidateID, projectID uuid.UUID) (*models.Match, error) {
	if candidateID == uuid.Nil {
		return nil, errs.Unauthorized
	}
	project, err := s.projects.FindByID(ctx, projectID)
	if err != nil {
		return nil, err
	}

	existing, err := s.matches.Find(ctx, candidateID, project.ID)
	if err == nil {
		return existing, nil
	}
	if !errs.IsNotFound(err) {
		return nil, err
	}

	match := &models.Match{
		ID:        uuid.New(),
		UserID:    candidateID,
		ProjectID: project.ID,
	}
	if err := s.matches.Add(ctx, match); err != nil {
		// a concurrent like for the same pair won the insert
		if errs.IsAlreadyExists(err) {
			return s.matches.Find(ctx, candidateID, project.ID)
		}
		return nil, err
	}

	s.logger.Info().
		Str("candidateID", candidateID.String()).
		Str("projectID", project.ID.String()).
		Msg("match pending")
	s.notify(ctx, Event{Kind: EventLiked, CandidateID: candidateID, Project: project})
	return match, nil
}

// Approve moves the candidate's match on projectID from pending to approved. The
// acting member must be the founder of that very project.
func (s MatchService) Approve(ctx context.Context, actorID, candidateID, projectID uuid.UUID) (*models.Match, error) {
	project, err := s.authorizer.AuthorizeProject(ctx, actorID, projectID, "approve match")
	if err != nil {
		return nil, err
	}

	match, err := s.matches.Find(ctx, candidateID, project.ID)
	if err != nil {
		return nil, err
	}
	if match.State() == models.MatchApproved {
		return match, nil
	}

	if err := s.matches.Approve(ctx, match.ID); err != nil {
		return nil, err
	}
	match.Approved = true

	s.logger.Info().
		Str("candidateID", candidateID.String()).
		Str("projectID", project.ID.String()).
		Msg("match approved")
	s.notify(ctx, Event{Kind: EventApproved, CandidateID: candidateID, Project: project})
	return match, nil
}

// Remove deletes the candidate's match on projectID, whether pending or approved.
// The candidate may withdraw and the founder may reject; anyone else is Forbidden.
// A missing match is NotFound.
func (s MatchService) Remove(ctx context.Context, actorID, candidateID, projectID uuid.UUID) error {
	if actorID == uuid.Nil {
		return errs.Unauthorized
	}
	match, err := s.matches.Find(ctx, candidateID, projectID)
	if err != nil {
		return err
	}

	kind := EventWithdrawn
	project, err := s.projects.FindByID(ctx, projectID)
	switch {
	case err != nil && !errs.IsNotFound(err):
		return err
	case actorID == candidateID:
	case err == nil && CanMutate(actorID, project):
		kind = EventRejected
	default:
		return errs.NewForbidden("remove match")
	}

	if err := s.matches.Delete(ctx, match.ID); err != nil {
		return err
	}

	s.logger.Info().
		Str("candidateID", candidateID.String()).
		Str("projectID", projectID.String()).
		Str("by", string(kind)).
		Msg("match removed")
	if project != nil {
		s.notify(ctx, Event{Kind: kind, CandidateID: candidateID, Project: project})
	}
	return nil
}

func (s MatchService) notify(ctx context.Context, event Event) {
	if err := s.notifier.Notify(ctx, event); err != nil {
		s.logger.Warn().Err(err).Str("event", string(event.Kind)).Msg("notification not delivered")
	}
}
