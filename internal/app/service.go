package app

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/shrimpsizemoose/trekker/logger"

	"github.com/avolkhin/sqlarena/internal/authz"
	"github.com/avolkhin/sqlarena/internal/clock"
	"github.com/avolkhin/sqlarena/internal/metrics"
	"github.com/avolkhin/sqlarena/internal/models"
	"github.com/avolkhin/sqlarena/internal/rank"
	"github.com/avolkhin/sqlarena/internal/sandbox"
	"github.com/avolkhin/sqlarena/internal/store"
)

var (
	ErrNotFound = errors.New("not found")

	// ErrNotAllowed is deliberately unspecific so ownership failures do
	// not leak whether the target exists.
	ErrNotAllowed = errors.New("operation not permitted")

	// ErrCompetitionClosed gates participant actions outside the
	// competition window. Checked centrally here, not at call sites.
	ErrCompetitionClosed = errors.New("competition is not open")
)

type Service struct {
	Config      *Config
	Store       store.MetadataStore
	Sandbox     sandbox.Runner
	Provisioner *sandbox.Provisioner
	Clock       *clock.ServiceClock
	Auth        *Auth
}

func NewService(configPath string) (*Service, error) {
	config, err := LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	metaStore, err := NewStore(config.Database.DSN, config.Database.MigrationsDir)
	if err != nil {
		return nil, fmt.Errorf("failed to init store: %w", err)
	}

	auth, err := NewAuth(config)
	if err != nil {
		metaStore.Close()
		return nil, fmt.Errorf("failed to init auth: %w", err)
	}

	deny := sandbox.NewDenylist(config.Sandbox.Denylist)

	return &Service{
		Config:      config,
		Store:       metaStore,
		Sandbox:     sandbox.NewGateway(config.Sandbox.Server, deny),
		Provisioner: sandbox.NewProvisioner(config.Sandbox.Server),
		Clock:       clock.New(config.Clock.OffsetHours),
		Auth:        auth,
	}, nil
}

func (s *Service) Close() error {
	var errs []error

	if err := s.Store.Close(); err != nil {
		errs = append(errs, fmt.Errorf("store: %w", err))
	}
	if err := s.Auth.Close(); err != nil {
		errs = append(errs, fmt.Errorf("auth: %w", err))
	}

	if len(errs) > 0 {
		return fmt.Errorf("errors while closing: %v", errs)
	}
	return nil
}

// CreateCompetition provisions the isolated database and persists the
// competition record. If the metadata insert fails after provisioning, the
// fresh database is dropped again so nothing is left behind.
func (s *Service) CreateCompetition(ctx context.Context, principal models.Principal, c *models.Competition) (*models.Competition, error) {
	if !principal.IsOrganizer() {
		return nil, ErrNotAllowed
	}

	c.CreatorID = principal.ID
	if err := c.Validate(); err != nil {
		return nil, err
	}

	if err := s.Provisioner.Provision(ctx, c.DatabaseName, c.DatabaseScript); err != nil {
		metrics.ProvisionOpsTotal.WithLabelValues("provision", "error").Inc()
		return nil, err
	}
	metrics.ProvisionOpsTotal.WithLabelValues("provision", "ok").Inc()

	id, err := s.Store.CreateCompetition(c)
	if err != nil {
		logger.Error.Printf("Competition insert failed after provisioning %s, rolling back: %v", c.DatabaseName, err)
		if dropErr := s.Provisioner.Deprovision(ctx, c.DatabaseName); dropErr != nil {
			logger.Error.Printf("Rollback drop of %s failed: %v", c.DatabaseName, dropErr)
		}
		return nil, fmt.Errorf("failed to save competition: %w", err)
	}

	c.ID = id
	return c, nil
}

// DeleteCompetition drops the isolated database first and removes the
// metadata row only if the drop went through. A busy database keeps the
// competition visible so the delete can be retried; an already-absent
// database does not block the metadata removal.
func (s *Service) DeleteCompetition(ctx context.Context, principal models.Principal, id int64) error {
	c, err := s.Store.GetCompetition(id)
	if err != nil {
		return err
	}
	if c == nil {
		return ErrNotFound
	}
	if !authz.IsOwner(c, principal) {
		return ErrNotAllowed
	}

	if err := s.Provisioner.Deprovision(ctx, c.DatabaseName); err != nil {
		metrics.ProvisionOpsTotal.WithLabelValues("deprovision", "error").Inc()
		return err
	}
	metrics.ProvisionOpsTotal.WithLabelValues("deprovision", "ok").Inc()

	return s.Store.DeleteCompetition(id)
}

func (s *Service) UpdateCompetitionInfo(principal models.Principal, id int64, name, description, image string) error {
	c, err := s.Store.GetCompetition(id)
	if err != nil {
		return err
	}
	if c == nil {
		return ErrNotFound
	}
	if !authz.IsOwner(c, principal) {
		return ErrNotAllowed
	}
	return s.Store.UpdateCompetitionInfo(id, name, description, image)
}

// GetCompetition returns the competition with the schema script withheld
// from everyone but its creator.
func (s *Service) GetCompetition(principal models.Principal, id int64) (*models.Competition, error) {
	c, err := s.Store.GetCompetition(id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, ErrNotFound
	}
	if !authz.IsOwner(c, principal) {
		c.DatabaseScript = ""
	}
	return c, nil
}

// ListCompetitions filters by derived state when one is given, otherwise
// returns everything.
func (s *Service) ListCompetitions(stateFilter models.CompetitionState) ([]models.Competition, error) {
	comps, err := s.Store.ListCompetitions()
	if err != nil {
		return nil, err
	}
	now := s.Clock.NowUnix()

	out := make([]models.Competition, 0, len(comps))
	for _, c := range comps {
		if stateFilter != "" && c.StateAt(now) != stateFilter {
			continue
		}
		c.DatabaseScript = ""
		out = append(out, c)
	}
	return out, nil
}

func (s *Service) CompetitionState(id int64) (models.CompetitionState, error) {
	c, err := s.Store.GetCompetition(id)
	if err != nil {
		return "", err
	}
	if c == nil {
		return "", ErrNotFound
	}
	return c.StateAt(s.Clock.NowUnix()), nil
}

// RunOrganizerQuery executes a test statement against the competition's
// database. The ownership check rides into the gateway so it runs before
// any connection is opened.
func (s *Service) RunOrganizerQuery(ctx context.Context, principal models.Principal, competitionID int64, query string) (string, error) {
	c, err := s.Store.GetCompetition(competitionID)
	if err != nil {
		return "", err
	}
	if c == nil {
		return "", ErrNotFound
	}

	result, err := s.Sandbox.Execute(ctx, c.DatabaseName, query, func() error {
		if !authz.IsOwner(c, principal) {
			return ErrNotAllowed
		}
		return nil
	})
	if err != nil {
		metrics.QueriesTotal.WithLabelValues("organizer", "error").Inc()
		return "", err
	}
	metrics.QueriesTotal.WithLabelValues("organizer", "ok").Inc()
	return result, nil
}

// SubmitAnswer runs a participant's query against the task's competition
// database and records the graded attempt. Grading is substring
// containment of the task solution in the canonical CSV, as loose as that
// is; the recorded answer always replaces the previous one.
func (s *Service) SubmitAnswer(ctx context.Context, principal models.Principal, taskID int64, query string) error {
	task, err := s.Store.GetTask(taskID)
	if err != nil {
		return err
	}
	if task == nil {
		return ErrNotFound
	}

	c, err := s.Store.GetCompetition(task.CompetitionID)
	if err != nil {
		return err
	}
	if c == nil {
		return ErrNotFound
	}

	if c.StateAt(s.Clock.NowUnix()) != models.StateCurrent {
		return ErrCompetitionClosed
	}

	result, err := s.Sandbox.Execute(ctx, c.DatabaseName, query, nil)
	if err != nil {
		metrics.QueriesTotal.WithLabelValues("participant", "error").Inc()
		return err
	}
	metrics.QueriesTotal.WithLabelValues("participant", "ok").Inc()

	score := 0
	verdict := "incorrect"
	if strings.Contains(result, task.Solution) {
		score = 1
		verdict = "correct"
	}

	answer := &models.Answer{
		TaskID: taskID,
		UserID: principal.ID,
		Query:  query,
		Result: result,
		Score:  score,
		Time:   s.Clock.NowUnix(),
	}
	if err := s.Store.UpsertAnswer(answer); err != nil {
		return err
	}

	metrics.SubmissionsTotal.WithLabelValues(verdict).Inc()
	return nil
}

func (s *Service) CreateTask(principal models.Principal, t *models.Task) (*models.Task, error) {
	c, err := s.Store.GetCompetition(t.CompetitionID)
	if err != nil {
		return nil, err
	}
	if !authz.IsOwner(c, principal) {
		return nil, ErrNotAllowed
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}

	id, err := s.Store.CreateTask(t)
	if err != nil {
		return nil, err
	}
	t.ID = id
	return t, nil
}

func (s *Service) UpdateTask(principal models.Principal, id int64, title, solution, image string) error {
	task, c, err := s.resolveTaskChain(id)
	if err != nil {
		return err
	}
	if !authz.CanAdministerTask(task, c, principal) {
		return ErrNotAllowed
	}
	return s.Store.UpdateTask(id, title, solution, image)
}

func (s *Service) DeleteTask(principal models.Principal, id int64) error {
	task, c, err := s.resolveTaskChain(id)
	if err != nil {
		return err
	}
	if !authz.CanAdministerTask(task, c, principal) {
		return ErrNotAllowed
	}
	return s.Store.DeleteTask(id)
}

// GetTask returns a single task. The creator sees everything; anyone else
// gets the solution withheld and nothing at all before the competition
// starts.
func (s *Service) GetTask(principal models.Principal, id int64) (*models.Task, error) {
	task, c, err := s.resolveTaskChain(id)
	if err != nil {
		return nil, err
	}
	if authz.IsOwner(c, principal) {
		return task, nil
	}
	if c.StateAt(s.Clock.NowUnix()) == models.StatePlanned {
		return nil, ErrCompetitionClosed
	}
	redacted := task.Redacted(false)
	return &redacted, nil
}

// ListTasks returns a competition's tasks filtered by who is asking: the
// creator gets full content, other organizers get titles and solutions
// withheld, participants get solution-redacted tasks and only while the
// competition is running.
func (s *Service) ListTasks(principal models.Principal, competitionID int64) ([]models.Task, error) {
	c, err := s.Store.GetCompetition(competitionID)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, ErrNotFound
	}

	tasks, err := s.Store.ListTasks(competitionID)
	if err != nil {
		return nil, err
	}

	if authz.IsOwner(c, principal) {
		return tasks, nil
	}

	hideTitle := false
	if principal.IsOrganizer() {
		// competing organizers see only that tasks exist
		hideTitle = true
	} else if c.StateAt(s.Clock.NowUnix()) != models.StateCurrent {
		return nil, ErrCompetitionClosed
	}

	out := make([]models.Task, len(tasks))
	for i, t := range tasks {
		out[i] = t.Redacted(hideTitle)
	}
	return out, nil
}

// Leaderboard ranks a competition. The creator sees every entry,
// a participant only their own row.
func (s *Service) Leaderboard(principal models.Principal, competitionID int64) ([]models.Standing, error) {
	c, err := s.Store.GetCompetition(competitionID)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, ErrNotFound
	}

	standings, err := s.Store.FetchStandings(competitionID)
	if err != nil {
		return nil, err
	}
	placed := rank.AssignPlaces(standings)

	if authz.IsOwner(c, principal) {
		return placed, nil
	}

	if own, ok := rank.ForUser(placed, principal.ID); ok {
		return []models.Standing{own}, nil
	}
	return []models.Standing{}, nil
}

// OwnAnswer returns the caller's latest graded attempt for a task.
func (s *Service) OwnAnswer(principal models.Principal, taskID int64) (*models.Answer, error) {
	a, err := s.Store.GetAnswer(taskID, principal.ID)
	if err != nil {
		return nil, err
	}
	if a == nil {
		return nil, ErrNotFound
	}
	return a, nil
}

func (s *Service) resolveTaskChain(taskID int64) (*models.Task, *models.Competition, error) {
	task, err := s.Store.GetTask(taskID)
	if err != nil {
		return nil, nil, err
	}
	if task == nil {
		return nil, nil, ErrNotFound
	}
	c, err := s.Store.GetCompetition(task.CompetitionID)
	if err != nil {
		return nil, nil, err
	}
	if c == nil {
		return nil, nil, ErrNotFound
	}
	return task, c, nil
}
