// Package reminders is the instruction intake path: parse an instruction,
// enforce the future-instant post-conditions, persist the record and arm its
// timer.
package reminders

import (
	"context"
	"fmt"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/lifeline-bot/companion/internal/models"
	"github.com/lifeline-bot/companion/internal/parser"
	"github.com/lifeline-bot/companion/internal/recurrence"
	"github.com/lifeline-bot/companion/internal/repository"
	"github.com/lifeline-bot/companion/internal/scheduler"
)

type Service struct {
	parser   *parser.Parser
	resolver *recurrence.Resolver
	store    repository.Store
	engine   *scheduler.Engine
	clk      clock.Clock
	loc      *time.Location
	log      zerolog.Logger
}

func NewService(p *parser.Parser, resolver *recurrence.Resolver, store repository.Store, engine *scheduler.Engine, clk clock.Clock, loc *time.Location, log zerolog.Logger) *Service {
	return &Service{
		parser:   p,
		resolver: resolver,
		store:    store,
		engine:   engine,
		clk:      clk,
		loc:      loc,
		log:      log.With().Str("comp", "intake").Logger(),
	}
}

// CreateFromInstruction turns one instruction into an armed reminder. The
// returned *parser.Error values are user-recoverable and should be rendered
// as clarification prompts; any other error is a storage failure.
func (s *Service) CreateFromInstruction(ctx context.Context, recipient, instruction string) (*models.Reminder, error) {
	now := s.clk.Now().In(s.loc)

	res, err := s.parser.Parse(instruction, now)
	if err != nil {
		return nil, err
	}

	fireAt := res.FireAt
	if res.Recurrence.None() {
		// Post-conditions the parser leaves to the caller.
		if fireAt.IsZero() {
			return nil, &parser.Error{Kind: parser.FailInvalidDate, Instruction: instruction}
		}
		if !fireAt.After(now) {
			return nil, &parser.Error{Kind: parser.FailPastDate, Instruction: instruction}
		}
	} else {
		// The first occurrence of a recurring rule comes from the resolver,
		// so it is strictly in the future by construction.
		fireAt, err = s.resolver.Next(res.Recurrence, now)
		if err != nil {
			return nil, fmt.Errorf("first occurrence: %w", err)
		}
	}

	rec := &models.Reminder{
		ID:         uuid.NewString(),
		Recipient:  recipient,
		Task:       res.Task,
		FireAt:     fireAt,
		Recurrence: res.Recurrence,
		State:      models.StatePending,
		CreatedAt:  now,
	}

	if err := s.store.Insert(ctx, rec); err != nil {
		return nil, fmt.Errorf("persist reminder: %w", err)
	}
	s.engine.Arm(rec)

	s.log.Info().
		Str("id", rec.ID).
		Str("recipient", recipient).
		Time("fire_at", rec.FireAt).
		Str("recurrence", string(rec.Recurrence.Kind)).
		Msg("reminder created")
	return rec, nil
}

// ListUpcoming returns the recipient's pending future reminders, soonest
// first.
func (s *Service) ListUpcoming(ctx context.Context, recipient string) ([]*models.Reminder, error) {
	all, err := s.store.ListByRecipient(ctx, recipient)
	if err != nil {
		return nil, fmt.Errorf("list reminders: %w", err)
	}

	now := s.clk.Now()
	var out []*models.Reminder
	for _, rec := range all {
		if rec.State == models.StatePending && rec.FireAt.After(now) {
			out = append(out, rec)
		}
	}
	return out, nil
}
