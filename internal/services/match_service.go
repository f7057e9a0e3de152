package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charlesng35/teamforge/internal/models"
	"github.com/charlesng35/teamforge/internal/store"
	apperrors "github.com/charlesng35/teamforge/pkg/errors"
	"github.com/charlesng35/teamforge/pkg/metrics"
)

// SwipeResult reports whether a swipe completed a mutual match.
type SwipeResult struct {
	Matched bool   `json:"matched"`
	MatchID string `json:"match_id,omitempty"`
}

// MatchService records swipes and materialises mutual matches.
type MatchService struct {
	exec  *store.Executor
	store store.RelationshipStore
}

// NewMatchService constructs a MatchService on top of exec.
func NewMatchService(exec *store.Executor) (*MatchService, error) {
	if exec == nil {
		return nil, errors.New("match service: executor is required")
	}
	return &MatchService{exec: exec, store: exec.Store()}, nil
}

// RecordSwipe stores the swiper's latest direction toward swipee. A LIKE answering
// an existing reverse LIKE yields exactly one Match for the pair, however often or in
// whichever order the likes arrive. A later PASS leaves an existing match in place.
func (s *MatchService) RecordSwipe(ctx context.Context, swiperID, swipeeID string, direction models.SwipeDirection) (*SwipeResult, error) {
	ctx = ensureContext(ctx)

	swiperID = strings.TrimSpace(swiperID)
	swipeeID = strings.TrimSpace(swipeeID)
	if swiperID == "" || swipeeID == "" || swiperID == swipeeID {
		return nil, ErrInvalidPair
	}
	direction, ok := models.ParseSwipeDirection(string(direction))
	if !ok {
		return nil, apperrors.NewBadRequest("direction must be LIKE or PASS")
	}

	result := &SwipeResult{}
	first, second := models.CanonicalPair(swiperID, swipeeID)

	steps := []store.Step{
		{
			Name: "lock_pair",
			Apply: func(ctx context.Context, rs store.RelationshipStore) error {
				for _, id := range []string{first, second} {
					account, err := rs.LockAccount(ctx, id)
					if errors.Is(err, store.ErrNotFound) {
						return ErrInvalidPair
					}
					if err != nil {
						return err
					}
					if !accountUsable(account) {
						return ErrInvalidPair
					}
				}
				return nil
			},
		},
		{
			Name:  "upsert_swipe",
			Write: true,
			Apply: func(ctx context.Context, rs store.RelationshipStore) error {
				return rs.UpsertSwipe(ctx, &models.SwipeEvent{
					SwiperID:  swiperID,
					SwipeeID:  swipeeID,
					Direction: direction,
				})
			},
		},
	}
	if direction == models.SwipeLike {
		steps = append(steps, store.Step{
			Name:  "materialise_match",
			Write: true,
			Apply: func(ctx context.Context, rs store.RelationshipStore) error {
				return s.materialiseMatch(ctx, rs, swiperID, swipeeID, result)
			},
		})
	}

	if _, err := s.exec.Run(ctx, store.Plan{Name: "record_swipe", Steps: steps}); err != nil {
		return nil, err
	}
	return result, nil
}

func (s *MatchService) materialiseMatch(ctx context.Context, rs store.RelationshipStore, swiperID, swipeeID string, result *SwipeResult) error {
	reverse, err := rs.GetSwipe(ctx, swipeeID, swiperID)
	if errors.Is(err, store.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("load reverse swipe: %w", err)
	}
	if reverse.Direction != models.SwipeLike {
		return nil
	}

	existing, err := rs.FindMatch(ctx, swiperID, swipeeID)
	switch {
	case err == nil:
		result.Matched, result.MatchID = true, existing.ID
		return nil
	case !errors.Is(err, store.ErrNotFound):
		return fmt.Errorf("find match: %w", err)
	}

	match := &models.Match{UserAID: swiperID, UserBID: swipeeID, IsActive: true}
	created, err := rs.CreateMatch(ctx, match)
	if err != nil {
		return fmt.Errorf("create match: %w", err)
	}
	if !created {
		// Lost the race; the unique index holds the winner's row.
		existing, err = rs.FindMatch(ctx, swiperID, swipeeID)
		if err != nil {
			return fmt.Errorf("find match: %w", err)
		}
		match = existing
	} else {
		metrics.MatchesCreated.Inc()
		recordAudit(AuditEntry{Action: "match.create", Actor: swiperID, Resource: match.ID, Result: "success",
			Metadata: map[string]any{"user_a_id": match.UserAID, "user_b_id": match.UserBID}})
	}

	result.Matched, result.MatchID = true, match.ID
	return nil
}

// ListMatches returns the active matches the account takes part in.
func (s *MatchService) ListMatches(ctx context.Context, accountID string) ([]models.Match, error) {
	ctx = ensureContext(ctx)
	if _, err := loadActiveAccount(ctx, s.store, accountID); err != nil {
		return nil, err
	}
	matches, err := s.store.ListMatches(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("match service: list matches: %w", err)
	}
	return matches, nil
}
