package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/riskibarqy/fan-identity/internal/domain/tag"
	"github.com/riskibarqy/fan-identity/internal/platform/logging"
)

type TagService struct {
	tags        tag.Repository
	userTags    tag.UserTagRepository
	cascade     bool
	invalidator cacheInvalidator
	locks       userLocks
	logger      *logging.Logger
	now         func() time.Time
}

func NewTagService(
	tags tag.Repository,
	userTags tag.UserTagRepository,
	cascadeRemove bool,
	invalidator cacheInvalidator,
	logger *logging.Logger,
) *TagService {
	if invalidator == nil {
		invalidator = noopInvalidator{}
	}
	if logger == nil {
		logger = logging.Default()
	}

	return &TagService{
		tags:        tags,
		userTags:    userTags,
		cascade:     cascadeRemove,
		invalidator: invalidator,
		logger:      logger,
		now:         time.Now,
	}
}

func (s *TagService) ListTags(ctx context.Context) ([]tag.Tag, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.TagService.ListTags")
	defer span.End()

	tags, err := s.tags.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list tags: %w", err)
	}
	return tags, nil
}

// TagsByType lists tags of one type under parentID. An empty parentID lists
// root tags.
func (s *TagService) TagsByType(ctx context.Context, rawType, parentID string) ([]tag.Tag, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.TagService.TagsByType",
		attribute.String("tag_type", rawType),
	)
	defer span.End()

	typ, ok := tag.ParseType(strings.TrimSpace(rawType))
	if !ok {
		return nil, fmt.Errorf("%w: %v: %q", ErrInvalidInput, tag.ErrUnknownType, rawType)
	}

	tags, err := s.tags.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list tags: %w", err)
	}
	return tag.FilterByType(tags, typ, strings.TrimSpace(parentID)), nil
}

func (s *TagService) ListUserTags(ctx context.Context, userID string) ([]tag.UserTag, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, fmt.Errorf("%w: user_id is required", ErrInvalidInput)
	}

	items, err := s.userTags.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list user tags: %w", err)
	}
	return items, nil
}

func (s *TagService) Preferences(ctx context.Context, userID string) (tag.Preferences, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.TagService.Preferences")
	defer span.End()

	items, err := s.ListUserTags(ctx, userID)
	if err != nil {
		return tag.Preferences{}, err
	}
	return tag.ResolvePreferences(items), nil
}

// SelectTag makes tagID the user's choice at its level. Ancestors are
// selected with it, tags already held under it stay, and anything else at or
// below its level is replaced.
func (s *TagService) SelectTag(ctx context.Context, userID, tagID string) ([]tag.UserTag, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.TagService.SelectTag",
		attribute.String("tag_id", tagID),
	)
	defer span.End()

	userID = strings.TrimSpace(userID)
	tagID = strings.TrimSpace(tagID)
	if userID == "" || tagID == "" {
		return nil, fmt.Errorf("%w: user_id and tag_id are required", ErrInvalidInput)
	}

	catalog, err := s.catalog(ctx)
	if err != nil {
		return nil, err
	}
	target, ok := catalog[tagID]
	if !ok {
		return nil, fmt.Errorf("%w: tag id=%s", ErrNotFound, tagID)
	}

	unlock := s.locks.lock(userID)
	defer unlock()

	current, err := s.userTags.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list user tags: %w", err)
	}

	next, err := tag.Select(current, catalog, userID, target, s.now().UTC())
	if err != nil {
		if errors.Is(err, tag.ErrTagNotFound) {
			return nil, fmt.Errorf("%w: %v", ErrNotFound, err)
		}
		return nil, fmt.Errorf("select tag: %w", err)
	}
	if err := s.userTags.ReplaceForUser(ctx, userID, next); err != nil {
		return nil, fmt.Errorf("save user tags: %w", err)
	}
	s.invalidator.Invalidate(ctx)

	s.logger.InfoContext(ctx, "tag selected", "user_id", userID, "tag_id", tagID, "tag_type", target.Type)
	return next, nil
}

// RemoveTag drops tagID from the user's selection. Removing a tag the user
// does not hold is a no-op.
func (s *TagService) RemoveTag(ctx context.Context, userID, tagID string) ([]tag.UserTag, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.TagService.RemoveTag",
		attribute.String("tag_id", tagID),
	)
	defer span.End()

	userID = strings.TrimSpace(userID)
	tagID = strings.TrimSpace(tagID)
	if userID == "" || tagID == "" {
		return nil, fmt.Errorf("%w: user_id and tag_id are required", ErrInvalidInput)
	}

	unlock := s.locks.lock(userID)
	defer unlock()

	current, err := s.userTags.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list user tags: %w", err)
	}

	next := tag.Remove(current, tagID, s.cascade)
	if len(next) == len(current) {
		return next, nil
	}
	if err := s.userTags.ReplaceForUser(ctx, userID, next); err != nil {
		return nil, fmt.Errorf("save user tags: %w", err)
	}
	s.invalidator.Invalidate(ctx)

	s.logger.InfoContext(ctx, "tag removed",
		"user_id", userID,
		"tag_id", tagID,
		"cascade", s.cascade,
		"removed", len(current)-len(next),
	)
	return next, nil
}

func (s *TagService) catalog(ctx context.Context) (map[string]tag.Tag, error) {
	tags, err := s.tags.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list tags: %w", err)
	}
	out := make(map[string]tag.Tag, len(tags))
	for _, t := range tags {
		out[t.ID] = t
	}
	return out, nil
}
