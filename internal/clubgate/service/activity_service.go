package service

import (
	"context"
	"fmt"
	"time"

	"github.com/champions-academy/clubgate/internal/clubgate/store"
	"github.com/champions-academy/clubgate/internal/clubgate/types"
)

// ActivityService serves the read-only check-in and audit feeds.
type ActivityService struct {
	checkins store.CheckinStore
	audit    store.AuditStore
}

func NewActivityService(checkins store.CheckinStore, audit store.AuditStore) *ActivityService {
	return &ActivityService{checkins: checkins, audit: audit}
}

func (s *ActivityService) RecentCheckins(ctx context.Context, limit int) ([]types.CheckinEntry, error) {
	recs, err := s.checkins.ListRecent(ctx, store.ClampLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("RecentCheckins: %w", err)
	}
	out := make([]types.CheckinEntry, 0, len(recs))
	for _, r := range recs {
		out = append(out, types.CheckinEntry{
			ID:        r.ID,
			MemberID:  r.MemberID,
			ScannedAt: r.ScannedAt.UTC().Format(time.RFC3339Nano),
			Source:    r.Source,
			Location:  r.Location,
		})
	}
	return out, nil
}

func (s *ActivityService) RecentAudit(ctx context.Context, limit int) ([]types.AuditEntry, error) {
	recs, err := s.audit.ListRecent(ctx, store.ClampLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("RecentAudit: %w", err)
	}
	out := make([]types.AuditEntry, 0, len(recs))
	for _, r := range recs {
		out = append(out, types.AuditEntry{
			ID:        r.ID,
			Actor:     r.Actor,
			Action:    r.Action,
			Entity:    r.Entity,
			EntityID:  r.EntityID,
			Meta:      r.Meta,
			CreatedAt: r.CreatedAt.UTC().Format(time.RFC3339Nano),
		})
	}
	return out, nil
}
