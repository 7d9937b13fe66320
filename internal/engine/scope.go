package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/nestkeeper/nestkeeper/internal/rules"
	"github.com/nestkeeper/nestkeeper/models"
	"github.com/nestkeeper/nestkeeper/store"
)

// Scope is the resolved context a generation pass is anchored to: the
// target entity plus its ownership chain. Exactly one of Room/Trackable
// may be set beyond Home; a home-scope pass carries only Home.
type Scope struct {
	Kind      models.RuleScope
	Home      *models.Home
	Room      *models.Room
	Trackable *models.Trackable
}

// HomeID returns the home id, which every resolved scope has.
func (s *Scope) HomeID() *string {
	if s.Home == nil {
		return nil
	}
	return &s.Home.ID
}

func (s *Scope) RoomID() *string {
	if s.Room == nil {
		return nil
	}
	return &s.Room.ID
}

func (s *Scope) TrackableID() *string {
	if s.Trackable == nil {
		return nil
	}
	return &s.Trackable.ID
}

// AnchorDate picks the date recurrence is computed from: an explicit
// domain event (the trackable's purchase date) when present and sane,
// otherwise now.
func (s *Scope) AnchorDate(now time.Time) time.Time {
	if s.Trackable != nil && s.Trackable.PurchaseDate != nil {
		p := *s.Trackable.PurchaseDate
		if !p.IsZero() && !p.After(now) {
			return p
		}
	}
	return now
}

// Context builds the attribute bag rule conditions are evaluated
// against. Segments that do not apply to the scope kind are absent, so
// exists/not_exists behave as documented.
func (s *Scope) Context() rules.Context {
	ctx := rules.Context{}
	if s.Home != nil {
		ctx[models.TargetHome] = map[string]any{
			"name":         s.Home.Name,
			"year_built":   s.Home.YearBuilt,
			"home_type":    s.Home.HomeType,
			"has_yard":     s.Home.HasYard,
			"climate_zone": s.Home.ClimZone,
		}
	}
	if s.Room != nil {
		ctx[models.TargetRoom] = map[string]any{
			"name":       s.Room.Name,
			"type":       s.Room.Type,
			"floor":      s.Room.Floor,
			"has_window": s.Room.HasWindow,
		}
		// room_detail exposes derived attributes rule authors can match
		// without caring how the user spelled the room type.
		ctx[models.TargetRoomDetail] = map[string]any{
			"canonical_type": rules.CanonicalRoomType(s.Room.Type),
		}
	}
	if s.Trackable != nil {
		seg := map[string]any{
			"name":          s.Trackable.Name,
			"type":          s.Trackable.Type,
			"category":      s.Trackable.Category,
			"brand":         s.Trackable.Brand,
			"model":         s.Trackable.Model,
			"serial_number": s.Trackable.SerialNumber,
			"notes":         s.Trackable.Notes,
		}
		if s.Trackable.PurchaseDate != nil && !s.Trackable.PurchaseDate.IsZero() {
			seg["purchase_date"] = s.Trackable.PurchaseDate.Format("2006-01-02")
			seg["age_years"] = int(time.Since(*s.Trackable.PurchaseDate).Hours() / (24 * 365))
		}
		ctx[models.TargetTrackable] = seg
	}
	return ctx
}

// ResolveScope loads the minimal entity chain for a scope id: the
// entity itself plus its owners, so conditions can reach home
// attributes from a room- or trackable-anchored pass.
func ResolveScope(ctx context.Context, st store.Store, kind models.RuleScope, id string) (*Scope, error) {
	scope := &Scope{Kind: kind}
	switch kind {
	case models.ScopeHome:
		home, err := st.GetHome(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("resolve home scope: %w", err)
		}
		scope.Home = home
	case models.ScopeRoom:
		room, err := st.GetRoom(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("resolve room scope: %w", err)
		}
		scope.Room = room
		home, err := st.GetHome(ctx, room.HomeID)
		if err != nil {
			return nil, fmt.Errorf("resolve room's home: %w", err)
		}
		scope.Home = home
	case models.ScopeTrackable:
		tr, err := st.GetTrackable(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("resolve trackable scope: %w", err)
		}
		scope.Trackable = tr
		home, err := st.GetHome(ctx, tr.HomeID)
		if err != nil {
			return nil, fmt.Errorf("resolve trackable's home: %w", err)
		}
		scope.Home = home
		if tr.RoomID != nil {
			room, err := st.GetRoom(ctx, *tr.RoomID)
			if err != nil {
				return nil, fmt.Errorf("resolve trackable's room: %w", err)
			}
			scope.Room = room
		}
	default:
		return nil, fmt.Errorf("unknown scope kind: %s", kind)
	}
	return scope, nil
}
