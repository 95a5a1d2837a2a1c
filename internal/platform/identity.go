package platform

import "context"

// StaticIdentity grants the management capability to a fixed set of
// actor IDs, typically operators configured for the ops API.
type StaticIdentity struct {
	members map[string]struct{}
}

func NewStaticIdentity(actorIDs []string) *StaticIdentity {
	members := make(map[string]struct{}, len(actorIDs))
	for _, id := range actorIDs {
		if id != "" {
			members[id] = struct{}{}
		}
	}
	return &StaticIdentity{members: members}
}

func (s *StaticIdentity) HasManagementCapability(_ context.Context, actorID string) (bool, error) {
	_, ok := s.members[actorID]
	return ok, nil
}

// AnyOf combines identity providers; the capability is granted if any
// provider grants it. Provider errors are treated as a denial from that
// provider, not a failure of the lookup.
type AnyOf []IdentityProvider

func (a AnyOf) HasManagementCapability(ctx context.Context, actorID string) (bool, error) {
	for _, provider := range a {
		ok, err := provider.HasManagementCapability(ctx, actorID)
		if err != nil {
			continue
		}
		if ok {
			return true, nil
		}
	}
	return false, nil
}
