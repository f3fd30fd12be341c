package ws

import "sync"

// MembershipIndex keeps the user/group relation in both directions so
// lookups are O(1) either way. Both maps are guarded by one mutex; a user
// appears in a group's member set exactly when the group appears in the
// user's group set. Membership is independent of connectivity: entries are
// only removed when a user actually leaves a group, never on disconnect.
type MembershipIndex struct {
	mu      sync.RWMutex
	byUser  map[int]map[int]struct{}
	byGroup map[int]map[int]struct{}
}

// NewMembershipIndex creates an empty index.
func NewMembershipIndex() *MembershipIndex {
	return &MembershipIndex{
		byUser:  make(map[int]map[int]struct{}),
		byGroup: make(map[int]map[int]struct{}),
	}
}

// AddMember records the user as a member of the group. Adding an existing
// membership is a no-op.
func (m *MembershipIndex) AddMember(userID, groupID int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.addLocked(userID, groupID)
}

// SeedUser records the user's current groups in one pass, used when a
// connection is established and memberships are loaded from storage.
func (m *MembershipIndex) SeedUser(userID int, groupIDs []int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, groupID := range groupIDs {
		m.addLocked(userID, groupID)
	}
}

func (m *MembershipIndex) addLocked(userID, groupID int) {
	if _, ok := m.byUser[userID]; !ok {
		m.byUser[userID] = make(map[int]struct{})
	}
	m.byUser[userID][groupID] = struct{}{}
	if _, ok := m.byGroup[groupID]; !ok {
		m.byGroup[groupID] = make(map[int]struct{})
	}
	m.byGroup[groupID][userID] = struct{}{}
}

// RemoveMember removes both directions of the membership. Empty member and
// group sets are pruned from the index.
func (m *MembershipIndex) RemoveMember(userID, groupID int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if groups, ok := m.byUser[userID]; ok {
		delete(groups, groupID)
		if len(groups) == 0 {
			delete(m.byUser, userID)
		}
	}
	if members, ok := m.byGroup[groupID]; ok {
		delete(members, userID)
		if len(members) == 0 {
			delete(m.byGroup, groupID)
		}
	}
}

// GroupsOf returns a copy of the user's group ids. Unknown users yield an
// empty slice.
func (m *MembershipIndex) GroupsOf(userID int) []int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	groups := make([]int, 0, len(m.byUser[userID]))
	for groupID := range m.byUser[userID] {
		groups = append(groups, groupID)
	}
	return groups
}

// MembersOf returns a copy of the group's member ids. Unknown groups yield
// an empty slice. Callers iterate the copy, so concurrent joins and leaves
// cannot affect a delivery pass already in flight.
func (m *MembershipIndex) MembersOf(groupID int) []int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	members := make([]int, 0, len(m.byGroup[groupID]))
	for userID := range m.byGroup[groupID] {
		members = append(members, userID)
	}
	return members
}
