package ws

// Hub bundles the connection registry, the membership index and the router
// for one routing instance. A single hub is constructed at startup and
// passed to every handler; tests create as many independent hubs as they
// need.
type Hub struct {
	Registry *Registry
	Index    *MembershipIndex
	Router   *Router
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	registry := NewRegistry()
	index := NewMembershipIndex()
	return &Hub{
		Registry: registry,
		Index:    index,
		Router:   NewRouter(registry, index),
	}
}

// OnJoin records a membership added by group management (group creation,
// member add). Safe to call for offline users.
func (h *Hub) OnJoin(userID, groupID int) {
	h.Index.AddMember(userID, groupID)
}

// OnLeave records a membership removed by group management (leave, remove,
// group deletion).
func (h *Hub) OnLeave(userID, groupID int) {
	h.Index.RemoveMember(userID, groupID)
}
