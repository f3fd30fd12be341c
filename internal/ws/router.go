package ws

import (
	"encoding/json"
	"log"

	"messaging-service/internal/observability"
)

// Router resolves delivery targets through the registry and membership
// index and forwards already-persisted records to live connections. The
// record is opaque to the router: it is serialized once per call and
// forwarded verbatim. Routing never returns an error to the caller; the
// only failure it handles is a broken transport, which it resolves by
// unregistering the target.
type Router struct {
	registry *Registry
	index    *MembershipIndex
}

// NewRouter constructs a Router over the given registry and index.
func NewRouter(registry *Registry, index *MembershipIndex) *Router {
	return &Router{registry: registry, index: index}
}

// RouteDirect delivers the record to the recipient if connected. Offline
// recipients are skipped: the record is already stored and history covers
// the miss. A failed write is treated as the recipient disconnecting.
func (rt *Router) RouteDirect(senderID, recipientID int, record any) {
	payload, err := json.Marshal(record)
	if err != nil {
		log.Printf("route direct: marshal record: %v", err)
		return
	}
	handle, ok := rt.registry.Handle(recipientID)
	if !ok {
		return
	}
	rt.deliver("direct", recipientID, handle, payload)
}

// RouteGroup delivers the record to every online member of the group,
// skipping the sender when excludeSender is set. The member set is
// snapshotted before iteration. Failures are isolated per member: a dead
// connection is unregistered and delivery continues with the rest.
func (rt *Router) RouteGroup(senderID, groupID int, record any, excludeSender bool) {
	payload, err := json.Marshal(record)
	if err != nil {
		log.Printf("route group: marshal record: %v", err)
		return
	}
	for _, memberID := range rt.index.MembersOf(groupID) {
		if excludeSender && memberID == senderID {
			continue
		}
		handle, ok := rt.registry.Handle(memberID)
		if !ok {
			continue
		}
		rt.deliver("group", memberID, handle, payload)
	}
}

func (rt *Router) deliver(kind string, userID int, handle Handle, payload []byte) {
	if err := handle.Send(payload); err != nil {
		log.Printf("websocket write error for user %d: %v", userID, err)
		rt.registry.UnregisterHandle(userID, handle)
		_ = handle.Close()
		observability.IncRouteSend(kind, "failed")
		return
	}
	observability.IncRouteSend(kind, "delivered")
}
