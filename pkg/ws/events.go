package ws

import "github.com/wonguwon/jwt-login/pkg/model"

type EventKind string

const (
	// EventOpened fires once the live connection is established.
	EventOpened EventKind = "opened"

	// EventFrame carries one decoded inbound message.
	EventFrame EventKind = "frame"

	// EventClosed fires after a deliberate disconnect completes.
	EventClosed EventKind = "closed"

	// EventLost fires when the transport failed and every redial attempt
	// was exhausted. Distinct from EventClosed: the stream died, the user
	// did not leave.
	EventLost EventKind = "lost"
)

// Event is one lifecycle or delivery notification from the connection
// manager. The event channel closes once the manager reaches its final
// Disconnected state.
type Event struct {
	Kind    EventKind
	Message model.ChatMessage // set for EventFrame
	Err     error             // set for EventLost
}
