package module

import (
	"kydu/internal/core/delivery"
	dom "kydu/internal/services/delivery/domain"
)

// Ports holds the ports exposed by the delivery module
type Ports struct {
	Worker   dom.WorkerPort
	Notifier dom.NotifierPort
	Presence dom.PresencePort
}

// Needs are the collaborators the delivery module is built from
type Needs struct {
	// Directory is required; accounts provides it
	Directory dom.Directory

	// Pusher overrides the PUSH_PROVIDER selection
	Pusher delivery.Pusher
}
