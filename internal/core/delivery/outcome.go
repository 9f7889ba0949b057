package delivery

// Path is how a delivery reached its recipient
type Path int

const (
	// Failed means neither relay nor push reached the recipient
	Failed Path = iota
	// InSession means the payload was handed to a live session
	InSession
	// ViaPush means the push provider accepted the payload
	ViaPush
)

func (p Path) String() string {
	switch p {
	case InSession:
		return "in_session"
	case ViaPush:
		return "via_push"
	default:
		return "failed"
	}
}

// Outcome is the result of one Deliver call; it is never an error
type Outcome struct {
	Path   Path
	Reason string
}

// Delivered reports whether any path reached the recipient
func (o Outcome) Delivered() bool { return o.Path != Failed }

// failure reasons
const (
	ReasonNoToken     = "no_token"
	ReasonTokenLookup = "token_lookup"
	ReasonPush        = "push_failed"
)
