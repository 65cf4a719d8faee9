package session

// Mode tells the router which backend serves a call.
type Mode int

const (
	Anonymous Mode = iota
	Authenticated
)

func (m Mode) String() string {
	switch m {
	case Authenticated:
		return "authenticated"
	default:
		return "anonymous"
	}
}
