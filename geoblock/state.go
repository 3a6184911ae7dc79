package geoblock

// State is the geoblock state of one session. The zero value is the initial, unresolved state.
type State struct {
	Blocked         Status `json:"blocked"`
	WalletConnected bool   `json:"walletConnected"`
}

type EventKind int

const (
	EventOverride EventKind = iota
	EventResolved
	EventWalletConnected
	EventWalletDisconnected
)

type Event struct {
	Kind   EventKind
	Status Status // set for EventResolved
}

func OverrideEvent() Event {
	return Event{Kind: EventOverride}
}

func ResolvedEvent(status Status) Event {
	return Event{Kind: EventResolved, Status: status}
}

func WalletEvent(connected bool) Event {
	if connected {
		return Event{Kind: EventWalletConnected}
	}
	return Event{Kind: EventWalletDisconnected}
}

// Reduce returns the state after applying ev. An override forces not-blocked. A resolution only
// ever writes the blocked status, so no lookup result moves a blocked session back; not-blocked and
// unknown results leave the state as it is.
func Reduce(s State, ev Event) State {
	switch ev.Kind {
	case EventOverride:
		s.Blocked = StatusNotBlocked
	case EventResolved:
		if ev.Status == StatusBlocked {
			s.Blocked = StatusBlocked
		}
	case EventWalletConnected:
		s.WalletConnected = true
	case EventWalletDisconnected:
		s.WalletConnected = false
	}
	return s
}

// NeedsDisconnect reports whether moving from prev to next entered the blocked-while-connected state.
func NeedsDisconnect(prev, next State) bool {
	entered := next.Blocked == StatusBlocked && next.WalletConnected
	was := prev.Blocked == StatusBlocked && prev.WalletConnected
	return entered && !was
}
