package entity

import (
	"fmt"

	"github.com/jgivc/rsrequest/internal/common"
)

// Status tells the orchestrator what has to happen next to a request.
type Status int

const (
	// StatusUnprocessed: no plugin has attempted resolution yet. The orchestrator
	// dispatches the request to a capable plugin.
	StatusUnprocessed Status = iota
	// StatusNeedParsing: no plugin claimed the request. The orchestrator falls
	// back to a generic extraction path.
	StatusNeedParsing
	// StatusRequireAdd: the plugin recognizes the link but it must be added to a
	// remote service first. The orchestrator calls the plugin Add operation and
	// resolves again.
	StatusRequireAdd
	// StatusIntermediate: partially resolved, another plugin should continue
	// with the updated url and fields.
	StatusIntermediate
	// StatusNeedFileSelection: several file candidates exist. SelectedFile must
	// be set to one of Files and the same plugin invoked again.
	StatusNeedFileSelection
	// StatusFinalPrivate: the url is ready but carries sensitive tokens, it must
	// be served through the orchestrator proxy and never redirected raw.
	StatusFinalPrivate
	// StatusFinalPublic: the url is ready and may be handed out directly.
	StatusFinalPublic
)

// Actor is the party that has to act on a request in a given status.
type Actor int

const (
	ActorNone Actor = iota
	ActorOrchestrator
	ActorUser
)

func (a Actor) String() string {
	return [...]string{"none", "orchestrator", "user"}[a]
}

var statusNames = [...]string{
	"unprocessed",
	"needParsing",
	"requireAdd",
	"intermediate",
	"needFileSelection",
	"finalPrivate",
	"finalPublic",
}

func Statuses() []Status {
	return []Status{
		StatusUnprocessed,
		StatusNeedParsing,
		StatusRequireAdd,
		StatusIntermediate,
		StatusNeedFileSelection,
		StatusFinalPrivate,
		StatusFinalPublic,
	}
}

func ParseStatus(s string) (Status, error) {
	for i, name := range statusNames {
		if name == s {
			return Status(i), nil
		}
	}

	return StatusUnprocessed, fmt.Errorf("%w: %q", common.ErrUnknownStatus, s)
}

func (s Status) String() string {
	if !s.Valid() {
		return fmt.Sprintf("Status(%d)", int(s))
	}

	return statusNames[s]
}

func (s Status) Valid() bool {
	return s >= StatusUnprocessed && s <= StatusFinalPublic
}

// Final reports whether the url of the request is ready to be served.
func (s Status) Final() bool {
	return s == StatusFinalPrivate || s == StatusFinalPublic
}

// Actor returns who is expected to act next. The orchestrator drives every
// protocol step, including the Add call of requireAdd. A file selection may
// be made by the orchestrator itself; ActorUser marks that a choice is pending.
func (s Status) Actor() Actor {
	switch s {
	case StatusUnprocessed, StatusNeedParsing, StatusRequireAdd, StatusIntermediate:
		return ActorOrchestrator
	case StatusNeedFileSelection:
		return ActorUser
	}

	return ActorNone
}

// IntendedTransition reports whether moving from s to next follows the
// resolution protocol. Nothing follows a final status and no plugin sends a
// request back to unprocessed. Other transitions are tolerated by the core;
// callers log them as protocol violations.
func (s Status) IntendedTransition(next Status) bool {
	if !s.Valid() || !next.Valid() {
		return false
	}

	if s.Final() {
		return false
	}

	return next != StatusUnprocessed
}

func (s Status) MarshalText() ([]byte, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("%w: %d", common.ErrUnknownStatus, int(s))
	}

	return []byte(statusNames[s]), nil
}

func (s *Status) UnmarshalText(text []byte) error {
	v, err := ParseStatus(string(text))
	if err != nil {
		return err
	}

	*s = v

	return nil
}
