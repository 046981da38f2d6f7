package monitor

import (
	"fmt"
	"time"
)

// TrackedEntity is a game server whose status is polled every cycle,
// together with how its card should look.
type TrackedEntity struct {
	ID string
	// Color is "#RRGGBB", empty for the default color
	Color           string
	ShowDescription bool
}

type FailureKind int

const (
	CredentialMissing FailureKind = iota + 1
	ApiError
	InvalidResponse
	NetworkError
	FetchException
)

// Failure describes why the status of one entity could not be fetched.
type Failure struct {
	Kind FailureKind
	// HTTPStatus is only set for ApiError
	HTTPStatus int
}

func (f Failure) String() string {
	switch f.Kind {
	case CredentialMissing:
		return "API Token Missing"
	case ApiError:
		return fmt.Sprintf("API Error %d", f.HTTPStatus)
	case InvalidResponse:
		return "Invalid API Response"
	case NetworkError:
		return "Network/Fetch Error"
	case FetchException:
		return "Fetch Exception"
	default:
		return "Unknown Error"
	}
}

// Label is a short, stable name used in metrics
func (f Failure) Label() string {
	switch f.Kind {
	case CredentialMissing:
		return "credential_missing"
	case ApiError:
		return "api_error"
	case InvalidResponse:
		return "invalid_response"
	case NetworkError:
		return "network_error"
	case FetchException:
		return "fetch_exception"
	default:
		return "unknown"
	}
}

type ServerStatus struct {
	Online     bool
	Players    int
	MaxPlayers int
	// Connect is "connect ip:port" when the address is known
	Connect     string
	Description string
}

// EntityStatus is the result of fetching one tracked entity.
// Exactly one of Server and Failure is set.
type EntityStatus struct {
	EntityID    string
	DisplayName string
	LastUpdate  time.Time
	Server      *ServerStatus
	Failure     *Failure
}

func Succeeded(entityID string, displayName string, at time.Time, server ServerStatus) EntityStatus {
	if displayName == "" {
		displayName = fmt.Sprintf("Server %s", entityID)
	}
	return EntityStatus{EntityID: entityID, DisplayName: displayName, LastUpdate: at, Server: &server}
}

// Failed builds an error status. The display name is synthesized from the
// id so cards can always be rendered.
func Failed(entityID string, at time.Time, failure Failure) EntityStatus {
	return EntityStatus{
		EntityID:    entityID,
		DisplayName: fmt.Sprintf("Server %s (Error)", entityID),
		LastUpdate:  at,
		Failure:     &failure,
	}
}

func (s EntityStatus) IsFailed() bool {
	return s.Failure != nil
}

// LiveMessagePointer locates the single live message. A message id is never
// set without a channel id.
type LiveMessagePointer struct {
	ChannelID string
	MessageID string
}

func (p LiveMessagePointer) IsZero() bool {
	return p.ChannelID == "" && p.MessageID == ""
}

func (p LiveMessagePointer) String() string {
	return fmt.Sprintf("%s/%s", p.ChannelID, p.MessageID)
}
