package gateway

import (
	"time"
)

// IngressType selects how an external encoder feeds a room.
type IngressType string

const (
	IngressTypeRTMP IngressType = "rtmp"
	IngressTypeWHIP IngressType = "whip"
)

// ScheduleEntry is one scheduled occupancy of a room, as returned by the
// schedule gateway. The core only reads it; liveness is recomputed locally
// from StartTime/EndTime rather than trusting IsLive.
type ScheduleEntry struct {
	RoomName       string    `json:"roomName"`
	StartTime      time.Time `json:"startTime"`
	EndTime        time.Time `json:"endTime"`
	Description    string    `json:"description,omitempty"`
	Participants   []string  `json:"participants,omitempty"`
	IsAllDay       bool      `json:"isAllDay,omitempty"`
	RecurrenceRule string    `json:"recurrenceRule,omitempty"`
	IsLive         bool      `json:"isLive,omitempty"`
}

// Credential is the (authToken, roomToken) pair required to activate the
// room surface. Both tokens are opaque; the core only checks non-emptiness.
type Credential struct {
	AuthToken string `json:"authToken"`
	RoomToken string `json:"roomToken"`
}

// Complete reports whether both tokens are present and non-empty.
func (c *Credential) Complete() bool {
	return c != nil && c.AuthToken != "" && c.RoomToken != ""
}

// StreamMetadata carries the host-chosen room options.
type StreamMetadata struct {
	CreatorIdentity    string `json:"creator_identity"`
	EnableChat         bool   `json:"enable_chat"`
	AllowParticipation bool   `json:"allow_participation"`
}

type JoinStreamRequest struct {
	RoomName string `json:"room_name"`
	Identity string `json:"identity"`
}

type CreateStreamRequest struct {
	RoomName string         `json:"room_name"`
	Metadata StreamMetadata `json:"metadata"`
}

type CreateIngressRequest struct {
	RoomName    string         `json:"room_name"`
	IngressType IngressType    `json:"ingress_type"`
	Metadata    StreamMetadata `json:"metadata"`
}

// IngressDetails is what an external-encoder host needs to start pushing
// media, plus the credential for previewing the room as a viewer.
type IngressDetails struct {
	URL        string     `json:"url"`
	StreamKey  string     `json:"streamKey"`
	Credential Credential `json:"credential"`
}

// wire shapes

type connectionDetails struct {
	Token string `json:"token"`
}

type tokenResponse struct {
	AuthToken         string            `json:"auth_token"`
	ConnectionDetails connectionDetails `json:"connection_details"`
}

type ingressInfo struct {
	URL       string `json:"url"`
	StreamKey string `json:"streamKey"`
}

type createIngressResponse struct {
	Ingress           ingressInfo       `json:"ingress"`
	AuthToken         string            `json:"auth_token"`
	ConnectionDetails connectionDetails `json:"connection_details"`
}
