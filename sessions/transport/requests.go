package transport

// CreateSessionBody starts a watch session for a room
type CreateSessionBody struct {
	// RoomName: 3-64 characters (letters, numbers, hyphens, underscores)
	RoomName string `json:"room_name" binding:"required,roomname"`
}

// SessionURI identifies a watch session in the path
type SessionURI struct {
	SessionID string `uri:"sessionId" binding:"required,sessionid"`
}

// JoinBody carries the viewer display name
type JoinBody struct {
	// Identity: 1-64 printable characters
	Identity string `json:"identity" binding:"required,identity"`
}

// SwitchRoomBody moves the session to another room
type SwitchRoomBody struct {
	RoomName string `json:"room_name" binding:"required,roomname"`
}

// BroadcastURI identifies a broadcast creation flow in the path
type BroadcastURI struct {
	FlowID string `uri:"flowId" binding:"required,sessionid"`
}

// UpdateBroadcastBody carries the broadcast dialog fields
type UpdateBroadcastBody struct {
	RoomName           string `json:"room_name" binding:"omitempty,roomname"`
	Identity           string `json:"identity" binding:"omitempty,identity"`
	EnableChat         *bool  `json:"enable_chat" binding:"omitempty"`
	AllowParticipation *bool  `json:"allow_participation" binding:"omitempty"`
}

// IngressURI identifies an ingress creation flow in the path
type IngressURI struct {
	FlowID string `uri:"flowId" binding:"required,sessionid"`
}

// UpdateIngressBody carries the ingress dialog fields
type UpdateIngressBody struct {
	RoomName           string `json:"room_name" binding:"omitempty,roomname"`
	Identity           string `json:"identity" binding:"omitempty,identity"`
	IngressType        string `json:"ingress_type" binding:"omitempty,ingresstype"`
	EnableChat         *bool  `json:"enable_chat" binding:"omitempty"`
	AllowParticipation *bool  `json:"allow_participation" binding:"omitempty"`
}
