package loco

import "encoding/json"

// Packet is the envelope exchanged with the gateway in both directions.
// Requests carry an id >= 1 that the gateway echoes in the response;
// server pushes always carry id 0.
type Packet struct {
	ID     int32           `json:"id"`
	Status int             `json:"status"`
	Method string          `json:"method"`
	Data   json.RawMessage `json:"data,omitempty"`
}

const (
	// StatusOK is the only status treated as success.
	StatusOK = 0

	pushID int32 = 0
)

// Request methods.
const (
	MethodLoginList  = "LOGINLIST"
	MethodJoinInfo   = "JOININFO"
	MethodCheckJoin  = "CHECKJOIN"
	MethodJoinLink   = "JOINLINK"
	MethodWrite      = "WRITE"
	MethodDeleteMsg  = "DELETEMSG"
	MethodRewrite    = "REWRITE"
	MethodKickMember = "KICKMEM"
	MethodChatLogs   = "MCHATLOGS"
)

// Push methods.
const (
	PushMsg        = "MSG"
	PushDecUnread  = "DECUNREAD"
	PushSyncLinkPf = "SYNCLINKPF"
	PushKickout    = "KICKOUT"
)

// IsPush reports whether the packet was initiated by the server.
func (p Packet) IsPush() bool {
	return p.ID == pushID
}
