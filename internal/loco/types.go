package loco

// ChatType identifies the kind of chat content.
type ChatType int

const (
	ChatTypeFeed  ChatType = 0
	ChatTypeText  ChatType = 1
	ChatTypePhoto ChatType = 2
	ChatTypeVideo ChatType = 3
	ChatTypeFile  ChatType = 18
	ChatTypeReply ChatType = 26
)

// Chat is an outgoing chat message.
type Chat struct {
	Type       ChatType `json:"type"`
	Message    string   `json:"message,omitempty"`
	Attachment string   `json:"attachment,omitempty"` // JSON encoded attachment object
	Supplement string   `json:"supplement,omitempty"`
	MessageID  int64    `json:"msgId"`
}

// Chatlog is a chat message persisted by the server.
type Chatlog struct {
	LogID      int64    `json:"logId"`
	PrevLogID  int64    `json:"prevId,omitempty"`
	ChatID     int64    `json:"chatId"`
	Type       ChatType `json:"type"`
	SenderID   int64    `json:"authorId"`
	Message    string   `json:"message,omitempty"`
	SendAt     int64    `json:"sendAt"` // unix seconds
	Attachment string   `json:"attachment,omitempty"`
	Supplement string   `json:"supplement,omitempty"`
	MessageID  int64    `json:"msgId"`
}

// OpenLink describes an open chat link as returned by JOININFO.
type OpenLink struct {
	LinkID      int64  `json:"li"`
	OpenToken   int32  `json:"otk"`
	Name        string `json:"ln"`
	URL         string `json:"lu"`
	ImageURL    string `json:"liu,omitempty"`
	LinkType    int32  `json:"lt"`
	Description string `json:"desc,omitempty"`
	Searchable  bool   `json:"sc,omitempty"`
}

// OpenLinkUser is a user profile inside an open channel.
type OpenLinkUser struct {
	UserID          int64   `json:"userId"`
	Nickname        string  `json:"nn"`
	ProfileImageURL *string `json:"pi,omitempty"`
	FullImageURL    *string `json:"fpi,omitempty"`
	ProfileType     int32   `json:"ptp"`
	MemberType      int32   `json:"lmt"`
}

// ChatRoomMember is a roster entry returned on channel join.
type ChatRoomMember struct {
	UserID          int64   `json:"userId"`
	Nickname        string  `json:"nickName"`
	ProfileImageURL *string `json:"pi,omitempty"`
	Type            int32   `json:"type"`
}

// ChatRoom is the channel description returned by JOINLINK.
type ChatRoom struct {
	ChatID  int64            `json:"chatId"`
	Type    string           `json:"type"`
	Members []ChatRoomMember `json:"members"`
}

// ChannelKind separates regular channels from open-link channels.
type ChannelKind int

const (
	ChannelNormal ChannelKind = iota
	ChannelOpen
)

func (k ChannelKind) String() string {
	switch k {
	case ChannelNormal:
		return "normal"
	case ChannelOpen:
		return "open"
	default:
		return "unknown"
	}
}

// ChannelData is one entry of the channel snapshot taken at login.
type ChannelData struct {
	ChatID      int64       `json:"chatId"`
	Type        string      `json:"type"`
	Kind        ChannelKind `json:"kind"`
	Title       string      `json:"title,omitempty"`
	MemberCount int         `json:"memberCount"`
	LastLogID   int64       `json:"lastLogId"`
	LinkID      int64       `json:"li,omitempty"` // open channels only
}

// LoginListRequest authenticates the connection with an OAuth token.
type LoginListRequest struct {
	OAuthToken string `json:"oauthToken"`
	DeviceUUID string `json:"duuid"`
	OS         string `json:"os"`
	NetType    int    `json:"ntype"`
	AppVersion string `json:"appVer"`
	Language   string `json:"lang"`
}

// LoginListResponse carries the account id and the initial channel list.
type LoginListResponse struct {
	UserID    int64         `json:"userId"`
	ChatDatas []ChannelData `json:"chatDatas"`
}

// JoinInfoRequest resolves an invitation link.
type JoinInfoRequest struct {
	LinkURL string `json:"lu"`
	Referer string `json:"ref"`
}

// JoinInfoResponse describes the link behind an invitation URL.
type JoinInfoResponse struct {
	OpenLink OpenLink `json:"ol"`
}

// CheckJoinRequest verifies a channel passcode.
type CheckJoinRequest struct {
	LinkID   int64  `json:"li"`
	Passcode string `json:"pc"`
}

// CheckJoinResponse carries the single-use join token.
type CheckJoinResponse struct {
	Token string `json:"tk"`
}

// ProfileTypeKakaoAnon joins with an anonymous nickname profile.
const ProfileTypeKakaoAnon = 2

// JoinProfile is the display profile presented on join.
type JoinProfile struct {
	ProfileType int     `json:"ptp"`
	Nickname    string  `json:"nn"`
	ProfilePath *string `json:"pp,omitempty"`
}

// JoinLinkRequest joins an open channel.
type JoinLinkRequest struct {
	LinkID  int64       `json:"li"`
	Referer string      `json:"ref"`
	Profile JoinProfile `json:"profile"`
	Token   *string     `json:"tk,omitempty"`
}

// JoinLinkResponse contains the joined room and its roster.
type JoinLinkResponse struct {
	OpenLink OpenLink `json:"ol"`
	ChatRoom ChatRoom `json:"chatRoom"`
}

// WriteRequest sends a chat to a channel.
type WriteRequest struct {
	ChatID     int64    `json:"chatId"`
	Type       ChatType `json:"type"`
	MessageID  int64    `json:"msgId"`
	Message    string   `json:"msg,omitempty"`
	NoSeen     bool     `json:"noSeen"`
	Attachment string   `json:"extra,omitempty"`
	Supplement string   `json:"supplement,omitempty"`
}

// WriteResponse is the persisted chat.
type WriteResponse struct {
	ChatID  int64   `json:"chatId"`
	LogID   int64   `json:"logId"`
	Chatlog Chatlog `json:"chatLog"`
}

// DeleteMsgRequest deletes a message for everyone.
type DeleteMsgRequest struct {
	ChatID int64 `json:"chatId"`
	LogID  int64 `json:"logId"`
}

// HideMsgRequest hides a message inside an open channel.
type HideMsgRequest struct {
	LinkID   int64    `json:"li"`
	ChatID   int64    `json:"c"`
	LogID    int64    `json:"logId"`
	ChatType ChatType `json:"t"`
}

// KickMemberRequest removes a member from an open channel.
type KickMemberRequest struct {
	LinkID int64 `json:"li"`
	ChatID int64 `json:"c"`
	UserID int64 `json:"mid"`
}

// ChatLogsRequest fetches chat logs newer than the given cursors.
type ChatLogsRequest struct {
	ChatIDs []int64 `json:"chatIds"`
	Sinces  []int64 `json:"sinces"`
}

// ChatLogsResponse is a single bounded page of chat logs.
type ChatLogsResponse struct {
	ChatLogs []Chatlog `json:"chatLogs"`
}
