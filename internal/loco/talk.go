package loco

import "context"

// LoginList authenticates the connection and returns the channel snapshot.
func (c *Client) LoginList(ctx context.Context, req LoginListRequest) (*LoginListResponse, error) {
	var resp LoginListResponse
	if err := c.Request(ctx, MethodLoginList, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// JoinInfo resolves an invitation link into open link metadata.
func (c *Client) JoinInfo(ctx context.Context, req JoinInfoRequest) (*JoinInfoResponse, error) {
	var resp JoinInfoResponse
	if err := c.Request(ctx, MethodJoinInfo, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// CheckJoin exchanges a passcode for a join token.
func (c *Client) CheckJoin(ctx context.Context, req CheckJoinRequest) (*CheckJoinResponse, error) {
	var resp CheckJoinResponse
	if err := c.Request(ctx, MethodCheckJoin, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// JoinLink joins an open channel.
func (c *Client) JoinLink(ctx context.Context, req JoinLinkRequest) (*JoinLinkResponse, error) {
	var resp JoinLinkResponse
	if err := c.Request(ctx, MethodJoinLink, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Write sends a chat.
func (c *Client) Write(ctx context.Context, req WriteRequest) (*WriteResponse, error) {
	var resp WriteResponse
	if err := c.Request(ctx, MethodWrite, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// DeleteMsg deletes a chat for every member.
func (c *Client) DeleteMsg(ctx context.Context, req DeleteMsgRequest) error {
	return c.Request(ctx, MethodDeleteMsg, req, nil)
}

// HideMsg hides a chat in an open channel.
func (c *Client) HideMsg(ctx context.Context, req HideMsgRequest) error {
	return c.Request(ctx, MethodRewrite, req, nil)
}

// KickMember removes a member from an open channel.
func (c *Client) KickMember(ctx context.Context, req KickMemberRequest) error {
	return c.Request(ctx, MethodKickMember, req, nil)
}

// ChatLogs fetches chat logs newer than the given cursors.
func (c *Client) ChatLogs(ctx context.Context, req ChatLogsRequest) (*ChatLogsResponse, error) {
	var resp ChatLogsResponse
	if err := c.Request(ctx, MethodChatLogs, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
