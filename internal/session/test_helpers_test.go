package session

import (
	"context"
	"sync"
	"testing"

	"github.com/rs/zerolog"

	"github.com/vovakirdan/kakaosession/internal/loco"
)

// fakeConn records calls and answers with canned responses.
type fakeConn struct {
	mu    sync.Mutex
	calls map[string]int

	joinInfo    *loco.JoinInfoResponse
	joinInfoErr error
	checkJoin   *loco.CheckJoinResponse
	checkErr    error
	joinLink    *loco.JoinLinkResponse
	joinLinkErr error
	write       *loco.WriteResponse
	writeErr    error
	deleteErr   error
	hideErr     error
	kickErr     error
	chatLogs    *loco.ChatLogsResponse
	chatLogsErr error

	lastCheck    loco.CheckJoinRequest
	lastJoinLink loco.JoinLinkRequest
	lastWrite    loco.WriteRequest
	lastLogs     loco.ChatLogsRequest
	closed       bool
}

func newFakeConn() *fakeConn {
	return &fakeConn{calls: make(map[string]int)}
}

func (f *fakeConn) record(method string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[method]++
}

func (f *fakeConn) count(method string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[method]
}

func (f *fakeConn) JoinInfo(_ context.Context, _ loco.JoinInfoRequest) (*loco.JoinInfoResponse, error) {
	f.record(loco.MethodJoinInfo)
	return f.joinInfo, f.joinInfoErr
}

func (f *fakeConn) CheckJoin(_ context.Context, req loco.CheckJoinRequest) (*loco.CheckJoinResponse, error) {
	f.record(loco.MethodCheckJoin)
	f.lastCheck = req
	return f.checkJoin, f.checkErr
}

func (f *fakeConn) JoinLink(_ context.Context, req loco.JoinLinkRequest) (*loco.JoinLinkResponse, error) {
	f.record(loco.MethodJoinLink)
	f.lastJoinLink = req
	return f.joinLink, f.joinLinkErr
}

func (f *fakeConn) Write(_ context.Context, req loco.WriteRequest) (*loco.WriteResponse, error) {
	f.record(loco.MethodWrite)
	f.lastWrite = req
	return f.write, f.writeErr
}

func (f *fakeConn) DeleteMsg(context.Context, loco.DeleteMsgRequest) error {
	f.record(loco.MethodDeleteMsg)
	return f.deleteErr
}

func (f *fakeConn) HideMsg(context.Context, loco.HideMsgRequest) error {
	f.record(loco.MethodRewrite)
	return f.hideErr
}

func (f *fakeConn) KickMember(context.Context, loco.KickMemberRequest) error {
	f.record(loco.MethodKickMember)
	return f.kickErr
}

func (f *fakeConn) ChatLogs(_ context.Context, req loco.ChatLogsRequest) (*loco.ChatLogsResponse, error) {
	f.record(loco.MethodChatLogs)
	f.lastLogs = req
	return f.chatLogs, f.chatLogsErr
}

func (f *fakeConn) Close() error {
	f.closed = true
	return nil
}

func newTestSession(t *testing.T, conn Conn, events <-chan loco.Event) *Session {
	t.Helper()

	logger := zerolog.Nop()
	return New(conn, events, map[int64]loco.ChannelData{
		18384565413113921: {ChatID: 18384565413113921, Kind: loco.ChannelOpen, LinkID: 283608594},
	}, &logger)
}

func strPtr(s string) *string { return &s }
