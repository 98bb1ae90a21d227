package session

import (
	"sync"

	"github.com/vovakirdan/kakaosession/internal/loco"
)

// Identity is the last known display identity of a user.
type Identity struct {
	UserID    int64   `json:"user_id"`
	Nickname  string  `json:"nickname"`
	AvatarURL *string `json:"avatar_url,omitempty"`
}

// IdentityCache maps user ids to identities. Entries are never removed.
type IdentityCache struct {
	mu    sync.RWMutex
	users map[int64]Identity
}

// NewIdentityCache constructs an empty cache.
func NewIdentityCache() *IdentityCache {
	return &IdentityCache{users: make(map[int64]Identity)}
}

// Upsert inserts or updates a user. The nickname is always overwritten;
// the avatar only when a non-nil one is supplied.
func (c *IdentityCache) Upsert(userID int64, nickname string, avatarURL *string) {
	c.apply(userID, func(prev Identity, ok bool) Identity {
		return mergeNickname(userID, prev, ok, nickname, avatarURL)
	})
}

// Lookup returns the cached identity of a user.
func (c *IdentityCache) Lookup(userID int64) (Identity, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	id, ok := c.users[userID]
	return id, ok
}

// Len returns the number of known users.
func (c *IdentityCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.users)
}

// applyEvent merges the identity update carried by ev, if any.
// It reports whether the cache changed.
func (c *IdentityCache) applyEvent(ev loco.Event) bool {
	switch e := ev.(type) {
	case *loco.ChatEvent:
		if e.SenderNickname == nil {
			return false
		}
		nickname := *e.SenderNickname
		c.apply(e.Chat.SenderID, func(prev Identity, ok bool) Identity {
			return mergeNickname(e.Chat.SenderID, prev, ok, nickname, nil)
		})
		return true
	case *loco.ProfileChangedEvent:
		c.apply(e.User.UserID, func(Identity, bool) Identity {
			return fromOpenLinkUser(e.User)
		})
		return true
	default:
		return false
	}
}

// applyRoster overwrites every member of a joined room.
func (c *IdentityCache) applyRoster(members []loco.ChatRoomMember) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, m := range members {
		c.users[m.UserID] = fromRosterMember(m)
	}
}

func (c *IdentityCache) apply(userID int64, merge func(prev Identity, ok bool) Identity) {
	c.mu.Lock()
	defer c.mu.Unlock()
	prev, ok := c.users[userID]
	c.users[userID] = merge(prev, ok)
}

func mergeNickname(userID int64, prev Identity, ok bool, nickname string, avatarURL *string) Identity {
	if !ok {
		return Identity{UserID: userID, Nickname: nickname, AvatarURL: cloneString(avatarURL)}
	}
	prev.Nickname = nickname
	if avatarURL != nil {
		prev.AvatarURL = cloneString(avatarURL)
	}
	return prev
}

func fromOpenLinkUser(u loco.OpenLinkUser) Identity {
	return Identity{UserID: u.UserID, Nickname: u.Nickname, AvatarURL: cloneString(u.ProfileImageURL)}
}

func fromRosterMember(m loco.ChatRoomMember) Identity {
	return Identity{UserID: m.UserID, Nickname: m.Nickname, AvatarURL: cloneString(m.ProfileImageURL)}
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
