// Package channel provides access control shared by the bot's inbound
// surfaces (long-poll updates, webhooks and inline queries).
package channel

import (
	"strconv"
	"strings"
)

// AllowList controls which users and chats may interact with the bot. An
// empty AllowList permits everyone; configuring either list switches to
// deny-by-default for everything not listed.
type AllowList struct {
	users map[string]struct{}
	chats map[string]struct{}
}

// NewAllowList creates an AllowList with O(1) lookups. User entries are
// numeric Telegram IDs or usernames (with or without a leading @); chat
// entries are numeric chat IDs. Keys are normalized at construction time.
func NewAllowList(users, chats []string) *AllowList {
	a := &AllowList{
		users: make(map[string]struct{}, len(users)),
		chats: make(map[string]struct{}, len(chats)),
	}
	for _, u := range users {
		a.users[normalize(u)] = struct{}{}
	}
	for _, c := range chats {
		a.chats[normalize(c)] = struct{}{}
	}
	return a
}

// Open reports whether the list permits everyone.
func (a *AllowList) Open() bool {
	return a == nil || (len(a.users) == 0 && len(a.chats) == 0)
}

// IsAllowed reports whether a sender may interact with the bot. username may
// be empty; chatID 0 means no chat context (inline queries).
//
// Rules:
//   - If both lists are empty → allow (open access).
//   - If the sender's ID or username matches a user entry → allow.
//   - If the chat's ID matches a chat entry → allow.
//   - Otherwise → deny.
func (a *AllowList) IsAllowed(userID int64, username string, chatID int64) bool {
	if a.Open() {
		return true
	}

	if _, ok := a.users[strconv.FormatInt(userID, 10)]; ok {
		return true
	}
	if username != "" {
		if _, ok := a.users[normalize(username)]; ok {
			return true
		}
	}
	if chatID != 0 {
		if _, ok := a.chats[strconv.FormatInt(chatID, 10)]; ok {
			return true
		}
	}
	return false
}

func normalize(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.TrimPrefix(s, "@")
}
