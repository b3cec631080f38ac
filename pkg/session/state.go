package session

import (
	"encoding/json"
	"strings"

	"github.com/shashiranjanraj/vendordesk/app/models"
)

// State is a snapshot of the session. User and Token are set and cleared
// together.
type State struct {
	User      *models.User
	Token     string
	IsLoading bool
}

// IsAuthenticated is true only when both a token and a user are present.
func (s State) IsAuthenticated() bool {
	return s.Token != "" && s.User != nil
}

// reduceRestore builds the state persisted as rawToken and rawUser. Anything
// missing, undecodable or invalid yields an empty session.
func reduceRestore(rawToken, rawUser string) State {
	token := strings.TrimSpace(rawToken)
	if token == "" || strings.TrimSpace(rawUser) == "" {
		return State{}
	}
	var u models.User
	if err := json.Unmarshal([]byte(rawUser), &u); err != nil {
		return State{}
	}
	if err := u.Validate(); err != nil {
		return State{}
	}
	return State{User: &u, Token: token}
}

// reduceSet replaces both fields at once. The user is copied so later
// changes by the caller do not leak into the store.
func reduceSet(s State, user *models.User, token string) State {
	u := *user
	s.User = &u
	s.Token = token
	return s
}

func reduceClear(s State) State {
	s.User = nil
	s.Token = ""
	return s
}

func reduceLoading(s State, loading bool) State {
	s.IsLoading = loading
	return s
}
