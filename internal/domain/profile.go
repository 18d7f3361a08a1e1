package domain

import "time"

// Profile is the persistent user record, keyed by mobile number.
type Profile struct {
	ID       string    `json:"id"`
	MobileNo string    `json:"mobileNo"`
	DOB      time.Time `json:"DOB"`
	Name     string    `json:"name"`
	Gender   string    `json:"gender"`
	Avatar   string    `json:"avatar"`
	Interest []string  `json:"interest"`
}

// ProfileCard is the summary shape returned by list endpoints
// (friends, requests, blocked, online users, call history).
type ProfileCard struct {
	Name     string `json:"name"`
	Avatar   string `json:"avatar"`
	MobileNo string `json:"mobileNo"`
}

// ChatMessage is one entry of a pairwise message thread.
type ChatMessage struct {
	Msg      string `json:"msg"`
	MobileNo string `json:"mobileNo"`
}
