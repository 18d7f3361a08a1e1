package domain

// RoomName identifies a broadcast group. A room comes into existence with
// the first join that names it; an empty room is inert.
type RoomName string
