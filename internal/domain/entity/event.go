package entity

import "time"

// Team event types published on the team events channel
const (
	EventMemberJoined        = "member.joined"
	EventMemberQuit          = "member.quit"
	EventTeamCreated         = "team.created"
	EventTeamDeleted         = "team.deleted"
	EventTeamDissolved       = "team.dissolved"
	EventTeamLeaderChanged   = "team.leader_changed"
	EventTeamCapacityChanged = "team.capacity_changed"
)

// TeamEvent notifies subscribers of a membership change
type TeamEvent struct {
	Type       string    `json:"type"`
	TeamID     int64     `json:"team_id"`
	UserID     int64     `json:"user_id"`
	NewLeader  int64     `json:"new_leader,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}
