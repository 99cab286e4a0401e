package model

import "time"

type MemberRole string

const (
	MemberRoleStudent MemberRole = "student"
	MemberRoleTeacher MemberRole = "teacher"
	MemberRoleStaff   MemberRole = "staff"
)

type Member struct {
	ID        int64      `json:"id"`
	BranchID  int64      `json:"branch_id"`
	FullName  string     `json:"full_name"`
	Role      MemberRole `json:"role"`
	CreatedAt time.Time  `json:"created_at"`
}

// IsTeacher checks if the member owns clinic sessions.
func (m *Member) IsTeacher() bool {
	return m.Role == MemberRoleTeacher
}

// CanDecide checks if the member may approve or reject requests.
func (m *Member) CanDecide() bool {
	return m.Role == MemberRoleStaff || m.Role == MemberRoleTeacher
}
