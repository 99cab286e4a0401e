package model

import (
	"time"

	"github.com/google/uuid"
)

// RequestKind names the relationship a request establishes.
type RequestKind string

const (
	RequestKindCourse  RequestKind = "course"  // student -> course
	RequestKindTeacher RequestKind = "teacher" // student -> teacher
)

// Request status constants
const (
	RequestStatusPending  = "pending"
	RequestStatusApproved = "approved"
	RequestStatusRejected = "rejected"
	RequestStatusCanceled = "canceled"
)

// EnrollmentRequest is the shared four-state workflow for student-course
// and student-teacher relationships. Only pending requests transition;
// approved, rejected and canceled are terminal.
type EnrollmentRequest struct {
	ID                  uuid.UUID   `json:"id"`
	Kind                RequestKind `json:"kind"`
	RequesterID         int64       `json:"requester_id"`
	TargetID            int64       `json:"target_id"`
	Status              string      `json:"status"`
	Message             string      `json:"message"`
	CreatedAt           time.Time   `json:"created_at"`
	ProcessedAt         *time.Time  `json:"processed_at"`
	ProcessedByMemberID *int64      `json:"processed_by_member_id"`
}

// IsPending checks if the request may still transition.
func (r *EnrollmentRequest) IsPending() bool {
	return r.Status == RequestStatusPending
}

// IsApproved checks if the request was approved.
func (r *EnrollmentRequest) IsApproved() bool {
	return r.Status == RequestStatusApproved
}

// IsRejected checks if the request was rejected.
func (r *EnrollmentRequest) IsRejected() bool {
	return r.Status == RequestStatusRejected
}

// IsCanceled checks if the requester withdrew the request.
func (r *EnrollmentRequest) IsCanceled() bool {
	return r.Status == RequestStatusCanceled
}
