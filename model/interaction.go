package models

import (
	"errors"
	"strings"
	"time"
)

var ErrEmptyComment = errors.New("comment text is empty")

// InteractionRecord is the viewer-local like/comment state of one feed item.
type InteractionRecord struct {
	ID            string    `json:"id"`
	LikeCount     int32     `json:"like_count"`
	LikedByViewer bool      `json:"liked_by_viewer"`
	CommentCount  int32     `json:"comment_count"`
	Comments      []string  `json:"comments"`
	SyncedAt      time.Time `json:"synced_at"`
	Provisional   bool      `json:"provisional"`
}

// Normalize repairs counts that violate the record invariants. A liked record
// always counts the viewer's own like, and counts are never negative.
func (r *InteractionRecord) Normalize() {
	if r.LikeCount < 0 {
		r.LikeCount = 0
	}
	if r.LikedByViewer && r.LikeCount < 1 {
		r.LikeCount = 1
	}
	if r.CommentCount < int32(len(r.Comments)) {
		r.CommentCount = int32(len(r.Comments))
	}
}

// ToggleLike flips the viewer's like and adjusts the count by exactly one.
// It returns the new liked state.
func (r *InteractionRecord) ToggleLike() bool {
	if r.LikedByViewer {
		r.LikedByViewer = false
		r.LikeCount--
	} else {
		r.LikedByViewer = true
		r.LikeCount++
	}
	r.Provisional = true
	return r.LikedByViewer
}

// AddComment appends a comment. Blank text is rejected.
func (r *InteractionRecord) AddComment(text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return ErrEmptyComment
	}
	r.Comments = append(r.Comments, text)
	r.CommentCount++
	r.Provisional = true
	return nil
}

// Clone returns a deep copy safe to hand out of a session.
func (r *InteractionRecord) Clone() InteractionRecord {
	c := *r
	c.Comments = append([]string(nil), r.Comments...)
	return c
}
