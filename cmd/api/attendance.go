package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"classtrack/internal/attendance"
	"classtrack/internal/auth"
	"classtrack/internal/queue"
)

func (a *api) registerAttendanceRoutes(g *gin.RouterGroup) {
	g.POST("/attendance", a.handleMarkAttendance)
	g.GET("/dashboard", a.handleDashboard)
}

func (a *api) handleMarkAttendance(c *gin.Context) {
	var req struct {
		SessionID string `json:"session_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	record, err := a.att.Mark(c.Request.Context(), auth.AccountID(c), req.SessionID, time.Now(), attendance.ProvenanceStudent)
	if err != nil {
		fail(c, err)
		return
	}

	a.publishMark(record)

	c.JSON(http.StatusCreated, gin.H{"record": record})
}

// publishMark hands the record ID to the worker for live-counter updates.
// Publish failures are logged, not surfaced; the record is already committed.
func (a *api) publishMark(record attendance.Record) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	msg := queue.Message{Type: queue.TypeAttendanceMarked, Body: []byte(record.ID)}
	if err := a.q.Publish(ctx, msg); err != nil {
		log.Printf("publish attendance event: %v", err)
	}
}

// handleDashboard aggregates the student home screen: overall percentage,
// enrolled courses, today's and upcoming sessions, recent history and the
// unread announcement count.
func (a *api) handleDashboard(c *gin.Context) {
	ctx := c.Request.Context()
	accountID := auth.AccountID(c)
	now := time.Now()

	overall, err := a.att.Overall(ctx, accountID)
	if err != nil {
		fail(c, err)
		return
	}
	courses, err := a.courses.EnrolledCourses(ctx, accountID)
	if err != nil {
		fail(c, err)
		return
	}
	upcoming, err := a.sessions.Upcoming(ctx, accountID, now, 5)
	if err != nil {
		fail(c, err)
		return
	}
	history, err := a.att.History(ctx, accountID, "", 10)
	if err != nil {
		fail(c, err)
		return
	}
	feed, err := a.ann.FeedFor(ctx, accountID, auth.IsAdmin(c))
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"overall_percentage":   overall,
		"courses":              courses,
		"upcoming_sessions":    upcoming,
		"recent_attendance":    history,
		"unread_announcements": feed.UnreadCount,
	})
}
