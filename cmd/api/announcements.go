package main

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"classtrack/internal/auth"
)

func (a *api) registerAnnouncementRoutes(g *gin.RouterGroup) {
	g.GET("/announcements", a.handleAnnouncements)
	g.POST("/announcements/:id/read", a.handleMarkAnnouncementRead)
	g.POST("/announcements/read-all", a.handleMarkAllAnnouncementsRead)
}

func (a *api) handleAnnouncements(c *gin.Context) {
	feed, err := a.ann.FeedFor(c.Request.Context(), auth.AccountID(c), auth.IsAdmin(c))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"announcements": feed.Announcements,
		"unread_count":  feed.UnreadCount,
	})
}

func (a *api) handleMarkAnnouncementRead(c *gin.Context) {
	if err := a.ann.MarkRead(c.Request.Context(), c.Param("id"), auth.AccountID(c)); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "marked as read"})
}

func (a *api) handleMarkAllAnnouncementsRead(c *gin.Context) {
	if err := a.ann.MarkAllRead(c.Request.Context(), auth.AccountID(c), auth.IsAdmin(c)); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "all marked as read"})
}
