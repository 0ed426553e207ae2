package main

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"classtrack/internal/auth"
)

func (a *api) registerCourseRoutes(g *gin.RouterGroup) {
	g.GET("/courses", a.handleMyCourses)
	g.POST("/courses/join", a.handleJoinCourse)
	g.GET("/courses/:id", a.handleCourseDetail)
	g.GET("/courses/:id/weekly-attendance", a.handleWeeklyAttendance)
}

// handleMyCourses lists the caller's enrolled courses with their attendance
// percentage for each.
func (a *api) handleMyCourses(c *gin.Context) {
	ctx := c.Request.Context()
	accountID := auth.AccountID(c)

	courses, err := a.courses.EnrolledCourses(ctx, accountID)
	if err != nil {
		fail(c, err)
		return
	}

	type courseView struct {
		ID            string  `json:"id"`
		Code          string  `json:"code"`
		Title         string  `json:"title"`
		Lecturer      string  `json:"lecturer"`
		EnrolledCount int     `json:"enrolled_count"`
		Percentage    float64 `json:"attendance_percentage"`
	}
	out := make([]courseView, 0, len(courses))
	for _, course := range courses {
		pct, err := a.att.CoursePercentage(ctx, accountID, course.ID)
		if err != nil {
			fail(c, err)
			return
		}
		out = append(out, courseView{
			ID:            course.ID,
			Code:          course.Code,
			Title:         course.Title,
			Lecturer:      course.Lecturer,
			EnrolledCount: course.EnrolledCount,
			Percentage:    pct,
		})
	}
	c.JSON(http.StatusOK, gin.H{"courses": out})
}

func (a *api) handleJoinCourse(c *gin.Context) {
	var req struct {
		JoinCode string `json:"join_code" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	enrollment, err := a.courses.Join(c.Request.Context(), auth.AccountID(c), req.JoinCode)
	if err != nil {
		fail(c, err)
		return
	}
	course, err := a.courses.Get(c.Request.Context(), enrollment.CourseID)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"enrollment": enrollment, "course": course})
}

// handleCourseDetail returns one course with the caller's percentage and
// recent attendance history in it.
func (a *api) handleCourseDetail(c *gin.Context) {
	ctx := c.Request.Context()
	accountID := auth.AccountID(c)
	courseID := c.Param("id")

	course, err := a.courses.Get(ctx, courseID)
	if err != nil {
		fail(c, err)
		return
	}
	pct, err := a.att.CoursePercentage(ctx, accountID, courseID)
	if err != nil {
		fail(c, err)
		return
	}
	history, err := a.att.History(ctx, accountID, courseID, 20)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"course":                course,
		"attendance_percentage": pct,
		"history":               history,
	})
}

func (a *api) handleWeeklyAttendance(c *gin.Context) {
	maxWeeks := a.cfg.DefaultMaxWeeks
	if raw := c.Query("max_weeks"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "max_weeks must be a positive integer"})
			return
		}
		maxWeeks = n
	}

	buckets, err := a.att.Weekly(c.Request.Context(), auth.AccountID(c), c.Param("id"), maxWeeks)
	if err != nil {
		fail(c, err)
		return
	}

	type weekView struct {
		Week      string      `json:"week"`
		WeekStart string      `json:"week_start"`
		Records   interface{} `json:"records"`
	}
	out := make([]weekView, 0, len(buckets))
	for _, b := range buckets {
		out = append(out, weekView{
			Week:      b.Key,
			WeekStart: b.WeekStart.Format(time.DateOnly),
			Records:   b.Records,
		})
	}
	c.JSON(http.StatusOK, gin.H{"weeks": out})
}
