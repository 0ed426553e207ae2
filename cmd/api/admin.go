package main

import (
	"bytes"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"classtrack/internal/announcement"
	"classtrack/internal/attendance"
	"classtrack/internal/auth"
	"classtrack/internal/course"
	"classtrack/internal/report"
	"classtrack/internal/session"
)

func (a *api) registerAdminRoutes(g *gin.RouterGroup) {
	g.GET("/dashboard", a.handleAdminDashboard)

	g.GET("/courses", a.handleAdminListCourses)
	g.POST("/courses", a.handleAdminCreateCourse)
	g.PUT("/courses/:id", a.handleAdminUpdateCourse)
	g.DELETE("/courses/:id", a.handleAdminDeleteCourse)
	g.POST("/courses/:id/enrollments", a.handleAdminEnroll)
	g.DELETE("/courses/:id/enrollments/:accountID", a.handleAdminUnenroll)

	g.GET("/students", a.handleAdminListStudents)
	g.POST("/students", a.handleAdminCreateStudent)
	g.PUT("/students/:id", a.handleAdminUpdateStudent)
	g.DELETE("/students/:id", a.handleAdminDeleteStudent)
	g.POST("/students/:id/reset-password", a.handleAdminResetPassword)

	g.GET("/sessions", a.handleAdminListSessions)
	g.POST("/sessions", a.handleAdminCreateSession)
	g.PUT("/sessions/:id", a.handleAdminUpdateSession)
	g.DELETE("/sessions/:id", a.handleAdminDeleteSession)
	g.GET("/sessions/:id/live", a.handleAdminLiveAttendance)
	g.POST("/sessions/:id/mark", a.handleAdminMarkAttendance)

	g.POST("/announcements", a.handleAdminCreateAnnouncement)

	g.GET("/reports/attendance", a.handleAdminAttendanceReport)
}

// handleAdminDashboard aggregates the admin home screen counters plus
// today's sessions and the latest marks.
func (a *api) handleAdminDashboard(c *gin.Context) {
	ctx := c.Request.Context()
	now := time.Now()

	studentCount, err := a.accounts.CountStudents(ctx)
	if err != nil {
		fail(c, err)
		return
	}
	courseCount, err := a.courses.Count(ctx)
	if err != nil {
		fail(c, err)
		return
	}
	today, err := a.sessions.Today(ctx, now)
	if err != nil {
		fail(c, err)
		return
	}
	recent, err := a.att.Recent(ctx, 10)
	if err != nil {
		fail(c, err)
		return
	}

	resp := gin.H{
		"student_count":   studentCount,
		"course_count":    courseCount,
		"todays_sessions": today,
		"recent_marks":    recent,
	}
	if a.live != nil {
		if n, err := a.live.DayCount(ctx, now); err == nil {
			resp["marks_today"] = n
		} else {
			log.Printf("live day count: %v", err)
		}
	}
	c.JSON(http.StatusOK, resp)
}

// Courses

func (a *api) handleAdminListCourses(c *gin.Context) {
	courses, err := a.courses.List(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"courses": courses})
}

func (a *api) handleAdminCreateCourse(c *gin.Context) {
	var req struct {
		Code        string `json:"code" binding:"required"`
		Title       string `json:"title" binding:"required"`
		Lecturer    string `json:"lecturer" binding:"required"`
		Description string `json:"description"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	created, err := a.courses.Create(c.Request.Context(), course.Course{
		Code:        req.Code,
		Title:       req.Title,
		Lecturer:    req.Lecturer,
		Description: req.Description,
	})
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"course": created})
}

func (a *api) handleAdminUpdateCourse(c *gin.Context) {
	var req struct {
		Code        string `json:"code" binding:"required"`
		Title       string `json:"title" binding:"required"`
		Lecturer    string `json:"lecturer" binding:"required"`
		Description string `json:"description"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	updated, err := a.courses.Update(c.Request.Context(), course.Course{
		ID:          c.Param("id"),
		Code:        req.Code,
		Title:       req.Title,
		Lecturer:    req.Lecturer,
		Description: req.Description,
	})
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"course": updated})
}

// handleAdminDeleteCourse removes a course. Sessions, enrollments and
// attendance records under it go with it.
func (a *api) handleAdminDeleteCourse(c *gin.Context) {
	if err := a.courses.Delete(c.Request.Context(), c.Param("id")); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "course deleted"})
}

func (a *api) handleAdminEnroll(c *gin.Context) {
	var req struct {
		AccountID string `json:"account_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	enrollment, err := a.courses.Enroll(c.Request.Context(), req.AccountID, c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"enrollment": enrollment})
}

func (a *api) handleAdminUnenroll(c *gin.Context) {
	if err := a.courses.Unenroll(c.Request.Context(), c.Param("accountID"), c.Param("id")); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "enrollment removed"})
}

// Students

func (a *api) handleAdminListStudents(c *gin.Context) {
	students, err := a.accounts.ListStudents(c.Request.Context(), c.Query("course_id"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"students": students})
}

// handleAdminCreateStudent creates the account and optionally enrolls it into
// courses in one call. Enrollment failures after the account exists are
// reported, not rolled back.
func (a *api) handleAdminCreateStudent(c *gin.Context) {
	var req struct {
		FullName  string   `json:"full_name" binding:"required"`
		MatricNo  string   `json:"matric_no" binding:"required"`
		Password  string   `json:"password" binding:"required,min=8"`
		CourseIDs []string `json:"course_ids"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	acct, err := a.accounts.CreateStudent(c.Request.Context(), req.FullName, req.MatricNo, req.Password)
	if err != nil {
		fail(c, err)
		return
	}

	var enrollErrs []string
	for _, courseID := range req.CourseIDs {
		if _, err := a.courses.Enroll(c.Request.Context(), acct.ID, courseID); err != nil {
			enrollErrs = append(enrollErrs, courseID+": "+err.Error())
		}
	}

	resp := gin.H{"account": acct}
	if len(enrollErrs) > 0 {
		resp["enrollment_errors"] = enrollErrs
	}
	c.JSON(http.StatusCreated, resp)
}

func (a *api) handleAdminUpdateStudent(c *gin.Context) {
	var req struct {
		FullName string `json:"full_name" binding:"required"`
		MatricNo string `json:"matric_no" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	acct, err := a.accounts.Update(c.Request.Context(), c.Param("id"), req.FullName, req.MatricNo)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"account": acct})
}

// handleAdminDeleteStudent removes the account and everything keyed to it:
// enrollments, attendance records, refresh tokens, read receipts.
func (a *api) handleAdminDeleteStudent(c *gin.Context) {
	if err := a.accounts.Delete(c.Request.Context(), c.Param("id")); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "student deleted"})
}

func (a *api) handleAdminResetPassword(c *gin.Context) {
	var req struct {
		NewPassword string `json:"new_password" binding:"required,min=8"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if err := a.accounts.ResetPassword(c.Request.Context(), c.Param("id"), req.NewPassword); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "password reset"})
}

// Sessions

func (a *api) handleAdminListSessions(c *gin.Context) {
	infos, err := a.sessions.List(c.Request.Context(), time.Now())
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"sessions": infos})
}

type sessionRequest struct {
	CourseID  string `json:"course_id" binding:"required"`
	Date      string `json:"date" binding:"required"`
	StartTime string `json:"start_time" binding:"required"`
	EndTime   string `json:"end_time" binding:"required"`
	Location  string `json:"location"`
	Status    string `json:"status"`
}

func (r sessionRequest) toSession() (session.Session, error) {
	date, err := time.ParseInLocation(time.DateOnly, r.Date, time.Local)
	if err != nil {
		return session.Session{}, err
	}
	status := r.Status
	if status == "" {
		status = "scheduled"
	}
	return session.Session{
		CourseID:  r.CourseID,
		Date:      date,
		StartTime: r.StartTime,
		EndTime:   r.EndTime,
		Location:  r.Location,
		Status:    status,
	}, nil
}

func (a *api) handleAdminCreateSession(c *gin.Context) {
	var req sessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	s, err := req.toSession()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "date must be YYYY-MM-DD"})
		return
	}
	created, err := a.sessions.Create(c.Request.Context(), s)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"session": created})
}

func (a *api) handleAdminUpdateSession(c *gin.Context) {
	var req sessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	s, err := req.toSession()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "date must be YYYY-MM-DD"})
		return
	}
	s.ID = c.Param("id")
	updated, err := a.sessions.Update(c.Request.Context(), s)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"session": updated})
}

func (a *api) handleAdminDeleteSession(c *gin.Context) {
	if err := a.sessions.Delete(c.Request.Context(), c.Param("id")); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "session deleted"})
}

func (a *api) handleAdminLiveAttendance(c *gin.Context) {
	reportView, err := a.att.Live(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, reportView)
}

// handleAdminMarkAttendance records a mark on a student's behalf. The same
// preconditions apply as for self-marking, so an admin cannot mark a closed
// session or an unenrolled student.
func (a *api) handleAdminMarkAttendance(c *gin.Context) {
	var req struct {
		AccountID string `json:"account_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	record, err := a.att.Mark(c.Request.Context(), req.AccountID, c.Param("id"), time.Now(), attendance.ProvenanceAdmin)
	if err != nil {
		fail(c, err)
		return
	}

	a.publishMark(record)

	c.JSON(http.StatusCreated, gin.H{"record": record})
}

// Announcements

func (a *api) handleAdminCreateAnnouncement(c *gin.Context) {
	var req struct {
		Title    string  `json:"title" binding:"required"`
		Content  string  `json:"content" binding:"required"`
		CourseID *string `json:"course_id"`
		Priority string  `json:"priority"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	priority := announcement.PriorityNormal
	switch announcement.Priority(req.Priority) {
	case announcement.PriorityLow, announcement.PriorityNormal, announcement.PriorityHigh, announcement.PriorityUrgent:
		priority = announcement.Priority(req.Priority)
	case "":
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "priority must be one of low, normal, high, urgent"})
		return
	}

	created, err := a.ann.Create(c.Request.Context(), announcement.Announcement{
		Title:    req.Title,
		Content:  req.Content,
		AuthorID: auth.AccountID(c),
		CourseID: req.CourseID,
		Priority: priority,
	})
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"announcement": created})
}

// Reports

// handleAdminAttendanceReport streams an xlsx workbook, or the raw rows as
// JSON when format=json is requested.
func (a *api) handleAdminAttendanceReport(c *gin.Context) {
	filter, err := reportFilterFromQuery(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	rows, err := a.reports.Rows(c.Request.Context(), filter)
	if err != nil {
		fail(c, err)
		return
	}

	if c.Query("format") == "json" {
		c.JSON(http.StatusOK, gin.H{"rows": rows, "count": len(rows)})
		return
	}

	courseCode := ""
	if filter.CourseID != "" {
		if course, err := a.courses.Get(c.Request.Context(), filter.CourseID); err == nil {
			courseCode = course.Code
		}
	}

	wb, err := report.BuildWorkbook(rows)
	if err != nil {
		fail(c, err)
		return
	}
	var buf bytes.Buffer
	if err := wb.Write(&buf); err != nil {
		fail(c, err)
		return
	}

	filename := report.Filename(filter, courseCode)
	c.Header("Content-Disposition", report.ContentDisposition(filename))
	c.Data(http.StatusOK, report.ContentType, buf.Bytes())
}

func reportFilterFromQuery(c *gin.Context) (report.Filter, error) {
	f := report.Filter{
		CourseID:  c.Query("course_id"),
		AccountID: c.Query("student_id"),
		Status:    c.Query("status"),
	}
	if raw := c.Query("date_from"); raw != "" {
		t, err := time.ParseInLocation(time.DateOnly, raw, time.Local)
		if err != nil {
			return f, errBadDate("date_from")
		}
		f.DateFrom = &t
	}
	if raw := c.Query("date_to"); raw != "" {
		t, err := time.ParseInLocation(time.DateOnly, raw, time.Local)
		if err != nil {
			return f, errBadDate("date_to")
		}
		f.DateTo = &t
	}
	return f, nil
}

type errBadDate string

func (e errBadDate) Error() string { return string(e) + " must be YYYY-MM-DD" }
