package main

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"classtrack/internal/account"
	"classtrack/internal/announcement"
	"classtrack/internal/attendance"
	"classtrack/internal/auth"
	"classtrack/internal/course"
	"classtrack/internal/session"
)

// errorMappings pins every domain failure to a status and a stable machine
// code so clients can branch without parsing messages.
var errorMappings = []struct {
	err    error
	status int
	code   string
}{
	{attendance.ErrSessionNotFound, http.StatusNotFound, "session_not_found"},
	{attendance.ErrSessionNotActive, http.StatusConflict, "session_not_active"},
	{attendance.ErrNotEnrolled, http.StatusForbidden, "not_enrolled"},
	{attendance.ErrAlreadyMarked, http.StatusConflict, "already_marked"},
	{session.ErrNotFound, http.StatusNotFound, "session_not_found"},
	{session.ErrInvalidWindow, http.StatusBadRequest, "invalid_window"},
	{course.ErrNotFound, http.StatusNotFound, "course_not_found"},
	{course.ErrCodeExists, http.StatusConflict, "course_code_exists"},
	{course.ErrInvalidJoinCode, http.StatusBadRequest, "invalid_join_code"},
	{course.ErrAlreadyEnrolled, http.StatusConflict, "already_enrolled"},
	{course.ErrNotEnrolled, http.StatusForbidden, "not_enrolled"},
	{account.ErrNotFound, http.StatusNotFound, "account_not_found"},
	{account.ErrMatricExists, http.StatusConflict, "matric_exists"},
	{account.ErrInvalidCredentials, http.StatusUnauthorized, "invalid_credentials"},
	{announcement.ErrNotFound, http.StatusNotFound, "announcement_not_found"},
	{auth.ErrTokenInvalid, http.StatusUnauthorized, "invalid_refresh_token"},
}

// fail renders a domain error as JSON. Unmapped errors are logged and
// reported as a plain 500 without leaking internals.
func fail(c *gin.Context, err error) {
	for _, m := range errorMappings {
		if errors.Is(err, m.err) {
			c.JSON(m.status, gin.H{"error": m.err.Error(), "code": m.code})
			return
		}
	}
	log.Printf("%s %s: %v", c.Request.Method, c.Request.URL.Path, err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}
