package main

import (
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"classtrack/internal/auth"
	"classtrack/internal/cloudinary"
)

func (a *api) registerAuthRoutes(r *gin.Engine) {
	r.POST("/v1/auth/register", a.handleRegister)
	r.POST("/v1/auth/login", a.handleLogin)
	r.POST("/v1/auth/refresh", a.handleRefresh)
	r.POST("/v1/auth/logout", a.handleLogout)
}

func (a *api) registerAccountRoutes(g *gin.RouterGroup) {
	g.GET("/me", a.handleMe)
	g.POST("/me/password", a.handleChangePassword)
	g.POST("/me/avatar", a.handleAvatarUpload)
}

func (a *api) handleRegister(c *gin.Context) {
	var req struct {
		FullName        string `json:"full_name" binding:"required"`
		MatricNo        string `json:"matric_no" binding:"required"`
		Password        string `json:"password" binding:"required,min=8"`
		ConfirmPassword string `json:"confirm_password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if req.Password != req.ConfirmPassword {
		c.JSON(http.StatusBadRequest, gin.H{"error": "passwords do not match", "code": "password_mismatch"})
		return
	}

	acct, err := a.accounts.Register(c.Request.Context(), req.FullName, req.MatricNo, req.Password)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"account": acct})
}

func (a *api) handleLogin(c *gin.Context) {
	var req struct {
		MatricNo string `json:"matric_no" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	acct, err := a.accounts.Authenticate(c.Request.Context(), req.MatricNo, req.Password)
	if err != nil {
		fail(c, err)
		return
	}

	tokens, err := auth.Issue(acct.ID, string(acct.Role), a.cfg.JWTIssuer, a.cfg.JWTSigningKey, a.cfg.AccessTTL, a.cfg.RefreshTTL)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "token issue failed"})
		return
	}
	if err := a.tokens.Save(c.Request.Context(), acct.ID, tokens.RefreshToken, tokens.RefreshExp); err != nil {
		log.Printf("save refresh token failed: %v", err)
	}

	c.JSON(http.StatusOK, gin.H{
		"account":       acct,
		"access_token":  tokens.AccessToken,
		"refresh_token": tokens.RefreshToken,
		"expires_at":    tokens.AccessExp.Unix(),
	})
}

func (a *api) handleRefresh(c *gin.Context) {
	var req struct {
		RefreshToken string `json:"refresh_token" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	accountID, err := a.tokens.Redeem(c.Request.Context(), req.RefreshToken, time.Now())
	if err != nil {
		fail(c, err)
		return
	}
	acct, err := a.accounts.Get(c.Request.Context(), accountID)
	if err != nil {
		fail(c, err)
		return
	}

	tokens, err := auth.Issue(acct.ID, string(acct.Role), a.cfg.JWTIssuer, a.cfg.JWTSigningKey, a.cfg.AccessTTL, a.cfg.RefreshTTL)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "token issue failed"})
		return
	}
	if err := a.tokens.Save(c.Request.Context(), acct.ID, tokens.RefreshToken, tokens.RefreshExp); err != nil {
		log.Printf("save refresh token failed: %v", err)
	}

	c.JSON(http.StatusOK, gin.H{
		"access_token":  tokens.AccessToken,
		"refresh_token": tokens.RefreshToken,
		"expires_at":    tokens.AccessExp.Unix(),
	})
}

func (a *api) handleLogout(c *gin.Context) {
	var req struct {
		RefreshToken string `json:"refresh_token" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if err := a.tokens.Revoke(c.Request.Context(), req.RefreshToken); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "logged out"})
}

func (a *api) handleMe(c *gin.Context) {
	acct, err := a.accounts.Get(c.Request.Context(), auth.AccountID(c))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"account": acct})
}

func (a *api) handleChangePassword(c *gin.Context) {
	var req struct {
		CurrentPassword string `json:"current_password" binding:"required"`
		NewPassword     string `json:"new_password" binding:"required,min=8"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if err := a.accounts.ChangePassword(c.Request.Context(), auth.AccountID(c), req.CurrentPassword, req.NewPassword); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "password changed"})
}

// handleAvatarUpload accepts a multipart file or a base64 data URL, pushes
// it to Cloudinary and stores the returned URL on the account.
func (a *api) handleAvatarUpload(c *gin.Context) {
	if a.cdn == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "image storage not configured"})
		return
	}

	var result *cloudinary.UploadResult
	var err error

	switch {
	case strings.Contains(c.ContentType(), "multipart/form-data"):
		file, header, ferr := c.Request.FormFile("file")
		if ferr != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "file field required"})
			return
		}
		defer file.Close()
		data, ferr := io.ReadAll(file)
		if ferr != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "read file failed"})
			return
		}
		result, err = a.cdn.UploadBytes(data, header.Filename)

	default:
		var body struct {
			Data string `json:"data" binding:"required"`
		}
		if berr := c.ShouldBindJSON(&body); berr != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "provide {\"data\": \"<base64 data URL>\"}"})
			return
		}
		result, err = a.cdn.UploadBase64(body.Data)
	}

	if err != nil {
		log.Printf("cloudinary upload failed: %v", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "image upload failed"})
		return
	}

	if err := a.accounts.SetAvatar(c.Request.Context(), auth.AccountID(c), result.SecureURL); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"url": result.SecureURL})
}
