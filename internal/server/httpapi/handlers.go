package httpapi

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strconv"

	"github.com/gin-gonic/gin"

	"filedrop/internal/common"
	"filedrop/internal/server/models"
)

// multipart boundaries and part headers arrive on top of the file bytes, so
// the request-level limit sits slightly above the configured upload cap. The
// exact per-file cap is enforced by the file service.
const multipartOverhead = 64 << 10

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Email    string `json:"email"`
}

type authResponse struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

func (s *Server) register(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, common.ErrValidation)
		return
	}
	token, user, err := s.users.Register(c.Request.Context(), req.Username, req.Password, req.Email)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, authResponse{Token: token, User: user})
}

func (s *Server) login(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, common.ErrValidation)
		return
	}
	token, user, err := s.users.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, authResponse{Token: token, User: user})
}

func (s *Server) upload(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		abortWithError(c, common.ErrUnauthorized)
		return
	}
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, s.maxUploadSize+multipartOverhead)
	header, err := c.FormFile("file")
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			abortWithError(c, common.ErrPayloadTooLarge)
			return
		}
		abortWithError(c, common.ErrValidation)
		return
	}
	src, err := header.Open()
	if err != nil {
		abortWithError(c, common.ErrValidation)
		return
	}
	defer src.Close()

	name := filepath.Base(header.Filename)
	mimeType := header.Header.Get("Content-Type")
	file, err := s.files.Upload(c.Request.Context(), userID, name, mimeType, header.Size, src)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, file)
}

func (s *Server) listFiles(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		abortWithError(c, common.ErrUnauthorized)
		return
	}
	files, err := s.files.List(c.Request.Context(), userID)
	if err != nil {
		abortWithError(c, err)
		return
	}
	if files == nil {
		files = []*models.File{}
	}
	c.JSON(http.StatusOK, gin.H{"files": files})
}

func (s *Server) download(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		abortWithError(c, common.ErrUnauthorized)
		return
	}
	fileID, err := pathID(c)
	if err != nil {
		abortWithError(c, err)
		return
	}
	rc, file, err := s.files.Download(c.Request.Context(), userID, fileID)
	if err != nil {
		abortWithError(c, err)
		return
	}
	streamFile(c, rc, file)
}

func (s *Server) share(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		abortWithError(c, common.ErrUnauthorized)
		return
	}
	fileID, err := pathID(c)
	if err != nil {
		abortWithError(c, err)
		return
	}
	shareURL, err := s.files.Share(c.Request.Context(), userID, fileID)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"share_url": shareURL})
}

func (s *Server) redeemShare(c *gin.Context) {
	rc, file, err := s.files.RedeemShare(c.Request.Context(), c.Param("token"))
	if err != nil {
		abortWithError(c, err)
		return
	}
	streamFile(c, rc, file)
}

func (s *Server) deleteFile(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		abortWithError(c, common.ErrUnauthorized)
		return
	}
	fileID, err := pathID(c)
	if err != nil {
		abortWithError(c, err)
		return
	}
	if err := s.files.Delete(c.Request.Context(), userID, fileID); err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

func (s *Server) health(c *gin.Context) {
	if s.ping != nil {
		if err := s.ping(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// pathID parses the :id route parameter. A non-numeric id cannot name an
// existing file, so it reads as not found rather than a validation error.
func pathID(c *gin.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, common.ErrNotFound
	}
	return id, nil
}

func streamFile(c *gin.Context, rc io.ReadCloser, file *models.File) {
	defer rc.Close()
	extra := map[string]string{
		"Content-Disposition": fmt.Sprintf("attachment; filename=%q", file.Name),
	}
	c.DataFromReader(http.StatusOK, file.Size, file.MimeType, rc, extra)
}
