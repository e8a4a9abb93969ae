// Package httpapi exposes the file-sharing service over HTTP using gin.
// Handlers stay thin: they decode requests, call a service, and translate
// sentinel errors into an HTTP status with a JSON error envelope. The
// authenticated user is always read from the request context set by the
// auth middleware and passed to services as an explicit argument.
package httpapi

import (
	"context"
	"io"

	"github.com/gin-gonic/gin"

	"filedrop/internal/logging"
	"filedrop/internal/server/auth"
	"filedrop/internal/server/models"
)

// UserService covers the authentication operations the API needs.
type UserService interface {
	Register(ctx context.Context, username, password, email string) (string, *models.User, error)
	Login(ctx context.Context, username, password string) (string, *models.User, error)
}

// FileService covers the file operations the API needs. Every owner-scoped
// operation takes the caller's user id explicitly.
type FileService interface {
	Upload(ctx context.Context, ownerID int64, name, mimeType string, size int64, r io.Reader) (*models.File, error)
	List(ctx context.Context, ownerID int64) ([]*models.File, error)
	Download(ctx context.Context, ownerID, fileID int64) (io.ReadCloser, *models.File, error)
	Share(ctx context.Context, ownerID, fileID int64) (string, error)
	RedeemShare(ctx context.Context, token string) (io.ReadCloser, *models.File, error)
	Delete(ctx context.Context, ownerID, fileID int64) error
}

// Server holds the HTTP handler dependencies.
type Server struct {
	users         UserService
	files         FileService
	signer        *auth.Signer
	logger        logging.Logger
	maxUploadSize int64
	ping          func(ctx context.Context) error
}

func NewServer(users UserService, files FileService, signer *auth.Signer, logger logging.Logger, maxUploadSize int64, ping func(ctx context.Context) error) *Server {
	return &Server{
		users:         users,
		files:         files,
		signer:        signer,
		logger:        logger,
		maxUploadSize: maxUploadSize,
		ping:          ping,
	}
}

// Router builds the gin engine with all routes registered.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), s.requestLogger())

	r.GET("/health", s.health)
	r.POST("/register", s.register)
	r.POST("/login", s.login)
	r.GET("/shared/:token", s.redeemShare)

	authed := r.Group("/", s.requireAuth())
	authed.POST("/upload", s.upload)
	authed.GET("/files", s.listFiles)
	authed.GET("/files/:id/download", s.download)
	authed.POST("/files/:id/share", s.share)
	authed.DELETE("/files/:id", s.deleteFile)

	return r
}
