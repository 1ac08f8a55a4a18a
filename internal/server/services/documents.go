package services

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/dmitrijs2005/slothapp/internal/common"
	"github.com/dmitrijs2005/slothapp/internal/logging"
	"github.com/dmitrijs2005/slothapp/internal/rbac"
	"github.com/dmitrijs2005/slothapp/internal/server/models"
	"github.com/dmitrijs2005/slothapp/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/slothapp/internal/server/storage"
)

// UploadInput describes a file attached to a context.
type UploadInput struct {
	Context     models.ContextRef
	FileName    string
	ContentType string
	Size        int64
	Body        io.Reader
}

// DownloadLink is a presigned URL and the moment it stops working.
type DownloadLink struct {
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// DocumentService attaches files and links to projects, views and issues.
// File contents live in the object store, metadata in the database.
type DocumentService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	access      Authorizer
	objects     storage.ObjectStore
	urlValidity time.Duration
	log         logging.Logger
	now         func() time.Time
}

// NewDocumentService constructs a DocumentService storing contents in objects.
func NewDocumentService(db *sql.DB, m repomanager.RepositoryManager, access Authorizer,
	objects storage.ObjectStore, urlValidity time.Duration, log logging.Logger) *DocumentService {
	if urlValidity <= 0 {
		urlValidity = common.DocumentURLValidity
	}
	return &DocumentService{
		db:          db,
		repomanager: m,
		access:      access,
		objects:     objects,
		urlValidity: urlValidity,
		log:         log.With("module", "documents"),
		now:         time.Now,
	}
}

// Upload stores the object, then its row. If the row cannot be written the
// object is deleted again.
func (s *DocumentService) Upload(ctx context.Context, userID string, in UploadInput) (*models.Document, error) {
	name := path.Base(strings.ReplaceAll(strings.TrimSpace(in.FileName), "\\", "/"))
	if name == "" || name == "." || name == "/" {
		return nil, common.Invalid("File name is required")
	}
	if _, err := s.access.AuthorizeContext(ctx, in.Context, userID, rbac.ActionWrite); err != nil {
		return nil, err
	}

	contentType := in.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	key := storage.ObjectPath(in.Context, name, s.now())

	if err := s.objects.Put(ctx, key, in.Body, in.Size, contentType); err != nil {
		return nil, unknown(ctx, s.log, "put object", err)
	}

	doc, err := s.repomanager.Documents(s.db).Create(ctx, &models.Document{
		ID:          newID(),
		Context:     in.Context,
		FileName:    name,
		StoragePath: key,
		ContentType: contentType,
		Size:        in.Size,
		UploadedBy:  userID,
	})
	if err != nil {
		if derr := s.objects.Delete(ctx, key); derr != nil {
			s.log.Warn(ctx, "orphaned object after failed insert", "key", key, "error", derr)
		}
		return nil, unknown(ctx, s.log, "create document", err)
	}
	return doc, nil
}

// ListDocuments returns the documents attached to ref.
func (s *DocumentService) ListDocuments(ctx context.Context, userID string, ref models.ContextRef) ([]*models.Document, error) {
	if _, err := s.access.AuthorizeContext(ctx, ref, userID, rbac.ActionRead); err != nil {
		return nil, err
	}
	list, err := s.repomanager.Documents(s.db).ListByContext(ctx, ref)
	if err != nil {
		return nil, unknown(ctx, s.log, "list documents", err)
	}
	return list, nil
}

func (s *DocumentService) loadDocument(ctx context.Context, documentID string) (*models.Document, error) {
	doc, err := s.repomanager.Documents(s.db).GetByID(ctx, documentID)
	if err != nil {
		return nil, notFoundOr(ctx, s.log, "load document", err, common.ErrNotFound)
	}
	return doc, nil
}

// DownloadURL returns a presigned GET URL for the document.
func (s *DocumentService) DownloadURL(ctx context.Context, documentID, userID string) (*DownloadLink, error) {
	doc, err := s.loadDocument(ctx, documentID)
	if err != nil {
		return nil, err
	}
	if _, err := s.access.AuthorizeContext(ctx, doc.Context, userID, rbac.ActionRead); err != nil {
		return nil, err
	}
	u, err := s.objects.PresignGet(ctx, doc.StoragePath, s.urlValidity)
	if err != nil {
		return nil, unknown(ctx, s.log, "presign document", err)
	}
	return &DownloadLink{URL: u, ExpiresAt: s.now().Add(s.urlValidity)}, nil
}

// DeleteDocument removes the object and its row.
func (s *DocumentService) DeleteDocument(ctx context.Context, documentID, userID string) error {
	doc, err := s.loadDocument(ctx, documentID)
	if err != nil {
		return err
	}
	if _, err := s.access.AuthorizeContext(ctx, doc.Context, userID, rbac.ActionWrite); err != nil {
		return err
	}
	if err := s.objects.Delete(ctx, doc.StoragePath); err != nil {
		return unknown(ctx, s.log, "delete object", err)
	}
	if err := s.repomanager.Documents(s.db).Delete(ctx, documentID); err != nil && !errors.Is(err, common.ErrorNotFound) {
		return unknown(ctx, s.log, "delete document", err)
	}
	return nil
}

func validLinkURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return false
	}
	return u.Scheme == "http" || u.Scheme == "https"
}

// AddLink attaches an absolute http(s) URL to ref. An empty title becomes the
// URL.
func (s *DocumentService) AddLink(ctx context.Context, userID string, ref models.ContextRef, title, rawURL string) (*models.Link, error) {
	rawURL = strings.TrimSpace(rawURL)
	if !validLinkURL(rawURL) {
		return nil, common.Invalid("Link must be an absolute http or https URL")
	}
	title = strings.TrimSpace(title)
	if title == "" {
		title = rawURL
	}
	if _, err := s.access.AuthorizeContext(ctx, ref, userID, rbac.ActionWrite); err != nil {
		return nil, err
	}
	l, err := s.repomanager.Links(s.db).Create(ctx, &models.Link{
		ID:        newID(),
		Context:   ref,
		Title:     title,
		URL:       rawURL,
		CreatedBy: userID,
	})
	if err != nil {
		return nil, unknown(ctx, s.log, "create link", err)
	}
	return l, nil
}

// ListLinks returns the links attached to ref.
func (s *DocumentService) ListLinks(ctx context.Context, userID string, ref models.ContextRef) ([]*models.Link, error) {
	if _, err := s.access.AuthorizeContext(ctx, ref, userID, rbac.ActionRead); err != nil {
		return nil, err
	}
	list, err := s.repomanager.Links(s.db).ListByContext(ctx, ref)
	if err != nil {
		return nil, unknown(ctx, s.log, "list links", err)
	}
	return list, nil
}

// DeleteLink removes a link.
func (s *DocumentService) DeleteLink(ctx context.Context, linkID, userID string) error {
	links := s.repomanager.Links(s.db)
	l, err := links.GetByID(ctx, linkID)
	if err != nil {
		return notFoundOr(ctx, s.log, "load link", err, common.ErrNotFound)
	}
	if _, err := s.access.AuthorizeContext(ctx, l.Context, userID, rbac.ActionWrite); err != nil {
		return err
	}
	if err := links.Delete(ctx, linkID); err != nil && !errors.Is(err, common.ErrorNotFound) {
		return unknown(ctx, s.log, "delete link", err)
	}
	return nil
}
