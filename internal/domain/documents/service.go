package documents

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"careroster/internal/domain/people"
)

const (
	MsgMissingFields  = "missing required fields"
	MsgInvalidExpires = "invalid expires date format"
	MsgUploadDisabled = "file uploads are not configured"
)

type RecordResolver interface {
	Resolve(ctx context.Context, id string, skipCache bool) (people.Record, error)
}

type Uploader interface {
	Upload(ctx context.Context, key string, body io.Reader, contentType string) (string, error)
}

// Input is the document payload for create and update. Expires accepts a
// date, an empty string or the Empty sentinel.
type Input struct {
	UserID          string `json:"userId"`
	FileName        string `json:"fileName"`
	URL             string `json:"url"`
	Category        string `json:"category"`
	Expires         string `json:"expires"`
	StaffVisibility *bool  `json:"staffVisibility,omitempty"`
	NoExpiration    *bool  `json:"noExpiration,omitempty"`
}

// File is an uploaded attachment.
type File struct {
	Name        string
	ContentType string
	Body        io.Reader
}

type Service struct {
	Store    StoreAPI
	Records  RecordResolver
	Uploader Uploader
	Log      *zap.Logger
	Now      func() time.Time
}

func NewService(store StoreAPI, records RecordResolver, uploader Uploader, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{Store: store, Records: records, Uploader: uploader, Log: log, Now: time.Now}
}

func (s *Service) now() time.Time {
	if s.Now == nil {
		return time.Now()
	}
	return s.Now()
}

// owner checks that userID resolves to a record of the route's kind.
func (s *Service) owner(ctx context.Context, kind people.Kind, userID string) error {
	if strings.TrimSpace(userID) == "" {
		return people.NewValidationError(MsgMissingFields, "userId")
	}
	rec, err := s.Records.Resolve(ctx, userID, false)
	if err != nil {
		return err
	}
	if rec.Kind != kind {
		return people.ErrNotFound
	}
	return nil
}

func (s *Service) List(ctx context.Context, kind people.Kind, userID string) ([]View, error) {
	if err := s.owner(ctx, kind, userID); err != nil {
		return nil, err
	}
	docs, err := s.Store.ListByUser(ctx, userID, kind)
	if err != nil {
		return nil, err
	}
	now := s.now()
	views := make([]View, 0, len(docs))
	for _, d := range docs {
		views = append(views, toView(d, now))
	}
	return views, nil
}

func (s *Service) Create(ctx context.Context, kind people.Kind, in Input, file *File) (*View, error) {
	if err := s.owner(ctx, kind, in.UserID); err != nil {
		return nil, err
	}
	doc := &Document{UserID: strings.TrimSpace(in.UserID), OwnerKind: kind}
	if err := s.apply(ctx, doc, in, file, true); err != nil {
		return nil, err
	}
	if err := s.Store.Create(ctx, doc); err != nil {
		return nil, err
	}
	view := toView(*doc, s.now())
	return &view, nil
}

func (s *Service) Update(ctx context.Context, kind people.Kind, id string, in Input, file *File) (*View, error) {
	if strings.TrimSpace(id) == "" {
		return nil, people.NewValidationError(MsgMissingFields, "id")
	}
	doc, err := s.Store.Get(ctx, id, kind)
	if err != nil {
		return nil, err
	}
	if err := s.apply(ctx, doc, in, file, false); err != nil {
		return nil, err
	}
	if err := s.Store.Save(ctx, doc); err != nil {
		return nil, err
	}
	view := toView(*doc, s.now())
	return &view, nil
}

// apply copies the payload onto doc. On update, empty strings keep the
// stored value.
func (s *Service) apply(ctx context.Context, doc *Document, in Input, file *File, creating bool) error {
	if name := strings.TrimSpace(in.FileName); name != "" {
		doc.FileName = name
	} else if file != nil && doc.FileName == "" {
		doc.FileName = path.Base(file.Name)
	}
	if u := strings.TrimSpace(in.URL); u != "" {
		doc.URL = u
	}
	if category := strings.TrimSpace(in.Category); category != "" {
		if category == Empty {
			doc.Category = nil
		} else {
			doc.Category = &category
		}
	}
	if in.StaffVisibility != nil {
		doc.StaffVisibility = *in.StaffVisibility
	}
	if in.NoExpiration != nil {
		doc.NoExpiration = *in.NoExpiration
	}

	switch expires := strings.TrimSpace(in.Expires); {
	case expires == Empty:
		doc.Expires = nil
	case expires != "":
		parsed, err := people.ParseDate(expires)
		if err != nil {
			return people.NewValidationError(MsgInvalidExpires, "expires")
		}
		doc.Expires = &parsed
	}
	if doc.NoExpiration {
		doc.Expires = nil
	}

	if creating {
		var missing []string
		if doc.FileName == "" {
			missing = append(missing, "fileName")
		}
		if doc.URL == "" && file == nil {
			missing = append(missing, "url")
		}
		if len(missing) > 0 {
			return people.NewValidationError(MsgMissingFields, missing...)
		}
	}

	if file != nil {
		if s.Uploader == nil {
			return people.NewValidationError(MsgUploadDisabled, "file")
		}
		key := fmt.Sprintf("%s/%s/%s-%s", doc.OwnerKind, doc.UserID, uuid.NewString(), path.Base(file.Name))
		url, err := s.Uploader.Upload(ctx, key, file.Body, file.ContentType)
		if err != nil {
			return err
		}
		doc.URL = url
	}
	return nil
}
