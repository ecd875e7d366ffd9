package service

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/dukerupert/shelf/internal/auth"
	"github.com/dukerupert/shelf/internal/domain"
	"github.com/dukerupert/shelf/internal/events"
	"github.com/dukerupert/shelf/internal/storage"
	"github.com/dukerupert/shelf/internal/telemetry"
	"github.com/go-playground/validator/v10"
)

// MaxImageSize is the largest accepted profile image.
const MaxImageSize = 5 * 1024 * 1024

// PasswordHasher hashes and verifies passwords. auth.Hasher implements it.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(password, hash string) error
}

// ProfileService manages the signed-in user's profile.
type ProfileService interface {
	Get(ctx context.Context, session *domain.Session) (*domain.Profile, error)
	Update(ctx context.Context, session *domain.Session, params UpdateProfileParams) (*domain.Profile, error)
	UploadImage(ctx context.Context, session *domain.Session, upload ImageUpload) (*domain.Profile, error)
	Countries() []domain.Country
}

// AccountNotifier tells a user about security-relevant account changes.
// email.Notifier implements it.
type AccountNotifier interface {
	PasswordChanged(ctx context.Context, to string, at time.Time) error
}

// UpdateProfileParams are the editable profile fields. Nil leaves a field
// unchanged.
type UpdateProfileParams struct {
	UserName *string `json:"user_name" validate:"omitempty,max=100"`
	Country  *string `json:"country"`
	Password *string `json:"password"`
}

// ImageUpload is an image file received from the client.
type ImageUpload struct {
	Filename    string
	ContentType string
	Size        int64
	Content     io.Reader
}

type profileService struct {
	profiles  domain.ProfileStore
	users     domain.UserStore
	storage   storage.Storage
	hasher    PasswordHasher
	publisher events.Publisher
	notifier  AccountNotifier
	validate  *validator.Validate
	logger    *slog.Logger
	now       func() time.Time
}

// NewProfileService creates a new ProfileService instance.
func NewProfileService(
	profiles domain.ProfileStore,
	users domain.UserStore,
	store storage.Storage,
	hasher PasswordHasher,
	publisher events.Publisher,
	notifier AccountNotifier,
	logger *slog.Logger,
) ProfileService {
	if publisher == nil {
		publisher = events.NoopPublisher{}
	}
	return &profileService{
		profiles:  profiles,
		users:     users,
		storage:   store,
		hasher:    hasher,
		publisher: publisher,
		notifier:  notifier,
		validate:  newValidator(),
		logger:    logger,
		now:       time.Now,
	}
}

// Get returns the user's profile. A user who never saved a profile gets the
// defaults rather than an error.
func (s *profileService) Get(ctx context.Context, session *domain.Session) (*domain.Profile, error) {
	const op = "profile.get"
	if err := requireSession(session, op); err != nil {
		return nil, err
	}

	p, err := s.profiles.GetProfile(ctx, session.OwnerID())
	if err != nil {
		if domain.IsCode(err, domain.ENOTFOUND) {
			return domain.DefaultProfile(session.OwnerID()), nil
		}
		return nil, err
	}
	return p, nil
}

// Update saves name and country, then changes the password if one was given.
func (s *profileService) Update(ctx context.Context, session *domain.Session, params UpdateProfileParams) (*domain.Profile, error) {
	const op = "profile.update"
	if err := requireSession(session, op); err != nil {
		return nil, err
	}

	if params.UserName != nil {
		name := strings.TrimSpace(*params.UserName)
		params.UserName = &name
	}

	if err := s.validateUpdate(op, params); err != nil {
		telemetry.Business.ProfileUpdated(telemetry.OutcomeRejected)
		return nil, err
	}

	p, err := s.profiles.UpsertProfile(ctx, domain.UpsertProfileParams{
		UserID:   session.OwnerID(),
		UserName: params.UserName,
		Country:  params.Country,
	})
	if err != nil {
		telemetry.Business.ProfileUpdated(telemetry.OutcomeFailed)
		return nil, err
	}

	if params.Password != nil && *params.Password != "" {
		hash, err := s.hasher.Hash(*params.Password)
		if err != nil {
			telemetry.Business.ProfileUpdated(telemetry.OutcomeFailed)
			return nil, domain.Internal(err, op, "failed to hash password")
		}
		if err := s.users.UpdatePassword(ctx, session.OwnerID(), hash); err != nil {
			telemetry.Business.ProfileUpdated(telemetry.OutcomeFailed)
			return nil, err
		}
		s.notifyPasswordChanged(ctx, session)
	}

	telemetry.Business.ProfileUpdated(telemetry.OutcomeSuccess)
	publishEvent(ctx, s.publisher, s.logger, events.NewProfileEvent(session.OwnerID()))
	return p, nil
}

// notifyPasswordChanged tells the account owner their password changed.
// Delivery failures are logged only.
func (s *profileService) notifyPasswordChanged(ctx context.Context, session *domain.Session) {
	if s.notifier == nil || session.Email == "" {
		return
	}
	if err := s.notifier.PasswordChanged(ctx, session.Email, s.now()); err != nil {
		s.logger.Warn("failed to send password change notice",
			"user_id", session.UserID,
			"error", err,
		)
	}
}

func (s *profileService) validateUpdate(op string, params UpdateProfileParams) error {
	err := validateStruct(s.validate, op, params)

	add := func(field, msg string) {
		if err == nil {
			err = domain.NewValidationError(op, field, msg)
		} else {
			err = domain.AddFieldError(err, field, msg)
		}
	}

	if params.Country != nil {
		if _, ok := domain.LookupCountry(*params.Country); !ok {
			add("country", MsgCountryInvalid)
		}
	}

	if params.Password != nil && *params.Password != "" {
		switch pwErr := auth.ValidatePassword(*params.Password); {
		case errors.Is(pwErr, auth.ErrPasswordTooShort):
			add("password", MsgPasswordTooShort)
		case errors.Is(pwErr, auth.ErrPasswordTooLong):
			add("password", MsgPasswordTooLong)
		}
	}

	return err
}

// UploadImage stores a new profile picture and points the profile at it.
// The file is checked before anything is sent to storage, and the stored
// object is removed again if the profile cannot be updated.
func (s *profileService) UploadImage(ctx context.Context, session *domain.Session, upload ImageUpload) (*domain.Profile, error) {
	const op = "profile.upload_image"
	if err := requireSession(session, op); err != nil {
		return nil, err
	}

	if err := validateImageUpload(op, upload); err != nil {
		telemetry.Business.ImageUploaded(telemetry.OutcomeRejected, upload.Size)
		return nil, err
	}

	// The sniffed type wins when it is an image; content that sniffs as
	// anything else recognizable is refused whatever the client declared.
	content := bufio.NewReaderSize(upload.Content, 512)
	head, _ := content.Peek(512)
	contentType := upload.ContentType
	switch sniffed := http.DetectContentType(head); {
	case strings.HasPrefix(sniffed, "image/"):
		contentType = sniffed
	case sniffed != "application/octet-stream":
		telemetry.Business.ImageUploaded(telemetry.OutcomeRejected, upload.Size)
		return nil, domain.NewValidationError(op, "image", MsgImageNotAnImage)
	}

	key := imageKey(session.OwnerID().String(), s.now(), upload.Filename, contentType)

	url, err := s.storage.Put(ctx, key, content, contentType)
	if err != nil {
		telemetry.Business.ImageUploaded(telemetry.OutcomeFailed, upload.Size)
		return nil, domain.Remote(err, op)
	}

	p, err := s.profiles.UpsertProfile(ctx, domain.UpsertProfileParams{
		UserID:         session.OwnerID(),
		ProfilePicture: &url,
	})
	if err != nil {
		if delErr := s.storage.Delete(ctx, key); delErr != nil {
			s.logger.WarnContext(ctx, "failed to remove orphaned profile image",
				"key", key,
				"error", delErr,
			)
		}
		telemetry.Business.ImageUploaded(telemetry.OutcomeFailed, upload.Size)
		return nil, err
	}

	telemetry.Business.ImageUploaded(telemetry.OutcomeSuccess, upload.Size)
	publishEvent(ctx, s.publisher, s.logger, events.NewProfileEvent(session.OwnerID()))
	return p, nil
}

// Countries returns the selectable profile countries.
func (s *profileService) Countries() []domain.Country {
	out := make([]domain.Country, len(domain.Countries))
	copy(out, domain.Countries)
	return out
}

// validateImageUpload checks presence, type and size limits.
func validateImageUpload(op string, upload ImageUpload) error {
	if upload.Content == nil {
		return domain.NewValidationError(op, "image", MsgImageRequired)
	}
	if !strings.HasPrefix(strings.ToLower(upload.ContentType), "image/") {
		return domain.NewValidationError(op, "image", MsgImageNotAnImage)
	}
	if upload.Size > MaxImageSize {
		return domain.NewValidationError(op, "image", MsgImageTooLarge)
	}
	return nil
}

var imageExtensions = map[string]string{
	".jpg":  "jpg",
	".jpeg": "jpg",
	".png":  "png",
	".gif":  "gif",
	".webp": "webp",
}

var contentTypeExtensions = map[string]string{
	"image/jpeg": "jpg",
	"image/png":  "png",
	"image/gif":  "gif",
	"image/webp": "webp",
}

// imageKey builds profiles/{userID}_{unixMillis}.{ext}. Unknown extensions fall back
// to the content type.
func imageKey(userID string, at time.Time, filename, contentType string) string {
	ext, ok := imageExtensions[strings.ToLower(filepath.Ext(filename))]
	if !ok {
		ext, ok = contentTypeExtensions[contentType]
	}
	if !ok {
		ext = "img"
	}
	return fmt.Sprintf("profiles/%s_%d.%s", userID, at.UnixMilli(), ext)
}
