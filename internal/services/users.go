package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"healthcare-booking-server/internal/apperrors"
	"healthcare-booking-server/internal/models"
	"healthcare-booking-server/internal/store"
)

// FilesPathPrefix is where stored files are served from.
const FilesPathPrefix = "/api/files/"

// DoctorQuery filters and pages the doctor directory.
type DoctorQuery struct {
	Specialization string
	Location       string
	Search         string
	Page           int
	Limit          int
}

// Upload is a file received from a client.
type Upload struct {
	FileName    string
	ContentType string
	Data        []byte
}

type UserService struct {
	store          store.Store
	maxUploadBytes int64
}

func NewUserService(s store.Store, maxUploadBytes int64) *UserService {
	return &UserService{store: s, maxUploadBytes: maxUploadBytes}
}

// dataURLPrefixBytes covers "data:<mime type>;base64," ahead of the payload.
const dataURLPrefixBytes = 128

// MaxProfileImageBytes is the longest profileImage value accepted on a profile update:
// an upload-sized image encoded as a base64 data URL. Zero means no limit.
func (s *UserService) MaxProfileImageBytes() int64 {
	if s.maxUploadBytes <= 0 {
		return 0
	}
	return (s.maxUploadBytes+2)/3*4 + dataURLPrefixBytes
}

// List returns users ordered by creation time, newest first. An empty role lists everyone.
func (s *UserService) List(ctx context.Context, role string) ([]models.User, error) {
	var parsed models.Role
	if role != "" {
		r, err := models.ParseRole(role)
		if err != nil {
			return nil, apperrors.Wrap(apperrors.KindInvalidArgument, "Role must be either 'patient' or 'doctor'.", err)
		}
		parsed = r
	}
	users, err := s.store.Users().List(ctx, parsed)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return users, nil
}

func (s *UserService) ListDoctors(ctx context.Context, q DoctorQuery) (Page[models.User], error) {
	page, limit := NormalizePage(q.Page, q.Limit)
	doctors, total, err := s.store.Users().ListDoctors(ctx, store.DoctorFilter{
		Specialization: strings.TrimSpace(q.Specialization),
		Location:       strings.TrimSpace(q.Location),
		Search:         strings.TrimSpace(q.Search),
		Offset:         (page - 1) * limit,
		Limit:          limit,
	})
	if err != nil {
		return Page[models.User]{}, apperrors.Internal(err)
	}
	return newPage(doctors, page, limit, total), nil
}

func (s *UserService) Get(ctx context.Context, id string) (*models.User, error) {
	if id == "" {
		return nil, apperrors.InvalidArgument("User id is required.")
	}
	user, err := s.store.Users().GetByID(ctx, id)
	if err != nil {
		return nil, storeError(err, "User not found.")
	}
	return user, nil
}

func hasProfileChanges(u store.UserUpdate) bool {
	return u.Name != nil || u.Phone != nil || u.Address != nil || u.ProfileImage != nil ||
		u.Specialization != nil || u.Experience != nil || u.ConsultationFee != nil ||
		u.ClearConsultationFee || u.Clinic != nil || u.Location != nil || u.IsAvailable != nil
}

// UpdateProfile applies the supplied profile fields. Provider fields and slots are not editable here.
func (s *UserService) UpdateProfile(ctx context.Context, id string, update store.UserUpdate) (*models.User, error) {
	if id == "" {
		return nil, apperrors.InvalidArgument("User id is required.")
	}
	update.Provider, update.ProviderID, update.AvailableSlots = nil, nil, nil
	if !hasProfileChanges(update) {
		return nil, apperrors.InvalidArgument("No updates provided.")
	}
	if limit := s.MaxProfileImageBytes(); limit > 0 && update.ProfileImage != nil && int64(len(*update.ProfileImage)) > limit {
		return nil, apperrors.InvalidArgument(fmt.Sprintf("profileImage exceeds the %d byte limit.", limit))
	}
	user, err := s.store.Users().Update(ctx, id, update)
	if err != nil {
		return nil, storeError(err, "User not found.")
	}
	return user, nil
}

// SetAvailability toggles whether a doctor accepts bookings and optionally replaces the slots.
func (s *UserService) SetAvailability(ctx context.Context, id string, isAvailable *bool, slots *[]string) (*models.User, error) {
	if id == "" {
		return nil, apperrors.InvalidArgument("Doctor id is required.")
	}
	if isAvailable == nil {
		return nil, apperrors.InvalidArgument("isAvailable is required.")
	}
	user, err := s.store.Users().Update(ctx, id, store.UserUpdate{IsAvailable: isAvailable, AvailableSlots: slots})
	if err != nil {
		return nil, storeError(err, "User not found.")
	}
	return user, nil
}

// Delete removes the account and everything it owns in one transaction.
func (s *UserService) Delete(ctx context.Context, id string) error {
	if id == "" {
		return apperrors.InvalidArgument("User id is required.")
	}
	if err := s.store.DeleteUserCascade(ctx, id); err != nil {
		return storeError(err, "User not found.")
	}
	zerolog.Ctx(ctx).Info().Str("user_id", id).Msg("user deleted")
	return nil
}

// storedFileID extracts the id of a file served by this server, if the URL points at one.
func storedFileID(url string) (string, bool) {
	if !strings.HasPrefix(url, FilesPathPrefix) {
		return "", false
	}
	id := strings.TrimPrefix(url, FilesPathPrefix)
	return id, id != ""
}

// UploadProfilePicture stores the image and points the profile at it. A previously
// uploaded picture is removed.
func (s *UserService) UploadProfilePicture(ctx context.Context, userID string, upload Upload) (*models.User, error) {
	user, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(upload.Data) == 0 {
		return nil, apperrors.InvalidArgument("file is required.")
	}
	if s.maxUploadBytes > 0 && int64(len(upload.Data)) > s.maxUploadBytes {
		return nil, apperrors.InvalidArgument(fmt.Sprintf("File exceeds the %d byte limit.", s.maxUploadBytes))
	}
	if !strings.HasPrefix(upload.ContentType, "image/") {
		return nil, apperrors.InvalidArgument("Only image uploads are allowed.")
	}

	file := &models.StoredFile{
		OwnerID:     user.ID,
		FileName:    upload.FileName,
		ContentType: upload.ContentType,
		Size:        int64(len(upload.Data)),
		Data:        upload.Data,
	}
	if err := s.store.Files().Create(ctx, file); err != nil {
		return nil, apperrors.Internal(fmt.Errorf("store profile picture: %w", err))
	}

	url := FilesPathPrefix + file.ID
	updated, err := s.store.Users().Update(ctx, user.ID, store.UserUpdate{ProfileImage: &url})
	if err != nil {
		return nil, storeError(err, "User not found.")
	}

	if oldID, ok := storedFileID(user.ProfileImage); ok {
		if err := s.store.Files().Delete(ctx, oldID); err != nil {
			zerolog.Ctx(ctx).Warn().Err(err).Str("file_id", oldID).Msg("remove previous profile picture")
		}
	}
	return updated, nil
}

// RemoveProfilePicture clears the profile image and drops the stored blob if there is one.
func (s *UserService) RemoveProfilePicture(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	empty := ""
	updated, err := s.store.Users().Update(ctx, user.ID, store.UserUpdate{ProfileImage: &empty})
	if err != nil {
		return nil, storeError(err, "User not found.")
	}
	if fileID, ok := storedFileID(user.ProfileImage); ok {
		if err := s.store.Files().Delete(ctx, fileID); err != nil && !errors.Is(err, store.ErrNotFound) {
			return nil, apperrors.Internal(fmt.Errorf("delete profile picture: %w", err))
		}
	}
	return updated, nil
}

func (s *UserService) GetFile(ctx context.Context, id string) (*models.StoredFile, error) {
	file, err := s.store.Files().GetByID(ctx, id)
	if err != nil {
		return nil, storeError(err, "File not found.")
	}
	return file, nil
}
