package services

import (
	"context"
	"errors"
	"slices"
	"time"

	"go.uber.org/zap"

	"bounceBackAPI/internal/apperr"
	"bounceBackAPI/internal/store"
	"bounceBackAPI/internal/types/isotime"
	"bounceBackAPI/internal/types/journal"
	"bounceBackAPI/internal/types/profile"
	"bounceBackAPI/internal/validation"
)

type ProfileService struct {
	store  store.Store
	logger *zap.Logger
	now    func() time.Time
}

func NewProfileService(st store.Store, logger *zap.Logger) *ProfileService {
	return &ProfileService{
		store:  st,
		logger: logger,
		now:    time.Now,
	}
}

// CreateUserData seeds a new account with its default profile and a welcome
// journal entry.
func (s *ProfileService) CreateUserData(ctx context.Context, uid, displayName string) (profile.Profile, error) {
	if err := requireUID(uid); err != nil {
		return profile.Profile{}, err
	}

	now := isotime.New(s.now())
	p := profile.Default(displayName, now)

	data, err := store.Encode(profile.User{Profile: p})
	if err != nil {
		return profile.Profile{}, err
	}
	if err := s.store.SetUser(ctx, uid, data, true); err != nil {
		return profile.Profile{}, apperr.Upstream(err, "Failed to create user data")
	}

	welcome, err := store.Encode(journal.Entry{Text: journal.WelcomeText, Timestamp: now})
	if err != nil {
		return profile.Profile{}, err
	}
	for _, k := range []string{"mood", "risk", "emotion"} {
		delete(welcome, k)
	}
	if _, err := s.store.Create(ctx, uid, store.Journals, welcome); err != nil {
		return profile.Profile{}, apperr.Upstream(err, "Failed to create user data")
	}

	s.logger.Info("user data created", zap.String("uid", uid))
	return p, nil
}

// GetProfile returns the caller's profile, creating the default one on
// first access.
func (s *ProfileService) GetProfile(ctx context.Context, uid string) (profile.Profile, error) {
	if err := requireUID(uid); err != nil {
		return profile.Profile{}, err
	}

	user, err := s.getUser(ctx, uid)
	if errors.Is(err, store.ErrNotFound) {
		p := profile.Default("", isotime.New(s.now()))
		data, err := store.Encode(profile.User{Profile: p})
		if err != nil {
			return profile.Profile{}, err
		}
		if err := s.store.SetUser(ctx, uid, data, false); err != nil {
			return profile.Profile{}, apperr.Upstream(err, "Failed to get profile data")
		}
		return p, nil
	}
	if err != nil {
		return profile.Profile{}, apperr.Upstream(err, "Failed to get profile data")
	}
	return user.Profile, nil
}

func (s *ProfileService) getUser(ctx context.Context, uid string) (profile.User, error) {
	data, err := s.store.GetUser(ctx, uid)
	if err != nil {
		return profile.User{}, err
	}
	var user profile.User
	if err := store.Decode(store.Document{ID: uid, Data: data}, &user); err != nil {
		return profile.User{}, err
	}
	return user, nil
}

// UpdateUserData merges the given keys into the profile.
func (s *ProfileService) UpdateUserData(ctx context.Context, uid string, req profile.UpdateRequest) error {
	if err := requireUID(uid); err != nil {
		return err
	}
	if len(req.Profile) == 0 {
		return apperr.Validation("No valid fields to update.")
	}

	fields := make(map[string]any, len(req.Profile))
	for k, v := range req.Profile {
		fields["profile."+k] = v
	}

	if err := s.store.UpdateUser(ctx, uid, fields); err != nil {
		return storeErr(err, "User not found", "Failed to update user data.")
	}
	return nil
}

func (s *ProfileService) GetOnboardingStatus(ctx context.Context, uid string) (bool, error) {
	if err := requireUID(uid); err != nil {
		return false, err
	}

	user, err := s.getUser(ctx, uid)
	if err != nil {
		return false, storeErr(err, "User not found", "Failed to get onboarding status")
	}
	return user.Profile.OnboardingComplete, nil
}

// RegisterDevice remembers a push token for the caller.
func (s *ProfileService) RegisterDevice(ctx context.Context, uid string, req profile.RegisterDeviceRequest) error {
	if err := requireUID(uid); err != nil {
		return err
	}
	if err := validation.Struct(req); err != nil {
		return err
	}

	user, err := s.getUser(ctx, uid)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return apperr.Upstream(err, "Failed to register device")
	}
	if slices.Contains(user.DeviceTokens, req.Token) {
		return nil
	}

	tokens := append(user.DeviceTokens, req.Token)
	if err := s.store.SetUser(ctx, uid, map[string]any{"deviceTokens": tokens}, true); err != nil {
		return apperr.Upstream(err, "Failed to register device")
	}
	return nil
}
