package profile

import "bounceBackAPI/internal/types/isotime"

type Profile struct {
	Name                  string       `json:"name"`
	CreatedAt             isotime.Time `json:"createdAt"`
	OnboardingComplete    bool         `json:"onboardingComplete"`
	AvoidanceZonesEnabled bool         `json:"avoidanceZonesEnabled"`
	XP                    int          `json:"xp"`
}

// User is the users/{uid} document.
type User struct {
	Profile      Profile  `json:"profile"`
	DeviceTokens []string `json:"deviceTokens,omitempty"`
}

func Default(name string, now isotime.Time) Profile {
	if name == "" {
		name = "User"
	}
	return Profile{Name: name, CreatedAt: now}
}

type UpdateRequest struct {
	Profile map[string]any `json:"profile"`
}

type RegisterDeviceRequest struct {
	Token string `json:"token" validate:"required"`
}
