package model

// Settings is the small user-preferences document kept in the cache store.
type Settings struct {
	Theme                string `json:"theme"`
	NotificationsEnabled bool   `json:"notifications_enabled"`
}

// DefaultSettings are used when no document has been stored yet.
func DefaultSettings() Settings {
	return Settings{Theme: "system", NotificationsEnabled: false}
}
