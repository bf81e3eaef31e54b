package models

// Record status values shared by schedules and engagements
const (
	StatusPending   = "pending"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

// Engagement types
const (
	EngagementLike    = "like"
	EngagementComment = "comment"
	EngagementShare   = "share"
	EngagementSave    = "save"
	EngagementFollow  = "follow"
)

// Supported account and proxy countries
const (
	CountrySaudiArabia = "السعودية"
	CountryUAE         = "الإمارات"
	CountryKuwait      = "الكويت"
	CountryEgypt       = "مصر"
)

// Share destinations
const (
	ShareCopy     = "copy"
	ShareFacebook = "facebook"
	ShareTwitter  = "twitter"
	ShareWhatsApp = "whatsapp"
	ShareTelegram = "telegram"
)

// TikTokURLPrefix is the required prefix of every engagement target URL
const TikTokURLPrefix = "https://www.tiktok.com/"

// ValidCountries is the whitelist of countries
var ValidCountries = map[string]bool{
	CountrySaudiArabia: true,
	CountryUAE:         true,
	CountryKuwait:      true,
	CountryEgypt:       true,
}

// ValidShareTypes is the whitelist of share destinations
var ValidShareTypes = map[string]bool{
	ShareCopy:     true,
	ShareFacebook: true,
	ShareTwitter:  true,
	ShareWhatsApp: true,
	ShareTelegram: true,
}

// IsValidCountry checks if a country is in the whitelist
func IsValidCountry(country string) bool {
	return ValidCountries[country]
}

// IsValidShareType checks if a share destination is in the whitelist
func IsValidShareType(shareType string) bool {
	return ValidShareTypes[shareType]
}
