package dto

type SubscribeDTO struct {
	Email    string `json:"email" validate:"required,email,max=254"`
	Referrer string `json:"referrer,omitempty" validate:"omitempty,max=64"`
}

type SubscribeResultDTO struct {
	Message      string `json:"message"`
	ReferralCode string `json:"referralCode"`
}

type ReferralStatsDTO struct {
	ReferredCount int `json:"referredCount"`
}
