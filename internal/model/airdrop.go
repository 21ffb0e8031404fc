package model

type AirdropStatus string

const (
	AirdropStatusNew       AirdropStatus = "New"
	AirdropStatusFarming   AirdropStatus = "Farming"
	AirdropStatusWaitlist  AirdropStatus = "Waitlist"
	AirdropStatusClaimable AirdropStatus = "Claimable"
	AirdropStatusFinished  AirdropStatus = "Finished"
)

func (s AirdropStatus) Valid() bool {
	switch s {
	case AirdropStatusNew, AirdropStatusFarming, AirdropStatusWaitlist,
		AirdropStatusClaimable, AirdropStatusFinished:
		return true
	}
	return false
}

type AirdropPriority string

const (
	AirdropPriorityHigh   AirdropPriority = "High"
	AirdropPriorityMedium AirdropPriority = "Medium"
	AirdropPriorityLow    AirdropPriority = "Low"
)

func (p AirdropPriority) Valid() bool {
	switch p {
	case AirdropPriorityHigh, AirdropPriorityMedium, AirdropPriorityLow:
		return true
	}
	return false
}

type AirdropProject struct {
	ID         string          `json:"id"`
	Name       string          `json:"name"`
	TwitterURL string          `json:"twitterUrl,omitempty"`
	Status     AirdropStatus   `json:"status"`
	Priority   AirdropPriority `json:"priority"`
	Notes      string          `json:"notes,omitempty"`
}
