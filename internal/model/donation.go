package model

import "encoding/json"

// DonationStatus is the lifecycle state tracked by the donation API.
type DonationStatus string

const (
	DonationPending   DonationStatus = "pending"
	DonationClaimed   DonationStatus = "claimed"
	DonationCompleted DonationStatus = "completed"
)

// NewDonation is the payload forwarded to the donation API on create.
// DonorEmail always comes from the verified session, never from the client.
type NewDonation struct {
	DonorName  string      `json:"donorName"`
	FoodType   string      `json:"foodType"`
	Quantity   json.Number `json:"quantity"`
	City       string      `json:"city"`
	DonorEmail string      `json:"donorEmail"`
}

// DonationStatusUpdate is the payload forwarded to the donation API on update.
type DonationStatusUpdate struct {
	DonationID string         `json:"donationId"`
	Status     DonationStatus `json:"status"`
}
