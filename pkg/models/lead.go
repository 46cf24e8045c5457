package models

import (
	"time"

	"github.com/google/uuid"
)

// Source identifies this funnel variant to the upstream CRM
const Source = "balance-cipher"

// Applicant mirrors the upstream CRM's application schema. The funnel
// only collects name and email; the remaining fields are sent zeroed
// because the CRM rejects applications missing the keyed record shape.
type Applicant struct {
	FirstName            string `json:"firstName"`
	LastName             string `json:"lastName"`
	Email                string `json:"email"`
	Phone                string `json:"phone"`
	DateOfBirth          string `json:"dateOfBirth"`
	AddressLine1         string `json:"addressLine1"`
	AddressLine2         string `json:"addressLine2"`
	City                 string `json:"city"`
	State                string `json:"state"`
	PostalCode           string `json:"postalCode"`
	Country              string `json:"country"`
	Citizenship          string `json:"citizenship"`
	EmploymentStatus     string `json:"employmentStatus"`
	Employer             string `json:"employer"`
	Occupation           string `json:"occupation"`
	AnnualIncome         int64  `json:"annualIncome"`
	NetWorth             int64  `json:"netWorth"`
	FundingSource        string `json:"fundingSource"`
	InvestmentExperience string `json:"investmentExperience"`
	RiskTolerance        string `json:"riskTolerance"`
	MaritalStatus        string `json:"maritalStatus"`
	Dependents           int    `json:"dependents"`
}

// Tracking captures funnel context that is opaque to the relay
type Tracking struct {
	Event      string `json:"event"`
	AccessCode string `json:"accessCode"`
	UserAgent  string `json:"userAgent"`
	Referrer   string `json:"referrer"`
	PageURL    string `json:"pageUrl"`
}

// LeadPayload is the record submitted to the relay, immutable once sent
type LeadPayload struct {
	Source    string    `json:"source"`
	RequestID string    `json:"requestId"`
	StartedAt time.Time `json:"startedAt"`
	Tracking  Tracking  `json:"tracking"`
	Applicant Applicant `json:"applicant"`
}

// NewLeadPayload builds a payload for one submission attempt. Each
// attempt gets a fresh requestId; the tracking access code is reused
// across retries within a session.
func NewLeadPayload(first, last, email string, tracking Tracking) LeadPayload {
	return LeadPayload{
		Source:    Source,
		RequestID: uuid.NewString(),
		StartedAt: time.Now().UTC(),
		Tracking:  tracking,
		Applicant: Applicant{
			FirstName: first,
			LastName:  last,
			Email:     email,
		},
	}
}
