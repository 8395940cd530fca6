package models

import "time"

type ApplicationStatus string

const (
	StatusPending  ApplicationStatus = "Pending"
	StatusApproved ApplicationStatus = "Approved"
	StatusRejected ApplicationStatus = "Rejected"
)

// Valid reports whether s is one of the known statuses.
func (s ApplicationStatus) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected:
		return true
	}
	return false
}

// Application is a loan request. StartDate and EndDate are YYYY-MM-DD.
type Application struct {
	ID             string            `json:"id" bson:"_id" firestore:"-"`
	SnNo           int64             `json:"snNo" bson:"snNo" firestore:"snNo"`
	NumericID      int64             `json:"numericId,omitempty" bson:"numericId,omitempty" firestore:"numericId,omitempty"`
	Name           string            `json:"name" bson:"name" firestore:"name"`
	LoanAmount     float64           `json:"loanAmount" bson:"loanAmount" firestore:"loanAmount"`
	RateOfInterest float64           `json:"rateOfInterest" bson:"rateOfInterest" firestore:"rateOfInterest"`
	StartDate      string            `json:"startDate" bson:"startDate" firestore:"startDate"`
	EndDate        string            `json:"endDate" bson:"endDate" firestore:"endDate"`
	DaysBetween    int64             `json:"daysBetween" bson:"daysBetween" firestore:"daysBetween"`
	TotalAmount    float64           `json:"totalAmount" bson:"totalAmount" firestore:"totalAmount"`
	Status         ApplicationStatus `json:"status" bson:"status" firestore:"status"`
	CreatedAt      time.Time         `json:"createdAt" bson:"createdAt" firestore:"createdAt"`
	UpdatedAt      time.Time         `json:"updatedAt" bson:"updatedAt" firestore:"updatedAt"`
}

// Borrower is an approved application promoted to an active loan.
// Its document id is the decimal form of NumericID.
type Borrower struct {
	ID             string            `json:"id" bson:"_id" firestore:"-"`
	NumericID      int64             `json:"numericId" bson:"numericId" firestore:"numericId"`
	ApplicationID  string            `json:"applicationId" bson:"applicationId" firestore:"applicationId"`
	SnNo           int64             `json:"snNo" bson:"snNo" firestore:"snNo"`
	Name           string            `json:"name" bson:"name" firestore:"name"`
	LoanAmount     float64           `json:"loanAmount" bson:"loanAmount" firestore:"loanAmount"`
	RateOfInterest float64           `json:"rateOfInterest" bson:"rateOfInterest" firestore:"rateOfInterest"`
	StartDate      string            `json:"startDate" bson:"startDate" firestore:"startDate"`
	EndDate        string            `json:"endDate" bson:"endDate" firestore:"endDate"`
	DaysBetween    int64             `json:"daysBetween" bson:"daysBetween" firestore:"daysBetween"`
	TotalAmount    float64           `json:"totalAmount" bson:"totalAmount" firestore:"totalAmount"`
	DueDate        string            `json:"dueDate" bson:"dueDate" firestore:"dueDate"`
	Status         ApplicationStatus `json:"status" bson:"status" firestore:"status"`
	CreatedAt      time.Time         `json:"createdAt" bson:"createdAt" firestore:"createdAt"`
}

// Payment is one repayment recorded against a borrower. Date is YYYY-MM-DD.
type Payment struct {
	ID         string    `json:"id" bson:"_id" firestore:"-"`
	BorrowerID string    `json:"borrowerId" bson:"borrowerId" firestore:"-"`
	Amount     float64   `json:"amount" bson:"amount" firestore:"amount"`
	Date       string    `json:"date" bson:"date" firestore:"date"`
	CreatedAt  time.Time `json:"createdAt" bson:"createdAt" firestore:"createdAt"`
}

// Counter holds the last value handed out for a sequence.
type Counter struct {
	Name  string `bson:"_id" firestore:"-"`
	Value int64  `bson:"value" firestore:"value"`
}

// NotificationRecord is one delivered email or SMS.
type NotificationRecord struct {
	ID        string    `json:"id" bson:"_id"`
	Type      string    `json:"type" bson:"type"`
	To        string    `json:"to" bson:"to"`
	Subject   string    `json:"subject,omitempty" bson:"subject,omitempty"`
	MessageID string    `json:"messageId" bson:"messageId"`
	Status    string    `json:"status" bson:"status"`
	JobID     string    `json:"jobId,omitempty" bson:"jobId,omitempty"`
	SentAt    time.Time `json:"sentAt" bson:"sentAt"`
}
