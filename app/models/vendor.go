package models

import (
	"fmt"
	"time"
)

type VendorType string

const (
	VendorIndividual VendorType = "individual"
	VendorBusiness   VendorType = "business"
)

// VendorStatus is the approval state of a vendor application.
type VendorStatus string

const (
	VendorPending   VendorStatus = "pending"
	VendorApproved  VendorStatus = "approved"
	VendorRejected  VendorStatus = "rejected"
	VendorSuspended VendorStatus = "suspended"
)

type Vendor struct {
	ID              ID           `json:"id"`
	UserID          ID           `json:"user_id"`
	BusinessName    string       `json:"business_name"`
	Type            VendorType   `json:"type"`
	Status          VendorStatus `json:"status"`
	PhoneNumber     string       `json:"phone_number"`
	Email           string       `json:"email,omitempty"`
	Address         string       `json:"address,omitempty"`
	SubscriptionID  *ID          `json:"subscription_id,omitempty"`
	RejectionReason string       `json:"rejection_reason,omitempty"`
	CreatedAt       *time.Time   `json:"created_at,omitempty"`
}

func (v *Vendor) Validate() error {
	if v == nil || v.ID == "" {
		return fmt.Errorf("%w: vendor id is empty", ErrMalformedResponse)
	}
	switch v.Status {
	case VendorPending, VendorApproved, VendorRejected, VendorSuspended:
	default:
		return fmt.Errorf("%w: vendor %s has status %q", ErrMalformedResponse, v.ID, v.Status)
	}
	return nil
}

// VendorApplicationStatus is the payload of GET /vendors/my-status.
type VendorApplicationStatus struct {
	HasVendor bool         `json:"has_vendor"`
	Status    VendorStatus `json:"status,omitempty"`
	VendorID  *ID          `json:"vendor_id,omitempty"`
	Reason    string       `json:"reason,omitempty"`
}
