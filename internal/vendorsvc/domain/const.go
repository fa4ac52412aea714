package domain

// VerificationStatus is the application-owned review state of a business
// record. The local store is authoritative for it; the identity provider only
// mirrors it as metadata for auditability.
type VerificationStatus string

const (
	VerificationStatusPending     VerificationStatus = "pending"
	VerificationStatusApproved    VerificationStatus = "approved"
	VerificationStatusRejected    VerificationStatus = "rejected"
	VerificationStatusDeactivated VerificationStatus = "deactivated"
)

// MetadataStatusKey is the provider metadata key mirroring the local
// verification status.
const MetadataStatusKey = "verification_status"

// ParseVerificationStatus validates and converts a raw status value.
func ParseVerificationStatus(value string) (VerificationStatus, error) {
	status := VerificationStatus(value)
	if !status.IsValid() {
		return "", ErrInvalidStatus
	}
	return status, nil
}

// IsValid reports whether the status is one of the known values.
func (s VerificationStatus) IsValid() bool {
	switch s {
	case VerificationStatusPending,
		VerificationStatusApproved,
		VerificationStatusRejected,
		VerificationStatusDeactivated:
		return true
	}
	return false
}
