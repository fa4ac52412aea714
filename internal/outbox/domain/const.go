package domain

// Entry types discriminate which replay handler applies to an entry.
const (
	// EntryTypeVendorCreateRetry replays the local half of a vendor
	// creation whose external identity already exists.
	EntryTypeVendorCreateRetry = "vendor.create.retry"

	// EntryTypeVendorContactRetry replays the local mirror of a contact
	// change already applied at the provider.
	EntryTypeVendorContactRetry = "vendor.contact.retry"

	// EntryTypeVendorStatusRetry replays the provider metadata mirror of a
	// locally-committed verification status.
	EntryTypeVendorStatusRetry = "vendor.status.retry"

	// EntryTypeIdentityDeleteRetry replays an external identity deletion.
	EntryTypeIdentityDeleteRetry = "identity.delete.retry"
)
