package domain

// ListingStatus represents the moderation state of a listing.
type ListingStatus string

const (
	ListingStatusPending  ListingStatus = "PENDING"
	ListingStatusApproved ListingStatus = "APPROVED"
	ListingStatusRejected ListingStatus = "REJECTED"
)

func (s ListingStatus) String() string { return string(s) }

func (s ListingStatus) IsValid() bool {
	switch s {
	case ListingStatusPending, ListingStatusApproved, ListingStatusRejected:
		return true
	}
	return false
}

// ListingKind identifies the structural variant of a listing.
type ListingKind string

const (
	ListingKindFlat       ListingKind = "FLAT"
	ListingKindGarden     ListingKind = "MARRIAGE_GARDEN"
	ListingKindRestaurant ListingKind = "RESTAURANT"
)

func (k ListingKind) String() string { return string(k) }

func (k ListingKind) IsValid() bool {
	switch k {
	case ListingKindFlat, ListingKindGarden, ListingKindRestaurant:
		return true
	}
	return false
}

// ModerationAction is the decision an administrator takes on a listing.
type ModerationAction string

const (
	ModerationApprove ModerationAction = "approve"
	ModerationReject  ModerationAction = "reject"
)

func (a ModerationAction) String() string { return string(a) }

func (a ModerationAction) IsValid() bool {
	switch a {
	case ModerationApprove, ModerationReject:
		return true
	}
	return false
}

// Status returns the listing status the action transitions to.
func (a ModerationAction) Status() ListingStatus {
	if a == ModerationApprove {
		return ListingStatusApproved
	}
	return ListingStatusRejected
}

// Role represents the authorization level of a user.
type Role string

const (
	RoleBuyer  Role = "buyer"
	RoleSeller Role = "seller"
	RoleAdmin  Role = "admin"
)

func (r Role) String() string { return string(r) }

func (r Role) IsValid() bool {
	switch r {
	case RoleBuyer, RoleSeller, RoleAdmin:
		return true
	}
	return false
}

func (r Role) IsAdmin() bool {
	return r == RoleAdmin
}

// CanList reports whether the role may create listings.
func (r Role) CanList() bool {
	return r == RoleSeller || r == RoleAdmin
}
