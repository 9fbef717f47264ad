package predicate

// Target represents what aspect of a key to compare in predicates.
type Target int

const (
	// TargetVersion compares the version of the key.
	TargetVersion Target = iota
	// TargetValue compares the value of the key.
	TargetValue
	// TargetCreateRevision compares the creation revision of the key.
	TargetCreateRevision
	// TargetModRevision compares the last modification revision of the key.
	TargetModRevision
	// TargetLease compares the lease attached to the key.
	TargetLease
)

func (t Target) String() string {
	switch t {
	case TargetVersion:
		return "Version"
	case TargetValue:
		return "Value"
	case TargetCreateRevision:
		return "CreateRevision"
	case TargetModRevision:
		return "ModRevision"
	case TargetLease:
		return "Lease"
	default:
		return "Unknown"
	}
}
