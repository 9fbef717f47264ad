package operation

// Type represents the type of storage operation.
type Type int

const (
	// TypeGet represents a read operation.
	TypeGet Type = iota
	// TypePut represents a write operation.
	TypePut
	// TypeDelete represents a delete operation.
	TypeDelete
	// TypeTxn represents a nested transaction.
	TypeTxn
	// TypeCompact represents a compaction request.
	TypeCompact
)

func (t Type) String() string {
	switch t {
	case TypeGet:
		return "Get"
	case TypePut:
		return "Put"
	case TypeDelete:
		return "Delete"
	case TypeTxn:
		return "Txn"
	case TypeCompact:
		return "Compact"
	default:
		return "Unknown"
	}
}
