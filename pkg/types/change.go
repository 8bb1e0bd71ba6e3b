package types

// ChangeKind classifies how a definition file changed between two states.
type ChangeKind int

// Change kinds. Added and Modified both result in a create call; only
// Deleted results in a delete call.
const (
	ChangeAdded ChangeKind = iota + 1
	ChangeModified
	ChangeDeleted
)

func (k ChangeKind) String() string {
	switch k {
	case ChangeAdded:
		return "added"
	case ChangeModified:
		return "modified"
	case ChangeDeleted:
		return "deleted"
	default:
		return "unknown"
	}
}

// ChangeRecord names one changed definition file. Records are produced once
// per run and not modified afterwards.
type ChangeRecord struct {
	Path string
	Kind ChangeKind
}

// Added returns a ChangeRecord of kind ChangeAdded.
func Added(path string) ChangeRecord { return ChangeRecord{Path: path, Kind: ChangeAdded} }

// Modified returns a ChangeRecord of kind ChangeModified.
func Modified(path string) ChangeRecord { return ChangeRecord{Path: path, Kind: ChangeModified} }

// Deleted returns a ChangeRecord of kind ChangeDeleted.
func Deleted(path string) ChangeRecord { return ChangeRecord{Path: path, Kind: ChangeDeleted} }

func (r ChangeRecord) String() string {
	return r.Kind.String() + " " + r.Path
}
