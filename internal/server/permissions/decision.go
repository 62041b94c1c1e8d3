package permissions

// Decision is the outcome of a permission check.
type Decision int

const (
	// Undetermined means the permission set could not be loaded. It is
	// never treated as granted.
	Undetermined Decision = iota
	Granted
	Denied
)

func (d Decision) String() string {
	switch d {
	case Granted:
		return "granted"
	case Denied:
		return "denied"
	default:
		return "undetermined"
	}
}
