package render

// Directory resolves member IDs to their current display names.
type Directory interface {
	Name(memberID string) (string, bool)
}

// MapDirectory is a Directory backed by a map of member ID to name.
type MapDirectory map[string]string

func (d MapDirectory) Name(memberID string) (string, bool) {
	name, ok := d[memberID]
	return name, ok && name != ""
}
