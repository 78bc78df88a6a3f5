package mastery

// Label returns the human-readable name of a level.
func (l Level) Label() string {
	switch l {
	case New:
		return "New"
	case Learning:
		return "Learning"
	case Review:
		return "Reviewing"
	case Mastered:
		return "Mastered"
	default:
		return "Unknown"
	}
}

// Symbol returns a single-glyph marker for compact listings.
func (l Level) Symbol() string {
	switch l {
	case Learning:
		return "◐"
	case Review:
		return "◕"
	case Mastered:
		return "●"
	default:
		return "○"
	}
}
