package domain

import "time"

// LocalePath pairs a filesystem location with a locale and an optional root
// container. The default-locale LocalePaths are the entry points fed into the
// Update, Import and Export engines.
type LocalePath struct {
	ID        int64
	Path      string
	Locale    string
	Container *LocaleContainer
	CreatedAt time.Time
}
