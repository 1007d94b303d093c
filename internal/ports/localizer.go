package ports

// Localizer looks up a translated format string and applies args to it.
// Unknown keys are used as the format verbatim.
type Localizer interface {
	Sprintf(key string, args ...any) string
}
