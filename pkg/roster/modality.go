package roster

import "strings"

// Attendee ids carry an optional modality suffix after a separator:
// "abc" is the camera of attendee abc and "abc#content" its screen share.
const (
	modalitySeparator = "#"

	// ModalityContent marks a content-share stream.
	ModalityContent = "content"
)

// ParseAttendeeID splits an attendee id into its base id and modality.
// The modality is empty for a plain camera stream.
func ParseAttendeeID(id string) (base, modality string) {
	base, modality, _ = strings.Cut(id, modalitySeparator)
	return base, modality
}

// BaseID returns the attendee id without its modality.
func BaseID(id string) string {
	base, _ := ParseAttendeeID(id)
	return base
}

// IsContent reports whether id names a content-share stream.
func IsContent(id string) bool {
	_, m := ParseAttendeeID(id)
	return m == ModalityContent
}

// ContentID returns the content-share id for a base attendee id.
func ContentID(base string) string {
	return base + modalitySeparator + ModalityContent
}

// DisplayName extracts the nameplate text from an external user id of the
// form "<opaque>#<name>". Ids without a separator are returned as-is.
func DisplayName(externalUserID string) string {
	if _, name, ok := strings.Cut(externalUserID, modalitySeparator); ok {
		return name
	}
	return externalUserID
}
