package errors

// Messages carried in the errorMsg field of status updates.
const (
	ErrEventShape = "malformed storage event"
	ErrKeyDecode  = "object key could not be decoded"
	ErrDownload   = "failed to download original image"
	ErrPartial    = "some resolutions could not be processed"
)
