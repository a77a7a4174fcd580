package inbox

// ResponseState classifies the outcome of a submission.
type ResponseState string

const (
	StateReview                 ResponseState = "REVIEW"
	StateConflict               ResponseState = "CONFLICT"
	StateUnauthorized           ResponseState = "UNAUTHORIZED"
	StateNotEnoughData          ResponseState = "NOT_ENOUGH_DATA"
	StateLatLonOutOfRange       ResponseState = "LAT_LON_OUT_OF_RANGE"
	StateUnsupportedContentType ResponseState = "UNSUPPORTED_CONTENT_TYPE"
	StatePhotoTooLarge          ResponseState = "PHOTO_TOO_LARGE"
	StateError                  ResponseState = "ERROR"
)

// Response is returned to the submitter of an upload or problem report.
// Validation failures travel in State and Message, not as errors.
type Response struct {
	State    ResponseState `json:"state"`
	Message  string        `json:"message,omitempty"`
	ID       int64         `json:"id,omitempty"`
	Filename string        `json:"filename,omitempty"`
	InboxURL string        `json:"inboxUrl,omitempty"`
	CRC32    int64         `json:"crc32,omitempty"`
}

func errorResponse(state ResponseState, message string) *Response {
	return &Response{State: state, Message: message}
}
