package gateway

// SendPayload is the provider-side body of POST /messages/{content_type}.
// Field presence follows the content type: text sends {to, body}, media
// types send {to, media, caption}, documents additionally send filename.
type SendPayload struct {
	To       string `json:"to"`
	Body     string `json:"body,omitempty"`
	Media    string `json:"media,omitempty"`
	Caption  string `json:"caption,omitempty"`
	Filename string `json:"filename,omitempty"`
}

// SendResult carries the gateway-assigned message id and initial status
// from a successful send response.
type SendResult struct {
	MessageID string
	Status    string
}

type sendResponse struct {
	Message struct {
		ID     string `json:"id"`
		Status string `json:"status"`
	} `json:"message"`
}

type errorResponse struct {
	Error errorBody `json:"error"`
}

// The gateway is inconsistent about the error message key: newer responses
// use "message", older ones "Error".
type errorBody struct {
	Message     string `json:"message"`
	LegacyError string `json:"Error"`
	UserTitle   string `json:"error_user_title"`
}
