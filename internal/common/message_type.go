package common

// MessageType represents the kind of payload a chat message carries
type MessageType string

const (
	MessageTypeText     MessageType = "text"
	MessageTypePhoto    MessageType = "photo"
	MessageTypeVideo    MessageType = "video"
	MessageTypeLocation MessageType = "location"
	MessageTypeContact  MessageType = "contact"
	MessageTypeFile     MessageType = "file"
)

// String returns the string representation
func (mt MessageType) String() string {
	return string(mt)
}

// IsValid checks if the message type is one we know how to deliver
func (mt MessageType) IsValid() bool {
	switch mt {
	case MessageTypeText, MessageTypePhoto, MessageTypeVideo,
		MessageTypeLocation, MessageTypeContact, MessageTypeFile:
		return true
	}
	return false
}

// RequiresUpload reports whether this type carries bytes that must reach the
// blob store before a message can be composed. Location and contact messages
// synthesize their mediaRef locally.
func (mt MessageType) RequiresUpload() bool {
	switch mt {
	case MessageTypePhoto, MessageTypeVideo, MessageTypeFile:
		return true
	}
	return false
}
