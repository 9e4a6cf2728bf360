package entities

type MessageType string

const (
	MessageTypeText  MessageType = "text"
	MessageTypeOther MessageType = "other"
)

// Platforms a reply can be dispatched to.
const (
	PlatformWhatsApp = "whatsapp"
	PlatformTelegram = "telegram"
)

// Message is a single inbound chat message. It lives for one request only.
type Message struct {
	ID       string
	From     string
	Type     MessageType
	Content  string
	Platform string // e.g., "whatsapp", "telegram"
}

func (m Message) IsText() bool {
	return m.Type == MessageTypeText
}

// OutboundMessage is a reply waiting to be dispatched.
type OutboundMessage struct {
	To       string
	Body     string
	Platform string
}
