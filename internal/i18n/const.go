package i18n

// Message IDs of the widget strings
const (
	MsgThinking            = "Thinking"
	MsgFetchError          = "FetchError"
	MsgNoVisuals           = "NoVisuals"
	MsgLoadFailed          = "LoadFailed"
	MsgSyllabusNotArray    = "SyllabusNotArray"
	MsgSyllabusUnparseable = "SyllabusUnparseable"
	MsgUnknownMediaType    = "UnknownMediaType"
	MsgNoUpcomingClasses   = "NoUpcomingClasses"
	MsgRegisterInfo        = "RegisterInfo"
	MsgUntitled            = "Untitled"
	MsgOfferPrompt         = "OfferPrompt"
	MsgUpcomingTitle       = "UpcomingTitle"
	MsgUpcomingLocation    = "UpcomingLocation"
	MsgUpcomingLength      = "UpcomingLength"
	MsgUpcomingStartDate   = "UpcomingStartDate"

	// msgOfferPrefix is followed by the content kind, e.g. OfferVIDEO
	msgOfferPrefix = "Offer"
)
