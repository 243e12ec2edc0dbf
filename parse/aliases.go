package parse

// Alias resolution tables. Every canonical field is resolved by walking an
// ordered chain of vendor field names and taking the first present,
// non-empty value. Keeping the chains as data (rather than conditionals)
// keeps the heuristics auditable and testable alias by alias.

// JSON container keys, tried in order against the top-level object. When
// none match, the first field whose value is an array of objects wins; when
// the root itself is an array, it is the container.
var (
	chatContainerKeys    = []string{"messages", "chat", "items", "data", "conversations", "threads", "messagesList"}
	contactContainerKeys = []string{"contacts", "items", "data", "phonebook"}
	callContainerKeys    = []string{"calls", "items", "data", "calllog"}
)

// JSON field aliases per canonical message field.
var (
	msgTextAliases      = []string{"text", "message", "body", "content"}
	msgThreadAliases    = []string{"thread_id", "chat_id", "conversationId", "thread"}
	msgSenderAliases    = []string{"sender", "from", "author"}
	msgReceiverAliases  = []string{"to", "recipients"}
	msgTimestampAliases = []string{"timestamp", "date", "time"}
)

// JSON field aliases per canonical contact field.
var (
	contactNameAliases  = []string{"name", "displayName"}
	contactPhoneAliases = []string{"phones", "numbers", "tel"}
	contactEmailAliases = []string{"emails"}
)

// JSON field aliases per canonical call field.
var (
	callNumberAliases    = []string{"number", "phone", "caller"}
	callTypeAliases      = []string{"type", "callType", "direction"}
	callTimestampAliases = []string{"timestamp", "date"}
	callDurationAliases  = []string{"duration", "durationSeconds", "DurationSeconds"}
)

// XML tag aliases for the structured extraction dialect.
var (
	xmlMsgTimestampTags = []string{"Timestamp", "Date", "Time"}
	xmlMsgContentTags   = []string{"Content", "Body", "Text"}

	xmlContactNameTags  = []string{"Name", "displayName", "FullName"}
	xmlContactPhoneTags = []string{"PhoneNumber", "Phone"}
	xmlContactEmailTags = []string{"Email"}

	xmlCallTimestampTags = []string{"Timestamp", "Date"}
	xmlCallNumberTags    = []string{"Number", "PhoneNumber", "Caller"}
	xmlCallDurationTags  = []string{"DurationSeconds", "duration"}
)

// Loosely-named elements matched by the generic XML fallback scan.
var (
	genericMessageTags = []string{"message", "chatmessage", "sms", "conversation"}
	genericContactTags = []string{"contact", "contactEntry"}
	genericCallTags    = []string{"call", "callEntry"}
)
