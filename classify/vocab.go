package classify

// Role vocabularies. Classification is keyword-based and deliberately
// permissive: a file may be claimed by several roles, and a miss here only
// means the file is ignored, never that ingestion fails.

// Keywords matched against paths referenced by a descriptor file.
var (
	chatPathKeywords  = []string{"chat", "message", "sms", "im", "conversation"}
	mediaPathKeywords = []string{"image", "photo", "video", "audio", "media", "files"}
)

// Keywords matched against file names during the directory scan. The scan
// recognizes a few extra vendor spellings the descriptor vocabulary omits.
var (
	scanChatKeywords    = []string{"chat", "message", "sms", "im", "conversation"}
	scanCallKeywords    = []string{"call", "calllog", "calls"}
	scanContactKeywords = []string{"contact", "phonebook", ".vcf", "vcard"}
	scanMediaKeywords   = []string{"image", "photo", "video", "audio"}
)

// Record markers sniffed from the descriptor's raw text. Their presence
// means the descriptor itself embeds records of that kind, in addition to
// (or instead of) referencing other files.
var (
	chatMarkers    = []string{"<message", "<sms", "<chat", "<conversation"}
	callMarkers    = []string{"<call", "<callrecord"}
	contactMarkers = []string{"<contact", "<vcard", "displayname"}
)

// Extensions considered record-bearing during the directory scan.
var recordExtensions = []string{".json", ".xml", ".txt"}
