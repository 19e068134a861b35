// Package session owns the in-memory conversation state for a Textora chat:
// the append-only message log, the chat-history archive, panel visibility,
// and the image modal target. It performs no I/O; the TUI drives it.
package session

// Sender identifies who authored a message.
type Sender string

const (
	SenderUser Sender = "user"
	SenderAI   Sender = "ai"
)

// Kind discriminates the message payload variants.
type Kind string

const (
	KindText          Kind = "text"
	KindFileUpload    Kind = "file_upload"
	KindImageCarousel Kind = "image_carousel"
)

// UploadStatus is the display status of a file_upload message. Uploads are
// materialized as already completed; the other states exist for rendering
// parity only.
type UploadStatus string

const (
	UploadUploading UploadStatus = "uploading"
	UploadCompleted UploadStatus = "completed"
	UploadFailed    UploadStatus = "failed"
)

// CarouselImage is a single generated image within an image_carousel message.
type CarouselImage struct {
	ID  int64
	URL string
}

// Upload carries the fields needed to materialize a pending attachment as a
// file_upload message.
type Upload struct {
	Name        string
	Size        int64
	MIME        string
	PreviewPath string
	IsPDF       bool
}

// Message is one entry in the conversation log. Kind selects which payload
// fields are meaningful; render and log operations switch exhaustively on it.
type Message struct {
	ID        int64
	Sender    Sender
	Kind      Kind
	Timestamp string

	// KindText
	Text    string
	IsError bool

	// KindFileUpload
	FileName    string
	FileSize    int64
	FileType    string
	PreviewPath string
	IsPDF       bool
	Status      UploadStatus

	// KindImageCarousel
	Images []CarouselImage
}
