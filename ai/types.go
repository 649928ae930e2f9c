package ai

// TextExtraction is the result of OCR over a captured image.
type TextExtraction struct {
	// Text is the extracted text, empty when the image holds none.
	Text string

	// Confidence is the model's confidence in the extraction, 0.0-1.0.
	Confidence float64
}

// Classification is a structured description of what an image shows.
// All fields are optional; an empty field means the model could not tell.
type Classification struct {
	// ContentType categorizes the image (e.g. "code", "webpage", "document").
	ContentType string

	// AppDetected names the application visible in the capture, if any.
	AppDetected string

	// URLDetected is a URL visible in the capture, if any.
	URLDetected string

	// Language is the dominant natural language of the visible text.
	Language string
}

// ContentTypes lists the categories the classifier is asked to choose from.
var ContentTypes = []string{
	"code",
	"webpage",
	"document",
	"chart",
	"diagram",
	"terminal",
	"chat",
	"email",
	"photo",
	"ui",
	"other",
}
