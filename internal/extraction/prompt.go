package extraction

// SystemInstruction describes the assistant's role to the model
const SystemInstruction = `You are a specialist in comprehending receipts.
Input images in the form of receipts will be provided to you,
and your task is to respond to questions based on the content of the input image.`

// UserInstruction is the extraction request sent after the document
const UserInstruction = "Convert Invoice data into json format with appropriate json tags as required for the data in image"

// Generation parameters shared by every generator
const (
	Temperature     float32 = 0.2
	TopP            float32 = 1
	TopK            int32   = 32
	MaxOutputTokens int32   = 4096
)

// Prompt is the ordered triple sent to the model: system text, document, user text
type Prompt struct {
	System  string
	Payload Payload
	User    string
}

// NewPrompt wraps a payload with the fixed receipt instructions
func NewPrompt(payload Payload) Prompt {
	return Prompt{
		System:  SystemInstruction,
		Payload: payload,
		User:    UserInstruction,
	}
}
