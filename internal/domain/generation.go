package domain

// Generation parameter defaults applied when the request leaves them unset.
const (
	DefaultChatModel   = "gpt-3.5-turbo"
	DefaultMaxTokens   = 150
	DefaultTemperature = 0.7
	DefaultTopP        = 1.0
)

// GenerationRequest describes one chat-completion invocation.
type GenerationRequest struct {
	Prompt      string
	Model       string
	MaxTokens   int
	Temperature float32
	TopP        float32
}

// WithDefaults fills unset generation parameters.
func (r GenerationRequest) WithDefaults() GenerationRequest {
	if r.Model == "" {
		r.Model = DefaultChatModel
	}
	if r.MaxTokens <= 0 {
		r.MaxTokens = DefaultMaxTokens
	}
	if r.Temperature <= 0 {
		r.Temperature = DefaultTemperature
	}
	if r.TopP <= 0 {
		r.TopP = DefaultTopP
	}
	return r
}

// StreamHandler receives the fragments of one generation stream.
//
// OnFragment is called zero or more times, in upstream order, strictly
// before the terminal callback. Returning an error from OnFragment stops
// the stream without a terminal callback; that path is reserved for a
// client that has gone away, so there is nobody left to notify.
// Exactly one of OnComplete/OnError fires otherwise, and nothing fires
// after it.
type StreamHandler struct {
	OnFragment func(fragment string) error
	OnComplete func()
	OnError    func(err error)
}
