package profile

// InputShape selects which request shapes a profile accepts.
type InputShape string

const (
	ShapeSingle InputShape = "single"
	ShapeRaw    InputShape = "raw"
	ShapeBoth   InputShape = "both"
)

// DefaultCap is the number of user turns allowed per conversation.
const DefaultCap = 10

// DefaultID names the profile served on the bare relay endpoint.
const DefaultID = "aurion"

// Profile configures one relay variant: the injected system prompt, the
// message cap and the request shapes the endpoint accepts.
type Profile struct {
	ID           string     `json:"id"`
	Name         string     `json:"name"`
	SystemPrompt string     `json:"-"`
	Cap          int        `json:"cap"`
	Shape        InputShape `json:"shape"`
	LimitMessage string     `json:"-"`
}

// AcceptsSingle reports whether {message, count} payloads are served.
func (p Profile) AcceptsSingle() bool {
	return p.Shape == ShapeSingle || p.Shape == ShapeBoth || p.Shape == ""
}

// AcceptsRaw reports whether {messages: [...]} payloads are served.
func (p Profile) AcceptsRaw() bool {
	return p.Shape == ShapeRaw || p.Shape == ShapeBoth || p.Shape == ""
}

// CapOrDefault returns the configured cap, falling back to DefaultCap.
func (p Profile) CapOrDefault() int {
	if p.Cap <= 0 {
		return DefaultCap
	}
	return p.Cap
}

const aurionPrompt = "Te az Aurion Studio weboldal AI asszisztense vagy. " +
	"Segíts barátságosan és érthetően válaszolni webfejlesztés, webshop, AI chat és együttműködés témában. " +
	"Válaszaid legyenek rövidek, lényegre törők, és tegező hangvételűek."

// LimitMessage is returned with 429 once a conversation reaches its cap.
const LimitMessage = "Elérted a beszélgetésenkénti üzenetkorlátot. " +
	"Ha szeretnéd folytatni, írj nekünk e-mailben vagy a kapcsolati űrlapon, és személyesen válaszolunk."

// Seed provides the built-in relay profiles.
func Seed() []Profile {
	return []Profile{
		{
			ID:           DefaultID,
			Name:         "Aurion Studio assistant",
			SystemPrompt: aurionPrompt,
			Cap:          DefaultCap,
			Shape:        ShapeBoth,
			LimitMessage: LimitMessage,
		},
		{
			ID:           "aurion-single",
			Name:         "Aurion Studio assistant (single turn only)",
			SystemPrompt: aurionPrompt,
			Cap:          DefaultCap,
			Shape:        ShapeSingle,
			LimitMessage: LimitMessage,
		},
		{
			ID:    "passthrough",
			Name:  "Raw message passthrough",
			Cap:   DefaultCap,
			Shape: ShapeRaw,
		},
	}
}
