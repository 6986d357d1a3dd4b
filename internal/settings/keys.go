package settings

// Setting keys consumed by the conversation engine. All are optional;
// each consumer supplies a sane default when the key is absent.
const (
	// KeyBusinessContext is the business-context prompt fragment.
	KeyBusinessContext = "business_context"

	// KeyPersonality is the assistant personality fragment.
	KeyPersonality = "personality"

	// KeyFlowRules is the conversation-flow rules fragment.
	KeyFlowRules = "flow_rules"

	// KeyRestrictions is the restrictions fragment.
	KeyRestrictions = "restrictions"

	// KeyRegistrationMessage is shown when an unregistered caller tries
	// to order.
	KeyRegistrationMessage = "registration_required_message"

	// KeyFallbackMessage replaces the reply when a turn fails.
	KeyFallbackMessage = "error_message"

	// KeyMaxHistory is the number of history turns rendered into the
	// prompt (number).
	KeyMaxHistory = "max_history_messages"
)

// Fallback copy used when the corresponding setting rows are absent.
const (
	DefaultRegistrationMessage = "Please call +977 985-1069717 to register as a customer first."
	DefaultFallbackMessage     = "Sorry, I encountered an error. Please try again or contact us at +977 985-1069717."
	DefaultMaxHistory          = 10
)
