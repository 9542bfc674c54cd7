package i18n

// Error codes must match the codes defined in internal/platform/errors/codes.go.
// These are duplicated as strings to avoid an import cycle.
const (
	CodeUnknown               = "UNKNOWN"
	CodeDiceInvalidDie        = "DICE_INVALID_DIE"
	CodeDiceInvalidParameters = "DICE_INVALID_PARAMETERS"
	CodeDiceInvalidNotation   = "DICE_INVALID_NOTATION"
	CodeEquationBad           = "EQUATION_BAD"
	CodeVariableUnknown       = "VARIABLE_UNKNOWN"
	CodeScriptFailed          = "SCRIPT_FAILED"
)

var enUSCatalog = &Catalog{
	locale: "en-US",
	messages: map[Code]string{
		CodeUnknown: "Something went wrong, try again later.",

		// Dice errors
		CodeDiceInvalidDie:        "A die needs between 1 and 1000000 sides, not {{.sides}}.",
		CodeDiceInvalidParameters: "I can't roll {{.times}} dice of {{.sides}} sides and keep {{.keep}}.",
		CodeDiceInvalidNotation:   "I can't understand `{{.notation}}`, the format is `<times>d<sides>`",

		// Equation errors
		CodeEquationBad:     "I got lost around `{{.fragment}}`. Tell me again, but slower..",
		CodeVariableUnknown: "I couldn't find the variable {{.name}}",

		// Macro errors
		CodeScriptFailed: "Your macro broke: {{.reason}}",
	},
}
