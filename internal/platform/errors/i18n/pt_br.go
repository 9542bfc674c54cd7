package i18n

var ptBRCatalog = &Catalog{
	locale: "pt-BR",
	messages: map[Code]string{
		CodeUnknown: "Algo deu errado, tente novamente mais tarde.",

		CodeDiceInvalidDie:        "Um dado precisa ter entre 1 e 1000000 lados, não {{.sides}}.",
		CodeDiceInvalidParameters: "Não consigo rolar {{.times}} dados de {{.sides}} lados e manter {{.keep}}.",
		CodeDiceInvalidNotation:   "Não entendi `{{.notation}}`, o formato é `<vezes>d<lados>`",

		CodeEquationBad:     "Me perdi em `{{.fragment}}`. Fala de novo, mais devagar..",
		CodeVariableUnknown: "Não encontrei a variável {{.name}}",

		CodeScriptFailed: "Sua macro quebrou: {{.reason}}",
	},
}
