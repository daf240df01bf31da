package entity

// ParameterDefinition plantilla de parámetro del registro global.
type ParameterDefinition struct {
	Name        string
	Aliases     []string
	Description string
	Unit        string
}
